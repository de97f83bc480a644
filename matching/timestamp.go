package matching

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimestamp indicates a record's timestamp could not be
// normalized. The offending record must be excluded from matching,
// never silently matched with a wrong time.
var ErrInvalidTimestamp = errors.New("invalid timestamp")

// stringLayouts are the accepted string representations, tried in
// order. Layouts without an offset are naive and assumed to be UTC.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// naiveLayoutStart is the index of the first layout with no offset.
const naiveLayoutStart = 2

// Normalizer converts heterogeneous timestamp representations into
// canonical instants in a single fixed target zone. Every timestamp
// must pass through the normalizer at ingestion, before ANY comparison
// between an image timestamp and a trace timestamp. That rule is what
// keeps naive and offset-aware inputs from ever being compared
// directly.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a Normalizer targeting a fixed UTC offset,
// expressed in hours. The reference deployment uses +7.
func NewNormalizer(utcOffsetHours int) *Normalizer {
	name := fmt.Sprintf("UTC+%d", utcOffsetHours)
	if utcOffsetHours < 0 {
		name = fmt.Sprintf("UTC%d", utcOffsetHours)
	}
	return &Normalizer{
		loc: time.FixedZone(name, utcOffsetHours*3600),
	}
}

// Location returns the target zone.
func (n *Normalizer) Location() *time.Location {
	return n.loc
}

// ParseString parses an ISO-8601 / RFC-3339 string, with or without
// an offset, and returns the instant in the target zone. Naive inputs
// are assumed to be UTC. Returns ErrInvalidTimestamp when the value
// cannot be parsed.
func (n *Normalizer) ParseString(value string) (time.Time, error) {
	for i, layout := range stringLayouts {
		var ts time.Time
		var err error
		if i >= naiveLayoutStart {
			ts, err = time.ParseInLocation(layout, value, time.UTC)
		} else {
			ts, err = time.Parse(layout, value)
		}
		if err == nil {
			return ts.In(n.loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrInvalidTimestamp, value)
}

// Normalize converts a native time value to the target zone. A zero
// time is invalid: it's what broken upstream records carry, and a zero
// instant would otherwise match against everything.
func (n *Normalizer) Normalize(ts time.Time) (time.Time, error) {
	if ts.IsZero() {
		return time.Time{}, fmt.Errorf("%w: zero time value", ErrInvalidTimestamp)
	}
	return ts.In(n.loc), nil
}

// Format renders a normalized instant the way reports display it,
// e.g. "2025-11-03 12:40 UTC+7".
func (n *Normalizer) Format(ts time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.In(n.loc).Format("2006-01-02 15:04 MST")
}
