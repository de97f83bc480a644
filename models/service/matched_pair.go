package service

import (
	"time"

	"github.com/dietfit/meal-mapping-services/models/records"
)

// MatchedPair binds one image to its closest strictly-preceding,
// still-available trace. TraceTimestamp is always strictly earlier
// than ImageTimestamp, so TimeDifference is always positive.
//
// Both full records are carried, not just identifiers, so exporters
// can project any subset of fields without re-fetching.
type MatchedPair struct {
	Image          *records.Image `json:"image"`
	Trace          *records.Trace `json:"trace"`
	ImageTimestamp time.Time      `json:"image_timestamp"`
	TraceTimestamp time.Time      `json:"trace_timestamp"`
	TimeDifference time.Duration  `json:"time_difference_nanos"`
}

// Seconds returns the image-to-trace gap in seconds.
func (pair *MatchedPair) Seconds() float64 {
	return pair.TimeDifference.Seconds()
}

// Minutes returns the image-to-trace gap in minutes.
func (pair *MatchedPair) Minutes() float64 {
	return pair.TimeDifference.Minutes()
}
