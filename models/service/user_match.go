package service

import (
	"github.com/dietfit/meal-mapping-services/models/records"
)

// UserMatch holds the matching outcome for one user. Every trace
// belonging to the user appears in exactly one of MatchedPairs or
// UnusedTraces, and every image in exactly one of MatchedPairs or
// UnmatchedImages. Nothing is silently dropped or duplicated.
type UserMatch struct {
	UserID          string           `json:"user_id"`
	MatchedPairs    []*MatchedPair   `json:"matched_pairs"`
	UnusedTraces    []*records.Trace `json:"unused_traces"`
	UnmatchedImages []*records.Image `json:"unmatched_images"`
	ImageCount      int              `json:"image_count"`
	TraceCount      int              `json:"trace_count"`
}

func NewUserMatch(userID string) *UserMatch {
	return &UserMatch{
		UserID:          userID,
		MatchedPairs:    make([]*MatchedPair, 0),
		UnusedTraces:    make([]*records.Trace, 0),
		UnmatchedImages: make([]*records.Image, 0),
	}
}

// PairCount returns the number of matched pairs for this user.
func (match *UserMatch) PairCount() int {
	return len(match.MatchedPairs)
}

// HasPairs returns true if at least one image obtained a trace.
func (match *UserMatch) HasPairs() bool {
	return len(match.MatchedPairs) > 0
}

// MatchEfficiency returns the fraction (0..1) of this user's records
// that paired up, with the larger of the two sides as denominator.
func (match *UserMatch) MatchEfficiency() float64 {
	denominator := match.TraceCount
	if match.ImageCount > denominator {
		denominator = match.ImageCount
	}
	if denominator == 0 {
		return 0
	}
	return float64(len(match.MatchedPairs)) / float64(denominator)
}
