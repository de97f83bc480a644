package service

import (
	"github.com/dietfit/meal-mapping-services/models/records"
)

// NoCounterpartUser describes a user who appears in only one of the
// two streams. MissingSide says which side is absent: a user with
// traces but no images has MissingSide == constants.MissingImages.
type NoCounterpartUser struct {
	UserID      string           `json:"user_id"`
	MissingSide string           `json:"missing_side"`
	Traces      []*records.Trace `json:"traces,omitempty"`
	Images      []*records.Image `json:"images,omitempty"`
	TraceCount  int              `json:"trace_count,omitempty"`
	ImageCount  int              `json:"image_count,omitempty"`
}

// RecordCount returns the number of records on whichever side the
// user does have.
func (user *NoCounterpartUser) RecordCount() int {
	if user.TraceCount > 0 {
		return user.TraceCount
	}
	return user.ImageCount
}
