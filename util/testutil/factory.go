package testutil

import (
	"fmt"
	"time"

	"github.com/dietfit/meal-mapping-services/models/records"
	"github.com/dietfit/meal-mapping-services/models/service"
)

// TargetZone matches the reference deployment's UTC+7.
var TargetZone = time.FixedZone("UTC+7", 7*3600)

// BaseTime anchors every factory timestamp so tests stay deterministic.
var BaseTime = time.Date(2025, 6, 10, 10, 0, 0, 0, TargetZone)

const (
	UserID = "user-7f3a"
	Bucket = "service-dietfit-test"
	Prefix = "meal-images/"
)

// At returns BaseTime shifted by the given number of minutes.
func At(minutes int) time.Time {
	return BaseTime.Add(time.Duration(minutes) * time.Minute)
}

// GetImage returns an image for userID with a timestamp minutes after
// BaseTime.
func GetImage(userID, fileName string, minutes int) *records.Image {
	key := fmt.Sprintf("%s%s/%s", Prefix, userID, fileName)
	return &records.Image{
		ID:        key,
		UserID:    userID,
		Timestamp: At(minutes),
		ObjectKey: key,
		URL:       fmt.Sprintf("https://%s.s3.example.com/%s", Bucket, key),
		Size:      2048,
	}
}

// GetTrace returns a trace for userID with a timestamp minutes after
// BaseTime.
func GetTrace(userID, traceID string, minutes int) *records.Trace {
	return &records.Trace{
		ID:        traceID,
		UserID:    userID,
		Timestamp: At(minutes),
		Name:      "meal-analysis",
		Cost:      0.0042,
		Model:     "gpt-4o-mini",
		Input:     "analyze this meal",
		Output:    "rice, egg, vegetables",
		SessionID: "session-" + traceID,
	}
}

// GetUserMatch returns a match result with one pair, one unused trace
// and one unmatched image.
func GetUserMatch() *service.UserMatch {
	img := GetImage(UserID, "lunch.jpg", 6)
	trace := GetTrace(UserID, "tr-a", 5)
	match := service.NewUserMatch(UserID)
	match.ImageCount = 2
	match.TraceCount = 2
	match.MatchedPairs = append(match.MatchedPairs, &service.MatchedPair{
		Image:          img,
		Trace:          trace,
		ImageTimestamp: img.Timestamp,
		TraceTimestamp: trace.Timestamp,
		TimeDifference: img.Timestamp.Sub(trace.Timestamp),
	})
	match.UnusedTraces = append(match.UnusedTraces, GetTrace(UserID, "tr-b", 40))
	match.UnmatchedImages = append(match.UnmatchedImages, GetImage(UserID, "breakfast.jpg", -120))
	return match
}

// GetMatchRun returns a small but complete run with a summary, one
// matched user and one user without images.
func GetMatchRun() *service.MatchRun {
	match := GetUserMatch()
	noImages := &service.NoCounterpartUser{
		UserID:      "user-9c1d",
		MissingSide: "images",
		Traces:      []*records.Trace{GetTrace("user-9c1d", "tr-z", 15)},
		TraceCount:  1,
	}
	return &service.MatchRun{
		RunID:                   "11111111-2222-3333-4444-555555555555",
		StartedAt:               BaseTime.UTC(),
		FinishedAt:              BaseTime.Add(time.Minute).UTC(),
		TimeFilterDays:          1,
		TimeFilterName:          "Past 1 day",
		UserMatches:             []*service.UserMatch{match},
		UsersWithoutCounterpart: []*service.NoCounterpartUser{noImages},
		Summary: &service.RunSummary{
			TotalUsers:              2,
			UsersMatched:            1,
			UsersWithoutCounterpart: 1,
			TotalImages:             2,
			TotalTraces:             3,
			TotalMatchedPairs:       1,
			TotalUnusedTraces:       1,
			TotalUnmatchedImages:    1,
			TotalMatchedCost:        0.0042,
			MatchRate:               50,
			PairMatchEfficiency:     50,
		},
	}
}
