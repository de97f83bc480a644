package constants

import "fmt"

const (
	// ExportTopic is the NSQ topic to which the match runner posts
	// completed run IDs and from which the export worker reads.
	ExportTopic = "match_run_export"

	// ExportChannel is the NSQ channel the export worker registers on.
	ExportChannel = "export_worker"

	// MissingImages means a user has traces but no stored images.
	// This is the expected steady state, since runs select users
	// from the tracing backend first.
	MissingImages = "images"

	// MissingTraces means a user has stored images but no traces.
	MissingTraces = "traces"

	// SkipMissingUserID counts records excluded from grouping because
	// they carry no user identifier.
	SkipMissingUserID = "missing_user_id"

	// SkipInvalidTimestamp counts records excluded from matching
	// because their timestamp could not be normalized.
	SkipInvalidTimestamp = "invalid_timestamp"

	// MatchingAlgorithm tags export metadata so downstream consumers
	// know which pairing rule produced the results.
	MatchingAlgorithm = "1-to-1 closest-preceding-trace"
)

// TimeFilterPreset is a named days-back window for trace selection.
type TimeFilterPreset struct {
	Name string
	Days int
}

var TimeFilterPresets = []TimeFilterPreset{
	{Name: "Past 1 day", Days: 1},
	{Name: "Past 7 days", Days: 7},
	{Name: "Past 14 days", Days: 14},
	{Name: "Past 1 month", Days: 30},
}

// TimeFilterName returns the preset name for the given days-back
// value, or a generated name if days doesn't match any preset.
func TimeFilterName(days int) string {
	for _, preset := range TimeFilterPresets {
		if preset.Days == days {
			return preset.Name
		}
	}
	if days == 1 {
		return "Past 1 day"
	}
	return fmt.Sprintf("Past %d days", days)
}
