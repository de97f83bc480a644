package matching

import (
	"time"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/models/service"
)

// AssembleRun combines per-user results, no-counterpart users and the
// aggregate summary into the MatchRun structure that exporters and
// displays consume. Pure transformation, no I/O. Full image and trace
// records stay attached to every pair so downstream projections never
// need to re-fetch.
func AssembleRun(runID string, days int, startedAt time.Time, grouping *Grouping, matches []*service.UserMatch, noCounterpart []*service.NoCounterpartUser) *service.MatchRun {
	return &service.MatchRun{
		RunID:                   runID,
		StartedAt:               startedAt,
		FinishedAt:              time.Now().UTC(),
		TimeFilterDays:          days,
		TimeFilterName:          constants.TimeFilterName(days),
		UserMatches:             matches,
		UsersWithoutCounterpart: noCounterpart,
		Summary:                 Summarize(matches, noCounterpart),
		Skipped:                 grouping.Skipped,
	}
}

// EmptyRun returns the result of a run that saw no records at all:
// summary counts of zero, all lists empty. Empty input never raises.
func EmptyRun(runID string, days int, startedAt time.Time) *service.MatchRun {
	return AssembleRun(runID, days, startedAt,
		&Grouping{Buckets: map[string]*Bucket{}, Skipped: map[string]int{}},
		[]*service.UserMatch{}, []*service.NoCounterpartUser{})
}
