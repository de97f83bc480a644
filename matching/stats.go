package matching

import (
	"fmt"

	"github.com/dietfit/meal-mapping-services/models/service"
)

// Summarize derives the aggregate counts and rates for one run.
//
// MatchRate is the percentage of users considered who obtained at
// least one matched pair. PairMatchEfficiency is the percentage of
// images that obtained a trace; with zero images it is defined as 0,
// never a division error. Cost is aggregated over matched pairs only,
// since unused traces were by definition not tied to any image.
//
// Raw percentages are kept unrounded; display layers round to one
// decimal.
func Summarize(matches []*service.UserMatch, noCounterpart []*service.NoCounterpartUser) *service.RunSummary {
	summary := &service.RunSummary{
		TotalUsers:              len(matches) + len(noCounterpart),
		UsersWithoutCounterpart: len(noCounterpart),
	}
	for _, match := range matches {
		if match.HasPairs() {
			summary.UsersMatched++
		}
		summary.TotalImages += match.ImageCount
		summary.TotalTraces += match.TraceCount
		summary.TotalMatchedPairs += match.PairCount()
		summary.TotalUnusedTraces += len(match.UnusedTraces)
		summary.TotalUnmatchedImages += len(match.UnmatchedImages)
		for _, pair := range match.MatchedPairs {
			summary.TotalMatchedCost += pair.Trace.Cost
		}
	}
	for _, user := range noCounterpart {
		summary.TotalImages += user.ImageCount
		summary.TotalTraces += user.TraceCount
	}
	if summary.TotalUsers > 0 {
		summary.MatchRate = float64(summary.UsersMatched) / float64(summary.TotalUsers) * 100
	}
	if summary.TotalImages > 0 {
		summary.PairMatchEfficiency = float64(summary.TotalMatchedPairs) / float64(summary.TotalImages) * 100
	}
	assertSane(summary)
	return summary
}

// assertSane panics on impossible aggregates. These are engine
// invariant violations, not recoverable conditions: a negative count
// or a rate above 100 means matched pairs leaked or records were
// double-counted upstream.
func assertSane(summary *service.RunSummary) {
	if summary.TotalMatchedPairs < 0 || summary.TotalImages < 0 || summary.TotalTraces < 0 {
		panic(fmt.Sprintf("matching: negative count in summary: %+v", summary))
	}
	if summary.MatchRate > 100 || summary.PairMatchEfficiency > 100 {
		panic(fmt.Sprintf("matching: rate above 100%% in summary: %+v", summary))
	}
}
