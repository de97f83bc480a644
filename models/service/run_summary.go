package service

// RunSummary holds the aggregate counts and rates for one match run.
// MatchRate and PairMatchEfficiency are raw, unrounded percentages;
// rounding to one decimal happens only at render time.
type RunSummary struct {
	TotalUsers              int     `json:"total_users"`
	UsersMatched            int     `json:"users_matched"`
	UsersWithoutCounterpart int     `json:"users_without_counterpart"`
	TotalImages             int     `json:"total_images"`
	TotalTraces             int     `json:"total_traces"`
	TotalMatchedPairs       int     `json:"total_matched_pairs"`
	TotalUnusedTraces       int     `json:"total_unused_traces"`
	TotalUnmatchedImages    int     `json:"total_unmatched_images"`
	TotalMatchedCost        float64 `json:"total_matched_cost"`
	MatchRate               float64 `json:"match_rate"`
	PairMatchEfficiency     float64 `json:"pair_match_efficiency"`
}
