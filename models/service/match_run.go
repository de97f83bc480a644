package service

import (
	"encoding/json"
	"time"
)

// MatchRun is the complete result of one matching pipeline invocation:
// per-user results, users without a counterpart, aggregate summary,
// and data-quality counts for records excluded along the way. This is
// what gets saved to Redis under the run ID and consumed read-only by
// the exporters.
type MatchRun struct {
	RunID                   string               `json:"run_id"`
	StartedAt               time.Time            `json:"started_at"`
	FinishedAt              time.Time            `json:"finished_at,omitempty"`
	TimeFilterDays          int                  `json:"time_filter_days"`
	TimeFilterName          string               `json:"time_filter_name"`
	UserMatches             []*UserMatch         `json:"user_matches"`
	UsersWithoutCounterpart []*NoCounterpartUser `json:"users_without_counterpart"`
	Summary                 *RunSummary          `json:"summary"`

	// Skipped counts records excluded before matching, keyed by
	// reason (constants.SkipMissingUserID etc). These are data
	// quality issues, not errors: a bad record never aborts a run.
	Skipped map[string]int `json:"skipped,omitempty"`
}

func MatchRunFromJson(jsonData string) (*MatchRun, error) {
	run := &MatchRun{}
	err := json.Unmarshal([]byte(jsonData), run)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (run *MatchRun) ToJson() (string, error) {
	bytes, err := json.Marshal(run)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// RunTime returns how long the run took, or the time elapsed so far
// if it hasn't finished.
func (run *MatchRun) RunTime() time.Duration {
	if run.StartedAt.IsZero() {
		return time.Duration(0)
	}
	end := run.FinishedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(run.StartedAt)
}

// IsEmpty returns true when the run saw no users at all. Empty input
// is a valid outcome, not an error.
func (run *MatchRun) IsEmpty() bool {
	return len(run.UserMatches) == 0 && len(run.UsersWithoutCounterpart) == 0
}
