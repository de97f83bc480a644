package export

import (
	"fmt"
	"io"
	"time"

	"github.com/dietfit/meal-mapping-services/models/service"
	"github.com/dietfit/meal-mapping-services/util"
)

const tableWidth = 80
const userIDWidth = 39
const maxDetailItems = 5

// Report renders plain-text summaries of a match run. All percentages
// are rounded to one decimal here, at the display edge; the structured
// results keep the raw values.
type Report struct {
	Writer   io.Writer
	Location *time.Location
}

func NewReport(w io.Writer, loc *time.Location) *Report {
	return &Report{Writer: w, Location: loc}
}

func (r *Report) line(char string, width int) {
	for i := 0; i < width; i++ {
		fmt.Fprint(r.Writer, char)
	}
	fmt.Fprintln(r.Writer)
}

func (r *Report) formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "N/A"
	}
	return ts.In(r.Location).Format("2006-01-02 15:04 MST")
}

// Summary writes the run totals and a per-user table.
func (r *Report) Summary(run *service.MatchRun) {
	w := r.Writer
	r.line("=", tableWidth)
	fmt.Fprintln(w, "MATCHING RESULTS SUMMARY")
	r.line("=", tableWidth)

	s := run.Summary
	fmt.Fprintf(w, "Time Filter: %s\n", run.TimeFilterName)
	fmt.Fprintf(w, "Total Users: %d\n", s.TotalUsers)
	fmt.Fprintf(w, "Users with matches: %d\n", s.UsersMatched)
	fmt.Fprintf(w, "Users without counterpart: %d\n", s.UsersWithoutCounterpart)
	fmt.Fprintf(w, "Total Traces: %d\n", s.TotalTraces)
	fmt.Fprintf(w, "Total Images: %d\n", s.TotalImages)
	fmt.Fprintf(w, "Total Matched Pairs: %d\n", s.TotalMatchedPairs)
	fmt.Fprintf(w, "Match Rate: %.1f%%\n", s.MatchRate)
	fmt.Fprintf(w, "Pair Match Efficiency: %.1f%%\n", s.PairMatchEfficiency)
	if s.TotalMatchedCost > 0 {
		fmt.Fprintf(w, "Total Matched Cost: %.4f\n", s.TotalMatchedCost)
	}
	for reason, count := range run.Skipped {
		fmt.Fprintf(w, "Skipped records (%s): %d\n", reason, count)
	}

	if len(run.UserMatches) > 0 {
		fmt.Fprintf(w, "\nSUCCESSFUL MATCHES (%d users):\n", len(run.UserMatches))
		r.line("-", tableWidth)
		fmt.Fprintf(w, "%-40s | %-6s | %-7s | %-7s | %-10s\n",
			"User ID", "Pairs", "Traces", "Images", "Efficiency")
		r.line("-", tableWidth)
		for _, match := range run.UserMatches {
			fmt.Fprintf(w, "%-40s | %-6d | %-7d | %-7d | %-10s\n",
				util.TruncateString(match.UserID, userIDWidth),
				match.PairCount(), match.TraceCount, match.ImageCount,
				fmt.Sprintf("%.1f%%", match.MatchEfficiency()*100))
		}
	}

	if len(run.UsersWithoutCounterpart) > 0 {
		fmt.Fprintf(w, "\nUSERS WITHOUT COUNTERPART (%d users):\n", len(run.UsersWithoutCounterpart))
		r.line("-", 70)
		fmt.Fprintf(w, "%-40s | %-8s | %-8s\n", "User ID", "Missing", "Count")
		r.line("-", 70)
		for _, user := range run.UsersWithoutCounterpart {
			fmt.Fprintf(w, "%-40s | %-8s | %-8d\n",
				util.TruncateString(user.UserID, userIDWidth),
				user.MissingSide, user.RecordCount())
		}
	}
}

// UserDetail writes pair-by-pair detail for one user.
func (r *Report) UserDetail(match *service.UserMatch) {
	w := r.Writer
	fmt.Fprintln(w)
	r.line("=", tableWidth)
	fmt.Fprintf(w, "DETAILED VIEW FOR USER: %s\n", match.UserID)
	r.line("=", tableWidth)

	if len(match.MatchedPairs) > 0 {
		fmt.Fprintf(w, "\nMATCHED IMAGE-TRACE PAIRS (%d):\n", len(match.MatchedPairs))
		r.line("-", tableWidth)
		for i, pair := range match.MatchedPairs {
			if i >= maxDetailItems {
				fmt.Fprintf(w, "... and %d more pairs\n", len(match.MatchedPairs)-maxDetailItems)
				break
			}
			fmt.Fprintf(w, "%d. IMAGE: %s (%s)\n", i+1, pair.Image.FileName(), r.formatTime(pair.ImageTimestamp))
			fmt.Fprintf(w, "   TRACE: %s (%s)\n", pair.Trace.DisplayName(), r.formatTime(pair.TraceTimestamp))
			fmt.Fprintf(w, "   TIME DIFF: %.1f minutes\n\n", pair.Minutes())
		}
	}

	if len(match.UnusedTraces) > 0 {
		fmt.Fprintf(w, "\nUNUSED TRACES (%d):\n", len(match.UnusedTraces))
		r.line("-", 60)
		for i, trace := range match.UnusedTraces {
			if i >= maxDetailItems {
				fmt.Fprintf(w, "... and %d more traces\n", len(match.UnusedTraces)-maxDetailItems)
				break
			}
			fmt.Fprintf(w, "%d. %s - %s\n", i+1, trace.DisplayName(), r.formatTime(trace.Timestamp))
		}
	}

	if len(match.UnmatchedImages) > 0 {
		fmt.Fprintf(w, "\nUNMATCHED IMAGES (%d):\n", len(match.UnmatchedImages))
		r.line("-", 60)
		for i, img := range match.UnmatchedImages {
			if i >= maxDetailItems {
				fmt.Fprintf(w, "... and %d more images\n", len(match.UnmatchedImages)-maxDetailItems)
				break
			}
			sizeMB := float64(img.Size) / (1024 * 1024)
			fmt.Fprintf(w, "%d. %s (%.2fMB) - %s\n", i+1, img.FileName(), sizeMB, r.formatTime(img.Timestamp))
		}
	}
}
