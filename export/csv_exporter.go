package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dietfit/meal-mapping-services/models/service"
)

// csvHeader defines the flattened tabular projection of matched
// pairs: one row per pair, joining selected image and trace fields.
var csvHeader = []string{
	"user_id",
	"trace_id",
	"trace_name",
	"model",
	"input",
	"output",
	"total_cost",
	"session_id",
	"image_name",
	"image_key",
	"image_url",
	"image_size",
	"trace_timestamp",
	"image_timestamp",
	"time_difference_seconds",
}

// CSVExporter writes matched pairs into the csv/ subdirectory of its
// export dir. Unused traces and unmatched images are not part of this
// projection; the JSON mirror has them.
type CSVExporter struct {
	ExportDir string
	Location  *time.Location
}

func NewCSVExporter(exportDir string, loc *time.Location) *CSVExporter {
	return &CSVExporter{
		ExportDir: exportDir,
		Location:  loc,
	}
}

// Export writes one row per matched pair across all users in the run
// and returns the path, or an empty path when the run has no pairs.
func (e *CSVExporter) Export(run *service.MatchRun) (string, error) {
	rows := e.rows(run)
	if len(rows) == 0 {
		return "", nil
	}
	dir := filepath.Join(e.ExportDir, "csv")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	stamp := time.Now().In(e.Location).Format("20060102_150405")
	filename := filepath.Join(dir, fmt.Sprintf("matched_pairs_%s.csv", stamp))
	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeader); err != nil {
		return "", err
	}
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	writer.Flush()
	return filename, writer.Error()
}

func (e *CSVExporter) rows(run *service.MatchRun) [][]string {
	rows := make([][]string, 0)
	for _, match := range run.UserMatches {
		for _, pair := range match.MatchedPairs {
			rows = append(rows, []string{
				match.UserID,
				pair.Trace.ID,
				pair.Trace.Name,
				pair.Trace.Model,
				pair.Trace.Input,
				pair.Trace.Output,
				strconv.FormatFloat(pair.Trace.Cost, 'f', -1, 64),
				pair.Trace.SessionID,
				pair.Image.FileName(),
				pair.Image.ObjectKey,
				pair.Image.URL,
				strconv.FormatInt(pair.Image.Size, 10),
				pair.TraceTimestamp.In(e.Location).Format(time.RFC3339),
				pair.ImageTimestamp.In(e.Location).Format(time.RFC3339),
				strconv.FormatFloat(pair.Seconds(), 'f', 1, 64),
			})
		}
	}
	return rows
}
