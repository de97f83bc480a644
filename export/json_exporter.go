package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/models/service"
	"github.com/dietfit/meal-mapping-services/util"
)

// Document is the on-disk JSON shape: a full mirror of the MatchRun
// plus export metadata. Consumers read it without any access to the
// upstream stores.
type Document struct {
	Metadata Metadata            `json:"metadata"`
	Summary  *service.RunSummary `json:"summary"`
	Run      *service.MatchRun   `json:"run"`
}

type Metadata struct {
	RunID             string `json:"run_id"`
	ExportTimestamp   string `json:"export_timestamp"`
	TimeFilter        string `json:"time_filter"`
	MatchingAlgorithm string `json:"matching_algorithm"`
}

// requiredKeys are the top-level sections a valid export document
// must contain.
var requiredKeys = []string{"metadata", "summary", "run"}

// JSONExporter writes full JSON mirrors of match runs into the json/
// subdirectory of its export dir.
type JSONExporter struct {
	ExportDir string
	Location  *time.Location
}

func NewJSONExporter(exportDir string, loc *time.Location) *JSONExporter {
	return &JSONExporter{
		ExportDir: exportDir,
		Location:  loc,
	}
}

// Export writes the run to a timestamped file and returns the path.
func (e *JSONExporter) Export(run *service.MatchRun) (string, error) {
	dir := filepath.Join(e.ExportDir, "json")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	doc := Document{
		Metadata: Metadata{
			RunID:             run.RunID,
			ExportTimestamp:   time.Now().In(e.Location).Format(time.RFC3339),
			TimeFilter:        run.TimeFilterName,
			MatchingAlgorithm: constants.MatchingAlgorithm,
		},
		Summary: run.Summary,
		Run:     run,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	filename := filepath.Join(dir, e.fileName(run))
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", err
	}
	return filename, nil
}

func (e *JSONExporter) fileName(run *service.MatchRun) string {
	stamp := time.Now().In(e.Location).Format("20060102_150405")
	return fmt.Sprintf("meal_mapping_results_%s.json", stamp)
}

// FilesIn returns the export files in the named subdirectory of
// exportDir, e.g. FilesIn(dir, "json") or FilesIn(dir, "csv").
func FilesIn(exportDir, subdir string) ([]string, error) {
	return filepath.Glob(filepath.Join(exportDir, subdir, "*"))
}

// LoadDocument reads a previously exported file back and validates
// that the required sections are present.
func LoadDocument(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := ValidateDocument(data); err != nil {
		return nil, err
	}
	doc := &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ValidateDocument checks that data looks like an export document:
// well-formed JSON with every required top-level section.
func ValidateDocument(data []byte) error {
	sections := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &sections); err != nil {
		return fmt.Errorf("invalid JSON format: %v", err)
	}
	keys := make([]string, 0, len(sections))
	for key := range sections {
		keys = append(keys, key)
	}
	for _, required := range requiredKeys {
		if !util.StringListContains(keys, required) {
			return fmt.Errorf("export document is missing required key %q", required)
		}
	}
	return nil
}
