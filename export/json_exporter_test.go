package export_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dietfit/meal-mapping-services/export"
	"github.com/dietfit/meal-mapping-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONExporterExport(t *testing.T) {
	dir := t.TempDir()
	exporter := export.NewJSONExporter(dir, testutil.TargetZone)
	run := testutil.GetMatchRun()

	filename, err := exporter.Export(run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "json"), filepath.Dir(filename))
	assert.True(t, strings.HasPrefix(filepath.Base(filename), "meal_mapping_results_"))
	assert.True(t, strings.HasSuffix(filename, ".json"))

	doc, err := export.LoadDocument(filename)
	require.NoError(t, err)
	assert.Equal(t, run.RunID, doc.Metadata.RunID)
	assert.Equal(t, "Past 1 day", doc.Metadata.TimeFilter)
	assert.Equal(t, "1-to-1 closest-preceding-trace", doc.Metadata.MatchingAlgorithm)
	require.NotNil(t, doc.Summary)
	assert.Equal(t, run.Summary.TotalMatchedPairs, doc.Summary.TotalMatchedPairs)
	require.NotNil(t, doc.Run)
	assert.Equal(t, 1, len(doc.Run.UserMatches))
}

func TestLoadDocumentMissingFile(t *testing.T) {
	_, err := export.LoadDocument(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestValidateDocument(t *testing.T) {
	valid := []byte(`{"metadata": {}, "summary": {}, "run": {}}`)
	assert.NoError(t, export.ValidateDocument(valid))

	missing := []byte(`{"metadata": {}, "run": {}}`)
	err := export.ValidateDocument(missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "summary")

	err = export.ValidateDocument([]byte("not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON format")
}

func TestLoadDocumentRejectsIncomplete(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "partial.json")
	require.NoError(t, os.WriteFile(filename, []byte(`{"metadata": {}}`), 0644))
	_, err := export.LoadDocument(filename)
	assert.Error(t, err)
}
