package export_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dietfit/meal-mapping-services/export"
	"github.com/dietfit/meal-mapping-services/models/service"
	"github.com/dietfit/meal-mapping-services/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterExport(t *testing.T) {
	dir := t.TempDir()
	exporter := export.NewCSVExporter(dir, testutil.TargetZone)
	run := testutil.GetMatchRun()

	filename, err := exporter.Export(run)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "csv"), filepath.Dir(filename))
	assert.True(t, strings.HasPrefix(filepath.Base(filename), "matched_pairs_"))

	file, err := os.Open(filename)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)

	// Header plus one row for the single matched pair.
	require.Equal(t, 2, len(rows))
	assert.Equal(t, "user_id", rows[0][0])
	assert.Equal(t, "time_difference_seconds", rows[0][len(rows[0])-1])

	row := rows[1]
	assert.Equal(t, testutil.UserID, row[0])
	assert.Equal(t, "tr-a", row[1])
	assert.Equal(t, "meal-analysis", row[2])
	assert.Equal(t, "gpt-4o-mini", row[3])
	assert.Equal(t, "lunch.jpg", row[8])
	assert.Equal(t, "60.0", row[len(row)-1])
}

func TestCSVExporterNoPairs(t *testing.T) {
	dir := t.TempDir()
	exporter := export.NewCSVExporter(dir, testutil.TargetZone)
	run := &service.MatchRun{RunID: "empty", Summary: &service.RunSummary{}}

	filename, err := exporter.Export(run)
	require.NoError(t, err)
	assert.Equal(t, "", filename)

	// No csv directory should appear for an empty export.
	_, err = os.Stat(filepath.Join(dir, "csv"))
	assert.True(t, os.IsNotExist(err))
}
