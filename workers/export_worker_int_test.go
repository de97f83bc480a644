//go:build integration
// +build integration

package workers_test

import (
	"testing"
	"time"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/export"
	"github.com/dietfit/meal-mapping-services/util/testutil"
	"github.com/dietfit/meal-mapping-services/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires live redis, nsqd and nsqlookupd, plus MEAL_CONFIG_DIR and
// MEAL_SERVICES_CONFIG pointing at a config that reaches them.
func TestExportWorkerRoundTrip(t *testing.T) {
	worker := workers.NewExportWorker(20)
	require.NoError(t, worker.RegisterAsNsqConsumer())
	defer worker.NSQConsumer.Stop()

	run := testutil.GetMatchRun()
	require.NoError(t, worker.Context.RedisClient.MatchRunSave(run))
	defer worker.Context.RedisClient.MatchRunDelete(run.RunID)

	require.NoError(t, worker.Context.NSQClient.Enqueue(constants.ExportTopic, run.RunID))

	exportDir := worker.Context.Config.ExportDir
	deadline := time.Now().Add(15 * time.Second)
	for time.Now().Before(deadline) {
		files, err := export.FilesIn(exportDir, "json")
		require.NoError(t, err)
		if len(files) > 0 {
			doc, err := export.LoadDocument(files[len(files)-1])
			require.NoError(t, err)
			if doc.Metadata.RunID == run.RunID {
				assert.Equal(t, run.Summary.TotalMatchedPairs, doc.Summary.TotalMatchedPairs)
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatal("export worker did not write the JSON artifact in time")
}
