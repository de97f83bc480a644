package workers_test

import (
	"bytes"
	ctx "context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dietfit/meal-mapping-services/matching"
	"github.com/dietfit/meal-mapping-services/models/common"
	"github.com/dietfit/meal-mapping-services/network"
	"github.com/dietfit/meal-mapping-services/util/logger"
	"github.com/dietfit/meal-mapping-services/util/testutil"
	"github.com/dietfit/meal-mapping-services/workers"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tracingHandler serves a single page of traces for the two test
// users, timestamped one minute before the images are uploaded, plus
// one trace with an unusable timestamp.
func tracingHandler(t *testing.T) http.HandlerFunc {
	stamp := time.Now().UTC().Add(-time.Minute).Format(time.RFC3339)
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"data": []map[string]interface{}{
				{"id": "tr-1", "name": "meal-analysis", "userId": "user-1",
					"timestamp": stamp, "totalCost": 0.01},
				{"id": "tr-2", "name": "meal-analysis", "userId": "user-no-images",
					"timestamp": stamp, "totalCost": 0.02},
				{"id": "tr-3", "name": "meal-analysis", "userId": "user-1",
					"timestamp": "not-a-timestamp", "totalCost": 0.03},
			},
			"meta": map[string]interface{}{
				"page": 1, "limit": 50, "totalItems": 3, "totalPages": 1,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(body))
	}
}

// newTestContext wires a Context against in-process fakes: gofakes3
// for the bucket, miniredis for the run store, and an httptest server
// for the tracing backend.
func newTestContext(t *testing.T, s3Server *testutil.S3Server, redisServer *testutil.RedisServer, tracingURL string) *common.Context {
	normalizer := matching.NewNormalizer(7)
	log, _ := logger.InitLogger(t.TempDir(), logging.ERROR)

	s3Host := strings.TrimPrefix(s3Server.URL, "http://")
	s3Client, err := minio.New(s3Host, &minio.Options{
		Creds:  credentials.NewStaticV4("test", "test", ""),
		Secure: false,
	})
	require.NoError(t, err)

	tracingClient, err := network.NewTracingClient(tracingURL, "v1",
		"pk-test", "sk-test", 50, normalizer, log)
	require.NoError(t, err)

	return &common.Context{
		Config: &common.Config{
			BaseWorkingDir:       t.TempDir(),
			DefaultDaysBack:      1,
			ImageBucket:          testutil.Bucket,
			ImagePrefix:          testutil.Prefix,
			S3Credentials:        common.S3Credentials{Host: s3Host},
			TargetUTCOffsetHours: 7,
			TracingPageSize:      50,
		},
		Logger:        log,
		Normalizer:    normalizer,
		RedisClient:   network.NewRedisClient(redisServer.Addr(), "", 0),
		S3Client:      s3Client,
		TracingClient: tracingClient,
	}
}

func putObject(t *testing.T, context *common.Context, key string) {
	content := []byte("fake image bytes")
	_, err := context.S3Client.PutObject(
		ctx.Background(),
		testutil.Bucket,
		key,
		bytes.NewReader(content),
		int64(len(content)),
		minio.PutObjectOptions{ContentType: "image/jpeg"})
	require.NoError(t, err)
}

func TestMatchRunnerRun(t *testing.T) {
	s3Server := testutil.NewS3Server()
	defer s3Server.Close()
	redisServer := testutil.NewRedisServer()
	defer redisServer.Close()
	tracingServer := httptest.NewServer(tracingHandler(t))
	defer tracingServer.Close()

	context := newTestContext(t, s3Server, redisServer, tracingServer.URL)
	putObject(t, context, testutil.Prefix+"user-1/lunch.jpg")
	putObject(t, context, testutil.Prefix+"user-with-no-traces/snack.jpg")

	runner := &workers.MatchRunner{
		Context:         context,
		Days:            1,
		NumWorkers:      2,
		SkipExportQueue: true,
	}
	run, err := runner.Run()
	require.NoError(t, err)
	require.NotNil(t, run)

	// user-1 pairs up; the other two users each lack one side.
	assert.Equal(t, 3, run.Summary.TotalUsers)
	assert.Equal(t, 1, run.Summary.UsersMatched)
	assert.Equal(t, 2, run.Summary.UsersWithoutCounterpart)
	assert.Equal(t, 1, run.Summary.TotalMatchedPairs)
	assert.InDelta(t, 0.01, run.Summary.TotalMatchedCost, 0.000001)

	// The trace with the unusable timestamp is dropped at parse time
	// and counted as a skipped record on the run.
	assert.Equal(t, 1, run.Skipped["invalid_timestamp"])

	require.Equal(t, 1, len(run.UserMatches))
	pair := run.UserMatches[0].MatchedPairs[0]
	assert.Equal(t, "user-1", run.UserMatches[0].UserID)
	assert.Equal(t, "tr-1", pair.Trace.ID)
	assert.Equal(t, "lunch.jpg", pair.Image.FileName())
	assert.True(t, pair.TimeDifference > 0)

	// The run is retrievable from the run store.
	stored, err := context.RedisClient.MatchRunGet(run.RunID)
	require.NoError(t, err)
	assert.Equal(t, run.Summary.TotalMatchedPairs, stored.Summary.TotalMatchedPairs)
}

func TestMatchRunnerEmptyWindow(t *testing.T) {
	s3Server := testutil.NewS3Server()
	defer s3Server.Close()
	redisServer := testutil.NewRedisServer()
	defer redisServer.Close()
	tracingServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [], "meta": {"page": 1, "limit": 50, "totalItems": 0, "totalPages": 0}}`))
	}))
	defer tracingServer.Close()

	context := newTestContext(t, s3Server, redisServer, tracingServer.URL)
	runner := &workers.MatchRunner{
		Context:         context,
		Days:            7,
		NumWorkers:      1,
		SkipExportQueue: true,
	}
	run, err := runner.Run()
	require.NoError(t, err)
	assert.True(t, run.IsEmpty())
	assert.Equal(t, 0, run.Summary.TotalUsers)
	assert.Equal(t, "Past 7 days", run.TimeFilterName)
}

func TestScanImageBucket(t *testing.T) {
	s3Server := testutil.NewS3Server()
	defer s3Server.Close()
	redisServer := testutil.NewRedisServer()
	defer redisServer.Close()

	context := newTestContext(t, s3Server, redisServer, "http://localhost:1")
	putObject(t, context, testutil.Prefix+"user-1/lunch.jpg")
	putObject(t, context, testutil.Prefix+"user-1/dinner.jpg")
	putObject(t, context, testutil.Prefix+"stray-file.jpg")

	runner := &workers.MatchRunner{Context: context, Days: 1, NumWorkers: 1}
	images, err := runner.ScanImageBucket("run-test")
	require.NoError(t, err)
	require.Equal(t, 3, len(images))

	byKey := make(map[string]string)
	for _, img := range images {
		byKey[img.ObjectKey] = img.UserID
		assert.False(t, img.Timestamp.IsZero())
		assert.True(t, img.Size > 0)
	}
	assert.Equal(t, "user-1", byKey[testutil.Prefix+"user-1/lunch.jpg"])
	// A key without a user segment comes back with an empty user id;
	// the grouper skips and counts it.
	assert.Equal(t, "", byKey[testutil.Prefix+"stray-file.jpg"])
}
