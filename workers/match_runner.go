package workers

import (
	ctx "context"
	"fmt"
	"strings"
	"time"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/matching"
	"github.com/dietfit/meal-mapping-services/models/common"
	"github.com/dietfit/meal-mapping-services/models/records"
	"github.com/dietfit/meal-mapping-services/models/service"
	"github.com/dietfit/meal-mapping-services/util"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// MatchRunner drives one complete matching pipeline invocation:
// fetch traces for the time window, scan the image bucket, group,
// match, aggregate, save the run to Redis, and queue the run ID for
// the export worker. Fetches are fully materialized before the
// engine runs; the engine itself is a pure in-memory computation.
type MatchRunner struct {
	Context *common.Context

	// Days is the days-back window for trace selection. The run
	// starts from users who have traces in that window, then checks
	// for their images.
	Days int

	// NumWorkers bounds the per-user matching goroutines.
	NumWorkers int

	// SkipExportQueue suppresses posting the completed run to NSQ,
	// for one-off manual runs.
	SkipExportQueue bool
}

func NewMatchRunner(days, numWorkers int, skipExportQueue bool) *MatchRunner {
	context := common.NewContext()
	if days < 1 {
		days = context.Config.DefaultDaysBack
	}
	return &MatchRunner{
		Context:         context,
		Days:            days,
		NumWorkers:      numWorkers,
		SkipExportQueue: skipExportQueue,
	}
}

// Run executes the pipeline once and returns the completed run.
func (r *MatchRunner) Run() (*service.MatchRun, error) {
	pidFile := r.Context.Config.PidFilePath("match_runner")
	if util.AnotherProcessIsRunning(pidFile) {
		return nil, fmt.Errorf("another match runner (pid %d) is already scanning this bucket", util.ReadPidFile(pidFile))
	}
	if err := util.WritePidFile(pidFile); err != nil {
		return nil, err
	}
	defer util.DeletePidFile(pidFile)

	runID := uuid.New().String()
	startedAt := time.Now().UTC()
	r.logStartup(runID)

	// Phase 1: scope selection. We start from the tracing backend:
	// users with no traces in the window are out of scope entirely.
	end := time.Now().In(r.Context.Normalizer.Location())
	start := end.AddDate(0, 0, -r.Days)
	traces, invalidTraces, err := r.Context.TracingClient.TracesInWindow(start, end)
	if err != nil {
		return nil, common.NewProcessingError(runID, r.Context.TracingClient.HostURL, err.Error(), false)
	}
	r.Context.Logger.Infof("Found %d traces in window [%s, %s)", len(traces),
		start.Format(time.RFC3339), end.Format(time.RFC3339))
	if invalidTraces > 0 {
		r.Context.Logger.Warningf("Dropped %d traces with unparseable timestamps", invalidTraces)
	}
	if len(traces) == 0 {
		r.Context.Logger.Info("No traces found in the specified time range")
		run := matching.EmptyRun(runID, r.Days, startedAt)
		if invalidTraces > 0 {
			run.Skipped[constants.SkipInvalidTimestamp] = invalidTraces
		}
		return run, r.finishRun(run)
	}

	// Phase 2: match against the image store.
	images, err := r.ScanImageBucket(runID)
	if err != nil {
		return nil, err
	}
	r.Context.Logger.Infof("Found %d images in bucket %s", len(images), r.Context.Config.ImageBucket)

	grouping := matching.GroupByUser(images, traces)
	if invalidTraces > 0 {
		grouping.Skipped[constants.SkipInvalidTimestamp] += invalidTraces
	}
	for reason, count := range grouping.Skipped {
		r.Context.Logger.Warningf("Skipped %d records: %s", count, reason)
	}
	matches, noCounterpart := matching.MatchAll(grouping, r.NumWorkers)
	run := matching.AssembleRun(runID, r.Days, startedAt, grouping, matches, noCounterpart)
	r.Context.Logger.Infof("Run %s matched %d pairs across %d users (%d users without counterpart)",
		runID, run.Summary.TotalMatchedPairs, run.Summary.TotalUsers, run.Summary.UsersWithoutCounterpart)
	return run, r.finishRun(run)
}

// finishRun persists the run and queues it for export. A Redis
// failure is reported but doesn't invalidate the in-memory run;
// the caller can still render a report from it.
func (r *MatchRunner) finishRun(run *service.MatchRun) error {
	if err := r.Context.RedisClient.MatchRunSave(run); err != nil {
		return common.NewProcessingError(run.RunID, "redis", err.Error(), false)
	}
	if r.SkipExportQueue {
		return nil
	}
	if err := r.Context.NSQClient.Enqueue(constants.ExportTopic, run.RunID); err != nil {
		return common.NewProcessingError(run.RunID, constants.ExportTopic, err.Error(), false)
	}
	r.Context.Logger.Infof("Queued run %s on topic %s", run.RunID, constants.ExportTopic)
	return nil
}

// ScanImageBucket lists every object under the configured prefix and
// converts it to an Image record. Objects with unusable keys or
// timestamps are still returned, with an empty user ID or zero
// timestamp; the grouper excludes and counts them, so nothing is
// silently dropped here.
func (r *MatchRunner) ScanImageBucket(runID string) ([]*records.Image, error) {
	config := r.Context.Config
	images := make([]*records.Image, 0)
	objectCh := r.Context.S3Client.ListObjects(
		ctx.Background(),
		config.ImageBucket,
		minio.ListObjectsOptions{
			Prefix:    config.ImagePrefix,
			Recursive: true,
		})
	for obj := range objectCh {
		if obj.Err != nil {
			return nil, common.NewProcessingError(runID, config.ImageBucket, obj.Err.Error(), false)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		images = append(images, r.imageFromObject(obj))
	}
	return images, nil
}

func (r *MatchRunner) imageFromObject(obj minio.ObjectInfo) *records.Image {
	config := r.Context.Config
	userID := UserIDFromKey(obj.Key, config.ImagePrefix)
	if userID == "" {
		r.Context.Logger.Warningf("No user id in object key %s", obj.Key)
	}
	ts, err := r.Context.Normalizer.Normalize(obj.LastModified)
	if err != nil {
		r.Context.Logger.Warningf("Unusable timestamp on object %s: %v", obj.Key, err)
	}
	return &records.Image{
		ID:        obj.Key,
		UserID:    userID,
		Timestamp: ts,
		ObjectKey: obj.Key,
		URL:       r.Context.ImageURL(obj.Key),
		Size:      obj.Size,
	}
}

// UserIDFromKey extracts the user id from an object key of the form
// <prefix><user_id>/<filename>. Returns an empty string when the key
// doesn't match that shape.
func UserIDFromKey(key, prefix string) string {
	if !strings.HasPrefix(key, prefix) {
		return ""
	}
	parts := strings.Split(strings.TrimPrefix(key, prefix), "/")
	if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
		return ""
	}
	return parts[0]
}

func (r *MatchRunner) logStartup(runID string) {
	r.Context.Logger.Infof("Starting match run %s with config settings:", runID)
	r.Context.Logger.Info(r.Context.Config.ToJSON())
	r.Context.Logger.Infof("Time filter: %s", constants.TimeFilterName(r.Days))
}
