package workers

import (
	"strings"

	"github.com/dietfit/meal-mapping-services/constants"
	"github.com/dietfit/meal-mapping-services/export"
	"github.com/dietfit/meal-mapping-services/models/common"
	"github.com/nsqio/go-nsq"
)

// ExportWorker consumes completed run IDs from the NSQ export topic,
// loads each run from Redis, and writes the JSON mirror and the
// matched-pairs CSV. Exports are read-only consumers of the run
// structure; a failed export never mutates the stored run.
type ExportWorker struct {
	Context      *common.Context
	NSQConsumer  *nsq.Consumer
	JSONExporter *export.JSONExporter
	CSVExporter  *export.CSVExporter

	// ChannelBufferSize caps NSQ messages in flight.
	ChannelBufferSize int
}

func NewExportWorker(channelBufferSize int) *ExportWorker {
	context := common.NewContext()
	loc := context.Normalizer.Location()
	return &ExportWorker{
		Context:           context,
		JSONExporter:      export.NewJSONExporter(context.Config.ExportDir, loc),
		CSVExporter:       export.NewCSVExporter(context.Config.ExportDir, loc),
		ChannelBufferSize: channelBufferSize,
	}
}

// RegisterAsNsqConsumer registers this worker as an NSQ consumer on
// the export topic. Note that as soon as you call this, the worker
// will start handling messages if any are available.
func (w *ExportWorker) RegisterAsNsqConsumer() error {
	config := nsq.NewConfig()
	config.Set("heartbeat_interval", "10s")
	config.Set("max_in_flight", w.ChannelBufferSize)
	consumer, err := nsq.NewConsumer(constants.ExportTopic, constants.ExportChannel, config)
	if err != nil {
		return err
	}
	w.NSQConsumer = consumer
	w.NSQConsumer.AddHandler(w)
	if err := w.NSQConsumer.ConnectToNSQLookupd(w.Context.Config.NsqLookupd); err != nil {
		return err
	}
	w.Context.Logger.Info("Registered as NSQ consumer")
	return nil
}

// HandleMessage writes export artifacts for one run ID. Returning an
// error makes NSQ requeue the message, which is what we want for
// transient Redis or filesystem trouble.
func (w *ExportWorker) HandleMessage(message *nsq.Message) error {
	runID := strings.TrimSpace(string(message.Body))
	if runID == "" {
		w.Context.Logger.Error("Discarding message with empty run id")
		return nil
	}
	run, err := w.Context.RedisClient.MatchRunGet(runID)
	if err != nil {
		w.Context.Logger.Errorf("Cannot load run %s: %v", runID, err)
		return err
	}
	jsonPath, err := w.JSONExporter.Export(run)
	if err != nil {
		w.Context.Logger.Errorf("JSON export failed for run %s: %v", runID, err)
		return err
	}
	w.Context.Logger.Infof("Run %s exported to %s", runID, jsonPath)

	csvPath, err := w.CSVExporter.Export(run)
	if err != nil {
		w.Context.Logger.Errorf("CSV export failed for run %s: %v", runID, err)
		return err
	}
	if csvPath == "" {
		w.Context.Logger.Infof("Run %s has no matched pairs; no CSV written", runID)
	} else {
		w.Context.Logger.Infof("Run %s matched pairs written to %s", runID, csvPath)
	}
	return nil
}
