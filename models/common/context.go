package common

import (
	"fmt"

	"github.com/dietfit/meal-mapping-services/matching"
	"github.com/dietfit/meal-mapping-services/network"
	"github.com/dietfit/meal-mapping-services/util/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

// Context bundles the config and the external collaborators used by
// the workers: object store, tracing backend, Redis run store, and
// the NSQ export queue.
type Context struct {
	Config        *Config
	Logger        *logging.Logger
	Normalizer    *matching.Normalizer
	NSQClient     *network.NSQClient
	RedisClient   *network.RedisClient
	S3Client      *minio.Client
	TracingClient *network.TracingClient
}

func NewContext() *Context {
	config := NewConfig()
	_logger := getLogger(config)
	normalizer := matching.NewNormalizer(config.TargetUTCOffsetHours)
	return &Context{
		Config:        config,
		Logger:        _logger,
		Normalizer:    normalizer,
		NSQClient:     network.NewNSQClient(config.NsqURL),
		RedisClient:   getRedisClient(config),
		S3Client:      getS3Client(config),
		TracingClient: getTracingClient(config, normalizer, _logger),
	}
}

func getLogger(config *Config) *logging.Logger {
	log, _ := logger.InitLogger(config.LogDir, config.LogLevel)
	return log
}

func getRedisClient(config *Config) *network.RedisClient {
	return network.NewRedisClient(
		config.RedisURL,
		config.RedisPassword,
		config.RedisDefaultDB)
}

func getTracingClient(config *Config, normalizer *matching.Normalizer, logger *logging.Logger) *network.TracingClient {
	client, err := network.NewTracingClient(
		config.TracingURL,
		config.TracingAPIVersion,
		config.TracingPublicKey,
		config.TracingSecretKey,
		config.TracingPageSize,
		normalizer,
		logger)
	if err != nil {
		msg := fmt.Sprintf("Could not initialize tracing client: %v", err)
		panic(msg)
	}
	return client
}

func getS3Client(config *Config) *minio.Client {
	creds := config.S3Credentials
	client, err := minio.New(
		creds.Host,
		&minio.Options{
			Creds:  credentials.NewStaticV4(creds.KeyID, creds.SecretKey, ""),
			Secure: creds.UseSSL,
		})
	if err != nil {
		panic(err)
	}
	return client
}

// ImageURL returns the resolvable public URL for an object in the
// image bucket.
func (context *Context) ImageURL(key string) string {
	scheme := "http"
	if context.Config.S3Credentials.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s.%s/%s", scheme,
		context.Config.ImageBucket, context.Config.S3Credentials.Host, key)
}
