package common

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dietfit/meal-mapping-services/util"
	"github.com/op/go-logging"
	"github.com/spf13/viper"
)

type S3Credentials struct {
	Host      string `json:"host"`
	KeyID     string `json:"-"`
	SecretKey string `json:"-"`
	UseSSL    bool   `json:"use_ssl"`
}

type Config struct {
	BaseWorkingDir       string
	ConfigName           string
	DefaultDaysBack      int
	ExportDir            string
	ImageBucket          string
	ImagePrefix          string
	LogDir               string
	LogLevel             logging.Level
	NsqLookupd           string
	NsqURL               string
	RedisDefaultDB       int
	RedisPassword        string `json:"-"`
	RedisRetries         int
	RedisRetryMs         time.Duration
	RedisURL             string
	S3Credentials        S3Credentials
	TargetUTCOffsetHours int
	TracingAPIVersion    string
	TracingPageSize      int
	TracingPublicKey     string `json:"-"`
	TracingSecretKey     string `json:"-"`
	TracingURL           string
}

var logLevels = map[string]logging.Level{
	"CRITICAL": logging.CRITICAL,
	"ERROR":    logging.ERROR,
	"WARNING":  logging.WARNING,
	"NOTICE":   logging.NOTICE,
	"INFO":     logging.INFO,
	"DEBUG":    logging.DEBUG,
}

// NewConfig returns a new config based on ENV var MEAL_SERVICES_CONFIG
func NewConfig() *Config {
	config := loadConfig()
	config.expandPaths()
	config.sanityCheck()
	config.makeDirs()
	return config
}

func loadConfig() *Config {
	configDir, envName := getEnvVars()
	v := viper.New()
	v.AddConfigPath(configDir)
	v.SetConfigName(".env." + envName)
	v.SetConfigType("env")
	v.SetDefault("DEFAULT_DAYS_BACK", 1)
	v.SetDefault("TARGET_UTC_OFFSET_HOURS", 7)
	v.SetDefault("TRACING_API_VERSION", "v1")
	v.SetDefault("TRACING_PAGE_SIZE", 50)
	err := v.ReadInConfig()
	if err != nil {
		panic(fmt.Errorf("Fatal error config file: %s \n", err))
	}
	return &Config{
		BaseWorkingDir:  v.GetString("BASE_WORKING_DIR"),
		ConfigName:      envName,
		DefaultDaysBack: v.GetInt("DEFAULT_DAYS_BACK"),
		ExportDir:       v.GetString("EXPORT_DIR"),
		ImageBucket:     v.GetString("IMAGE_BUCKET"),
		ImagePrefix:     v.GetString("IMAGE_PREFIX"),
		LogDir:          v.GetString("LOG_DIR"),
		LogLevel:        logLevels[v.GetString("LOG_LEVEL")],
		NsqLookupd:      v.GetString("NSQ_LOOKUPD"),
		NsqURL:          v.GetString("NSQ_URL"),
		RedisDefaultDB:  v.GetInt("REDIS_DEFAULT_DB"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisRetries:    v.GetInt("REDIS_RETRIES"),
		RedisRetryMs:    v.GetDuration("REDIS_RETRY_MS"),
		RedisURL:        v.GetString("REDIS_URL"),
		S3Credentials: S3Credentials{
			Host:      v.GetString("S3_HOST"),
			KeyID:     v.GetString("S3_KEY"),
			SecretKey: v.GetString("S3_SECRET"),
			UseSSL:    v.GetBool("S3_USE_SSL"),
		},
		TargetUTCOffsetHours: v.GetInt("TARGET_UTC_OFFSET_HOURS"),
		TracingAPIVersion:    v.GetString("TRACING_API_VERSION"),
		TracingPageSize:      v.GetInt("TRACING_PAGE_SIZE"),
		TracingPublicKey:     v.GetString("TRACING_PUBLIC_KEY"),
		TracingSecretKey:     v.GetString("TRACING_SECRET_KEY"),
		TracingURL:           v.GetString("TRACING_URL"),
	}
}

func getEnvVars() (string, string) {
	configDir := getRequiredEnvVar("MEAL_CONFIG_DIR")
	envName := getRequiredEnvVar("MEAL_SERVICES_CONFIG")
	return configDir, envName
}

func getRequiredEnvVar(varName string) string {
	value := os.Getenv(varName)
	if value == "" {
		panic(fmt.Sprintf("Required env var %s not set", varName))
	}
	return value
}

// TargetLocation returns the fixed-offset zone all timestamps are
// normalized to before any comparison. Reference deployment is UTC+7.
func (c *Config) TargetLocation() *time.Location {
	name := fmt.Sprintf("UTC+%d", c.TargetUTCOffsetHours)
	if c.TargetUTCOffsetHours < 0 {
		name = fmt.Sprintf("UTC%d", c.TargetUTCOffsetHours)
	}
	return time.FixedZone(name, c.TargetUTCOffsetHours*3600)
}

// PidFilePath returns the path to the pid file for the named process.
func (c *Config) PidFilePath(processName string) string {
	return fmt.Sprintf("%s/%s.pid", c.BaseWorkingDir, processName)
}

// ToJSON returns the config as JSON for logging at startup.
// Credentials are excluded from serialization.
func (c *Config) ToJSON() string {
	data, _ := json.Marshal(c)
	return string(data)
}

// Expand ~ to home dir in path settings.
func (c *Config) expandPaths() {
	c.BaseWorkingDir = expandPath(c.BaseWorkingDir)
	c.ExportDir = expandPath(c.ExportDir)
	c.LogDir = expandPath(c.LogDir)
}

func expandPath(dirName string) string {
	dir, err := util.ExpandTilde(dirName)
	if err != nil {
		panic(err)
	}
	return dir
}

func (c *Config) sanityCheck() {
	if c.ImageBucket == "" {
		panic("Config is missing IMAGE_BUCKET")
	}
	if c.TracingURL == "" {
		panic("Config is missing TRACING_URL")
	}
}

func (c *Config) makeDirs() error {
	dirs := []string{
		c.BaseWorkingDir,
		c.ExportDir,
		c.LogDir,
	}
	for _, dir := range dirs {
		err := os.MkdirAll(dir, 0755)
		if err != nil {
			panic(err)
		}
	}
	return nil
}
