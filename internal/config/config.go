package config

import (
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
)

// Store backends.
const (
	BackendFile     = "file"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

// StoreConfig selects and addresses the record store backend.
type StoreConfig struct {
	Backend   string `long:"backend" env:"BACKEND" default:"file" choice:"file" choice:"dynamodb" choice:"redis" description:"Record store backend"`
	Dir       string `long:"dir" env:"DIR" default:"data" description:"Directory of collection files (file backend)"`
	Table     string `long:"table" env:"TABLE" default:"library-records" description:"DynamoDB table holding collections (dynamodb backend)"`
	RedisAddr string `long:"redis-addr" env:"REDIS_ADDR" default:"localhost:6379" description:"Redis address (redis backend)"`
}

// HTTPConfig configures the API server.
type HTTPConfig struct {
	Addr string `long:"addr" env:"ADDR" default:":8080" description:"Listen address when running locally"`
}

// NotificationsConfig configures delivery of decision notifications.
type NotificationsConfig struct {
	QueueURL string `long:"queue-url" env:"QUEUE_URL" description:"SQS queue for decision events; empty stores notifications in-process"`
}

// MetricsConfig configures CloudWatch decision metrics.
type MetricsConfig struct {
	Enabled   bool   `long:"enabled" env:"ENABLED" description:"Publish decision metrics to CloudWatch"`
	Namespace string `long:"namespace" env:"NAMESPACE" default:"LibraryCheckout" description:"CloudWatch metric namespace"`
}

// IdempotencyConfig configures Idempotency-Key handling of checkouts.
type IdempotencyConfig struct {
	TTL   time.Duration `long:"ttl" env:"TTL" default:"48h" description:"How long a checkout response is replayed"`
	Table string        `long:"table" env:"TABLE" default:"library-idempotency" description:"DynamoDB idempotency table (dynamodb backend)"`
}

// Config is the complete configuration of the API and worker binaries.
type Config struct {
	Log           LogConfig           `group:"Logging" namespace:"log" env-namespace:"LOG"`
	HTTP          HTTPConfig          `group:"HTTP" namespace:"http" env-namespace:"HTTP"`
	Store         StoreConfig         `group:"Store" namespace:"store" env-namespace:"STORE"`
	Notifications NotificationsConfig `group:"Notifications" namespace:"notifications" env-namespace:"NOTIFICATIONS"`
	Metrics       MetricsConfig       `group:"Metrics" namespace:"metrics" env-namespace:"METRICS"`
	Idempotency   IdempotencyConfig   `group:"Idempotency" namespace:"idempotency" env-namespace:"IDEMPOTENCY"`

	RunLocal bool `long:"run-local" env:"RUN_LOCAL" description:"Serve HTTP directly instead of running as a Lambda handler"`
}

// NeedsAWS reports whether any configured component talks to AWS.
func (c Config) NeedsAWS() bool {
	return c.Store.Backend == BackendDynamoDB || c.Notifications.QueueURL != "" || c.Metrics.Enabled
}

// Parse fills cfg from args and the environment.
func Parse(cfg *Config, args []string) error {
	var parser = flags.NewParser(cfg, flags.Default)
	_, err := parser.ParseArgs(args)
	return err
}

// MustParse parses the process arguments and environment into a Config,
// exiting on error.
func MustParse() Config {
	var cfg Config
	if err := Parse(&cfg, os.Args[1:]); err != nil {
		var flagErr, ok = err.(*flags.Error)
		if ok && flagErr.Type == flags.ErrHelp {
			os.Exit(0)
		} else if ok {
			// go-flags already printed the problem.
			os.Exit(1)
		}
		log.WithField("err", err).Fatal("failed to parse configuration")
	}
	return cfg
}
