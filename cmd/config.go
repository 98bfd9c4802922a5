package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPHost string
	HTTPPort string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSslMode      string
	DBQueryTimeout time.Duration

	LogLevel slog.Level

	OrderStatusPolicy string
	OrderRequireItems bool

	BroadcastQueueSize int
	WSClientBuffer     int

	AMQPURL                string
	AMQPExchange           string
	KafkaHost              string
	KafkaOrderChangedTopic string

	SequenceRetentionDays int
	ShutdownTimeout       time.Duration
}

// Addr is the listen address of the HTTP server.
func (c Config) Addr() string {
	return c.HTTPHost + ":" + c.HTTPPort
}

var loadDotEnv sync.Once

// LoadConfig reads the environment, after loading .env from the working
// directory when one exists. Variables already set win over the file.
func LoadConfig() (Config, error) {
	loadDotEnv.Do(func() {
		_ = godotenv.Load(".env")
	})

	env := envReader{}
	cfg := Config{
		HTTPHost: env.String("HTTP_HOST", "0.0.0.0"),
		HTTPPort: env.String("HTTP_PORT", "5000"),

		DBHost:         env.String("DB_HOST", "localhost"),
		DBPort:         env.String("DB_PORT", "5432"),
		DBUser:         env.String("DB_USER", "postgres"),
		DBPassword:     env.String("DB_PASSWORD", ""),
		DBName:         env.String("DB_NAME", "kitchenpos"),
		DBSslMode:      env.String("DB_SSLMODE", "disable"),
		DBQueryTimeout: env.Duration("DB_QUERY_TIMEOUT", 5*time.Second),

		LogLevel: env.Level("LOG_LEVEL", slog.LevelInfo),

		OrderStatusPolicy: env.String("ORDER_STATUS_POLICY", "permissive"),
		OrderRequireItems: env.Bool("ORDER_REQUIRE_ITEMS", false),

		BroadcastQueueSize: env.Int("BROADCAST_QUEUE_SIZE", 256),
		WSClientBuffer:     env.Int("WS_CLIENT_BUFFER", 64),

		AMQPURL:                env.String("AMQP_URL", ""),
		AMQPExchange:           env.String("AMQP_EXCHANGE", "orders_fanout"),
		KafkaHost:              env.String("KAFKA_HOST", ""),
		KafkaOrderChangedTopic: env.String("KAFKA_ORDER_CHANGED_TOPIC", "orders.changed"),

		SequenceRetentionDays: env.Int("SEQUENCE_RETENTION_DAYS", 7),
		ShutdownTimeout:       env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg, errors.Join(env.errs...)
}

// envReader collects parse errors so every bad variable is reported at once.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("invalid %s=%q: %w", key, value, err))
}

func (r *envReader) String(key, def string) string {
	if v, ok := r.lookup(key); ok {
		return v
	}
	return def
}

func (r *envReader) Int(key string, def int) int {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return n
}

func (r *envReader) Bool(key string, def bool) bool {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return b
}

func (r *envReader) Duration(key string, def time.Duration) time.Duration {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.fail(key, v, err)
		return def
	}
	return d
}

func (r *envReader) Level(key string, def slog.Level) slog.Level {
	v, ok := r.lookup(key)
	if !ok {
		return def
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		r.fail(key, v, err)
		return def
	}
	return level
}
