package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Server captures process level configuration. Every field is read from an
// ENROLLMENT_* environment variable.
type Server struct {
	Addr            string        `env:"ENROLLMENT_ADDR"             envDefault:":8080"`
	LogLevel        string        `env:"ENROLLMENT_LOG_LEVEL"        envDefault:"info"`
	ShutdownTimeout time.Duration `env:"ENROLLMENT_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	RequestTimeout  time.Duration `env:"ENROLLMENT_REQUEST_TIMEOUT"  envDefault:"30s"`

	// CollaboratorTimeout bounds every student/offering lookup.
	CollaboratorTimeout time.Duration `env:"ENROLLMENT_COLLABORATOR_TIMEOUT" envDefault:"2s"`

	// SeedDemo upserts a small offering catalog and registers demo students
	// with the in-process student directory.
	SeedDemo bool `env:"ENROLLMENT_SEED_DEMO" envDefault:"false"`

	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Students Students
}

// Database selects the enrollment store. An empty URL runs the in-memory store.
type Database struct {
	URL          string        `env:"ENROLLMENT_DB_URL"`
	Driver       string        `env:"ENROLLMENT_DB_DRIVER"         envDefault:"pgx"`
	MaxOpenConns int           `env:"ENROLLMENT_DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns int           `env:"ENROLLMENT_DB_MAX_IDLE_CONNS" envDefault:"10"`
	ConnMaxLife  time.Duration `env:"ENROLLMENT_DB_CONN_MAX_LIFE"  envDefault:"30m"`
	Migrate      bool          `env:"ENROLLMENT_DB_MIGRATE"        envDefault:"true"`
}

// RedisConfig configures the student name cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"ENROLLMENT_REDIS_URL"`
	PoolSize     int           `env:"ENROLLMENT_REDIS_POOL_SIZE"      envDefault:"10"`
	MinIdleConns int           `env:"ENROLLMENT_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"ENROLLMENT_REDIS_DIAL_TIMEOUT"   envDefault:"2s"`
	ReadTimeout  time.Duration `env:"ENROLLMENT_REDIS_READ_TIMEOUT"   envDefault:"500ms"`
	WriteTimeout time.Duration `env:"ENROLLMENT_REDIS_WRITE_TIMEOUT"  envDefault:"500ms"`
	NameTTL      time.Duration `env:"ENROLLMENT_REDIS_NAME_TTL"       envDefault:"5m"`
}

// Kafka configures the outbox relay. No brokers disables publishing; events
// stay in the outbox.
type Kafka struct {
	Brokers           []string      `env:"ENROLLMENT_KAFKA_BROKERS"            envSeparator:","`
	Topic             string        `env:"ENROLLMENT_KAFKA_TOPIC"              envDefault:"enrollment-events"`
	ClientID          string        `env:"ENROLLMENT_KAFKA_CLIENT_ID"          envDefault:"registrar"`
	Partitions        int32         `env:"ENROLLMENT_KAFKA_PARTITIONS"         envDefault:"3"`
	ReplicationFactor int16         `env:"ENROLLMENT_KAFKA_REPLICATION_FACTOR" envDefault:"1"`
	RelayInterval     time.Duration `env:"ENROLLMENT_OUTBOX_INTERVAL"          envDefault:"1s"`
	RelayBatchSize    int           `env:"ENROLLMENT_OUTBOX_BATCH_SIZE"        envDefault:"100"`
}

// Students configures the student directory. An empty BaseURL uses the
// in-process directory.
type Students struct {
	BaseURL string `env:"ENROLLMENT_STUDENTS_URL"`
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.Parse(&cfg); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Database.Driver != "pgx" && cfg.Database.Driver != "postgres" {
		return Server{}, fmt.Errorf("unsupported database driver %q (want pgx or postgres)", cfg.Database.Driver)
	}
	if cfg.CollaboratorTimeout <= 0 {
		return Server{}, fmt.Errorf("collaborator timeout must be positive")
	}
	return cfg, nil
}
