package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 2*time.Second, cfg.CollaboratorTimeout)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "enrollment-events", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ENROLLMENT_ADDR", ":9090")
	t.Setenv("ENROLLMENT_DB_URL", "postgres://u:p@localhost/db")
	t.Setenv("ENROLLMENT_DB_DRIVER", "postgres")
	t.Setenv("ENROLLMENT_KAFKA_BROKERS", "a:9092,b:9092")
	t.Setenv("ENROLLMENT_COLLABORATOR_TIMEOUT", "750ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 750*time.Millisecond, cfg.CollaboratorTimeout)
}

func TestFromEnv_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("ENROLLMENT_DB_DRIVER", "mysql")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
