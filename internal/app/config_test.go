package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultFile(t *testing.T) {
	c, path, err := LoadConfig(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, path, c.File)

	assert.Equal(t, ":9000", c.Server.HttpPort)
	assert.Equal(t, "sqlite", c.Database.Type)
	assert.True(t, c.Database.AutoMigrate)
	assert.True(t, c.Snapshot.Enabled)
	assert.Equal(t, "0 * * * *", c.Snapshot.Cron)
	assert.Equal(t, 24, c.Snapshot.Keep)
	assert.Equal(t, "#3498db", c.Client.AccentColor)
	assert.Equal(t, 10*time.Second, c.GetClientTimeout())
}

func TestParseConfig_DefaultsFillMissingSections(t *testing.T) {
	c, err := ParseConfig([]byte("server:\n  http-port: :8080\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.Server.HttpPort)
	assert.Equal(t, "release", c.Server.RunMode)
	assert.Equal(t, "storage/database/roadmap.sqlite3", c.Database.Path)
	assert.Equal(t, "X-Trace-ID", c.Tracer.Header)
	assert.Equal(t, 60*time.Second, c.GetContextTimeout())

	wp := c.GetWorkerPoolConfig()
	assert.Equal(t, 16, wp.MaxWorkers)
	assert.Equal(t, 256, wp.QueueSize)

	wq := c.GetWriteQueueConfig()
	assert.Equal(t, 30*time.Second, wq.WriteTimeout)
	assert.Equal(t, 10*time.Minute, wq.IdleTimeout)
}

func TestParseConfig_ExplicitFalseIsKept(t *testing.T) {
	c, err := ParseConfig([]byte("database:\n  auto-migrate: false\n"))
	require.NoError(t, err)
	assert.False(t, c.Database.AutoMigrate)
}

func TestParseConfig_Invalid(t *testing.T) {
	cases := map[string]string{
		"database type":  "database:\n  type: oracle\n",
		"cron":           "snapshot:\n  enabled: true\n  cron: \"every minute\"\n",
		"keep":           "snapshot:\n  keep: -1\n",
		"client timeout": "client:\n  timeout: soon\n",
		"rate capacity":  "rate-limit:\n  enabled: true\n  capacity: 0\n",
		"yaml":           "server: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseConfig([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestGetDatabaseConfig(t *testing.T) {
	c, err := ParseConfig([]byte("server:\n  run-mode: debug\ndatabase:\n  type: postgres\n  host: db\n  port: 6543\n  ssl-mode: require\n"))
	require.NoError(t, err)

	dc := c.GetDatabaseConfig()
	assert.Equal(t, "postgres", dc.Type)
	assert.Equal(t, "db", dc.Host)
	assert.Equal(t, 6543, dc.Port)
	assert.Equal(t, "require", dc.SSLMode)
	assert.Equal(t, "debug", dc.RunMode)
	assert.Equal(t, 10, dc.MaxIdleConns)
}

func TestConfigSave(t *testing.T) {
	c, err := ParseConfig(nil)
	require.NoError(t, err)
	c.File = filepath.Join(t.TempDir(), "config.yaml")
	c.Snapshot.Keep = 3
	require.NoError(t, c.Save())

	data, err := os.ReadFile(c.File)
	require.NoError(t, err)
	again, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Snapshot.Keep)
	assert.Equal(t, c.Client, again.Client)
}
