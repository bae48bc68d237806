package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, float64(100), cfg.Server.RateLimitRPS)
	assert.Equal(t, 200, cfg.Server.RateLimitBurst)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "pixlhub", cfg.Database.DBName)

	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())

	assert.Equal(t, "pixlhub-assets", cfg.Storage.Bucket)

	assert.Equal(t, 30, cfg.Export.ExpiryDays)
	assert.Equal(t, 3600, cfg.Export.DownloadTTL)
	assert.Equal(t, 3, cfg.Export.PreviewLimit)

	assert.False(t, cfg.Task.StrictTransitions)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
  rate_limit_rps: 50
export:
  expiry_days: 7
task:
  strict_transitions: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// 文件中的值覆盖默认值,未设置的保持默认
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, float64(50), cfg.Server.RateLimitRPS)
	assert.Equal(t, 200, cfg.Server.RateLimitBurst)
	assert.Equal(t, 7, cfg.Export.ExpiryDays)
	assert.True(t, cfg.Task.StrictTransitions)
	assert.Equal(t, 3600, cfg.Export.DownloadTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestIsProduction(t *testing.T) {
	assert.False(t, IsProduction(nil))
	assert.False(t, IsProduction(&Config{Env: "development"}))
	assert.True(t, IsProduction(&Config{Env: "production"}))
}
