package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, 24, c.JWTTTLHours)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, "info", c.LogLevel)
}

func TestApplyDefaultsPostgresPort(t *testing.T) {
	c := AppConfig{DBDriver: "postgres"}
	applyDefaults(&c)
	assert.Equal(t, "5432", c.DBPort)
}

func TestLoadJSONConfigGroupedSections(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"app": {"AppPort": "9090", "JWTSecret": "s3cret", "RateLimitPerMinute": 30, "AllowedOrigins": ["http://localhost:3000"]},
		"database": {"Driver": "postgres", "DBHost": "db", "DBName": "lifeos_test"},
		"redis": {"Enabled": true, "RedisPort": 6380},
		"log": {"Level": "debug", "MaxBackups": 9}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))

	assert.Equal(t, "9090", c.AppPort)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "db", c.DBHost)
	assert.Equal(t, "lifeos_test", c.DBName)
	assert.True(t, c.RedisEnabled)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 9, c.LogMaxBackups)
}

func TestLoadJSONConfigMissingFileIsIgnored(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"), &c))
	assert.Equal(t, AppConfig{}, c)
}

func TestLoadJSONConfigInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	var c AppConfig
	assert.Error(t, loadJSONConfig(path, &c))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.test , ,http://b.test")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("LOG_COMPRESS", "true")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "15")

	c := AppConfig{AppPort: "8080", DBDriver: "mysql"}
	applyEnvOverrides(&c)

	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, c.AllowedOrigins)
	assert.True(t, c.RedisEnabled)
	assert.True(t, c.LogCompress)
	assert.Equal(t, 15, c.RateLimitPerMinute)
}

func TestDialectorFor(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := dialectorFor(AppConfig{DBDriver: driver, DBName: "lifeos"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}

	_, err := dialectorFor(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestOpenDatabaseSQLite(t *testing.T) {
	cfg := AppConfig{DBDriver: "sqlite", DatabaseURI: filepath.Join(t.TempDir(), "open.db"), LogLevel: "silent"}
	conn, err := OpenDatabase(cfg)
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer sqlDB.Close()
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, toGormLogLevel("debug"))
	assert.Equal(t, logger.Warn, toGormLogLevel(""))
	assert.Equal(t, logger.Error, toGormLogLevel("error"))
	assert.Equal(t, logger.Silent, toGormLogLevel("silent"))
	assert.Equal(t, logger.Warn, toGormLogLevel("bogus"))
}
