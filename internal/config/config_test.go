package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envOf(map[string]string{
		"MONGO_URI": "mongodb://localhost:27017",
	}))
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, DefaultDBName, cfg.MongoDBName)
	assert.Equal(t, DefaultCollection, cfg.MongoCollection)
	assert.Equal(t, DefaultSeedFile, cfg.SeedFile)
	assert.Equal(t, DefaultTimeout, cfg.MongoTimeout)
	assert.Equal(t, "fleximart-catalog", cfg.AppName)
	assert.False(t, cfg.TraceStdout)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(envOf(map[string]string{
		"MONGO_URI":        "mongodb://db:27017",
		"MONGO_DB_NAME":    "catalog_test",
		"MONGO_COLLECTION": "items",
		"MONGO_TIMEOUT_MS": "2500",
		"SEED_FILE":        "/tmp/seed.json",
		"TRACE_STDOUT":     "true",
		"APP_NAME":         "loader",
	}))
	require.NoError(t, err)

	assert.Equal(t, "catalog_test", cfg.MongoDBName)
	assert.Equal(t, "items", cfg.MongoCollection)
	assert.Equal(t, 2500*time.Millisecond, cfg.MongoTimeout)
	assert.Equal(t, "/tmp/seed.json", cfg.SeedFile)
	assert.True(t, cfg.TraceStdout)
	assert.Equal(t, "loader", cfg.AppName)
}

func TestLoad_MissingMongoURI(t *testing.T) {
	_, err := Load(envOf(map[string]string{}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URI")
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	for _, v := range []string{"abc", "-5", "0"} {
		cfg, err := Load(envOf(map[string]string{
			"MONGO_URI":        "mongodb://localhost",
			"MONGO_TIMEOUT_MS": v,
		}))
		require.NoError(t, err)
		assert.Equal(t, DefaultTimeout, cfg.MongoTimeout, v)
	}
}

func TestSafeConfigOmitsURI(t *testing.T) {
	cfg := &Config{
		AppName:      "loader",
		MongoURI:     "mongodb://user:secret@db:27017",
		MongoDBName:  "fleximart_nosql",
		MongoTimeout: time.Second,
	}

	attrs := StructAttrs("data", cfg.ToSafeConfig())
	keys := map[string]slog.Value{}
	for _, a := range attrs {
		keys[a.Key] = a.Value
		assert.NotContains(t, a.Value.String(), "secret")
	}

	assert.Equal(t, "loader", keys["data.app_name"].String())
	assert.Equal(t, int64(1000), keys["data.mongo_timeout_ms"].Int64())
	assert.Equal(t, false, keys["data.trace_stdout"].Bool())
}

func TestToSnake(t *testing.T) {
	assert.Equal(t, "mongo_db_name", toSnake("MongoDbName"))
	assert.Equal(t, "app", toSnake("App"))
}
