package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageMemory, cfg.Storage.Type)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9090"
storage:
  type: postgres
  databaseURL: postgres://localhost/hub
auth:
  jwtSecret: s3cr3t
  tokenTTL: 1h
rateLimit:
  limit: 5
  burst: 10
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage.Type)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	// не заданные в файле поля берутся из умолчаний
	assert.Equal(t, "sid", cfg.Auth.CookieName)
	assert.NoError(t, cfg.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigFileUnreadable)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [1, 2"), 0o600))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrConfigFileUnmarshallable)
}

func TestEnvOverrides(t *testing.T) {
	cfg := Default()
	cfg.applyEnv(env(map[string]string{
		"PORT":         "7000",
		"STORAGE":      StorageMongo,
		"MONGO_URL":    "mongodb://localhost:27017",
		"JWT_SECRET":   "x",
		"DATABASE_URL": "",
	}))
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, StorageMongo, cfg.Storage.Type)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Storage.MongoURL)
	assert.Empty(t, cfg.Storage.DatabaseURL)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Type = StoragePostgres
	assert.ErrorIs(t, cfg.Validate(), ErrDatabaseURLMissing)

	cfg.Storage.DatabaseURL = "postgres://localhost/hub"
	assert.ErrorIs(t, cfg.Validate(), ErrJWTSecretMissing)

	cfg = Default()
	cfg.Storage.Type = "sqlite"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownStorage)

	cfg = Default()
	cfg.Logging.Format = "xml"
	assert.ErrorIs(t, cfg.Validate(), ErrUnknownLogFormat)
}
