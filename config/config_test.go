package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_URL", "AUTH_ENFORCE", "REDIS_ADDR", "CORS_ORIGINS", "LOG_LEVEL", "AUDIT_SCHEDULE"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, "stockbook.db", cfg.Database.URL)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.False(t, cfg.Auth.Enforce)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 300*time.Second, cfg.Database.ConnMaxLifetime)
	assert.Empty(t, cfg.Audit.Schedule)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/stock")
	t.Setenv("AUTH_ENFORCE", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "25")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("AUDIT_SCHEDULE", "0 */30 * * * *")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres://u:p@localhost/stock", cfg.Database.URL)
	assert.True(t, cfg.Auth.Enforce)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, "0 */30 * * * *", cfg.Audit.Schedule)
}

func TestValidateJWTSecret(t *testing.T) {
	cases := []struct {
		name    string
		env     string
		enforce bool
		secret  string
		wantErr bool
	}{
		{"development default", "development", false, DefaultJWTSecret, false},
		{"enforced default", "development", true, DefaultJWTSecret, true},
		{"production default", "production", false, DefaultJWTSecret, true},
		{"production empty", "production", false, "", true},
		{"production real secret", "production", true, "s3cr3t-value", false},
	}
	for _, tc := range cases {
		cfg := &Config{
			Server: ServerConfig{AppEnv: tc.env},
			Auth:   AuthConfig{JWTSecret: tc.secret, Enforce: tc.enforce},
		}
		err := cfg.Validate()
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInsecureJWTSecret, tc.name)
		} else {
			assert.NoError(t, err, tc.name)
		}
	}
}

func TestLogErrorFields(t *testing.T) {
	var buf bytes.Buffer
	logg := newLogger(LoggerConfig{Level: "bogus", Format: "json"}, &buf)
	assert.Equal(t, logrus.InfoLevel, logg.GetLevel())

	LogError(logg, "Services", "CreateInvoice", "insert invoice", map[string]int{"items": 2}, errors.New("boom"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "boom", entry["msg"])
	assert.Equal(t, "Services", entry["module"])
	assert.Equal(t, "CreateInvoice", entry["funcName"])
	assert.Equal(t, "insert invoice", entry["context"])
	assert.Equal(t, "error", entry["level"])
	assert.NotNil(t, entry["data"])
}
