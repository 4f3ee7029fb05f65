package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every key; viper ignores empty environment values.
func clearEnv(t *testing.T) {
	for _, key := range []string{"APP_MODE", "PORT", "DB_DRIVER", "DB_URL", "JWT_SECRET_KEY", "JWT_ISSUER",
		"JWT_AUDIENCE", "JWT_TTL", "ALLOWED_ORIGINS", "QUIZ_SECONDS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestFromViperDefaults(t *testing.T) {
	clearEnv(t)
	v := NewViper()

	cfg, err := FromViper(v)
	require.NoError(t, err)

	tests := []struct {
		name     string
		expected any
		actual   any
	}{
		{"mode", "dev", cfg.Mode},
		{"port", "8080", cfg.Port},
		{"driver", "sqlite", cfg.Driver},
		{"dsn", "flashcards_dev.db?_foreign_keys=on", cfg.DSN},
		{"issuer", "lingocards-api", cfg.JWTIssuer},
		{"audience", "lingocards", cfg.JWTAudience},
		{"ttl", 24 * time.Hour, cfg.TokenTTL},
		{"origins", []string{"http://localhost:3000"}, cfg.AllowedOrigins},
		{"quiz budget", 30 * time.Second, cfg.QuizBudget()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.actual)
		})
	}
	assert.NotEmpty(t, cfg.JWTSecret, "dev mode falls back to a development secret")
}

func TestFromViperOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_MODE", "prod")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_URL", "postgres://localhost/flashcards")
	t.Setenv("JWT_SECRET_KEY", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("QUIZ_SECONDS", "45")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := FromViper(NewViper())
	require.NoError(t, err)

	assert.False(t, cfg.IsDev())
	assert.Equal(t, "postgres://localhost/flashcards", cfg.DSN)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 45*time.Second, cfg.QuizBudget())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"prod without secret", Config{Mode: "prod", Driver: "sqlite", QuizSeconds: 30}},
		{"postgres without dsn", Config{Mode: "dev", Driver: "postgres", QuizSeconds: 30}},
		{"unknown driver", Config{Mode: "dev", Driver: "mongo", QuizSeconds: 30}},
		{"zero quiz budget", Config{Mode: "dev", Driver: "sqlite", JWTSecret: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Mode: "prod", LogLevel: "warn"}
	logger := NewLogger(cfg, &buf)
	logger.Info("hidden")
	logger.Warn("shown", "set_id", "s1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"set_id":"s1"`)

	buf.Reset()
	NewLogger(&Config{Mode: "dev", LogLevel: "debug"}, &buf).Debug("details", "n", 1)
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "n=1")
}
