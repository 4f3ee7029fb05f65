package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is everything the server and the quiz runner need from the environment.
type Config struct {
	// Mode is "dev" or "prod"
	Mode string
	Port string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// DSN is the database connection string
	DSN string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	TokenTTL    time.Duration

	AllowedOrigins []string
	QuizSeconds    int
	LogLevel       string
}

func (c *Config) IsDev() bool {
	return c.Mode != "prod"
}

// QuizBudget is the per-question countdown.
func (c *Config) QuizBudget() time.Duration {
	return time.Duration(c.QuizSeconds) * time.Second
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_MODE", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DB_URL", "")
	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ISSUER", "lingocards-api")
	v.SetDefault("JWT_AUDIENCE", "lingocards")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("QUIZ_SECONDS", 30)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", slog.String("error", err.Error()))
	}
	return FromViper(NewViper())
}

// NewViper returns a viper instance bound to the environment with defaults set.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Mode:        strings.ToLower(v.GetString("APP_MODE")),
		Port:        v.GetString("PORT"),
		Driver:      strings.ToLower(v.GetString("DB_DRIVER")),
		DSN:         v.GetString("DB_URL"),
		JWTSecret:   v.GetString("JWT_SECRET_KEY"),
		JWTIssuer:   v.GetString("JWT_ISSUER"),
		JWTAudience: v.GetString("JWT_AUDIENCE"),
		TokenTTL:    v.GetDuration("JWT_TTL"),
		QuizSeconds: v.GetInt("QUIZ_SECONDS"),
		LogLevel:    strings.ToLower(v.GetString("LOG_LEVEL")),
	}
	for _, origin := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fills derived defaults and rejects unusable settings.
func (c *Config) Validate() error {
	if c.Mode != "dev" && c.Mode != "prod" {
		c.Mode = "dev"
	}
	switch c.Driver {
	case "sqlite":
		if c.DSN == "" {
			c.DSN = "flashcards_" + c.Mode + ".db?_foreign_keys=on"
		}
	case "postgres":
		if c.DSN == "" {
			return errors.New("DB_URL is required for the postgres driver")
		}
	default:
		return errors.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
	if c.JWTSecret == "" {
		if !c.IsDev() {
			return errors.New("JWT_SECRET_KEY not set")
		}
		c.JWTSecret = "dev-secret-change-me-0123456789abcdef"
		slog.Warn("JWT_SECRET_KEY not set, using the development secret")
	}
	if c.QuizSeconds <= 0 {
		return errors.Errorf("QUIZ_SECONDS must be positive, got %d", c.QuizSeconds)
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
