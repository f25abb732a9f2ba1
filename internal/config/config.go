package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// maxPasswordBytes mirrors bcrypt's input limit.
const maxPasswordBytes = 72

// Config holds runtime configuration sourced from env vars.
type Config struct {
	Port        string
	DatabaseURL string
	Secret      string
	MinID       int64
	MaxID       int64
	CORSOrigins []string
	HashWorkers int
	BcryptCost  int
	LogLevel    string
	LogFormat   string
	Bootstrap   BootstrapAdmin
}

// BootstrapAdmin describes the admin account created at start-up when absent.
type BootstrapAdmin struct {
	Username string
	Password string
	Name     string
	Surname  string
	Email    string
}

// Enabled reports whether a bootstrap admin was configured.
func (b BootstrapAdmin) Enabled() bool {
	return b.Username != "" && b.Password != ""
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ID_MIN", 1)
	v.SetDefault("ID_MAX", 999999999)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("HASH_WORKERS", 0)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("BOOTSTRAP_ADMIN_NAME", "Admin")
	v.SetDefault("BOOTSTRAP_ADMIN_SURNAME", "Admin")
}

// Load reads configuration from the environment and performs minimal validation.
func Load() (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:        trimmed(v, "PORT"),
		DatabaseURL: trimmed(v, "DATABASE_URL"),
		Secret:      trimmed(v, "APP_SECRET"),
		MinID:       v.GetInt64("ID_MIN"),
		MaxID:       v.GetInt64("ID_MAX"),
		CORSOrigins: parseCSV(v.GetString("CORS_ALLOWED_ORIGINS")),
		HashWorkers: v.GetInt("HASH_WORKERS"),
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		LogLevel:    trimmed(v, "LOG_LEVEL"),
		LogFormat:   trimmed(v, "LOG_FORMAT"),
		Bootstrap: BootstrapAdmin{
			Username: trimmed(v, "BOOTSTRAP_ADMIN_USERNAME"),
			Password: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
			Name:     trimmed(v, "BOOTSTRAP_ADMIN_NAME"),
			Surname:  trimmed(v, "BOOTSTRAP_ADMIN_SURNAME"),
			Email:    trimmed(v, "BOOTSTRAP_ADMIN_EMAIL"),
		},
	}

	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL is required")
	}
	if cfg.Secret == "" {
		return Config{}, errors.New("APP_SECRET is required")
	}
	if len(cfg.Bootstrap.Password) > maxPasswordBytes {
		return Config{}, fmt.Errorf("BOOTSTRAP_ADMIN_PASSWORD must be at most %d bytes", maxPasswordBytes)
	}
	if cfg.MinID > cfg.MaxID {
		return Config{}, fmt.Errorf("ID_MIN (%d) must not exceed ID_MAX (%d)", cfg.MinID, cfg.MaxID)
	}

	return cfg, nil
}

// HTTPAddress returns the host:port pair for the HTTP server to bind to.
func (c Config) HTTPAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
