package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string // ex: "8080"
	GinMode string // "debug" | "release" | "test"

	DBDriver    string // "postgres" | "sqlite"
	DatabaseURL string // postgres DSN or sqlite file path

	SessionSecret string
	SiteURL       string

	LogLevel  string // "debug" | "info" | "warn" | "error"
	LogPretty bool

	MetadataTimeout   time.Duration // upper bound for one page metadata fetch
	MetadataUserAgent string
	// lets the fetcher reach loopback/private hosts, for local development
	MetadataAllowPrivate bool

	ShutdownTimeout time.Duration
}

const defaultPostgresDSN = "host=localhost user=postgres password=postgres dbname=techmarks port=5432 sslmode=disable TimeZone=UTC"

// Load reads .env (if present) and then the process environment.
// Environment variables win over .env values.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SESSION_SECRET", "secret_key_change_me")
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("METADATA_TIMEOUT", 5*time.Second)
	v.SetDefault("METADATA_USER_AGENT", "Mozilla/5.0 (compatible; techmarks/1.0; +https://github.com/techmarks)")
	v.SetDefault("METADATA_ALLOW_PRIVATE", false)
	v.SetDefault("SHUTDOWN_TIMEOUT", 5*time.Second)
	v.AutomaticEnv()
	return v
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		Port:              v.GetString("PORT"),
		GinMode:           v.GetString("GIN_MODE"),
		DBDriver:          v.GetString("DB_DRIVER"),
		DatabaseURL:       v.GetString("DATABASE_URL"),
		SessionSecret:     v.GetString("SESSION_SECRET"),
		SiteURL:           v.GetString("SITE_URL"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogPretty:         v.GetBool("LOG_PRETTY"),
		MetadataTimeout:   v.GetDuration("METADATA_TIMEOUT"),
		MetadataUserAgent: v.GetString("METADATA_USER_AGENT"),
		ShutdownTimeout:   v.GetDuration("SHUTDOWN_TIMEOUT"),

		MetadataAllowPrivate: v.GetBool("METADATA_ALLOW_PRIVATE"),
	}

	if cfg.DatabaseURL == "" {
		// Fallback for local dev if not set
		switch cfg.DBDriver {
		case "sqlite":
			cfg.DatabaseURL = "techmarks.db"
		default:
			cfg.DatabaseURL = defaultPostgresDSN
		}
	}
	if cfg.MetadataTimeout <= 0 {
		cfg.MetadataTimeout = 5 * time.Second
	}

	return cfg
}
