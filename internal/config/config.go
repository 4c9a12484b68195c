// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"gadgetsite"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"gadgetsite"`

	// Valkey (Redis-compatible cache + session store)
	ValkeyHost     string        `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string        `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	ListCacheTTL   time.Duration `env:"LIST_CACHE_TTL" envDefault:"5m"`

	// S3-compatible object storage. When S3Endpoint is empty, uploads go to
	// LocalMediaDir and are served under LocalMediaURL.
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3Region      string `env:"S3_REGION" envDefault:"fsn1"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`
	S3Bucket      string `env:"S3_BUCKET" envDefault:"gadgetsite-media"`
	S3PublicURL   string `env:"S3_PUBLIC_URL"`
	LocalMediaDir string `env:"LOCAL_MEDIA_DIR" envDefault:"data/media"`
	LocalMediaURL string `env:"LOCAL_MEDIA_URL" envDefault:"/media"`

	// Upload limits and blob lifecycle.
	MaxImageUploadMB     int64 `env:"MAX_IMAGE_UPLOAD_MB" envDefault:"20"`
	MaxVideoUploadMB     int64 `env:"MAX_VIDEO_UPLOAD_MB" envDefault:"200"`
	MediaCleanupOnDelete bool  `env:"MEDIA_CLEANUP_ON_DELETE" envDefault:"false"`

	// Service-level credential for the admin provisioning endpoint.
	// The endpoint is disabled when empty.
	ServiceKey string `env:"SERVICE_KEY"`
	// ProvisionAccounts is a JSON array of {"email","password","name"}
	// used when the provisioning request carries no accounts.
	ProvisionAccounts string `env:"PROVISION_ACCOUNTS"`

	// Public site
	SiteName       string `env:"SITE_NAME" envDefault:"Univers des Gadgets"`
	WhatsAppNumber string `env:"CONTACT_WHATSAPP" envDefault:"237697320490"`
	ContactEmail   string `env:"CONTACT_EMAIL" envDefault:"contact@universdegadgets.com"`
	MapEmbedURL    string `env:"MAP_EMBED_URL" envDefault:"https://www.google.com/maps?q=2MRV%2B6V6+Douala&output=embed"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
		if cfg.ServiceKey != "" && len(cfg.ServiceKey) < 32 {
			return nil, fmt.Errorf("SERVICE_KEY must be at least 32 characters in production")
		}
	}

	if cfg.MaxImageUploadMB <= 0 || cfg.MaxVideoUploadMB <= 0 {
		return nil, fmt.Errorf("upload limits must be positive")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Enabled returns true when object storage credentials are configured.
func (c *Config) S3Enabled() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

// MaxImageUploadBytes returns the image upload limit in bytes.
func (c *Config) MaxImageUploadBytes() int64 {
	return c.MaxImageUploadMB << 20
}

// MaxVideoUploadBytes returns the video upload limit in bytes.
func (c *Config) MaxVideoUploadBytes() int64 {
	return c.MaxVideoUploadMB << 20
}
