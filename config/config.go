package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is read once at startup from the environment (and .env if present).
type Config struct {
	Port           string   `env:"PORT" envDefault:"5200"`
	DBDriver       string   `env:"DB_DRIVER" envDefault:"postgres"`
	DatabaseURL    string   `env:"DATABASE_URL,required,notEmpty"`
	GatewayToken   string   `env:"GAME_SERVICE_TOKEN,required,notEmpty"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	MetricsEnabled bool     `env:"METRICS_ENABLED" envDefault:"true"`

	// Fixed 70/65/75 roster averages instead of reading member athletes.
	RosterPlaceholderAverages bool          `env:"ROSTER_PLACEHOLDER_AVERAGES" envDefault:"false"`
	SynergyRefreshInterval    time.Duration `env:"SYNERGY_REFRESH_INTERVAL" envDefault:"1h"`

	R2 R2Config
}

// R2Config holds Cloudflare R2 credentials. Uploads are disabled when the
// account ID is empty.
type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

// Enabled reports whether R2 uploads are configured.
func (c R2Config) Enabled() bool {
	return c.AccountID != ""
}

// Load reads .env (if any) and parses the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
	}
	if c.SynergyRefreshInterval <= 0 {
		return errors.New("SYNERGY_REFRESH_INTERVAL must be positive")
	}
	if c.R2.Enabled() && (c.R2.AccessKeyID == "" || c.R2.AccessKeySecret == "" || c.R2.Bucket == "" || c.R2.CDNBaseURL == "") {
		return errors.New("R2 is partially configured: R2_ACCESS_KEY_ID, R2_ACCESS_KEY_SECRET, R2_BUCKET_NAME and CDN_BASE_URL are required with CLOUDFLARE_ACCOUNT_ID")
	}
	return nil
}
