package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port               string        `mapstructure:"PORT"`
	Env                string        `mapstructure:"ENV"`
	DatabaseURL        string        `mapstructure:"DATABASE_URL"`
	DBMaxConns         int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns         int32         `mapstructure:"DB_MIN_CONNS"`
	CORSOrigins        []string      `mapstructure:"CORS_ORIGINS"`
	EncryptionKey      string        `mapstructure:"ENCRYPTION_KEY"`
	JWTSecret          string        `mapstructure:"JWT_SECRET"`
	JWTTTL             time.Duration `mapstructure:"JWT_TTL"`
	RequestTimeout     time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MigrationsDir      string        `mapstructure:"MIGRATIONS_DIR"`
	LegacyReadRetries  int           `mapstructure:"LEGACY_READ_RETRIES"`
	LegacyReadInterval time.Duration `mapstructure:"LEGACY_READ_INTERVAL"`
	RateLimitRPS       float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst     int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit          string        `mapstructure:"BODY_LIMIT"`
	KioskTokenTTL      time.Duration `mapstructure:"KIOSK_TOKEN_TTL"`
}

var envKeys = []string{
	"PORT",
	"ENV",
	"DATABASE_URL",
	"DB_MAX_CONNS",
	"DB_MIN_CONNS",
	"CORS_ORIGINS",
	"ENCRYPTION_KEY",
	"JWT_SECRET",
	"JWT_TTL",
	"REQUEST_TIMEOUT",
	"MIGRATIONS_DIR",
	"LEGACY_READ_RETRIES",
	"LEGACY_READ_INTERVAL",
	"RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST",
	"BODY_LIMIT",
	"KIOSK_TOKEN_TTL",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("JWT_TTL", "12h")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")
	v.SetDefault("LEGACY_READ_RETRIES", 5)
	v.SetDefault("LEGACY_READ_INTERVAL", "100ms")
	v.SetDefault("RATE_LIMIT_RPS", 20)
	v.SetDefault("RATE_LIMIT_BURST", 40)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("KIOSK_TOKEN_TTL", "720h")

	// Bind explicitly so Unmarshal sees env-only values.
	for _, k := range envKeys {
		_ = v.BindEnv(k)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) <= 1 {
		if origins := v.GetString("CORS_ORIGINS"); origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: requests without a token are treated as an admin dentist.")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT secret is mandatory; in production the field encryption key is too.
func (c *Config) Validate() error {
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.IsProduction() && c.EncryptionKey == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required in production")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS)
	}
	if c.LegacyReadRetries < 1 {
		return fmt.Errorf("LEGACY_READ_RETRIES must be at least 1, got %d", c.LegacyReadRetries)
	}
	return nil
}
