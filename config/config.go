package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig       `envPrefix:"AUTHCORE_SERVER_"`
	Log          LogConfig          `envPrefix:"AUTHCORE_LOG_"`
	Database     DatabaseConfig     `envPrefix:"AUTHCORE_DATABASE_"`
	RefreshToken RefreshTokenConfig `envPrefix:"AUTHCORE_REFRESH_TOKEN_"`
	Cleanup      CleanupConfig      `envPrefix:"AUTHCORE_CLEANUP_"`
	Maintenance  MaintenanceConfig  `envPrefix:"AUTHCORE_MAINTENANCE_"`
	JWT          JWTConfig          `envPrefix:"AUTHCORE_JWT_"`
	Blacklist    BlacklistConfig    `envPrefix:"AUTHCORE_BLACKLIST_"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"authcore.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type RefreshTokenConfig struct {
	TTL           Duration `env:"TTL" envDefault:"7d"`
	TokenLength   int      `env:"TOKEN_LENGTH" envDefault:"32"`
	MaxPerUser    int      `env:"MAX_PER_USER" envDefault:"5"`
	RetentionDays int      `env:"RETENTION_DAYS" envDefault:"30"`
}

type CleanupConfig struct {
	Interval time.Duration `env:"INTERVAL" envDefault:"24h"`
}

type MaintenanceConfig struct {
	TickInterval  time.Duration `env:"TICK_INTERVAL" envDefault:"30s"`
	DailyInterval time.Duration `env:"DAILY_INTERVAL" envDefault:"24h"`
	JitterMax     time.Duration `env:"JITTER_MAX" envDefault:"60s"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Issuer       string        `env:"ISSUER" envDefault:"authcore"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

type BlacklistConfig struct {
	Store     string `env:"STORE" envDefault:"memory"`
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
}

// Duration extends time.ParseDuration with day and week suffixes so token
// lifetimes can be expressed as "7d" or "2w" in the environment.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	var unit time.Duration
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "w"):
		unit = 7 * 24 * time.Hour
	default:
		return time.ParseDuration(s)
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	return time.Duration(n * float64(unit)), nil
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
