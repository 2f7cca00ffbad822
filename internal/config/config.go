package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Configはアプリ全体の設定
type Config struct {
	Port      string `envconfig:"PORT" default:"8080"`
	GoEnv     string `envconfig:"GO_ENV" default:"dev"` // dev/prod
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"` // json/text

	StoreDriver  string `envconfig:"STORE_DRIVER" default:"memory"` // memory/postgres
	SeedFixtures bool   `envconfig:"SEED_FIXTURES" default:"true"`

	DatabaseURL      string `envconfig:"DATABASE_URL"` // あれば最優先
	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresUser     string `envconfig:"POSTGRES_USER"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD"`
	PostgresDB       string `envconfig:"POSTGRES_DB"`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`

	RedisAddr     string        `envconfig:"REDIS_ADDR"` // 空ならキャッシュなし
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	CacheTTL      time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	JWTSecret string `envconfig:"JWT_SECRET"` // 空ならステータス更新は認証なし

	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Loadは .env（あれば）と環境変数から設定を読む
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv は環境変数だけから読む。
func FromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		//必須チェック
		if c.DatabaseURL == "" {
			if c.PostgresUser == "" {
				return fmt.Errorf("POSTGRES_USER is required")
			}
			if c.PostgresDB == "" {
				return fmt.Errorf("POSTGRES_DB is required")
			}
		}
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMemory, StorePostgres, c.StoreDriver)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	return nil
}

// Addr は echo に渡すlisten先。
func (c Config) Addr() string {
	if c.Port[0] == ':' {
		return c.Port
	}
	return ":" + c.Port
}

// PostgresDSN は DATABASE_URL を優先し、なければ個別の値から組み立てる。
func (c Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB, c.PostgresSSLMode,
	)
}

func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}
