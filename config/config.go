package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Store    StoreConfig
	Planner  PlannerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"SERVER_HOST"`
	Port         int           `mapstructure:"SERVER_PORT"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
	IdleTimeout  time.Duration `mapstructure:"SERVER_IDLE_TIMEOUT"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"POSTGRES_HOST"`
	Port     int    `mapstructure:"POSTGRES_PORT"`
	User     string `mapstructure:"POSTGRES_USER"`
	Password string `mapstructure:"POSTGRES_PASSWORD"`
	DBName   string `mapstructure:"POSTGRES_DB"`
	SSLMode  string `mapstructure:"POSTGRES_SSLMODE"`
	MaxConns int32  `mapstructure:"POSTGRES_MAX_CONNS"`
	MinConns int32  `mapstructure:"POSTGRES_MIN_CONNS"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string `mapstructure:"REDIS_HOST"`
	Port         int    `mapstructure:"REDIS_PORT"`
	Password     string `mapstructure:"REDIS_PASSWORD"`
	DB           int    `mapstructure:"REDIS_DB"`
	PoolSize     int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int    `mapstructure:"REDIS_MIN_IDLE_CONNS"`
}

// StoreConfig selects where plan snapshots are written.
type StoreConfig struct {
	Backend         string        `mapstructure:"STORE_BACKEND"` // "postgres" or "redis"
	PlansKey        string        `mapstructure:"STORE_PLANS_KEY"`
	ActivePlanKey   string        `mapstructure:"STORE_ACTIVE_PLAN_KEY"`
	WriteTimeout    time.Duration `mapstructure:"STORE_WRITE_TIMEOUT"`
	CatalogCacheTTL time.Duration `mapstructure:"CATALOG_CACHE_TTL"`
}

// PlannerConfig holds the defaults applied to newly created plans.
type PlannerConfig struct {
	DefaultRegion   string `mapstructure:"PLANNER_DEFAULT_REGION"`
	DefaultDays     int    `mapstructure:"PLANNER_DEFAULT_DAYS"`
	DefaultCurrency string `mapstructure:"PLANNER_DEFAULT_CURRENCY"`
}

// DSN returns the PostgreSQL connection string.
func (p *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Addr returns the Redis address in host:port format.
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ServerAddr returns the HTTP listen address in host:port format.
func (s *ServerConfig) ServerAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables and .env file.
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// ── Defaults ────────────────────────────────────────
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("SERVER_PORT", 8080)
	viper.SetDefault("SERVER_READ_TIMEOUT", "5s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("SERVER_IDLE_TIMEOUT", "120s")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "wanderplan")
	viper.SetDefault("POSTGRES_PASSWORD", "wanderplan_secret")
	viper.SetDefault("POSTGRES_DB", "wanderplan_db")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")
	viper.SetDefault("POSTGRES_MAX_CONNS", 8)
	viper.SetDefault("POSTGRES_MIN_CONNS", 2)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", 6379)
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

	viper.SetDefault("STORE_BACKEND", "postgres")
	viper.SetDefault("STORE_PLANS_KEY", "travel-plans")
	viper.SetDefault("STORE_ACTIVE_PLAN_KEY", "active-plan-id")
	viper.SetDefault("STORE_WRITE_TIMEOUT", "5s")
	viper.SetDefault("CATALOG_CACHE_TTL", "10m")

	viper.SetDefault("PLANNER_DEFAULT_REGION", "taipei")
	viper.SetDefault("PLANNER_DEFAULT_DAYS", 3)
	viper.SetDefault("PLANNER_DEFAULT_CURRENCY", "TWD")

	// Try to read .env file. If it doesn't exist (e.g., inside Docker),
	// env vars injected by docker-compose env_file are used instead.
	_ = viper.ReadInConfig()

	cfg := &Config{}

	// ── Server ──────────────────────────────────────────
	cfg.Server = ServerConfig{
		Host:         viper.GetString("SERVER_HOST"),
		Port:         viper.GetInt("SERVER_PORT"),
		ReadTimeout:  viper.GetDuration("SERVER_READ_TIMEOUT"),
		WriteTimeout: viper.GetDuration("SERVER_WRITE_TIMEOUT"),
		IdleTimeout:  viper.GetDuration("SERVER_IDLE_TIMEOUT"),
	}

	// ── Postgres ────────────────────────────────────────
	cfg.Postgres = PostgresConfig{
		Host:     viper.GetString("POSTGRES_HOST"),
		Port:     viper.GetInt("POSTGRES_PORT"),
		User:     viper.GetString("POSTGRES_USER"),
		Password: viper.GetString("POSTGRES_PASSWORD"),
		DBName:   viper.GetString("POSTGRES_DB"),
		SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		MaxConns: viper.GetInt32("POSTGRES_MAX_CONNS"),
		MinConns: viper.GetInt32("POSTGRES_MIN_CONNS"),
	}
	if cfg.Postgres.MaxConns < 1 || cfg.Postgres.MinConns < 0 || cfg.Postgres.MinConns > cfg.Postgres.MaxConns {
		return nil, fmt.Errorf("config: need 0 <= POSTGRES_MIN_CONNS (%d) <= POSTGRES_MAX_CONNS (%d), max at least 1",
			cfg.Postgres.MinConns, cfg.Postgres.MaxConns)
	}

	// ── Redis ───────────────────────────────────────────
	cfg.Redis = RedisConfig{
		Host:         viper.GetString("REDIS_HOST"),
		Port:         viper.GetInt("REDIS_PORT"),
		Password:     viper.GetString("REDIS_PASSWORD"),
		DB:           viper.GetInt("REDIS_DB"),
		PoolSize:     viper.GetInt("REDIS_POOL_SIZE"),
		MinIdleConns: viper.GetInt("REDIS_MIN_IDLE_CONNS"),
	}
	if cfg.Redis.MinIdleConns > cfg.Redis.PoolSize {
		return nil, fmt.Errorf("config: REDIS_MIN_IDLE_CONNS (%d) exceeds REDIS_POOL_SIZE (%d)",
			cfg.Redis.MinIdleConns, cfg.Redis.PoolSize)
	}

	// ── Store ───────────────────────────────────────────
	cfg.Store = StoreConfig{
		Backend:         strings.ToLower(viper.GetString("STORE_BACKEND")),
		PlansKey:        viper.GetString("STORE_PLANS_KEY"),
		ActivePlanKey:   viper.GetString("STORE_ACTIVE_PLAN_KEY"),
		WriteTimeout:    viper.GetDuration("STORE_WRITE_TIMEOUT"),
		CatalogCacheTTL: viper.GetDuration("CATALOG_CACHE_TTL"),
	}
	if cfg.Store.Backend != "postgres" && cfg.Store.Backend != "redis" {
		return nil, fmt.Errorf("config: STORE_BACKEND must be postgres or redis, got %q", cfg.Store.Backend)
	}

	// ── Planner ─────────────────────────────────────────
	cfg.Planner = PlannerConfig{
		DefaultRegion:   viper.GetString("PLANNER_DEFAULT_REGION"),
		DefaultDays:     viper.GetInt("PLANNER_DEFAULT_DAYS"),
		DefaultCurrency: viper.GetString("PLANNER_DEFAULT_CURRENCY"),
	}
	if cfg.Planner.DefaultDays < 1 {
		return nil, fmt.Errorf("config: PLANNER_DEFAULT_DAYS must be at least 1, got %d", cfg.Planner.DefaultDays)
	}

	return cfg, nil
}
