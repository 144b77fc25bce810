package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Log      LogConfig
	RabbitMQ RabbitMQConfig
	Orders   OrdersConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	GinMode string
}

// Addr is the listen address for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type JWTConfig struct {
	Secret string
	Expire time.Duration
	Issuer string
}

type LogConfig struct {
	Level  string
	Format string
}

// RabbitMQConfig with an empty URL means status events are only logged.
type RabbitMQConfig struct {
	URL      string
	Exchange string
}

type OrdersConfig struct {
	NumberRetries int
}

const devSecret = "logistics_dev_secret_change_me"

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return fromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", 8080)
	v.SetDefault("gin_mode", "debug")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "logistics.db")
	v.SetDefault("jwt_secret", devSecret)
	v.SetDefault("jwt_expire_seconds", 86400)
	v.SetDefault("jwt_issuer", "logistics-api")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("rabbitmq_exchange", "logistics.events")
	v.SetDefault("order_no_retries", 3)
	return v
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:    v.GetString("app_host"),
			Port:    v.GetInt("app_port"),
			GinMode: v.GetString("gin_mode"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("db_driver")),
			DSN:    v.GetString("db_dsn"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt_secret"),
			Expire: time.Duration(v.GetInt("jwt_expire_seconds")) * time.Second,
			Issuer: v.GetString("jwt_issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Format: v.GetString("log_format"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:      v.GetString("rabbitmq_url"),
			Exchange: v.GetString("rabbitmq_exchange"),
		},
		Orders: OrdersConfig{
			NumberRetries: v.GetInt("order_no_retries"),
		},
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER %q: must be sqlite, mysql or postgres", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("APP_PORT %d out of range", c.Server.Port)
	}
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is empty")
	}
	if c.JWT.Expire <= 0 {
		return errors.New("JWT_EXPIRE_SECONDS must be positive")
	}
	if c.Orders.NumberRetries < 1 {
		return errors.New("ORDER_NO_RETRIES must be at least 1")
	}
	return nil
}

// UsesDevSecret reports whether tokens are signed with the built-in secret.
func (c *Config) UsesDevSecret() bool {
	return c.JWT.Secret == devSecret
}
