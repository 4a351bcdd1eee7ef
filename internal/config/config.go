package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

type Config struct {
	App      App
	HTTP     HTTP
	Storage  Storage
	Postgres Postgres
	SQLite   SQLite
	Redis    Redis
	Feed     PriceFeed
	Bot      Bot
	Engine   Engine
	Worker   Worker
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"card-arbitrage"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
	Debug   bool   `env:"APP_DEBUG" envDefault:"false"`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ProbeAddress    string        `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
	MetricsAddress  string        `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Storage выбирает хранилище сделок и позиций: memory, sqlite или postgres.
type Storage struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
}

type Bot struct {
	Enabled bool   `env:"BOT_ENABLED" envDefault:"false"`
	Token   string `env:"BOT_TOKEN" json:"-"`
	ChatID  int64  `env:"BOT_CHAT_ID"`

	// AdminID Пользователь, которому доступны команды. Ноль отключает команды
	AdminID int64 `env:"BOT_ADMIN_ID"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("config.Validate: %w", err)
	}

	return config, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite:
	case StoragePostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("PG_DSN is required for postgres storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Bot.Enabled && (c.Bot.Token == "" || c.Bot.ChatID == 0) {
		errs = append(errs, errors.New("BOT_TOKEN and BOT_CHAT_ID are required when the bot is enabled"))
	}

	if err := c.Engine.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
