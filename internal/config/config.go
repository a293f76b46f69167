package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken     string `envconfig:"BOT_TOKEN" required:"true"`
	TZName       string `envconfig:"TZ_NAME" default:"Europe/Moscow"`
	StoreBackend string `envconfig:"STORE_BACKEND" default:"sqlite"` // sqlite|json
	DBPath       string `envconfig:"DB_PATH" default:"./data/vitamins.db"`
	DataFile     string `envconfig:"DATA_FILE" default:"./data/vitamin_data.json"`
	ScheduleFile string `envconfig:"SCHEDULE_FILE"`             // optional YAML schedule override
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`  // debug|info|warn|error
	LogFormat    string `envconfig:"LOG_FORMAT" default:"json"` // json|console
	HTTPAddr     string `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
}

// Load reads an optional .env file and then environment variables into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if cfg.BotToken == "" {
		return cfg, errors.New("BOT_TOKEN is empty")
	}
	switch cfg.StoreBackend {
	case "sqlite", "json":
	default:
		return cfg, fmt.Errorf("STORE_BACKEND: unsupported value %q", cfg.StoreBackend)
	}
	return cfg, nil
}
