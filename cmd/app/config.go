package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"ecocoach/internal/coach"
	"ecocoach/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database    repository.Config `mapstructure:"database"`
	Server      ServerConfig      `mapstructure:"server"`
	App         AppConfig         `mapstructure:"app"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Leaderboard LeaderboardConfig `mapstructure:"leaderboard"`
	Coach       coach.Config      `mapstructure:"coach"`

	LogLevel string `mapstructure:"logLevel"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	Timezone string `mapstructure:"timezone"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

type LeaderboardConfig struct {
	StreamSize int `mapstructure:"streamSize"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", repository.DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "ecocoach")
	v.SetDefault("database.path", "ecocoach.db")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")

	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("catalog.path", "")
	v.SetDefault("leaderboard.streamSize", 10)

	v.SetDefault("coach.baseURL", "https://api.groq.com/openai/v1")
	v.SetDefault("coach.apiKey", "")
	v.SetDefault("coach.model", "llama-3.1-8b-instant")
	v.SetDefault("coach.maxTokens", 200)
	v.SetDefault("coach.timeout", 30*time.Second)

	v.SetDefault("logLevel", "info")
}

// LoadConfig reads .env, then the optional config file, then APP_*
// environment variables, later sources winning. An empty path searches the
// working directory for config.yaml.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(configPath)
		v.SetConfigType(configFormat)
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case repository.DriverPostgres, repository.DriverSQLite:
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Leaderboard.StreamSize < 1 || c.Leaderboard.StreamSize > 100 {
		return fmt.Errorf("leaderboard.streamSize must be between 1 and 100, got %d", c.Leaderboard.StreamSize)
	}

	return nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid app.timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

func (c *Config) CoachEnabled() bool {
	return c.Coach.APIKey != ""
}
