package config

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/Simplici0/tenderhub/internal/logger"
)

const (
	defaultEnv           = "dev"
	defaultDBPath        = "./dev.db"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultRecalcWorkers = 4
)

// Config holds application configuration sourced from a .env file and the environment.
type Config struct {
	AppEnv        string `mapstructure:"app_env"`
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	SessionSecret string `mapstructure:"session_secret"`
	DBPath        string `mapstructure:"db_path"`
	Port          string `mapstructure:"port"`
	LogLevel      string `mapstructure:"log_level"`
	RecalcWorkers int    `mapstructure:"recalc_workers"`
}

// IsDev reports whether the app runs in a development environment.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local":
		return true
	}
	return false
}

// Load reads ./.env (if present) and environment variables and returns a populated Config.
func Load() Config {
	cfg, err := LoadFrom(".env")
	if err != nil {
		logger.Warnf("config: %v; falling back to environment only", err)
		cfg, _ = LoadFrom("")
	}

	if cfg.AdminEmail == "" {
		logger.Warnf("ADMIN_EMAIL is not set")
	}
	if cfg.AdminPassword == "" {
		logger.Warnf("ADMIN_PASSWORD is not set")
	}
	if cfg.SessionSecret == "" {
		logger.Warnf("SESSION_SECRET is not set")
	}

	return cfg
}

// LoadFrom is Load with an explicit dotenv path. An empty path skips the file.
// Environment variables always win over values from the file.
func LoadFrom(dotenvPath string) (Config, error) {
	v := viper.New()
	v.SetDefault("app_env", defaultEnv)
	v.SetDefault("admin_email", "")
	v.SetDefault("admin_password", "")
	v.SetDefault("session_secret", "")
	v.SetDefault("db_path", defaultDBPath)
	v.SetDefault("port", defaultPort)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("recalc_workers", defaultRecalcWorkers)

	if dotenvPath != "" {
		if err := readDotEnv(v, dotenvPath); err != nil {
			return Config{}, err
		}
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.WeaklyTypedInput = true
	}); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.AppEnv == "" {
		c.AppEnv = defaultEnv
	}
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	if c.Port == "" {
		c.Port = defaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.RecalcWorkers <= 0 {
		c.RecalcWorkers = defaultRecalcWorkers
	}
}
