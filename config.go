package rsvp

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/weddingrsvp/rsvp/logger"
)

const (
	configName = "config"
	configType = "yaml"
	envPrefix  = "RSVP"
)

// LogConfig selects the level, format and destination of the logs.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
	File  string `mapstructure:"file"` // Rotated log file. Empty logs to stderr.
}

// UploadConfig bounds photo uploads.
type UploadConfig struct {
	MaxBytes  int64  `mapstructure:"max_bytes"`
	RateLimit string `mapstructure:"rate_limit"` // Per client, e.g. "30-H".
}

// Config is the service configuration, read from config.yaml in the config dir.
// Every key can be overridden by an RSVP_ environment variable, e.g. RSVP_LOG_LEVEL.
type Config struct {
	viper          *viper.Viper
	ConfigDir      string       `mapstructure:"-"`
	ListenAddress  string       `mapstructure:"listen_address"`
	DatabasePath   string       `mapstructure:"database_path"`
	PhotosDir      string       `mapstructure:"photos_dir"`
	BackupDir      string       `mapstructure:"backup_dir"`
	AdminPassword  string       `mapstructure:"admin_password"` // Empty disables the admin API.
	AllowedOrigins []string     `mapstructure:"allowed_origins"`
	Log            LogConfig    `mapstructure:"log"`
	Upload         UploadConfig `mapstructure:"upload"`
}

// setDefaults registers the default of every key, relative to configDir.
func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("listen_address", "127.0.0.1:8022")
	v.SetDefault("database_path", filepath.Join(configDir, "wedding.db"))
	v.SetDefault("photos_dir", filepath.Join(configDir, "photos"))
	v.SetDefault("backup_dir", filepath.Join(configDir, "backups"))
	v.SetDefault("admin_password", "")
	v.SetDefault("allowed_origins", []string{
		"http://localhost:5173",
		"http://127.0.0.1:5173",
		"http://localhost:5174",
	})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("upload.max_bytes", 15<<20)
	v.SetDefault("upload.rate_limit", "30-H")
}

// bindEnv enables the environment overrides. ADMIN_PASSWORD is accepted for older deployments.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("admin_password", envPrefix+"_ADMIN_PASSWORD", "ADMIN_PASSWORD"); err != nil {
		return fmt.Errorf("binding admin password env: %w", err)
	}
	return nil
}

// LoadConfig reads config.yaml from configDir, writing it with the defaults when missing.
// Environment overrides are applied after the file is written so they are never persisted.
func LoadConfig(configDir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file : %w", err)
		}
		if err := v.SafeWriteConfig(); err != nil {
			return nil, fmt.Errorf("writing config file : %w", err)
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}
	return unmarshalConfig(v, configDir)
}

// DefaultConfig returns the defaults for configDir without touching the disk.
func DefaultConfig(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v, configDir)
	if err := bindEnv(v); err != nil {
		return nil, err
	}
	return unmarshalConfig(v, configDir)
}

func unmarshalConfig(v *viper.Viper, configDir string) (*Config, error) {
	cfg := &Config{viper: v, ConfigDir: configDir}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config to struct : %w", err)
	}
	return cfg, nil
}

// LoggerConfig converts the log settings for logger.New.
func (cfg *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level: cfg.Log.Level,
		JSON:  cfg.Log.JSON,
		File:  cfg.Log.File,
	}
}

// ConfigFile is the path of the file the config was read from, empty for DefaultConfig.
func (cfg *Config) ConfigFile() string {
	return cfg.viper.ConfigFileUsed()
}
