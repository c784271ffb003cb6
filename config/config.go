package config

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Email    EmailConfig    `mapstructure:"email"`
	Log      LogConfig      `mapstructure:"log"`

	// LoadedFrom is the external config file merged over the defaults, if any.
	LoadedFrom string `mapstructure:"-"`
}

// ServerConfig HTTP server settings
type ServerConfig struct {
	Port           string  `mapstructure:"port"`
	Mode           string  `mapstructure:"mode"`
	BaseURL        string  `mapstructure:"base_url"`
	ShareRateLimit float64 `mapstructure:"share_rate_limit"`
	ShareRateBurst int     `mapstructure:"share_rate_burst"`
}

// DatabaseConfig MySQL connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	Charset  string `mapstructure:"charset"`
}

// AuthConfig verification settings for tokens issued by the identity provider.
// PublicKeyFile switches verification from HS256 (Secret) to RS256.
type AuthConfig struct {
	Secret        string        `mapstructure:"secret"`
	PublicKeyFile string        `mapstructure:"public_key_file"`
	Issuer        string        `mapstructure:"issuer"`
	DevTokenHours int           `mapstructure:"dev_token_hours"`
	DevTokenTTL   time.Duration `mapstructure:"-"`
}

// StorageConfig object store settings
type StorageConfig struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	PublicBaseURL   string `mapstructure:"public_base_url"`
	UsePathStyle    bool   `mapstructure:"use_path_style"`
	KeyPrefix       string `mapstructure:"key_prefix"`
	MaxImageSizeMB  int    `mapstructure:"max_image_size_mb"`
}

// RedisConfig share cache settings, an empty URL disables caching
type RedisConfig struct {
	URL        string        `mapstructure:"url"`
	Prefix     string        `mapstructure:"prefix"`
	TTLSeconds int           `mapstructure:"ttl_seconds"`
	TTL        time.Duration `mapstructure:"-"`
}

// EmailConfig SMTP settings
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// LogConfig logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
}

var (
	// GlobalConfig the loaded configuration
	GlobalConfig *Config
)

// LoadConfig loads configuration.
// Precedence: environment (CATERING_*) > external config file > embedded defaults.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}

	var loadedFrom string
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configPath, err)
		}
		loadedFrom = configPath
	} else {
		externalViper := viper.New()
		externalViper.SetConfigName("config")
		externalViper.SetConfigType("yaml")
		externalViper.AddConfigPath(".")
		externalViper.AddConfigPath("./config")
		externalViper.AddConfigPath("/etc/catering")
		externalViper.AddConfigPath("$HOME/.catering")

		if err := externalViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(externalViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merge config file %s: %w", externalViper.ConfigFileUsed(), err)
			}
			loadedFrom = externalViper.ConfigFileUsed()
		}
	}

	v.SetEnvPrefix("CATERING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.LoadedFrom = loadedFrom

	if cfg.Auth.DevTokenHours <= 0 {
		cfg.Auth.DevTokenHours = 24
	}
	cfg.Auth.DevTokenTTL = time.Duration(cfg.Auth.DevTokenHours) * time.Hour

	if cfg.Redis.TTLSeconds <= 0 {
		cfg.Redis.TTLSeconds = 60
	}
	cfg.Redis.TTL = time.Duration(cfg.Redis.TTLSeconds) * time.Second

	if cfg.Storage.MaxImageSizeMB <= 0 {
		cfg.Storage.MaxImageSizeMB = 5
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "menu-items"
	}

	GlobalConfig = &cfg

	return &cfg, nil
}

// MustLoadConfig panics when the configuration cannot be loaded
func MustLoadConfig(configPath string) *Config {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}
	return cfg
}

// GetConfig returns the global configuration
func GetConfig() *Config {
	if GlobalConfig == nil {
		panic("config not loaded, call LoadConfig first")
	}
	return GlobalConfig
}

// MaxImageSize upload limit in bytes
func (s StorageConfig) MaxImageSize() int64 {
	return int64(s.MaxImageSizeMB) * 1024 * 1024
}

// PrintConfig logs the active configuration without secrets
func PrintConfig(log *zap.Logger) {
	if GlobalConfig == nil {
		return
	}
	cfg := GlobalConfig
	log.Info("configuration loaded",
		zap.String("file", cfg.LoadedFrom),
		zap.String("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("database", fmt.Sprintf("%s@%s:%s/%s", cfg.Database.Username, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("bucket", cfg.Storage.Bucket),
		zap.Bool("cache", cfg.Redis.URL != ""),
		zap.Bool("email", cfg.Email.Enabled),
	)
}

// SafeErrorMessage hides internal error details from clients in release mode
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if GlobalConfig != nil && GlobalConfig.Server.Mode == "release" {
		return fallback
	}
	return err.Error()
}
