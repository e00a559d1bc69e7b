/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables (and an
 * optional .env file), providing a centralized way to manage application
 * settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the account-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	RabbitMQURL              string `mapstructure:"RABBITMQ_URL"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	AuthJWKSURL              string `mapstructure:"AUTH_JWKS_URL"`
	AccountEventExchange     string `mapstructure:"ACCOUNT_EVENT_EXCHANGE"`
	StorageRoot              string `mapstructure:"STORAGE_ROOT"`
	AccountImagePathPrefix   string `mapstructure:"ACCOUNT_IMAGE_PATH_PREFIX"`
	SupportedCurrencies      string `mapstructure:"SUPPORTED_CURRENCIES"`
	UploadRateLimitPerMinute int    `mapstructure:"UPLOAD_RATE_LIMIT_PER_MINUTE"`
	MaxUploadSizeMB          int    `mapstructure:"MAX_UPLOAD_SIZE_MB"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ACCOUNT_EVENT_EXCHANGE", "bookkeeping.events")
	viper.SetDefault("STORAGE_ROOT", "./storage/public")
	viper.SetDefault("ACCOUNT_IMAGE_PATH_PREFIX", "account/images")
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "duitku:rate_limit")
	viper.SetDefault("UPLOAD_RATE_LIMIT_PER_MINUTE", 20)
	viper.SetDefault("MAX_UPLOAD_SIZE_MB", 5)

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("REDIS_URL", "REDIS_URL", "ACCOUNT_REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("AUTH_JWKS_URL")
	_ = viper.BindEnv("ACCOUNT_EVENT_EXCHANGE")
	_ = viper.BindEnv("STORAGE_ROOT")
	_ = viper.BindEnv("ACCOUNT_IMAGE_PATH_PREFIX")
	_ = viper.BindEnv("SUPPORTED_CURRENCIES")
	_ = viper.BindEnv("UPLOAD_RATE_LIMIT_PER_MINUTE")
	_ = viper.BindEnv("MAX_UPLOAD_SIZE_MB")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	// Platform-provided PORT takes precedence over SERVER_PORT.
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RedisRateLimitPrefix = strings.TrimSpace(config.RedisRateLimitPrefix)
	if config.RedisRateLimitPrefix == "" {
		config.RedisRateLimitPrefix = "duitku:rate_limit"
	}
	config.AccountImagePathPrefix = strings.Trim(strings.TrimSpace(config.AccountImagePathPrefix), "/")
	if config.AccountImagePathPrefix == "" {
		config.AccountImagePathPrefix = "account/images"
	}

	if config.UploadRateLimitPerMinute < 0 {
		log.Printf("level=warn component=config msg=\"negative upload rate limit configured; disabling\" limit=%d", config.UploadRateLimitPerMinute)
		config.UploadRateLimitPerMinute = 0
	}
	if config.MaxUploadSizeMB <= 0 {
		config.MaxUploadSizeMB = 5
	}

	return
}

// SupportedCurrencyCodes parses the SUPPORTED_CURRENCIES CSV into a slice of
// codes. An empty setting enables every built-in currency.
func (c Config) SupportedCurrencyCodes() []string {
	raw := strings.TrimSpace(c.SupportedCurrencies)
	if raw == "" {
		return nil
	}

	var codes []string
	for _, part := range strings.Split(raw, ",") {
		if code := strings.ToUpper(strings.TrimSpace(part)); code != "" {
			codes = append(codes, code)
		}
	}
	return codes
}
