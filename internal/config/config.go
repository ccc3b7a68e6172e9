package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	ServerAddress  string        `mapstructure:"SERVER_ADDRESS"`
	BaseURL        string        `mapstructure:"BASE_URL"`
	UserAgent      string        `mapstructure:"USER_AGENT"`
	CacheTTL       time.Duration `mapstructure:"CACHE_TTL"`
	CacheMaxSize   int           `mapstructure:"CACHE_MAX_SIZE"`
	RateLimit      time.Duration `mapstructure:"RATE_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	LogFormat      string        `mapstructure:"LOG_FORMAT"`
	GinMode        string        `mapstructure:"GIN_MODE"`
	NgrokAuthToken string        `mapstructure:"NGROK_AUTH_TOKEN"`
	NgrokRegion    string        `mapstructure:"NGROK_REGION"`
	TraceExporter  string        `mapstructure:"TRACE_EXPORTER"`
	InboundRPS     float64       `mapstructure:"INBOUND_RPS"`
	InboundBurst   int           `mapstructure:"INBOUND_BURST"`
}

var defaults = map[string]interface{}{
	"SERVER_ADDRESS":   "127.0.0.1:8000",
	"BASE_URL":         "https://www.ville-ideale.fr",
	"USER_AGENT":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
	"CACHE_TTL":        time.Hour,
	"CACHE_MAX_SIZE":   1000,
	"RATE_LIMIT":       time.Second,
	"REQUEST_TIMEOUT":  10 * time.Second,
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "console",
	"GIN_MODE":         "release",
	"NGROK_AUTH_TOKEN": "",
	"NGROK_REGION":     "eu",
	"TRACE_EXPORTER":   "none",
	"INBOUND_RPS":      5.0,
	"INBOUND_BURST":    10,
}

// LoadConfig reads configuration from app.env in path, a .env file in the
// working directory and the environment, in increasing order of precedence.
// Missing files are not an error.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("config: failed to read config file: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("config: failed to decode config: %w", err)
	}

	return config, config.Validate()
}

// Validate rejects values the scraper and cache cannot work with.
func (c Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return errors.New("config: BASE_URL must not be empty")
	case c.CacheTTL <= 0:
		return fmt.Errorf("config: CACHE_TTL must be positive, got %s", c.CacheTTL)
	case c.CacheMaxSize <= 0:
		return fmt.Errorf("config: CACHE_MAX_SIZE must be positive, got %d", c.CacheMaxSize)
	case c.RateLimit <= 0:
		return fmt.Errorf("config: RATE_LIMIT must be positive, got %s", c.RateLimit)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("config: REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout)
	case c.InboundRPS < 0:
		return fmt.Errorf("config: INBOUND_RPS must not be negative, got %g", c.InboundRPS)
	case c.InboundBurst < 0:
		return fmt.Errorf("config: INBOUND_BURST must not be negative, got %d", c.InboundBurst)
	}
	return nil
}
