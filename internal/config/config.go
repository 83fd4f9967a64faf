package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	NATSSubjectPrefix string
	JWTSecret         string
	CORSOrigins       string
	ResultsCacheTTL   time.Duration
	NotifyQueueSize   int
	RateLimitMax      int
	RateLimitWindow   time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SUITETEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "SuiteTest API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "5000")
	v.SetDefault("nats.subject_prefix", "suitetest")
	v.SetDefault("cors.origins", "*")
	v.SetDefault("results.cache_ttl", "2m")
	v.SetDefault("notify.queue_size", 64)
	v.SetDefault("rate_limit.max", 20)
	v.SetDefault("rate_limit.window", "1m")

	ttl, err := parseDuration(v.GetString("results.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid results cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("rate_limit.window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		NATSSubjectPrefix: v.GetString("nats.subject_prefix"),
		JWTSecret:         v.GetString("jwt.secret"),
		CORSOrigins:       v.GetString("cors.origins"),
		ResultsCacheTTL:   ttl,
		NotifyQueueSize:   v.GetInt("notify.queue_size"),
		RateLimitMax:      v.GetInt("rate_limit.max"),
		RateLimitWindow:   window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = 64
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
