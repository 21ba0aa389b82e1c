// Package config loads settings from an optional .env file, an optional
// tracker.yaml and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	applog "github.com/rogerio-castellano/finance-tracker/internal/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AMQP     AMQPConfig
	Client   ClientConfig
	LogLevel string
}

type ServerConfig struct {
	Port            int
	JWTSecret       string
	TokenTTL        time.Duration
	AllowedOrigins  []string
	RateLimit       float64
	RateBurst       int
	MaxLoginStrikes int
	BanDuration     time.Duration
}

type DatabaseConfig struct {
	// URL selects Postgres. Empty means the seeded in-memory backend.
	URL     string
	Migrate bool
}

type RedisConfig struct {
	// Addr enables the Redis-backed login ban store.
	Addr string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

type ClientConfig struct {
	BaseURL   string
	TokenFile string
	Timeout   time.Duration
	RateLimit float64
	Months    int
}

const defaultJWTSecret = "change-me-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.jwt_secret", defaultJWTSecret)
	v.SetDefault("server.token_ttl", 24*time.Hour)
	v.SetDefault("server.allowed_origins", "http://localhost:5173")
	v.SetDefault("server.rate_limit", 10.0)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.max_login_strikes", 5)
	v.SetDefault("server.ban_duration", 15*time.Minute)

	v.SetDefault("database.url", "")
	v.SetDefault("database.migrate", true)

	v.SetDefault("redis.addr", "")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "finance-tracker")

	v.SetDefault("client.base_url", "http://localhost:8000")
	v.SetDefault("client.token_file", "")
	v.SetDefault("client.timeout", 10*time.Second)
	v.SetDefault("client.rate_limit", 5.0)
	v.SetDefault("client.months", 6)

	v.SetDefault("log.level", "info")
}

// Load reads the configuration. configFile may be empty, in which case
// tracker.yaml is looked up in the working directory and is optional.
func Load(configFile string) (*Config, error) {
	// A missing .env is the normal case outside development.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("tracker")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			JWTSecret:       v.GetString("server.jwt_secret"),
			TokenTTL:        v.GetDuration("server.token_ttl"),
			AllowedOrigins:  splitList(v.GetString("server.allowed_origins")),
			RateLimit:       v.GetFloat64("server.rate_limit"),
			RateBurst:       v.GetInt("server.rate_burst"),
			MaxLoginStrikes: v.GetInt("server.max_login_strikes"),
			BanDuration:     v.GetDuration("server.ban_duration"),
		},
		Database: DatabaseConfig{
			URL:     v.GetString("database.url"),
			Migrate: v.GetBool("database.migrate"),
		},
		Redis: RedisConfig{Addr: v.GetString("redis.addr")},
		AMQP: AMQPConfig{
			URL:      v.GetString("amqp.url"),
			Exchange: v.GetString("amqp.exchange"),
		},
		Client: ClientConfig{
			BaseURL:   v.GetString("client.base_url"),
			TokenFile: v.GetString("client.token_file"),
			Timeout:   v.GetDuration("client.timeout"),
			RateLimit: v.GetFloat64("client.rate_limit"),
			Months:    v.GetInt("client.months"),
		},
		LogLevel: v.GetString("log.level"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr is the listen address of the persistence service.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}
	if strings.TrimSpace(c.Server.JWTSecret) == "" {
		errs = append(errs, "JWT secret cannot be empty")
	}
	if c.Server.TokenTTL < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid token ttl %v: must be at least 1 minute", c.Server.TokenTTL))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("invalid rate limit %v: cannot be negative", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid rate burst %d: must be at least 1", c.Server.RateBurst))
	}
	if c.Server.MaxLoginStrikes < 1 {
		errs = append(errs, fmt.Sprintf("invalid max login strikes %d: must be at least 1", c.Server.MaxLoginStrikes))
	}
	if c.Server.BanDuration < time.Second {
		errs = append(errs, fmt.Sprintf("invalid ban duration %v: must be at least 1 second", c.Server.BanDuration))
	}

	if c.Database.URL != "" {
		if u, err := url.Parse(c.Database.URL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid database URL: %v", err))
		} else if u.Scheme != "postgres" && u.Scheme != "postgresql" {
			errs = append(errs, fmt.Sprintf("invalid database URL scheme '%s': must be 'postgres' or 'postgresql'", u.Scheme))
		}
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if u, err := url.Parse(c.Client.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("invalid client base URL '%s': must be an http or https URL", c.Client.BaseURL))
	}
	if c.Client.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("invalid client timeout %v: must be positive", c.Client.Timeout))
	}
	if c.Client.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("invalid client rate limit %v: cannot be negative", c.Client.RateLimit))
	}
	if c.Client.Months < 1 || c.Client.Months > 120 {
		errs = append(errs, fmt.Sprintf("invalid dashboard months %d: must be between 1 and 120", c.Client.Months))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// UsesDefaultSecret reports whether the JWT secret was left at its default.
func (c *Config) UsesDefaultSecret() bool {
	return c.Server.JWTSecret == defaultJWTSecret
}
