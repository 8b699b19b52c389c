package config

import (
	"fmt"
	"time"

	"wikiquiz/internal/domain"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Gemini   GeminiConfig
	Scraper  ScraperConfig
	Cache    CacheConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Port         int
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

type GeminiConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	MaxRetries  int
}

type ScraperConfig struct {
	Timeout         time.Duration
	ProbeTimeout    time.Duration
	MaxRetries      int
	MaxContentBytes int64
	MinContentChars int
	UserAgent       string
}

type CacheConfig struct {
	URLCacheSize int
	QuizTTL      time.Duration
}

type LoggerConfig struct {
	Level string
	Env   string
}

// LoadConfig reads config.yaml (from ./configs or the working directory)
// and overlays the environment variables bound below.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.AutomaticEnv()
	viper.BindEnv("gemini.api_key", "GOOGLE_API_KEY")
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("redis.address", "REDIS_ADDR")
	viper.BindEnv("server.port", "PORT")
	viper.BindEnv("server.env", "APP_ENV")

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine; env vars and defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			Env:          viper.GetString("server.env"),
			ReadTimeout:  viper.GetDuration("server.read_timeout"),
			WriteTimeout: viper.GetDuration("server.write_timeout"),
		},
		Database: DatabaseConfig{
			URL:             viper.GetString("database.url"),
			MaxOpenConns:    viper.GetInt("database.max_open_conns"),
			MaxIdleConns:    viper.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: viper.GetDuration("database.conn_max_lifetime"),
		},
		Redis: RedisConfig{
			Enabled:  viper.GetBool("redis.enabled"),
			Address:  viper.GetString("redis.address"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Gemini: GeminiConfig{
			APIKey:      viper.GetString("gemini.api_key"),
			Model:       viper.GetString("gemini.model"),
			Temperature: viper.GetFloat64("gemini.temperature"),
			MaxTokens:   viper.GetInt("gemini.max_tokens"),
			MaxRetries:  viper.GetInt("gemini.max_retries"),
		},
		Scraper: ScraperConfig{
			Timeout:         viper.GetDuration("scraper.timeout"),
			ProbeTimeout:    viper.GetDuration("scraper.probe_timeout"),
			MaxRetries:      viper.GetInt("scraper.max_retries"),
			MaxContentBytes: viper.GetInt64("scraper.max_content_bytes"),
			MinContentChars: viper.GetInt("scraper.min_content_chars"),
			UserAgent:       viper.GetString("scraper.user_agent"),
		},
		Cache: CacheConfig{
			URLCacheSize: viper.GetInt("cache.url_cache_size"),
			QuizTTL:      viper.GetDuration("cache.quiz_ttl"),
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("server.env"),
		},
	}

	return cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8000)
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.read_timeout", 60*time.Second)
	viper.SetDefault("server.write_timeout", 60*time.Second)

	viper.SetDefault("database.max_open_conns", 10)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", time.Hour)

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("gemini.model", "gemini-2.5-pro")
	viper.SetDefault("gemini.temperature", 0.3)
	viper.SetDefault("gemini.max_tokens", 4096)
	viper.SetDefault("gemini.max_retries", 3)

	viper.SetDefault("scraper.timeout", 30*time.Second)
	viper.SetDefault("scraper.probe_timeout", 10*time.Second)
	viper.SetDefault("scraper.max_retries", 3)
	viper.SetDefault("scraper.max_content_bytes", 5_000_000)
	viper.SetDefault("scraper.min_content_chars", 500)
	viper.SetDefault("scraper.user_agent", "AI-Wiki-Quiz-Generator/1.0 (Educational Tool)")

	viper.SetDefault("cache.url_cache_size", 100)
	viper.SetDefault("cache.quiz_ttl", 24*time.Hour)

	viper.SetDefault("logger.level", "info")
}

// Validate fails fast on startup when required credentials are absent.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return domain.NewConfigurationError("GOOGLE_API_KEY is required for quiz generation")
	}
	if c.Database.URL == "" {
		return domain.NewConfigurationError("DATABASE_URL is required")
	}
	return nil
}
