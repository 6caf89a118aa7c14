package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/i474232898/climate-viewer/internal/climate"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Chart     ChartConfig     `mapstructure:"chart"`
	Period    PeriodConfig    `mapstructure:"period"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Env             string        `mapstructure:"env"`
	LogLevel        string        `mapstructure:"log_level"`
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatasetConfig struct {
	// BaseURL hosts "/data/<table>.json". The default points at this
	// service, which serves Dir; set it when the dataset lives elsewhere.
	BaseURL string `mapstructure:"base_url"`
	// Dir, when set, is served at "/data" by this service.
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CacheConfig struct {
	Driver  string      `mapstructure:"driver"` // memory | redis
	Version int         `mapstructure:"version"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type SchedulerConfig struct {
	WarmInterval  time.Duration `mapstructure:"warm_interval"` // 0 disables warm-up
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type ChartConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

type PeriodConfig struct {
	From int `mapstructure:"from"`
	To   int `mapstructure:"to"`
}

// Borders returns the selectable year range.
func (p PeriodConfig) Borders() climate.Query {
	return climate.Query{From: p.From, To: p.To}
}

// Load reads configuration from an optional config.yaml and the
// environment (APP_PORT, CACHE_REDIS_ADDR, ...), with sensible defaults.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "climate-viewer")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.shutdown_timeout", "10s")

	v.SetDefault("dataset.base_url", "http://localhost:8080")
	v.SetDefault("dataset.dir", "./data")
	v.SetDefault("dataset.timeout", "30s")

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.version", 1)
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.prefix", "meteo")
	v.SetDefault("cache.redis.timeout", "3s")

	v.SetDefault("scheduler.warm_interval", "0s")
	v.SetDefault("scheduler.session_ttl", "30m")
	v.SetDefault("scheduler.sweep_interval", "5m")

	v.SetDefault("chart.width", 800)
	v.SetDefault("chart.height", 300)

	v.SetDefault("period.from", 1881)
	v.SetDefault("period.to", 2006)
}

func (c *Config) validate() error {
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid cache.driver %q: want memory or redis", c.Cache.Driver)
	}
	if c.Period.From <= 0 || c.Period.To < c.Period.From {
		return fmt.Errorf("invalid period %d..%d", c.Period.From, c.Period.To)
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Scheduler.SessionTTL <= 0 {
		return fmt.Errorf("scheduler.session_ttl must be positive")
	}
	return nil
}
