package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API       *APIConfig       `mapstructure:"api"`
	Gin       *GinConfig       `mapstructure:"gin"`
	Postgres  *PostgresConfig  `mapstructure:"postgres"`
	Media     *MediaConfig     `mapstructure:"media"`
	Schedule  *ScheduleConfig  `mapstructure:"schedule"`
	RateLimit *RateLimitConfig `mapstructure:"rate_limit"`
}

type APIConfig struct {
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	Environment        string        `mapstructure:"environment"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	SessionSecret      string        `mapstructure:"session_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DB           string `mapstructure:"db"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN renders the connection string understood by the pgx driver.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type MediaConfig struct {
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket"`
	Endpoint       string `mapstructure:"endpoint"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	Prefix         string `mapstructure:"prefix"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

type ScheduleConfig struct {
	Timezone string `mapstructure:"timezone"`
	RollCron string `mapstructure:"roll_cron"`
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c *ScheduleConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}

	return time.LoadLocation(c.Timezone)
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.allowed_cors_domains", []string{"http://localhost:3000"})
	v.SetDefault("api.token_ttl", 24*time.Hour)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 20)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("media.region", "us-east-1")
	v.SetDefault("media.prefix", "products")
	v.SetDefault("media.max_upload_bytes", 5<<20)
	v.SetDefault("schedule.timezone", "UTC")
	v.SetDefault("schedule.roll_cron", "5 0 * * *")
	v.SetDefault("rate_limit.rps", 5)
	v.SetDefault("rate_limit.burst", 10)
}

// Load reads the YAML file at path and overlays APP_* environment variables,
// e.g. APP_API_JWT_SIGNING_KEY overrides api.jwt_signing_key.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	// Values are read once at startup; a change is only reported so operators
	// know a restart is needed.
	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Warn("config file changed, restart to apply", zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}

func (c *AppConfig) validate() error {
	if c.API == nil || c.API.JWTSigningKey == "" {
		return fmt.Errorf("api.jwt_signing_key is required")
	}
	if c.API.SessionSecret == "" {
		return fmt.Errorf("api.session_secret is required")
	}
	if c.Schedule != nil {
		if _, err := c.Schedule.Location(); err != nil {
			return fmt.Errorf("schedule.timezone -> %w", err)
		}
	}

	return nil
}
