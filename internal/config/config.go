package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the application configuration.
//
// Priority (highest to lowest):
// 1. Environment variables with STOREOPS_ prefix (e.g. STOREOPS_DATABASE_URL)
// 2. config.toml
// 3. Built-in defaults
type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	MinIO      MinIOConfig
	SMTP       SMTPConfig
	WhatsApp   WhatsAppConfig
	Log        LogConfig
	Scheduler  SchedulerConfig
	RateLimit  RateLimitConfig
	Invitation InvitationConfig
	Swagger    SwaggerConfig

	// GeneratedJWTSecret is set when no secret was configured outside production.
	GeneratedJWTSecret bool
}

type AppConfig struct {
	Name      string
	Env       string
	Port      string
	BaseURL   string    // frontend URL used in invitation links
	APISunset time.Time // zero unless the current API version is being retired
}

type DatabaseConfig struct {
	URL       string
	MaxConns  int32
	TxTimeout time.Duration
	TxMaxWait time.Duration
	TxRetries int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	FromName string
}

type WhatsAppConfig struct {
	APIURL   string
	Token    string
	Instance string
	Timeout  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
	Output string
}

type SchedulerConfig struct {
	Enabled              bool
	OverdueInterval      time.Duration
	LowStockInterval     time.Duration
	InvitationInterval   time.Duration
	NotificationInterval time.Duration
	DashboardInterval    time.Duration
	MaxNotifyAttempts    int
}

type RateLimitConfig struct {
	Enabled      bool
	AuthRequests int
	AuthWindow   time.Duration
}

type InvitationConfig struct {
	TTL time.Duration
}

type SwaggerConfig struct {
	Enabled bool
}

// Load reads .env, config.toml and the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("STOREOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// Plain names used by existing deployments.
	_ = v.BindEnv("database.url", "STOREOPS_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("jwt.secret", "STOREOPS_JWT_SECRET", "JWT_SECRET")
	_ = v.BindEnv("smtp.host", "STOREOPS_SMTP_HOST", "SMTP_HOST")
	_ = v.BindEnv("smtp.port", "STOREOPS_SMTP_PORT", "SMTP_PORT")
	_ = v.BindEnv("smtp.user", "STOREOPS_SMTP_USER", "SMTP_USER")
	_ = v.BindEnv("smtp.password", "STOREOPS_SMTP_PASSWORD", "SMTP_PASSWORD")
	_ = v.BindEnv("smtp.from", "STOREOPS_SMTP_FROM", "SMTP_FROM")
	_ = v.BindEnv("whatsapp.api_url", "STOREOPS_WHATSAPP_API_URL", "WHATSAPP_API_URL")
	_ = v.BindEnv("whatsapp.token", "STOREOPS_WHATSAPP_TOKEN", "WHATSAPP_TOKEN")
	_ = v.BindEnv("whatsapp.instance", "STOREOPS_WHATSAPP_INSTANCE", "WHATSAPP_INSTANCE")

	cfg := &Config{
		App: AppConfig{
			Name:      v.GetString("app.name"),
			Env:       v.GetString("app.env"),
			Port:      v.GetString("app.port"),
			BaseURL:   v.GetString("app.base_url"),
			APISunset: v.GetTime("app.api_sunset"),
		},
		Database: DatabaseConfig{
			URL:       v.GetString("database.url"),
			MaxConns:  v.GetInt32("database.max_conns"),
			TxTimeout: v.GetDuration("database.tx_timeout"),
			TxMaxWait: v.GetDuration("database.tx_max_wait"),
			TxRetries: v.GetInt("database.tx_retries"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Issuer:     v.GetString("jwt.issuer"),
			AccessTTL:  v.GetDuration("jwt.access_ttl"),
			RefreshTTL: v.GetDuration("jwt.refresh_ttl"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access_key"),
			SecretKey: v.GetString("minio.secret_key"),
			UseSSL:    v.GetBool("minio.use_ssl"),
			Bucket:    v.GetString("minio.bucket"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			User:     v.GetString("smtp.user"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
			FromName: v.GetString("smtp.from_name"),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:   v.GetString("whatsapp.api_url"),
			Token:    v.GetString("whatsapp.token"),
			Instance: v.GetString("whatsapp.instance"),
			Timeout:  v.GetDuration("whatsapp.timeout"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Scheduler: SchedulerConfig{
			Enabled:              v.GetBool("scheduler.enabled"),
			OverdueInterval:      v.GetDuration("scheduler.overdue_interval"),
			LowStockInterval:     v.GetDuration("scheduler.low_stock_interval"),
			InvitationInterval:   v.GetDuration("scheduler.invitation_interval"),
			NotificationInterval: v.GetDuration("scheduler.notification_interval"),
			DashboardInterval:    v.GetDuration("scheduler.dashboard_interval"),
			MaxNotifyAttempts:    v.GetInt("scheduler.max_notify_attempts"),
		},
		RateLimit: RateLimitConfig{
			Enabled:      v.GetBool("rate_limit.enabled"),
			AuthRequests: v.GetInt("rate_limit.auth_requests"),
			AuthWindow:   v.GetDuration("rate_limit.auth_window"),
		},
		Invitation: InvitationConfig{
			TTL: v.GetDuration("invitation.ttl"),
		},
		Swagger: SwaggerConfig{
			Enabled: v.GetBool("swagger.enabled"),
		},
	}

	if cfg.JWT.Secret == "" && !cfg.IsProduction() {
		cfg.JWT.Secret = randomSecret()
		cfg.GeneratedJWTSecret = true
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storeops")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:3000")

	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.tx_timeout", 10*time.Second)
	v.SetDefault("database.tx_max_wait", 5*time.Second)
	v.SetDefault("database.tx_retries", 3)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("jwt.issuer", "storeops")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.access_key", "minioadmin")
	v.SetDefault("minio.secret_key", "minioadmin")
	v.SetDefault("minio.bucket", "storeops")

	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.from_name", "StoreOps")

	v.SetDefault("whatsapp.timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.overdue_interval", time.Hour)
	v.SetDefault("scheduler.low_stock_interval", 30*time.Minute)
	v.SetDefault("scheduler.invitation_interval", time.Hour)
	v.SetDefault("scheduler.notification_interval", 5*time.Minute)
	v.SetDefault("scheduler.dashboard_interval", 15*time.Minute)
	v.SetDefault("scheduler.max_notify_attempts", 3)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.auth_requests", 10)
	v.SetDefault("rate_limit.auth_window", time.Minute)

	v.SetDefault("invitation.ttl", 72*time.Hour)
	v.SetDefault("swagger.enabled", true)
}

// IsProduction reports whether the app runs with env=production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("database.url is required (STOREOPS_DATABASE_URL or DATABASE_URL)")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required in production")
	}
	if c.IsProduction() && len(c.JWT.Secret) < 32 {
		return errors.New("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.TxTimeout <= 0 {
		return fmt.Errorf("database.tx_timeout must be positive, got %s", c.Database.TxTimeout)
	}
	if c.Database.TxRetries < 0 {
		return fmt.Errorf("database.tx_retries cannot be negative")
	}
	if c.Log.Format == "" {
		if c.IsProduction() {
			c.Log.Format = "json"
		} else {
			c.Log.Format = "console"
		}
	}
	return nil
}

func randomSecret() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
