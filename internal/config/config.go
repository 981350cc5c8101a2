package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	SMTP     *SMTPConfig     `mapstructure:"smtp"`
	Telegram *TelegramConfig `mapstructure:"telegram"`
	Notify   *NotifyConfig   `mapstructure:"notify"`
	RabbitMQ *RabbitMQConfig `mapstructure:"rabbitmq"`
	Redis    *RedisConfig    `mapstructure:"redis"`
	Storage  *StorageConfig  `mapstructure:"storage"`
}

type APIConfig struct {
	Environment        string        `mapstructure:"environment"`
	Port               string        `mapstructure:"port"`
	BaseURL            string        `mapstructure:"base_url"`
	PublicURL          string        `mapstructure:"public_url"` // scheme://host encoded into ticket QR codes
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

const (
	TransportMemory   = "memory"
	TransportRabbitMQ = "rabbitmq"
)

type NotifyConfig struct {
	Transport string `mapstructure:"transport"`
	QueueSize int    `mapstructure:"queue_size"`
	Workers   int    `mapstructure:"workers"`
}

type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
	Queue    string `mapstructure:"queue"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	LookupLimit  int           `mapstructure:"lookup_limit"`
	LookupWindow time.Duration `mapstructure:"lookup_window"`
}

type StorageConfig struct {
	RootDir        string `mapstructure:"root_dir"`
	PublicPrefix   string `mapstructure:"public_prefix"`
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
}

var errMissingSigningKey = errors.New("api.jwt_signing_key must be set")

func (c *AppConfig) validate() error {
	if c.API.JWTSigningKey == "" {
		return errMissingSigningKey
	}

	switch c.Notify.Transport {
	case TransportMemory, TransportRabbitMQ:
	default:
		return fmt.Errorf("notify.transport must be %q or %q, got %q", TransportMemory, TransportRabbitMQ, c.Notify.Transport)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.base_url", "localhost:8080")
	v.SetDefault("api.public_url", "http://localhost:8080")
	v.SetDefault("api.jwt_ttl", 24*time.Hour)
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("notify.transport", TransportMemory)
	v.SetDefault("notify.queue_size", 100)
	v.SetDefault("notify.workers", 2)
	v.SetDefault("rabbitmq.exchange", "notifications")
	v.SetDefault("rabbitmq.queue", "portal.notifications")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.lookup_limit", 10)
	v.SetDefault("redis.lookup_window", time.Minute)
	v.SetDefault("storage.root_dir", "uploads")
	v.SetDefault("storage.public_prefix", "/uploads")
	v.SetDefault("storage.max_upload_bytes", 5*1024*1024)
}

// Load reads the YAML file at path. Every key can be overridden by an
// environment variable, e.g. api.port -> API_PORT.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
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

	v.OnConfigChange(func(e fsnotify.Event) {
		zap.L().Info("config file changed, restart to apply", zap.String("file", e.Name), zap.String("op", e.Op.String()))
	})
	v.WatchConfig()

	return conf, nil
}
