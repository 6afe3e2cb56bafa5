package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	S3        S3Config        `mapstructure:"s3"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Email     EmailConfig     `mapstructure:"email"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Editor    EditorConfig    `mapstructure:"editor"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"` // gin mode: debug, release, test
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StorageConfig selects the persistence driver: "mongo" (mongo + postgres)
// or "memory" (everything in process, for local development).
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
	// Transactions needs a replica set.
	Transactions bool `mapstructure:"transactions"`
}

type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int32  `mapstructure:"max_conns"`
	Tracing  bool   `mapstructure:"tracing"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	PerMinute int  `mapstructure:"per_minute"`
}

type S3Config struct {
	Endpoint        string        `mapstructure:"endpoint"`
	Region          string        `mapstructure:"region"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	BucketName      string        `mapstructure:"bucket_name"`
	UseSSL          bool          `mapstructure:"use_ssl"`
	PresignExpiry   time.Duration `mapstructure:"presign_expiry"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	File   string `mapstructure:"file"`
	Stdout bool   `mapstructure:"stdout"`
	JSON   bool   `mapstructure:"json"`
}

type SentryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
	ServerName  string `mapstructure:"server_name"`
}

// EmailConfig configures notification mail. Provider "resend" sends real
// mail, anything else logs and drops.
type EmailConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	From     string `mapstructure:"from"`
}

type CacheConfig struct {
	// SlugCacheBytes sizes the published workout cache.
	SlugCacheBytes int           `mapstructure:"slug_cache_bytes"`
	SlugTTL        time.Duration `mapstructure:"slug_ttl"`
}

type EditorConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

var defaults = map[string]interface{}{
	"server.address":          ":8080",
	"server.mode":             "release",
	"server.shutdown_timeout": "5s",
	"storage.driver":          "mongo",
	"database.uri":            "mongodb://localhost:27017",
	"database.name":           "fitplan",
	"database.transactions":   false,
	"postgres.dsn":            "postgres://postgres@localhost:5432/fitplan",
	"postgres.max_conns":      10,
	"postgres.tracing":        false,
	"redis.addr":              "localhost:6379",
	"redis.password":          "",
	"redis.db":                0,
	"rate_limit.enabled":      true,
	"rate_limit.per_minute":   120,
	"s3.endpoint":             "",
	"s3.region":               "us-east-1",
	"s3.access_key_id":        "",
	"s3.secret_access_key":    "",
	"s3.bucket_name":          "",
	"s3.use_ssl":              true,
	"s3.presign_expiry":       "15m",
	"jwt.secret":              "",
	"jwt.expiration":          "1h",
	"log.level":               "info",
	"log.file":                "",
	"log.stdout":              true,
	"log.json":                false,
	"sentry.enabled":          false,
	"sentry.dsn":              "",
	"sentry.environment":      "development",
	"sentry.server_name":      "fitplan",
	"email.provider":          "noop",
	"email.api_key":           "",
	"email.from":              "FitPlan <no-reply@fitplan.local>",
	"cache.slug_cache_bytes":  10 * 1024 * 1024,
	"cache.slug_ttl":          "5m",
	"editor.idle_timeout":     "30m",
	"editor.sweep_interval":   "1m",
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// every key needs a default so AutomaticEnv can see it during Unmarshal
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		err = nil
	} else if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("unmarshal config: %w", err)
	}
	return config, config.Validate()
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	switch c.Storage.Driver {
	case "mongo", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Email.Provider == "resend" && c.Email.APIKey == "" {
		return errors.New("email.api_key is required for the resend provider")
	}
	return nil
}
