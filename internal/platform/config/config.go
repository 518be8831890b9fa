// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	JWT          JWTConfig          `yaml:"jwt"`
	Registration RegistrationConfig `yaml:"registration"`
	Notifier     NotifierConfig     `yaml:"notifier"`
	SES          SESConfig          `yaml:"ses"`
	Log          LogConfig          `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds connection settings for PostgreSQL or SQLite.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres | sqlite

	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	SSLMode  string `yaml:"sslmode"`
	// InstanceName is a Cloud SQL instance connection name; when set the
	// unix socket under /cloudsql is used instead of Host/Port.
	InstanceName string `yaml:"instance_name"`

	SQLitePath string `yaml:"sqlite_path"`

	ConnectTimeout  time.Duration `yaml:"connect_timeout"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	TxTimeout       time.Duration `yaml:"tx_timeout"`
	RunMigrations   bool          `yaml:"run_migrations"`
}

// RedisConfig holds Redis settings. Redis is optional; an empty Host disables it.
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Enabled reports whether a Redis host is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port.
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// JWTConfig holds access token settings.
type JWTConfig struct {
	Secret     string        `yaml:"secret"`
	Expiration time.Duration `yaml:"expiration"`
}

// RegistrationConfig holds activation code and password hashing settings.
type RegistrationConfig struct {
	CodeTTL    time.Duration `yaml:"code_ttl"`
	CodeLength int           `yaml:"code_length"`
	BcryptCost int           `yaml:"bcrypt_cost"`
}

// Notifier kinds.
const (
	NotifierLog   = "log"
	NotifierSES   = "ses"
	NotifierQueue = "queue"
)

// NotifierConfig selects how activation codes are delivered.
type NotifierConfig struct {
	Kind     string        `yaml:"kind"`
	Timeout  time.Duration `yaml:"timeout"`
	QueueKey string        `yaml:"queue_key"`
	// MaxAttempts bounds redelivery by the mailer worker.
	MaxAttempts int `yaml:"max_attempts"`
	// RetryBackoff is the first retry delay; it doubles on every further failure.
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// SESConfig holds AWS SES credentials and sender settings.
type SESConfig struct {
	Region    string        `yaml:"region"`
	AccessKey string        `yaml:"access_key"`
	SecretKey string        `yaml:"secret_key"`
	From      string        `yaml:"from"`
	FromName  string        `yaml:"from_name"`
	Timeout   time.Duration `yaml:"timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json | text
}

// Load reads and parses the configuration file and fills in defaults.
// An empty path yields the defaults only.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// A .env file in the working directory is loaded first, if present.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.Port == "" {
		c.Database.Port = "5432"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "registration.db"
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = 60 * time.Second
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if c.Database.TxTimeout == 0 {
		c.Database.TxTimeout = 5 * time.Second
	}

	if c.Redis.Port == "" {
		c.Redis.Port = "6379"
	}

	if c.JWT.Expiration == 0 {
		c.JWT.Expiration = time.Hour
	}

	if c.Registration.CodeTTL == 0 {
		c.Registration.CodeTTL = 10 * time.Minute
	}
	if c.Registration.CodeLength == 0 {
		c.Registration.CodeLength = 4
	}
	if c.Registration.BcryptCost == 0 {
		c.Registration.BcryptCost = 12
	}

	if c.Notifier.Kind == "" {
		c.Notifier.Kind = NotifierLog
	}
	if c.Notifier.Timeout == 0 {
		c.Notifier.Timeout = 10 * time.Second
	}
	if c.Notifier.QueueKey == "" {
		c.Notifier.QueueKey = "registration:activation-emails"
	}
	if c.Notifier.MaxAttempts == 0 {
		c.Notifier.MaxAttempts = 3
	}
	if c.Notifier.RetryBackoff == 0 {
		c.Notifier.RetryBackoff = 30 * time.Second
	}

	if c.SES.Region == "" {
		c.SES.Region = "us-west-2"
	}
	if c.SES.Timeout == 0 {
		c.SES.Timeout = 30 * time.Second
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// envOverrides maps environment variables onto string fields.
func (c *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"SERVER_ADDR":              &c.Server.Addr,
		"DB_DRIVER":                &c.Database.Driver,
		"DB_USER":                  &c.Database.User,
		"DB_PASSWORD":              &c.Database.Password,
		"DB_NAME":                  &c.Database.Name,
		"DB_HOST":                  &c.Database.Host,
		"DB_PORT":                  &c.Database.Port,
		"DB_SSLMODE":               &c.Database.SSLMode,
		"INSTANCE_CONNECTION_NAME": &c.Database.InstanceName,
		"SQLITE_PATH":              &c.Database.SQLitePath,
		"REDIS_HOST":               &c.Redis.Host,
		"REDIS_PORT":               &c.Redis.Port,
		"REDIS_PASSWORD":           &c.Redis.Password,
		"JWT_SECRET":               &c.JWT.Secret,
		"NOTIFIER_KIND":            &c.Notifier.Kind,
		"NOTIFIER_QUEUE_KEY":       &c.Notifier.QueueKey,
		"AWS_SES_ACCESS_KEY":       &c.SES.AccessKey,
		"AWS_SES_SECRET_KEY":       &c.SES.SecretKey,
		"AWS_SES_REGION":           &c.SES.Region,
		"SES_FROM":                 &c.SES.From,
		"LOG_LEVEL":                &c.Log.Level,
		"LOG_FORMAT":               &c.Log.Format,
	}
}

func (c *Config) applyEnv() error {
	for key, field := range c.envOverrides() {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*field = v
		}
	}

	if v := os.Getenv("RUN_MIGRATIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid RUN_MIGRATIONS %q: %w", v, err)
		}
		c.Database.RunMigrations = b
	}
	if v := os.Getenv("ACTIVATION_CODE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid ACTIVATION_CODE_TTL %q: %w", v, err)
		}
		c.Registration.CodeTTL = d
	}
	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid JWT_EXPIRATION %q: %w", v, err)
		}
		c.JWT.Expiration = d
	}
	return nil
}

// Validate checks for settings that would fail at runtime.
func (c *Config) Validate() error {
	var errs []error

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required for postgres"))
		}
	case "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret (JWT_SECRET) is required"))
	}

	if c.Registration.CodeTTL <= 0 {
		errs = append(errs, errors.New("registration.code_ttl must be positive"))
	}
	if c.Registration.CodeLength < 4 || c.Registration.CodeLength > 8 {
		errs = append(errs, fmt.Errorf("registration.code_length must be between 4 and 8, got %d", c.Registration.CodeLength))
	}

	switch strings.ToLower(c.Notifier.Kind) {
	case NotifierLog:
	case NotifierSES:
		if c.SES.From == "" {
			errs = append(errs, errors.New("ses.from is required for the ses notifier"))
		}
	case NotifierQueue:
		if !c.Redis.Enabled() {
			errs = append(errs, errors.New("redis.host is required for the queue notifier"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported notifier.kind %q", c.Notifier.Kind))
	}

	return errors.Join(errs...)
}
