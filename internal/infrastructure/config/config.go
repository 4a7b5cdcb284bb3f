package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/bytes"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string `env:"PORT,            default=8080"`
	Env           string `env:"ENV,             default=development"`
	LogLevel      string `env:"LOG_LEVEL,       default=info"`
	LogPretty     bool   `env:"LOG_PRETTY,      default=false"`
	UploadMaxSize string `env:"UPLOAD_MAX_SIZE, default=10M"`

	Mongo     MongoConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
	Mail      MailConfig
}

type MongoConfig struct {
	URI          string        `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string        `env:"MONGO_DB,           default=acme"`
	Timeout      time.Duration `env:"MONGO_TIMEOUT,      default=10s"`
	Transactions bool          `env:"MONGO_TRANSACTIONS, default=true"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type RateLimitConfig struct {
	Enabled bool          `env:"RATE_LIMIT_ENABLED, default=true"`
	Max     int           `env:"RATE_LIMIT_MAX,     default=100"`
	Window  time.Duration `env:"RATE_LIMIT_WINDOW,  default=15m"`
}

type AuthConfig struct {
	JWTSecret           string        `env:"JWT_SECRET"`
	PrivateKeyPath      string        `env:"JWT_PRIVATE_KEY_PATH"`
	PublicKeyPath       string        `env:"JWT_PUBLIC_KEY_PATH"`
	Issuer              string        `env:"JWT_ISSUER,            default=acme.com"`
	TokenLifetime       time.Duration `env:"JWT_LIFETIME,          default=1h"`
	Realm               string        `env:"AUTH_REALM,            default=acme.com"`
	UsersFile           string        `env:"USERS_FILE,            default=config/users.yaml"`
	UserPasswordEncoded string        `env:"USER_PASSWORD_ENCODED"`
}

type MailConfig struct {
	Enabled   bool          `env:"MAIL_ENABLED,    default=false"`
	Host      string        `env:"MAIL_HOST,       default=localhost"`
	Port      int           `env:"MAIL_PORT,       default=5025"`
	Username  string        `env:"MAIL_USERNAME"`
	Password  string        `env:"MAIL_PASSWORD"`
	StartTLS  bool          `env:"MAIL_STARTTLS,   default=false"`
	From      string        `env:"MAIL_FROM,       default=Joe.Doe@acme.com"`
	To        string        `env:"MAIL_TO,         default=Foo.Bar@acme.com"`
	Timeout   time.Duration `env:"MAIL_TIMEOUT,    default=5s"`
	Workers   int           `env:"MAIL_WORKERS,    default=2"`
	QueueSize int           `env:"MAIL_QUEUE_SIZE, default=64"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration through l.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	rsa := c.Auth.PrivateKeyPath != "" || c.Auth.PublicKeyPath != ""
	if rsa && (c.Auth.PrivateKeyPath == "" || c.Auth.PublicKeyPath == "") {
		return errors.New("config: JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH must be set together")
	}
	if !rsa && c.Auth.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required unless an RSA key pair is configured")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0) {
		return errors.New("config: RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if c.UploadMaxSize != "" {
		if n, err := bytes.Parse(c.UploadMaxSize); err != nil || n <= 0 {
			return fmt.Errorf("config: UPLOAD_MAX_SIZE %q is not a valid size such as 10M", c.UploadMaxSize)
		}
	}
	return nil
}
