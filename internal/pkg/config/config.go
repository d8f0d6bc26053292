package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	JWTSecret string `env:"JWT_SECRET, required"`

	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=24h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Mail    MailConfig
	Uploads UploadConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fresh_produce"`
}

type RedisConfig struct {
	Addr           string        `env:"REDIS_ADDR,      default=localhost:6379"`
	Password       string        `env:"REDIS_PASSWORD"`
	DB             int           `env:"REDIS_DB,        default=0"`
	IdempotencyTTL time.Duration `env:"IDEMPOTENCY_TTL, default=24h"`
}

// MailConfig holds the SMTP account used for order confirmations.
// Mail is disabled when User is empty.
type MailConfig struct {
	User     string `env:"EMAIL_USER"`
	Password string `env:"EMAIL_PASS"`
	Host     string `env:"SMTP_HOST,       default=smtp.gmail.com"`
	Port     string `env:"SMTP_PORT,       default=587"`
	FromName string `env:"EMAIL_FROM_NAME, default=Fresh Produce"`
	Workers  int    `env:"MAIL_WORKERS,    default=4"`
}

type UploadConfig struct {
	Driver   string `env:"UPLOAD_DRIVER,    default=local"`
	Dir      string `env:"UPLOAD_DIR,       default=uploads"`
	URL      string `env:"UPLOAD_URL,       default=/uploads"`
	MaxBytes int64  `env:"UPLOAD_MAX_BYTES, default=5242880"`

	S3 S3Config
}

type S3Config struct {
	Bucket   string `env:"S3_BUCKET"`
	Region   string `env:"S3_REGION, default=us-east-1"`
	Key      string `env:"S3_KEY"`
	Secret   string `env:"S3_SECRET"`
	Endpoint string `env:"S3_ENDPOINT"`
	URL      string `env:"S3_URL"`
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads a .env file when present and then resolves configuration from
// the environment. A missing JWT_SECRET is an error.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.Uploads.Driver != "local" && cfg.Uploads.Driver != "s3" {
		return nil, fmt.Errorf("config: UPLOAD_DRIVER must be local or s3, got %q", cfg.Uploads.Driver)
	}
	if cfg.Uploads.Driver == "s3" && cfg.Uploads.S3.Bucket == "" {
		return nil, errors.New("config: S3_BUCKET is required when UPLOAD_DRIVER=s3")
	}
	return &cfg, nil
}
