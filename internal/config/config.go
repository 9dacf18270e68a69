package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Supported values for IMAGE_BACKEND.
const (
	ImageBackendDatabase = "database"
	ImageBackendS3       = "s3"
)

// Config holds all settings of the contacts service. Every field is taken from an environment
// variable; a .env file in the working directory is loaded first if present.
type Config struct {
	// HTTP server
	Port            int           `env:"PORT" envDefault:"8000"`
	APIPrefix       string        `env:"API_PREFIX" envDefault:"/api"`
	CORSAllowOrigin string        `env:"CORS_ALLOW_ORIGIN" envDefault:"http://localhost:5173"`
	GinLogging      string        `env:"GIN_LOGGING" envDefault:"on"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	// Database
	DBDriver   string `env:"DB_DRIVER" envDefault:"sqlite"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"contacts.db"`
	DBHost     string `env:"DBHOST" envDefault:"localhost:3306"`
	DBUser     string `env:"DBUSER"`
	DBPassword string `env:"DBPWD"`
	DBName     string `env:"DBNAME" envDefault:"test"`

	// Profile images
	ImageBackend  string `env:"IMAGE_BACKEND" envDefault:"database"`
	MaxImageBytes int64  `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
	S3Bucket      string `env:"S3_BUCKET" envDefault:"contacts"`
	S3Region      string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint    string `env:"S3_ENDPOINT"`
	S3AccessKey   string `env:"S3_ACCESS_KEY"`
	S3SecretKey   string `env:"S3_SECRET_KEY"`
	S3Prefix      string `env:"S3_PREFIX" envDefault:"profile-images/"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	// A missing .env file is fine, the environment alone is enough.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	switch c.DBDriver {
	case DriverSQLite, DriverMySQL, DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.ImageBackend {
	case ImageBackendDatabase:
	case ImageBackendS3:
		// MySQL enforces the foreign key from contacts to images, which the S3 backend never fills.
		if c.DBDriver == DriverMySQL {
			return fmt.Errorf("IMAGE_BACKEND %q cannot be combined with DB_DRIVER %q", c.ImageBackend, c.DBDriver)
		}
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for IMAGE_BACKEND %q", c.ImageBackend)
		}
	default:
		return fmt.Errorf("unsupported IMAGE_BACKEND %q", c.ImageBackend)
	}
	if c.MaxImageBytes < 1 {
		return fmt.Errorf("invalid MAX_IMAGE_BYTES %d", c.MaxImageBytes)
	}
	return nil
}

// Addr returns the listen address of the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// RequestLogging reports whether HTTP requests shall be logged.
func (c Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}

// MySQLDSN builds the data source name for the MySQL driver. clientFoundRows makes an UPDATE
// that does not change any value still report the matched row.
func (c Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true",
		c.DBUser, c.DBPassword, c.DBHost, c.DBName)
}
