package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database drivers understood by the storage layer.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config aggregates runtime configuration for the docadmin API.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	Upload   UploadConfig
	Links    LinkConfig
	Auth     AuthConfig
	Metrics  MetricsConfig
	Log      LogConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the record store backend.
type DatabaseConfig struct {
	Driver     string
	Postgres   PostgresConfig
	SQLitePath string
}

// PostgresConfig contains PostgreSQL connection details.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MigrateURL returns the DSN in the form expected by golang-migrate's pgx/v5 driver.
func (p PostgresConfig) MigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// MinIOConfig carries MinIO connection and bucket information.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// UploadConfig controls how uploaded documents are named and stored.
type UploadConfig struct {
	MaxFileSize int64
	PathPrefix  string
	// Cleanup removes stored objects when their record is deleted or the file is replaced.
	Cleanup bool
}

// LinkConfig controls presigned document links.
type LinkConfig struct {
	TTL       time.Duration
	CacheSize int
}

// AuthConfig groups admin authentication settings.
type AuthConfig struct {
	AdminEmail        string
	AdminPasswordHash string
	AccessTokenSecret string
	AccessTokenTTL    time.Duration
	BcryptCost        int
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// LogConfig configures the zap logger and its optional rotating file sink.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:         getString("DOCADMIN_API_HOST", "0.0.0.0"),
			Port:         getInt("DOCADMIN_API_PORT", 8080),
			ReadTimeout:  getDuration("DOCADMIN_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("DOCADMIN_API_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDuration("DOCADMIN_API_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(getString("DATABASE_DRIVER", DriverPostgres)),
			Postgres: PostgresConfig{
				Host:     getString("POSTGRES_HOST", "localhost"),
				Port:     getInt("POSTGRES_PORT", 5432),
				User:     getString("POSTGRES_USER", "docadmin_app"),
				Password: getString("POSTGRES_PASSWORD", "change-me"),
				Database: getString("POSTGRES_DB", "docadmin"),
				SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),

				MaxConns:        int32(getInt("POSTGRES_MAX_CONNS", 10)),
				MinConns:        int32(getInt("POSTGRES_MIN_CONNS", 0)),
				MaxConnLifetime: getDuration("POSTGRES_MAX_CONN_LIFETIME", time.Hour),
			},
			SQLitePath: getString("SQLITE_PATH", "docadmin.db"),
		},
		MinIO: MinIOConfig{
			Endpoint:        getString("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("MINIO_ROOT_USER", "docadmin"),
			SecretAccessKey: getString("MINIO_ROOT_PASSWORD", "change-me-strong-password"),
			Bucket:          getString("MINIO_BUCKET", "documents"),
			UseSSL:          getBool("MINIO_USE_SSL", false),
			Region:          getString("MINIO_REGION", ""),
		},
		Upload: UploadConfig{
			MaxFileSize: getInt64("UPLOAD_MAX_SIZE", 100*1024*1024),
			PathPrefix:  strings.Trim(getString("UPLOAD_PATH_PREFIX", "files"), "/"),
			Cleanup:     getBool("UPLOAD_CLEANUP", false),
		},
		Links: LinkConfig{
			TTL:       getDuration("LINK_TTL", 15*time.Minute),
			CacheSize: getInt("LINK_CACHE_SIZE", 1024),
		},
		Auth: loadAuthConfig(),
		Metrics: MetricsConfig{
			PrometheusPath: getString("DOCADMIN_METRICS_PATH", "/metrics"),
		},
		Log: LogConfig{
			Level:      strings.ToLower(getString("LOG_LEVEL", "info")),
			File:       getString("LOG_FILE", ""),
			MaxSizeMB:  getInt("LOG_MAX_SIZE_MB", 100),
			MaxBackups: getInt("LOG_MAX_BACKUPS", 5),
			MaxAgeDays: getInt("LOG_MAX_AGE_DAYS", 30),
			Compress:   getBool("LOG_COMPRESS", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("UPLOAD_MAX_SIZE must be positive, got %d", c.Upload.MaxFileSize)
	}
	if c.Links.TTL < time.Second {
		return fmt.Errorf("LINK_TTL must be at least 1s, got %s", c.Links.TTL)
	}
	return nil
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt64(key string, fallback int64) int64 {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func loadAuthConfig() AuthConfig {
	cost := getInt("DOCADMIN_AUTH_BCRYPT_COST", 12)
	if cost < 4 || cost > 31 {
		cost = 12
	}

	return AuthConfig{
		AdminEmail:        strings.ToLower(getString("DOCADMIN_ADMIN_EMAIL", "admin@localhost")),
		AdminPasswordHash: getString("DOCADMIN_ADMIN_PASSWORD_HASH", ""),
		AccessTokenSecret: getString("DOCADMIN_JWT_SECRET", "change-me-to-a-32-byte-secret"),
		AccessTokenTTL:    getDuration("DOCADMIN_AUTH_ACCESS_TOKEN_TTL", 8*time.Hour),
		BcryptCost:        cost,
	}
}
