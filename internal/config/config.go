// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// It is built once by Load and passed to the components that need it.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Storage  StorageConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds database connection settings.
// Driver is "postgres" (default) or "sqlite".
type DatabaseConfig struct {
	Driver      string
	URLOverride string // DATABASE_URL, wins over the discrete fields
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SQLitePath  string
	MaxConnAge  int // seconds
	Debug       bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool
	SessionSecret string
	AllowedHosts  []string
	TimeZone      string
}

// StorageType selects the logo storage backend.
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds file storage settings for company logos.
type StorageConfig struct {
	Type         StorageType
	LocalPath    string
	S3Bucket     string
	S3Region     string
	AWSAccessKey string
	AWSSecretKey string
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	if d.URLOverride != "" {
		return d.URLOverride
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	if d.URLOverride != "" {
		return d.URLOverride
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// IsSQLite reports whether the sqlite driver is selected.
func (d DatabaseConfig) IsSQLite() bool {
	return d.Driver == "sqlite"
}

// Location resolves TimeZone, falling back to UTC when it is unknown.
func (a AppConfig) Location() *time.Location {
	if a.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// HostAllowed reports whether host (with or without port) is accepted.
// An empty list or a "*" entry accepts everything.
func (a AppConfig) HostAllowed(host string) bool {
	if len(a.AllowedHosts) == 0 {
		return true
	}
	if h, _, ok := strings.Cut(host, ":"); ok {
		host = h
	}
	host = strings.ToLower(host)
	for _, allowed := range a.AllowedHosts {
		allowed = strings.ToLower(allowed)
		switch {
		case allowed == "*":
			return true
		case strings.HasPrefix(allowed, "."):
			if host == allowed[1:] || strings.HasSuffix(host, allowed) {
				return true
			}
		case host == allowed:
			return true
		}
	}
	return false
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URLOverride: os.Getenv("DATABASE_URL"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "corequote"),
			Password:    getEnv("DB_PASSWORD", "corequote"),
			DBName:      getEnv("DB_NAME", "corequote"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SQLitePath:  getEnv("SQLITE_PATH", "corequote.db"),
			MaxConnAge:  getEnvInt("DB_CONN_MAX_AGE", 60),
			Debug:       getEnvBool("DB_DEBUG", false),
		},
		App: AppConfig{
			Dev:           getEnvBool("DEV", false),
			Migrations:    getEnvBool("MIGRATIONS", false),
			SessionSecret: getEnv("SESSION_SECRET", "devsessionsecret"),
			AllowedHosts:  getEnvList("ALLOWED_HOSTS", []string{"localhost", "127.0.0.1"}),
			TimeZone:      getEnv("TIME_ZONE", "America/Mexico_City"),
		},
		Storage: StorageConfig{
			Type:         StorageType(strings.ToLower(getEnv("STORAGE_TYPE", "local"))),
			LocalPath:    getEnv("STORAGE_LOCAL_PATH", "media"),
			S3Bucket:     os.Getenv("AWS_S3_BUCKET"),
			S3Region:     getEnv("AWS_REGION", "us-east-1"),
			AWSAccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			AWSSecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
