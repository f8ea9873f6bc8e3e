package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL connection settings for the document registry.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// ObjectStoreConfig holds connection settings for the S3-compatible backend.
// No bucket is configured here: buckets are derived per clinic at runtime.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// StorageConfig selects the active storage backend for the process lifetime
// and carries backend-neutral tuning knobs.
type StorageConfig struct {
	// UseObjectStore picks the object-store provider; false means local disk.
	// Switching an existing deployment requires the migration routine, not a
	// config flip.
	UseObjectStore bool
	// UploadDir is the root directory for the local provider.
	UploadDir string
	// PresignTTLSec is the lifetime of generated download URLs.
	PresignTTLSec int
}

// AppConfig is the centralized configuration struct, populated from
// environment variables. Sensitive values are never hardcoded.
type AppConfig struct {
	Database    DatabaseConfig
	ObjectStore ObjectStoreConfig
	Storage     StorageConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:  getEnv("OBJSTORE_ENDPOINT", ""),
			AccessKey: getEnv("OBJSTORE_ACCESS_KEY", ""),
			SecretKey: getEnv("OBJSTORE_SECRET_KEY", ""),
			UseSSL:    getEnvBool("OBJSTORE_USE_SSL", false),
		},
		Storage: StorageConfig{
			UseObjectStore: getEnvBool("STORAGE_USE_OBJECT_STORE", true),
			UploadDir:      getEnv("STORAGE_UPLOAD_DIR", "uploads"),
			PresignTTLSec:  getEnvInt("STORAGE_PRESIGN_TTL_SEC", 3600),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
