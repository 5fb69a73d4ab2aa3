package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string
	AppBaseURL      string
	AllowedOrigins  []string
	Debug           bool

	// Pool limits; zero keeps the database package defaults
	DatabaseMaxOpenConns int
	DatabaseMaxIdleConns int

	Upload  UploadConfig
	Session SessionConfig
	Admin   AdminConfig
	Email   EmailConfig
}

// UploadConfig selects and configures the file intake backend
type UploadConfig struct {
	Backend string // "disk" or "minio"
	Dir     string
	MaxSize int64

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	PresignExpiry  time.Duration
}

// SessionConfig is the process-wide session policy. The secret signs session cookies.
type SessionConfig struct {
	Secret   string
	Duration time.Duration
	Store    string // "sql" or "redis"
	RedisURL string
}

// AdminConfig holds credentials for the approval area
type AdminConfig struct {
	Email              string
	PasswordHash       string
	AllowedEmails      []string
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectBase  string
}

// EmailConfig configures outgoing notifications through SES
type EmailConfig struct {
	AWSRegion string
	FromEmail string
	FromName  string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	adminEmail := getEnv("ADMIN_EMAIL", "")
	allowed := splitList(getEnv("ADMIN_EMAILS", ""))
	if adminEmail != "" {
		allowed = append(allowed, strings.ToLower(adminEmail))
	}

	return &Config{
		ServerPort:      getEnv("PORT", "5000"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./registry.db"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		AppBaseURL:      getEnv("APP_BASE_URL", "http://localhost:5000"),
		AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		Debug:           getBool("DEBUG", false),

		DatabaseMaxOpenConns: int(getInt64("DB_MAX_OPEN_CONNS", 0)),
		DatabaseMaxIdleConns: int(getInt64("DB_MAX_IDLE_CONNS", 0)),

		Upload: UploadConfig{
			Backend:        getEnv("UPLOAD_BACKEND", "disk"),
			Dir:            getEnv("UPLOAD_DIR", "uploads"),
			MaxSize:        getInt64("UPLOAD_MAX_SIZE", 5*1024*1024), // 5MB
			MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
			MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
			MinioBucket:    getEnv("MINIO_BUCKET", "family-uploads"),
			MinioUseSSL:    getBool("MINIO_USE_SSL", false),
			PresignExpiry:  getDuration("MINIO_PRESIGN_EXPIRY", 15*time.Minute),
		},
		Session: SessionConfig{
			Secret:   sessionSecret(),
			Duration: getDuration("SESSION_DURATION", 24*time.Hour),
			Store:    getEnv("SESSION_STORE", "sql"),
			RedisURL: getEnv("REDIS_URL", ""),
		},
		Admin: AdminConfig{
			Email:              adminEmail,
			PasswordHash:       getEnv("ADMIN_PASSWORD_HASH", ""),
			AllowedEmails:      allowed,
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			OAuthRedirectBase:  getEnv("OAUTH_REDIRECT_BASE_URL", ""),
		},
		Email: EmailConfig{
			AWSRegion: getEnv("AWS_REGION", "us-east-1"),
			FromEmail: getEnv("SES_FROM_EMAIL", ""),
			FromName:  getEnv("SES_FROM_NAME", "Community Registry"),
		},
	}
}

// sessionSecret returns SESSION_SECRET, or a random per-process key when it is
// unset. Sessions and CSRF tokens signed with a generated key do not survive a restart.
func sessionSecret() string {
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		return secret
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	log.Println("Warning: SESSION_SECRET not set, using a random key; sessions will not survive a restart")
	return hex.EncodeToString(buf)
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// splitList turns a comma separated value into a trimmed, lower-cased list
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
