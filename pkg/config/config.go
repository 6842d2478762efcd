package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Storage drivers supported for compliance evidence blobs.
const (
	StorageDriverLocal = "local"
	StorageDriverMinio = "minio"
)

type Config struct {
	Env             string
	Port            int
	APIPrefix       string
	ShutdownTimeout time.Duration

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Session   SessionConfig
	Identity  IdentityConfig
	Storage   StorageConfig
	Analytics AnalyticsConfig
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

// DSN returns the connection string, preferring the explicit URL when set.
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SessionConfig controls session token lifetime and cookie transport.
type SessionConfig struct {
	TTL           time.Duration
	CookieName    string
	CookieSecure  bool
	AdminEmails   []string
	SweepInterval time.Duration
	Retention     time.Duration
}

// IdentityConfig points at the external login portal and session-data exchange.
type IdentityConfig struct {
	PortalURL     string
	PublicAppURL  string
	SessionURL    string
	Timeout       time.Duration
	SessionHeader string
}

// StorageConfig selects and configures the blob store for uploads.
type StorageConfig struct {
	Driver           string
	LocalDir         string
	MaxFileSizeBytes int64
	Minio            MinioConfig
}

// MinioConfig holds object storage credentials when Driver is minio.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseTLS    bool
	BasePath  string
}

// AnalyticsConfig governs cache behaviour for the admin analytics endpoint.
type AnalyticsConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		URL:          v.GetString("DATABASE_URL"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnLifetime: parseDuration(v.GetString("DB_CONN_LIFETIME"), time.Hour),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: parseOrigins(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Session = SessionConfig{
		TTL:           parseDuration(v.GetString("SESSION_TTL"), 7*24*time.Hour),
		CookieName:    v.GetString("SESSION_COOKIE_NAME"),
		CookieSecure:  v.GetBool("SESSION_COOKIE_SECURE"),
		AdminEmails:   lowerAll(splitAndTrim(v.GetString("ADMIN_EMAILS"))),
		SweepInterval: parseDuration(v.GetString("SESSION_SWEEP_INTERVAL"), time.Hour),
		Retention:     parseDuration(v.GetString("SESSION_RETENTION"), 24*time.Hour),
	}

	cfg.Identity = IdentityConfig{
		PortalURL:     strings.TrimRight(v.GetString("AUTH_PORTAL_URL"), "/"),
		PublicAppURL:  strings.TrimRight(v.GetString("APP_PUBLIC_URL"), "/"),
		SessionURL:    v.GetString("IDENTITY_SESSION_URL"),
		Timeout:       parseDuration(v.GetString("IDENTITY_TIMEOUT"), 10*time.Second),
		SessionHeader: v.GetString("IDENTITY_SESSION_HEADER"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 100 * 1024 * 1024
	}
	cfg.Storage = StorageConfig{
		Driver:           strings.ToLower(v.GetString("STORAGE_DRIVER")),
		LocalDir:         v.GetString("UPLOAD_DIR"),
		MaxFileSizeBytes: maxUpload,
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseTLS:    v.GetBool("MINIO_USE_TLS"),
			BasePath:  v.GetString("MINIO_BASE_PATH"),
		},
	}

	cfg.Analytics = AnalyticsConfig{
		CacheEnabled: v.GetBool("ENABLE_ANALYTICS_CACHE"),
		CacheTTL:     parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8001)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "meatsafe")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_LIFETIME", "1h")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_COOKIE_NAME", "session_token")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("ADMIN_EMAILS", "admin@meatsafe.com")
	v.SetDefault("SESSION_SWEEP_INTERVAL", "1h")
	v.SetDefault("SESSION_RETENTION", "24h")

	v.SetDefault("AUTH_PORTAL_URL", "https://auth.emergentagent.com")
	v.SetDefault("APP_PUBLIC_URL", "http://localhost:3000")
	v.SetDefault("IDENTITY_SESSION_URL", "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data")
	v.SetDefault("IDENTITY_TIMEOUT", "10s")
	v.SetDefault("IDENTITY_SESSION_HEADER", "X-Session-ID")

	v.SetDefault("STORAGE_DRIVER", StorageDriverLocal)
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_FILE_SIZE", 100*1024*1024)
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "compliance")
	v.SetDefault("MINIO_USE_TLS", false)
	v.SetDefault("MINIO_BASE_PATH", "uploads")

	v.SetDefault("ENABLE_ANALYTICS_CACHE", false)
	v.SetDefault("ANALYTICS_CACHE_TTL", "1m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseOrigins treats an empty value or a literal "*" entry as allow-all (nil).
func parseOrigins(raw string) []string {
	origins := splitAndTrim(raw)
	for _, origin := range origins {
		if origin == "*" {
			return nil
		}
	}
	return origins
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func lowerAll(values []string) []string {
	for i, value := range values {
		values[i] = strings.ToLower(value)
	}
	return values
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
