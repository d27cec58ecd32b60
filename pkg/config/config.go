package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Lockout  LockoutConfig
	Reset    ResetConfig
	Blob     BlobConfig
	Mail     MailConfig
	Sentry   SentryConfig
	CORS     CORSConfig
	Log      LogConfig
	Catalog  CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds the signing material shared by access and refresh tokens.
type JWTConfig struct {
	Issuer     string
	Audience   string
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// LockoutConfig tunes the failed sign-in policy.
type LockoutConfig struct {
	MaxFailedAttempts  int
	Duration           time.Duration
	AllowedForNewUsers bool
}

// ResetConfig configures password reset codes.
type ResetConfig struct {
	CodeTTL time.Duration
}

// BlobConfig selects the profile image store. An empty Endpoint falls back to LocalDir.
type BlobConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
	LocalDir  string
}

// MailConfig configures outbound SMTP delivery.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Workers  int
	Retries  int
}

type SentryConfig struct {
	DSN string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig governs module catalog caching.
type CatalogConfig struct {
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

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Issuer:     v.GetString("JWT_ISSUER"),
		Audience:   v.GetString("JWT_AUDIENCE"),
		Secret:     v.GetString("JWT_SECRET"),
		AccessTTL:  parseDuration(v.GetString("JWT_ACCESS_TTL"), 60*time.Minute),
		RefreshTTL: parseDuration(v.GetString("JWT_REFRESH_TTL"), 30*24*time.Hour),
	}

	maxAttempts := v.GetInt("LOCKOUT_MAX_ATTEMPTS")
	if maxAttempts <= 0 {
		maxAttempts = 6
	}
	cfg.Lockout = LockoutConfig{
		MaxFailedAttempts:  maxAttempts,
		Duration:           parseDuration(v.GetString("LOCKOUT_DURATION"), 5*time.Minute),
		AllowedForNewUsers: v.GetBool("LOCKOUT_FOR_NEW_USERS"),
	}

	cfg.Reset = ResetConfig{
		CodeTTL: parseDuration(v.GetString("RESET_CODE_TTL"), 24*time.Hour),
	}

	cfg.Blob = BlobConfig{
		Endpoint:  v.GetString("BLOB_ENDPOINT"),
		AccessKey: v.GetString("BLOB_ACCESS_KEY"),
		SecretKey: v.GetString("BLOB_SECRET_KEY"),
		Bucket:    v.GetString("BLOB_BUCKET"),
		UseSSL:    v.GetBool("BLOB_USE_SSL"),
		PublicURL: strings.TrimRight(v.GetString("BLOB_PUBLIC_URL"), "/"),
		LocalDir:  v.GetString("BLOB_LOCAL_DIR"),
	}

	cfg.Mail = MailConfig{
		Host:     v.GetString("MAIL_HOST"),
		Port:     v.GetInt("MAIL_PORT"),
		Username: v.GetString("MAIL_USERNAME"),
		Password: v.GetString("MAIL_PASSWORD"),
		From:     v.GetString("MAIL_FROM"),
		Workers:  v.GetInt("MAIL_WORKERS"),
		Retries:  v.GetInt("MAIL_RETRIES"),
	}

	cfg.Sentry = SentryConfig{DSN: v.GetString("SENTRY_DSN")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("ENABLE_CATALOG_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 10*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "english_registration")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_ISSUER", "English.Registration.API")
	v.SetDefault("JWT_AUDIENCE", "http://localhost:3000")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_ACCESS_TTL", "60m")
	v.SetDefault("JWT_REFRESH_TTL", "720h")

	v.SetDefault("LOCKOUT_MAX_ATTEMPTS", 6)
	v.SetDefault("LOCKOUT_DURATION", "5m")
	v.SetDefault("LOCKOUT_FOR_NEW_USERS", true)
	v.SetDefault("RESET_CODE_TTL", "24h")

	v.SetDefault("BLOB_ENDPOINT", "")
	v.SetDefault("BLOB_BUCKET", "profile-images")
	v.SetDefault("BLOB_USE_SSL", false)
	v.SetDefault("BLOB_PUBLIC_URL", "")
	v.SetDefault("BLOB_LOCAL_DIR", "./uploads")

	v.SetDefault("MAIL_HOST", "smtp.zoho.com")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("MAIL_FROM", "")
	v.SetDefault("MAIL_WORKERS", 1)
	v.SetDefault("MAIL_RETRIES", 3)

	v.SetDefault("SENTRY_DSN", "")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_CATALOG_CACHE", true)
	v.SetDefault("CATALOG_CACHE_TTL", "10m")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
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

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == ';' })
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
