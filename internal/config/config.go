package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/angelodel80/cadmus-api/pkg/logger"
)

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Redis     RedisConfig
	Keycloak  KeycloakConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	MinIO     MinIOConfig
	PinCache  PinCacheConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	LogLevel     string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig: an empty URI selects the in-memory repositories.
type MongoDBConfig struct {
	URI     string
	Timeout time.Duration
	// Retries is the number of connection attempts at startup.
	Retries int
	// UsersDatabase holds the users collection; item data lives in the
	// database named by each request.
	UsersDatabase string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	port := r.Port
	if port == "" {
		port = "6379"
	}
	return r.Host + ":" + port
}

type KeycloakConfig struct {
	URL          string
	Realm        string
	ClientID     string
	ClientSecret string
}

// Issuer is the realm issuer URL, or "" when Keycloak is not configured.
func (k KeycloakConfig) Issuer() string {
	if k.URL == "" || k.Realm == "" {
		return ""
	}
	return k.URL + "/realms/" + k.Realm
}

type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
	// AllowInsecure accepts unsigned tokens; local development only.
	AllowInsecure bool
}

type RateLimitConfig struct {
	Enabled bool
	RPS     float64
	Burst   int
	Window  time.Duration
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
}

type PinCacheConfig struct {
	Enabled bool
	Prefix  string
	TTL     time.Duration
}

// SeedConfig describes the admin account created at startup.
type SeedConfig struct {
	AdminUserName string
	AdminEmail    string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "60380")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("MONGODB_RETRIES", 5)
	v.SetDefault("MONGODB_USERS_DATABASE", "cadmus-users")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("JWT_ACCESS_TOKEN_TTL", 60)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW", 1)
	v.SetDefault("MINIO_BUCKET", "cadmus-backups")
	v.SetDefault("PIN_CACHE_ENABLED", true)
	v.SetDefault("PIN_CACHE_TTL", 3600)
	v.SetDefault("SEED_ADMIN_USERNAME", "zeus")
	v.SetDefault("SEED_ADMIN_EMAIL", "fake@nowhere.com")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			LogLevel:     v.GetString("LOG_LEVEL"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:           v.GetString("MONGODB_URI"),
			Timeout:       time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
			Retries:       v.GetInt("MONGODB_RETRIES"),
			UsersDatabase: v.GetString("MONGODB_USERS_DATABASE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:          v.GetString("KEYCLOAK_URL"),
			Realm:        v.GetString("KEYCLOAK_REALM"),
			ClientID:     v.GetString("KEYCLOAK_CLIENT_ID"),
			ClientSecret: v.GetString("KEYCLOAK_CLIENT_SECRET"),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv("JWT_SECRET"),
			AccessTokenTTL: time.Duration(v.GetInt("JWT_ACCESS_TOKEN_TTL")) * time.Minute,
			AllowInsecure:  v.GetBool("ALLOW_INSECURE_TOKEN"),
		},
		RateLimit: RateLimitConfig{
			Enabled: v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:     v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:   v.GetInt("RATE_LIMIT_BURST"),
			Window:  time.Duration(v.GetInt("RATE_LIMIT_WINDOW")) * time.Second,
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
		},
		PinCache: PinCacheConfig{
			Enabled: v.GetBool("PIN_CACHE_ENABLED"),
			Prefix:  v.GetString("PIN_CACHE_PREFIX"),
			TTL:     time.Duration(v.GetInt("PIN_CACHE_TTL")) * time.Second,
		},
		Seed: SeedConfig{
			AdminUserName: v.GetString("SEED_ADMIN_USERNAME"),
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
		},
	}

	// Basic validation
	if cfg.JWT.Secret == "" && cfg.Keycloak.Issuer() == "" && !cfg.JWT.AllowInsecure {
		logger.Warnf("neither JWT_SECRET nor KEYCLOAK_URL/KEYCLOAK_REALM is set; every API request will be rejected")
	}
	if cfg.MongoDB.URI == "" {
		logger.Warnf("MONGODB_URI is not set; using in-memory storage")
	}

	return cfg, nil
}
