package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnv               = "development"
	defaultHTTPHost          = "0.0.0.0"
	defaultHTTPPort          = 8080
	defaultRedisDB           = 0
	defaultCacheTTLSeconds   = 30
	defaultActivityExchange  = "portal.activity"
	defaultActivityQueue     = "portal.activity.auditor"
	defaultPrefetch          = 50
	defaultBatchSize         = 100
	defaultBatchTimeout      = 2 * time.Second
	defaultJWTIssuer         = "ebridge-portal"
	defaultStorageBucket     = "kyc-documents"
	defaultStorageRegion     = "eu-central-1"
	defaultPresignTTL        = 15 * time.Minute
	defaultMaxUploadBytes    = 10 << 20
	defaultInvestEndpoint    = "invest-public-api.tinkoff.ru:443"
	defaultInvestAppName     = "ebridge-portal"
	defaultDecisionGuardTTL  = 10 * time.Second
	defaultStaleReportPeriod = "@every 5m"
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env       string
	HTTP      HTTPConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Cache     CacheConfig
	RabbitMQ  RabbitMQConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Signature SignatureConfig
	Invest    InvestConfig
	Decision  DecisionConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// PostgresConfig stores database connection parameters.
type PostgresConfig struct {
	DSN string
}

// RedisConfig stores Redis connection parameters.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// CacheConfig stores cache behavior.
type CacheConfig struct {
	TTLSeconds int
}

// RabbitMQConfig describes the activity exchange and the auditor's consumption settings.
type RabbitMQConfig struct {
	URL              string
	ActivityExchange string
	Queue            string
	Prefetch         int
	BatchSize        int
	BatchTimeout     time.Duration
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// StorageConfig points at the S3 compatible bucket holding KYC files.
type StorageConfig struct {
	Bucket         string
	Region         string
	Endpoint       string
	UsePathStyle   bool
	PresignTTL     time.Duration
	MaxUploadBytes int64
}

// SignatureConfig selects the consent token scheme. An empty key yields random tokens.
type SignatureConfig struct {
	Key string
}

type InvestConfig struct {
	Token    string
	Endpoint string
	AppName  string
}

type DecisionConfig struct {
	GuardTTL          time.Duration
	StaleReportPeriod string
}

// IsDevelopment reports whether the service may fall back to in-memory gateways.
func (c *Config) IsDevelopment() bool {
	return c.Env == defaultEnv
}

// Load builds Config from environment variables. A .env file in the working directory is
// read first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	env := getString("APP_ENV", defaultEnv)
	host := getString("HTTP_HOST", defaultHTTPHost)
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" && env != defaultEnv {
		return nil, errors.New("DATABASE_DSN is required")
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	prefetch, err := getInt("RABBITMQ_PREFETCH", defaultPrefetch)
	if err != nil {
		return nil, fmt.Errorf("parse RABBITMQ_PREFETCH: %w", err)
	}
	batchSize, err := getInt("RABBITMQ_BATCH_SIZE", defaultBatchSize)
	if err != nil {
		return nil, fmt.Errorf("parse RABBITMQ_BATCH_SIZE: %w", err)
	}
	batchTimeout, err := getDuration("RABBITMQ_BATCH_TIMEOUT", defaultBatchTimeout)
	if err != nil {
		return nil, fmt.Errorf("parse RABBITMQ_BATCH_TIMEOUT: %w", err)
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" && env != defaultEnv {
		return nil, errors.New("JWT_SECRET is required")
	}

	usePathStyle, err := getBool("S3_USE_PATH_STYLE", false)
	if err != nil {
		return nil, fmt.Errorf("parse S3_USE_PATH_STYLE: %w", err)
	}
	presignTTL, err := getDuration("S3_PRESIGN_TTL", defaultPresignTTL)
	if err != nil {
		return nil, fmt.Errorf("parse S3_PRESIGN_TTL: %w", err)
	}
	maxUpload, err := getInt("UPLOAD_MAX_BYTES", defaultMaxUploadBytes)
	if err != nil {
		return nil, fmt.Errorf("parse UPLOAD_MAX_BYTES: %w", err)
	}

	guardTTL, err := getDuration("DECISION_GUARD_TTL", defaultDecisionGuardTTL)
	if err != nil {
		return nil, fmt.Errorf("parse DECISION_GUARD_TTL: %w", err)
	}

	return &Config{
		Env:  env,
		HTTP: HTTPConfig{Host: host, Port: port},
		Postgres: PostgresConfig{
			DSN: dsn,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Cache: CacheConfig{
			TTLSeconds: cacheTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:              os.Getenv("RABBITMQ_URL"),
			ActivityExchange: getString("RABBITMQ_ACTIVITY_EXCHANGE", defaultActivityExchange),
			Queue:            getString("RABBITMQ_ACTIVITY_QUEUE", defaultActivityQueue),
			Prefetch:         prefetch,
			BatchSize:        batchSize,
			BatchTimeout:     batchTimeout,
		},
		Auth: AuthConfig{
			JWTSecret: secret,
			Issuer:    getString("JWT_ISSUER", defaultJWTIssuer),
		},
		Storage: StorageConfig{
			Bucket:         getString("S3_BUCKET", defaultStorageBucket),
			Region:         getString("S3_REGION", defaultStorageRegion),
			Endpoint:       os.Getenv("S3_ENDPOINT"),
			UsePathStyle:   usePathStyle,
			PresignTTL:     presignTTL,
			MaxUploadBytes: int64(maxUpload),
		},
		Signature: SignatureConfig{
			Key: os.Getenv("SIGNATURE_KEY"),
		},
		Invest: InvestConfig{
			Token:    strings.TrimSpace(os.Getenv("INVEST_TOKEN")),
			Endpoint: getString("INVEST_ENDPOINT", defaultInvestEndpoint),
			AppName:  getString("INVEST_APP_NAME", defaultInvestAppName),
		},
		Decision: DecisionConfig{
			GuardTTL:          guardTTL,
			StaleReportPeriod: getString("STALE_REPORT_SCHEDULE", defaultStaleReportPeriod),
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("convert %s value %q to bool: %w", key, value, err)
	}
	return parsed, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to duration: %w", key, value, err)
	}
	return parsed, nil
}
