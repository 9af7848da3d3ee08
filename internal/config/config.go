package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service. It is built
// once at process start and handed to the pipeline and orchestrators by
// injection; nothing reads the environment after Load returns.
type Config struct {
	App           AppConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	Logger        LoggerConfig
	Auth          AuthConfig
	WhatsApp      WhatsAppConfig
	ObjectStorage ObjectStorageConfig
	AI            AIConfig
	Dedup         DedupConfig
	Ingest        IngestConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines admin authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
}

// WhatsAppConfig holds Cloud API credentials and webhook parameters.
type WhatsAppConfig struct {
	APIBaseURL          string
	PhoneNumberID       string
	AccessToken         string
	WebhookVerifyToken  string
	ReporterHashSecret  string
	SendTimeoutSeconds  int
	MediaTimeoutSeconds int
}

// ObjectStorageConfig holds the media bucket connection values.
type ObjectStorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

// AIConfig controls the risk analysis provider chain.
type AIConfig struct {
	Enabled               bool
	OpenAIAPIKey          string
	VisionModel           string
	TextModel             string
	RequestTimeoutSeconds int
}

// DedupConfig is the soft-duplicate policy. Window and confidence are
// deliberately configuration, not constants.
type DedupConfig struct {
	WindowMinutes  int
	Confidence     float64
	ProviderIDTTLH int
}

// IngestConfig bounds content validation.
type IngestConfig struct {
	MinIssueLength   int
	ImagePlaceholder string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	confidence, err := strconv.ParseFloat(getEnv("DEDUP_CONFIDENCE", "0.8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DEDUP_CONFIDENCE: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "incident-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		WhatsApp: WhatsAppConfig{
			APIBaseURL:          getEnv("WHATSAPP_API_BASE_URL", "https://graph.facebook.com/v19.0"),
			PhoneNumberID:       os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			AccessToken:         os.Getenv("WHATSAPP_ACCESS_TOKEN"),
			WebhookVerifyToken:  getEnv("WHATSAPP_WEBHOOK_VERIFY_TOKEN", "verify-me"),
			ReporterHashSecret:  getEnv("REPORTER_HASH_SECRET", "dev-hash-secret"),
			SendTimeoutSeconds:  getEnvAsInt("WHATSAPP_SEND_TIMEOUT_SECONDS", 10),
			MediaTimeoutSeconds: getEnvAsInt("WHATSAPP_MEDIA_TIMEOUT_SECONDS", 15),
		},
		ObjectStorage: ObjectStorageConfig{
			Endpoint:      getEnv("STORAGE_ENDPOINT", "127.0.0.1:9000"),
			AccessKey:     os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:     os.Getenv("STORAGE_SECRET_KEY"),
			Bucket:        getEnv("STORAGE_BUCKET", "incident-media"),
			UseSSL:        getEnvAsBool("STORAGE_USE_SSL", false),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", "http://127.0.0.1:9000"),
		},
		AI: AIConfig{
			Enabled:               getEnvAsBool("AI_ANALYSIS_ENABLED", true),
			OpenAIAPIKey:          os.Getenv("OPENAI_API_KEY"),
			VisionModel:           getEnv("AI_VISION_MODEL", "gpt-4o"),
			TextModel:             getEnv("AI_TEXT_MODEL", "gpt-4o-mini"),
			RequestTimeoutSeconds: getEnvAsInt("AI_REQUEST_TIMEOUT_SECONDS", 20),
		},
		Dedup: DedupConfig{
			WindowMinutes:  getEnvAsInt("DEDUP_WINDOW_MINUTES", 30),
			Confidence:     confidence,
			ProviderIDTTLH: getEnvAsInt("DEDUP_PROVIDER_ID_TTL_HOURS", 168),
		},
		Ingest: IngestConfig{
			MinIssueLength:   getEnvAsInt("INGEST_MIN_ISSUE_LENGTH", 10),
			ImagePlaceholder: getEnv("INGEST_IMAGE_PLACEHOLDER", "Image report (no caption provided)"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Window returns the soft-duplicate trailing window.
func (d DedupConfig) Window() time.Duration {
	if d.WindowMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(d.WindowMinutes) * time.Minute
}

// ProviderIDTTL returns how long seen provider message ids are cached.
func (d DedupConfig) ProviderIDTTL() time.Duration {
	if d.ProviderIDTTLH <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(d.ProviderIDTTLH) * time.Hour
}

// RequestTimeout returns the per-provider analysis timeout.
func (a AIConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// SendTimeout returns the outbound message delivery timeout.
func (w WhatsAppConfig) SendTimeout() time.Duration {
	if w.SendTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(w.SendTimeoutSeconds) * time.Second
}

// MediaTimeout returns the attachment fetch timeout.
func (w WhatsAppConfig) MediaTimeout() time.Duration {
	if w.MediaTimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(w.MediaTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
