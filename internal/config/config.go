package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Zitadel   ZitadelConfig
	Gateway   GatewayConfig
	Store     StoreConfig
	Storage   StorageConfig
	R2        R2Config
	Minio     MinioConfig
	OpenAI    OpenAIConfig
	Groq      GroqConfig
	AWS       AWSConfig
	Notify    NotifyConfig
	Pipeline  PipelineConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

// IsDevelopment reports whether the server runs outside production.
func (s ServerConfig) IsDevelopment() bool {
	return !strings.EqualFold(s.Env, "production")
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	IntakePerHour int
	ReadPerMin    int
}

type ZitadelConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type GatewayConfig struct {
	Enabled bool
}

// StoreConfig selects the case store: memory, redis or postgres.
type StoreConfig struct {
	Driver      string
	PostgresDSN string
}

// StorageConfig selects the object store: r2, minio or memory.
type StorageConfig struct {
	Driver    string
	PublicURL string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// OpenAIConfig configures speech-to-text.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// GroqConfig configures document generation over Groq's OpenAI-compatible API.
type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type NotifyConfig struct {
	Enabled     bool
	FromAddress string
	SenderID    string
}

type PipelineConfig struct {
	Async             bool
	StageTimeout      time.Duration
	MaxRetries        int
	RetryInitial      time.Duration
	RetryMaxInterval  time.Duration
	PollInterval      time.Duration
	WorkerConcurrency int
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("JWT_SECRET")
	readSecret("POSTGRES_DSN")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("MINIO_SECRET_KEY")
	readSecret("OPENAI_API_KEY")
	readSecret("GROQ_API_KEY")
	readSecret("AWS_SECRET_ACCESS_KEY")
	readSecret("ZITADEL_CLIENT_ID")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variables
	v.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.env", "SERVER_ENV")
	_ = v.BindEnv("server.log_level", "LOG_LEVEL")
	_ = v.BindEnv("server.api_domain", "API_DOMAIN")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("redis.db", "REDIS_DB")
	_ = v.BindEnv("jwt.secret", "JWT_SECRET")
	_ = v.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = v.BindEnv("ratelimit.intake_per_hour", "RATELIMIT_INTAKE_PER_HOUR")
	_ = v.BindEnv("ratelimit.read_per_min", "RATELIMIT_READ_PER_MIN")
	_ = v.BindEnv("zitadel.domain", "ZITADEL_DOMAIN")
	_ = v.BindEnv("zitadel.client_id", "ZITADEL_CLIENT_ID")
	_ = v.BindEnv("zitadel.issuer", "ZITADEL_ISSUER")
	_ = v.BindEnv("gateway.enabled", "GATEWAY_ENABLED")
	_ = v.BindEnv("store.driver", "STORE_DRIVER")
	_ = v.BindEnv("store.postgres_dsn", "POSTGRES_DSN")
	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	_ = v.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = v.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = v.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = v.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = v.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = v.BindEnv("minio.endpoint", "MINIO_ENDPOINT")
	_ = v.BindEnv("minio.access_key", "MINIO_ACCESS_KEY")
	_ = v.BindEnv("minio.secret_key", "MINIO_SECRET_KEY")
	_ = v.BindEnv("minio.bucket", "MINIO_BUCKET")
	_ = v.BindEnv("minio.use_ssl", "MINIO_USE_SSL")
	_ = v.BindEnv("minio.public_url", "MINIO_PUBLIC_URL")
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("openai.model", "OPENAI_TRANSCRIBE_MODEL")
	_ = v.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = v.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = v.BindEnv("groq.model", "GROQ_MODEL")
	_ = v.BindEnv("aws.region", "AWS_REGION")
	_ = v.BindEnv("aws.access_key_id", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("notify.enabled", "NOTIFY_ENABLED")
	_ = v.BindEnv("notify.from_address", "NOTIFY_FROM_ADDRESS")
	_ = v.BindEnv("notify.sender_id", "NOTIFY_SMS_SENDER_ID")
	_ = v.BindEnv("pipeline.async", "PIPELINE_ASYNC")
	_ = v.BindEnv("pipeline.stage_timeout", "PIPELINE_STAGE_TIMEOUT")
	_ = v.BindEnv("pipeline.max_retries", "PIPELINE_MAX_RETRIES")
	_ = v.BindEnv("pipeline.retry_initial", "PIPELINE_RETRY_INITIAL")
	_ = v.BindEnv("pipeline.retry_max_interval", "PIPELINE_RETRY_MAX_INTERVAL")
	_ = v.BindEnv("pipeline.poll_interval", "PIPELINE_POLL_INTERVAL")
	_ = v.BindEnv("pipeline.worker_concurrency", "PIPELINE_WORKER_CONCURRENCY")

	setDefaults(v)

	// Try to read config file (optional)
	_ = v.ReadInConfig()

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.env", "development")
	v.SetDefault("server.log_level", "info")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiration", 24)
	v.SetDefault("ratelimit.intake_per_hour", 20)
	v.SetDefault("ratelimit.read_per_min", 120)
	v.SetDefault("gateway.enabled", false)

	// Store and storage defaults
	v.SetDefault("store.driver", "memory")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.public_url", "http://localhost:8000/files")
	v.SetDefault("minio.bucket", "legal-documents")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("r2.bucket_name", "legal-documents")

	// Collaborator defaults
	v.SetDefault("openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("openai.model", "whisper-1")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.from_address", "no-reply@legalvoice.ai")
	v.SetDefault("notify.sender_id", "LegalVoice")

	// Pipeline defaults
	v.SetDefault("pipeline.async", true)
	v.SetDefault("pipeline.stage_timeout", 2*time.Minute)
	v.SetDefault("pipeline.max_retries", 3)
	v.SetDefault("pipeline.retry_initial", 500*time.Millisecond)
	v.SetDefault("pipeline.retry_max_interval", 10*time.Second)
	v.SetDefault("pipeline.poll_interval", 2*time.Second)
	v.SetDefault("pipeline.worker_concurrency", 10)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:      v.GetString("server.port"),
			Env:       v.GetString("server.env"),
			LogLevel:  v.GetString("server.log_level"),
			ApiDomain: v.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			IntakePerHour: v.GetInt("ratelimit.intake_per_hour"),
			ReadPerMin:    v.GetInt("ratelimit.read_per_min"),
		},
		Zitadel: ZitadelConfig{
			Domain:   v.GetString("zitadel.domain"),
			ClientID: v.GetString("zitadel.client_id"),
			Issuer:   v.GetString("zitadel.issuer"),
		},
		Gateway: GatewayConfig{
			Enabled: v.GetBool("gateway.enabled"),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(v.GetString("store.driver")),
			PostgresDSN: v.GetString("store.postgres_dsn"),
		},
		Storage: StorageConfig{
			Driver:    strings.ToLower(v.GetString("storage.driver")),
			PublicURL: v.GetString("storage.public_url"),
		},
		R2: R2Config{
			AccountID:       v.GetString("r2.account_id"),
			AccessKeyID:     v.GetString("r2.access_key_id"),
			SecretAccessKey: v.GetString("r2.secret_access_key"),
			BucketName:      v.GetString("r2.bucket_name"),
			PublicURL:       v.GetString("r2.public_url"),
		},
		Minio: MinioConfig{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access_key"),
			SecretKey: v.GetString("minio.secret_key"),
			Bucket:    v.GetString("minio.bucket"),
			UseSSL:    v.GetBool("minio.use_ssl"),
			PublicURL: v.GetString("minio.public_url"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  v.GetString("openai.api_key"),
			BaseURL: v.GetString("openai.base_url"),
			Model:   v.GetString("openai.model"),
		},
		Groq: GroqConfig{
			APIKey:  v.GetString("groq.api_key"),
			BaseURL: v.GetString("groq.base_url"),
			Model:   v.GetString("groq.model"),
		},
		AWS: AWSConfig{
			Region:          v.GetString("aws.region"),
			AccessKeyID:     v.GetString("aws.access_key_id"),
			SecretAccessKey: v.GetString("aws.secret_access_key"),
		},
		Notify: NotifyConfig{
			Enabled:     v.GetBool("notify.enabled"),
			FromAddress: v.GetString("notify.from_address"),
			SenderID:    v.GetString("notify.sender_id"),
		},
		Pipeline: PipelineConfig{
			Async:             v.GetBool("pipeline.async"),
			StageTimeout:      v.GetDuration("pipeline.stage_timeout"),
			MaxRetries:        v.GetInt("pipeline.max_retries"),
			RetryInitial:      v.GetDuration("pipeline.retry_initial"),
			RetryMaxInterval:  v.GetDuration("pipeline.retry_max_interval"),
			PollInterval:      v.GetDuration("pipeline.poll_interval"),
			WorkerConcurrency: v.GetInt("pipeline.worker_concurrency"),
		},
	}
}
