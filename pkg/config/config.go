package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Recorder RecorderConfig
	Groq     GroqConfig
	Tracker  TrackerConfig
	Vault    VaultConfig
	Storage  StorageConfig
	JWT      JWTConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	Host            string   `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string   `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout int      `envconfig:"SHUTDOWN_TIMEOUT" default:"10"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"meeting_recorder"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"25"`
	MinConns int    `envconfig:"DB_MIN_CONNS" default:"5"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	// Live transcript snapshots expire after this TTL
	SnapshotTTL time.Duration `envconfig:"REDIS_SNAPSHOT_TTL" default:"6h"`
}

// RecorderConfig holds recording bot provider configuration
type RecorderConfig struct {
	BaseURL       string `envconfig:"RECORDER_BASE_URL" default:"https://api.recorder.example.com"`
	APIKey        string `envconfig:"RECORDER_API_KEY"`
	WebhookSecret string `envconfig:"RECORDER_WEBHOOK_SECRET"`
	// Sandbox swaps the real provider for an in-process one
	Sandbox bool `envconfig:"RECORDER_SANDBOX" default:"false"`
}

// GroqConfig holds the LLM provider configuration
type GroqConfig struct {
	APIKey  string `envconfig:"GROQ_API_KEY"`
	BaseURL string `envconfig:"GROQ_API_URL" default:"https://api.groq.com"`
	Model   string `envconfig:"GROQ_MODEL" default:"llama-3.3-70b-versatile"`
}

// TrackerConfig holds issue tracker configuration
type TrackerConfig struct {
	BaseURL           string `envconfig:"TRACKER_BASE_URL"`
	ClientID          string `envconfig:"TRACKER_CLIENT_ID"`
	ClientSecret      string `envconfig:"TRACKER_CLIENT_SECRET"`
	AuthURL           string `envconfig:"TRACKER_AUTH_URL"`
	TokenURL          string `envconfig:"TRACKER_TOKEN_URL"`
	RedirectURL       string `envconfig:"TRACKER_REDIRECT_URL"`
	DefaultProjectKey string `envconfig:"TRACKER_DEFAULT_PROJECT"`
}

// VaultConfig holds token encryption configuration
type VaultConfig struct {
	EncryptionKey string `envconfig:"VAULT_ENCRYPTION_KEY"`
	// Refresh this far before the recorded expiry
	RefreshMargin time.Duration `envconfig:"VAULT_REFRESH_MARGIN" default:"2m"`
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Endpoint        string `envconfig:"STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string `envconfig:"STORAGE_ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string `envconfig:"STORAGE_SECRET_KEY" default:"minioadmin"`
	BucketName      string `envconfig:"STORAGE_BUCKET" default:"meeting-recorder"`
	UseSSL          bool   `envconfig:"STORAGE_USE_SSL" default:"false"`
}

// JWTConfig holds operator token verification configuration
type JWTConfig struct {
	Secret string        `envconfig:"JWT_SECRET"`
	Issuer string        `envconfig:"JWT_ISSUER" default:"meeting-recorder"`
	Leeway time.Duration `envconfig:"JWT_LEEWAY" default:"30s"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Recorder.WebhookSecret == "" {
		return fmt.Errorf("RECORDER_WEBHOOK_SECRET is required")
	}
	if c.Vault.EncryptionKey == "" {
		return fmt.Errorf("VAULT_ENCRYPTION_KEY is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if !c.Recorder.Sandbox && c.Recorder.APIKey == "" {
		return fmt.Errorf("RECORDER_API_KEY is required when sandbox mode is off")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
