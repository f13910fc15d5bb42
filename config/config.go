package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Vision        VisionConfig        `mapstructure:"vision"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Database      DatabaseConfig      `mapstructure:"database"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxImageBytes  int      `mapstructure:"max_image_bytes"`
}

// VisionConfig holds the multimodal model configuration
type VisionConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	BaseURL   string        `mapstructure:"base_url"`
	Model     string        `mapstructure:"model"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxTokens int           `mapstructure:"max_tokens"`
}

// OpenFoodFactsConfig holds composition database configuration
type OpenFoodFactsConfig struct {
	BaseURL           string `mapstructure:"base_url"`
	Locale            string `mapstructure:"locale"`
	UserAgent         string `mapstructure:"user_agent"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute"`
}

// CacheConfig holds product cache configuration
type CacheConfig struct {
	TTL         time.Duration `mapstructure:"ttl"`
	NegativeTTL time.Duration `mapstructure:"negative_ttl"`
}

// StorageConfig holds image storage configuration
type StorageConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Region          string        `mapstructure:"region"`
	Bucket          string        `mapstructure:"bucket"`
	Endpoint        string        `mapstructure:"endpoint"`
	PublicBaseURL   string        `mapstructure:"public_base_url"`
	SignedURLTTL    time.Duration `mapstructure:"signed_url_ttl"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
}

// DatabaseConfig holds meal entry store configuration
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "postgres" or "sqlite"
	DSN    string `mapstructure:"dsn"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/platelens/")

	// PLATELENS_VISION_API_KEY -> vision.api_key
	v.SetEnvPrefix("PLATELENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env when present without overriding the environment
func loadEnvFile() error {
	err := godotenv.Load()
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// setDefaults registers every key so AutomaticEnv can resolve nested values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"capacitor://*", "http://localhost:*"})
	v.SetDefault("server.max_image_bytes", 10<<20)

	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "")
	v.SetDefault("vision.model", "gpt-4o-mini")
	v.SetDefault("vision.timeout", "60s")
	v.SetDefault("vision.max_tokens", 1200)

	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.locale", "es")
	v.SetDefault("openfoodfacts.user_agent", "PlateLens/1.0 (food photo analysis)")
	v.SetDefault("openfoodfacts.requests_per_minute", 60)

	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.negative_ttl", "1h")

	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.bucket", "meal-images")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.public_base_url", "")
	v.SetDefault("storage.signed_url_ttl", "168h")
	v.SetDefault("storage.access_key_id", "")
	v.SetDefault("storage.secret_access_key", "")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.dsn", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Vision.APIKey == "" {
		return fmt.Errorf("vision API key is required (set PLATELENS_VISION_API_KEY)")
	}

	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return fmt.Errorf("database driver must be 'postgres' or 'sqlite', got: %s", config.Database.Driver)
	}

	if config.Database.DSN == "" {
		return fmt.Errorf("database DSN is required (set PLATELENS_DATABASE_DSN)")
	}

	if config.Storage.Enabled && config.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required when storage is enabled")
	}

	if config.Server.MaxImageBytes <= 0 {
		return fmt.Errorf("server max_image_bytes must be positive, got: %d", config.Server.MaxImageBytes)
	}

	return nil
}
