package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	API         APIConfig
	Credentials CredentialsConfig
	Redis       RedisConfig
	Upload      UploadConfig
	Validator   ValidatorConfig
	App         AppConfig
}

type ServerConfig struct {
	Port               string
	CORSAllowedOrigins []string
	RefreshSchedule    string
}

type APIConfig struct {
	BaseURL        string
	Timeout        time.Duration
	UploadTimeout  time.Duration
	RequestsPerSec float64
	Burst          int
}

type CredentialsConfig struct {
	Backend string // file, redis or memory
	File    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type UploadConfig struct {
	ProgressInterval time.Duration
	MessageTTL       time.Duration
}

type ValidatorConfig struct {
	BaseURL string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

const (
	DefaultAPIBaseURL       = "http://localhost:5000/api/faculty"
	DefaultValidatorBaseURL = "https://idea-catalyst.netlify.app/"

	CredentialBackendFile   = "file"
	CredentialBackendRedis  = "redis"
	CredentialBackendMemory = "memory"
)

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			RefreshSchedule:    getEnv("REFRESH_SCHEDULE", ""),
		},
		API: APIConfig{
			BaseURL:        strings.TrimRight(getEnv("PORTAL_API_BASE_URL", DefaultAPIBaseURL), "/"),
			Timeout:        getEnvAsDuration("PORTAL_API_TIMEOUT", 30*time.Second),
			UploadTimeout:  getEnvAsDuration("PORTAL_API_UPLOAD_TIMEOUT", 2*time.Minute),
			RequestsPerSec: getEnvAsFloat("PORTAL_API_RPS", 5),
			Burst:          getEnvAsInt("PORTAL_API_BURST", 10),
		},
		Credentials: CredentialsConfig{
			Backend: strings.ToLower(getEnv("CREDENTIAL_STORE", CredentialBackendFile)),
			File:    getEnv("CREDENTIAL_FILE", defaultCredentialFile()),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Upload: UploadConfig{
			ProgressInterval: getEnvAsDuration("UPLOAD_PROGRESS_INTERVAL", 500*time.Millisecond),
			MessageTTL:       getEnvAsDuration("UPLOAD_MESSAGE_TTL", 5*time.Second),
		},
		Validator: ValidatorConfig{
			BaseURL: getEnv("VALIDATOR_BASE_URL", DefaultValidatorBaseURL),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.API.BaseURL == "" {
		return fmt.Errorf("PORTAL_API_BASE_URL is required")
	}

	switch c.Credentials.Backend {
	case CredentialBackendFile:
		if c.Credentials.File == "" {
			return fmt.Errorf("CREDENTIAL_FILE is required for the file credential store")
		}
	case CredentialBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis credential store")
		}
	case CredentialBackendMemory:
	default:
		return fmt.Errorf("CREDENTIAL_STORE must be one of file, redis, memory (got %q)", c.Credentials.Backend)
	}

	if c.Validator.BaseURL == "" {
		return fmt.Errorf("VALIDATOR_BASE_URL is required")
	}

	if c.Upload.ProgressInterval <= 0 {
		return fmt.Errorf("UPLOAD_PROGRESS_INTERVAL must be positive")
	}

	return nil
}

func defaultCredentialFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".portal-credentials.json"
	}
	return dir + string(os.PathSeparator) + "project-portal" + string(os.PathSeparator) + "credentials.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid number for %s, using default: %g", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
