package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	LLMProviderBedrock   = "bedrock"
	LLMProviderAnthropic = "anthropic"
	LLMProviderOpenAI    = "openai"
)

// Config holds all application configuration
type Config struct {
	AWS    AWSConfig    `yaml:"aws"`
	OCR    OCRConfig    `yaml:"ocr"`
	Intake IntakeConfig `yaml:"intake"`
	LLM    LLMConfig    `yaml:"llm"`
	Cache  CacheConfig  `yaml:"cache"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// AWSConfig holds credentials and the shared bucket.
type AWSConfig struct {
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token"`
	Endpoint        string `yaml:"endpoint"` // optional, e.g. localstack
	Bucket          string `yaml:"bucket"`
}

// OCRConfig holds async text detection settings.
type OCRConfig struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	MaxAttempts      int           `yaml:"max_attempts"`
	JobTimeout       time.Duration `yaml:"job_timeout"`
	FallbackMaxBytes int64         `yaml:"fallback_max_bytes"`
}

// IntakeConfig holds upload validation limits.
type IntakeConfig struct {
	MaxFileBytes      int64    `yaml:"max_file_bytes"`
	AllowedExtensions []string `yaml:"allowed_extensions"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider       string        `yaml:"provider"`
	ModelID        string        `yaml:"model_id"`
	MaxTokens      int           `yaml:"max_tokens"`
	Temperature    float32       `yaml:"temperature"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxPromptChars int           `yaml:"max_prompt_chars"`
	APIKey         string        `yaml:"api_key"`
}

// CacheConfig enables the optional Redis analysis cache when Addr is set.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

// LogConfig selects level (debug|info|warn|error) and format (json|text).
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		AWS: AWSConfig{
			Region: "us-east-1",
		},
		OCR: OCRConfig{
			PollInterval:     3 * time.Second,
			MaxAttempts:      100,
			JobTimeout:       5 * time.Minute,
			FallbackMaxBytes: 5 << 20,
		},
		Intake: IntakeConfig{
			MaxFileBytes: 50 << 20,
			AllowedExtensions: []string{
				"pdf", "txt", "doc", "docx", "png", "jpg", "jpeg", "gif", "bmp", "tiff",
			},
		},
		LLM: LLMConfig{
			Provider:       LLMProviderBedrock,
			ModelID:        "anthropic.claude-3-sonnet-20240229-v1:0",
			MaxTokens:      2000,
			Timeout:        60 * time.Second,
			MaxPromptChars: 50000,
		},
		Cache: CacheConfig{
			TTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			HTTPAddr: ":8080",
			GRPCAddr: ":9090",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads defaults, then the optional YAML file, then .env and the
// process environment. Later sources win.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.AWS.Region = getEnv("AWS_REGION", c.AWS.Region)
	c.AWS.AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", c.AWS.AccessKeyID)
	c.AWS.SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", c.AWS.SecretAccessKey)
	c.AWS.SessionToken = getEnv("AWS_SESSION_TOKEN", c.AWS.SessionToken)
	c.AWS.Endpoint = getEnv("AWS_ENDPOINT_URL", c.AWS.Endpoint)
	c.AWS.Bucket = getEnv("S3_BUCKET", c.AWS.Bucket)

	c.OCR.PollInterval = getEnvAsDuration("OCR_POLL_INTERVAL", c.OCR.PollInterval)
	c.OCR.MaxAttempts = getEnvAsInt("OCR_MAX_ATTEMPTS", c.OCR.MaxAttempts)
	c.OCR.JobTimeout = getEnvAsDuration("OCR_JOB_TIMEOUT", c.OCR.JobTimeout)
	c.OCR.FallbackMaxBytes = getEnvAsInt64("OCR_FALLBACK_MAX_BYTES", c.OCR.FallbackMaxBytes)

	c.Intake.MaxFileBytes = getEnvAsInt64("INTAKE_MAX_FILE_BYTES", c.Intake.MaxFileBytes)
	c.Intake.AllowedExtensions = getEnvAsList("INTAKE_ALLOWED_EXTENSIONS", c.Intake.AllowedExtensions)

	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.ModelID = getEnv("LLM_MODEL_ID", c.LLM.ModelID)
	c.LLM.MaxTokens = getEnvAsInt("LLM_MAX_TOKENS", c.LLM.MaxTokens)
	c.LLM.Temperature = getEnvAsFloat32("LLM_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	c.LLM.MaxPromptChars = getEnvAsInt("LLM_MAX_PROMPT_CHARS", c.LLM.MaxPromptChars)
	switch c.LLM.Provider {
	case LLMProviderAnthropic:
		c.LLM.APIKey = getEnv("ANTHROPIC_API_KEY", c.LLM.APIKey)
	case LLMProviderOpenAI:
		c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	}

	c.Cache.Addr = getEnv("REDIS_ADDR", c.Cache.Addr)
	c.Cache.Password = getEnv("REDIS_PASSWORD", c.Cache.Password)
	c.Cache.DB = getEnvAsInt("REDIS_DB", c.Cache.DB)
	c.Cache.TTL = getEnvAsDuration("CACHE_TTL", c.Cache.TTL)

	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AWS.Region) == "" {
		return ConfigError("AWS_REGION is required")
	}
	if strings.TrimSpace(c.AWS.Bucket) == "" {
		return ConfigError("S3_BUCKET is required")
	}
	if c.Intake.MaxFileBytes <= 0 {
		return ConfigError("INTAKE_MAX_FILE_BYTES must be positive")
	}
	if c.OCR.FallbackMaxBytes <= 0 {
		return ConfigError("OCR_FALLBACK_MAX_BYTES must be positive")
	}
	if c.OCR.PollInterval <= 0 {
		return ConfigError("OCR_POLL_INTERVAL must be positive")
	}
	if c.OCR.MaxAttempts <= 0 {
		return ConfigError("OCR_MAX_ATTEMPTS must be positive")
	}
	if c.OCR.JobTimeout > 0 && c.OCR.PollInterval >= c.OCR.JobTimeout {
		return ConfigError("OCR_POLL_INTERVAL must be shorter than OCR_JOB_TIMEOUT")
	}
	if len(c.Intake.AllowedExtensions) == 0 {
		return ConfigError("INTAKE_ALLOWED_EXTENSIONS must not be empty")
	}
	if c.LLM.MaxTokens <= 0 {
		return ConfigError("LLM_MAX_TOKENS must be positive")
	}
	switch c.LLM.Provider {
	case LLMProviderBedrock:
	case LLMProviderAnthropic, LLMProviderOpenAI:
		if c.LLM.APIKey == "" {
			return ConfigError(fmt.Sprintf("an API key is required for LLM_PROVIDER=%s", c.LLM.Provider))
		}
	default:
		return ConfigError(fmt.Sprintf("unknown LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.ModelID == "" {
		return ConfigError("LLM_MODEL_ID is required")
	}
	return nil
}
