package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	// Auth
	APIKey         string
	AllowedOrigins []string

	// Figma fetcher
	FigmaAPIURL  string
	FigmaTimeout time.Duration

	// Enhancement
	Provider           string
	GroqAPIKey         string
	GroqModel          string
	GroqBaseURL        string
	GeminiAPIKey       string
	GeminiModel        string
	EnhanceConcurrency int
	EnhanceCallTimeout time.Duration
	EnhanceMaxAttempts int

	// End-to-end limit for one generation
	GenerateTimeout time.Duration

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL       time.Duration
	JobCacheSize int

	// Upload limits
	MaxUploadBytes int64

	// Output
	OutputFormat string
	OutputDir    string
	S3           S3
}

// S3 selects the object-store backend when Endpoint is set.
type S3 struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

func (s S3) Enabled() bool { return s.Endpoint != "" }

const maxEnhanceConcurrency = 16

// Load reads configuration from the environment, after applying an optional
// .env file in the working directory. Variables already set win over .env.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey:         os.Getenv("FIGDOC_API_KEY"),
		AllowedOrigins: envList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		FigmaAPIURL:  envOr("FIGMA_API_URL", "https://api.figma.com"),
		FigmaTimeout: envDuration("FIGMA_TIMEOUT", 30*time.Second),

		Provider:           strings.ToLower(envOr("ENHANCE_PROVIDER", "groq")),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqModel:          envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:        os.Getenv("GROQ_BASE_URL"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		GeminiModel:        envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		EnhanceConcurrency: envInt("ENHANCE_CONCURRENCY", 4),
		EnhanceCallTimeout: envDuration("ENHANCE_CALL_TIMEOUT", 45*time.Second),
		EnhanceMaxAttempts: envInt("ENHANCE_MAX_ATTEMPTS", 2),

		GenerateTimeout: envDuration("GENERATE_TIMEOUT", 5*time.Minute),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),
		JobCacheSize: envInt("JOB_CACHE_SIZE", 512),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 10485760), // 10MB

		OutputFormat: strings.ToLower(envOr("OUTPUT_FORMAT", "docx")),
		OutputDir:    envOr("OUTPUT_DIR", "generated_reports"),
		S3: S3{
			Endpoint:  strings.TrimSpace(os.Getenv("OUTPUT_S3_ENDPOINT")),
			Region:    envOr("OUTPUT_S3_REGION", "us-east-1"),
			AccessKey: os.Getenv("OUTPUT_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("OUTPUT_S3_SECRET_KEY"),
			Bucket:    envOr("OUTPUT_S3_BUCKET", "figdoc-reports"),
			Prefix:    os.Getenv("OUTPUT_S3_PREFIX"),
			UseSSL:    envBool("OUTPUT_S3_USE_SSL", false),
		},
	}

	if cfg.EnhanceConcurrency <= 0 {
		cfg.EnhanceConcurrency = 4
	}
	if cfg.EnhanceConcurrency > maxEnhanceConcurrency {
		cfg.EnhanceConcurrency = maxEnhanceConcurrency
	}
	if cfg.EnhanceCallTimeout <= 0 {
		cfg.EnhanceCallTimeout = 45 * time.Second
	}
	if cfg.EnhanceMaxAttempts <= 0 {
		cfg.EnhanceMaxAttempts = 2
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 5 * time.Minute
	}
	if cfg.FigmaTimeout <= 0 {
		cfg.FigmaTimeout = 30 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.JobCacheSize <= 0 {
		cfg.JobCacheSize = 512
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10485760
	}

	return cfg
}

// Credential is the API key for the configured provider. Empty means
// reports are generated in basic mode.
func (c Config) Credential() string {
	switch c.Provider {
	case "groq":
		return c.GroqAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

func (c Config) Validate() error {
	switch c.Provider {
	case "groq", "gemini", "off":
	default:
		return fmt.Errorf("ENHANCE_PROVIDER must be groq, gemini, or off (got %q)", c.Provider)
	}
	switch c.OutputFormat {
	case "docx", "html", "markdown", "md", "yaml", "yml":
	default:
		return fmt.Errorf("OUTPUT_FORMAT %q is not supported", c.OutputFormat)
	}
	if c.GenerateTimeout < c.EnhanceCallTimeout {
		return fmt.Errorf("GENERATE_TIMEOUT (%s) must not be shorter than ENHANCE_CALL_TIMEOUT (%s)", c.GenerateTimeout, c.EnhanceCallTimeout)
	}
	if c.S3.Enabled() {
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return fmt.Errorf("OUTPUT_S3_ACCESS_KEY and OUTPUT_S3_SECRET_KEY are required when OUTPUT_S3_ENDPOINT is set")
		}
		if c.S3.Bucket == "" {
			return fmt.Errorf("OUTPUT_S3_BUCKET is required when OUTPUT_S3_ENDPOINT is set")
		}
	} else if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required without OUTPUT_S3_ENDPOINT")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
