package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable FromEnv reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "FIGDOC_API_KEY", "ALLOWED_ORIGINS", "FIGMA_API_URL", "FIGMA_TIMEOUT",
		"ENHANCE_PROVIDER", "GROQ_API_KEY", "GROQ_MODEL", "GROQ_BASE_URL", "GEMINI_API_KEY", "GEMINI_MODEL",
		"ENHANCE_CONCURRENCY", "ENHANCE_CALL_TIMEOUT", "ENHANCE_MAX_ATTEMPTS", "GENERATE_TIMEOUT",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "JOB_TTL", "JOB_CACHE_SIZE", "MAX_UPLOAD_BYTES",
		"OUTPUT_FORMAT", "OUTPUT_DIR", "OUTPUT_S3_ENDPOINT", "OUTPUT_S3_REGION", "OUTPUT_S3_ACCESS_KEY",
		"OUTPUT_S3_SECRET_KEY", "OUTPUT_S3_BUCKET", "OUTPUT_S3_PREFIX", "OUTPUT_S3_USE_SSL",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	cfg := FromEnv()

	if cfg.Port != "8090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.Provider != "groq" || cfg.GroqModel != "llama-3.3-70b-versatile" || cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("unexpected provider defaults: %+v", cfg)
	}
	if cfg.EnhanceConcurrency != 4 || cfg.EnhanceCallTimeout != 45*time.Second || cfg.EnhanceMaxAttempts != 2 {
		t.Errorf("unexpected enhance defaults: %d %s %d", cfg.EnhanceConcurrency, cfg.EnhanceCallTimeout, cfg.EnhanceMaxAttempts)
	}
	if cfg.GenerateTimeout != 5*time.Minute || cfg.JobTTL != time.Hour || cfg.JobCacheSize != 512 {
		t.Errorf("unexpected timeouts: %s %s %d", cfg.GenerateTimeout, cfg.JobTTL, cfg.JobCacheSize)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("max upload = %d", cfg.MaxUploadBytes)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "http://localhost:3000" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.S3.Enabled() {
		t.Error("s3 should be disabled without an endpoint")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
	if cfg.Credential() != "" {
		t.Error("no key configured, credential should be empty")
	}
}

func TestFromEnv_ClampsAndParses(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENHANCE_CONCURRENCY", "99")
	t.Setenv("ENHANCE_MAX_ATTEMPTS", "-1")
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ENHANCE_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("OUTPUT_S3_USE_SSL", "true")

	cfg := FromEnv()
	if cfg.EnhanceConcurrency != 16 {
		t.Errorf("concurrency should clamp to 16, got %d", cfg.EnhanceConcurrency)
	}
	if cfg.EnhanceMaxAttempts != 2 {
		t.Errorf("non-positive attempts should fall back to 2, got %d", cfg.EnhanceMaxAttempts)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("unparseable worker count should fall back to 2, got %d", cfg.WorkerCount)
	}
	if strings.Join(cfg.AllowedOrigins, "|") != "https://a.example|https://b.example" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.Provider != "gemini" || cfg.Credential() != "g-key" {
		t.Errorf("provider %q credential %q", cfg.Provider, cfg.Credential())
	}
	if !cfg.S3.UseSSL {
		t.Error("expected UseSSL")
	}
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	base := FromEnv()

	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad provider", func(c *Config) { c.Provider = "openai" }, "ENHANCE_PROVIDER"},
		{"bad format", func(c *Config) { c.OutputFormat = "pdf" }, "OUTPUT_FORMAT"},
		{"timeout order", func(c *Config) { c.GenerateTimeout = time.Second }, "GENERATE_TIMEOUT"},
		{"s3 without keys", func(c *Config) { c.S3.Endpoint = "minio:9000" }, "OUTPUT_S3_ACCESS_KEY"},
		{"no output", func(c *Config) { c.OutputDir = "" }, "OUTPUT_DIR"},
	}
	for _, tc := range cases {
		cfg := base
		tc.mutate(&cfg)
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: expected error mentioning %s, got %v", tc.name, tc.want, err)
		}
	}

	off := base
	off.Provider = "off"
	off.GroqAPIKey = "set-but-ignored"
	if off.Credential() != "" {
		t.Error("provider off must yield an empty credential")
	}
}
