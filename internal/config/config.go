// Package config loads and validates all environment variables at startup.
// Every other package receives typed values — nothing reads os.Getenv directly.
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

// Provider names accepted in LLM_PROVIDER.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderNvidia    = "nvidia"
)

// Config is the fully-parsed application configuration.
type Config struct {
	// ── Server ────────────────────────────────────────────────────────────────
	Port           string // default "8080"
	Env            string // "development" | "staging" | "production"
	MaxUploadBytes int64  // default 64 MiB per request

	// ── Pose estimation ───────────────────────────────────────────────────────
	PoseServiceURL string        // e.g. "http://pose-estimator:9090"
	PoseTimeout    time.Duration // default 120s

	// ── Insight provider ──────────────────────────────────────────────────────
	// LLMProvider selects the primary narrative provider. When a second
	// provider's API key is also set, it becomes the fallback.
	LLMProvider string // "anthropic" | "openai" | "nvidia", default "anthropic"

	AnthropicAPIKey string
	AnthropicModel  string // default "claude-3-5-sonnet-20241022"

	OpenAIAPIKey string
	OpenAIModel  string // default "gpt-4o"

	NvidiaAPIKey string
	NvidiaModel  string // default "meta/llama-3.1-70b-instruct"

	// ── Sampling ──────────────────────────────────────────────────────────────
	// Defaults follow the selected provider: NVIDIA runs streamed at
	// temperature 0.2 / top_p 0.7 / 2048 tokens, everything else unstreamed
	// at temperature 0.3 / 2000 tokens. Each value can be overridden with
	// the matching LLM_* variable.
	LLMTemperature float64
	LLMTopP        float64
	LLMMaxTokens   int
	LLMStream      bool

	// ── Batch pipeline ────────────────────────────────────────────────────────
	BatchConcurrency int // default 4
}

// Load reads all environment variables and returns a validated Config.
// It automatically loads a .env file from the working directory when present,
// so plain `go run ./cmd/api` works in development without any wrapper.
// Real environment variables always take precedence over .env values.
func Load() (*Config, error) {
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	c := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 64<<20)),

		PoseServiceURL: os.Getenv("POSE_SERVICE_URL"),
		PoseTimeout:    getEnvAsDuration("POSE_TIMEOUT", 120*time.Second),

		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", ProviderAnthropic)),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o"),
		NvidiaAPIKey:    os.Getenv("NVIDIA_API_KEY"),
		NvidiaModel:     getEnv("NVIDIA_MODEL", "meta/llama-3.1-70b-instruct"),

		BatchConcurrency: getEnvAsInt("BATCH_CONCURRENCY", 4),
	}

	// Provider-specific sampling presets, then per-value overrides.
	if c.LLMProvider == ProviderNvidia {
		c.LLMTemperature = getEnvAsFloat("LLM_TEMPERATURE", 0.2)
		c.LLMTopP = getEnvAsFloat("LLM_TOP_P", 0.7)
		c.LLMMaxTokens = getEnvAsInt("LLM_MAX_TOKENS", 2048)
		c.LLMStream = getEnvAsBool("LLM_STREAM", true)
	} else {
		c.LLMTemperature = getEnvAsFloat("LLM_TEMPERATURE", 0.3)
		c.LLMTopP = getEnvAsFloat("LLM_TOP_P", 0)
		c.LLMMaxTokens = getEnvAsInt("LLM_MAX_TOKENS", 2000)
		c.LLMStream = getEnvAsBool("LLM_STREAM", false)
	}

	return c, c.validate()
}

func (c *Config) validate() error {
	var errs []error

	if c.PoseServiceURL == "" {
		errs = append(errs, fmt.Errorf("missing required env var: POSE_SERVICE_URL"))
	}

	switch c.LLMProvider {
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			errs = append(errs, fmt.Errorf("LLM_PROVIDER is anthropic but ANTHROPIC_API_KEY is not set"))
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, fmt.Errorf("LLM_PROVIDER is openai but OPENAI_API_KEY is not set"))
		}
	case ProviderNvidia:
		if c.NvidiaAPIKey == "" {
			errs = append(errs, fmt.Errorf("LLM_PROVIDER is nvidia but NVIDIA_API_KEY is not set"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER: %q", c.LLMProvider))
	}

	return errors.Join(errs...)
}

// ─── HELPERS ─────────────────────────────────────────────────────────────────

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	// A plain integer is treated as seconds.
	if value, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(value) * time.Second
	}
	// Fall back to Go duration syntax: "30s", "5m", "1h", etc.
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
