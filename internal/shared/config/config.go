package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"smartmail-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string   `envconfig:"PORT" default:"8080"`
	CORSAllowOrigin []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:5173"`
	Env             string   `envconfig:"ENV" default:"dev"`
	HistoryStore    string   `envconfig:"HISTORY_STORE" default:"sqlite"`
	SQLitePath      string   `envconfig:"SQLITE_PATH" default:"smartmail.db"`
	DatabaseURL     string   `envconfig:"DATABASE_URL"`
	RedisURL        string   `envconfig:"REDIS_URL"`
	HistoryLimit    int      `envconfig:"HISTORY_LIMIT" default:"50"`

	RateLimit RateLimitConfig
	LLM       LLMConfig
}

// RateLimitConfig sets token bucket rules per route group.
type RateLimitConfig struct {
	GenerateRate  float64 `envconfig:"RATE_LIMIT_GENERATE_RATE" default:"0.5"`
	GenerateBurst int     `envconfig:"RATE_LIMIT_GENERATE_BURST" default:"5"`
	DefaultRate   float64 `envconfig:"RATE_LIMIT_DEFAULT_RATE" default:"5"`
	DefaultBurst  int     `envconfig:"RATE_LIMIT_DEFAULT_BURST" default:"20"`
}

// LLMConfig lists the generation providers and their credentials. Providers
// whose credentials are missing are skipped; the local generator always runs last.
type LLMConfig struct {
	Providers      []string      `envconfig:"LLM_PROVIDERS" default:"groq,openai,gemini"`
	AttemptTimeout time.Duration `envconfig:"LLM_ATTEMPT_TIMEOUT" default:"8s"`
	Temperature    float32       `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	MaxTokens      int           `envconfig:"LLM_MAX_TOKENS" default:"1500"`

	GroqAPIKey  string `envconfig:"GROQ_API_KEY"`
	GroqModel   string `envconfig:"GROQ_MODEL" default:"openai/gpt-oss-120b"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		telemetry.Error("config.load_failed", map[string]any{"error": err.Error()})
	}
	return Normalize(cfg)
}

// Normalize fills defaults and canonicalizes enumerated values. Callers that
// build a Config by hand (tests, tools) should pass it through Normalize.
func Normalize(cfg Config) Config {
	cfg.Env = normalizeEnv(cfg.Env)
	cfg.HistoryStore = normalizeHistoryStore(cfg.HistoryStore)
	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = "8080"
	}
	cfg.CORSAllowOrigin = splitAndTrim(strings.Join(cfg.CORSAllowOrigin, ","))
	cfg.LLM.Providers = splitAndTrim(strings.ToLower(strings.Join(cfg.LLM.Providers, ",")))
	if cfg.LLM.AttemptTimeout <= 0 {
		cfg.LLM.AttemptTimeout = 8 * time.Second
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 50
	}
	if cfg.HistoryStore == "postgres" && strings.TrimSpace(cfg.DatabaseURL) == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"history_store": cfg.HistoryStore})
	}
	return cfg
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeHistoryStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "memory", "mem":
		return "memory"
	default:
		return "sqlite"
	}
}
