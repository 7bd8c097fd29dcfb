package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"smartmail-backend/internal/shared/telemetry"
)

// ClientConfig configures the smartmail CLI.
type ClientConfig struct {
	Server          string        `envconfig:"SMARTMAIL_SERVER" default:"http://localhost:8080/api"`
	RequestTimeout  time.Duration `envconfig:"SMARTMAIL_TIMEOUT" default:"60s"`
	DeepgramAPIKey  string        `envconfig:"DEEPGRAM_API_KEY"`
	DeepgramModel   string        `envconfig:"DEEPGRAM_MODEL" default:"nova-3"`
	DeepgramURL     string        `envconfig:"DEEPGRAM_URL"`
	SpeechLanguage  string        `envconfig:"SPEECH_LANGUAGE" default:"en"`
	SampleRate      int           `envconfig:"SPEECH_SAMPLE_RATE" default:"16000"`
	NoSpeechTimeout time.Duration `envconfig:"SPEECH_NO_SPEECH_TIMEOUT" default:"8s"`
}

// LoadClient reads the CLI configuration from the environment and .env files.
func LoadClient() ClientConfig {
	loadEnvFiles(".env")

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		telemetry.Error("config.load_failed", map[string]any{"error": err.Error()})
	}
	cfg.Server = strings.TrimRight(strings.TrimSpace(cfg.Server), "/")
	if cfg.Server == "" {
		cfg.Server = "http://localhost:8080/api"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	return cfg
}
