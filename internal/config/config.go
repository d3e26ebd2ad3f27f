package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coco-labs/coco/internal/session"
)

// EnvPrefix is the namespace prefix for all COCO environment variables.
const EnvPrefix = "COCO_"

// Config holds all application configuration. Secrets (API keys) are loaded
// exclusively from environment variables and never appear in the config
// file.
type Config struct {
	Addr string `yaml:"addr"`

	PollInterval       string `yaml:"poll_interval"`
	MinBufferBytes     int    `yaml:"min_buffer_bytes"`
	SuggestionInterval string `yaml:"suggestion_interval"`
	MinHistory         int    `yaml:"min_history"`
	HistoryWindow      int    `yaml:"history_window"`
	SampleRate         int    `yaml:"sample_rate"`

	TranscriptionProvider string `yaml:"transcription_provider"`
	TranscriptionModel    string `yaml:"transcription_model"`
	SuggestionModel       string `yaml:"suggestion_model"`
	AnalysisModel         string `yaml:"analysis_model"`
	SpeechModel           string `yaml:"speech_model"`
	SpeechVoice           string `yaml:"speech_voice"`

	// Secrets — env vars only, never serialized to YAML.
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
	DeepgramAPIKey  string `yaml:"-"`
}

func defaults() Config {
	return Config{
		Addr:                  ":8000",
		PollInterval:          "3s",
		MinBufferBytes:        session.DefaultMinBufferBytes,
		SuggestionInterval:    "8s",
		MinHistory:            session.DefaultMinHistory,
		HistoryWindow:         session.DefaultHistoryWindow,
		SampleRate:            16000,
		TranscriptionProvider: "openai",
		TranscriptionModel:    "gpt-4o-mini-transcribe",
		SuggestionModel:       "openai/gpt-4o-mini",
		AnalysisModel:         "openai/gpt-4o-mini",
		SpeechModel:           "tts-1",
		SpeechVoice:           "alloy",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the result.
// It returns the config, any validation warnings, and an error if the file
// exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// Policy converts the cadence settings into the session policy, falling
// back to defaults for invalid durations.
func (c *Config) Policy() session.CadencePolicy {
	p := session.DefaultPolicy()
	if d, err := time.ParseDuration(c.PollInterval); err == nil && d > 0 {
		p.PollInterval = d
	}
	if d, err := time.ParseDuration(c.SuggestionInterval); err == nil && d > 0 {
		p.SuggestionInterval = d
	}
	if c.MinBufferBytes > 0 {
		p.MinBufferBytes = c.MinBufferBytes
	}
	if c.MinHistory > 0 {
		p.MinHistory = c.MinHistory
	}
	if c.HistoryWindow > 0 {
		p.HistoryWindow = c.HistoryWindow
	}
	return p
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvPrefix + "POLL_INTERVAL"); v != "" {
		cfg.PollInterval = v
	}
	if v := os.Getenv(EnvPrefix + "MIN_BUFFER_BYTES"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.MinBufferBytes = n
		}
	}
	if v := os.Getenv(EnvPrefix + "SUGGESTION_INTERVAL"); v != "" {
		cfg.SuggestionInterval = v
	}
	if v := os.Getenv(EnvPrefix + "SAMPLE_RATE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			cfg.SampleRate = n
		}
	}
	if v := os.Getenv(EnvPrefix + "TRANSCRIPTION_PROVIDER"); v != "" {
		cfg.TranscriptionProvider = v
	}
	if v := os.Getenv(EnvPrefix + "TRANSCRIPTION_MODEL"); v != "" {
		cfg.TranscriptionModel = v
	}
	if v := os.Getenv(EnvPrefix + "SUGGESTION_MODEL"); v != "" {
		cfg.SuggestionModel = v
	}
	if v := os.Getenv(EnvPrefix + "ANALYSIS_MODEL"); v != "" {
		cfg.AnalysisModel = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_MODEL"); v != "" {
		cfg.SpeechModel = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_VOICE"); v != "" {
		cfg.SpeechVoice = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.OpenAIAPIKey = os.Getenv(EnvPrefix + "OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv(EnvPrefix + "ANTHROPIC_API_KEY")
	cfg.GeminiAPIKey = os.Getenv(EnvPrefix + "GEMINI_API_KEY")
	cfg.DeepgramAPIKey = os.Getenv(EnvPrefix + "DEEPGRAM_API_KEY")
}

func validate(cfg *Config) []string {
	var warnings []string

	switch cfg.TranscriptionProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			warnings = append(warnings, "OpenAI API key not configured — transcription, coaching and analysis are disabled. Set "+EnvPrefix+"OPENAI_API_KEY.")
		}
	case "deepgram":
		if cfg.DeepgramAPIKey == "" {
			warnings = append(warnings, "Deepgram API key not configured — transcription is disabled. Set "+EnvPrefix+"DEEPGRAM_API_KEY.")
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown transcription_provider %q — using openai.", cfg.TranscriptionProvider))
		cfg.TranscriptionProvider = "openai"
	}

	if _, err := time.ParseDuration(cfg.PollInterval); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid poll_interval %q — using default 3s.", cfg.PollInterval))
	}
	if _, err := time.ParseDuration(cfg.SuggestionInterval); err != nil {
		warnings = append(warnings, fmt.Sprintf("Invalid suggestion_interval %q — using default 8s.", cfg.SuggestionInterval))
	}

	return warnings
}
