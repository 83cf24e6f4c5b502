// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"github.com/parleyhq/parley/internal/provider"
	"github.com/parleyhq/parley/internal/speech"
	"github.com/parleyhq/parley/internal/store"
)

// Config represents the application configuration.
type Config struct {
	Defaults DefaultsConfig `yaml:"defaults"`
	Audio    AudioConfig    `yaml:"audio"`
	Storage  StorageConfig  `yaml:"storage"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Server   ServerConfig   `yaml:"server,omitempty"`
}

// DefaultsConfig holds default settings.
type DefaultsConfig struct {
	Style string `yaml:"style"`
}

// AudioConfig holds capture tuning parameters.
type AudioConfig struct {
	SampleRate       int           `yaml:"sample_rate"`
	ChunkSize        int           `yaml:"chunk_size"`
	SilenceThreshold float64       `yaml:"silence_threshold"`
	SilenceTimeout   time.Duration `yaml:"silence_timeout"`
	MaxDuration      time.Duration `yaml:"max_duration"`
}

// StorageConfig selects the session log backend.
type StorageConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path,omitempty"`
}

// OpenAIConfig holds the OpenAI API settings. The API key is only read from
// the environment, never from the config file.
type OpenAIConfig struct {
	APIKey             string `yaml:"-" env:"OPENAI_API_KEY"`
	BaseURL            string `yaml:"base_url,omitempty" env:"OPENAI_BASE_URL"`
	ChatModel          string `yaml:"chat_model" env:"OPENAI_CHAT_MODEL"`
	TranscriptionModel string `yaml:"transcription_model" env:"OPENAI_TRANSCRIPTION_MODEL"`
	SpeechModel        string `yaml:"speech_model" env:"OPENAI_SPEECH_MODEL"`
	Voice              string `yaml:"voice" env:"OPENAI_VOICE"`
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// Default returns the default configuration.
func Default() *Config {
	audio := speech.DefaultConfig()
	ai := provider.DefaultConfig()

	return &Config{
		Defaults: DefaultsConfig{
			Style: "collaborative",
		},
		Audio: AudioConfig{
			SampleRate:       audio.SampleRate,
			ChunkSize:        audio.ChunkSize,
			SilenceThreshold: audio.SilenceThreshold,
			SilenceTimeout:   audio.SilenceTimeout,
			MaxDuration:      audio.MaxDuration,
		},
		Storage: StorageConfig{
			Backend: string(store.BackendJSONL),
		},
		OpenAI: OpenAIConfig{
			ChatModel:          ai.ChatModel,
			TranscriptionModel: ai.TranscriptionModel,
			SpeechModel:        ai.SpeechModel,
			Voice:              ai.Voice,
		},
		Server: ServerConfig{
			Port: 8374,
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from a specific path. A missing file is not an
// error; defaults apply. Environment variables override the file.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file, proceed with defaults
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg.OpenAI); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo saves the configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// AudioCaptureConfig converts the audio section to the recorder's config.
func (c *Config) AudioCaptureConfig() speech.Config {
	return speech.Config{
		SampleRate:       c.Audio.SampleRate,
		ChunkSize:        c.Audio.ChunkSize,
		SilenceThreshold: c.Audio.SilenceThreshold,
		SilenceTimeout:   c.Audio.SilenceTimeout,
		MaxDuration:      c.Audio.MaxDuration,
	}
}

// ProviderConfig converts the OpenAI section to the adapter's config.
func (c *Config) ProviderConfig() provider.Config {
	return provider.Config{
		APIKey:             c.OpenAI.APIKey,
		BaseURL:            c.OpenAI.BaseURL,
		ChatModel:          c.OpenAI.ChatModel,
		TranscriptionModel: c.OpenAI.TranscriptionModel,
		SpeechModel:        c.OpenAI.SpeechModel,
		Voice:              c.OpenAI.Voice,
		SampleRate:         c.Audio.SampleRate,
	}
}

// StorePath returns the configured session log path, falling back to the
// backend's default location.
func (c *Config) StorePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	if store.Backend(c.Storage.Backend) == store.BackendSQLite {
		return store.DefaultDBPath()
	}
	return store.DefaultLogPath()
}

// OpenStore opens the configured session store.
func (c *Config) OpenStore() (store.Store, error) {
	return store.Open(store.Backend(c.Storage.Backend), c.StorePath())
}

// DefaultConfigPath returns the default configuration file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "parley.yaml"
	}
	return filepath.Join(home, ".parley", "config.yaml")
}

// GenerateExample generates an example configuration file.
func GenerateExample() string {
	example := `# parley configuration file
# Place this file at ~/.parley/config.yaml
# The OpenAI API key is read from the OPENAI_API_KEY environment variable.

defaults:
  style: collaborative        # Default negotiation style

audio:
  sample_rate: 16000          # Capture sample rate in Hz
  chunk_size: 1024            # Samples per analysis chunk
  silence_threshold: 500      # RMS energy below this counts as silence
  silence_timeout: 2s         # Trailing silence that ends an utterance
  max_duration: 60s           # Hard cap on a single capture

storage:
  backend: jsonl              # jsonl or sqlite
  path: ""                    # Empty = backend default under ~/.parley

openai:
  chat_model: gpt-4
  transcription_model: whisper-1
  speech_model: tts-1
  voice: alloy

server:
  port: 8374
`
	return example
}
