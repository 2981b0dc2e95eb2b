// Package config loads operational settings for the translate client.
//
// Only operational knobs live here. The long-lived API key is deliberately
// excluded: it is entered interactively per session and never read from the
// environment or written to disk.
package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all environment-driven settings.
type Config struct {
	// Provider endpoints
	MintURL      string `envconfig:"MINT_URL" default:"https://api.openai.com/v1/realtime/client_secrets"`
	SignalingURL string `envconfig:"SIGNALING_URL" default:"https://api.openai.com/v1/realtime/calls"`
	WebSocketURL string `envconfig:"WEBSOCKET_URL" default:"wss://api.openai.com/v1/realtime"`

	// Transport selection: "webrtc" (default) or "websocket"
	Transport string `envconfig:"TRANSPORT" default:"webrtc"`

	// Session defaults (user-adjustable at runtime through the settings form)
	TranslationModel   string `envconfig:"TRANSLATION_MODEL" default:"gpt-realtime"`
	TranscriptionModel string `envconfig:"TRANSCRIPTION_MODEL" default:"gpt-4o-mini-transcribe"`
	TargetLanguage     string `envconfig:"TARGET_LANGUAGE" default:"German"`
	AutoCommitMs       int    `envconfig:"AUTO_COMMIT_MS" default:"0"`

	// Microphone capture
	FFmpegPath  string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	InputFormat string `envconfig:"AUDIO_INPUT_FORMAT" default:"pulse"`
	InputDevice string `envconfig:"AUDIO_INPUT_DEVICE" default:"default"`
	SampleRate  int    `envconfig:"AUDIO_SAMPLE_RATE" default:"8000"`

	// Local VAD, used when server turn detection is off
	VADEnergyThreshold float64 `envconfig:"VAD_ENERGY_THRESHOLD" default:"500.0"`
	VADSilenceFrames   int     `envconfig:"VAD_SILENCE_FRAMES" default:"25"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"true"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsPort    string `envconfig:"METRICS_PORT" default:"9090"`
}

// Load reads configuration, preferring a local .env file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Transport != "webrtc" && cfg.Transport != "websocket" {
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", cfg.SampleRate)
	}
	return &cfg, nil
}
