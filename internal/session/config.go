package session

import (
	"strconv"
	"strings"
)

// Turn detection policy types understood by the remote peer.
const (
	TurnDetectionNone      = "none"
	TurnDetectionServerVAD = "server_vad"
)

// TurnDetection is the remote peer's end-of-turn policy.
type TurnDetection struct {
	Type              string
	InterruptOnSpeech bool
	PrefixPaddingMs   int
	SilenceDurationMs int
}

// Config holds the user-adjustable parameters for one realtime session.
// Owned exclusively by the session controller; mutated only via ApplyForm.
type Config struct {
	TranslationModel   string
	TranscriptionModel string
	Instructions       string
	TurnDetection      TurnDetection
	AutoCommitMs       int
}

// DefaultConfig returns the hard defaults applied at first load. Later edits
// fall back to the previously configured values, never back to these.
func DefaultConfig() Config {
	return Config{
		TranslationModel:   "gpt-realtime",
		TranscriptionModel: "gpt-4o-mini-transcribe",
		Instructions:       "You are a translator. Translate everything the user says into German. Output only the translation.",
		TurnDetection: TurnDetection{
			Type:              TurnDetectionServerVAD,
			InterruptOnSpeech: false,
			PrefixPaddingMs:   300,
			SilenceDurationMs: 500,
		},
		AutoCommitMs: 0,
	}
}

// ApplyForm folds form-style key/value inputs into the config. Missing or
// invalid numeric values keep the previous setting. The interrupt flag is
// checkbox-style: present means on.
func (c *Config) ApplyForm(values map[string]string) {
	if v, ok := nonEmpty(values, "translation_model"); ok {
		c.TranslationModel = v
	}
	if v, ok := nonEmpty(values, "transcription_model"); ok {
		c.TranscriptionModel = v
	}
	if v, ok := values["instructions"]; ok && strings.TrimSpace(v) != "" {
		c.Instructions = v
	}
	if v, ok := nonEmpty(values, "turn_detection"); ok {
		if v == TurnDetectionNone || v == TurnDetectionServerVAD {
			c.TurnDetection.Type = v
		}
	}
	_, c.TurnDetection.InterruptOnSpeech = values["interrupt_on_speech"]
	c.TurnDetection.PrefixPaddingMs = parseNonNegative(values, "prefix_padding_ms", c.TurnDetection.PrefixPaddingMs)
	c.TurnDetection.SilenceDurationMs = parseNonNegative(values, "silence_duration_ms", c.TurnDetection.SilenceDurationMs)
	c.AutoCommitMs = parseNonNegative(values, "auto_commit_ms", c.AutoCommitMs)
}

func nonEmpty(values map[string]string, key string) (string, bool) {
	v, ok := values[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func parseNonNegative(values map[string]string, key string, previous int) int {
	v, ok := nonEmpty(values, key)
	if !ok {
		return previous
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return previous
	}
	return n
}

type sessionUpdate struct {
	Type    string         `json:"type"`
	Session sessionPayload `json:"session"`
}

type sessionPayload struct {
	Type         string       `json:"type"`
	Model        string       `json:"model"`
	Instructions string       `json:"instructions,omitempty"`
	Audio        audioPayload `json:"audio"`
}

type audioPayload struct {
	Input audioInputPayload `json:"input"`
}

type audioInputPayload struct {
	Transcription        transcriptionPayload `json:"transcription"`
	TurnDetectionPayload *turnDetectionJSON   `json:"turn_detection"`
}

type transcriptionPayload struct {
	Model string `json:"model"`
}

type turnDetectionJSON struct {
	Type              string `json:"type"`
	InterruptResponse bool   `json:"interrupt_response"`
	PrefixPaddingMs   int    `json:"prefix_padding_ms"`
	SilenceDurationMs int    `json:"silence_duration_ms"`
}

// UpdateMessage builds the protocol session.update payload for this config.
// A "none" turn detection type is emitted as an explicit null, which tells
// the peer to disable turn detection entirely.
func (c Config) UpdateMessage() any {
	var td *turnDetectionJSON
	if c.TurnDetection.Type != TurnDetectionNone {
		td = &turnDetectionJSON{
			Type:              c.TurnDetection.Type,
			InterruptResponse: c.TurnDetection.InterruptOnSpeech,
			PrefixPaddingMs:   c.TurnDetection.PrefixPaddingMs,
			SilenceDurationMs: c.TurnDetection.SilenceDurationMs,
		}
	}
	return sessionUpdate{
		Type: "session.update",
		Session: sessionPayload{
			Type:         "realtime",
			Model:        c.TranslationModel,
			Instructions: c.Instructions,
			Audio: audioPayload{
				Input: audioInputPayload{
					Transcription:        transcriptionPayload{Model: c.TranscriptionModel},
					TurnDetectionPayload: td,
				},
			},
		},
	}
}
