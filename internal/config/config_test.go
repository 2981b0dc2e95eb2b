package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport != "webrtc" {
		t.Errorf("expected webrtc transport default, got %q", cfg.Transport)
	}
	if cfg.TranslationModel != "gpt-realtime" {
		t.Errorf("unexpected translation model default %q", cfg.TranslationModel)
	}
	if cfg.AutoCommitMs != 0 {
		t.Errorf("expected auto-commit disabled by default, got %d", cfg.AutoCommitMs)
	}
	if cfg.SampleRate != 8000 {
		t.Errorf("unexpected sample rate default %d", cfg.SampleRate)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Clearenv()
	t.Setenv("TRANSPORT", "websocket")
	t.Setenv("AUTO_COMMIT_MS", "3000")
	t.Setenv("TARGET_LANGUAGE", "French")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Transport != "websocket" {
		t.Errorf("expected websocket transport, got %q", cfg.Transport)
	}
	if cfg.AutoCommitMs != 3000 {
		t.Errorf("expected auto-commit 3000, got %d", cfg.AutoCommitMs)
	}
	if cfg.TargetLanguage != "French" {
		t.Errorf("expected French target, got %q", cfg.TargetLanguage)
	}
}

func TestLoad_RejectsUnknownTransport(t *testing.T) {
	os.Clearenv()
	t.Setenv("TRANSPORT", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported transport")
	}
}
