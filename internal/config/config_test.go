package config

import (
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", "")
	t.Setenv("GEMINI_MODEL_ID", "")
	t.Setenv("SPEECH_RECOGNITION_LANGUAGE", "")
	t.Setenv("TEXT_TO_SPEECH_LANGUAGE", "")
	t.Setenv("TEXT_TO_SPEECH_TLD", "")
	t.Setenv("LISTEN_TIMEOUT_SECONDS", "")
	cfg := Load()
	if cfg.HTTPAddress == "" {
		t.Fatalf("expected default http address")
	}
	if cfg.GeminiModelID == "" {
		t.Fatalf("expected default gemini model id")
	}
	if cfg.RecognitionLanguage != "en-IN" {
		t.Fatalf("expected en-IN recognition language, got %q", cfg.RecognitionLanguage)
	}
	if cfg.TTSLanguage != "en-IN" || cfg.TTSTLD != "co.in" {
		t.Fatalf("expected India-English TTS locale defaults, got %q/%q", cfg.TTSLanguage, cfg.TTSTLD)
	}
	if cfg.ListenTimeout != 5*time.Second {
		t.Fatalf("expected 5s default listen timeout, got %v", cfg.ListenTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SPEECH_RECOGNITION_LANGUAGE", "hi-IN")
	t.Setenv("LISTEN_TIMEOUT_SECONDS", "8")
	cfg := Load()
	if cfg.RecognitionLanguage != "hi-IN" {
		t.Fatalf("expected override to win, got %q", cfg.RecognitionLanguage)
	}
	if cfg.ListenTimeout != 8*time.Second {
		t.Fatalf("expected 8s listen timeout, got %v", cfg.ListenTimeout)
	}
}

func TestLoad_InvalidTimeoutFallsBack(t *testing.T) {
	t.Setenv("LISTEN_TIMEOUT_SECONDS", "zero")
	cfg := Load()
	if cfg.ListenTimeout != 5*time.Second {
		t.Fatalf("expected default timeout on bad value, got %v", cfg.ListenTimeout)
	}
}
