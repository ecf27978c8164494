package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		StoreBackend:    "memory",
		JWTSecret:       "secret",
		LLMProvider:     "none",
		STTProvider:     "none",
		MaxQuestions:    12,
		SummaryTop:      5,
		QuestionTimeout: 30 * time.Second,
		SessionLockTTL:  45 * time.Second,
		WorkerCount:     2,
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Memory ")
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoreBackend != "memory" || cfg.MaxQuestions != 12 || cfg.SummaryTop != 5 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.QuestionTimeout != 30*time.Second || cfg.AudioStream != "audio:stream" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("QUESTION_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"postgres needs uri", func(c *Config) { c.StoreBackend = "postgres" }, "POSTGRES_URI"},
		{"mongo needs uri", func(c *Config) { c.StoreBackend = "mongo" }, "MONGO_URI"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "sqlite" }, "STORE_BACKEND"},
		{"jwt secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"vertex project", func(c *Config) { c.LLMProvider = "vertex" }, "GCP_PROJECT_ID"},
		{"gemini key", func(c *Config) { c.LLMProvider = "gemini" }, "GEMINI_API_KEY"},
		{"whisper url", func(c *Config) { c.STTProvider = "whisper" }, "WHISPER_URL"},
		{"cap", func(c *Config) { c.MaxQuestions = 0 }, "INTERVIEW_MAX_QUESTIONS"},
		{"workers", func(c *Config) { c.WorkerCount = 0 }, "WORKER_COUNT"},
		{"lock outlives question", func(c *Config) { c.QuestionTimeout = 60 * time.Second }, "SESSION_LOCK_TTL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %s, got %v", tc.want, err)
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
