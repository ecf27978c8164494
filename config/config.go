package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const lockHeadroom = 10 * time.Second

type Config struct {
	Env       string `env:"ENV" envDefault:"production"`
	Port      string `env:"PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"` // postgres|mongo|memory

	PostgresURI         string `env:"POSTGRES_URI"`
	MongoURI            string `env:"MONGO_URI"`
	MongoDB             string `env:"MONGO_DB" envDefault:"interviewpilot"`
	MongoForceTLSConfig bool   `env:"MONGO_FORCE_TLS_CONFIG"`
	MongoInsecureTLS    bool   `env:"MONGO_INSECURE_TLS"`
	RedisAddr           string `env:"REDIS_ADDR"`

	JWTSecret   string `env:"JWT_SECRET"`
	JWTIssuer   string `env:"JWT_ISSUER"`
	JWTAudience string `env:"JWT_AUDIENCE"`

	LLMProvider  string `env:"LLM_PROVIDER" envDefault:"none"` // vertex|gemini|none
	GCPProjectID string `env:"GCP_PROJECT_ID"`
	GCPLocation  string `env:"GCP_LOCATION" envDefault:"us-central1"`
	LLMModel     string `env:"LLM_MODEL"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	STTProvider string `env:"STT_PROVIDER" envDefault:"none"` // google|whisper|none
	STTLanguage string `env:"STT_LANGUAGE" envDefault:"en-US"`
	WhisperURL  string `env:"WHISPER_URL"`
	AudioBucket string `env:"AUDIO_BUCKET"`

	MaxQuestions       int           `env:"INTERVIEW_MAX_QUESTIONS" envDefault:"12"`
	SummaryTop         int           `env:"INTERVIEW_SUMMARY_TOP" envDefault:"5"`
	QuestionTimeout    time.Duration `env:"QUESTION_TIMEOUT" envDefault:"30s"`
	QuestionMaxRepeats int           `env:"QUESTION_MAX_REPEATS" envDefault:"1"`
	PracticeCacheTTL   time.Duration `env:"PRACTICE_CACHE_TTL" envDefault:"10m"`
	SessionLockTTL     time.Duration `env:"SESSION_LOCK_TTL" envDefault:"45s"`

	BufferTTL   time.Duration `env:"BUFFER_TTL" envDefault:"24h"`
	WorkerCount int           `env:"WORKER_COUNT" envDefault:"4"`
	AudioStream string        `env:"AUDIO_STREAM" envDefault:"audio:stream"`
	AudioGroup  string        `env:"AUDIO_GROUP" envDefault:"audio-workers"`
}

// Load reads an optional .env file, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.LLMProvider = strings.ToLower(strings.TrimSpace(c.LLMProvider))
	c.STTProvider = strings.ToLower(strings.TrimSpace(c.STTProvider))
}

// Validate checks the rules that span several keys. Commands that do not
// need every backend (practice, migrate) call the narrower checks directly.
func (c *Config) Validate() error {
	if err := c.ValidateStore(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if err := c.ValidateProviders(); err != nil {
		return err
	}
	if c.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.WorkerCount)
	}
	return nil
}

func (c *Config) ValidateStore() error {
	switch c.StoreBackend {
	case "postgres":
		if c.PostgresURI == "" {
			return fmt.Errorf("POSTGRES_URI is required when STORE_BACKEND=postgres")
		}
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_BACKEND=mongo")
		}
	case "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be postgres, mongo or memory, got %q", c.StoreBackend)
	}
	return nil
}

func (c *Config) ValidateProviders() error {
	switch c.LLMProvider {
	case "vertex":
		if c.GCPProjectID == "" {
			return fmt.Errorf("GCP_PROJECT_ID is required when LLM_PROVIDER=vertex")
		}
	case "gemini":
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when LLM_PROVIDER=gemini")
		}
	case "none":
	default:
		return fmt.Errorf("LLM_PROVIDER must be vertex, gemini or none, got %q", c.LLMProvider)
	}

	switch c.STTProvider {
	case "whisper":
		if c.WhisperURL == "" {
			return fmt.Errorf("WHISPER_URL is required when STT_PROVIDER=whisper")
		}
	case "google", "none":
	default:
		return fmt.Errorf("STT_PROVIDER must be google, whisper or none, got %q", c.STTProvider)
	}

	if c.MaxQuestions <= 0 {
		return fmt.Errorf("INTERVIEW_MAX_QUESTIONS must be positive, got %d", c.MaxQuestions)
	}
	if c.SummaryTop <= 0 {
		return fmt.Errorf("INTERVIEW_SUMMARY_TOP must be positive, got %d", c.SummaryTop)
	}
	if c.QuestionTimeout <= 0 {
		return fmt.Errorf("QUESTION_TIMEOUT must be positive")
	}
	// the session lease must outlive one question call plus the store writes
	if c.SessionLockTTL < c.QuestionTimeout+lockHeadroom {
		return fmt.Errorf("SESSION_LOCK_TTL (%s) must be at least QUESTION_TIMEOUT (%s) + %s", c.SessionLockTTL, c.QuestionTimeout, lockHeadroom)
	}
	if c.QuestionMaxRepeats < 0 {
		return fmt.Errorf("QUESTION_MAX_REPEATS must not be negative")
	}
	return nil
}
