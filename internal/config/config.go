package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/russellconstruction9/RRsolutions/internal/markdown"
	"github.com/russellconstruction9/RRsolutions/internal/response"
)

type Config struct {
	Port string

	// Auth
	DocugenAPIKey string

	// Gemini
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	// Response handling
	ResponseFormat   response.Format
	MarkdownRenderer string

	// Worker pool
	WorkerCount           int
	MaxQueueSize          int
	MaxConcurrentGenerate int
	GenerateTimeout       time.Duration

	// Upload limits
	MaxUploadBytes int64

	// State
	JobTTL         time.Duration
	SessionTTL     time.Duration
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	// PDF
	PDFFallbackPdftotext bool
	PDFTextHint          bool
	MaxPromptTokens      int

	// Budget checks
	BudgetTolerance float64

	// Branding
	BrandingFile string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		DocugenAPIKey: os.Getenv("DOCUGEN_API_KEY"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL: os.Getenv("GEMINI_BASE_URL"),

		ResponseFormat:   response.Format(envOr("RESPONSE_FORMAT", string(response.FormatJSON))),
		MarkdownRenderer: envOr("MARKDOWN_RENDERER", "line"),

		WorkerCount:           envInt("WORKER_COUNT", 2),
		MaxQueueSize:          envInt("MAX_QUEUE_SIZE", 50),
		MaxConcurrentGenerate: envInt("MAX_CONCURRENT_GENERATE", 4),
		GenerateTimeout:       envDuration("GENERATE_TIMEOUT", 5*time.Minute),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
		SessionTTL:     envDuration("SESSION_TTL", 24*time.Hour),
		SessionBackend: envOr("SESSION_BACKEND", "memory"),
		RedisAddr:      envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        envInt("REDIS_DB", 0),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
		PDFTextHint:          envBool("PDF_TEXT_HINT", false),
		MaxPromptTokens:      envInt("MAX_PROMPT_TOKENS", 30000),

		BudgetTolerance: envFloat("BUDGET_TOLERANCE", 1.00),

		BrandingFile: os.Getenv("BRANDING_FILE"),
	}

	if f, err := response.ParseFormat(string(cfg.ResponseFormat)); err == nil {
		cfg.ResponseFormat = f
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentGenerate <= 0 {
		cfg.MaxConcurrentGenerate = 4
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 5 * time.Minute
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.MaxPromptTokens <= 0 {
		cfg.MaxPromptTokens = 30000
	}
	if cfg.BudgetTolerance <= 0 {
		cfg.BudgetTolerance = 1.00
	}

	return cfg
}

// Validate checks the settings the server needs. The CLI only needs a
// Gemini key and checks that itself.
func (c Config) Validate() error {
	if c.DocugenAPIKey == "" {
		return fmt.Errorf("DOCUGEN_API_KEY is required")
	}
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if _, err := response.ParseFormat(string(c.ResponseFormat)); err != nil {
		return fmt.Errorf("RESPONSE_FORMAT: %w", err)
	}
	if _, err := markdown.New(c.MarkdownRenderer); err != nil {
		return fmt.Errorf("MARKDOWN_RENDERER: %w", err)
	}
	switch c.SessionBackend {
	case "memory", "redis":
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory or redis, got %q", c.SessionBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
