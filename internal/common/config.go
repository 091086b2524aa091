package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all pipeline configuration
type Config struct {
	Pipeline PipelineConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Store    StoreConfig
}

// PipelineConfig holds orchestration-related configuration
type PipelineConfig struct {
	MaxFileSize     int64         // bytes; uploads above this are rejected
	MinTextLength   int           // minimum extracted text length to accept a strategy
	StageTimeout    time.Duration // per-stage budget (OCR recognition dominates)
	PipelineTimeout time.Duration // whole-run budget for large multi-page PDFs
	MinConfidence   float32       // below this, a low-confidence warning is attached
	RetryThreshold  int           // fewer accepted transactions than this suggests an OCR retry
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Languages string // combined tesseract hint, e.g. "eng+spa"
	DPI       int    // rasterization DPI for scanned PDFs, default 300
	MaxPages  int    // 0 = no limit

	TessdataDir         string
	EnableTSVConfidence bool
}

// LLMConfig holds completion-service configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	Enabled     bool
}

// StoreConfig holds the hand-off store configuration
type StoreConfig struct {
	DSN string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			MaxFileSize:     getEnvAsInt64("INGEST_MAX_FILE_SIZE", 20<<20),
			MinTextLength:   getEnvAsInt("INGEST_MIN_TEXT_LENGTH", 100),
			StageTimeout:    getEnvAsDuration("INGEST_STAGE_TIMEOUT", 120*time.Second),
			PipelineTimeout: getEnvAsDuration("INGEST_PIPELINE_TIMEOUT", 240*time.Second),
			MinConfidence:   getEnvAsFloat32("INGEST_MIN_CONFIDENCE", 0.5),
			RetryThreshold:  getEnvAsInt("INGEST_RETRY_THRESHOLD", 10),
		},
		OCR: OCRConfig{
			Pdftotext:           getEnv("OCR_PDFTOTEXT", "pdftotext"),
			Pdftoppm:            getEnv("OCR_PDFTOPPM", "pdftoppm"),
			Tesseract:           getEnv("OCR_TESSERACT", "tesseract"),
			Languages:           getEnv("OCR_LANGUAGES", "eng+spa"),
			DPI:                 getEnvAsInt("OCR_DPI", 300),
			MaxPages:            getEnvAsInt("OCR_MAX_PAGES", 0),
			TessdataDir:         getEnv("TESSDATA_PREFIX", ""),
			EnableTSVConfidence: getEnvAsBool("OCR_TSV_CONFIDENCE", true),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			BaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 45*time.Second),
			Enabled:     getEnvAsBool("OPENAI_ENABLED", true),
		},
		Store: StoreConfig{
			DSN: getEnv("STORE_DSN", "file:transactions.db"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Pipeline.MaxFileSize <= 0 {
		return NewAppError("CONFIG_ERROR", "INGEST_MAX_FILE_SIZE must be positive", ErrValidation)
	}
	if c.Pipeline.MinTextLength <= 0 {
		return NewAppError("CONFIG_ERROR", "INGEST_MIN_TEXT_LENGTH must be positive", ErrValidation)
	}
	if c.LLM.Enabled && c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required when the completion service is enabled", ErrValidation)
	}
	return nil
}
