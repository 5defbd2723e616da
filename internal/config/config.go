package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/voterroll/internal/export"
	"github.com/MeKo-Tech/voterroll/internal/layout"
	"github.com/MeKo-Tech/voterroll/internal/ocr"
	"github.com/MeKo-Tech/voterroll/internal/pdf"
	"github.com/MeKo-Tech/voterroll/internal/template"
	"github.com/MeKo-Tech/voterroll/internal/translit"
)

// OCR backends.
const (
	OCRBackendVision    = "vision"
	OCRBackendTesseract = "tesseract"
	OCRBackendRecorded  = "recorded"
)

// Transliteration caches.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Template: TemplateConfig{
			Name: template.DefaultName,
		},
		OCR: OCRConfig{
			Backend:       OCRBackendVision,
			LanguageHints: append([]string(nil), ocr.DefaultLanguageHints...),
			MaxAttempts:   ocr.DefaultMaxAttempts,
			BaseDelayMS:   int(ocr.DefaultBaseDelay / time.Millisecond),
			PageDelayMS:   int(ocr.DefaultPageInterval / time.Millisecond),
			TimeoutSec:    60,
		},
		Pipeline: PipelineConfig{
			Workers:       1,
			LineTolerance: layout.DefaultLineTolerance,
		},
		Translit: TranslitConfig{
			Backend:       translit.BackendGemini,
			Model:         translit.DefaultGeminiModel,
			Cache:         CacheMemory,
			CacheTTLHours: 24 * 30,
		},
		Output: OutputConfig{
			Format: export.FormatJSON,
		},
		Postgres: PostgresConfig{
			Table: export.DefaultTable,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Template.Name == "" {
		return fmt.Errorf("template name is required")
	}

	validBackends := []string{OCRBackendVision, OCRBackendTesseract, OCRBackendRecorded}
	if !slices.Contains(validBackends, c.OCR.Backend) {
		return fmt.Errorf("invalid OCR backend: %s (must be one of: %s)", c.OCR.Backend, strings.Join(validBackends, ", "))
	}
	if c.OCR.MaxAttempts <= 0 {
		return fmt.Errorf("invalid OCR max attempts: %d (must be positive)", c.OCR.MaxAttempts)
	}
	if c.OCR.BaseDelayMS < 0 || c.OCR.PageDelayMS < 0 || c.OCR.TimeoutSec < 0 {
		return fmt.Errorf("OCR delays and timeout must not be negative")
	}

	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("invalid pipeline workers: %d (must be positive)", c.Pipeline.Workers)
	}
	if c.Pipeline.LineTolerance <= 0 {
		return fmt.Errorf("invalid line tolerance: %d (must be positive)", c.Pipeline.LineTolerance)
	}
	if c.Pipeline.Pages != "" {
		if _, err := pdf.ParsePageRange(c.Pipeline.Pages); err != nil {
			return fmt.Errorf("invalid page range: %w", err)
		}
	}

	if err := translit.ValidateBackend(c.Translit.Backend); err != nil {
		return err
	}
	validCaches := []string{CacheMemory, CacheRedis}
	if !slices.Contains(validCaches, c.Translit.Cache) {
		return fmt.Errorf("invalid transliteration cache: %s (must be one of: %s)", c.Translit.Cache, strings.Join(validCaches, ", "))
	}
	if c.Translit.Cache == CacheRedis && c.Translit.RedisURL == "" {
		return fmt.Errorf("translit.redis_url is required for the redis cache")
	}
	if c.Translit.CacheTTLHours < 0 {
		return fmt.Errorf("invalid cache TTL: %d (must not be negative)", c.Translit.CacheTTLHours)
	}

	if err := export.ValidateFormat(c.Output.Format); err != nil {
		return err
	}

	return nil
}

// OCRPolicy converts the OCR settings to the call policy wrapped around
// every backend.
func (c *Config) OCRPolicy() ocr.Policy {
	return ocr.Policy{
		MaxAttempts: c.OCR.MaxAttempts,
		BaseDelay:   time.Duration(c.OCR.BaseDelayMS) * time.Millisecond,
		Interval:    time.Duration(c.OCR.PageDelayMS) * time.Millisecond,
		Timeout:     time.Duration(c.OCR.TimeoutSec) * time.Second,
	}
}

// VisionConfig converts the OCR settings to the Vision backend config.
func (c *Config) VisionConfig() ocr.VisionConfig {
	return ocr.VisionConfig{
		APIKey:          c.OCR.APIKey,
		CredentialsFile: c.OCR.CredentialsFile,
		LanguageHints:   c.OCR.LanguageHints,
	}
}

// GeminiConfig converts the transliteration settings to the Gemini client config.
func (c *Config) GeminiConfig() translit.GeminiConfig {
	return translit.GeminiConfig{
		APIKey: c.Translit.APIKey,
		Model:  c.Translit.Model,
	}
}

// CacheTTL returns the Redis cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Translit.CacheTTLHours) * time.Hour
}

// PageRange returns the selected pages, nil meaning all of them.
func (c *Config) PageRange() ([]int, error) {
	if c.Pipeline.Pages == "" {
		return nil, nil
	}
	return pdf.ParsePageRange(c.Pipeline.Pages)
}
