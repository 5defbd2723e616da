package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/voterroll/internal/template"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, template.DefaultName, cfg.Template.Name)
	assert.Equal(t, OCRBackendVision, cfg.OCR.Backend)
	assert.Equal(t, []string{"mr", "hi", "en"}, cfg.OCR.LanguageHints)
	assert.Equal(t, 3, cfg.OCR.MaxAttempts)
	assert.Equal(t, 1000, cfg.OCR.BaseDelayMS)
	assert.Equal(t, 300, cfg.OCR.PageDelayMS)
	assert.Equal(t, 1, cfg.Pipeline.Workers)
	assert.Equal(t, 10, cfg.Pipeline.LineTolerance)
	assert.Equal(t, "gemini", cfg.Translit.Backend)
	assert.Equal(t, "gemini-2.0-flash", cfg.Translit.Model)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, "voter_records", cfg.Postgres.Table)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"no template", func(c *Config) { c.Template.Name = "" }, "template name"},
		{"bad ocr backend", func(c *Config) { c.OCR.Backend = "textract" }, "invalid OCR backend"},
		{"zero attempts", func(c *Config) { c.OCR.MaxAttempts = 0 }, "max attempts"},
		{"negative delay", func(c *Config) { c.OCR.PageDelayMS = -1 }, "must not be negative"},
		{"zero workers", func(c *Config) { c.Pipeline.Workers = 0 }, "pipeline workers"},
		{"zero tolerance", func(c *Config) { c.Pipeline.LineTolerance = 0 }, "line tolerance"},
		{"bad pages", func(c *Config) { c.Pipeline.Pages = "3-x" }, "page range"},
		{"bad translit", func(c *Config) { c.Translit.Backend = "openai" }, "openai"},
		{"bad cache", func(c *Config) { c.Translit.Cache = "disk" }, "transliteration cache"},
		{"redis without url", func(c *Config) { c.Translit.Cache = CacheRedis }, "redis_url"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateAcceptsAlternatives(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.Backend = OCRBackendRecorded
	cfg.Translit.Backend = "local"
	cfg.Translit.Cache = CacheRedis
	cfg.Translit.RedisURL = "redis://localhost:6379/0"
	cfg.Output.Format = "csv"
	cfg.Pipeline.Pages = "1-3,7"
	cfg.Pipeline.Workers = 4
	assert.NoError(t, cfg.Validate())
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.APIKey = "key"
	cfg.OCR.TimeoutSec = 5
	cfg.Translit.APIKey = "gkey"
	cfg.Translit.CacheTTLHours = 2
	cfg.Pipeline.Pages = "2,1"

	p := cfg.OCRPolicy()
	assert.Equal(t, 3, p.MaxAttempts)
	assert.Equal(t, time.Second, p.BaseDelay)
	assert.Equal(t, 300*time.Millisecond, p.Interval)
	assert.Equal(t, 5*time.Second, p.Timeout)

	v := cfg.VisionConfig()
	assert.Equal(t, "key", v.APIKey)
	assert.Equal(t, cfg.OCR.LanguageHints, v.LanguageHints)

	g := cfg.GeminiConfig()
	assert.Equal(t, "gkey", g.APIKey)
	assert.Equal(t, "gemini-2.0-flash", g.Model)

	assert.Equal(t, 2*time.Hour, cfg.CacheTTL())

	pages, err := cfg.PageRange()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, pages)

	cfg.Pipeline.Pages = ""
	pages, err = cfg.PageRange()
	require.NoError(t, err)
	assert.Nil(t, pages)
}
