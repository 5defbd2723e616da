//nolint:lll
package config

// Config represents the complete configuration for the voterroll extractor.
// It is loaded from a configuration file, VOTERROLL_ environment variables
// and command-line flags, in increasing order of precedence.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Template TemplateConfig `mapstructure:"template" yaml:"template" json:"template"`
	OCR      OCRConfig      `mapstructure:"ocr" yaml:"ocr" json:"ocr"`
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Translit TranslitConfig `mapstructure:"translit" yaml:"translit" json:"translit"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres" json:"postgres"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics" json:"metrics"`
}

// TemplateConfig selects the page layout template.
type TemplateConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`

	// File is an optional YAML file with extra templates and aliases.
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// OCRConfig contains OCR backend and call policy settings.
type OCRConfig struct {
	Backend         string   `mapstructure:"backend" yaml:"backend" json:"backend"`
	APIKey          string   `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	CredentialsFile string   `mapstructure:"credentials_file" yaml:"credentials_file" json:"credentials_file"`
	LanguageHints   []string `mapstructure:"language_hints" yaml:"language_hints" json:"language_hints"`
	MaxAttempts     int      `mapstructure:"max_attempts" yaml:"max_attempts" json:"max_attempts"`
	BaseDelayMS     int      `mapstructure:"base_delay_ms" yaml:"base_delay_ms" json:"base_delay_ms"`
	PageDelayMS     int      `mapstructure:"page_delay_ms" yaml:"page_delay_ms" json:"page_delay_ms"`
	TimeoutSec      int      `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
}

// PipelineConfig contains page processing settings.
type PipelineConfig struct {
	Workers       int `mapstructure:"workers" yaml:"workers" json:"workers"`
	LineTolerance int `mapstructure:"line_tolerance" yaml:"line_tolerance" json:"line_tolerance"`

	// Pages is a page range such as "1-5" or "1,3,5". Empty means all pages.
	Pages string `mapstructure:"pages" yaml:"pages" json:"pages"`
}

// TranslitConfig contains English name transliteration settings.
type TranslitConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend" json:"backend"`
	APIKey        string `mapstructure:"api_key" yaml:"api_key" json:"api_key"`
	Model         string `mapstructure:"model" yaml:"model" json:"model"`
	Cache         string `mapstructure:"cache" yaml:"cache" json:"cache"`
	RedisURL      string `mapstructure:"redis_url" yaml:"redis_url" json:"redis_url"`
	CacheTTLHours int    `mapstructure:"cache_ttl_hours" yaml:"cache_ttl_hours" json:"cache_ttl_hours"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// PostgresConfig enables the PostgreSQL sink when URL is set.
type PostgresConfig struct {
	URL   string `mapstructure:"url" yaml:"url" json:"url"`
	Table string `mapstructure:"table" yaml:"table" json:"table"`
}

// MetricsConfig contains the Prometheus listener settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the listener.
	Addr string `mapstructure:"addr" yaml:"addr" json:"addr"`
}
