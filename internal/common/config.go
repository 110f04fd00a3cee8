package common

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/joseph-ayodele/docparse/constants"
)

// ConfigPathEnv names the optional TOML file that seeds the configuration.
const ConfigPathEnv = "DOCPARSE_CONFIG"

// Config holds all application configuration
type Config struct {
	Engine   string         `toml:"engine" validate:"oneof=docling docling-serve native"`
	Timeout  string         `toml:"timeout"` // e.g. "10m"; empty = no timeout
	Docling  DoclingConfig  `toml:"docling"`
	Serve    ServeConfig    `toml:"serve"`
	OCR      OCRConfig      `toml:"ocr"`
	Defaults DefaultsConfig `toml:"defaults"`
	Log      LogConfig      `toml:"log"`
}

// DoclingConfig holds docling CLI configuration
type DoclingConfig struct {
	Binary     string `toml:"binary" validate:"required"`
	PDFBackend string `toml:"pdf_backend" validate:"oneof=pypdfium2 dlparse_v1 dlparse_v2 dlparse_v4"`
}

// ServeConfig holds docling-serve configuration
type ServeConfig struct {
	URL    string `toml:"url" validate:"required,url"`
	APIKey string `toml:"api_key"`
}

// OCRConfig holds configuration of the native text and OCR tools
type OCRConfig struct {
	Pdftotext   string `toml:"pdftotext"`
	Pdftoppm    string `toml:"pdftoppm"`
	Tesseract   string `toml:"tesseract"`
	Lang        string `toml:"lang" validate:"required"`
	TessdataDir string `toml:"tessdata_dir"`
	DPI         int    `toml:"dpi" validate:"gte=72,lte=1200"`
	MaxPages    int    `toml:"max_pages" validate:"gte=0"`
}

// DefaultsConfig holds the metadata fallbacks used when the converter does not
// report a format or a page collection.
type DefaultsConfig struct {
	Format    string `toml:"format"`
	PageCount int    `toml:"page_count" validate:"gte=0"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		Engine: constants.EngineDocling,
		Docling: DoclingConfig{
			Binary:     "docling",
			PDFBackend: "pypdfium2",
		},
		Serve: ServeConfig{
			URL: "http://localhost:5001",
		},
		OCR: OCRConfig{
			Pdftotext: "pdftotext",
			Pdftoppm:  "pdftoppm",
			Tesseract: "tesseract",
			Lang:      "eng",
			DPI:       300,
		},
		Defaults: DefaultsConfig{
			Format:    "unknown",
			PageCount: 0,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// LoadConfig builds the configuration from defaults, the optional TOML file named
// by DOCPARSE_CONFIG, and environment variables, in that order of precedence.
func LoadConfig() (*Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(ConfigPathEnv); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewAppError(CodeConfig, fmt.Sprintf("read config file %s", path), err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return NewAppError(CodeConfig, fmt.Sprintf("parse config file %s", path), err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var errs []error
	c.Engine = getEnv("DOCPARSE_ENGINE", c.Engine)
	c.Timeout = getEnv("DOCPARSE_TIMEOUT", c.Timeout)

	c.Docling.Binary = getEnv("DOCLING_BIN", c.Docling.Binary)
	c.Docling.PDFBackend = getEnv("DOCLING_PDF_BACKEND", c.Docling.PDFBackend)

	c.Serve.URL = getEnv("DOCLING_SERVE_URL", c.Serve.URL)
	c.Serve.APIKey = getEnv("DOCLING_SERVE_API_KEY", c.Serve.APIKey)

	c.OCR.Pdftotext = getEnv("PDFTOTEXT_BIN", c.OCR.Pdftotext)
	c.OCR.Pdftoppm = getEnv("PDFTOPPM_BIN", c.OCR.Pdftoppm)
	c.OCR.Tesseract = getEnv("TESSERACT_BIN", c.OCR.Tesseract)
	c.OCR.Lang = getEnv("TESSERACT_LANG", c.OCR.Lang)
	c.OCR.TessdataDir = getEnv("TESSDATA_PREFIX", c.OCR.TessdataDir)
	c.OCR.DPI = getEnvAsInt("OCR_DPI", c.OCR.DPI, &errs)
	c.OCR.MaxPages = getEnvAsInt("OCR_MAX_PAGES", c.OCR.MaxPages, &errs)

	c.Defaults.Format = getEnv("DOCPARSE_DEFAULT_FORMAT", c.Defaults.Format)
	c.Defaults.PageCount = getEnvAsInt("DOCPARSE_DEFAULT_PAGE_COUNT", c.Defaults.PageCount, &errs)

	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", c.Log.Level))
	c.Log.Format = strings.ToLower(getEnv("LOG_FORMAT", c.Log.Format))
	return errors.Join(errs...)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt appends a ConfigError to errs when the variable is set but not an integer.
func getEnvAsInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intVal, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, NewAppError(CodeConfig, fmt.Sprintf("invalid %s %q", key, value), err))
		return defaultValue
	}
	return intVal
}

// TimeoutDuration returns the per-conversion timeout, 0 meaning none.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err != nil || d < 0 {
			return NewAppError(CodeConfig, fmt.Sprintf("invalid timeout %q", c.Timeout), ErrInvalidInput)
		}
	}
	return nil
}
