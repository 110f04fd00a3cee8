package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI for scanned PDFs, default 300
	MaxPages      int // 0 = no limit
}

type ExtractionResult struct {
	Pages    []string // text per page, in order
	Method   string   // "pdf-text" | "pdf-ocr" | "image-ocr" | "none"
	Language string
	Duration time.Duration
	Warnings []string
}

// Text joins the page texts with a blank line.
func (r ExtractionResult) Text() string {
	parts := make([]string, 0, len(r.Pages))
	for _, p := range r.Pages {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n\n")
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{cfg: cfg, runner: ExecRunner{}, logger: logger}
}

// WithRunner swaps the command runner, mainly for tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Check verifies every external tool the extractor may call is on PATH.
func (e *Extractor) Check(_ context.Context) error {
	var errs []error
	for _, bin := range []string{e.cfg.Pdftotext, e.cfg.Pdftoppm, e.cfg.Tesseract} {
		if _, err := LookPath(bin); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", bin, err))
		}
	}
	return errors.Join(errs...)
}

// ExtractPDF reads the PDF text layer. When the layer is empty and OCR is enabled the
// pages are rasterized and run through tesseract. layout keeps column alignment.
func (e *Extractor) ExtractPDF(ctx context.Context, path string, enableOCR, layout bool) (ExtractionResult, error) {
	start := time.Now()
	e.logger.Debug("starting pdf extraction", "path", path, "ocr", enableOCR, "layout", layout)

	pages, warns, err := e.pdfToText(ctx, path, layout)
	if err != nil {
		return ExtractionResult{Warnings: warns, Duration: time.Since(start)}, fmt.Errorf("pdftotext: %w", err)
	}
	res := ExtractionResult{Pages: pages, Method: "pdf-text", Warnings: warns}

	if enableOCR && !hasText(pages) {
		e.logger.Info("pdf has no text layer, falling back to ocr", "path", path)
		pages, warns, err = e.pdfToOCR(ctx, path)
		res.Warnings = append(res.Warnings, warns...)
		if err != nil {
			res.Duration = time.Since(start)
			return res, err
		}
		res.Pages = pages
		res.Method = "pdf-ocr"
		res.Language = e.cfg.TesseractLang
	}
	res.Duration = time.Since(start)
	return res, nil
}

// ExtractImage OCRs a single image. With OCR disabled an image carries no text.
func (e *Extractor) ExtractImage(ctx context.Context, path string, enableOCR bool) (ExtractionResult, error) {
	start := time.Now()
	if !enableOCR {
		return ExtractionResult{
			Pages:    []string{""},
			Method:   "none",
			Warnings: []string{"ocr disabled: image text not extracted"},
		}, nil
	}
	txt, warn, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warn, Duration: time.Since(start)}, err
	}
	return ExtractionResult{
		Pages:    []string{Normalize(txt)},
		Method:   "image-ocr",
		Language: e.cfg.TesseractLang,
		Duration: time.Since(start),
		Warnings: warn,
	}, nil
}

func hasText(pages []string) bool {
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
