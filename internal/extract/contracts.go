package extract

import (
	"context"

	"github.com/joseph-ayodele/docparse/constants"
)

// PDFBackend selects the low-level PDF decoder used by the converter.
type PDFBackend string

const (
	BackendPyPdfium PDFBackend = "pypdfium2"
	BackendDLParse1 PDFBackend = "dlparse_v1"
	BackendDLParse2 PDFBackend = "dlparse_v2"
	BackendDLParse4 PDFBackend = "dlparse_v4"
)

// PipelineOptions controls how a format is processed.
type PipelineOptions struct {
	DoOCR            bool
	DoTableStructure bool
}

// DefaultPipelineOptions mirrors the converter defaults: OCR and table structure on.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{DoOCR: true, DoTableStructure: true}
}

// FormatOption is the per-format configuration handed to an engine.
type FormatOption struct {
	Pipeline PipelineOptions
	Backend  PDFBackend // PDF only; empty keeps the engine default
}

// FormatOptions maps input formats to their configuration. Formats without an entry
// use DefaultPipelineOptions.
type FormatOptions map[constants.InputFormat]FormatOption

// For returns the option configured for f, or the defaults.
func (o FormatOptions) For(f constants.InputFormat) FormatOption {
	if opt, ok := o[f]; ok {
		return opt
	}
	return FormatOption{Pipeline: DefaultPipelineOptions()}
}

// Page is one page of a converted document.
type Page struct {
	Number int
}

// Document is the converted document.
type Document struct {
	Markdown string
	// Pages is nil when the engine cannot report a page collection.
	Pages []Page
}

// ExportToMarkdown renders the document as markdown.
func (d Document) ExportToMarkdown() string {
	return d.Markdown
}

// InputDocument describes the converted input.
type InputDocument struct {
	Path string
	// Format is empty when the engine did not report one.
	Format constants.InputFormat
}

// ConversionResult is what a single conversion produces.
type ConversionResult struct {
	Document Document
	Input    InputDocument
	Warnings []string
}

// Engine performs conversions. Implementations wrap a concrete converter:
// the docling CLI, a docling-serve instance, or the Go-native readers.
type Engine interface {
	Name() string
	// Check verifies the engine's components are installed and reachable.
	Check(ctx context.Context) error
	Convert(ctx context.Context, path string, opts FormatOptions) (*ConversionResult, error)
}

func pagesOf(n int) []Page {
	pages := make([]Page, n)
	for i := range pages {
		pages[i] = Page{Number: i + 1}
	}
	return pages
}
