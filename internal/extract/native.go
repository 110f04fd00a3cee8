package extract

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/ocr"
)

// Native converts documents in-process: poppler and tesseract for PDFs and images,
// Go readers for the office, HTML and text formats.
type Native struct {
	ocr    *ocr.Extractor
	logger *slog.Logger
}

func NewNative(x *ocr.Extractor, logger *slog.Logger) *Native {
	if logger == nil {
		logger = slog.Default()
	}
	return &Native{ocr: x, logger: logger}
}

func (n *Native) Name() string { return constants.EngineNative }

func (n *Native) Check(ctx context.Context) error {
	return n.ocr.Check(ctx)
}

func (n *Native) Convert(ctx context.Context, path string, opts FormatOptions) (*ConversionResult, error) {
	format := constants.MapExtToFormat(filepath.Ext(path))
	opt := opts.For(format).Pipeline

	var (
		res *ConversionResult
		err error
	)
	switch format {
	case constants.PDF:
		res, err = n.convertPDF(ctx, path, opt)
	case constants.IMAGE:
		res, err = n.convertImage(ctx, path, opt)
	case constants.XLSX:
		res, err = convertXLSX(path, opt.DoTableStructure)
	case constants.DOCX:
		res, err = convertDOCX(path, opt.DoTableStructure)
	case constants.PPTX:
		res, err = convertPPTX(path, opt.DoTableStructure)
	case constants.HTML:
		res, err = convertHTML(path)
	case constants.CSV:
		res, err = convertCSV(path, opt.DoTableStructure)
	case constants.MD:
		res, err = convertText(path)
	default:
		return nil, common.NewAppError(common.CodeUnsupportedFormat,
			fmt.Sprintf("native engine cannot convert %q files", filepath.Ext(path)), common.ErrInvalidInput)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("native: %w", ctx.Err())
		}
		return nil, common.NewAppError(common.CodeConversion, fmt.Sprintf("convert %s", strings.ToLower(string(format))), err)
	}
	res.Input = InputDocument{Path: path, Format: format}
	return res, nil
}

func (n *Native) convertPDF(ctx context.Context, path string, opt PipelineOptions) (*ConversionResult, error) {
	x, err := n.ocr.ExtractPDF(ctx, path, opt.DoOCR, opt.DoTableStructure)
	if err != nil {
		return nil, err
	}
	res := &ConversionResult{
		Document: Document{Markdown: x.Text()},
		Warnings: x.Warnings,
	}

	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		n.logger.Warn("pdfcpu could not read pdf, using text page count", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "page count taken from text extraction")
		res.Document.Pages = pagesOf(len(x.Pages))
		return res, nil
	}
	res.Document.Pages = pagesOf(pdfCtx.PageCount)
	return res, nil
}

func (n *Native) convertImage(ctx context.Context, path string, opt PipelineOptions) (*ConversionResult, error) {
	x, err := n.ocr.ExtractImage(ctx, path, opt.DoOCR)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{
		Document: Document{Markdown: x.Text(), Pages: pagesOf(1)},
		Warnings: x.Warnings,
	}, nil
}

func convertHTML(path string) (*ConversionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(string(data))
	if err != nil {
		return nil, fmt.Errorf("html to markdown: %w", err)
	}
	return &ConversionResult{Document: Document{Markdown: strings.TrimSpace(markdown), Pages: []Page{}}}, nil
}

func convertCSV(path string, structured bool) (*ConversionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return &ConversionResult{Document: Document{Markdown: renderTable(rows, structured), Pages: []Page{}}}, nil
}

func convertText(path string) (*ConversionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &ConversionResult{Document: Document{Markdown: strings.TrimSpace(string(data)), Pages: []Page{}}}, nil
}
