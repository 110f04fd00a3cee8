package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/extract"
)

// NotFoundPrefix starts the message reported for a path that does not exist.
const NotFoundPrefix = "文件不存在: "

// StatInput stats the input file. Any stat failure, permission errors included, counts
// as a missing file and matches common.ErrNotFound.
func StatInput(path string) (os.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, common.WrapError(fmt.Errorf("%w: %w", common.ErrNotFound, err), "stat input")
	}
	return info, nil
}

// NotFound is the result reported for a path StatInput rejected.
func NotFound(path string) Result {
	return Failure(NotFoundPrefix+path, "")
}

// Service turns one document into a Result. It never returns an error: every failure,
// panics included, is folded into the Result.
type Service struct {
	engine   extract.Engine
	backend  extract.PDFBackend
	defaults common.DefaultsConfig
	logger   *slog.Logger
}

// NewService builds a Service. A nil logger means the run logger carried by the
// context, see common.NewRun.
func NewService(engine extract.Engine, backend extract.PDFBackend, defaults common.DefaultsConfig, logger *slog.Logger) *Service {
	if backend == "" {
		backend = extract.BackendPyPdfium
	}
	return &Service{engine: engine, backend: backend, defaults: defaults, logger: logger}
}

// ParseDocument converts req.FilePath with OCR per req.EnableOCR and table structure on.
func (s *Service) ParseDocument(ctx context.Context, req Request) (res Result) {
	start := time.Now()
	logger := common.LoggerFromContext(ctx, s.logger).With("path", req.FilePath)

	info, err := StatInput(req.FilePath)
	if err != nil {
		logger.Warn("file not found", "error", err)
		return NotFound(req.FilePath)
	}

	defer func() {
		if r := recover(); r != nil {
			res = s.fail(logger, common.FromPanic(r))
		}
	}()

	pdfOption := extract.FormatOption{
		Pipeline: extract.PipelineOptions{
			DoOCR:            req.EnableOCR,
			DoTableStructure: true,
		},
		Backend: s.backend,
	}
	converter, err := extract.NewDocumentConverter(ctx, s.engine,
		extract.WithFormatOption(constants.PDF, pdfOption),
		extract.WithLogger(logger),
	)
	if err != nil {
		return s.fail(logger, err)
	}

	conv, err := converter.Convert(ctx, req.FilePath)
	if err != nil {
		return s.fail(logger, err)
	}

	content := conv.Document.ExportToMarkdown()
	md := s.metadata(info, conv)
	md.CharCount = utf8.RuneCountInString(content)

	logger.Info("document parsed",
		"format", md.Format,
		"page_count", md.PageCount,
		"char_count", md.CharCount,
		"ocr", req.EnableOCR,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Result{Success: true, Content: content, Metadata: &md}
}

func (s *Service) metadata(info os.FileInfo, conv *extract.ConversionResult) Metadata {
	md := Metadata{
		FileName:  info.Name(),
		FileSize:  info.Size(),
		Format:    s.defaults.Format,
		PageCount: s.defaults.PageCount,
	}
	if conv.Input.Format != "" {
		md.Format = string(conv.Input.Format)
	}
	if conv.Document.Pages != nil {
		md.PageCount = len(conv.Document.Pages)
	}
	return md
}

func (s *Service) fail(logger *slog.Logger, err error) Result {
	logger.Error("parse failed", "error", err)
	return Failure(common.ErrorMessage(err), common.ErrorType(err))
}
