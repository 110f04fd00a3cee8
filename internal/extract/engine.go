package extract

import (
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
	"github.com/joseph-ayodele/docparse/internal/ocr"
)

// NewEngine builds the engine named by cfg.Engine.
func NewEngine(cfg *common.Config, logger *slog.Logger) (Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	backend := PDFBackend(cfg.Docling.PDFBackend)
	switch cfg.Engine {
	case constants.EngineDocling:
		return NewDoclingCLI(cfg.Docling.Binary, backend, logger), nil
	case constants.EngineDoclingServe:
		return NewDoclingServe(cfg.Serve.URL, cfg.Serve.APIKey, backend, cfg.TimeoutDuration(), logger), nil
	case constants.EngineNative:
		x := ocr.NewExtractor(ocr.Config{
			Pdftotext:     cfg.OCR.Pdftotext,
			Pdftoppm:      cfg.OCR.Pdftoppm,
			Tesseract:     cfg.OCR.Tesseract,
			TesseractLang: cfg.OCR.Lang,
			TessdataDir:   cfg.OCR.TessdataDir,
			DPI:           cfg.OCR.DPI,
			MaxPages:      cfg.OCR.MaxPages,
		}, logger)
		return NewNative(x, logger), nil
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown engine %q", cfg.Engine), common.ErrInvalidInput)
	}
}
