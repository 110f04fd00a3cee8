package extract

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
)

// DocumentConverter converts one document at a time through an Engine.
type DocumentConverter struct {
	engine  Engine
	options FormatOptions
	logger  *slog.Logger
}

// Option configures a DocumentConverter.
type Option func(*DocumentConverter)

// WithFormatOption sets the configuration used for one input format.
func WithFormatOption(f constants.InputFormat, opt FormatOption) Option {
	return func(c *DocumentConverter) { c.options[f] = opt }
}

// WithLogger sets the converter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *DocumentConverter) { c.logger = logger }
}

// NewDocumentConverter instantiates a converter. The engine is checked up front so a
// broken installation fails here rather than on the first conversion.
func NewDocumentConverter(ctx context.Context, engine Engine, opts ...Option) (*DocumentConverter, error) {
	if engine == nil {
		return nil, common.NewAppError(common.CodeEngineUnavailable, "no conversion engine configured", common.ErrInvalidInput)
	}
	c := &DocumentConverter{engine: engine, options: FormatOptions{}, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	if err := engine.Check(ctx); err != nil {
		return nil, common.NewAppError(common.CodeEngineUnavailable, engine.Name()+" engine unavailable", err)
	}
	return c, nil
}

// Convert runs a single synchronous conversion of the document at path.
func (c *DocumentConverter) Convert(ctx context.Context, path string) (*ConversionResult, error) {
	start := time.Now()
	c.logger.Info("conversion started", "engine", c.engine.Name(), "path", path)

	res, err := c.engine.Convert(ctx, path, c.options)
	if err != nil {
		c.logger.Error("conversion failed",
			"engine", c.engine.Name(),
			"path", path,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return nil, err
	}
	for _, w := range res.Warnings {
		c.logger.Warn("conversion warning", "path", path, "warning", w)
	}
	c.logger.Info("conversion finished",
		"engine", c.engine.Name(),
		"path", path,
		"format", res.Input.Format,
		"pages", len(res.Document.Pages),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}
