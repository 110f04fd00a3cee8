package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func (e *Extractor) pdfToText(ctx context.Context, path string, layout bool) (pages []string, warnings []string, err error) {
	// pdftotext [-layout] -enc UTF-8 -eol unix <path> -
	args := []string{"-enc", "UTF-8", "-eol", "unix", path, "-"}
	if layout {
		args = append([]string{"-layout"}, args...)
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, e.logger, args...)
	if err != nil {
		return nil, []string{string(errb)}, err
	}
	// a form-feed \f separates pages; the last page is followed by one too
	raw := strings.TrimSuffix(string(out), "\f")
	for _, p := range strings.Split(raw, "\f") {
		if layout {
			pages = append(pages, NormalizeLayout(p))
		} else {
			pages = append(pages, Normalize(p))
		}
	}
	return pages, nil, nil
}

func (e *Extractor) pdfToOCR(ctx context.Context, path string) (pages []string, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "docparse-pp-*")
	if err != nil {
		return nil, nil, err
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", path, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger, "-r", fmt.Sprintf("%d", e.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, []string{string(errb)}, fmt.Errorf("pdftoppm: %w", err)
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sortPageImages(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		warnings = append(warnings, fmt.Sprintf("ocr limited to %d of %d pages", e.cfg.MaxPages, len(matches)))
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, []string{"pdftoppm produced no images"}, fmt.Errorf("no pages rendered")
	}

	for _, img := range matches {
		txt, w, err := e.tesseractOCR(ctx, img)
		warnings = append(warnings, w...)
		if err != nil {
			if ctx.Err() != nil {
				return nil, warnings, ctx.Err()
			}
			warnings = append(warnings, err.Error())
			pages = append(pages, "")
			continue
		}
		pages = append(pages, Normalize(txt))
	}
	return pages, warnings, nil
}

// pdftoppm zero-pads page numbers to the width of the page count, but sort by
// length first so unpadded names still come out in page order.
func sortPageImages(paths []string) {
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) < len(paths[j])
		}
		return paths[i] < paths[j]
	})
}
