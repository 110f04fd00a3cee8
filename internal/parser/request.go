package parser

import (
	"errors"
	"strings"

	"github.com/joseph-ayodele/docparse/constants"
)

// MissingPathMessage is reported when no file path argument was given.
const MissingPathMessage = "缺少文件路径参数"

var ErrMissingPath = errors.New("missing file path argument")

// Request is one parse invocation.
type Request struct {
	FilePath  string
	EnableOCR bool
}

// ParseArgs builds a Request from positional arguments: <file_path> [no-ocr].
// Any second argument other than no-ocr leaves OCR on. An empty path is still a path.
func ParseArgs(args []string) (Request, error) {
	if len(args) == 0 {
		return Request{}, ErrMissingPath
	}
	req := Request{FilePath: args[0], EnableOCR: true}
	if len(args) > 1 && strings.EqualFold(args[1], constants.DisableOCRToken) {
		req.EnableOCR = false
	}
	return req, nil
}
