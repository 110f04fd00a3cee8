package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
)

// DoclingServe converts documents through a docling-serve HTTP instance.
type DoclingServe struct {
	baseURL string
	apiKey  string
	backend PDFBackend
	http    *http.Client
	logger  *slog.Logger
}

func NewDoclingServe(baseURL, apiKey string, backend PDFBackend, timeout time.Duration, logger *slog.Logger) *DoclingServe {
	if backend == "" {
		backend = BackendPyPdfium
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DoclingServe{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		backend: backend,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (s *DoclingServe) Name() string { return constants.EngineDoclingServe }

type serveOptions struct {
	ToFormats        []string `json:"to_formats"`
	DoOCR            bool     `json:"do_ocr"`
	DoTableStructure bool     `json:"do_table_structure"`
	PDFBackend       string   `json:"pdf_backend"`
	AbortOnError     bool     `json:"abort_on_error"`
}

type serveSource struct {
	Kind         string `json:"kind"`
	Base64String string `json:"base64_string"`
	Filename     string `json:"filename"`
}

type serveRequest struct {
	Options serveOptions  `json:"options"`
	Sources []serveSource `json:"sources"`
}

type serveResponse struct {
	Document struct {
		Filename    string          `json:"filename"`
		MDContent   string          `json:"md_content"`
		JSONContent json.RawMessage `json:"json_content"`
	} `json:"document"`
	Status string `json:"status"`
	Errors []struct {
		ComponentType string `json:"component_type"`
		ModuleName    string `json:"module_name"`
		ErrorMessage  string `json:"error_message"`
	} `json:"errors"`
	ProcessingTime float64 `json:"processing_time"`
}

// Check calls the health endpoint.
func (s *DoclingServe) Check(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("docling-serve health: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("docling-serve health: status %d: %w", resp.StatusCode, common.ErrUnavailable)
	}
	return nil
}

func (s *DoclingServe) Convert(ctx context.Context, path string, opts FormatOptions) (*ConversionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	opt := opts.For(constants.MapExtToFormat(filepath.Ext(path)))
	backend := opts.For(constants.PDF).Backend
	if backend == "" {
		backend = s.backend
	}

	body := serveRequest{
		Options: serveOptions{
			ToFormats:        []string{"md", "json"},
			DoOCR:            opt.Pipeline.DoOCR,
			DoTableStructure: opt.Pipeline.DoTableStructure,
			PDFBackend:       string(backend),
		},
		Sources: []serveSource{{
			Kind:         "file",
			Base64String: base64.StdEncoding.EncodeToString(data),
			Filename:     filepath.Base(path),
		}},
	}
	headers := map[string]string{}
	if s.apiKey != "" {
		headers["X-Api-Key"] = s.apiKey
	}

	raw, status, err := sendJSON(ctx, s.http, s.baseURL+"/v1/convert/source", body, headers, s.logger)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("docling-serve: %w", ctx.Err())
		}
		if status != 0 {
			return nil, common.NewAppError(common.CodeConversion, "docling-serve conversion failed", fmt.Errorf("%w: %s", err, serveDetail(raw)))
		}
		return nil, common.NewAppError(common.CodeEngineUnavailable, "docling-serve unreachable", err)
	}

	var resp serveResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, common.NewAppError(common.CodeInvalidOutput, "decode docling-serve response", err)
	}
	if resp.Status != "success" && resp.Status != "partial_success" {
		return nil, common.NewAppError(common.CodeConversion, "docling-serve conversion "+resp.Status, fmt.Errorf("%s", joinServeErrors(resp)))
	}

	res := &ConversionResult{
		Document: Document{Markdown: resp.Document.MDContent},
		Input:    InputDocument{Path: path},
	}
	if resp.Status == "partial_success" {
		res.Warnings = append(res.Warnings, "partial conversion: "+joinServeErrors(resp))
	}
	if len(resp.Document.JSONContent) > 0 && string(resp.Document.JSONContent) != "null" {
		info, err := parseDoclingDocument(resp.Document.JSONContent)
		if err != nil {
			return nil, err
		}
		res.Input.Format = info.Format
		res.Document.Pages = info.Pages
	}
	s.logger.Debug("docling-serve conversion", "status", resp.Status, "processing_time_s", resp.ProcessingTime)
	return res, nil
}

func joinServeErrors(resp serveResponse) string {
	if len(resp.Errors) == 0 {
		return "no error details"
	}
	msgs := make([]string, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		msgs = append(msgs, fmt.Sprintf("%s/%s: %s", e.ComponentType, e.ModuleName, e.ErrorMessage))
	}
	return strings.Join(msgs, "; ")
}

// serveDetail pulls the FastAPI "detail" field out of an error body.
func serveDetail(raw []byte) string {
	var e struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(raw, &e); err == nil && e.Detail != nil {
		return fmt.Sprint(e.Detail)
	}
	return strings.TrimSpace(string(raw))
}
