package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
)

func newServeStub(t *testing.T, handler func(req serveRequest) (int, any)) (*httptest.Server, *http.Header) {
	t.Helper()
	var hdr http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/health":
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		case "/v1/convert/source":
			hdr = r.Header.Clone()
			var req serveRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			status, body := handler(req)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &hdr
}

func TestDoclingServe_Convert(t *testing.T) {
	path := writeFile(t, "report.pdf", "%PDF-1.7 fake")

	var got serveRequest
	srv, hdr := newServeStub(t, func(req serveRequest) (int, any) {
		got = req
		return http.StatusOK, map[string]any{
			"status":          "success",
			"processing_time": 1.5,
			"document": map[string]any{
				"filename":     "report.pdf",
				"md_content":   "# Report",
				"json_content": json.RawMessage(sampleDoclingJSON),
			},
		}
	})

	s := NewDoclingServe(srv.URL+"/", "secret", "", 5*time.Second, discardLogger())
	opts := FormatOptions{constants.PDF: {Pipeline: PipelineOptions{DoOCR: true, DoTableStructure: true}}}
	res, err := s.Convert(context.Background(), path, opts)
	require.NoError(t, err)

	assert.Equal(t, "# Report", res.Document.Markdown)
	assert.Equal(t, constants.PDF, res.Input.Format)
	assert.Len(t, res.Document.Pages, 2)

	assert.Equal(t, []string{"md", "json"}, got.Options.ToFormats)
	assert.True(t, got.Options.DoOCR)
	assert.Equal(t, "pypdfium2", got.Options.PDFBackend)
	require.Len(t, got.Sources, 1)
	assert.Equal(t, "file", got.Sources[0].Kind)
	assert.Equal(t, "report.pdf", got.Sources[0].Filename)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF-1.7 fake")), got.Sources[0].Base64String)
	assert.Equal(t, "secret", hdr.Get("X-Api-Key"))
}

func TestDoclingServe_PartialAndFailure(t *testing.T) {
	path := writeFile(t, "deck.pptx", "zip")

	t.Run("partial success warns", func(t *testing.T) {
		srv, _ := newServeStub(t, func(serveRequest) (int, any) {
			return http.StatusOK, map[string]any{
				"status":   "partial_success",
				"document": map[string]any{"md_content": "slide"},
				"errors":   []map[string]any{{"component_type": "pipeline", "module_name": "ocr", "error_message": "page 3"}},
			}
		})
		res, err := NewDoclingServe(srv.URL, "", "", 0, discardLogger()).Convert(context.Background(), path, nil)
		require.NoError(t, err)
		assert.Nil(t, res.Document.Pages)
		require.Len(t, res.Warnings, 1)
		assert.Contains(t, res.Warnings[0], "pipeline/ocr: page 3")
	})

	t.Run("failure status", func(t *testing.T) {
		srv, _ := newServeStub(t, func(serveRequest) (int, any) {
			return http.StatusOK, map[string]any{"status": "failure"}
		})
		_, err := NewDoclingServe(srv.URL, "", "", 0, discardLogger()).Convert(context.Background(), path, nil)
		assert.Equal(t, common.CodeConversion, common.ErrorType(err))
	})

	t.Run("http error carries detail", func(t *testing.T) {
		srv, _ := newServeStub(t, func(serveRequest) (int, any) {
			return http.StatusUnprocessableEntity, map[string]any{"detail": "unsupported input"}
		})
		_, err := NewDoclingServe(srv.URL, "", "", 0, discardLogger()).Convert(context.Background(), path, nil)
		require.Error(t, err)
		assert.Equal(t, common.CodeConversion, common.ErrorType(err))
		assert.Contains(t, err.Error(), "unsupported input")
	})
}

func TestDoclingServe_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	path := writeFile(t, "a.pdf", "x")
	s := NewDoclingServe(url, "", "", time.Second, discardLogger())
	_, err := s.Convert(context.Background(), path, nil)
	assert.Equal(t, common.CodeEngineUnavailable, common.ErrorType(err))
	assert.Error(t, s.Check(context.Background()))
}

func TestDoclingServe_Check(t *testing.T) {
	srv, _ := newServeStub(t, nil)
	assert.NoError(t, NewDoclingServe(srv.URL, "", "", time.Second, discardLogger()).Check(context.Background()))
}

func TestDoclingServe_ForwardsRunID(t *testing.T) {
	path := writeFile(t, "a.md", "# a")
	srv, hdr := newServeStub(t, func(serveRequest) (int, any) {
		return http.StatusOK, map[string]any{"status": "success", "document": map[string]any{"md_content": "# a"}}
	})

	ctx := common.WithRequestID(context.Background(), "run-42")
	_, err := NewDoclingServe(srv.URL, "", "", time.Second, discardLogger()).Convert(ctx, path, nil)
	require.NoError(t, err)
	assert.Equal(t, "run-42", hdr.Get("X-Request-Id"))
}

func TestDoclingServe_UnhealthyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	err := NewDoclingServe(srv.URL, "", "", time.Second, discardLogger()).Check(context.Background())
	assert.ErrorIs(t, err, common.ErrUnavailable)
}
