package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/internal/common"
)

type fakeRunner struct {
	stdout, stderr string
	err            error
	gotName        string
	gotArgs        []string
}

func (f *fakeRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	f.gotName, f.gotArgs = name, args
	return []byte(f.stdout), []byte(f.stderr), f.err
}

func newTestClient(r *fakeRunner) *Client {
	return New("", slog.New(slog.NewTextHandler(io.Discard, nil))).WithRunner(r)
}

func TestParseDocument_Success(t *testing.T) {
	r := &fakeRunner{stdout: `{
  "success": true,
  "content": "# 报告",
  "metadata": {"file_name": "r.pdf", "file_size": 10, "format": "PDF", "page_count": 3, "char_count": 4}
}`}
	res, err := newTestClient(r).ParseDocument(context.Background(), "/tmp/r.pdf", true)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "# 报告", res.Content)
	require.NotNil(t, res.Metadata)
	assert.Equal(t, 3, res.Metadata.PageCount)

	assert.Equal(t, "docparse", r.gotName)
	assert.Equal(t, []string{"/tmp/r.pdf"}, r.gotArgs)
}

func TestParseDocument_NoOCRAndFailureResult(t *testing.T) {
	r := &fakeRunner{stdout: `{"success": false, "error": "文件不存在: x.pdf"}`}
	res, err := newTestClient(r).ParseDocument(context.Background(), "x.pdf", false)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "文件不存在: x.pdf", res.Error)
	assert.Equal(t, []string{"x.pdf", "no-ocr"}, r.gotArgs)
}

func TestParseDocument_ProcessErrors(t *testing.T) {
	exitErr := &exec.ExitError{ProcessState: &os.ProcessState{}}

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		_, err := newTestClient(&fakeRunner{stderr: "boom\n", err: exitErr}).ParseDocument(context.Background(), "a.pdf", true)
		require.Error(t, err)
		assert.Equal(t, common.CodeConversion, common.ErrorType(err))
		assert.Equal(t, "docparse process failed: boom", common.ErrorMessage(err))
	})

	t.Run("non-zero exit without stderr", func(t *testing.T) {
		_, err := newTestClient(&fakeRunner{err: exitErr}).ParseDocument(context.Background(), "a.pdf", true)
		assert.Equal(t, "docparse process failed: unknown error", common.ErrorMessage(err))
	})

	t.Run("cannot start", func(t *testing.T) {
		_, err := newTestClient(&fakeRunner{err: exec.ErrNotFound}).ParseDocument(context.Background(), "a.pdf", true)
		assert.Equal(t, common.CodeEngineUnavailable, common.ErrorType(err))
		assert.True(t, errors.Is(err, exec.ErrNotFound))
	})

	t.Run("not json", func(t *testing.T) {
		_, err := newTestClient(&fakeRunner{stdout: "Traceback (most recent call last):"}).ParseDocument(context.Background(), "a.pdf", true)
		assert.Equal(t, common.CodeInvalidOutput, common.ErrorType(err))
	})
}

func TestIsSupportedFormat(t *testing.T) {
	for _, p := range []string{"a.pdf", "b.DOCX", "c.ppt", "d.xls", "e.jpeg", "f.TIF", "g.bmp"} {
		assert.True(t, IsSupportedFormat(p), p)
	}
	for _, p := range []string{"a.txt", "noext", "b.zip"} {
		assert.False(t, IsSupportedFormat(p), p)
	}
}
