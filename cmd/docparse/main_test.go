package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/internal/parser"
)

func TestRun_MissingArgument(t *testing.T) {
	var out bytes.Buffer
	code := run(nil, &out)
	assert.Equal(t, 1, code)

	var res map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.Equal(t, false, res["success"])
	assert.Equal(t, parser.MissingPathMessage, res["error"])
}

func TestRun_NotFound(t *testing.T) {
	t.Setenv("DOCPARSE_CONFIG", "")
	t.Setenv("DOCPARSE_ENGINE", "")
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	var out bytes.Buffer
	code := run([]string{missing, "no-ocr"}, &out)
	assert.Equal(t, 0, code)

	var res parser.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "文件不存在: "+missing, res.Error)
}

func TestRun_BadConfigStillPrintsResult(t *testing.T) {
	t.Setenv("DOCPARSE_CONFIG", "")
	t.Setenv("DOCPARSE_ENGINE", "tika")
	path := filepath.Join(t.TempDir(), "a.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))

	var out bytes.Buffer
	code := run([]string{path}, &out)
	assert.Equal(t, 0, code)

	var res parser.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "ConfigError", res.ErrorType)
}

func TestRun_MissingFileWinsOverBadConfig(t *testing.T) {
	t.Setenv("DOCPARSE_CONFIG", "")
	t.Setenv("DOCPARSE_ENGINE", "tika")
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	var out bytes.Buffer
	code := run([]string{missing}, &out)
	assert.Equal(t, 0, code)

	var res parser.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "文件不存在: "+missing, res.Error)
	assert.Empty(t, res.ErrorType)
}

func TestRun_EmptyPathIsNotMissingArgument(t *testing.T) {
	var out bytes.Buffer
	code := run([]string{""}, &out)
	assert.Equal(t, 0, code)

	var res parser.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "文件不存在: ", res.Error)
}
