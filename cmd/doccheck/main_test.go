package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_BrokenConfigFailsBothChecks(t *testing.T) {
	t.Setenv("DOCPARSE_CONFIG", "")
	t.Setenv("DOCPARSE_ENGINE", "tika")

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out))

	s := out.String()
	assert.True(t, strings.HasPrefix(s, strings.Repeat("=", 50)+"\nDocling Installation Verification Test\n"))
	assert.Contains(t, s, "Import Test: [FAIL]")
	assert.Contains(t, s, "Functionality Test: [FAIL]")
	assert.Contains(t, s, "[WARNING] Some tests failed, please check installation")
}

func TestRun_MissingDoclingBinary(t *testing.T) {
	t.Setenv("DOCPARSE_CONFIG", "")
	t.Setenv("DOCPARSE_ENGINE", "docling")
	t.Setenv("DOCLING_BIN", "docparse-test-no-such-binary")

	var out bytes.Buffer
	assert.Equal(t, 1, run(&out))
	assert.Contains(t, out.String(), "[FAIL] Import failed:")
}
