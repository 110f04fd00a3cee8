package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorType(t *testing.T) {
	_, statErr := os.Stat("/definitely/not/here")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"app error", NewAppError(CodeConversion, "boom", nil), CodeConversion},
		{"wrapped app error", fmt.Errorf("outer: %w", NewAppError(CodeInvalidOutput, "bad", nil)), CodeInvalidOutput},
		{"deadline", fmt.Errorf("convert: %w", context.DeadlineExceeded), CodeTimeout},
		{"path error", statErr, "PathError"},
		{"wrapped path error", fmt.Errorf("open: %w", statErr), "PathError"},
		{"plain", errors.New("plain"), "Error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorType(tt.err))
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "", ErrorMessage(nil))
	assert.Equal(t, "docling failed", ErrorMessage(NewAppError(CodeConversion, "docling failed", nil)))
	assert.Equal(t, "docling failed: exit status 2",
		ErrorMessage(NewAppError(CodeConversion, "docling failed", errors.New("exit status 2"))))
	assert.Equal(t, "plain", ErrorMessage(errors.New("plain")))
}

func TestFromPanic(t *testing.T) {
	err := FromPanic("index out of range")
	assert.Equal(t, CodePanic, ErrorType(err))
	assert.Contains(t, ErrorMessage(err), "index out of range")

	cause := errors.New("nil map")
	err = FromPanic(cause)
	assert.ErrorIs(t, err, cause)
}

func TestWrapError(t *testing.T) {
	assert.NoError(t, WrapError(nil, "ignored"))

	err := WrapError(ErrNotFound, "stat input")
	assert.EqualError(t, err, "stat input: resource not found")
	assert.ErrorIs(t, err, ErrNotFound)
}
