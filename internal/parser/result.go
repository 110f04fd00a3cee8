package parser

import (
	"bytes"
	"encoding/json"
	"io"
)

// Metadata describes a converted document.
type Metadata struct {
	FileName  string `json:"file_name"`
	FileSize  int64  `json:"file_size"`
	Format    string `json:"format"`
	PageCount int    `json:"page_count"`
	CharCount int    `json:"char_count"`
}

// Result is the outcome of a parse: content and metadata on success, error and
// error_type otherwise.
type Result struct {
	Success   bool      `json:"success"`
	Content   string    `json:"content,omitempty"`
	Metadata  *Metadata `json:"metadata,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorType string    `json:"error_type,omitempty"`
}

type successView struct {
	Success  bool     `json:"success"`
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

type failureView struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	ErrorType string `json:"error_type,omitempty"`
}

// Failure builds a failed result. errorType may be empty.
func Failure(message, errorType string) Result {
	return Result{Error: message, ErrorType: errorType}
}

// MarshalJSON emits exactly one of the two shapes; an empty document still carries
// "content": "".
func (r Result) MarshalJSON() ([]byte, error) {
	var v any
	if r.Success {
		md := Metadata{}
		if r.Metadata != nil {
			md = *r.Metadata
		}
		v = successView{Success: true, Content: r.Content, Metadata: md}
	} else {
		v = failureView{Error: r.Error, ErrorType: r.ErrorType}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// WriteJSON writes v as indented JSON followed by a newline. Non-ASCII text and HTML
// characters are written as is.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
