package constants

import (
	"path/filepath"
	"strings"
)

// InputFormat is the format label reported for a converted document.
type InputFormat string

const (
	PDF      InputFormat = "PDF"
	DOCX     InputFormat = "DOCX"
	PPTX     InputFormat = "PPTX"
	XLSX     InputFormat = "XLSX"
	IMAGE    InputFormat = "IMAGE"
	HTML     InputFormat = "HTML"
	MD       InputFormat = "MD"
	CSV      InputFormat = "CSV"
	ASCIIDOC InputFormat = "ASCIIDOC"
)

// SupportedExtensions maps every accepted file extension to its input format.
// Legacy Office extensions (doc, ppt, xls) are accepted and handed to the
// converter, which decides whether it can read them.
var SupportedExtensions = map[string]InputFormat{
	"pdf":  PDF,
	"docx": DOCX,
	"doc":  DOCX,
	"pptx": PPTX,
	"ppt":  PPTX,
	"xlsx": XLSX,
	"xls":  XLSX,
	"jpg":  IMAGE,
	"jpeg": IMAGE,
	"png":  IMAGE,
	"gif":  IMAGE,
	"bmp":  IMAGE,
	"tiff": IMAGE,
	"tif":  IMAGE,
	"html": HTML,
	"htm":  HTML,
	"md":   MD,
	"csv":  CSV,
	"adoc": ASCIIDOC,
}

var mimeFormats = map[string]InputFormat{
	"application/pdf": PDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   DOCX,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": PPTX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         XLSX,
	"text/html":     HTML,
	"text/markdown": MD,
	"text/csv":      CSV,
	"text/asciidoc": ASCIIDOC,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the input format for a file extension, or "" when unsupported.
func MapExtToFormat(ext string) InputFormat {
	return SupportedExtensions[NormalizeExt(ext)]
}

// MapMimeToFormat returns the input format for a MIME type, or "" when unknown.
func MapMimeToFormat(mime string) InputFormat {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	if strings.HasPrefix(mime, "image/") {
		return IMAGE
	}
	return mimeFormats[mime]
}

// IsSupported reports whether the file at path has an accepted extension.
func IsSupported(path string) bool {
	return MapExtToFormat(filepath.Ext(path)) != ""
}
