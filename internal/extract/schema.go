package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
)

// BuildDoclingDocumentSchema returns the subset of the DoclingDocument JSON schema we
// rely on: the origin block and the page collection.
func BuildDoclingDocumentSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"schema_name"},
		"properties": map[string]any{
			"schema_name": map[string]any{"const": "DoclingDocument"},
			"version":     map[string]any{"type": "string"},
			"name":        map[string]any{"type": "string"},
			"origin": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"mimetype": map[string]any{"type": "string"},
					"filename": map[string]any{"type": "string"},
				},
			},
			"pages": map[string]any{
				"type": "object",
				"additionalProperties": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"page_no": map[string]any{"type": "integer", "minimum": 1},
					},
				},
			},
		},
	}
}

var doclingSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return compileSchema("docling_document.json", BuildDoclingDocumentSchema())
})

func compileSchema(name string, schemaMap map[string]any) (*jsonschema.Schema, error) {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

type doclingDocument struct {
	Origin *struct {
		MimeType string `json:"mimetype"`
		Filename string `json:"filename"`
	} `json:"origin"`
	Pages map[string]json.RawMessage `json:"pages"`
}

// docInfo is what we read back from a DoclingDocument export.
type docInfo struct {
	Format constants.InputFormat
	Pages  []Page // nil when the document has no page collection
}

// parseDoclingDocument validates data against the DoclingDocument schema and reads
// the format and page collection.
func parseDoclingDocument(data []byte) (docInfo, error) {
	schema, err := doclingSchema()
	if err != nil {
		return docInfo{}, common.NewAppError(common.CodeInvalidOutput, "docling document schema", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return docInfo{}, common.NewAppError(common.CodeInvalidOutput, "decode docling document", err)
	}
	if err := schema.Validate(v); err != nil {
		return docInfo{}, common.NewAppError(common.CodeInvalidOutput, "docling document does not match schema", err)
	}

	var doc doclingDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return docInfo{}, common.NewAppError(common.CodeInvalidOutput, "decode docling document", err)
	}
	var info docInfo
	if doc.Origin != nil {
		info.Format = constants.MapMimeToFormat(doc.Origin.MimeType)
	}
	if doc.Pages != nil {
		info.Pages = pagesOf(len(doc.Pages))
	}
	return info, nil
}
