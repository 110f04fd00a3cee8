package constants

// CheckStatus is the marker printed for an installation check outcome.
type CheckStatus string

const (
	CheckStatusTest CheckStatus = "[TEST]"
	CheckStatusPass CheckStatus = "[PASS]"
	CheckStatusFail CheckStatus = "[FAIL]"
)

// Engine names accepted by the converter configuration.
const (
	EngineDocling      = "docling"
	EngineDoclingServe = "docling-serve"
	EngineNative       = "native"
)

// DisableOCRToken is the optional second CLI argument that turns OCR off.
const DisableOCRToken = "no-ocr"
