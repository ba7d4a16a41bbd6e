package domain

// LineItemStatus is the model's verdict on a single charge.
type LineItemStatus string

const (
	LineItemCorrect   LineItemStatus = "correct"
	LineItemIncorrect LineItemStatus = "incorrect"
)

// Valid reports whether s is one of the known statuses.
func (s LineItemStatus) Valid() bool {
	return s == LineItemCorrect || s == LineItemIncorrect
}

// UnknownCPTCode is used when the model omits a line item's code.
const UnknownCPTCode = "UNKNOWN"

// DefaultUploadMIMEType is assumed when an upload carries no content type.
const DefaultUploadMIMEType = "image/png"

// AllowedUploadTypes lists the MIME types accepted for bill uploads.
var AllowedUploadTypes = map[string]bool{
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"image/gif":       true,
	"application/pdf": true,
}

// UploadExtensions maps allowed MIME types to the extension used for storage keys.
var UploadExtensions = map[string]string{
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/webp":      "webp",
	"image/gif":       "gif",
	"application/pdf": "pdf",
}

// ExportFormat selects the history export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
