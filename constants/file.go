package constants

import "strings"

// FileFormat is the declared format of an uploaded statement file.
type FileFormat string

const (
	PDF         FileFormat = "PDF"
	CSV         FileFormat = "CSV"
	SPREADSHEET FileFormat = "SPREADSHEET"
)

// AllowedExtensions holds the default allowed file extensions for statement ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"csv":  {},
	"xlsx": {},
	"xls":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a file extension to its FileFormat.
// Returns "" for unsupported extensions.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "csv":
		return CSV
	case "xlsx", "xls":
		return SPREADSHEET
	default:
		return ""
	}
}
