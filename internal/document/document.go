package document

import (
	"path/filepath"

	"github.com/finwise-app/statement-ingest/constants"
)

// SourceDocument is the immutable upload handed to the pipeline. The caller
// owns it; no pipeline component retains a reference after Process returns.
type SourceDocument struct {
	Bytes        []byte
	Filename     string
	DeclaredType constants.FileFormat
	SizeBytes    int64
}

// NewSourceDocument builds a SourceDocument from raw upload data. When
// declaredType is empty it is inferred from the filename extension.
func NewSourceDocument(data []byte, filename string, declaredType constants.FileFormat) SourceDocument {
	if declaredType == "" {
		declaredType = constants.MapExtToFormat(filepath.Ext(filename))
	}
	return SourceDocument{
		Bytes:        data,
		Filename:     filename,
		DeclaredType: declaredType,
		SizeBytes:    int64(len(data)),
	}
}
