package document

import (
	"fmt"
	"log/slog"

	"github.com/finwise-app/statement-ingest/constants"
)

// Validator rejects unusable uploads before any extraction work begins.
// A non-empty return short-circuits the whole pipeline; this is the only
// fatal, non-retryable stage.
type Validator struct {
	MaxFileSize int64
	Logger      *slog.Logger
}

func NewValidator(maxFileSize int64, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFileSize <= 0 {
		maxFileSize = 20 << 20
	}
	return &Validator{MaxFileSize: maxFileSize, Logger: logger}
}

// Validate returns a list of human-readable validation errors, empty when
// the document is acceptable. No side effects.
func (v *Validator) Validate(doc SourceDocument) []string {
	var errs []string

	if doc.SizeBytes == 0 {
		errs = append(errs, "empty file: upload contains no data")
	}
	if doc.SizeBytes > v.MaxFileSize {
		errs = append(errs, fmt.Sprintf("file too large: %d bytes exceeds limit of %d bytes", doc.SizeBytes, v.MaxFileSize))
	}
	switch doc.DeclaredType {
	case constants.PDF, constants.CSV, constants.SPREADSHEET:
	default:
		errs = append(errs, fmt.Sprintf("unsupported file type: %q (expected pdf, csv, or spreadsheet)", string(doc.DeclaredType)))
	}

	if len(errs) > 0 {
		v.Logger.Warn("document.validate.rejected",
			"filename", doc.Filename,
			"size_bytes", doc.SizeBytes,
			"declared_type", string(doc.DeclaredType),
			"errors", len(errs),
		)
	}
	return errs
}
