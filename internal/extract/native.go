package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/finwise-app/statement-ingest/constants"
	"github.com/finwise-app/statement-ingest/internal/document"
	"github.com/finwise-app/statement-ingest/internal/ocr"
)

// NativeStrategy reads the document's own text: the embedded PDF text layer
// via pdftotext, CSV rows, or spreadsheet cells. It is the cheapest strategy
// and always tried first.
type NativeStrategy struct {
	Pdftotext string
	Runner    ocr.Runner
	Logger    *slog.Logger
}

func NewNativeStrategy(pdftotext string, runner ocr.Runner, logger *slog.Logger) *NativeStrategy {
	if pdftotext == "" {
		pdftotext = "pdftotext"
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeStrategy{Pdftotext: pdftotext, Runner: runner, Logger: logger}
}

func (s *NativeStrategy) Name() string { return string(MethodNative) }

func (s *NativeStrategy) Attempt(ctx context.Context, doc document.SourceDocument) (Attempt, error) {
	var (
		text  string
		pages int
		err   error
	)
	switch doc.DeclaredType {
	case constants.PDF:
		text, pages, err = s.pdfText(ctx, doc)
	case constants.CSV:
		text, err = csvText(doc.Bytes)
		pages = 1
	case constants.SPREADSHEET:
		text, pages, err = spreadsheetText(doc.Bytes)
	default:
		return Attempt{}, fmt.Errorf("native: unsupported format %q", string(doc.DeclaredType))
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("native: %w", err)
	}

	return Attempt{
		Method:     MethodNative,
		Text:       text,
		Pages:      pages,
		Confidence: HeuristicConfidence(text),
	}, nil
}

// pdfText writes the upload to a temp file and runs pdftotext over it.
// A form-feed \f is used as page separator by default.
func (s *NativeStrategy) pdfText(ctx context.Context, doc document.SourceDocument) (string, int, error) {
	path, cleanup, err := writeTemp(doc.Bytes, "pdf")
	if err != nil {
		return "", 0, err
	}
	defer cleanup()

	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := s.Runner.Run(ctx, s.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, fmt.Errorf("pdftotext: %w (%s)", err, clip(string(errb), 512))
	}
	text := string(out)
	pages := 1 + strings.Count(text, "\f")
	return text, pages, nil
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// writeTemp spills upload bytes to a temp file for tools that need a path.
func writeTemp(data []byte, ext string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "si-doc-*")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	path := filepath.Join(dir, "upload."+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
