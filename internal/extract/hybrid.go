package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/finwise-app/statement-ingest/internal/document"
)

// HybridStrategy runs native and OCR extraction and merges their output.
// It is the most expensive strategy and only tried when neither alone met
// the quality bar.
type HybridStrategy struct {
	Native Strategy
	OCR    Strategy
	Logger *slog.Logger
}

func NewHybridStrategy(native, ocrStrategy Strategy, logger *slog.Logger) *HybridStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &HybridStrategy{Native: native, OCR: ocrStrategy, Logger: logger}
}

func (s *HybridStrategy) Name() string { return string(MethodHybrid) }

func (s *HybridStrategy) Attempt(ctx context.Context, doc document.SourceDocument) (Attempt, error) {
	nat, natErr := s.Native.Attempt(ctx, doc)
	if natErr != nil {
		s.Logger.Warn("hybrid.native_failed", "filename", doc.Filename, "error", natErr)
	}
	ocrAtt, ocrErr := s.OCR.Attempt(ctx, doc)
	if ocrErr != nil {
		s.Logger.Warn("hybrid.ocr_failed", "filename", doc.Filename, "error", ocrErr)
	}
	if natErr != nil && ocrErr != nil {
		return Attempt{}, fmt.Errorf("hybrid: both sources failed: native: %v; ocr: %v", natErr, ocrErr)
	}

	text := MergeTexts(nat.Text, ocrAtt.Text)
	if text == "" {
		return Attempt{}, fmt.Errorf("hybrid: no text from either source")
	}

	pages := nat.Pages
	if ocrAtt.Pages > pages {
		pages = ocrAtt.Pages
	}

	return Attempt{
		Method:     MethodHybrid,
		Text:       text,
		Pages:      pages,
		Confidence: HeuristicConfidence(text),
		Language:   ocrAtt.Language,
	}, nil
}

// MergeTexts combines native and OCR output. If one text is at least 1.5x
// longer than the other it is treated as primary and the shorter is appended
// as a labeled supplement; otherwise both are concatenated.
func MergeTexts(native, ocrText string) string {
	native = strings.TrimSpace(native)
	ocrText = strings.TrimSpace(ocrText)
	switch {
	case native == "":
		return ocrText
	case ocrText == "":
		return native
	}

	nl := float64(len(native))
	ol := float64(len(ocrText))
	switch {
	case nl >= 1.5*ol:
		return native + "\n\n--- OCR supplement ---\n" + ocrText
	case ol >= 1.5*nl:
		return ocrText + "\n\n--- native text supplement ---\n" + native
	default:
		return native + "\n\n" + ocrText
	}
}
