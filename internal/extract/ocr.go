package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/finwise-app/statement-ingest/constants"
	"github.com/finwise-app/statement-ingest/internal/document"
	"github.com/finwise-app/statement-ingest/internal/ocr"
)

// OCRStrategy rasterizes PDF pages and recognizes text. Only meaningful for
// PDFs; CSV and spreadsheets always have a readable native form.
type OCRStrategy struct {
	Engine *ocr.Engine
	Logger *slog.Logger
}

func NewOCRStrategy(engine *ocr.Engine, logger *slog.Logger) *OCRStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &OCRStrategy{Engine: engine, Logger: logger}
}

func (s *OCRStrategy) Name() string { return string(MethodOCR) }

func (s *OCRStrategy) Attempt(ctx context.Context, doc document.SourceDocument) (Attempt, error) {
	if doc.DeclaredType != constants.PDF {
		return Attempt{}, fmt.Errorf("ocr: not applicable to %q", string(doc.DeclaredType))
	}

	path, cleanup, err := writeTemp(doc.Bytes, "pdf")
	if err != nil {
		return Attempt{}, fmt.Errorf("ocr: %w", err)
	}
	defer cleanup()

	res, err := s.Engine.RecognizePDF(ctx, path, func(page, total int) {
		s.Logger.Debug("ocr.page_done", "page", page, "total", total)
	})
	if err != nil {
		return Attempt{}, fmt.Errorf("ocr: %w", err)
	}
	for _, w := range res.Warnings {
		s.Logger.Warn("ocr.page_warning", "filename", doc.Filename, "warning", w)
	}

	// blend: weight the engine's own recognition confidence higher if present
	heurConf := HeuristicConfidence(res.Text)
	conf := heurConf
	if res.Confidence > 0 {
		conf = 0.7*res.Confidence + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	return Attempt{
		Method:     MethodOCR,
		Text:       res.Text,
		Pages:      res.Pages,
		Confidence: conf,
		Language:   res.Language,
	}, nil
}
