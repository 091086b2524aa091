package extract

import (
	"context"

	"github.com/finwise-app/statement-ingest/internal/document"
)

// Method identifies which strategy produced an extraction attempt.
type Method string

const (
	MethodNative Method = "native"
	MethodOCR    Method = "ocr"
	MethodHybrid Method = "hybrid"
)

// Attempt is the transient output of one extraction strategy. Only the
// winning attempt survives into the pipeline result.
type Attempt struct {
	Method     Method
	Text       string
	Pages      int
	Confidence float32
	Language   string
}

// Strategy is the uniform contract every extraction technique implements.
// The chain tries strategies in increasing cost order until one satisfies
// the quality bar.
type Strategy interface {
	Name() string
	Attempt(ctx context.Context, doc document.SourceDocument) (Attempt, error)
}
