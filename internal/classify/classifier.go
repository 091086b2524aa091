package classify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/finwise-app/statement-ingest/internal/llm"
)

// DetectionResult is the inferred source institution and document language.
// Computed once per pipeline run and never recomputed.
type DetectionResult struct {
	Bank     string
	Language string
}

// Classifier detects bank and language from extracted text. The completion
// service is the primary path; pattern heuristics are both the fallback and
// the only path when no client is configured.
type Classifier struct {
	Client llm.CompletionClient // nil = patterns only
	Logger *slog.Logger
}

func NewClassifier(client llm.CompletionClient, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{Client: client, Logger: logger}
}

// Classify never fails: any completion-service problem degrades to pattern
// matching. The caller's ctx carries the stage timeout.
func (c *Classifier) Classify(ctx context.Context, text string) DetectionResult {
	if c.Client != nil {
		if det, ok := c.classifyWithLLM(ctx, text); ok {
			return det
		}
	}
	det := DetectionResult{
		Bank:     detectBankByPattern(text),
		Language: detectLanguageByKeywords(text),
	}
	c.Logger.Info("classify.pattern", "bank", det.Bank, "language", det.Language)
	return det
}

func (c *Classifier) classifyWithLLM(ctx context.Context, text string) (DetectionResult, bool) {
	content, err := c.Client.Complete(ctx,
		llm.BuildClassifySystemPrompt(),
		llm.BuildClassifyUserPrompt(text),
	)
	if err != nil {
		c.Logger.Warn("classify.llm_failed", "error", err)
		return DetectionResult{}, false
	}

	block, err := llm.FirstJSONObject(content)
	if err != nil {
		c.Logger.Warn("classify.llm_no_json", "error", err, "content_len", len(content))
		return DetectionResult{}, false
	}
	if err := llm.ValidateJSONAgainstSchema(llm.BuildClassificationSchema(), []byte(block)); err != nil {
		c.Logger.Warn("classify.llm_schema_invalid", "error", err)
		return DetectionResult{}, false
	}

	var rec llm.ClassificationRecord
	if err := json.Unmarshal([]byte(block), &rec); err != nil {
		c.Logger.Warn("classify.llm_unmarshal_failed", "error", err)
		return DetectionResult{}, false
	}

	det := DetectionResult{
		Bank:     strings.TrimSpace(rec.Bank),
		Language: strings.ToLower(strings.TrimSpace(rec.Language)),
	}
	if det.Bank == "" {
		det.Bank = "unknown"
	}
	if len(det.Language) != 2 {
		det.Language = detectLanguageByKeywords(text)
	}
	c.Logger.Info("classify.llm", "bank", det.Bank, "language", det.Language)
	return det, true
}
