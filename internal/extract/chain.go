package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/finwise-app/statement-ingest/internal/common"
	"github.com/finwise-app/statement-ingest/internal/document"
)

// Chain tries extraction strategies in increasing cost order and stops as
// soon as one meets the quality bar. Each strategy runs under its own stage
// timeout; a timed-out strategy is a recoverable failure and the chain
// escalates.
type Chain struct {
	Strategies    []Strategy
	MinTextLength int
	StageTimeout  time.Duration
	Logger        *slog.Logger
}

func NewChain(strategies []Strategy, minTextLength int, stageTimeout time.Duration, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	if minTextLength <= 0 {
		minTextLength = 100
	}
	if stageTimeout <= 0 {
		stageTimeout = 120 * time.Second
	}
	return &Chain{
		Strategies:    strategies,
		MinTextLength: minTextLength,
		StageTimeout:  stageTimeout,
		Logger:        logger,
	}
}

// Run returns the winning attempt plus warnings describing rejected
// strategies. Failure is common.ErrAllExtractionFailed.
func (c *Chain) Run(ctx context.Context, doc document.SourceDocument) (Attempt, []string, error) {
	var warnings []string

	for _, s := range c.Strategies {
		start := time.Now()
		att, err := c.attemptOne(ctx, s, doc)
		elapsed := time.Since(start)

		if err != nil {
			if errors.Is(err, common.ErrTimeout) {
				warnings = append(warnings, fmt.Sprintf("%s extraction timed out after %s", s.Name(), c.StageTimeout))
				c.Logger.Warn("chain.strategy_timeout", "strategy", s.Name(), "filename", doc.Filename, "elapsed_ms", elapsed.Milliseconds())
			} else {
				warnings = append(warnings, fmt.Sprintf("%s extraction failed: %v", s.Name(), err))
				c.Logger.Warn("chain.strategy_failed", "strategy", s.Name(), "filename", doc.Filename, "error", err, "elapsed_ms", elapsed.Milliseconds())
			}
			if ctx.Err() != nil {
				// whole-pipeline budget exhausted; no point escalating
				break
			}
			continue
		}

		if !c.accept(s, att) {
			warnings = append(warnings, fmt.Sprintf("%s extraction output rejected (len=%d)", s.Name(), len(att.Text)))
			c.Logger.Info("chain.strategy_rejected",
				"strategy", s.Name(),
				"filename", doc.Filename,
				"text_len", len(att.Text),
				"min_len", c.MinTextLength,
				"elapsed_ms", elapsed.Milliseconds(),
			)
			continue
		}

		c.Logger.Info("chain.strategy_accepted",
			"strategy", s.Name(),
			"filename", doc.Filename,
			"text_len", len(att.Text),
			"pages", att.Pages,
			"confidence", att.Confidence,
			"elapsed_ms", elapsed.Milliseconds(),
		)
		return att, warnings, nil
	}

	return Attempt{}, warnings, common.ErrAllExtractionFailed
}

func (c *Chain) attemptOne(ctx context.Context, s Strategy, doc document.SourceDocument) (Attempt, error) {
	stageCtx, cancel := context.WithTimeout(ctx, c.StageTimeout)
	defer cancel()
	att, err := s.Attempt(stageCtx, doc)
	if err != nil && errors.Is(stageCtx.Err(), context.DeadlineExceeded) {
		return att, fmt.Errorf("%w: %v", common.ErrTimeout, err)
	}
	return att, err
}

// accept applies the per-method quality bar: native output must also pass
// the text-quality predicate, OCR and hybrid are accepted on length alone.
func (c *Chain) accept(s Strategy, att Attempt) bool {
	if len(att.Text) < c.MinTextLength {
		return false
	}
	if att.Method == MethodNative {
		return QualityOK(att.Text)
	}
	return true
}
