package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/finwise-app/statement-ingest/internal/classify"
	"github.com/finwise-app/statement-ingest/internal/common"
	"github.com/finwise-app/statement-ingest/internal/document"
	"github.com/finwise-app/statement-ingest/internal/extract"
	"github.com/finwise-app/statement-ingest/internal/txn"
)

// ProgressFunc receives stage transitions with a monotonically increasing
// percentage and a human-readable label.
type ProgressFunc func(stage string, percent int)

// Options tune a single Process call.
type Options struct {
	Progress        ProgressFunc
	IncludeAnalysis bool
}

// Orchestrator sequences all pipeline stages, enforces timeouts, reports
// progress, and assembles the final result. It never panics or returns an
// error across its boundary: every failure becomes an entry in the result's
// errors or warnings.
type Orchestrator struct {
	cfg          common.PipelineConfig
	validator    *document.Validator
	chain        *extract.Chain
	classifier   *classify.Classifier
	ai           *txn.AIExtractor // nil when the completion service is disabled
	pattern      *txn.PatternExtractor
	txnValidator *txn.Validator
	logger       *slog.Logger
}

func NewOrchestrator(
	cfg common.PipelineConfig,
	validator *document.Validator,
	chain *extract.Chain,
	classifier *classify.Classifier,
	ai *txn.AIExtractor,
	pattern *txn.PatternExtractor,
	txnValidator *txn.Validator,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		cfg:          cfg,
		validator:    validator,
		chain:        chain,
		classifier:   classifier,
		ai:           ai,
		pattern:      pattern,
		txnValidator: txnValidator,
		logger:       logger,
	}
}

// Process runs the full pipeline for one document. The document is owned by
// the caller; nothing retains it after return.
func (o *Orchestrator) Process(ctx context.Context, doc document.SourceDocument, opts Options) (res Result) {
	runID := uuid.New().String()
	start := time.Now()
	progress := newProgressReporter(opts.Progress)

	ctx, cancel := context.WithTimeout(ctx, o.cfg.PipelineTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("pipeline.panic", "run_id", runID, "panic", r)
			res = Result{
				Success:  false,
				Errors:   []string{fmt.Sprintf("internal pipeline failure: %v", r)},
				Metadata: o.baseMetadata(doc),
			}
		}
	}()

	o.logger.Info("pipeline.start",
		"run_id", runID,
		"filename", doc.Filename,
		"size_bytes", doc.SizeBytes,
		"declared_type", string(doc.DeclaredType),
	)

	res.Metadata = o.baseMetadata(doc)

	// 1. validation — the only fatal, non-retryable stage
	progress.report("validating file", 5)
	if errs := o.validator.Validate(doc); len(errs) > 0 {
		res.Errors = errs
		res.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
		progress.report("failed", 100)
		o.logger.Warn("pipeline.rejected", "run_id", runID, "errors", len(errs))
		return res
	}

	// 2. text extraction — native, then ocr, then hybrid
	progress.report("extracting text", 15)
	attempt, chainWarnings, err := o.chain.Run(ctx, doc)
	res.Warnings = append(res.Warnings, chainWarnings...)
	if hasTimeoutWarning(chainWarnings) {
		res.Warnings = append(res.Warnings, "extraction timed out; consider re-exporting the statement as CSV from your bank")
	}
	if err != nil {
		if ctx.Err() != nil {
			res.Errors = append(res.Errors, "pipeline timed out before any extraction method produced usable text")
		} else {
			res.Errors = append(res.Errors, "all extraction methods failed: the document may be encrypted, corrupted, or contain no readable content")
		}
		res.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()
		progress.report("failed", 100)
		o.logger.Error("pipeline.extraction_failed", "run_id", runID, "error", err)
		return res
	}
	res.RawText = attempt.Text
	res.Metadata.Method = string(attempt.Method)
	res.Metadata.PageCount = attempt.Pages
	res.Metadata.Language = attempt.Language

	// 3. classification — bank + language, computed once
	progress.report("detecting institution", 55)
	det := o.classifyWithTimeout(ctx, attempt.Text)
	res.Metadata.BankDetected = det.Bank
	res.Metadata.Language = det.Language

	// 4. transaction extraction — completion service, pattern fallback
	progress.report("extracting transactions", 75)
	candidates, analysis := o.extractTransactions(ctx, runID, attempt.Text, det, opts.IncludeAnalysis, &res)
	res.Analysis = analysis

	// 5. transaction validation
	progress.report("validating transactions", 90)
	accepted, confidence, warnings := o.txnValidator.Validate(candidates)
	res.Transactions = accepted
	res.Warnings = append(res.Warnings, warnings...)
	res.Metadata.Confidence = confidence
	res.Metadata.ProcessingTimeMs = time.Since(start).Milliseconds()

	if len(accepted) == 0 {
		res.Errors = append(res.Errors, "no transactions could be extracted from the document")
		progress.report("failed", 100)
		o.logger.Warn("pipeline.no_transactions", "run_id", runID)
		return res
	}
	if len(accepted) < o.cfg.RetryThreshold && attempt.Method == extract.MethodNative {
		res.Warnings = append(res.Warnings, fmt.Sprintf("only %d transaction(s) extracted; retrying with OCR may find more", len(accepted)))
	}

	res.Success = true
	progress.report("done", 100)
	o.logger.Info("pipeline.done",
		"run_id", runID,
		"transactions", len(accepted),
		"method", res.Metadata.Method,
		"confidence", confidence,
		"bank", det.Bank,
		"language", det.Language,
		"elapsed_ms", res.Metadata.ProcessingTimeMs,
	)
	return res
}

func (o *Orchestrator) baseMetadata(doc document.SourceDocument) Metadata {
	return Metadata{
		FileName: doc.Filename,
		FileType: string(doc.DeclaredType),
		FileSize: doc.SizeBytes,
	}
}

func (o *Orchestrator) classifyWithTimeout(ctx context.Context, text string) classify.DetectionResult {
	stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
	defer cancel()
	return o.classifier.Classify(stageCtx, text)
}

// extractTransactions prefers the completion service and degrades to the
// deterministic pattern extractor on any failure or empty result. Failures
// surface as warnings, never as fatal errors.
func (o *Orchestrator) extractTransactions(ctx context.Context, runID, text string, det classify.DetectionResult, includeAnalysis bool, res *Result) ([]txn.Transaction, *txn.Analysis) {
	if o.ai != nil {
		stageCtx, cancel := context.WithTimeout(ctx, o.cfg.StageTimeout)
		defer cancel()

		candidates, analysis, err := o.ai.Extract(stageCtx, text, det, includeAnalysis)
		switch {
		case err == nil && len(candidates) > 0:
			return candidates, analysis
		case err == nil:
			res.Warnings = append(res.Warnings, "completion service found no transactions; falling back to pattern extraction")
			o.logger.Warn("pipeline.ai_empty", "run_id", runID)
		case errors.Is(err, common.ErrAIResponseMalformed):
			res.Warnings = append(res.Warnings, "completion service returned a malformed response; falling back to pattern extraction")
			o.logger.Warn("pipeline.ai_malformed", "run_id", runID, "error", err)
		default:
			res.Warnings = append(res.Warnings, "completion service unavailable; falling back to pattern extraction")
			o.logger.Warn("pipeline.ai_failed", "run_id", runID, "error", err)
		}
	}
	return o.pattern.Extract(text, det), nil
}

func hasTimeoutWarning(warnings []string) bool {
	for _, w := range warnings {
		if strings.Contains(w, "timed out") {
			return true
		}
	}
	return false
}

// progressReporter keeps the reported percentage monotonic even when stages
// are skipped or re-entered.
type progressReporter struct {
	fn   ProgressFunc
	last int
}

func newProgressReporter(fn ProgressFunc) *progressReporter {
	return &progressReporter{fn: fn}
}

func (p *progressReporter) report(stage string, percent int) {
	if p.fn == nil {
		return
	}
	if percent < p.last {
		percent = p.last
	}
	p.last = percent
	p.fn(stage, percent)
}
