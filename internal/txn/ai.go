package txn

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwise-app/statement-ingest/constants"
	"github.com/finwise-app/statement-ingest/internal/classify"
	"github.com/finwise-app/statement-ingest/internal/common"
	"github.com/finwise-app/statement-ingest/internal/llm"
)

// defaultModelConfidence stands in when the model omits a per-transaction
// confidence.
const defaultModelConfidence = 0.7

// AIExtractor sends the extracted text to the completion service under a
// strict return-only-JSON contract and validates everything that comes back.
// Any failure is recoverable: the orchestrator falls back to the pattern
// extractor.
type AIExtractor struct {
	Client llm.CompletionClient
	Logger *slog.Logger
}

func NewAIExtractor(client llm.CompletionClient, logger *slog.Logger) *AIExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &AIExtractor{Client: client, Logger: logger}
}

// Extract returns the parsed candidates and, when requested, the narrative
// analysis. An empty list with a nil error means the model found no
// transactions; the caller decides whether that warrants a fallback.
func (e *AIExtractor) Extract(ctx context.Context, text string, det classify.DetectionResult, includeAnalysis bool) ([]Transaction, *Analysis, error) {
	start := time.Now()
	system := llm.BuildExtractionSystemPrompt(constants.AsStringSlice(), det.Bank, det.Language, includeAnalysis)
	user := llm.BuildExtractionUserPrompt(text)

	content, err := e.Client.Complete(ctx, system, user)
	if err != nil {
		return nil, nil, fmt.Errorf("completion request: %w", err)
	}

	records, analysis, err := e.parseContent(content, includeAnalysis)
	if err != nil {
		e.Logger.Warn("ai.extract.malformed", "error", err, "content_len", len(content))
		return nil, nil, common.NewAppError("AI_RESPONSE_MALFORMED", "completion response rejected", common.ErrAIResponseMalformed)
	}

	txns := make([]Transaction, 0, len(records))
	for _, rec := range records {
		t, err := recordToTransaction(rec)
		if err != nil {
			e.Logger.Warn("ai.extract.record_skipped", "error", err, "description", rec.Description)
			continue
		}
		txns = append(txns, t)
	}

	e.Logger.Info("ai.extract.ok",
		"records", len(records),
		"transactions", len(txns),
		"has_analysis", analysis != nil,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return txns, analysis, nil
}

// parseContent locates the first balanced JSON block in the untrusted
// response and validates the transaction array against the schema before
// unmarshaling.
func (e *AIExtractor) parseContent(content string, includeAnalysis bool) ([]llm.TransactionRecord, *Analysis, error) {
	schema := llm.BuildTransactionArraySchema(constants.AsStringSlice())

	if includeAnalysis {
		block, err := llm.FirstJSONObject(content)
		if err != nil {
			return nil, nil, err
		}
		var env llm.ExtractionEnvelope
		if err := json.Unmarshal([]byte(block), &env); err != nil {
			return nil, nil, fmt.Errorf("decode envelope: %w", err)
		}
		arr, err := json.Marshal(env.Transactions)
		if err != nil {
			return nil, nil, fmt.Errorf("re-encode transactions: %w", err)
		}
		if err := llm.ValidateJSONAgainstSchema(schema, arr); err != nil {
			return nil, nil, err
		}
		return env.Transactions, &Analysis{
			Summary:   env.Summary,
			Insights:  env.Insights,
			Anomalies: env.Anomalies,
		}, nil
	}

	block, err := llm.FirstJSONArray(content)
	if err != nil {
		return nil, nil, err
	}
	if err := llm.ValidateJSONAgainstSchema(schema, []byte(block)); err != nil {
		return nil, nil, err
	}
	var records []llm.TransactionRecord
	if err := json.Unmarshal([]byte(block), &records); err != nil {
		return nil, nil, fmt.Errorf("decode transactions: %w", err)
	}
	return records, nil, nil
}

func recordToTransaction(rec llm.TransactionRecord) (Transaction, error) {
	date, err := NormalizeDate(rec.Date)
	if err != nil {
		return Transaction{}, err
	}

	conf := rec.Confidence
	if conf <= 0 {
		conf = defaultModelConfidence
	}
	if conf > 1 {
		conf = 1
	}

	cat, _ := constants.Canonicalize(rec.Category)

	return Transaction{
		Date:        date,
		Description: rec.Description,
		Amount:      decimal.NewFromFloat(rec.Amount),
		Category:    string(cat),
		Payee:       rec.Payee,
		Confidence:  conf,
		Tags:        rec.Tags,
	}, nil
}
