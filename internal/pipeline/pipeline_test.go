package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwise-app/statement-ingest/internal/classify"
	"github.com/finwise-app/statement-ingest/internal/common"
	"github.com/finwise-app/statement-ingest/internal/document"
	"github.com/finwise-app/statement-ingest/internal/extract"
	"github.com/finwise-app/statement-ingest/internal/txn"
)

type fakeStrategy struct {
	name  string
	att   extract.Attempt
	err   error
	calls int
	panic bool
}

func (s *fakeStrategy) Name() string { return s.name }

func (s *fakeStrategy) Attempt(ctx context.Context, doc document.SourceDocument) (extract.Attempt, error) {
	s.calls++
	if s.panic {
		panic("strategy exploded")
	}
	return s.att, s.err
}

type fakeCompletion struct {
	content string
	err     error
}

func (c *fakeCompletion) Complete(ctx context.Context, system, user string) (string, error) {
	return c.content, c.err
}

func testConfig() common.PipelineConfig {
	return common.PipelineConfig{
		MaxFileSize:     20 << 20,
		MinTextLength:   100,
		StageTimeout:    2 * time.Second,
		PipelineTimeout: 5 * time.Second,
		MinConfidence:   0.5,
		RetryThreshold:  10,
	}
}

func newTestOrchestrator(cfg common.PipelineConfig, strategies []extract.Strategy, ai *txn.AIExtractor) *Orchestrator {
	return NewOrchestrator(
		cfg,
		document.NewValidator(cfg.MaxFileSize, nil),
		extract.NewChain(strategies, cfg.MinTextLength, cfg.StageTimeout, nil),
		classify.NewClassifier(nil, nil),
		ai,
		txn.NewPatternExtractor(0, nil),
		txn.NewValidator(cfg.MinConfidence, nil),
		nil,
	)
}

// statementText builds n plausible transaction lines plus a header.
func statementText(n int) string {
	lines := []string{
		"CHASE BANK ACCOUNT STATEMENT",
		"Date        Description              Amount",
	}
	for i := 1; i <= n; i++ {
		lines = append(lines, fmt.Sprintf("%02d/03/2024  MERCHANT NUMBER %02d       -%d.50", i, i, 10+i))
	}
	return strings.Join(lines, "\n")
}

func pdfDoc(content []byte) document.SourceDocument {
	return document.NewSourceDocument(content, "statement.pdf", "")
}

func TestProcessNativeHappyPath(t *testing.T) {
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: statementText(12), Pages: 2, Confidence: 0.8},
	}
	ocr := &fakeStrategy{name: "ocr"}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native, ocr}, nil)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Transactions, 12)
	assert.Equal(t, "native", res.Metadata.Method)
	assert.Equal(t, 2, res.Metadata.PageCount)
	assert.Equal(t, "Chase", res.Metadata.BankDetected)
	assert.GreaterOrEqual(t, res.Metadata.Confidence, float32(0.5))
	assert.LessOrEqual(t, res.Metadata.Confidence, float32(1))
	assert.Zero(t, ocr.calls, "chain must not escalate past an accepted strategy")

	// transactions arrive sorted ascending by date
	for i := 1; i < len(res.Transactions); i++ {
		assert.False(t, res.Transactions[i].Date.Before(res.Transactions[i-1].Date))
	}
}

func TestProcessEmptyFile(t *testing.T) {
	native := &fakeStrategy{name: "native"}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, nil)

	res := o.Process(context.Background(), pdfDoc(nil), Options{})

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "empty file")
	assert.Zero(t, native.calls, "validation failure must short-circuit extraction")
}

func TestProcessAllExtractionFailed(t *testing.T) {
	native := &fakeStrategy{name: "native", err: errors.New("pdftotext: exit status 1")}
	ocr := &fakeStrategy{name: "ocr", err: errors.New("tesseract: exit status 1")}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native, ocr}, nil)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "all extraction methods failed")
	assert.Len(t, res.Warnings, 2)
}

func TestProcessAIMalformedFallsBackToPattern(t *testing.T) {
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: statementText(12), Pages: 1},
	}
	ai := txn.NewAIExtractor(&fakeCompletion{content: "I cannot produce JSON today."}, nil)
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, ai)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.True(t, res.Success, "pattern fallback keeps the run alive")
	assert.Len(t, res.Transactions, 12)
	var found bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "malformed response") {
			found = true
		}
	}
	assert.True(t, found, "expected a fallback warning, got %v", res.Warnings)
}

func TestProcessAIEmptyFallsBackToPattern(t *testing.T) {
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: statementText(12), Pages: 1},
	}
	ai := txn.NewAIExtractor(&fakeCompletion{content: "[]"}, nil)
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, ai)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.True(t, res.Success)
	assert.Len(t, res.Transactions, 12)
	var found bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "found no transactions") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestProcessDuplicatesKeptAndFlagged(t *testing.T) {
	text := strings.Join([]string{
		"ACCOUNT STATEMENT FOR MARCH WITH RECURRING CHARGES",
		"12/03/2024  STREAMING SUBSCRIPTION   -12.99",
		"19/03/2024  STREAMING SUBSCRIPTION   -12.99",
		"20/03/2024  GROCERY SUPERMARKET      -80.00",
	}, "\n")
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: text, Pages: 1},
	}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, nil)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.True(t, res.Success)
	assert.Len(t, res.Transactions, 3, "duplicates are flagged, never removed")
	var dup, retry bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "possible duplicate") {
			dup = true
		}
		if strings.Contains(w, "retrying with OCR may find more") {
			retry = true
		}
	}
	assert.True(t, dup)
	assert.True(t, retry, "3 native transactions sit under the retry threshold")
}

func TestProcessNoTransactions(t *testing.T) {
	text := strings.Repeat("This page intentionally contains narrative text only, with no tabular data at all. ", 3)
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: text, Pages: 1},
	}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, nil)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "no transactions could be extracted")
}

func TestProcessProgressMonotonic(t *testing.T) {
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: statementText(12), Pages: 1},
	}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, nil)

	var percents []int
	o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{
		Progress: func(stage string, percent int) { percents = append(percents, percent) },
	})

	require.NotEmpty(t, percents)
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1])
	}
	assert.Equal(t, 100, percents[len(percents)-1])
}

type slowStrategy struct{ name string }

func (s slowStrategy) Name() string { return s.name }

func (s slowStrategy) Attempt(ctx context.Context, doc document.SourceDocument) (extract.Attempt, error) {
	<-ctx.Done()
	return extract.Attempt{}, ctx.Err()
}

func TestProcessOCRTimeoutRecommendsCSV(t *testing.T) {
	cfg := testConfig()
	cfg.StageTimeout = 20 * time.Millisecond
	native := &fakeStrategy{
		name: "native",
		att:  extract.Attempt{Method: extract.MethodNative, Text: "too short for the bar"},
	}
	o := newTestOrchestrator(cfg, []extract.Strategy{native, slowStrategy{name: "ocr"}}, nil)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.False(t, res.Success)
	var hint bool
	for _, w := range res.Warnings {
		if strings.Contains(w, "re-exporting the statement as CSV") {
			hint = true
		}
	}
	assert.True(t, hint, "expected a CSV re-export hint, got %v", res.Warnings)
}

func TestProcessRecoversFromPanic(t *testing.T) {
	native := &fakeStrategy{name: "native", panic: true}
	o := newTestOrchestrator(testConfig(), []extract.Strategy{native}, nil)

	res := o.Process(context.Background(), pdfDoc([]byte("%PDF-1.4")), Options{})

	assert.False(t, res.Success)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0], "internal pipeline failure")
	assert.Equal(t, "statement.pdf", res.Metadata.FileName)
}
