package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finwise-app/statement-ingest/internal/common"
	"github.com/finwise-app/statement-ingest/internal/document"
)

type stubStrategy struct {
	name    string
	attempt Attempt
	err     error
	calls   int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Attempt(ctx context.Context, doc document.SourceDocument) (Attempt, error) {
	s.calls++
	if s.err != nil {
		return Attempt{}, s.err
	}
	return s.attempt, nil
}

var goodText = strings.Repeat("12/03/2024 GROCERY STORE 45.99\n", 20)

func testDoc() document.SourceDocument {
	return document.NewSourceDocument([]byte("%PDF-"), "statement.pdf", "")
}

func TestChainAcceptsNativeFirst(t *testing.T) {
	native := &stubStrategy{name: "native", attempt: Attempt{Method: MethodNative, Text: goodText, Pages: 2}}
	ocrStub := &stubStrategy{name: "ocr", attempt: Attempt{Method: MethodOCR, Text: goodText}}

	c := NewChain([]Strategy{native, ocrStub}, 100, time.Second, nil)
	att, warnings, err := c.Run(context.Background(), testDoc())

	require.NoError(t, err)
	assert.Equal(t, MethodNative, att.Method)
	assert.Empty(t, warnings)
	assert.Equal(t, 0, ocrStub.calls, "ocr must not run when native output is good")
}

func TestChainEscalatesOnShortNativeText(t *testing.T) {
	native := &stubStrategy{name: "native", attempt: Attempt{Method: MethodNative, Text: "too short"}}
	ocrStub := &stubStrategy{name: "ocr", attempt: Attempt{Method: MethodOCR, Text: goodText}}

	c := NewChain([]Strategy{native, ocrStub}, 100, time.Second, nil)
	att, warnings, err := c.Run(context.Background(), testDoc())

	require.NoError(t, err)
	assert.Equal(t, MethodOCR, att.Method)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "rejected")
}

func TestChainEscalatesOnGarbageNativeText(t *testing.T) {
	// long enough, but fails the quality predicate
	garbage := strings.Repeat("\x00\x01\x02\x03", 100)
	native := &stubStrategy{name: "native", attempt: Attempt{Method: MethodNative, Text: garbage}}
	ocrStub := &stubStrategy{name: "ocr", attempt: Attempt{Method: MethodOCR, Text: goodText}}

	c := NewChain([]Strategy{native, ocrStub}, 100, time.Second, nil)
	att, _, err := c.Run(context.Background(), testDoc())

	require.NoError(t, err)
	assert.Equal(t, MethodOCR, att.Method)
}

func TestChainAllFail(t *testing.T) {
	native := &stubStrategy{name: "native", err: errors.New("no text layer")}
	ocrStub := &stubStrategy{name: "ocr", err: errors.New("tesseract missing")}

	c := NewChain([]Strategy{native, ocrStub}, 100, time.Second, nil)
	_, warnings, err := c.Run(context.Background(), testDoc())

	require.ErrorIs(t, err, common.ErrAllExtractionFailed)
	assert.Len(t, warnings, 2)
}

func TestChainStrategyTimeout(t *testing.T) {
	slow := &stubStrategy{name: "native"}
	slowWrapped := strategyFunc(func(ctx context.Context, doc document.SourceDocument) (Attempt, error) {
		slow.calls++
		<-ctx.Done()
		return Attempt{}, ctx.Err()
	})
	ocrStub := &stubStrategy{name: "ocr", attempt: Attempt{Method: MethodOCR, Text: goodText}}

	c := NewChain([]Strategy{named{"native", slowWrapped}, ocrStub}, 100, 20*time.Millisecond, nil)
	att, warnings, err := c.Run(context.Background(), testDoc())

	require.NoError(t, err)
	assert.Equal(t, MethodOCR, att.Method)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "timed out")
}

type strategyFunc func(ctx context.Context, doc document.SourceDocument) (Attempt, error)

type named struct {
	name string
	fn   strategyFunc
}

func (n named) Name() string { return n.name }

func (n named) Attempt(ctx context.Context, doc document.SourceDocument) (Attempt, error) {
	return n.fn(ctx, doc)
}
