package pipeline

import (
	"github.com/finwise-app/statement-ingest/internal/txn"
)

// Metadata describes how a pipeline run went; every field is copied from
// the winning extraction attempt and the detection stage.
type Metadata struct {
	FileName         string
	FileType         string
	FileSize         int64
	PageCount        int
	ProcessingTimeMs int64
	Confidence       float32
	Method           string // native | ocr | hybrid
	Language         string
	BankDetected     string
}

// Result is the immutable outcome of one pipeline invocation.
type Result struct {
	Success      bool
	Transactions []txn.Transaction
	Metadata     Metadata
	Errors       []string
	Warnings     []string
	RawText      string
	Analysis     *txn.Analysis
}
