package llm

import "context"

// CompletionClient is the interface the pipeline depends on for the hosted
// text-completion service. Implementations must honor ctx cancellation.
type CompletionClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// TransactionRecord is the normalized per-transaction shape we want from the
// completion service. Sign convention: negative = expense, positive = income.
type TransactionRecord struct {
	Date        string   `json:"date"` // YYYY-MM-DD
	Description string   `json:"description"`
	Amount      float64  `json:"amount"`
	Category    string   `json:"category,omitempty"`
	Payee       string   `json:"payee,omitempty"`
	Confidence  float32  `json:"confidence,omitempty"` // 0..1
	Tags        []string `json:"tags,omitempty"`
}

// ExtractionEnvelope is the response shape when a narrative analysis is
// requested alongside the transactions.
type ExtractionEnvelope struct {
	Transactions []TransactionRecord `json:"transactions"`
	Summary      string              `json:"summary,omitempty"`
	Insights     []string            `json:"insights,omitempty"`
	Anomalies    []string            `json:"anomalies,omitempty"`
}

// ClassificationRecord is the two-field JSON object the classifier prompt
// asks for.
type ClassificationRecord struct {
	Bank     string `json:"bank"`
	Language string `json:"language"`
}
