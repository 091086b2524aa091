package txn

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// anomalyFactor flags amounts this many times above the mean absolute
// amount.
var anomalyFactor = decimal.NewFromInt(5)

// Validator turns a raw candidate list into the accepted list: filter,
// sort, score, and annotate. Anomalies warn but never remove transactions.
type Validator struct {
	MinConfidence float32
	Logger        *slog.Logger
}

func NewValidator(minConfidence float32, logger *slog.Logger) *Validator {
	if minConfidence <= 0 {
		minConfidence = 0.5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{MinConfidence: minConfidence, Logger: logger}
}

// Validate returns the accepted transactions sorted ascending by date, the
// aggregate pipeline confidence in [0,1], and human-readable warnings.
func (v *Validator) Validate(candidates []Transaction) ([]Transaction, float32, []string) {
	var warnings []string

	accepted := make([]Transaction, 0, len(candidates))
	complete := 0
	for _, c := range candidates {
		if c.Valid() {
			accepted = append(accepted, c)
			complete++
		}
	}
	if dropped := len(candidates) - len(accepted); dropped > 0 {
		warnings = append(warnings, fmt.Sprintf("%d candidate transaction(s) dropped for missing date, description, or amount", dropped))
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Date.Before(accepted[j].Date)
	})

	confidence := v.aggregateConfidence(candidates, accepted, complete)
	warnings = append(warnings, v.anomalyWarnings(accepted)...)

	if low := v.countLowConfidence(accepted); low > 0 {
		warnings = append(warnings, fmt.Sprintf("%d transaction(s) below confidence threshold %.2f", low, v.MinConfidence))
	}

	v.Logger.Info("txn.validate",
		"candidates", len(candidates),
		"accepted", len(accepted),
		"confidence", confidence,
		"warnings", len(warnings),
	)
	return accepted, confidence, warnings
}

// aggregateConfidence averages (a) the mean per-transaction confidence and
// (b) the fraction of candidates carrying all three required fields.
func (v *Validator) aggregateConfidence(candidates, accepted []Transaction, complete int) float32 {
	if len(candidates) == 0 || len(accepted) == 0 {
		return 0
	}
	var sum float32
	for _, t := range accepted {
		sum += t.Confidence
	}
	mean := sum / float32(len(accepted))
	completeness := float32(complete) / float32(len(candidates))

	conf := (mean + completeness) / 2
	if conf > 1 {
		conf = 1
	}
	if conf < 0 {
		conf = 0
	}
	return conf
}

func (v *Validator) anomalyWarnings(accepted []Transaction) []string {
	var warnings []string

	// near-duplicate descriptions: exact case-insensitive repeats
	seen := map[string]int{}
	for _, t := range accepted {
		seen[strings.ToLower(t.Description)]++
	}
	for desc, n := range seen {
		if n > 1 {
			warnings = append(warnings, fmt.Sprintf("possible duplicate: %d transactions share description %q", n, desc))
		}
	}

	// outsized amounts: > 5x the mean absolute amount
	if len(accepted) > 1 {
		total := decimal.Zero
		for _, t := range accepted {
			total = total.Add(t.Amount.Abs())
		}
		mean := total.Div(decimal.NewFromInt(int64(len(accepted))))
		if mean.IsPositive() {
			limit := mean.Mul(anomalyFactor)
			for _, t := range accepted {
				if t.Amount.Abs().GreaterThan(limit) {
					warnings = append(warnings, fmt.Sprintf("unusually large amount %s on %s (%s)", t.Amount.StringFixed(2), t.Date.Format("2006-01-02"), t.Description))
				}
			}
		}
	}

	sort.Strings(warnings)
	return warnings
}

func (v *Validator) countLowConfidence(accepted []Transaction) int {
	n := 0
	for _, t := range accepted {
		if t.Confidence < v.MinConfidence {
			n++
		}
	}
	return n
}
