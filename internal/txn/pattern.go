package txn

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finwise-app/statement-ingest/constants"
	"github.com/finwise-app/statement-ingest/internal/classify"
)

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),          // YYYY-MM-DD
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{2,4}\b`),    // DD/MM/YYYY or DD/MM/YY
	regexp.MustCompile(`\b\d{1,2}\.\d{1,2}\.\d{2,4}\b`),  // DD.MM.YYYY
	regexp.MustCompile(`\b\d{1,2}-\d{1,2}-\d{2,4}\b`),    // DD-MM-YYYY
}

var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[$£€]\s?-?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?`),            // currency-prefixed
	regexp.MustCompile(`-?\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?\s?(?:[$£€]|EUR|USD|GBP)`), // currency-suffixed
	regexp.MustCompile(`\(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?\)`),                  // parenthesized
	regexp.MustCompile(`[-+]?\d{1,3}(?:[.,]\d{3})*[.,]\d{2}\b`),                      // plain signed decimal
}

// debitKeywords force a negative sign when the amount token itself carries
// none, keyed by detected language.
var debitKeywords = map[string][]string{
	"en": {"payment", "withdrawal", "purchase", "fee", "charge", "debit", "direct debit"},
	"es": {"pago", "retirada", "compra", "comisión", "comision", "cargo", "recibo"},
	"de": {"zahlung", "abhebung", "kauf", "gebühr", "lastschrift", "abbuchung"},
	"fr": {"paiement", "retrait", "achat", "frais", "prélèvement"},
	"pt": {"pagamento", "levantamento", "compra", "taxa", "débito"},
}

var creditKeywords = map[string][]string{
	"en": {"deposit", "salary", "refund", "interest paid", "credit received"},
	"es": {"ingreso", "nómina", "nomina", "abono", "devolución"},
	"de": {"gutschrift", "gehalt", "erstattung"},
	"fr": {"dépôt", "salaire", "remboursement"},
	"pt": {"depósito", "salário", "reembolso"},
}

// PatternExtractor is the deterministic offline extractor used when the
// completion service is disabled or failed. Pure function of its input:
// identical text yields identical output.
type PatternExtractor struct {
	MinLineLength int
	Logger        *slog.Logger
}

func NewPatternExtractor(minLineLength int, logger *slog.Logger) *PatternExtractor {
	if minLineLength <= 0 {
		minLineLength = 12
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternExtractor{MinLineLength: minLineLength, Logger: logger}
}

// Extract scans the text line by line. A line qualifies only when both a
// date and an amount are found and the line is long enough.
func (p *PatternExtractor) Extract(text string, det classify.DetectionResult) []Transaction {
	var out []Transaction

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) <= p.MinLineLength {
			continue
		}

		dateTok := firstMatch(datePatterns, trimmed)
		if dateTok == "" {
			continue
		}
		// scan for the amount with the date removed: a dotted date like
		// 12.03.2024 would otherwise match the plain-decimal amount pattern
		amountTok := firstMatch(amountPatterns, strings.Replace(trimmed, dateTok, "", 1))
		if amountTok == "" {
			continue
		}

		date, err := NormalizeDate(dateTok)
		if err != nil {
			continue
		}
		amount, err := NormalizeAmount(amountTok)
		if err != nil || amount.IsZero() {
			continue
		}
		amount = applySignKeywords(amount, trimmed, det.Language)

		desc := describeLine(trimmed, dateTok, amountTok)
		if desc == "" {
			continue
		}

		out = append(out, Transaction{
			Date:          date,
			Description:   desc,
			Amount:        amount,
			Category:      string(guessCategory(desc)),
			Confidence:    lineConfidence(trimmed, desc),
			Tags:          []string{"pattern"},
			RawSourceLine: trimmed,
		})
	}

	p.Logger.Info("pattern.extract", "lines", strings.Count(text, "\n")+1, "transactions", len(out), "language", det.Language)
	return out
}

func firstMatch(patterns []*regexp.Regexp, line string) string {
	for _, re := range patterns {
		if m := re.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

// applySignKeywords infers a debit sign from domain keywords when the token
// itself carried no sign. Explicit negatives are never flipped back.
func applySignKeywords(amount decimal.Decimal, line, language string) decimal.Decimal {
	if amount.IsNegative() {
		return amount
	}
	lower := strings.ToLower(line)
	for _, w := range creditKeywords[keywordLang(language)] {
		if strings.Contains(lower, w) {
			return amount
		}
	}
	for _, w := range debitKeywords[keywordLang(language)] {
		if strings.Contains(lower, w) {
			return amount.Neg()
		}
	}
	return amount
}

func keywordLang(language string) string {
	if _, ok := debitKeywords[language]; ok {
		return language
	}
	return "en"
}

// describeLine strips the date and amount tokens, leaving the narrative.
func describeLine(line, dateTok, amountTok string) string {
	s := strings.Replace(line, dateTok, "", 1)
	s = strings.Replace(s, amountTok, "", 1)
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -–|\t")
}

func guessCategory(desc string) constants.Category {
	if cat, ok := constants.Canonicalize(desc); ok {
		return cat
	}
	lower := strings.ToLower(desc)
	for _, probe := range []string{"supermarket", "restaurant", "taxi", "uber", "rent", "salary", "transfer", "fee", "commission", "fuel", "phone", "internet"} {
		if strings.Contains(lower, probe) {
			if cat, ok := constants.Canonicalize(probe); ok {
				return cat
			}
		}
	}
	return constants.Other
}

// lineConfidence is a fixed deterministic score; pattern extraction has no
// model confidence to lean on.
func lineConfidence(line, desc string) float32 {
	conf := float32(0.5)
	if strings.ContainsAny(line, "$£€") {
		conf += 0.1
	}
	if len(desc) >= 8 {
		conf += 0.1
	}
	return conf
}
