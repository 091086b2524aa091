package extract

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reDate     = regexp.MustCompile(`\b\d{1,4}[./-]\d{1,2}[./-]\d{1,4}\b`)
	reCurr     = regexp.MustCompile(`\b(usd|eur|gbp|cad|aud|inr|jpy)\b|[$£€]`)
	reAmount   = regexp.MustCompile(`\b\d{1,3}(,\d{3})*(\.\d{2})\b|\b\d+[.,]\d{2}\b`)
	reKeywords = regexp.MustCompile(`\b(balance|statement|account|transaction|debit|credit|saldo|cuenta|kontoauszug|umsatz)\b`)
)

func hasDatePattern(s string) bool      { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool  { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool    { return reAmount.MatchString(s) }
func hasStatementKeywords(s string) bool { return reKeywords.MatchString(s) }

// HeuristicConfidence scores extracted text on statement-domain artifacts.
// Weighted sum capped at 1.0.
func HeuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasStatementKeywords(txtL) {
		score += 0.2
	}
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if len(txt) > 300 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// QualityOK reports whether text looks like genuine extracted content rather
// than binary noise or a broken text layer: low ratio of non-printable runes
// and a sufficient share of alphanumerics.
func QualityOK(txt string) bool {
	if txt == "" {
		return false
	}
	var printable, alnum, total int
	for _, r := range txt {
		total++
		if r == '\n' || r == '\t' || r == '\f' || unicode.IsPrint(r) {
			printable++
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	if total == 0 {
		return false
	}
	printableRatio := float64(printable) / float64(total)
	alnumRatio := float64(alnum) / float64(total)
	return printableRatio >= 0.85 && alnumRatio >= 0.30
}
