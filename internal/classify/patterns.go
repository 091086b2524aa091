package classify

import "strings"

// bankPatterns maps lowercase substrings found in statement text to the
// canonical institution name.
var bankPatterns = map[string]string{
	"chase":            "Chase",
	"jpmorgan":         "Chase",
	"bank of america":  "Bank of America",
	"wells fargo":      "Wells Fargo",
	"citibank":         "Citibank",
	"capital one":      "Capital One",
	"barclays":         "Barclays",
	"hsbc":             "HSBC",
	"lloyds":           "Lloyds",
	"santander":        "Santander",
	"bbva":             "BBVA",
	"caixabank":        "CaixaBank",
	"deutsche bank":    "Deutsche Bank",
	"commerzbank":      "Commerzbank",
	"n26":              "N26",
	"revolut":          "Revolut",
	"monzo":            "Monzo",
	"ing bank":         "ING",
	"ing direct":       "ING",
	"bnp paribas":      "BNP Paribas",
	"société générale": "Société Générale",
	"societe generale": "Société Générale",
}

// languageKeywords maps ISO 639-1 codes to financial keywords that only
// appear in statements written in that language.
var languageKeywords = map[string][]string{
	"es": {"saldo", "cuenta", "fecha", "importe", "retirada", "ingreso", "transferencia", "extracto"},
	"de": {"kontoauszug", "saldo", "betrag", "buchung", "überweisung", "lastschrift", "umsatz"},
	"fr": {"solde", "compte", "montant", "virement", "prélèvement", "relevé"},
	"pt": {"saldo", "conta", "valor", "levantamento", "transferência", "extrato"},
}

// detectBankByPattern scans for known institution name strings. When several
// institutions appear (transfers often name a counterparty bank) the earliest
// mention wins; the issuer heads the statement.
func detectBankByPattern(text string) string {
	lower := strings.ToLower(text)
	best := "unknown"
	bestIdx := len(lower)
	bestPattern := ""
	for pattern, name := range bankPatterns {
		idx := strings.Index(lower, pattern)
		if idx < 0 || idx > bestIdx {
			continue
		}
		if idx < bestIdx || len(pattern) > len(bestPattern) {
			bestIdx, bestPattern, best = idx, pattern, name
		}
	}
	return best
}

// detectLanguageByKeywords counts language-specific keyword hits and picks
// the language with the most; English is the default.
func detectLanguageByKeywords(text string) string {
	lower := strings.ToLower(text)
	best := "en"
	bestHits := 1 // require at least two hits to leave the default
	for lang, words := range languageKeywords {
		hits := 0
		for _, w := range words {
			if strings.Contains(lower, w) {
				hits++
			}
		}
		if hits > bestHits {
			best = lang
			bestHits = hits
		}
	}
	return best
}
