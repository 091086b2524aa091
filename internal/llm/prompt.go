package llm

import (
	"strings"
)

// classifySampleLen caps the text sample sent for classification; the first
// page of a statement names the institution, the rest is noise and tokens.
const classifySampleLen = 1000

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"de": "German",
	"fr": "French",
	"pt": "Portuguese",
}

// BuildExtractionSystemPrompt composes the system message for transaction
// extraction: strict JSON-only contract, sign convention, fixed category
// enum, and locale hints from the detection stage.
func BuildExtractionSystemPrompt(allowedCategories []string, bank, language string, includeAnalysis bool) string {
	var catLine string
	if len(allowedCategories) > 0 {
		catLine = "If you include a 'category' it MUST be exactly one of the allowed enum; if uncertain, use 'Other'. " +
			"Allowed categories (enum): " + strings.Join(allowedCategories, ", ") + ". "
	} else {
		catLine = "If you include a 'category' it must be a short, sensible label. "
	}

	parts := []string{
		"You are a bank statement parser. Extract EVERY transaction from the provided statement text.",
		"Return ONLY JSON. No prose, no markdown, no code fences.",
		"Each transaction is an object with fields: date, description, amount, category, payee, confidence, tags.",
		"Use ISO-8601 dates (YYYY-MM-DD).",
		"Amounts are signed numbers: NEGATIVE for expenses/debits, POSITIVE for income/credits.",
		catLine,
		"Set 'confidence' between 0 and 1 reflecting how certain you are about each transaction.",
		"Never output null. If a field is not present, omit it.",
	}

	if bank != "" {
		parts = append(parts, "The statement was issued by "+bank+".")
	}
	if name, ok := languageNames[strings.ToLower(language)]; ok && strings.ToLower(language) != "en" {
		parts = append(parts, "The statement text is in "+name+"; descriptions may stay in the original language.")
	}

	if includeAnalysis {
		parts = append(parts,
			"Respond with a single JSON object: {\"transactions\": [...], \"summary\": \"...\", \"insights\": [...], \"anomalies\": [...]}.",
			"Keep the summary to two or three sentences about overall spending.")
	} else {
		parts = append(parts, "Respond with a single JSON array of transaction objects.")
	}
	return strings.Join(parts, " ")
}

// BuildExtractionUserPrompt packages the statement text.
func BuildExtractionUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Statement text:\n")
	b.WriteString(text)
	return b.String()
}

// BuildClassifySystemPrompt is the strict contract for bank/language
// detection.
func BuildClassifySystemPrompt() string {
	return strings.Join([]string{
		"You identify the issuing institution and language of bank statements.",
		"Return ONLY a JSON object with exactly two string fields: \"bank\" and \"language\".",
		"\"language\" is a two-letter ISO 639-1 code.",
		"If the institution cannot be determined, use \"unknown\" for \"bank\".",
	}, " ")
}

// BuildClassifyUserPrompt sends a bounded sample of the extracted text.
func BuildClassifyUserPrompt(text string) string {
	sample := text
	if len(sample) > classifySampleLen {
		sample = sample[:classifySampleLen]
	}
	return "Statement sample:\n" + sample
}
