package txn

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	reDateSplit  = regexp.MustCompile(`[./-]`)
	reAmountJunk = regexp.MustCompile(`(?i)[$£€]|\b(usd|eur|gbp|cad|aud|chf)\b`)
)

// NormalizeDate parses a raw date token into a UTC calendar date. Field
// order is inferred from which group carries 4 digits; 2-digit years are
// expanded by prefixing "20".
func NormalizeDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	parts := reDateSplit.Split(s, -1)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized date %q", s)
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case len(parts[0]) == 4:
		// YYYY-MM-DD
		year, month, day = nums[0], nums[1], nums[2]
	case len(parts[2]) == 4:
		// DD/MM/YYYY
		day, month, year = nums[0], nums[1], nums[2]
	case len(parts[2]) == 2:
		// DD/MM/YY
		day, month, year = nums[0], nums[1], 2000+nums[2]
	default:
		return time.Time{}, fmt.Errorf("ambiguous date %q", s)
	}

	// Statements from US banks flip day and month; swap only when the
	// month position is impossible.
	if month > 12 && day <= 12 {
		month, day = day, month
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("date out of range %q", s)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != time.Month(month) {
		// time.Date normalized an impossible calendar date (e.g. Feb 30)
		return time.Time{}, fmt.Errorf("invalid calendar date %q", s)
	}
	return t, nil
}

// NormalizeAmount parses a raw money token into a signed decimal. Handles
// thousands separators, decimal commas, currency symbols, and negative
// notation via parentheses or a leading/trailing minus.
func NormalizeAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(reAmountJunk.ReplaceAllString(s, ""))
	s = strings.ReplaceAll(s, " ", "")
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	} else if strings.HasSuffix(s, "-") {
		negative = true
		s = s[:len(s)-1]
	}
	s = strings.TrimPrefix(s, "+")

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		// the later separator is the decimal point
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case hasComma:
		// decimal comma when exactly 1-2 digits follow, thousands otherwise
		idx := strings.LastIndex(s, ",")
		if digits := len(s) - idx - 1; digits >= 1 && digits <= 2 && strings.Count(s, ",") == 1 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognized amount: %w", err)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}
