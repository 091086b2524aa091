package txn

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string // YYYY-MM-DD
		wantErr bool
	}{
		{name: "iso", input: "2024-03-12", want: "2024-03-12"},
		{name: "european slashes", input: "12/03/2024", want: "2024-03-12"},
		{name: "dotted german", input: "12.03.2024", want: "2024-03-12"},
		{name: "dashes", input: "12-03-2024", want: "2024-03-12"},
		{name: "two digit year", input: "12/03/24", want: "2024-03-12"},
		{name: "us order detected by impossible month", input: "03/25/2024", want: "2024-03-25"},
		{name: "whitespace tolerated", input: " 2024-03-12 ", want: "2024-03-12"},
		{name: "feb 30 rejected", input: "30/02/2024", wantErr: true},
		{name: "month 13 both positions", input: "13/13/2024", wantErr: true},
		{name: "not a date", input: "yesterday", wantErr: true},
		{name: "two fields only", input: "03/2024", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain", input: "45.99", want: "45.99"},
		{name: "negative", input: "-45.99", want: "-45.99"},
		{name: "trailing minus", input: "45.99-", want: "-45.99"},
		{name: "parentheses", input: "(1,250.00)", want: "-1250"},
		{name: "dollar prefix", input: "$2,000.00", want: "2000"},
		{name: "euro suffix", input: "45,99 €", want: "45.99"},
		{name: "decimal comma", input: "1.234,56", want: "1234.56"},
		{name: "thousands comma", input: "1,234.56", want: "1234.56"},
		{name: "comma thousands no decimals", input: "12,345", want: "12345"},
		{name: "single decimal comma", input: "45,9", want: "45.9"},
		{name: "currency code", input: "100.00 EUR", want: "100"},
		{name: "explicit plus", input: "+250.00", want: "250"},
		{name: "empty", input: "  ", wantErr: true},
		{name: "words", input: "forty five", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(mustDecimal(t, tt.want)), "got %s want %s", got, tt.want)
		})
	}
}
