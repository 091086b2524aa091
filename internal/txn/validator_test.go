package txn

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(date string, desc string, amount string, conf float32) Transaction {
	d, _ := time.Parse("2006-01-02", date)
	return Transaction{
		Date:        d,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Confidence:  conf,
	}
}

func TestValidateFiltersInvalid(t *testing.T) {
	v := NewValidator(0.5, nil)

	candidates := []Transaction{
		tx("2024-03-12", "GROCERY", "-45.99", 0.9),
		{Description: "no date", Amount: decimal.RequireFromString("-1"), Confidence: 0.9},
		tx("2024-03-13", "", "-2.00", 0.9),
		tx("2024-03-14", "ZERO AMOUNT", "0", 0.9),
	}

	accepted, _, warnings := v.Validate(candidates)

	require.Len(t, accepted, 1)
	assert.Equal(t, "GROCERY", accepted[0].Description)
	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "3 candidate transaction(s) dropped")
}

func TestValidateSortsAscending(t *testing.T) {
	v := NewValidator(0.5, nil)

	accepted, _, _ := v.Validate([]Transaction{
		tx("2024-03-20", "C", "-3.00", 0.8),
		tx("2024-03-10", "A", "-1.00", 0.8),
		tx("2024-03-15", "B", "-2.00", 0.8),
	})

	require.Len(t, accepted, 3)
	assert.Equal(t, "A", accepted[0].Description)
	assert.Equal(t, "B", accepted[1].Description)
	assert.Equal(t, "C", accepted[2].Description)
}

func TestValidateDuplicatesFlaggedNotRemoved(t *testing.T) {
	v := NewValidator(0.5, nil)

	accepted, _, warnings := v.Validate([]Transaction{
		tx("2024-03-12", "Netflix Subscription", "-12.99", 0.8),
		tx("2024-04-12", "NETFLIX SUBSCRIPTION", "-12.99", 0.8),
	})

	assert.Len(t, accepted, 2)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "possible duplicate")
	assert.Contains(t, warnings[0], "netflix subscription")
}

func TestValidateAnomalousAmounts(t *testing.T) {
	v := NewValidator(0.5, nil)

	candidates := []Transaction{
		tx("2024-03-10", "COFFEE", "-4.00", 0.8),
		tx("2024-03-11", "LUNCH", "-12.00", 0.8),
		tx("2024-03-12", "GROCERIES", "-60.00", 0.8),
		tx("2024-03-14", "FUEL", "-40.00", 0.8),
		tx("2024-03-15", "PHARMACY", "-18.00", 0.8),
		tx("2024-03-16", "CINEMA", "-24.00", 0.8),
		tx("2024-03-17", "PARKING", "-6.00", 0.8),
		tx("2024-03-13", "CAR PURCHASE", "-9000.00", 0.8),
	}
	accepted, _, warnings := v.Validate(candidates)

	assert.Len(t, accepted, len(candidates), "anomalies warn, never drop")
	var found bool
	for _, w := range warnings {
		if strings.Contains(w, "unusually large amount") && strings.Contains(w, "CAR PURCHASE") {
			found = true
		}
	}
	assert.True(t, found, "expected an outsized-amount warning, got %v", warnings)
}

func TestValidateConfidence(t *testing.T) {
	v := NewValidator(0.5, nil)

	t.Run("all complete and confident", func(t *testing.T) {
		_, conf, _ := v.Validate([]Transaction{
			tx("2024-03-12", "A", "-1.00", 0.8),
			tx("2024-03-13", "B", "-2.00", 0.6),
		})
		// (mean 0.7 + completeness 1.0) / 2
		assert.InDelta(t, 0.85, float64(conf), 0.001)
	})

	t.Run("empty input", func(t *testing.T) {
		accepted, conf, _ := v.Validate(nil)
		assert.Empty(t, accepted)
		assert.Zero(t, conf)
	})

	t.Run("bounded to one", func(t *testing.T) {
		_, conf, _ := v.Validate([]Transaction{tx("2024-03-12", "A", "-1.00", 1.0)})
		assert.LessOrEqual(t, conf, float32(1))
		assert.GreaterOrEqual(t, conf, float32(0))
	})
}

func TestValidateLowConfidenceWarning(t *testing.T) {
	v := NewValidator(0.5, nil)

	_, _, warnings := v.Validate([]Transaction{
		tx("2024-03-12", "A", "-1.00", 0.2),
		tx("2024-03-13", "B", "-2.00", 0.9),
	})

	var found bool
	for _, w := range warnings {
		if strings.Contains(w, "below confidence threshold") {
			found = true
		}
	}
	assert.True(t, found)
}
