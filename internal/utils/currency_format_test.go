package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatWithPrecision(t *testing.T) {
	tests := []struct {
		name      string
		amount    string
		precision int
		want      string
	}{
		{"rounds half up", "12.345", 2, "12.35"},
		{"pads zeros", "7", 2, "7.00"},
		{"no fraction", "12.6", 0, "13"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatWithPrecision(decimal.RequireFromString(tt.amount), tt.precision))
		})
	}
}

func TestFormatWithCurrencyPrecision(t *testing.T) {
	assert.Equal(t, "12.35", FormatWithCurrencyPrecision(decimal.RequireFromString("12.3456"), "USD"))
	assert.Equal(t, "12", FormatWithCurrencyPrecision(decimal.RequireFromString("12.3456"), "JPY"))
	assert.Equal(t, "1.50", FormatWithCurrencyPrecision(decimal.RequireFromString("1.5"), "NOPE"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatAmount(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "-$10.00", FormatAmount(decimal.NewFromInt(-10), "USD"))
	assert.Equal(t, "99.90", FormatAmount(decimal.RequireFromString("99.9"), "NOPE"))
}
