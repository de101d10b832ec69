package payments

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTransactionID(t *testing.T) {
	cases := map[string]string{
		"utr 1234-5678-90":   "UTR1234567890",
		"  abc_def.123456 ": "ABCDEF123456",
		"TXN/2024/998877":    "TXN2024998877",
	}
	for in, want := range cases {
		got, err := NormalizeTransactionID(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
}

func TestNormalizeTransactionIDRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "#$%^&*()!", "ab12#cd34ef"} {
		_, err := NormalizeTransactionID(in)
		assert.ErrorIs(t, err, ErrInvalidTransactionID, in)
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "499.00", FormatAmount(decimal.NewFromInt(499)))
	assert.Equal(t, "12.50", FormatAmount(decimal.RequireFromString("12.5")))
}
