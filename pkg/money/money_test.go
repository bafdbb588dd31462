package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/procurement-api/pkg/money"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"1250.5", "$1,250.50"},
		{"1000000", "$1,000,000.00"},
		{"-42.129", "-$42.13"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, money.FormatUSD(decimal.RequireFromString(tc.in)), tc.in)
	}
}
