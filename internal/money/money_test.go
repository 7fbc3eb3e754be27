package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"identical", "10.00", "10.00", true},
		{"one cent apart", "10.00", "10.01", true},
		{"two cents apart", "10.00", "10.02", false},
		{"sub cent apart", "10.000", "10.005", true},
		{"order does not matter", "10.01", "10.00", true},
		{"negative amounts", "-5.00", "-5.01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(d(tt.a), d(tt.b)))
		})
	}
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(decimal.Zero))
	assert.True(t, IsZero(d("0.009")))
	assert.True(t, IsZero(d("-0.009")))
	assert.False(t, IsZero(d("0.01")))
	assert.False(t, IsZero(d("-0.01")))
}

func TestRound(t *testing.T) {
	assert.True(t, d("33.33").Equal(Round(d("33.333"))))
	assert.True(t, d("33.34").Equal(Round(d("33.335"))))
	assert.True(t, d("10.00").Equal(Round(d("10"))))
}

func TestMin(t *testing.T) {
	assert.True(t, d("3.00").Equal(Min(d("3.00"), d("5.00"))))
	assert.True(t, d("3.00").Equal(Min(d("5.00"), d("3.00"))))
	assert.True(t, d("-1.00").Equal(Min(d("-1.00"), d("1.00"))))
}
