package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithinEpsilon(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"equal", "100.00", "100.00", true},
		{"sub-tolerance drift", "100.005", "100.00", true},
		{"exactly at tolerance", "100.01", "100.00", true},
		{"exactly at tolerance negative", "99.99", "100.00", true},
		{"just beyond tolerance", "100.011", "100.00", false},
		{"far apart", "101.00", "100.00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WithinEpsilon(MustMoney(tt.a), MustMoney(tt.b)))
		})
	}
}

func TestRoundCurrency(t *testing.T) {
	assert.True(t, RoundCurrency(MustMoney("10.005")).Equal(MustMoney("10.01")))
	assert.True(t, RoundCurrency(MustMoney("10.004")).Equal(MustMoney("10.00")))
}

func TestPercent(t *testing.T) {
	assert.True(t, Percent(MustMoney("200"), MustMoney("18")).Equal(MustMoney("36")))
	assert.True(t, Percent(MustMoney("100"), MustMoney("2.5")).Equal(MustMoney("2.5")))
}
