package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCountryCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"US", true},
		{"usa", true},
		{" fr ", true},
		{"U", false},
		{"USAA", false},
		{"U1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidCountryCode(tt.code))
		})
	}
}

func TestIsValidCurrencyCode(t *testing.T) {
	assert.True(t, IsValidCurrencyCode("EUR"))
	assert.True(t, IsValidCurrencyCode("usd"))
	assert.False(t, IsValidCurrencyCode("EURO"))
	assert.False(t, IsValidCurrencyCode("E1R"))
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "DE", NormalizeCountryCode(" de "))
	assert.Equal(t, "united states", NormalizeQuery("  United   States "))

	trimmed, ok := TrimAndValidate("  Paris ")
	assert.True(t, ok)
	assert.Equal(t, "Paris", trimmed)

	_, ok = TrimAndValidate("   ")
	assert.False(t, ok)
	assert.False(t, IsNotEmpty(" \t"))
}
