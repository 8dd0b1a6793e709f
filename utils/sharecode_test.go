package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShareCode(t *testing.T) {
	code := GenerateShareCode(10)
	assert.Len(t, code, 10)
	for _, ch := range code {
		assert.Contains(t, shareCodeAlphabet, string(ch))
	}

	// Ambiguous characters never appear
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "O")
	assert.NotContains(t, code, "I")
	assert.NotContains(t, code, "l")
}

func TestGenerateShareCodeIsRandom(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateShareCode(10)] = true
	}
	assert.Greater(t, len(seen), 45)
}

func TestGenerateOTPCode(t *testing.T) {
	code := GenerateOTPCode(6)
	assert.Len(t, code, 6)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9')
	}
}

func TestGenerateReferralCode(t *testing.T) {
	code := GenerateReferralCode(8)
	assert.Len(t, code, 8)
	assert.Equal(t, strings.ToUpper(code), code)
	for _, ch := range code {
		assert.Contains(t, referralAlphabet, string(ch))
	}
}
