package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomAvatar(t *testing.T) {
	url := GenerateRandomAvatar()
	assert.True(t, strings.HasPrefix(url, "https://api.dicebear.com/7.x/"))
	assert.Contains(t, url, "/svg?seed=")
}

func TestGetInitialsFromName(t *testing.T) {
	assert.Equal(t, "JD", GetInitialsFromName("jane", "doe"))
	assert.Equal(t, "J", GetInitialsFromName("jane", ""))
	assert.Equal(t, "D", GetInitialsFromName("", "doe"))
	assert.Equal(t, "U", GetInitialsFromName("", ""))
}
