package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// GenerateRandomAvatar generates a random avatar URL using DiceBear
func GenerateRandomAvatar() string {
	seed, _ := rand.Int(rand.Reader, big.NewInt(1000000))

	styles := []string{"avataaars", "personas", "micah", "miniavs", "bottts"}
	styleIndex, _ := rand.Int(rand.Reader, big.NewInt(int64(len(styles))))
	style := styles[styleIndex.Int64()]

	return fmt.Sprintf("https://api.dicebear.com/7.x/%s/svg?seed=%d", style, seed.Int64())
}

// GetInitialsFromName extracts initials from first and last name
func GetInitialsFromName(firstName, lastName string) string {
	initials := ""
	if firstName != "" {
		initials += strings.ToUpper(firstName[:1])
	}
	if lastName != "" {
		initials += strings.ToUpper(lastName[:1])
	}
	if initials == "" {
		return "U"
	}
	return initials
}
