package utils

import (
	"crypto/rand"
	"math/big"
)

// Unambiguous alphabet: no 0/O, 1/I/l
const shareCodeAlphabet = "23456789abcdefghjkmnpqrstuvwxyzABCDEFGHJKMNPQRSTUVWXYZ"

// GenerateShareCode produces a random URL-safe code used in public
// wishlist and item links.
func GenerateShareCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(shareCodeAlphabet))))
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code)
}

// GenerateOTPCode produces a numeric one-time code of the given length.
func GenerateOTPCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(10))
		code[i] = byte('0' + n.Int64())
	}
	return string(code)
}

// GenerateReferralCode produces an uppercase referral code.
const referralAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

func GenerateReferralCode(length int) string {
	code := make([]byte, length)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(referralAlphabet))))
		code[i] = referralAlphabet[n.Int64()]
	}
	return string(code)
}
