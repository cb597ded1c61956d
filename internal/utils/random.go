package utils

import (
	"crypto/rand"
	"math/big"
)

// Referral codes avoid ambiguous characters (0/O, 1/l/I) since affiliates
// read them aloud and embed them in shared links.
const referralCodeCharset = "abcdefghjkmnpqrstuvwxyz23456789"

func GenerateReferralCode(length int) string {
	return generateRandom(length, referralCodeCharset)
}

func generateRandom(length int, charset string) string {
	result := make([]byte, length)
	charsetLength := big.NewInt(int64(len(charset)))

	for i := range result {
		num, _ := rand.Int(rand.Reader, charsetLength)
		result[i] = charset[num.Int64()]
	}

	return string(result)
}
