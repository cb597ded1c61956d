package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateReferralCode(t *testing.T) {
	require := require.New(t)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateReferralCode(ReferralCodeLength)
		require.Len(code, ReferralCodeLength)

		for _, r := range code {
			require.True(strings.ContainsRune(referralCodeCharset, r), "unexpected character %q", r)
		}

		seen[code] = true
	}

	// Random 8-char codes over a 31-character alphabet; 100 draws
	// colliding would point at a broken generator.
	require.Len(seen, 100)
}

func TestReferralCodeCharsetAvoidsAmbiguousCharacters(t *testing.T) {
	for _, forbidden := range []string{"0", "O", "1", "l", "I", "o"} {
		require.NotContains(t, referralCodeCharset, forbidden)
	}
}
