package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCurrencyMinorUnits(t *testing.T) {
	require := require.New(t)

	require.Equal(int32(2), CurrencyMinorUnits("USD"))
	require.Equal(int32(2), CurrencyMinorUnits("EUR"))
	require.Equal(int32(0), CurrencyMinorUnits("JPY"))
	require.Equal(int32(0), CurrencyMinorUnits("KRW"))
	require.Equal(int32(3), CurrencyMinorUnits("BHD"))

	// Unknown codes fall back to two decimals.
	require.Equal(int32(2), CurrencyMinorUnits("XYZ"))
}
