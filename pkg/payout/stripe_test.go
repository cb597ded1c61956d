package payout

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		want     int64
	}{
		{"two decimal currency", "12.34", "USD", 1234},
		{"whole amount", "50", "USD", 5000},
		{"three decimal currency", "7.250", "BHD", 7250},
		{"three decimal currency whole", "7", "KWD", 7000},
		{"zero decimal currency", "500", "JPY", 500},
		{"lowercase code", "12.34", "usd", 1234},
		{"zero", "0", "USD", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toMinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestToMinorUnitsRejectsResidualPrecision(t *testing.T) {
	require := require.New(t)

	// Anything finer than the currency's minor unit is an upstream bug;
	// truncating would silently underpay.
	_, err := toMinorUnits(decimal.RequireFromString("0.015"), "USD")
	require.Error(err)

	_, err = toMinorUnits(decimal.RequireFromString("10.5"), "JPY")
	require.Error(err)

	_, err = toMinorUnits(decimal.RequireFromString("1.0005"), "BHD")
	require.Error(err)
}
