package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestMoneyJSONRoundTrip(t *testing.T) {
	require := require.New(t)

	m := NewMoney(decimal.RequireFromString("1234.56"))

	data, err := json.Marshal(m)
	require.NoError(err)
	require.Equal(`"1234.56"`, string(data))

	var decoded Money
	require.NoError(json.Unmarshal(data, &decoded))
	require.True(decoded.Equal(m.Decimal))
}

func TestMoneyBSONRoundTrip(t *testing.T) {
	require := require.New(t)

	type doc struct {
		Amount Money `bson:"amount"`
	}

	for _, amount := range []string{"0", "0.01", "1234.56", "99999999.999", "50"} {
		original := doc{Amount: NewMoney(decimal.RequireFromString(amount))}

		data, err := bson.Marshal(original)
		require.NoError(err)

		var decoded doc
		require.NoError(bson.Unmarshal(data, &decoded))
		require.True(decoded.Amount.Equal(original.Amount.Decimal), "amount %s did not survive the round trip", amount)
	}
}

func TestMoneyFromString(t *testing.T) {
	require := require.New(t)

	m, err := MoneyFromString("10.50")
	require.NoError(err)
	require.True(m.Equal(decimal.RequireFromString("10.5")))

	_, err = MoneyFromString("not-a-number")
	require.Error(err)
}
