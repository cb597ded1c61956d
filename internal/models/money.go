package models

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a decimal monetary amount. It stores as BSON Decimal128 so amounts
// survive round-trips without float drift, and marshals to a quoted decimal
// string in JSON.
type Money struct {
	decimal.Decimal
}

func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

func MoneyFromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Money{Decimal: d}, nil
}

func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.Decimal.String())
	if err != nil {
		return 0, nil, fmt.Errorf("failed to convert %s to decimal128: %w", m.Decimal, err)
	}
	return bson.MarshalValue(d128)
}

func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var d128 primitive.Decimal128
	if err := bson.UnmarshalValue(t, data, &d128); err != nil {
		return fmt.Errorf("failed to decode decimal128: %w", err)
	}
	d, err := decimal.NewFromString(d128.String())
	if err != nil {
		return fmt.Errorf("failed to parse decimal128 %s: %w", d128, err)
	}
	m.Decimal = d
	return nil
}
