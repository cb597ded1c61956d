package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ConversionRecord is a completed order attributed to an affiliate. At most
// one record exists per order id (unique index). The commission rate in
// force at conversion time is snapshotted onto the record so later rate
// changes never alter historical earnings. The only mutable field is
// SettlementID, assigned once when the record is claimed into a batch.
type ConversionRecord struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	OrderID           string              `json:"order_id" bson:"order_id"`
	AffiliateID       primitive.ObjectID  `json:"affiliate_id" bson:"affiliate_id"`
	OrderTotal        Money               `json:"order_total" bson:"order_total"`
	Currency          string              `json:"currency" bson:"currency"`
	CommissionAmount  Money               `json:"commission_amount" bson:"commission_amount"`
	CommissionRateBps int64               `json:"commission_rate_bps" bson:"commission_rate_bps"`
	SettlementID      *primitive.ObjectID `json:"settlement_id,omitempty" bson:"settlement_id,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
}

func (c *ConversionRecord) Settled() bool {
	return c.SettlementID != nil
}
