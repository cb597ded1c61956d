package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SettlementStatus string

const (
	SettlementStatusPending    SettlementStatus = "pending"
	SettlementStatusProcessing SettlementStatus = "processing"
	SettlementStatusCompleted  SettlementStatus = "completed"
	SettlementStatusFailed     SettlementStatus = "failed"
)

// Settlement groups one affiliate's unsettled conversions for a payout
// cycle. The conversion set is frozen at creation; conversions recorded
// afterwards wait for the next batch. Status moves pending -> processing ->
// completed, with failed reachable only from processing.
type Settlement struct {
	ID              primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	AffiliateID     primitive.ObjectID   `json:"affiliate_id" bson:"affiliate_id"`
	PeriodLabel     string               `json:"period_label" bson:"period_label"`
	ConversionIDs   []primitive.ObjectID `json:"conversion_ids" bson:"conversion_ids"`
	TotalCommission Money                `json:"total_commission" bson:"total_commission"`
	Currency        string               `json:"currency" bson:"currency"`
	Status          SettlementStatus     `json:"status" bson:"status"`
	PayoutRef       string               `json:"payout_ref,omitempty" bson:"payout_ref,omitempty"`
	FailureReason   string               `json:"failure_reason,omitempty" bson:"failure_reason,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at" bson:"updated_at"`
	ProcessedAt     *time.Time           `json:"processed_at,omitempty" bson:"processed_at,omitempty"`
}
