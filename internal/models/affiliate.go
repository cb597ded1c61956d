package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AffiliateStatus string

const (
	AffiliateStatusPending   AffiliateStatus = "pending"
	AffiliateStatusActive    AffiliateStatus = "active"
	AffiliateStatusSuspended AffiliateStatus = "suspended"
)

// AffiliateAccount is the payee side of the program. The referral code is
// immutable once issued; status changes go through the application workflow
// or an explicit suspend/activate call. Accounts are never deleted.
type AffiliateAccount struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email             string             `json:"email" bson:"email"`
	DisplayName       string             `json:"display_name" bson:"display_name"`
	Website           string             `json:"website,omitempty" bson:"website,omitempty"`
	ReferralCode      string             `json:"referral_code" bson:"referral_code"`
	Status            AffiliateStatus    `json:"status" bson:"status"`
	CommissionRateBps int64              `json:"commission_rate_bps" bson:"commission_rate_bps"`
	PayoutAccountID   string             `json:"payout_account_id,omitempty" bson:"payout_account_id,omitempty"`
	ApplicationID     primitive.ObjectID `json:"application_id" bson:"application_id"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" bson:"updated_at"`
}

func (a *AffiliateAccount) IsActive() bool {
	return a.Status == AffiliateStatusActive
}
