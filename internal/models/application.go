package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// AffiliateApplication transitions exactly once from pending to a terminal
// state and is immutable afterwards. Reapplying means submitting a new one.
type AffiliateApplication struct {
	ID              primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Email           string              `json:"email" bson:"email" binding:"required,email"`
	DisplayName     string              `json:"display_name" bson:"display_name" binding:"required"`
	Website         string              `json:"website,omitempty" bson:"website,omitempty"`
	Status          ApplicationStatus   `json:"status" bson:"status"`
	RejectionReason string              `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	ReviewerID      *primitive.ObjectID `json:"reviewer_id,omitempty" bson:"reviewer_id,omitempty"`
	ReviewedAt      *time.Time          `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
}
