package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClickEvent is an append-only record of a referral link hit. Clicks are
// never deduplicated; the metric is click volume, not unique visitors.
// Referrer and user agent are stored as opaque strings.
type ClickEvent struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AffiliateID primitive.ObjectID `json:"affiliate_id" bson:"affiliate_id"`
	LinkID      string             `json:"link_id,omitempty" bson:"link_id,omitempty"`
	Referrer    string             `json:"referrer,omitempty" bson:"referrer,omitempty"`
	UserAgent   string             `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}
