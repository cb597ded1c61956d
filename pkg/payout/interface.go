package payout

import (
	"context"

	"github.com/shopspring/decimal"
)

// Provider executes the external payout for a settlement. Implementations
// must be synchronous: a nil error means the money movement was accepted by
// the provider, anything else means it was not. Retry policy belongs to the
// caller.
type Provider interface {
	Payout(ctx context.Context, request *Request) (*Response, error)
}

type Request struct {
	SettlementID string            `json:"settlement_id"`
	AffiliateID  string            `json:"affiliate_id"`
	Destination  string            `json:"destination"`
	Amount       decimal.Decimal   `json:"amount"`
	Currency     string            `json:"currency"`
	Description  string            `json:"description"`
	Metadata     map[string]string `json:"metadata"`
}

type Response struct {
	PayoutRef string `json:"payout_ref"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}
