package payout

import (
	"context"
	"fmt"
	"strings"

	"afftrack/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type StripeProvider struct {
	client *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	sc := &client.API{}
	sc.Init(secretKey, nil)

	return &StripeProvider{
		client: sc,
	}
}

func (s *StripeProvider) Payout(ctx context.Context, request *Request) (*Response, error) {
	if request.Destination == "" {
		return nil, fmt.Errorf("affiliate %s has no payout destination configured", request.AffiliateID)
	}

	amount, err := toMinorUnits(request.Amount, request.Currency)
	if err != nil {
		return nil, err
	}

	params := &stripe.TransferParams{
		Amount:        stripe.Int64(amount),
		Currency:      stripe.String(request.Currency),
		Destination:   stripe.String(request.Destination),
		Description:   stripe.String(request.Description),
		TransferGroup: stripe.String(request.SettlementID),
	}
	params.Context = ctx

	for key, value := range request.Metadata {
		params.AddMetadata(key, value)
	}
	params.AddMetadata("settlement_id", request.SettlementID)
	params.AddMetadata("affiliate_id", request.AffiliateID)

	transfer, err := s.client.Transfers.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}

	return &Response{
		PayoutRef: transfer.ID,
		Status:    "paid",
		CreatedAt: transfer.Created,
	}, nil
}

// toMinorUnits converts an amount to the integer smallest-unit form Stripe
// expects, using the same minor-unit table commission rounding uses.
// Commission totals are always rounded to the minor unit before they reach
// here, so residual precision means a bug upstream; refuse to truncate it
// away.
func toMinorUnits(amount decimal.Decimal, currency string) (int64, error) {
	shifted := amount.Shift(utils.CurrencyMinorUnits(strings.ToUpper(currency)))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-minor-unit precision for %s", amount, currency)
	}
	return shifted.IntPart(), nil
}
