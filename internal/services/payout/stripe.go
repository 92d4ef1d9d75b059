package payout

import (
	"context"
	"fmt"
	"strconv"

	"payvault/internal/models"

	stripe "github.com/stripe/stripe-go/v72"
	stripepayout "github.com/stripe/stripe-go/v72/payout"
)

// StripeProvider creates Stripe payouts for approved withdrawals.
type StripeProvider struct {
	currency string
}

func NewStripeProvider(apiKey, currency string) *StripeProvider {
	stripe.Key = apiKey
	if currency == "" {
		currency = "usd"
	}
	return &StripeProvider{currency: currency}
}

func (p *StripeProvider) Send(ctx context.Context, req *models.WithdrawRequest) error {
	params := &stripe.PayoutParams{
		Amount:   stripe.Int64(req.RequestedAmount),
		Currency: stripe.String(p.currency),
	}
	params.Context = ctx
	params.AddMetadata("withdraw_request_id", strconv.FormatUint(uint64(req.ID), 10))
	params.AddMetadata("wallet_id", strconv.FormatUint(uint64(req.WalletID), 10))

	if _, err := stripepayout.New(params); err != nil {
		return fmt.Errorf("stripe payout failed: %w", err)
	}
	return nil
}
