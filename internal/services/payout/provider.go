// Package payout hands approved withdrawals to an external money-movement
// provider. Delivery is best-effort and happens after the ledger commit;
// a failed handoff never rolls back the decision.
package payout

import (
	"context"

	"payvault/internal/models"
)

// Provider initiates an external payout for an approved withdrawal.
type Provider interface {
	Send(ctx context.Context, req *models.WithdrawRequest) error
}

// NoopProvider is used in development and tests.
type NoopProvider struct{}

func (NoopProvider) Send(context.Context, *models.WithdrawRequest) error { return nil }
