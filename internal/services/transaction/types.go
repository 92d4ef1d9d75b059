package transaction

import (
	"context"

	"payvault/internal/models"
)

// Decision is an operator's terminal action on a PENDING request.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Status maps a decision to the terminal request status it produces.
func (d Decision) Status() models.RequestStatus {
	if d == DecisionApprove {
		return models.StatusApproved
	}
	return models.StatusRejected
}

// Config tunes the engine.
type Config struct {
	// MaxRetries bounds how many times a decision is retried after a
	// wallet version conflict before giving up with ErrConflict.
	MaxRetries int
}

const DefaultMaxRetries = 3

// CacheInvalidator drops cached wallet state after a committed balance
// change; cache.CacheService satisfies it.
type CacheInvalidator interface {
	InvalidateWallet(ctx context.Context, userID uint) error
}
