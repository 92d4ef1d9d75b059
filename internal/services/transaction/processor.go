// Package transaction implements the decision engine: the only code path
// that turns a PENDING request into a terminal one and moves wallet
// balances. Every decision is one atomic unit of work; concurrency is
// resolved through the wallet version check with bounded retries.
package transaction

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"payvault/internal/models"
	"payvault/internal/repositories"
	"payvault/internal/services/payout"
	"payvault/internal/services/wallet"

	"github.com/google/uuid"
)

type Processor struct {
	repo       repositories.WalletRepository
	payouts    payout.Provider
	cache      CacheInvalidator
	metrics    wallet.MetricsCollector
	maxRetries int
}

func NewProcessor(repo repositories.WalletRepository, payouts payout.Provider, cache CacheInvalidator, metrics wallet.MetricsCollector, cfg Config) *Processor {
	if repo == nil {
		panic("repo is required")
	}
	if payouts == nil {
		payouts = payout.NoopProvider{}
	}
	if metrics == nil {
		metrics = &wallet.NoopMetricsCollector{}
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}

	return &Processor{
		repo:       repo,
		payouts:    payouts,
		cache:      cache,
		metrics:    metrics,
		maxRetries: cfg.MaxRetries,
	}
}

// DecideTopUp applies an operator decision to a top-up request. On
// approval the credited amount is overrideAmount when supplied, otherwise
// the requested amount. A second decision on the same request fails with
// ErrAlreadyDecided and has no side effects.
func (p *Processor) DecideTopUp(ctx context.Context, requestID uint, decision Decision, operatorID uint, overrideAmount *int64) (*models.TopUpRequest, error) {
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}
	if overrideAmount != nil && *overrideAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	var walletUserID uint
	err := p.withRetries(ctx, "decide_topup", func() error {
		return p.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
			req, err := tx.GetTopUpByID(requestID)
			if err != nil {
				return err
			}
			if req.Status.Terminal() {
				return repositories.ErrRequestDecided
			}

			now := time.Now().UTC()

			if decision == DecisionReject {
				return tx.MarkTopUpDecided(ctx, req.ID, repositories.RequestDecision{
					Status:         models.StatusRejected,
					TransferAmount: req.TransferAmount,
					DecidedBy:      operatorID,
					DecidedAt:      now,
				})
			}

			amount := req.RequestedAmount
			if overrideAmount != nil {
				amount = *overrideAmount
			}

			w, err := tx.GetByID(req.WalletID)
			if err != nil {
				return err
			}
			walletUserID = w.UserID

			entry := &models.LedgerEntry{
				RequestKind: models.RequestKindTopUp,
				RequestID:   req.ID,
				Direction:   models.LedgerDirectionCredit,
				Amount:      amount,
				Reference:   uuid.NewString(),
				Metadata: models.JSON{
					"operator_id":      operatorID,
					"requested_amount": req.RequestedAmount,
				},
			}
			if _, err := tx.AdjustBalance(ctx, req.WalletID, amount, w.Version, entry); err != nil {
				return err
			}

			return tx.MarkTopUpDecided(ctx, req.ID, repositories.RequestDecision{
				Status:         models.StatusApproved,
				TransferAmount: amount,
				DecidedBy:      operatorID,
				DecidedAt:      now,
			})
		})
	})
	if err != nil {
		return nil, p.mapError("decide_topup", err)
	}

	p.afterCommit(ctx, walletUserID)

	req, err := p.repo.GetTopUpByID(requestID)
	if err != nil {
		return nil, p.mapError("decide_topup", err)
	}
	if req.Status == models.StatusApproved {
		p.metrics.RecordTransaction("topup_approved", req.TransferAmount)
	}
	return req, nil
}

// DecideWithdraw applies an operator decision to a withdrawal request.
// Approval re-verifies the available balance inside the transaction (the
// authoritative check); on failure the request stays PENDING for operator
// follow-up rather than being auto-rejected.
func (p *Processor) DecideWithdraw(ctx context.Context, requestID uint, decision Decision, operatorID uint) (*models.WithdrawRequest, error) {
	if !decision.Valid() {
		return nil, ErrInvalidDecision
	}

	var walletUserID uint
	err := p.withRetries(ctx, "decide_withdraw", func() error {
		return p.repo.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
			req, err := tx.GetWithdrawByID(requestID)
			if err != nil {
				return err
			}
			if req.Status.Terminal() {
				return repositories.ErrRequestDecided
			}

			now := time.Now().UTC()

			if decision == DecisionReject {
				// The reservation was never materialized in the balance,
				// so releasing it is just the status flip.
				return tx.MarkWithdrawDecided(ctx, req.ID, repositories.RequestDecision{
					Status:    models.StatusRejected,
					DecidedBy: operatorID,
					DecidedAt: now,
				})
			}

			w, err := tx.GetByID(req.WalletID)
			if err != nil {
				return err
			}
			walletUserID = w.UserID

			reserved, err := tx.SumPendingWithdrawals(ctx, req.WalletID, req.ID)
			if err != nil {
				return err
			}
			if w.Balance-reserved < req.RequestedAmount {
				return ErrInsufficientAvailableBalance
			}

			entry := &models.LedgerEntry{
				RequestKind: models.RequestKindWithdraw,
				RequestID:   req.ID,
				Direction:   models.LedgerDirectionDebit,
				Amount:      req.RequestedAmount,
				Reference:   uuid.NewString(),
				Metadata: models.JSON{
					"operator_id": operatorID,
				},
			}
			if _, err := tx.AdjustBalance(ctx, req.WalletID, -req.RequestedAmount, w.Version, entry); err != nil {
				return err
			}

			return tx.MarkWithdrawDecided(ctx, req.ID, repositories.RequestDecision{
				Status:    models.StatusApproved,
				DecidedBy: operatorID,
				DecidedAt: now,
			})
		})
	})
	if err != nil {
		return nil, p.mapError("decide_withdraw", err)
	}

	p.afterCommit(ctx, walletUserID)

	req, err := p.repo.GetWithdrawByID(requestID)
	if err != nil {
		return nil, p.mapError("decide_withdraw", err)
	}
	if req.Status == models.StatusApproved {
		p.metrics.RecordTransaction("withdraw_approved", req.RequestedAmount)
		if err := p.payouts.Send(ctx, req); err != nil {
			// The ledger is committed; payout delivery is retried out of
			// band, never rolled back.
			log.Printf("payout handoff failed for withdraw request %d: %v", req.ID, err)
			p.metrics.RecordError("payout", "send_failed")
		}
	}
	return req, nil
}

// withRetries runs fn, retrying on wallet version conflicts up to the
// configured budget. A store-level insufficient-funds failure means the
// authoritative available-balance check was raced; it is logged loudly
// and retried the same way, since the next attempt re-reads fresh state.
func (p *Processor) withRetries(ctx context.Context, operation string, fn func() error) error {
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, repositories.ErrInsufficientFunds) {
			log.Printf("invariant violation: %s hit store-level insufficient funds (attempt %d)", operation, attempt+1)
			p.metrics.RecordError(operation, "insufficient_funds_guard")
		} else if !errors.Is(err, repositories.ErrVersionConflict) {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	p.metrics.RecordError(operation, "retries_exhausted")
	return ErrConflict
}

func (p *Processor) afterCommit(ctx context.Context, walletUserID uint) {
	if p.cache != nil && walletUserID != 0 {
		if err := p.cache.InvalidateWallet(ctx, walletUserID); err != nil {
			log.Printf("failed to invalidate wallet cache for user %d: %v", walletUserID, err)
		}
	}
}

func (p *Processor) mapError(operation string, err error) error {
	switch {
	case errors.Is(err, repositories.ErrRequestNotFound):
		return ErrRequestNotFound
	case errors.Is(err, repositories.ErrRequestDecided):
		return ErrAlreadyDecided
	case errors.Is(err, ErrInsufficientAvailableBalance),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrInvalidAmount):
		return err
	}
	p.metrics.RecordError(operation, "internal")
	return fmt.Errorf("%s failed: %w", operation, err)
}
