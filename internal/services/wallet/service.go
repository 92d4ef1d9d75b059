package wallet

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/models"
	"payvault/internal/repositories"
)

type service struct {
	repo    Repository
	cache   Cache
	metrics MetricsCollector
}

// NewService creates a new wallet service
func NewService(repo Repository, cache Cache, metrics MetricsCollector) Service {
	if repo == nil {
		panic("repo is required")
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
	}
}

func (s *service) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	if s.cache != nil {
		if wallet, err := s.cache.GetWallet(ctx, userID); err == nil && wallet != nil {
			return wallet, nil
		}
	}

	wallet, err := s.repo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.CacheWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) GetWalletByID(ctx context.Context, walletID uint) (*models.Wallet, error) {
	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return wallet, nil
}

func (s *service) CreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	wallet := &models.Wallet{
		UserID:  userID,
		Balance: 0,
		Version: 1,
	}

	if err := s.repo.Create(wallet); err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.CacheWallet(ctx, wallet)
	}
	return wallet, nil
}

func (s *service) AvailableBalance(ctx context.Context, walletID uint) (int64, error) {
	wallet, err := s.repo.GetByID(walletID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return 0, ErrWalletNotFound
		}
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}

	reserved, err := s.repo.SumPendingWithdrawals(ctx, walletID, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to compute reservations: %w", err)
	}

	return wallet.Balance - reserved, nil
}

func (s *service) SubmitTopUp(ctx context.Context, walletID uint, amount int64, proofMediaRef *string) (*models.TopUpRequest, error) {
	if amount <= 0 {
		s.metrics.RecordError("submit_topup", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	if _, err := s.GetWalletByID(ctx, walletID); err != nil {
		return nil, err
	}

	req := &models.TopUpRequest{
		WalletID:        walletID,
		RequestedAmount: amount,
		Status:          models.StatusPending,
		ProofMediaRef:   proofMediaRef,
	}
	if err := s.repo.CreateTopUp(req); err != nil {
		s.metrics.RecordError("submit_topup", "create_failed")
		return nil, fmt.Errorf("failed to submit top-up: %w", err)
	}

	s.metrics.RecordTransaction("topup_submitted", amount)
	return req, nil
}

// SubmitWithdraw performs the advisory available-balance check at
// submission time for fast feedback. The authoritative check happens
// again inside the engine at approval time, because available balance can
// change between submission and decision.
func (s *service) SubmitWithdraw(ctx context.Context, walletID uint, amount int64) (*models.WithdrawRequest, error) {
	if amount <= 0 {
		s.metrics.RecordError("submit_withdraw", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	available, err := s.AvailableBalance(ctx, walletID)
	if err != nil {
		return nil, err
	}
	if amount > available {
		s.metrics.RecordError("submit_withdraw", "insufficient_available_balance")
		return nil, ErrInsufficientAvailableBalance
	}

	req := &models.WithdrawRequest{
		WalletID:        walletID,
		RequestedAmount: amount,
		Status:          models.StatusPending,
	}
	if err := s.repo.CreateWithdraw(req); err != nil {
		s.metrics.RecordError("submit_withdraw", "create_failed")
		return nil, fmt.Errorf("failed to submit withdrawal: %w", err)
	}

	s.metrics.RecordTransaction("withdraw_submitted", amount)
	return req, nil
}

func (s *service) AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error {
	err := s.repo.AttachTopUpProof(ctx, requestID, walletID, mediaRef)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRequestNotFound):
			return ErrRequestNotFound
		case errors.Is(err, repositories.ErrRequestDecided):
			return ErrRequestDecided
		}
		return fmt.Errorf("failed to attach proof: %w", err)
	}
	return nil
}
