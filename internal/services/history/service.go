// Package history is the read-only projection over the request ledger.
package history

import (
	"context"

	"payvault/internal/models"
	"payvault/internal/repositories"
)

// Repository is the listing slice of the data layer;
// repositories.WalletRepository satisfies it.
type Repository interface {
	ListTopUps(ctx context.Context, q repositories.RequestQuery) ([]models.TopUpRequest, int64, error)
	ListWithdrawals(ctx context.Context, q repositories.RequestQuery) ([]models.WithdrawRequest, int64, error)
	ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error)
}

type Service interface {
	ListTopUps(ctx context.Context, walletID uint, status *models.RequestStatus, limit, offset int) ([]models.TopUpRequest, int64, error)
	ListWithdrawals(ctx context.Context, walletID uint, status *models.RequestStatus, limit, offset int) ([]models.WithdrawRequest, int64, error)
	ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	if repo == nil {
		panic("repo is required")
	}
	return &service{repo: repo}
}

func (s *service) ListTopUps(ctx context.Context, walletID uint, status *models.RequestStatus, limit, offset int) ([]models.TopUpRequest, int64, error) {
	return s.repo.ListTopUps(ctx, repositories.RequestQuery{
		WalletID: walletID,
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *service) ListWithdrawals(ctx context.Context, walletID uint, status *models.RequestStatus, limit, offset int) ([]models.WithdrawRequest, int64, error) {
	return s.repo.ListWithdrawals(ctx, repositories.RequestQuery{
		WalletID: walletID,
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *service) ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error) {
	return s.repo.ListLedgerEntries(ctx, walletID, limit, offset)
}
