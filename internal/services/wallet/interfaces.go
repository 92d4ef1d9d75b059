package wallet

import (
	"context"

	"payvault/internal/models"
)

// Service is the wallet-facing surface consumed by the HTTP layer: wallet
// reads and request submission. Decisions live in the transaction engine.
type Service interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetWalletByID(ctx context.Context, walletID uint) (*models.Wallet, error)
	CreateWallet(ctx context.Context, userID uint) (*models.Wallet, error)

	// AvailableBalance is the wallet balance minus the sum of amounts
	// reserved by PENDING withdrawal requests.
	AvailableBalance(ctx context.Context, walletID uint) (int64, error)

	SubmitTopUp(ctx context.Context, walletID uint, amount int64, proofMediaRef *string) (*models.TopUpRequest, error)
	SubmitWithdraw(ctx context.Context, walletID uint, amount int64) (*models.WithdrawRequest, error)
	AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error
}

// Repository is the slice of the data layer the wallet service needs.
// repositories.WalletRepository satisfies it.
type Repository interface {
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)
	SumPendingWithdrawals(ctx context.Context, walletID uint, excludeRequestID uint) (int64, error)
	CreateTopUp(req *models.TopUpRequest) error
	CreateWithdraw(req *models.WithdrawRequest) error
	AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error
}

// Cache is the wallet caching surface; cache.CacheService satisfies it.
type Cache interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}
