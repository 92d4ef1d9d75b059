package repositories

import (
	"context"
	"errors"
	"time"

	"payvault/internal/models"
)

var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrDuplicateWallet   = errors.New("wallet already exists")
	ErrVersionConflict   = errors.New("wallet version conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrRequestNotFound   = errors.New("request not found")
	ErrRequestDecided    = errors.New("request already decided")
)

// RequestDecision carries the fields written when a request leaves PENDING.
type RequestDecision struct {
	Status         models.RequestStatus
	TransferAmount int64 // top-up only; ignored for withdrawals
	DecidedBy      uint
	DecidedAt      time.Time
}

// RequestQuery filters request listings.
type RequestQuery struct {
	WalletID uint // 0 means all wallets
	Status   *models.RequestStatus
	Limit    int
	Offset   int
}

// WalletRepository is the data access contract for wallets, request rows
// and the balance ledger. AdjustBalance is the only way a balance moves;
// the Mark*Decided updates only fire while the row is still PENDING, so a
// racing decision loses with ErrRequestDecided instead of double-applying.
type WalletRepository interface {
	// Wallet operations
	Create(wallet *models.Wallet) error
	GetByID(id uint) (*models.Wallet, error)
	GetByUserID(userID uint) (*models.Wallet, error)

	// AdjustBalance applies balance += delta iff the stored version equals
	// expectedVersion and the result stays non-negative, incrementing the
	// version and writing the paired ledger entry in the same transaction.
	AdjustBalance(ctx context.Context, walletID uint, delta int64, expectedVersion int64, entry *models.LedgerEntry) (*models.Wallet, error)

	// SumPendingWithdrawals returns the total amount reserved by PENDING
	// withdrawal requests for the wallet, excluding excludeRequestID (0 to
	// exclude nothing).
	SumPendingWithdrawals(ctx context.Context, walletID uint, excludeRequestID uint) (int64, error)

	// Request operations
	CreateTopUp(req *models.TopUpRequest) error
	CreateWithdraw(req *models.WithdrawRequest) error
	GetTopUpByID(id uint) (*models.TopUpRequest, error)
	GetWithdrawByID(id uint) (*models.WithdrawRequest, error)
	AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error
	MarkTopUpDecided(ctx context.Context, requestID uint, decision RequestDecision) error
	MarkWithdrawDecided(ctx context.Context, requestID uint, decision RequestDecision) error

	// History
	ListTopUps(ctx context.Context, q RequestQuery) ([]models.TopUpRequest, int64, error)
	ListWithdrawals(ctx context.Context, q RequestQuery) ([]models.WithdrawRequest, int64, error)
	ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error)

	// ExecuteInTransaction runs fn against a repository bound to a single
	// database transaction; fn returning an error rolls everything back.
	ExecuteInTransaction(fn func(WalletRepository) error) error
}
