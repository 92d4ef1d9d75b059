package repositories

import (
	"context"
	"errors"
	"fmt"

	"payvault/internal/models"

	"gorm.io/gorm"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{
		db: db,
	}
}

func (r *walletRepository) Create(wallet *models.Wallet) error {
	if wallet.Version == 0 {
		wallet.Version = 1
	}
	result := r.db.Create(wallet)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateWallet
		}
		return fmt.Errorf("failed to create wallet: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetByID(id uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.First(&wallet, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// AdjustBalance is a single conditional UPDATE: the version predicate
// rejects stale writers and the balance predicate rejects overdrafts at
// the database, not just in application code. The ledger entry rides in
// the same transaction so no balance change is ever unaudited.
func (r *walletRepository) AdjustBalance(ctx context.Context, walletID uint, delta int64, expectedVersion int64, entry *models.LedgerEntry) (*models.Wallet, error) {
	var updated *models.Wallet
	err := r.ExecuteInTransaction(func(txRepo WalletRepository) error {
		tx := txRepo.(*walletRepository).db

		result := tx.WithContext(ctx).Model(&models.Wallet{}).
			Where("id = ? AND version = ?", walletID, expectedVersion).
			Where("balance + ? >= 0", delta).
			Updates(map[string]interface{}{
				"balance": gorm.Expr("balance + ?", delta),
				"version": gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to adjust balance: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return r.classifyAdjustFailure(ctx, tx, walletID, delta, expectedVersion)
		}

		var wallet models.Wallet
		if err := tx.WithContext(ctx).First(&wallet, walletID).Error; err != nil {
			return fmt.Errorf("failed to reload wallet: %w", err)
		}

		if entry != nil {
			entry.WalletID = walletID
			entry.BalanceAfter = wallet.Balance
			if err := tx.WithContext(ctx).Create(entry).Error; err != nil {
				return fmt.Errorf("failed to write ledger entry: %w", err)
			}
		}

		updated = &wallet
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// classifyAdjustFailure distinguishes why the conditional UPDATE matched
// nothing: missing wallet, stale version, or an overdraft.
func (r *walletRepository) classifyAdjustFailure(ctx context.Context, tx *gorm.DB, walletID uint, delta, expectedVersion int64) error {
	var wallet models.Wallet
	if err := tx.WithContext(ctx).First(&wallet, walletID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletNotFound
		}
		return fmt.Errorf("failed to inspect wallet: %w", err)
	}
	if wallet.Version != expectedVersion {
		return ErrVersionConflict
	}
	if wallet.Balance+delta < 0 {
		return ErrInsufficientFunds
	}
	return ErrVersionConflict
}

func (r *walletRepository) SumPendingWithdrawals(ctx context.Context, walletID uint, excludeRequestID uint) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.WithdrawRequest{}).
		Where("wallet_id = ? AND status = ?", walletID, models.StatusPending)
	if excludeRequestID != 0 {
		query = query.Where("id <> ?", excludeRequestID)
	}
	err := query.Select("COALESCE(SUM(requested_amount), 0)").Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum pending withdrawals: %w", err)
	}
	return total, nil
}

func (r *walletRepository) CreateTopUp(req *models.TopUpRequest) error {
	if result := r.db.Create(req); result.Error != nil {
		return fmt.Errorf("failed to create top-up request: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) CreateWithdraw(req *models.WithdrawRequest) error {
	if result := r.db.Create(req); result.Error != nil {
		return fmt.Errorf("failed to create withdraw request: %w", result.Error)
	}
	return nil
}

func (r *walletRepository) GetTopUpByID(id uint) (*models.TopUpRequest, error) {
	var req models.TopUpRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get top-up request: %w", err)
	}
	return &req, nil
}

func (r *walletRepository) GetWithdrawByID(id uint) (*models.WithdrawRequest, error) {
	var req models.WithdrawRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get withdraw request: %w", err)
	}
	return &req, nil
}

// AttachTopUpProof only succeeds while the request is PENDING and belongs
// to walletID; a decided request is an immutable audit record. Another
// tenant's request reads as not found.
func (r *walletRepository) AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error {
	result := r.db.WithContext(ctx).Model(&models.TopUpRequest{}).
		Where("id = ? AND wallet_id = ? AND status = ?", requestID, walletID, models.StatusPending).
		Update("proof_media_ref", mediaRef)
	if result.Error != nil {
		return fmt.Errorf("failed to attach proof: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		var req models.TopUpRequest
		if err := r.db.WithContext(ctx).First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return fmt.Errorf("failed to inspect request: %w", err)
		}
		if req.WalletID != walletID {
			return ErrRequestNotFound
		}
		return ErrRequestDecided
	}
	return nil
}

func (r *walletRepository) MarkTopUpDecided(ctx context.Context, requestID uint, decision RequestDecision) error {
	result := r.db.WithContext(ctx).Model(&models.TopUpRequest{}).
		Where("id = ? AND status = ?", requestID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":          decision.Status,
			"transfer_amount": decision.TransferAmount,
			"decided_at":      decision.DecidedAt,
			"decided_by":      decision.DecidedBy,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to decide top-up request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.classifyRequestMiss(ctx, &models.TopUpRequest{}, requestID)
	}
	return nil
}

func (r *walletRepository) MarkWithdrawDecided(ctx context.Context, requestID uint, decision RequestDecision) error {
	result := r.db.WithContext(ctx).Model(&models.WithdrawRequest{}).
		Where("id = ? AND status = ?", requestID, models.StatusPending).
		Updates(map[string]interface{}{
			"status":     decision.Status,
			"decided_at": decision.DecidedAt,
			"decided_by": decision.DecidedBy,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to decide withdraw request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.classifyRequestMiss(ctx, &models.WithdrawRequest{}, requestID)
	}
	return nil
}

// classifyRequestMiss tells a missing row apart from one that already
// left PENDING.
func (r *walletRepository) classifyRequestMiss(ctx context.Context, model interface{}, requestID uint) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", requestID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to inspect request: %w", err)
	}
	if count == 0 {
		return ErrRequestNotFound
	}
	return ErrRequestDecided
}

func (r *walletRepository) ListTopUps(ctx context.Context, q RequestQuery) ([]models.TopUpRequest, int64, error) {
	var requests []models.TopUpRequest
	query := r.db.WithContext(ctx).Model(&models.TopUpRequest{})
	if q.WalletID != 0 {
		query = query.Where("wallet_id = ?", q.WalletID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count top-up requests: %w", err)
	}

	err := query.Order("created_at DESC").Limit(q.Limit).Offset(q.Offset).Find(&requests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list top-up requests: %w", err)
	}
	return requests, total, nil
}

func (r *walletRepository) ListWithdrawals(ctx context.Context, q RequestQuery) ([]models.WithdrawRequest, int64, error) {
	var requests []models.WithdrawRequest
	query := r.db.WithContext(ctx).Model(&models.WithdrawRequest{})
	if q.WalletID != 0 {
		query = query.Where("wallet_id = ?", q.WalletID)
	}
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count withdraw requests: %w", err)
	}

	err := query.Order("created_at DESC").Limit(q.Limit).Offset(q.Offset).Find(&requests).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list withdraw requests: %w", err)
	}
	return requests, total, nil
}

func (r *walletRepository) ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error) {
	var entries []models.LedgerEntry
	query := r.db.WithContext(ctx).Model(&models.LedgerEntry{}).Where("wallet_id = ?", walletID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, total, nil
}

func (r *walletRepository) ExecuteInTransaction(fn func(WalletRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepo := &walletRepository{db: tx}
		return fn(txRepo)
	})
}
