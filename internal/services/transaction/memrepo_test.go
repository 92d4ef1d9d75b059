package transaction

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"payvault/internal/models"
	"payvault/internal/repositories"
)

// memRepo is an in-memory repositories.WalletRepository used to exercise
// the engine's concurrency behavior without a database. A transaction
// holds the store lock for its whole body and restores a snapshot on
// rollback, which gives the same serializable semantics the engine
// relies on.
type memRepo struct {
	mu        sync.Mutex
	wallets   map[uint]*models.Wallet
	topUps    map[uint]*models.TopUpRequest
	withdraws map[uint]*models.WithdrawRequest
	ledger    []models.LedgerEntry
	nextID    uint
}

func newMemRepo() *memRepo {
	return &memRepo{
		wallets:   make(map[uint]*models.Wallet),
		topUps:    make(map[uint]*models.TopUpRequest),
		withdraws: make(map[uint]*models.WithdrawRequest),
	}
}

func (m *memRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	if err := fn(&memTx{store: m}); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memSnapshot struct {
	wallets   map[uint]*models.Wallet
	topUps    map[uint]*models.TopUpRequest
	withdraws map[uint]*models.WithdrawRequest
	ledger    []models.LedgerEntry
	nextID    uint
}

func (m *memRepo) snapshot() memSnapshot {
	snap := memSnapshot{
		wallets:   make(map[uint]*models.Wallet, len(m.wallets)),
		topUps:    make(map[uint]*models.TopUpRequest, len(m.topUps)),
		withdraws: make(map[uint]*models.WithdrawRequest, len(m.withdraws)),
		ledger:    append([]models.LedgerEntry(nil), m.ledger...),
		nextID:    m.nextID,
	}
	for id, w := range m.wallets {
		cp := *w
		snap.wallets[id] = &cp
	}
	for id, r := range m.topUps {
		cp := *r
		snap.topUps[id] = &cp
	}
	for id, r := range m.withdraws {
		cp := *r
		snap.withdraws[id] = &cp
	}
	return snap
}

func (m *memRepo) restore(snap memSnapshot) {
	m.wallets = snap.wallets
	m.topUps = snap.topUps
	m.withdraws = snap.withdraws
	m.ledger = snap.ledger
	m.nextID = snap.nextID
}

func (m *memRepo) Create(wallet *models.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).Create(wallet)
}

func (m *memRepo) GetByID(id uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).GetByID(id)
}

func (m *memRepo) GetByUserID(userID uint) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).GetByUserID(userID)
}

func (m *memRepo) AdjustBalance(ctx context.Context, walletID uint, delta int64, expectedVersion int64, entry *models.LedgerEntry) (*models.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).AdjustBalance(ctx, walletID, delta, expectedVersion, entry)
}

func (m *memRepo) SumPendingWithdrawals(ctx context.Context, walletID uint, excludeRequestID uint) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).SumPendingWithdrawals(ctx, walletID, excludeRequestID)
}

func (m *memRepo) CreateTopUp(req *models.TopUpRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).CreateTopUp(req)
}

func (m *memRepo) CreateWithdraw(req *models.WithdrawRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).CreateWithdraw(req)
}

func (m *memRepo) GetTopUpByID(id uint) (*models.TopUpRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).GetTopUpByID(id)
}

func (m *memRepo) GetWithdrawByID(id uint) (*models.WithdrawRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).GetWithdrawByID(id)
}

func (m *memRepo) AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).AttachTopUpProof(ctx, requestID, walletID, mediaRef)
}

func (m *memRepo) MarkTopUpDecided(ctx context.Context, requestID uint, decision repositories.RequestDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).MarkTopUpDecided(ctx, requestID, decision)
}

func (m *memRepo) MarkWithdrawDecided(ctx context.Context, requestID uint, decision repositories.RequestDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).MarkWithdrawDecided(ctx, requestID, decision)
}

func (m *memRepo) ListTopUps(ctx context.Context, q repositories.RequestQuery) ([]models.TopUpRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).ListTopUps(ctx, q)
}

func (m *memRepo) ListWithdrawals(ctx context.Context, q repositories.RequestQuery) ([]models.WithdrawRequest, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).ListWithdrawals(ctx, q)
}

func (m *memRepo) ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (&memTx{store: m}).ListLedgerEntries(ctx, walletID, limit, offset)
}

// memTx operates on the store while the transaction lock is held.
type memTx struct {
	store *memRepo
}

func (t *memTx) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	return fn(t)
}

func (t *memTx) Create(wallet *models.Wallet) error {
	for _, w := range t.store.wallets {
		if w.UserID == wallet.UserID {
			return repositories.ErrDuplicateWallet
		}
	}
	t.store.nextID++
	wallet.ID = t.store.nextID
	if wallet.Version == 0 {
		wallet.Version = 1
	}
	cp := *wallet
	t.store.wallets[wallet.ID] = &cp
	return nil
}

func (t *memTx) GetByID(id uint) (*models.Wallet, error) {
	w, ok := t.store.wallets[id]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (t *memTx) GetByUserID(userID uint) (*models.Wallet, error) {
	for _, w := range t.store.wallets {
		if w.UserID == userID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, repositories.ErrWalletNotFound
}

func (t *memTx) AdjustBalance(ctx context.Context, walletID uint, delta int64, expectedVersion int64, entry *models.LedgerEntry) (*models.Wallet, error) {
	w, ok := t.store.wallets[walletID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	if w.Version != expectedVersion {
		return nil, repositories.ErrVersionConflict
	}
	if w.Balance+delta < 0 {
		return nil, repositories.ErrInsufficientFunds
	}

	w.Balance += delta
	w.Version++
	w.UpdatedAt = time.Now()

	t.store.nextID++
	entry.ID = t.store.nextID
	entry.WalletID = walletID
	entry.BalanceAfter = w.Balance
	entry.CreatedAt = time.Now()
	t.store.ledger = append(t.store.ledger, *entry)

	cp := *w
	return &cp, nil
}

func (t *memTx) SumPendingWithdrawals(ctx context.Context, walletID uint, excludeRequestID uint) (int64, error) {
	var sum int64
	for _, r := range t.store.withdraws {
		if r.WalletID == walletID && r.Status == models.StatusPending && r.ID != excludeRequestID {
			sum += r.RequestedAmount
		}
	}
	return sum, nil
}

func (t *memTx) CreateTopUp(req *models.TopUpRequest) error {
	t.store.nextID++
	req.ID = t.store.nextID
	req.CreatedAt = time.Now()
	cp := *req
	t.store.topUps[req.ID] = &cp
	return nil
}

func (t *memTx) CreateWithdraw(req *models.WithdrawRequest) error {
	t.store.nextID++
	req.ID = t.store.nextID
	req.CreatedAt = time.Now()
	cp := *req
	t.store.withdraws[req.ID] = &cp
	return nil
}

func (t *memTx) GetTopUpByID(id uint) (*models.TopUpRequest, error) {
	r, ok := t.store.topUps[id]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) GetWithdrawByID(id uint) (*models.WithdrawRequest, error) {
	r, ok := t.store.withdraws[id]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (t *memTx) AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error {
	r, ok := t.store.topUps[requestID]
	if !ok || r.WalletID != walletID {
		return repositories.ErrRequestNotFound
	}
	if r.Status != models.StatusPending {
		return repositories.ErrRequestDecided
	}
	r.ProofMediaRef = &mediaRef
	return nil
}

func (t *memTx) MarkTopUpDecided(ctx context.Context, requestID uint, decision repositories.RequestDecision) error {
	r, ok := t.store.topUps[requestID]
	if !ok {
		return repositories.ErrRequestNotFound
	}
	if r.Status != models.StatusPending {
		return repositories.ErrRequestDecided
	}
	r.Status = decision.Status
	r.TransferAmount = decision.TransferAmount
	decidedBy := decision.DecidedBy
	decidedAt := decision.DecidedAt
	r.DecidedBy = &decidedBy
	r.DecidedAt = &decidedAt
	return nil
}

func (t *memTx) MarkWithdrawDecided(ctx context.Context, requestID uint, decision repositories.RequestDecision) error {
	r, ok := t.store.withdraws[requestID]
	if !ok {
		return repositories.ErrRequestNotFound
	}
	if r.Status != models.StatusPending {
		return repositories.ErrRequestDecided
	}
	r.Status = decision.Status
	decidedBy := decision.DecidedBy
	decidedAt := decision.DecidedAt
	r.DecidedBy = &decidedBy
	r.DecidedAt = &decidedAt
	return nil
}

func (t *memTx) ListTopUps(ctx context.Context, q repositories.RequestQuery) ([]models.TopUpRequest, int64, error) {
	var out []models.TopUpRequest
	for _, r := range t.store.topUps {
		if q.WalletID != 0 && r.WalletID != q.WalletID {
			continue
		}
		if q.Status != nil && r.Status != *q.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (t *memTx) ListWithdrawals(ctx context.Context, q repositories.RequestQuery) ([]models.WithdrawRequest, int64, error) {
	var out []models.WithdrawRequest
	for _, r := range t.store.withdraws {
		if q.WalletID != 0 && r.WalletID != q.WalletID {
			continue
		}
		if q.Status != nil && r.Status != *q.Status {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (t *memTx) ListLedgerEntries(ctx context.Context, walletID uint, limit, offset int) ([]models.LedgerEntry, int64, error) {
	var out []models.LedgerEntry
	for _, e := range t.store.ledger {
		if e.WalletID == walletID {
			out = append(out, e)
		}
	}
	return out, int64(len(out)), nil
}

// flakyRepo injects wallet version conflicts into the first N balance
// adjustments to exercise the engine's retry path.
type flakyRepo struct {
	repositories.WalletRepository
	remaining int32
}

func newFlakyRepo(inner repositories.WalletRepository, conflicts int32) *flakyRepo {
	return &flakyRepo{WalletRepository: inner, remaining: conflicts}
}

func (f *flakyRepo) ExecuteInTransaction(fn func(repositories.WalletRepository) error) error {
	return f.WalletRepository.ExecuteInTransaction(func(tx repositories.WalletRepository) error {
		return fn(&flakyTx{WalletRepository: tx, parent: f})
	})
}

type flakyTx struct {
	repositories.WalletRepository
	parent *flakyRepo
}

func (t *flakyTx) AdjustBalance(ctx context.Context, walletID uint, delta int64, expectedVersion int64, entry *models.LedgerEntry) (*models.Wallet, error) {
	if atomic.AddInt32(&t.parent.remaining, -1) >= 0 {
		return nil, repositories.ErrVersionConflict
	}
	return t.WalletRepository.AdjustBalance(ctx, walletID, delta, expectedVersion, entry)
}
