package wallet

import (
	"context"
	"testing"

	"payvault/internal/models"
	"payvault/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(wallet *models.Wallet) error {
	args := m.Called(wallet)
	return args.Error(0)
}

func (m *mockRepository) GetByID(id uint) (*models.Wallet, error) {
	args := m.Called(id)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	args := m.Called(userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRepository) SumPendingWithdrawals(ctx context.Context, walletID uint, excludeRequestID uint) (int64, error) {
	args := m.Called(ctx, walletID, excludeRequestID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepository) CreateTopUp(req *models.TopUpRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *mockRepository) CreateWithdraw(req *models.WithdrawRequest) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *mockRepository) AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error {
	args := m.Called(ctx, requestID, walletID, mediaRef)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	args := m.Called(ctx, wallet)
	return args.Error(0)
}

func (m *mockCache) InvalidateWallet(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func TestGetWalletCacheMiss(t *testing.T) {
	repo := new(mockRepository)
	cache := new(mockCache)
	svc := NewService(repo, cache, nil)

	w := &models.Wallet{ID: 1, UserID: 42, Balance: 5000, Version: 3}
	cache.On("GetWallet", mock.Anything, uint(42)).Return(nil, repositories.ErrWalletNotFound)
	repo.On("GetByUserID", uint(42)).Return(w, nil)
	cache.On("CacheWallet", mock.Anything, w).Return(nil)

	got, err := svc.GetWallet(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, w, got)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestGetWalletCacheHit(t *testing.T) {
	repo := new(mockRepository)
	cache := new(mockCache)
	svc := NewService(repo, cache, nil)

	w := &models.Wallet{ID: 1, UserID: 42, Balance: 5000}
	cache.On("GetWallet", mock.Anything, uint(42)).Return(w, nil)

	got, err := svc.GetWallet(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, w, got)
	repo.AssertNotCalled(t, "GetByUserID", mock.Anything)
}

func TestGetWalletNotFound(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	repo.On("GetByUserID", uint(42)).Return(nil, repositories.ErrWalletNotFound)

	_, err := svc.GetWallet(context.Background(), 42)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestAvailableBalance(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	repo.On("GetByID", uint(1)).Return(&models.Wallet{ID: 1, Balance: 5000}, nil)
	repo.On("SumPendingWithdrawals", mock.Anything, uint(1), uint(0)).Return(int64(3000), nil)

	available, err := svc.AvailableBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), available)
}

func TestSubmitTopUp(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	repo.On("GetByID", uint(1)).Return(&models.Wallet{ID: 1}, nil)
	repo.On("CreateTopUp", mock.MatchedBy(func(req *models.TopUpRequest) bool {
		return req.WalletID == 1 && req.RequestedAmount == 5000 && req.Status == models.StatusPending
	})).Return(nil)

	req, err := svc.SubmitTopUp(context.Background(), 1, 5000, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	assert.Equal(t, int64(5000), req.RequestedAmount)
	repo.AssertExpectations(t)
}

func TestSubmitTopUpInvalidAmount(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	_, err := svc.SubmitTopUp(context.Background(), 1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.SubmitTopUp(context.Background(), 1, -100, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	repo.AssertNotCalled(t, "CreateTopUp", mock.Anything)
}

func TestSubmitWithdraw(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	repo.On("GetByID", uint(1)).Return(&models.Wallet{ID: 1, Balance: 5000}, nil)
	repo.On("SumPendingWithdrawals", mock.Anything, uint(1), uint(0)).Return(int64(0), nil)
	repo.On("CreateWithdraw", mock.MatchedBy(func(req *models.WithdrawRequest) bool {
		return req.WalletID == 1 && req.RequestedAmount == 3000 && req.Status == models.StatusPending
	})).Return(nil)

	req, err := svc.SubmitWithdraw(context.Background(), 1, 3000)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, req.Status)
	repo.AssertExpectations(t)
}

func TestSubmitWithdrawReservationBlocksSecondRequest(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	// Balance 5000 with 3000 already reserved by a pending withdrawal:
	// only 2000 is available, so another 3000 must be refused.
	repo.On("GetByID", uint(1)).Return(&models.Wallet{ID: 1, Balance: 5000}, nil)
	repo.On("SumPendingWithdrawals", mock.Anything, uint(1), uint(0)).Return(int64(3000), nil)

	_, err := svc.SubmitWithdraw(context.Background(), 1, 3000)
	assert.ErrorIs(t, err, ErrInsufficientAvailableBalance)
	repo.AssertNotCalled(t, "CreateWithdraw", mock.Anything)
}

func TestSubmitWithdrawInvalidAmount(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	_, err := svc.SubmitWithdraw(context.Background(), 1, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAttachTopUpProof(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, nil, nil)

	repo.On("AttachTopUpProof", mock.Anything, uint(9), uint(1), "media/abc").Return(nil)
	require.NoError(t, svc.AttachTopUpProof(context.Background(), 9, 1, "media/abc"))

	repo.On("AttachTopUpProof", mock.Anything, uint(10), uint(1), "media/abc").Return(repositories.ErrRequestDecided)
	err := svc.AttachTopUpProof(context.Background(), 10, 1, "media/abc")
	assert.ErrorIs(t, err, ErrRequestDecided)

	repo.On("AttachTopUpProof", mock.Anything, uint(11), uint(1), "media/abc").Return(repositories.ErrRequestNotFound)
	err = svc.AttachTopUpProof(context.Background(), 11, 1, "media/abc")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
