package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"payvault/internal/models"
	"payvault/internal/services/attachment"
	"payvault/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockWalletService struct {
	mock.Mock
}

func (m *mockWalletService) GetWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) GetWalletByID(ctx context.Context, walletID uint) (*models.Wallet, error) {
	args := m.Called(ctx, walletID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) CreateWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	args := m.Called(ctx, userID)
	if w := args.Get(0); w != nil {
		return w.(*models.Wallet), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) AvailableBalance(ctx context.Context, walletID uint) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockWalletService) SubmitTopUp(ctx context.Context, walletID uint, amount int64, proofMediaRef *string) (*models.TopUpRequest, error) {
	args := m.Called(ctx, walletID, amount, proofMediaRef)
	if r := args.Get(0); r != nil {
		return r.(*models.TopUpRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) SubmitWithdraw(ctx context.Context, walletID uint, amount int64) (*models.WithdrawRequest, error) {
	args := m.Called(ctx, walletID, amount)
	if r := args.Get(0); r != nil {
		return r.(*models.WithdrawRequest), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockWalletService) AttachTopUpProof(ctx context.Context, requestID, walletID uint, mediaRef string) error {
	args := m.Called(ctx, requestID, walletID, mediaRef)
	return args.Error(0)
}

// fakeResolver honors the Resolver contract: a failed bind persists
// nothing.
type fakeResolver struct {
	persisted int
}

func (f *fakeResolver) Store(_ context.Context, up attachment.Upload, bind func(ref string) error) (string, error) {
	if up.FileName == "" || up.SizeBytes <= 0 {
		return "", attachment.ErrEmptyUpload
	}
	ref := "media/" + up.FileName
	if bind != nil {
		if err := bind(ref); err != nil {
			return "", err
		}
	}
	f.persisted++
	return ref, nil
}

func newProofTestApp(svc wallet.Service, resolver attachment.Resolver) *fiber.App {
	h := NewWalletHandler(svc, nil, resolver)
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("claims", &models.UserClaims{UserID: 42, Role: "user"})
		return c.Next()
	})
	app.Post("/wallet/topup/:id/proof", h.UploadTopUpProof)
	return app
}

func newProofRequest(t *testing.T, path string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("proof", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("image bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadTopUpProof(t *testing.T) {
	svc := new(mockWalletService)
	resolver := &fakeResolver{}
	app := newProofTestApp(svc, resolver)

	svc.On("GetWallet", mock.Anything, uint(42)).Return(&models.Wallet{ID: 5, UserID: 42}, nil)
	svc.On("AttachTopUpProof", mock.Anything, uint(12), uint(5), "media/receipt.png").Return(nil)

	resp, err := app.Test(newProofRequest(t, "/wallet/topup/12/proof"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, resolver.persisted)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "media/receipt.png", payload["media_ref"])
	svc.AssertExpectations(t)
}

func TestUploadTopUpProofDecidedPersistsNoMedia(t *testing.T) {
	svc := new(mockWalletService)
	resolver := &fakeResolver{}
	app := newProofTestApp(svc, resolver)

	svc.On("GetWallet", mock.Anything, uint(42)).Return(&models.Wallet{ID: 5, UserID: 42}, nil)
	svc.On("AttachTopUpProof", mock.Anything, uint(12), uint(5), mock.Anything).Return(wallet.ErrRequestDecided)

	resp, err := app.Test(newProofRequest(t, "/wallet/topup/12/proof"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	// The refused attach must not leave a media row behind the ref.
	assert.Equal(t, 0, resolver.persisted)
}

func TestUploadTopUpProofUnknownRequestPersistsNoMedia(t *testing.T) {
	svc := new(mockWalletService)
	resolver := &fakeResolver{}
	app := newProofTestApp(svc, resolver)

	svc.On("GetWallet", mock.Anything, uint(42)).Return(&models.Wallet{ID: 5, UserID: 42}, nil)
	svc.On("AttachTopUpProof", mock.Anything, uint(999), uint(5), mock.Anything).Return(wallet.ErrRequestNotFound)

	resp, err := app.Test(newProofRequest(t, "/wallet/topup/999/proof"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, resolver.persisted)
}

func TestUploadTopUpProofNoWallet(t *testing.T) {
	svc := new(mockWalletService)
	resolver := &fakeResolver{}
	app := newProofTestApp(svc, resolver)

	svc.On("GetWallet", mock.Anything, uint(42)).Return(nil, wallet.ErrWalletNotFound)

	resp, err := app.Test(newProofRequest(t, "/wallet/topup/12/proof"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, resolver.persisted)
	svc.AssertNotCalled(t, "AttachTopUpProof", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
