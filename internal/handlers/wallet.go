package handlers

import (
	"errors"
	"strconv"
	"strings"

	"payvault/internal/middleware"
	"payvault/internal/models"
	"payvault/internal/services/attachment"
	"payvault/internal/services/history"
	"payvault/internal/services/wallet"
	"payvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	walletService  wallet.Service
	historyService history.Service
	attachments    attachment.Resolver
}

func NewWalletHandler(walletService wallet.Service, historyService history.Service, attachments attachment.Resolver) *WalletHandler {
	return &WalletHandler{
		walletService:  walletService,
		historyService: historyService,
		attachments:    attachments,
	}
}

type topUpRequestBody struct {
	Amount int64 `json:"amount"`
}

type withdrawRequestBody struct {
	Amount int64 `json:"amount"`
}

// GetWallet returns the authenticated user's wallet with its available
// balance (balance minus pending withdrawal reservations).
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) {
			return utils.NotFound(c, "wallet not found")
		}
		return utils.InternalError(c, "failed to fetch wallet")
	}

	available, err := h.walletService.AvailableBalance(c.Context(), w.ID)
	if err != nil {
		return utils.InternalError(c, "failed to compute available balance")
	}

	return utils.Success(c, fiber.Map{
		"id":                w.ID,
		"balance":           w.Balance,
		"available_balance": available,
		"version":           w.Version,
		"updated_at":        w.UpdatedAt,
	})
}

// SubmitTopUp creates a PENDING top-up request for the user's wallet.
func (h *WalletHandler) SubmitTopUp(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	var body topUpRequestBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "wallet not found")
	}

	req, err := h.walletService.SubmitTopUp(c.Context(), w.ID, body.Amount, nil)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidAmount) {
			return utils.BadRequest(c, "amount must be positive")
		}
		return utils.InternalError(c, "failed to submit top-up request")
	}

	return utils.Created(c, req)
}

// UploadTopUpProof attaches a proof-of-payment file to a pending top-up
// request. The multipart field name is "proof".
func (h *WalletHandler) UploadTopUpProof(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "invalid request id")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "wallet not found")
	}

	file, err := c.FormFile("proof")
	if err != nil {
		return utils.BadRequest(c, "proof file is required")
	}

	// The media row and the attach commit together; a refused attach
	// rolls the media row back.
	ref, err := h.attachments.Store(c.Context(), attachment.Upload{
		FileName:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		SizeBytes:   file.Size,
		UploadedBy:  claims.UserID,
	}, func(ref string) error {
		return h.walletService.AttachTopUpProof(c.Context(), uint(requestID), w.ID, ref)
	})
	if err != nil {
		switch {
		case errors.Is(err, attachment.ErrEmptyUpload):
			return utils.BadRequest(c, "proof file is empty")
		case errors.Is(err, wallet.ErrRequestNotFound):
			return utils.NotFound(c, "top-up request not found")
		case errors.Is(err, wallet.ErrRequestDecided):
			return utils.Conflict(c, "request has already been decided")
		}
		return utils.InternalError(c, "failed to attach proof")
	}

	return utils.Success(c, fiber.Map{"media_ref": ref})
}

// SubmitWithdraw creates a PENDING withdrawal request. The amount is
// checked against the available balance so users get fast feedback; the
// authoritative check happens again at decision time.
func (h *WalletHandler) SubmitWithdraw(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	var body withdrawRequestBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "wallet not found")
	}

	req, err := h.walletService.SubmitWithdraw(c.Context(), w.ID, body.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInvalidAmount):
			return utils.BadRequest(c, "amount must be positive")
		case errors.Is(err, wallet.ErrInsufficientAvailableBalance):
			return utils.UnprocessableEntity(c, "insufficient available balance")
		}
		return utils.InternalError(c, "failed to submit withdrawal request")
	}

	return utils.Created(c, req)
}

// ListTopUps returns the user's top-up requests, newest first.
func (h *WalletHandler) ListTopUps(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "wallet not found")
	}

	status, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	pagination := utils.GetPagination(c, 1, 20)
	requests, total, err := h.historyService.ListTopUps(c.Context(), w.ID, status, pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "failed to list top-up requests")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(requests, pagination))
}

// ListWithdrawals returns the user's withdrawal requests, newest first.
func (h *WalletHandler) ListWithdrawals(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "wallet not found")
	}

	status, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	pagination := utils.GetPagination(c, 1, 20)
	requests, total, err := h.historyService.ListWithdrawals(c.Context(), w.ID, status, pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "failed to list withdrawal requests")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(requests, pagination))
}

// ListLedger returns the wallet's ledger entries, newest first.
func (h *WalletHandler) ListLedger(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	w, err := h.walletService.GetWallet(c.Context(), claims.UserID)
	if err != nil {
		return utils.NotFound(c, "wallet not found")
	}

	pagination := utils.GetPagination(c, 1, 20)
	entries, total, err := h.historyService.ListLedgerEntries(c.Context(), w.ID, pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "failed to list ledger entries")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(entries, pagination))
}

func parseStatusFilter(raw string) (*models.RequestStatus, error) {
	if raw == "" {
		return nil, nil
	}
	var status models.RequestStatus
	switch strings.ToUpper(raw) {
	case "PENDING":
		status = models.StatusPending
	case "APPROVED":
		status = models.StatusApproved
	case "REJECTED":
		status = models.StatusRejected
	default:
		return nil, errors.New("status must be one of PENDING, APPROVED, REJECTED")
	}
	return &status, nil
}
