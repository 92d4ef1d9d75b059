package handlers

import (
	"errors"
	"strconv"

	"payvault/internal/middleware"
	"payvault/internal/services/history"
	"payvault/internal/services/transaction"
	"payvault/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AdminHandler struct {
	processor      *transaction.Processor
	historyService history.Service
}

func NewAdminHandler(processor *transaction.Processor, historyService history.Service) *AdminHandler {
	return &AdminHandler{
		processor:      processor,
		historyService: historyService,
	}
}

type decisionBody struct {
	Decision string `json:"decision"`
	// OverrideAmount replaces the requested amount on top-up approval,
	// for when the received transfer differs from what was declared.
	OverrideAmount *int64 `json:"override_amount,omitempty"`
}

// DecideTopUp approves or rejects a top-up request.
func (h *AdminHandler) DecideTopUp(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "invalid request id")
	}

	var body decisionBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	req, err := h.processor.DecideTopUp(c.Context(), uint(requestID), transaction.Decision(body.Decision), claims.UserID, body.OverrideAmount)
	if err != nil {
		return h.mapDecisionError(c, err)
	}
	return utils.Success(c, req)
}

// DecideWithdraw approves or rejects a withdrawal request.
func (h *AdminHandler) DecideWithdraw(c *fiber.Ctx) error {
	claims, ok := middleware.GetUserClaims(c)
	if !ok {
		return utils.Unauthorized(c, "authentication required")
	}

	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "invalid request id")
	}

	var body decisionBody
	if err := c.BodyParser(&body); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	req, err := h.processor.DecideWithdraw(c.Context(), uint(requestID), transaction.Decision(body.Decision), claims.UserID)
	if err != nil {
		return h.mapDecisionError(c, err)
	}
	return utils.Success(c, req)
}

// ListTopUps lists top-up requests across all wallets, optionally
// filtered by wallet_id and status.
func (h *AdminHandler) ListTopUps(c *fiber.Ctx) error {
	walletID, err := parseWalletFilter(c.Query("wallet_id"))
	if err != nil {
		return utils.BadRequest(c, "invalid wallet_id")
	}

	status, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	pagination := utils.GetPagination(c, 1, 20)
	requests, total, err := h.historyService.ListTopUps(c.Context(), walletID, status, pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "failed to list top-up requests")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(requests, pagination))
}

// ListWithdrawals lists withdrawal requests across all wallets, optionally
// filtered by wallet_id and status.
func (h *AdminHandler) ListWithdrawals(c *fiber.Ctx) error {
	walletID, err := parseWalletFilter(c.Query("wallet_id"))
	if err != nil {
		return utils.BadRequest(c, "invalid wallet_id")
	}

	status, err := parseStatusFilter(c.Query("status"))
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	pagination := utils.GetPagination(c, 1, 20)
	requests, total, err := h.historyService.ListWithdrawals(c.Context(), walletID, status, pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "failed to list withdrawal requests")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(requests, pagination))
}

// ListWalletLedger lists the ledger entries of a specific wallet.
func (h *AdminHandler) ListWalletLedger(c *fiber.Ctx) error {
	walletID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return utils.BadRequest(c, "invalid wallet id")
	}

	pagination := utils.GetPagination(c, 1, 20)
	entries, total, err := h.historyService.ListLedgerEntries(c.Context(), uint(walletID), pagination.Limit, pagination.Offset)
	if err != nil {
		return utils.InternalError(c, "failed to list ledger entries")
	}
	pagination.SetTotal(total)

	return utils.Success(c, utils.NewPaginatedResponse(entries, pagination))
}

func (h *AdminHandler) mapDecisionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, transaction.ErrInvalidDecision):
		return utils.BadRequest(c, "decision must be APPROVE or REJECT")
	case errors.Is(err, transaction.ErrInvalidAmount):
		return utils.BadRequest(c, "override amount must be positive")
	case errors.Is(err, transaction.ErrRequestNotFound):
		return utils.NotFound(c, "request not found")
	case errors.Is(err, transaction.ErrAlreadyDecided):
		return utils.Conflict(c, "request has already been decided")
	case errors.Is(err, transaction.ErrInsufficientAvailableBalance):
		return utils.UnprocessableEntity(c, "insufficient available balance")
	case errors.Is(err, transaction.ErrConflict):
		return utils.Conflict(c, "decision could not be applied, please retry")
	}
	return utils.InternalError(c, "failed to apply decision")
}

func parseWalletFilter(raw string) (uint, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
