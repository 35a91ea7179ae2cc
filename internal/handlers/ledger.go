// Package handlers exposes the ledger operations over HTTP.
package handlers

import (
	stderrors "errors"

	apperrors "tally/internal/errors"
	"tally/internal/models"
	"tally/internal/services/ledger"
	"tally/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// LedgerHandler exposes deposit, withdraw and transfer endpoints.
type LedgerHandler struct {
	service ledger.Service
}

// NewLedgerHandler creates a LedgerHandler.
func NewLedgerHandler(s ledger.Service) *LedgerHandler {
	return &LedgerHandler{service: s}
}

type operationRequest struct {
	WalletID string                 `json:"wallet_id"`
	Amount   string                 `json:"amount"`
	Meta     map[string]interface{} `json:"meta"`
}

type transferRequest struct {
	FromWalletID string                 `json:"from_wallet_id"`
	ToWalletID   string                 `json:"to_wallet_id"`
	Amount       string                 `json:"amount"`
	Meta         map[string]interface{} `json:"meta"`
}

// Deposit handles POST /wallets/deposit.
func (h *LedgerHandler) Deposit(c *fiber.Ctx) error {
	var req operationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return response.BadRequest(c, "invalid amount")
	}

	tx, err := h.service.Deposit(c.Context(), ledger.RefByID(req.WalletID), amount, models.NewJSON(req.Meta), true)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "deposit completed", tx)
}

// Withdraw handles POST /wallets/withdraw.
func (h *LedgerHandler) Withdraw(c *fiber.Ctx) error {
	var req operationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return response.BadRequest(c, "invalid amount")
	}

	tx, err := h.service.Withdraw(c.Context(), ledger.RefByID(req.WalletID), amount, models.NewJSON(req.Meta), true)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "withdrawal completed", tx)
}

// Transfer handles POST /wallets/transfer.
func (h *LedgerHandler) Transfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return response.BadRequest(c, "invalid amount")
	}

	tr, err := h.service.Transfer(
		c.Context(),
		ledger.RefByID(req.FromWalletID),
		ledger.RefByID(req.ToWalletID),
		amount,
		models.NewJSON(req.Meta),
		models.TransferStatusTransfer,
	)
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "transfer completed", tr)
}

// Balance handles GET /wallets/:id/balance.
func (h *LedgerHandler) Balance(c *fiber.Ctx) error {
	bal, err := h.service.Balance(c.Context(), ledger.RefByID(c.Params("id")))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "balance", fiber.Map{"balance": bal})
}

func domainError(c *fiber.Ctx, err error) error {
	var derr *apperrors.DomainError
	if !stderrors.As(err, &derr) {
		return response.ServerError(c, "operation failed")
	}

	switch derr {
	case apperrors.ErrWalletNotFound, apperrors.ErrTransactionNotFound:
		return response.NotFound(c, derr.Message)
	case apperrors.ErrAmountInvalid:
		return response.BadRequest(c, derr.Message)
	default:
		return response.UnprocessableEntity(c, derr.Message)
	}
}
