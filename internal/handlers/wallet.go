package handlers

import (
	"context"

	"tally/internal/models"
	"tally/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

// WalletStore is the subset of the repository used by the wallet endpoints.
type WalletStore interface {
	CreateWallet(ctx context.Context, holderID string, scale int32) (*models.Wallet, error)
	GetWallet(ctx context.Context, id string) (*models.Wallet, error)
	ListTransactions(ctx context.Context, walletID string, limit, offset int) ([]models.Transaction, error)
	ListTransfers(ctx context.Context, walletID string, limit, offset int) ([]models.Transfer, error)
}

// WalletHandler exposes wallet management endpoints.
type WalletHandler struct {
	store WalletStore
}

// NewWalletHandler creates a WalletHandler.
func NewWalletHandler(store WalletStore) *WalletHandler {
	return &WalletHandler{store: store}
}

// Create handles POST /wallets.
func (h *WalletHandler) Create(c *fiber.Ctx) error {
	var req struct {
		HolderID string `json:"holder_id"`
		Scale    int32  `json:"scale"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request")
	}
	if req.HolderID == "" {
		return response.BadRequest(c, "holder_id is required")
	}
	if req.Scale <= 0 {
		req.Scale = models.DefaultScale
	}

	wallet, err := h.store.CreateWallet(c.Context(), req.HolderID, req.Scale)
	if err != nil {
		return response.ServerError(c, "failed to create wallet")
	}
	return response.Success(c, "wallet created", wallet)
}

// Get handles GET /wallets/:id.
func (h *WalletHandler) Get(c *fiber.Ctx) error {
	wallet, err := h.store.GetWallet(c.Context(), c.Params("id"))
	if err != nil {
		return domainError(c, err)
	}
	return response.Success(c, "wallet", wallet)
}

// Transactions handles GET /wallets/:id/transactions.
func (h *WalletHandler) Transactions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	txs, err := h.store.ListTransactions(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return response.ServerError(c, "failed to list transactions")
	}
	return response.Success(c, "transactions", txs)
}

// Transfers handles GET /wallets/:id/transfers.
func (h *WalletHandler) Transfers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	transfers, err := h.store.ListTransfers(c.Context(), c.Params("id"), limit, offset)
	if err != nil {
		return response.ServerError(c, "failed to list transfers")
	}
	return response.Success(c, "transfers", transfers)
}
