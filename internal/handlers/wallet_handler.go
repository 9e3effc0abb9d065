package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"cashflow/internal/services"
)

// WalletHandler handles wallet requests.
type WalletHandler struct {
	walletService services.WalletServicer
	auditService  services.AuditServicer
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService services.WalletServicer, auditService services.AuditServicer) *WalletHandler {
	return &WalletHandler{walletService: walletService, auditService: auditService}
}

// CreateWalletRequest represents the request payload for creating a wallet
type CreateWalletRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	InitialBalance decimal.Decimal `json:"initial_balance" swaggertype:"string" example:"150000.00"`
}

// UpdateWalletRequest represents the request payload for renaming a wallet
type UpdateWalletRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// CreateWallet handles the creation of a new wallet
// @Summary     Create a wallet
// @Description Create a wallet with an opening balance
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWalletRequest true "Wallet details"
// @Success     201 {object} models.Wallet "Wallet created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /wallets [post]
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.walletService.CreateWallet(c.Request.Context(), actor, req.Name, req.InitialBalance)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CREATE_WALLET", "wallet", res.Entity.ID,
		map[string]interface{}{"name": req.Name, "initial_balance": req.InitialBalance.String()})

	respondMutation(c, http.StatusCreated, "wallet", res)
}

// GetUserWallets returns a page of the user's wallets
// @Summary     List wallets
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Wallet] "Paginated wallets"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /wallets [get]
func (h *WalletHandler) GetUserWallets(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.walletService.ListWallets(c.Request.Context(), actor, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetWalletByID returns a single wallet
// @Summary     Get wallet by ID
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Success     200 {object} models.Wallet "Wallet details"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [get]
func (h *WalletHandler) GetWalletByID(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	wallet, err := h.walletService.GetWalletByID(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallet": wallet})
}

// UpdateWallet handles renaming a wallet
// @Summary     Update wallet
// @Description Rename a wallet. Balances only move through transactions.
// @Tags        wallets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Wallet ID"
// @Param       request body UpdateWalletRequest true "New name"
// @Success     200 {object} models.Wallet "Updated wallet"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [put]
func (h *WalletHandler) UpdateWallet(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	res, err := h.walletService.UpdateWallet(c.Request.Context(), actor, id, req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_WALLET", "wallet", id, map[string]interface{}{"name": req.Name})

	respondMutation(c, http.StatusOK, "wallet", res)
}

// DeleteWallet handles deleting a wallet
// @Summary     Delete wallet
// @Tags        wallets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Wallet ID"
// @Success     200 {object} MessageResponse "Wallet deleted"
// @Failure     404 {object} ErrorResponse "Wallet not found"
// @Router      /wallets/{id} [delete]
func (h *WalletHandler) DeleteWallet(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	res, err := h.walletService.DeleteWallet(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "DELETE_WALLET", "wallet", id, nil)

	respondDeleted(c, res)
}
