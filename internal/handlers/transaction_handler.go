package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/models"
	"cashflow/internal/services"
	"cashflow/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// The type defaults to the category's type.
type CreateTransactionRequest struct {
	CategoryID  string                 `json:"category_id" binding:"required,uuid"`
	WalletID    string                 `json:"wallet_id" binding:"required,uuid"`
	Type        models.TransactionType `json:"type" binding:"omitempty,transaction_type"`
	Amount      decimal.Decimal        `json:"amount" binding:"required,decimal_gt0" swaggertype:"string" example:"25000.00"`
	Description string                 `json:"description" binding:"max=500"`
	Date        *string                `json:"date"`
}

// UpdateTransactionRequest represents the request payload for updating a transaction.
type UpdateTransactionRequest struct {
	Description *string `json:"description" binding:"omitempty,max=500"`
	Date        *string `json:"date"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record an income or expense against a wallet. The wallet balance moves in the same database transaction.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Wallet or category not found"
// @Failure     422 {object} ErrorResponse "Type does not match the category"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	actor, err := getActor(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	transactionDate := time.Now()
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
				map[string]string{"date": parseErr.Error()}))
			return
		}
		transactionDate = parsed
	}

	res, err := h.transactionService.CreateTransaction(c.Request.Context(), actor, services.CreateTransactionInput{
		CategoryID:  req.CategoryID,
		WalletID:    req.WalletID,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		Date:        transactionDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "CREATE_TRANSACTION", "transaction", res.Entity.ID,
		map[string]interface{}{
			"code":      res.Entity.Code,
			"wallet_id": req.WalletID,
			"amount":    req.Amount.String(),
		})

	respondMutation(c, http.StatusCreated, "transaction", res)
}

// GetUserTransactions handles the retrieval of the user's transactions
// @Summary     Get user transactions
// @Description Get a paginated list of the authenticated user's transactions, newest first, with optional filters
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       wallet_id   query string false "Filter by wallet ID"
// @Param       category_id query string false "Filter by category ID"
// @Param       from_date   query string false "Filter by start date (RFC3339 e.g. 2024-01-01T00:00:00Z, or YYYY-MM-DD)"
// @Param       to_date     query string false "Filter by end date (RFC3339 or YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), actor, filter, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// parseTransactionFilter reads the optional list filters from the query string.
func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	invalid := map[string]string{}

	if v := c.Query("from_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			invalid["from_date"] = err.Error()
		} else {
			filter.FromDate = &t
		}
	}

	if v := c.Query("to_date"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			invalid["to_date"] = err.Error()
		} else {
			filter.ToDate = &t
		}
	}

	if v := c.Query("category_id"); v != "" {
		if !uuid.IsValid(v) {
			invalid["category_id"] = "must be a valid id"
		} else {
			filter.CategoryID = &v
		}
	}

	if v := c.Query("wallet_id"); v != "" {
		if !uuid.IsValid(v) {
			invalid["wallet_id"] = "must be a valid id"
		} else {
			filter.WalletID = &v
		}
	}

	if len(invalid) > 0 {
		return filter, apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed", invalid)
	}
	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
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

	transaction, err := h.transactionService.GetTransactionByID(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles updating an existing transaction
// @Summary     Update transaction
// @Description Update the description or date of a transaction. Amount, wallet, category and code never change.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
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

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	in := services.UpdateTransactionInput{Description: req.Description}
	if req.Date != nil && *req.Date != "" {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithFields(apperrors.ErrInvalidInput, "Validation failed",
				map[string]string{"date": parseErr.Error()}))
			return
		}
		in.Date = &parsed
	}

	res, err := h.transactionService.UpdateTransaction(c.Request.Context(), actor, id, in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "UPDATE_TRANSACTION", "transaction", id, nil)

	respondMutation(c, http.StatusOK, "transaction", res)
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a transaction. The wallet balance is not reversed.
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
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

	res, err := h.transactionService.DeleteTransaction(c.Request.Context(), actor, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(actor, "DELETE_TRANSACTION", "transaction", id, nil)

	respondDeleted(c, res)
}
