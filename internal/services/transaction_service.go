package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// Outcome reported after a transaction is recorded.
const (
	TransactionRecordedMessage  = "Transaction recorded"
	TransactionRecordedRedirect = "/transactions"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db      *gorm.DB
	manager *lifecycle.Manager[models.Transaction, models.TransactionType]
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, opts ...lifecycle.Option) TransactionServicer {
	store := &lifecycle.GormStore[models.Transaction]{
		NotFound:    apperrors.ErrTransactionNotFound,
		OwnerColumn: "user_id",
		Build:       buildTransaction,
		Preload:     []string{"Category", "Wallet"},
		Retry:       retryTransactionCode,
	}
	return &transactionService{
		db:      db,
		manager: lifecycle.NewManager[models.Transaction, models.TransactionType](db, "transaction", store, transactionHooks{}, opts...),
	}
}

// retryTransactionCode clears the code after a unique violation so the insert
// draws a new one. The lookup in BeforeCreate cannot see a concurrent insert.
func retryTransactionCode(t *models.Transaction, err error) bool {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return false
	}
	t.Code = ""
	return true
}

func buildTransaction(f lifecycle.Fields) (*models.Transaction, error) {
	amount, err := f.Decimal("amount")
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	t := &models.Transaction{Amount: amount}
	t.UserID, _ = f.String("user_id")
	t.CategoryID, _ = f.String("category_id")
	t.WalletID, _ = f.String("wallet_id")
	t.Description, _ = f.String("description")
	if date, ok := f.Time("date"); ok && !date.IsZero() {
		t.Date = date
	} else {
		t.Date = time.Now()
	}
	return t, nil
}

// transactionHooks takes the transaction type out of the payload, then
// moves the wallet balance by the signed amount once the row exists.
type transactionHooks struct {
	lifecycle.NopHooks[models.Transaction, models.TransactionType]
}

func (transactionHooks) BeforeCreate(tx *gorm.DB, actor lifecycle.Actor, f lifecycle.Fields) (lifecycle.Fields, models.TransactionType, error) {
	requested, _ := f.TakeString("type")
	f["user_id"] = actor.UserID

	categoryID, _ := f.String("category_id")
	var category models.Category
	if err := tx.Where("id = ? AND user_id = ?", categoryID, actor.UserID).First(&category).Error; err != nil {
		return nil, "", lookupError(err, apperrors.ErrCategoryNotFound)
	}

	txType := models.TransactionType(category.Type)
	if requested != "" && models.TransactionType(requested) != txType {
		return nil, "", apperrors.ErrTransactionTypeMismatch
	}
	return f, txType, nil
}

func (transactionHooks) AfterCreate(tx *gorm.DB, actor lifecycle.Actor, t *models.Transaction, _ lifecycle.Fields, txType models.TransactionType) error {
	delta := models.SignedAmount(txType, t.Amount)
	res := tx.Model(&models.Wallet{}).
		Where("id = ? AND user_id = ?", t.WalletID, actor.UserID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrWalletNotFound
	}
	return nil
}

func (transactionHooks) RedirectAfterCreate(*models.Transaction, lifecycle.Fields) (lifecycle.Outcome, bool) {
	return lifecycle.Outcome{Message: TransactionRecordedMessage, Redirect: TransactionRecordedRedirect}, true
}

// CreateTransaction records a transaction and applies it to the wallet
// balance atomically: income adds the amount, expense subtracts it.
func (s *transactionService) CreateTransaction(ctx context.Context, actor lifecycle.Actor, in CreateTransactionInput) (*lifecycle.Result[models.Transaction], error) {
	if !in.Amount.IsPositive() {
		return nil, fieldError(apperrors.ErrInvalidInput, "amount", "must be a number greater than zero")
	}

	fields := lifecycle.Fields{
		"category_id": in.CategoryID,
		"wallet_id":   in.WalletID,
		"amount":      in.Amount,
		"description": in.Description,
		"date":        in.Date,
	}
	if in.Type != "" {
		fields["type"] = string(in.Type)
	}
	return s.manager.Create(ctx, actor, fields)
}

// UpdateTransaction edits the description or date. The code, amount, wallet
// and category of a recorded transaction never change.
func (s *transactionService) UpdateTransaction(ctx context.Context, actor lifecycle.Actor, id string, in UpdateTransactionInput) (*lifecycle.Result[models.Transaction], error) {
	fields := lifecycle.Fields{}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Date != nil {
		fields["date"] = *in.Date
	}
	return s.manager.Update(ctx, actor, id, fields)
}

// DeleteTransaction soft-deletes a transaction. The wallet balance keeps the
// amount it was moved by.
func (s *transactionService) DeleteTransaction(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Transaction], error) {
	return s.manager.Delete(ctx, actor, id)
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(ctx context.Context, actor lifecycle.Actor, id string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.WithContext(ctx).
		Preload("Category").Preload("Wallet").
		Where("id = ? AND user_id = ?", id, actor.UserID).
		First(&transaction).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrTransactionNotFound)
	}
	return &transaction, nil
}

// ListTransactions returns a page of the actor's transactions, newest first,
// with category, wallet and user loaded.
func (s *transactionService) ListTransactions(ctx context.Context, actor lifecycle.Actor, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", actor.UserID)
	q = applyTransactionFilters(q, filter)

	result, err := pagination.Find[models.Transaction](q, page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Category").Preload("Wallet").Preload("User").Order("date DESC").Order("created_at DESC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.WalletID != nil {
		q = q.Where("wallet_id = ?", *f.WalletID)
	}
	return q
}
