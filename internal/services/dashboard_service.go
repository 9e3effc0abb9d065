package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
)

const recentTransactionLimit = 5

// dashboardService builds the dashboard overview.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// Summary returns the actor's income and expense totals for the month of
// now, their wallets and their most recent transactions.
func (s *dashboardService) Summary(ctx context.Context, actor lifecycle.Actor, now time.Time) (*DashboardSummary, error) {
	db := s.db.WithContext(ctx)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	income, err := s.monthTotal(db, actor.UserID, models.CategoryTypeIncome, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	expense, err := s.monthTotal(db, actor.UserID, models.CategoryTypeExpense, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	var wallets []models.Wallet
	if err := db.Where("user_id = ?", actor.UserID).Order("name ASC").Find(&wallets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	total := decimal.Zero
	for _, w := range wallets {
		total = total.Add(w.Balance)
	}

	var recent []models.Transaction
	if err := db.Preload("Category").Preload("Wallet").
		Where("user_id = ?", actor.UserID).
		Order("date DESC").Order("created_at DESC").
		Limit(recentTransactionLimit).
		Find(&recent).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if wallets == nil {
		wallets = []models.Wallet{}
	}
	if recent == nil {
		recent = []models.Transaction{}
	}
	return &DashboardSummary{
		Month:              monthStart.Format("2006-01"),
		IncomeMonth:        income,
		ExpenseMonth:       expense,
		TotalBalance:       total,
		Wallets:            wallets,
		RecentTransactions: recent,
	}, nil
}

// monthTotal sums the amounts of the user's transactions in [from, to) whose
// category has the given type.
func (s *dashboardService) monthTotal(db *gorm.DB, userID string, categoryType models.CategoryType, from, to time.Time) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := db.Model(&models.Transaction{}).
		Joins("JOIN categories ON categories.id = transactions.category_id").
		Where("transactions.user_id = ? AND categories.type = ?", userID, categoryType).
		Where("transactions.date >= ? AND transactions.date < ?", from, to).
		Pluck("transactions.amount", &amounts).Error
	if err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total, nil
}
