package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// walletService handles wallet management.
type walletService struct {
	db      *gorm.DB
	manager *lifecycle.Manager[models.Wallet, struct{}]
}

// NewWalletService creates a new WalletServicer.
func NewWalletService(db *gorm.DB, opts ...lifecycle.Option) WalletServicer {
	store := &lifecycle.GormStore[models.Wallet]{
		NotFound:    apperrors.ErrWalletNotFound,
		OwnerColumn: "user_id",
		Build: func(f lifecycle.Fields) (*models.Wallet, error) {
			w := &models.Wallet{Balance: decimal.Zero}
			w.UserID, _ = f.String("user_id")
			w.Name, _ = f.String("name")
			if f.Has("balance") {
				balance, err := f.Decimal("balance")
				if err != nil {
					return nil, err
				}
				w.Balance = balance
			}
			return w, nil
		},
	}
	return &walletService{
		db:      db,
		manager: lifecycle.NewManager[models.Wallet, struct{}](db, "wallet", store, ownedHooks[models.Wallet]{}, opts...),
	}
}

// CreateWallet creates a wallet owned by the actor with an opening balance.
func (s *walletService) CreateWallet(ctx context.Context, actor lifecycle.Actor, name string, initialBalance decimal.Decimal) (*lifecycle.Result[models.Wallet], error) {
	if name == "" {
		return nil, fieldError(apperrors.ErrInvalidInput, "name", "is required")
	}
	return s.manager.Create(ctx, actor, lifecycle.Fields{"name": name, "balance": initialBalance})
}

// UpdateWallet renames a wallet. The balance is never edited directly.
func (s *walletService) UpdateWallet(ctx context.Context, actor lifecycle.Actor, id, name string) (*lifecycle.Result[models.Wallet], error) {
	fields := lifecycle.Fields{}
	if name != "" {
		fields["name"] = name
	}
	return s.manager.Update(ctx, actor, id, fields)
}

// DeleteWallet soft-deletes a wallet.
func (s *walletService) DeleteWallet(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Wallet], error) {
	return s.manager.Delete(ctx, actor, id)
}

// GetWalletByID retrieves one of the actor's wallets.
func (s *walletService) GetWalletByID(ctx context.Context, actor lifecycle.Actor, id string) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.UserID).First(&wallet).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrWalletNotFound)
	}
	return &wallet, nil
}

// ListWallets returns a page of the actor's wallets by name.
func (s *walletService) ListWallets(ctx context.Context, actor lifecycle.Actor, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error) {
	q := s.db.WithContext(ctx).Model(&models.Wallet{}).Where("user_id = ?", actor.UserID)
	result, err := pagination.Find[models.Wallet](q, page, func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
