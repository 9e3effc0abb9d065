package models

import (
	"time"

	"cashflow/internal/uuid"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionCodePrefix starts every transaction code.
const TransactionCodePrefix = "TRX"

// codeSuffix produces the random tail of a transaction code. Tests replace it
// to force collisions.
var codeSuffix = func() string { return uuid.RandomSuffix(13) }

// Transaction represents a single recorded money movement
type Transaction struct {
	Base
	Code        string          `gorm:"<-:create;uniqueIndex;not null" json:"code"`
	UserID      string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID  string          `gorm:"type:uuid;not null;index" json:"category_id"`
	WalletID    string          `gorm:"type:uuid;not null;index" json:"wallet_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"not null" json:"date"`

	// Relationships
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Wallet   *Wallet   `gorm:"foreignKey:WalletID" json:"wallet,omitempty"`
}

// SignedAmount returns the balance delta a transaction of the given type
// applies: negative for expenses, positive for everything else.
func SignedAmount(txType TransactionType, amount decimal.Decimal) decimal.Decimal {
	if txType == TransactionTypeExpense {
		return amount.Neg()
	}
	return amount
}

// BeforeCreate assigns the id and a code that no existing row (soft-deleted
// ones included) already uses.
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if err := t.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if t.Code != "" {
		return nil
	}

	day := time.Now()
	lookup := tx.Session(&gorm.Session{NewDB: true})
	for {
		code := TransactionCodePrefix + day.Format("20060102") + codeSuffix()
		var n int64
		if err := lookup.Unscoped().Model(&Transaction{}).Where("code = ?", code).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			t.Code = code
			return nil
		}
	}
}
