package models

import "github.com/shopspring/decimal"

// Wallet is a named balance-holding account belonging to a user
type Wallet struct {
	Base
	UserID  string          `gorm:"type:uuid;not null;index" json:"user_id"`
	Name    string          `gorm:"not null" json:"name"`
	Balance decimal.Decimal `gorm:"type:numeric(20,2);not null" json:"balance"`
}
