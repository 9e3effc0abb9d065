package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"cashflow/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Name:     fmt.Sprintf("Test User %d", nextID()),
		Email:    email,
		Password: string(hash),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestPermission creates a permission with the given name.
func CreateTestPermission(t *testing.T, db *gorm.DB, name string) *models.Permission {
	t.Helper()

	perm := &models.Permission{Name: name}
	if err := db.Create(perm).Error; err != nil {
		t.Fatalf("failed to create test permission: %v", err)
	}
	return perm
}

// CreateTestRole creates a role with the given name and no permissions.
func CreateTestRole(t *testing.T, db *gorm.DB, name string) *models.Role {
	t.Helper()

	role := &models.Role{Name: name}
	if err := db.Create(role).Error; err != nil {
		t.Fatalf("failed to create test role: %v", err)
	}
	return role
}

// CreateTestWallet creates a wallet with zero balance.
func CreateTestWallet(t *testing.T, db *gorm.DB, userID string) *models.Wallet {
	t.Helper()
	return CreateTestWalletWithBalance(t, db, userID, decimal.Zero)
}

// CreateTestWalletWithBalance creates a wallet with the given balance.
func CreateTestWalletWithBalance(t *testing.T, db *gorm.DB, userID string, balance decimal.Decimal) *models.Wallet {
	t.Helper()

	wallet := &models.Wallet{
		UserID:  userID,
		Name:    fmt.Sprintf("Test Wallet %d", nextID()),
		Balance: balance,
	}
	if err := db.Create(wallet).Error; err != nil {
		t.Fatalf("failed to create test wallet: %v", err)
	}
	return wallet
}

// CreateTestCategory creates a category of the given type.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   fmt.Sprintf("Test Category %d", nextID()),
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction inserts a transaction row directly. It does not
// touch the wallet balance.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID, walletID string, amount decimal.Decimal, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		WalletID:   walletID,
		Amount:     amount,
		Date:       date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestAppearance appends an appearance row.
func CreateTestAppearance(t *testing.T, db *gorm.DB, editorID, name, icon, logo string) *models.Appearance {
	t.Helper()

	a := &models.Appearance{
		EditedBy: editorID,
		NameApp:  name,
		IconApp:  icon,
		LogoApp:  logo,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("failed to create test appearance: %v", err)
	}
	return a
}
