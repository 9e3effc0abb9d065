package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/shopspring/decimal"

	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// CreateUserInput holds the validated payload for a new user.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserInput holds the fields to change; nil means unchanged.
type UpdateUserInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(ctx context.Context, actor lifecycle.Actor, in CreateUserInput) (*lifecycle.Result[models.User], error)
	UpdateUser(ctx context.Context, actor lifecycle.Actor, id string, in UpdateUserInput) (*lifecycle.Result[models.User], error)
	DeleteUser(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.User], error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(ctx context.Context, email, password string) (*models.User, error)
}

// RoleInput holds a role payload. On update a nil Name leaves the name as is
// and a nil Permissions leaves the permission set as is.
type RoleInput struct {
	Name        *string
	Permissions *[]string
}

// RoleServicer defines the contract for role management.
type RoleServicer interface {
	CreateRole(ctx context.Context, actor lifecycle.Actor, in RoleInput) (*lifecycle.Result[models.Role], error)
	UpdateRole(ctx context.Context, actor lifecycle.Actor, id string, in RoleInput) (*lifecycle.Result[models.Role], error)
	DeleteRole(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Role], error)
	GetRoleByID(ctx context.Context, id string) (*models.Role, error)
	ListRoles(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Role], error)
}

// PermissionServicer defines the contract for permission management.
type PermissionServicer interface {
	CreatePermission(ctx context.Context, actor lifecycle.Actor, name string) (*lifecycle.Result[models.Permission], error)
	UpdatePermission(ctx context.Context, actor lifecycle.Actor, id, name string) (*lifecycle.Result[models.Permission], error)
	DeletePermission(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Permission], error)
	GetPermissionByID(ctx context.Context, id string) (*models.Permission, error)
	ListPermissions(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Permission], error)
}

// CategoryInput holds a category payload; nil fields are unchanged on update.
type CategoryInput struct {
	Name        *string
	Type        *models.CategoryType
	Description *string
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(ctx context.Context, actor lifecycle.Actor, in CategoryInput) (*lifecycle.Result[models.Category], error)
	UpdateCategory(ctx context.Context, actor lifecycle.Actor, id string, in CategoryInput) (*lifecycle.Result[models.Category], error)
	DeleteCategory(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Category], error)
	GetCategoryByID(ctx context.Context, actor lifecycle.Actor, id string) (*models.Category, error)
	ListCategories(ctx context.Context, actor lifecycle.Actor, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
}

// WalletServicer defines the contract for wallet management. Balances are
// only ever moved by transactions.
type WalletServicer interface {
	CreateWallet(ctx context.Context, actor lifecycle.Actor, name string, initialBalance decimal.Decimal) (*lifecycle.Result[models.Wallet], error)
	UpdateWallet(ctx context.Context, actor lifecycle.Actor, id, name string) (*lifecycle.Result[models.Wallet], error)
	DeleteWallet(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Wallet], error)
	GetWalletByID(ctx context.Context, actor lifecycle.Actor, id string) (*models.Wallet, error)
	ListWallets(ctx context.Context, actor lifecycle.Actor, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error)
}

// CreateTransactionInput holds the validated payload for a new transaction.
// An empty Type is taken from the category.
type CreateTransactionInput struct {
	CategoryID  string
	WalletID    string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Description string
	Date        time.Time
}

// UpdateTransactionInput holds the editable transaction fields; nil means
// unchanged. Amount, wallet and category are fixed once recorded.
type UpdateTransactionInput struct {
	Description *string
	Date        *time.Time
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *string
	WalletID   *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(ctx context.Context, actor lifecycle.Actor, in CreateTransactionInput) (*lifecycle.Result[models.Transaction], error)
	UpdateTransaction(ctx context.Context, actor lifecycle.Actor, id string, in UpdateTransactionInput) (*lifecycle.Result[models.Transaction], error)
	DeleteTransaction(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Transaction], error)
	GetTransactionByID(ctx context.Context, actor lifecycle.Actor, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, actor lifecycle.Actor, filter TransactionFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

// AppearanceInput is one settings change. Nil uploads keep the current files.
type AppearanceInput struct {
	NameApp *string
	Icon    *multipart.FileHeader
	Logo    *multipart.FileHeader
}

// AppearanceServicer defines the contract for the branding history.
type AppearanceServicer interface {
	Current(ctx context.Context) (*models.Appearance, error)
	Apply(ctx context.Context, actor lifecycle.Actor, in AppearanceInput) (*models.Appearance, error)
	History(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Appearance], error)
}

// DashboardSummary is the overview shown on the dashboard.
type DashboardSummary struct {
	Month              string               `json:"month"`
	IncomeMonth        decimal.Decimal      `json:"income_month"`
	ExpenseMonth       decimal.Decimal      `json:"expense_month"`
	TotalBalance       decimal.Decimal      `json:"total_balance"`
	Wallets            []models.Wallet      `json:"wallets"`
	RecentTransactions []models.Transaction `json:"recent_transactions"`
}

// DashboardServicer defines the contract for the dashboard overview.
type DashboardServicer interface {
	Summary(ctx context.Context, actor lifecycle.Actor, now time.Time) (*DashboardSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(actor lifecycle.Actor, action, resourceType, resourceID string, changes map[string]interface{})
}
