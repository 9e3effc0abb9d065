package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"cashflow/internal/lifecycle"
	"cashflow/internal/logger"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/router"
	"cashflow/internal/services"
)

// Built-in role names.
const (
	RoleSuperAdmin = "superadmin"
	RoleAdmin      = "admin"
	RoleUser       = "User"
)

var allPermissions = []string{
	"dashboard",
	"user-page", "user-create", "user-edit", "user-delete",
	"role-page", "role-create", "role-edit", "role-delete",
	"permission-page", "permission-create", "permission-edit", "permission-delete",
	"appearance-edit",
	"category-page", "category-create", "category-edit", "category-delete",
	"wallet-page", "wallet-create", "wallet-edit", "wallet-delete",
	"transaction-page", "transaction-create", "transaction-edit", "transaction-delete",
}

var rolePermissions = map[string][]string{
	RoleSuperAdmin: allPermissions,
	RoleAdmin:      {"dashboard", "user-page", "user-create", "user-edit"},
	RoleUser: {
		"dashboard",
		"category-page", "category-create", "category-edit", "category-delete",
		"wallet-page", "wallet-create", "wallet-edit", "wallet-delete",
		"transaction-page", "transaction-create", "transaction-edit", "transaction-delete",
	},
}

var defaultWallets = []string{"Cash", "BCA", "DANA"}

var defaultCategories = []struct {
	name        string
	kind        models.CategoryType
	description string
}{
	{"Gaji", models.CategoryTypeIncome, "Gaji Bulanan"},
	{"Jajan", models.CategoryTypeExpense, "Jajanan"},
	{"Pengeluaran Bulanan", models.CategoryTypeExpense, "Pengeluaran Bulanan"},
}

// ErrAlreadySeeded is returned when permissions already exist.
var ErrAlreadySeeded = errors.New("database already seeded")

// Options are the operator-supplied seed values.
type Options struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
	AppName       string
}

// Validate checks the options before anything is written.
func (o Options) Validate() error {
	if o.AdminName == "" || o.AdminEmail == "" {
		return errors.New("admin name and email are required")
	}
	if len(o.AdminPassword) < 8 {
		return errors.New("admin password must be at least 8 characters (--admin-password or CASHFLOW_ADMIN_PASSWORD)")
	}
	return nil
}

// Seed writes the initial data through the services, so every row passes
// through the same lifecycle hooks as API writes.
func Seed(ctx context.Context, svc *router.Services, opts Options) error {
	log := logger.Get()

	existing, err := svc.Permissions.ListPermissions(ctx, pagination.PageRequest{Page: 1, PageSize: 1})
	if err != nil {
		return fmt.Errorf("check existing permissions: %w", err)
	}
	if existing.TotalItems > 0 {
		return ErrAlreadySeeded
	}

	system := lifecycle.Actor{IP: "127.0.0.1"}
	for _, name := range allPermissions {
		if _, err := svc.Permissions.CreatePermission(ctx, system, name); err != nil {
			return fmt.Errorf("create permission %s: %w", name, err)
		}
	}

	for _, role := range []string{RoleSuperAdmin, RoleAdmin, RoleUser} {
		name := role
		perms := rolePermissions[role]
		if _, err := svc.Roles.CreateRole(ctx, system, services.RoleInput{Name: &name, Permissions: &perms}); err != nil {
			return fmt.Errorf("create role %s: %w", role, err)
		}
	}
	log.Infof("Seeded %d permissions and %d roles", len(allPermissions), len(rolePermissions))

	res, err := svc.Users.CreateUser(ctx, system, services.CreateUserInput{
		Name:     opts.AdminName,
		Email:    opts.AdminEmail,
		Password: opts.AdminPassword,
		Role:     RoleSuperAdmin,
	})
	if err != nil {
		return fmt.Errorf("create super-admin: %w", err)
	}
	admin := lifecycle.Actor{UserID: res.Entity.ID, IP: system.IP}
	log.Infow("Seeded super-admin", "email", res.Entity.Email, "id", res.Entity.ID)

	for _, name := range defaultWallets {
		if _, err := svc.Wallets.CreateWallet(ctx, admin, name, decimal.Zero); err != nil {
			return fmt.Errorf("create wallet %s: %w", name, err)
		}
	}

	for _, c := range defaultCategories {
		name, kind, description := c.name, c.kind, c.description
		in := services.CategoryInput{Name: &name, Type: &kind, Description: &description}
		if _, err := svc.Categories.CreateCategory(ctx, admin, in); err != nil {
			return fmt.Errorf("create category %s: %w", c.name, err)
		}
	}

	appName := opts.AppName
	if _, err := svc.Appearance.Apply(ctx, admin, services.AppearanceInput{NameApp: &appName}); err != nil {
		return fmt.Errorf("create appearance: %w", err)
	}

	log.Infof("Seeded %d wallets, %d categories and the %q appearance", len(defaultWallets), len(defaultCategories), appName)
	return nil
}
