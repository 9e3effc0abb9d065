package main

import (
	"context"
	"errors"
	"testing"

	"cashflow/internal/cache"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/router"
	"cashflow/internal/testutil"
)

func testOptions() Options {
	return Options{
		AdminName:     "Super Admin",
		AdminEmail:    "Admin@Example.com",
		AdminPassword: "correct-horse",
		AppName:       "Cash Flow",
	}
}

func TestSeed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := router.NewServices(db, cache.Nop{}, t.TempDir())
	ctx := context.Background()

	if err := Seed(ctx, svc, testOptions()); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	var permCount int64
	db.Model(&models.Permission{}).Count(&permCount)
	if permCount != int64(len(allPermissions)) {
		t.Errorf("expected %d permissions, got %d", len(allPermissions), permCount)
	}

	for role, want := range rolePermissions {
		var r models.Role
		if err := db.Preload("Permissions").Where("name = ?", role).First(&r).Error; err != nil {
			t.Fatalf("role %s missing: %v", role, err)
		}
		if len(r.Permissions) != len(want) {
			t.Errorf("role %s: expected %d permissions, got %d", role, len(want), len(r.Permissions))
		}
	}

	admin, err := svc.Users.AttemptLogin(ctx, "admin@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("super-admin cannot log in: %v", err)
	}
	if names := admin.RoleNames(); len(names) != 1 || names[0] != RoleSuperAdmin {
		t.Errorf("expected superadmin role, got %v", names)
	}

	actor := lifecycle.Actor{UserID: admin.ID}
	wallets, err := svc.Wallets.ListWallets(ctx, actor, pagination.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if wallets.TotalItems != 3 {
		t.Errorf("expected 3 wallets, got %d", wallets.TotalItems)
	}
	for _, w := range wallets.Data {
		if !w.Balance.IsZero() {
			t.Errorf("wallet %s: expected zero balance, got %s", w.Name, w.Balance)
		}
	}

	expense := models.CategoryTypeExpense
	cats, err := svc.Categories.ListCategories(ctx, actor, &expense, pagination.PageRequest{Page: 1, PageSize: 10})
	if err != nil {
		t.Fatal(err)
	}
	if cats.TotalItems != 2 {
		t.Errorf("expected 2 expense categories, got %d", cats.TotalItems)
	}

	current, err := svc.Appearance.Current(ctx)
	if err != nil {
		t.Fatalf("expected an appearance: %v", err)
	}
	if current.NameApp != "Cash Flow" || current.EditedBy != admin.ID {
		t.Errorf("unexpected appearance %+v", current)
	}
}

func TestSeedTwice(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := router.NewServices(db, cache.Nop{}, t.TempDir())

	if err := Seed(context.Background(), svc, testOptions()); err != nil {
		t.Fatal(err)
	}
	if err := Seed(context.Background(), svc, testOptions()); !errors.Is(err, ErrAlreadySeeded) {
		t.Fatalf("expected ErrAlreadySeeded, got %v", err)
	}
}

func TestOptionsValidate(t *testing.T) {
	opts := testOptions()
	opts.AdminPassword = "short"
	if err := opts.Validate(); err == nil {
		t.Error("expected short password to be rejected")
	}

	opts = testOptions()
	opts.AdminEmail = ""
	if err := opts.Validate(); err == nil {
		t.Error("expected missing email to be rejected")
	}

	if err := testOptions().Validate(); err != nil {
		t.Errorf("expected valid options, got %v", err)
	}
}
