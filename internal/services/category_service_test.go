package services

import (
	"context"
	"testing"

	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/testutil"
)

func categoryTypePtr(t models.CategoryType) *models.CategoryType { return &t }

func TestCreateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	actor := lifecycle.Actor{UserID: user.ID}
	svc := NewCategoryService(db)

	t.Run("success", func(t *testing.T) {
		res, err := svc.CreateCategory(ctx, actor, CategoryInput{
			Name:        strPtr("Salary"),
			Type:        categoryTypePtr(models.CategoryTypeIncome),
			Description: strPtr("Monthly pay"),
		})
		testutil.AssertNoError(t, err)

		if res.Entity.UserID != user.ID {
			t.Errorf("expected owner %s, got %s", user.ID, res.Entity.UserID)
		}
		if res.Entity.Type != models.CategoryTypeIncome {
			t.Errorf("expected income, got %s", res.Entity.Type)
		}
		if res.Outcome.Message != lifecycle.MessageCreated {
			t.Errorf("unexpected outcome message %q", res.Outcome.Message)
		}
	})

	t.Run("duplicate_name_for_same_user", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, actor, CategoryInput{
			Name: strPtr("Salary"),
			Type: categoryTypePtr(models.CategoryTypeIncome),
		})
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_for_other_user", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		_, err := svc.CreateCategory(ctx, lifecycle.Actor{UserID: other.ID}, CategoryInput{
			Name: strPtr("Salary"),
			Type: categoryTypePtr(models.CategoryTypeIncome),
		})
		testutil.AssertNoError(t, err)
	})

	t.Run("missing_type", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, actor, CategoryInput{Name: strPtr("Food")})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	actor := lifecycle.Actor{UserID: user.ID}
	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	svc := NewCategoryService(db)

	t.Run("absent_fields_unchanged", func(t *testing.T) {
		res, err := svc.UpdateCategory(ctx, actor, category.ID, CategoryInput{Description: strPtr("Groceries")})
		testutil.AssertNoError(t, err)

		if res.Entity.Name != category.Name {
			t.Errorf("expected name %q kept, got %q", category.Name, res.Entity.Name)
		}
		if res.Entity.Type != models.CategoryTypeExpense {
			t.Errorf("expected type kept, got %s", res.Entity.Type)
		}
		if res.Entity.Description != "Groceries" {
			t.Errorf("expected description updated, got %q", res.Entity.Description)
		}
	})

	t.Run("other_users_category", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		_, err := svc.UpdateCategory(ctx, lifecycle.Actor{UserID: other.ID}, category.ID, CategoryInput{Name: strPtr("Mine")})
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	actor := lifecycle.Actor{UserID: user.ID}
	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	svc := NewCategoryService(db)

	res, err := svc.DeleteCategory(ctx, actor, category.ID)
	testutil.AssertNoError(t, err)
	if res.Outcome.Message != lifecycle.MessageDeleted {
		t.Errorf("unexpected outcome message %q", res.Outcome.Message)
	}

	_, err = svc.GetCategoryByID(ctx, actor, category.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")

	_, err = svc.DeleteCategory(ctx, actor, category.ID)
	testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
}

func TestListCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	testutil.CreateTestCategory(t, db, other.ID, models.CategoryTypeExpense)
	svc := NewCategoryService(db)
	actor := lifecycle.Actor{UserID: user.ID}

	all, err := svc.ListCategories(ctx, actor, nil, pagination.PageRequest{Page: 1, PageSize: 10})
	testutil.AssertNoError(t, err)
	if all.TotalItems != 3 {
		t.Errorf("expected 3 categories, got %d", all.TotalItems)
	}

	expenses, err := svc.ListCategories(ctx, actor, categoryTypePtr(models.CategoryTypeExpense), pagination.PageRequest{Page: 1, PageSize: 10})
	testutil.AssertNoError(t, err)
	if expenses.TotalItems != 2 {
		t.Errorf("expected 2 expense categories, got %d", expenses.TotalItems)
	}
	for _, c := range expenses.Data {
		if c.Type != models.CategoryTypeExpense {
			t.Errorf("unexpected category type %s", c.Type)
		}
	}
}
