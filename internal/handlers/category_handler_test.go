package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/services"
)

// --- mock category service ---

type mockCategoryService struct {
	createCategoryFn  func(actor lifecycle.Actor, in services.CategoryInput) (*lifecycle.Result[models.Category], error)
	updateCategoryFn  func(actor lifecycle.Actor, id string, in services.CategoryInput) (*lifecycle.Result[models.Category], error)
	deleteCategoryFn  func(actor lifecycle.Actor, id string) (*lifecycle.Result[models.Category], error)
	getCategoryByIDFn func(actor lifecycle.Actor, id string) (*models.Category, error)
	listCategoriesFn  func(actor lifecycle.Actor, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
}

func (m *mockCategoryService) CreateCategory(_ context.Context, actor lifecycle.Actor, in services.CategoryInput) (*lifecycle.Result[models.Category], error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(actor, in)
	}
	return created(&models.Category{}), nil
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, actor lifecycle.Actor, id string, in services.CategoryInput) (*lifecycle.Result[models.Category], error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(actor, id, in)
	}
	return updated(&models.Category{}), nil
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Category], error) {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(actor, id)
	}
	return deleted(&models.Category{}), nil
}

func (m *mockCategoryService) GetCategoryByID(_ context.Context, actor lifecycle.Actor, id string) (*models.Category, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(actor, id)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) ListCategories(_ context.Context, actor lifecycle.Actor, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(actor, categoryType, page)
	}
	resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
	return &resp, nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

func setupCategoryRouter(handler *CategoryHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/categories", handler.CreateCategory)
	auth.GET("/categories", handler.GetUserCategories)
	auth.GET("/categories/:id", handler.GetCategoryByID)
	auth.PUT("/categories/:id", handler.UpdateCategory)
	auth.DELETE("/categories/:id", handler.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(actor lifecycle.Actor, in services.CategoryInput) (*lifecycle.Result[models.Category], error) {
				return created(&models.Category{
					Base:   models.Base{ID: testOtherID},
					UserID: actor.UserID,
					Name:   *in.Name,
					Type:   *in.Type,
				}), nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		cat := result["category"].(map[string]interface{})
		if cat["name"] != "Food" || cat["type"] != "expense" {
			t.Errorf("unexpected category %v", cat)
		}
		if cat["user_id"] != testUserID {
			t.Errorf("expected owner %s, got %v", testUserID, cat["user_id"])
		}
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"type":"expense"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertFieldError(t, parseJSON(t, rec), "name")
	})

	t.Run("returns 400 on invalid type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"transfer"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertFieldError(t, parseJSON(t, rec), "type")
	})

	t.Run("returns 409 on duplicate name", func(t *testing.T) {
		catSvc := &mockCategoryService{
			createCategoryFn: func(lifecycle.Actor, services.CategoryInput) (*lifecycle.Result[models.Category], error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewCategoryHandler(&mockCategoryService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/categories", handler.CreateCategory)

		rec := doRequest(r, "POST", "/categories", `{"name":"Food","type":"expense"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetUserCategories(t *testing.T) {
	t.Run("passes the type filter", func(t *testing.T) {
		var gotType *models.CategoryType
		catSvc := &mockCategoryService{
			listCategoriesFn: func(_ lifecycle.Actor, ct *models.CategoryType, _ pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
				gotType = ct
				resp := pagination.NewPageResponse([]models.Category{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=income", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotType == nil || *gotType != models.CategoryTypeIncome {
			t.Errorf("expected income filter, got %v", gotType)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories?type=other", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_GetCategoryByID(t *testing.T) {
	t.Run("returns 404 when not found", func(t *testing.T) {
		catSvc := &mockCategoryService{
			getCategoryByIDFn: func(lifecycle.Actor, string) (*models.Category, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/"+testOtherID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "CATEGORY_NOT_FOUND")
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/12", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	var got services.CategoryInput
	catSvc := &mockCategoryService{
		updateCategoryFn: func(_ lifecycle.Actor, id string, in services.CategoryInput) (*lifecycle.Result[models.Category], error) {
			got = in
			return updated(&models.Category{Base: models.Base{ID: id}}), nil
		},
	}
	r := setupCategoryRouter(NewCategoryHandler(catSvc, &mockAuditService{}))

	rec := doRequest(r, "PUT", "/categories/"+testOtherID, `{"description":"Groceries"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.Name != nil || got.Type != nil {
		t.Errorf("expected absent fields nil, got %+v", got)
	}
	if got.Description == nil || *got.Description != "Groceries" {
		t.Errorf("expected description, got %v", got.Description)
	}
	if parseJSON(t, rec)["message"] != lifecycle.MessageUpdated {
		t.Error("expected update message")
	}
}

func TestCategoryHandler_DeleteCategory(t *testing.T) {
	audit := &mockAuditService{}
	r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, audit))

	rec := doRequest(r, "DELETE", "/categories/"+testOtherID, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(audit.entries) != 1 || audit.entries[0].action != "DELETE_CATEGORY" {
		t.Errorf("unexpected audit entries %+v", audit.entries)
	}
}
