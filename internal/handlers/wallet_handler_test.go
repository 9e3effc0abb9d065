package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/services"
)

type mockWalletService struct {
	createWalletFn  func(actor lifecycle.Actor, name string, initial decimal.Decimal) (*lifecycle.Result[models.Wallet], error)
	updateWalletFn  func(actor lifecycle.Actor, id, name string) (*lifecycle.Result[models.Wallet], error)
	deleteWalletFn  func(actor lifecycle.Actor, id string) (*lifecycle.Result[models.Wallet], error)
	getWalletByIDFn func(actor lifecycle.Actor, id string) (*models.Wallet, error)
	listWalletsFn   func(actor lifecycle.Actor, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error)
}

func (m *mockWalletService) CreateWallet(_ context.Context, actor lifecycle.Actor, name string, initial decimal.Decimal) (*lifecycle.Result[models.Wallet], error) {
	if m.createWalletFn != nil {
		return m.createWalletFn(actor, name, initial)
	}
	return created(&models.Wallet{Name: name, Balance: initial}), nil
}

func (m *mockWalletService) UpdateWallet(_ context.Context, actor lifecycle.Actor, id, name string) (*lifecycle.Result[models.Wallet], error) {
	if m.updateWalletFn != nil {
		return m.updateWalletFn(actor, id, name)
	}
	return updated(&models.Wallet{Base: models.Base{ID: id}, Name: name}), nil
}

func (m *mockWalletService) DeleteWallet(_ context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Wallet], error) {
	if m.deleteWalletFn != nil {
		return m.deleteWalletFn(actor, id)
	}
	return deleted(&models.Wallet{Base: models.Base{ID: id}}), nil
}

func (m *mockWalletService) GetWalletByID(_ context.Context, actor lifecycle.Actor, id string) (*models.Wallet, error) {
	if m.getWalletByIDFn != nil {
		return m.getWalletByIDFn(actor, id)
	}
	return &models.Wallet{Base: models.Base{ID: id}}, nil
}

func (m *mockWalletService) ListWallets(_ context.Context, actor lifecycle.Actor, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error) {
	if m.listWalletsFn != nil {
		return m.listWalletsFn(actor, page)
	}
	resp := pagination.NewPageResponse([]models.Wallet{}, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

var _ services.WalletServicer = (*mockWalletService)(nil)

func setupWalletRouter(handler *WalletHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/wallets", handler.CreateWallet)
	auth.GET("/wallets", handler.GetUserWallets)
	auth.GET("/wallets/:id", handler.GetWalletByID)
	auth.PUT("/wallets/:id", handler.UpdateWallet)
	auth.DELETE("/wallets/:id", handler.DeleteWallet)
	return r
}

func TestWalletHandler_CreateWallet(t *testing.T) {
	t.Run("passes the opening balance", func(t *testing.T) {
		var gotActor lifecycle.Actor
		var gotBalance decimal.Decimal
		walletSvc := &mockWalletService{
			createWalletFn: func(actor lifecycle.Actor, name string, initial decimal.Decimal) (*lifecycle.Result[models.Wallet], error) {
				gotActor = actor
				gotBalance = initial
				return created(&models.Wallet{Base: models.Base{ID: testOtherID}, Name: name, Balance: initial}), nil
			},
		}
		audit := &mockAuditService{}
		r := setupWalletRouter(NewWalletHandler(walletSvc, audit))

		rec := doRequest(r, "POST", "/wallets", `{"name":"BCA","initial_balance":"150000.00"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotActor.UserID != testUserID {
			t.Errorf("expected actor %s, got %s", testUserID, gotActor.UserID)
		}
		if !gotBalance.Equal(decimal.NewFromInt(150000)) {
			t.Errorf("expected opening balance 150000, got %s", gotBalance)
		}
		wallet := parseJSON(t, rec)["wallet"].(map[string]interface{})
		if wallet["name"] != "BCA" {
			t.Errorf("unexpected wallet %v", wallet)
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceID != testOtherID {
			t.Errorf("unexpected audit entries %+v", audit.entries)
		}
	})

	t.Run("defaults the opening balance to zero", func(t *testing.T) {
		gotBalance := decimal.NewFromInt(-1)
		walletSvc := &mockWalletService{
			createWalletFn: func(_ lifecycle.Actor, name string, initial decimal.Decimal) (*lifecycle.Result[models.Wallet], error) {
				gotBalance = initial
				return created(&models.Wallet{Name: name}), nil
			},
		}
		r := setupWalletRouter(NewWalletHandler(walletSvc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/wallets", `{"name":"Cash"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if !gotBalance.IsZero() {
			t.Errorf("expected zero balance, got %s", gotBalance)
		}
	})

	t.Run("returns 400 without a name", func(t *testing.T) {
		r := setupWalletRouter(NewWalletHandler(&mockWalletService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/wallets", `{"initial_balance":10}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertFieldError(t, parseJSON(t, rec), "name")
	})
}

func TestWalletHandler_UpdateWallet(t *testing.T) {
	t.Run("renames", func(t *testing.T) {
		var gotName string
		walletSvc := &mockWalletService{
			updateWalletFn: func(_ lifecycle.Actor, id, name string) (*lifecycle.Result[models.Wallet], error) {
				gotName = name
				return updated(&models.Wallet{Base: models.Base{ID: id}, Name: name}), nil
			},
		}
		r := setupWalletRouter(NewWalletHandler(walletSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/wallets/"+testOtherID, `{"name":"DANA"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotName != "DANA" {
			t.Errorf("expected DANA, got %q", gotName)
		}
	})

	t.Run("returns 404 for another user's wallet", func(t *testing.T) {
		walletSvc := &mockWalletService{
			updateWalletFn: func(lifecycle.Actor, string, string) (*lifecycle.Result[models.Wallet], error) {
				return nil, apperrors.ErrWalletNotFound
			},
		}
		r := setupWalletRouter(NewWalletHandler(walletSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/wallets/"+testOtherID, `{"name":"DANA"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "WALLET_NOT_FOUND")
	})
}

func TestWalletHandler_GetUserWallets(t *testing.T) {
	walletSvc := &mockWalletService{
		listWalletsFn: func(_ lifecycle.Actor, page pagination.PageRequest) (*pagination.PageResponse[models.Wallet], error) {
			resp := pagination.NewPageResponse([]models.Wallet{{Name: "Cash"}, {Name: "BCA"}}, 1, pagination.DefaultPageSize, 2)
			return &resp, nil
		},
	}
	r := setupWalletRouter(NewWalletHandler(walletSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/wallets", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, ok := parseJSON(t, rec)["data"].([]interface{})
	if !ok || len(data) != 2 {
		t.Errorf("expected two wallets, got %v", data)
	}
}

func TestWalletHandler_DeleteWallet(t *testing.T) {
	walletSvc := &mockWalletService{
		deleteWalletFn: func(lifecycle.Actor, string) (*lifecycle.Result[models.Wallet], error) {
			return nil, apperrors.Failed(apperrors.ErrDeleteFailed, apperrors.ErrWalletNotFound)
		},
	}
	r := setupWalletRouter(NewWalletHandler(walletSvc, &mockAuditService{}))

	rec := doRequest(r, "DELETE", "/wallets/"+testOtherID, "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	assertErrorCode(t, parseJSON(t, rec), "DELETE_FAILED")
}
