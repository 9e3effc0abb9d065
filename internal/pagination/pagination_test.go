package pagination_test

import (
	"fmt"
	"testing"

	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/testutil"

	"gorm.io/gorm"
)

func TestDefaults(t *testing.T) {
	tests := []struct {
		name     string
		in       pagination.PageRequest
		page     int
		pageSize int
	}{
		{"zero_values", pagination.PageRequest{}, 1, 20},
		{"kept", pagination.PageRequest{Page: 3, PageSize: 5}, 3, 5},
		{"clamped", pagination.PageRequest{Page: -1, PageSize: 1000}, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.in
			p.Defaults()
			if p.Page != tt.page || p.PageSize != tt.pageSize {
				t.Errorf("expected %d/%d, got %d/%d", tt.page, tt.pageSize, p.Page, p.PageSize)
			}
		})
	}
}

func TestNewPageResponse(t *testing.T) {
	resp := pagination.NewPageResponse[int](nil, 1, 20, 41)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.TotalPages)
	}
	if resp.Data == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	for i := 0; i < 25; i++ {
		testutil.CreateTestPermission(t, db, fmt.Sprintf("perm-%02d", i))
	}

	byName := func(db *gorm.DB) *gorm.DB { return db.Order("name DESC") }
	resp, err := pagination.Find[models.Permission](db.Model(&models.Permission{}), pagination.PageRequest{Page: 2, PageSize: 10}, byName)
	testutil.AssertNoError(t, err)

	if resp.TotalItems != 25 {
		t.Errorf("expected 25 total items, got %d", resp.TotalItems)
	}
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", resp.TotalPages)
	}
	if len(resp.Data) != 10 {
		t.Fatalf("expected 10 items, got %d", len(resp.Data))
	}
	if resp.Data[0].Name != "perm-14" {
		t.Errorf("expected first item perm-14, got %s", resp.Data[0].Name)
	}
}
