package models_test

import (
	"regexp"
	"testing"
	"time"

	"cashflow/internal/models"
	"cashflow/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^TRX\d{8}[0-9A-F]{13}$`)

func TestTransactionCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	wallet := testutil.CreateTestWallet(t, db, user.ID)
	cat := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

	t.Run("format", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, wallet.ID, decimal.NewFromInt(10), time.Now())
		assert.Regexp(t, codePattern, tx.Code)
		assert.Equal(t, "TRX"+time.Now().Format("20060102"), tx.Code[:11])
	})

	t.Run("distinct_in_sequence", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			tx := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, wallet.ID, decimal.NewFromInt(1), time.Now())
			require.False(t, seen[tx.Code], "duplicate code %s", tx.Code)
			seen[tx.Code] = true
		}
	})

	t.Run("regenerated_on_collision", func(t *testing.T) {
		suffixes := []string{"AAAAAAAAAAAAA", "AAAAAAAAAAAAA", "BBBBBBBBBBBBB"}
		restore := models.SetCodeSuffix(func() string {
			s := suffixes[0]
			suffixes = suffixes[1:]
			return s
		})
		defer restore()

		first := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, wallet.ID, decimal.NewFromInt(1), time.Now())
		second := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, wallet.ID, decimal.NewFromInt(1), time.Now())

		assert.True(t, len(first.Code) > 13 && first.Code[11:] == "AAAAAAAAAAAAA")
		assert.Equal(t, "BBBBBBBBBBBBB", second.Code[11:])
		assert.Empty(t, suffixes)
	})

	t.Run("never_updated", func(t *testing.T) {
		tx := testutil.CreateTestTransaction(t, db, user.ID, cat.ID, wallet.ID, decimal.NewFromInt(1), time.Now())
		original := tx.Code

		err := db.Model(tx).Updates(map[string]interface{}{"code": "TRX-OVERWRITE", "description": "edited"}).Error
		require.NoError(t, err)

		var reloaded models.Transaction
		require.NoError(t, db.First(&reloaded, "id = ?", tx.ID).Error)
		assert.Equal(t, original, reloaded.Code)
		assert.Equal(t, "edited", reloaded.Description)
	})
}

func TestAppearanceIsAppendOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	a := testutil.CreateTestAppearance(t, db, user.ID, "Cash Flow", "", "")

	err := db.Model(a).Update("name_app", "Other").Error
	assert.ErrorIs(t, err, models.ErrAppearanceImmutable)

	err = db.Delete(a).Error
	assert.ErrorIs(t, err, models.ErrAppearanceImmutable)

	var count int64
	db.Model(&models.Appearance{}).Where("name_app = ?", "Cash Flow").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSignedAmount(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	assert.True(t, models.SignedAmount(models.TransactionTypeExpense, hundred).Equal(decimal.NewFromInt(-100)))
	assert.True(t, models.SignedAmount(models.TransactionTypeIncome, hundred).Equal(hundred))
	assert.True(t, models.SignedAmount("", hundred).Equal(hundred))
}

func TestRoleAndUserNames(t *testing.T) {
	r := models.Role{Permissions: []models.Permission{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, []string{"a", "b"}, r.PermissionNames())

	u := models.User{}
	assert.Empty(t, u.RoleNames())
}
