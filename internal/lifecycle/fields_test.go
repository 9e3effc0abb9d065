package lifecycle_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashflow/internal/lifecycle"
)

func TestFieldsClone(t *testing.T) {
	orig := lifecycle.Fields{"name": "a", "permissions": []string{"x"}}
	c := orig.Clone()
	c["name"] = "b"
	c["permissions"].([]string)[0] = "y"
	delete(c, "permissions")

	assert.Equal(t, "a", orig["name"])
	assert.Equal(t, []string{"x"}, orig["permissions"])
}

func TestFieldsTake(t *testing.T) {
	f := lifecycle.Fields{"role": "admin", "permissions": []interface{}{"a", "b"}, "nil": nil}

	role, ok := f.TakeString("role")
	assert.True(t, ok)
	assert.Equal(t, "admin", role)
	assert.False(t, f.Has("role"))

	perms, ok := f.TakeStrings("permissions")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, perms)

	_, ok = f.TakeStrings("permissions")
	assert.False(t, ok)

	assert.True(t, f.Has("nil"))
	_, ok = f.String("nil")
	assert.False(t, ok)
}

func TestFieldsDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want string
	}{
		{"string", "100.50", "100.5"},
		{"float", 12.25, "12.25"},
		{"int", 7, "7"},
		{"decimal", decimal.RequireFromString("3.10"), "3.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := lifecycle.Fields{"amount": tt.in}.Decimal("amount")
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}

	_, err := lifecycle.Fields{}.Decimal("amount")
	assert.Error(t, err)
	_, err = lifecycle.Fields{"amount": true}.Decimal("amount")
	assert.Error(t, err)
}
