package validator_test

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	"cashflow/internal/validator"
)

func init() {
	validator.Register()
}

type sample struct {
	Name     string          `json:"name" binding:"required,max=10"`
	Password string          `json:"password" binding:"omitempty,min=8"`
	Type     string          `json:"type" binding:"required,category_type"`
	Kind     string          `json:"kind" binding:"omitempty,transaction_type"`
	Perm     string          `json:"perm" binding:"omitempty,permission_name"`
	Amount   decimal.Decimal `json:"amount" binding:"decimal_gt0"`
}

func TestRegisteredRules(t *testing.T) {
	valid := sample{Name: "ok", Type: "income", Kind: "expense", Perm: "wallet-create", Amount: decimal.NewFromInt(5)}
	if err := binding.Validator.ValidateStruct(&valid); err != nil {
		t.Fatalf("expected valid sample, got %v", err)
	}

	tests := []struct {
		name  string
		edit  func(s *sample)
		field string
		want  string
	}{
		{"missing_name", func(s *sample) { s.Name = "" }, "name", "is required"},
		{"long_name", func(s *sample) { s.Name = "abcdefghijk" }, "name", "must be at most 10 characters"},
		{"short_password", func(s *sample) { s.Password = "short" }, "password", "must be at least 8 characters"},
		{"bad_category_type", func(s *sample) { s.Type = "transfer" }, "type", "must be income or expense"},
		{"bad_transaction_type", func(s *sample) { s.Kind = "refund" }, "kind", "must be income or expense"},
		{"bad_permission", func(s *sample) { s.Perm = "Wallet Create" }, "perm", "must be lower-case words separated by dashes"},
		{"zero_amount", func(s *sample) { s.Amount = decimal.Zero }, "amount", "must be a number greater than zero"},
		{"negative_amount", func(s *sample) { s.Amount = decimal.NewFromInt(-1) }, "amount", "must be a number greater than zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.edit(&s)
			err := binding.Validator.ValidateStruct(&s)
			if err == nil {
				t.Fatal("expected validation error")
			}
			fields, ok := validator.FieldErrors(err)
			if !ok {
				t.Fatalf("expected validation errors, got %T", err)
			}
			if got := fields[tt.field]; got != tt.want {
				t.Errorf("expected %s: %q, got %q (all: %v)", tt.field, tt.want, got, fields)
			}
		})
	}
}

func TestFieldErrors_NotValidation(t *testing.T) {
	if _, ok := validator.FieldErrors(binding.JSON.BindBody([]byte("{"), &sample{})); ok {
		t.Error("expected malformed JSON not to be treated as validation failure")
	}
}
