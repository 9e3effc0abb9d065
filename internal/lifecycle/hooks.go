package lifecycle

import "gorm.io/gorm"

// Outcome is the acknowledgment returned for a successful operation.
type Outcome struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// Hooks are the entity-specific extension points of an operation. The stash
// S returned by a before-hook is handed to the matching after-hook of the
// same call and goes nowhere else.
type Hooks[T any, S any] interface {
	BeforeCreate(tx *gorm.DB, actor Actor, fields Fields) (Fields, S, error)
	AfterCreate(tx *gorm.DB, actor Actor, entity *T, fields Fields, stash S) error
	BeforeUpdate(tx *gorm.DB, actor Actor, entity *T, fields Fields) (Fields, S, error)
	AfterUpdate(tx *gorm.DB, actor Actor, entity *T, fields Fields, stash S) error
	BeforeDelete(tx *gorm.DB, actor Actor, entity *T) error
	AfterDelete(tx *gorm.DB, actor Actor, entity *T) error

	RedirectAfterCreate(entity *T, fields Fields) (Outcome, bool)
	RedirectAfterUpdate(entity *T, fields Fields) (Outcome, bool)
	RedirectAfterDelete(entity *T) (Outcome, bool)
}

// NopHooks implements every hook as a no-op. Embed it and override what the
// entity needs.
type NopHooks[T any, S any] struct{}

func (NopHooks[T, S]) BeforeCreate(_ *gorm.DB, _ Actor, fields Fields) (Fields, S, error) {
	var zero S
	return fields, zero, nil
}

func (NopHooks[T, S]) AfterCreate(*gorm.DB, Actor, *T, Fields, S) error { return nil }

func (NopHooks[T, S]) BeforeUpdate(_ *gorm.DB, _ Actor, _ *T, fields Fields) (Fields, S, error) {
	var zero S
	return fields, zero, nil
}

func (NopHooks[T, S]) AfterUpdate(*gorm.DB, Actor, *T, Fields, S) error { return nil }
func (NopHooks[T, S]) BeforeDelete(*gorm.DB, Actor, *T) error { return nil }
func (NopHooks[T, S]) AfterDelete(*gorm.DB, Actor, *T) error { return nil }

func (NopHooks[T, S]) RedirectAfterCreate(*T, Fields) (Outcome, bool) { return Outcome{}, false }
func (NopHooks[T, S]) RedirectAfterUpdate(*T, Fields) (Outcome, bool) { return Outcome{}, false }
func (NopHooks[T, S]) RedirectAfterDelete(*T) (Outcome, bool) { return Outcome{}, false }
