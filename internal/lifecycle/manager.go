// Package lifecycle runs create, update and delete for any entity inside a
// single database transaction, with typed before/after hooks around the
// write.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/logger"
)

// Operation names reported to a Recorder.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Status values reported to a Recorder.
const (
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusNotFound = "not_found"
)

// Default acknowledgments used when the hooks do not supply an outcome.
const (
	MessageCreated = "Data created successfully"
	MessageUpdated = "Data updated successfully"
	MessageDeleted = "Data deleted successfully"
)

// Recorder observes finished operations.
type Recorder interface {
	ObserveOperation(entity, op, status string, elapsed time.Duration)
}

// Result is a successful operation's entity and acknowledgment.
type Result[T any] struct {
	Entity  *T
	Outcome Outcome
}

// Option configures a Manager.
type Option func(*options)

type options struct {
	recorder Recorder
}

// WithRecorder reports every operation to r.
func WithRecorder(r Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// Manager orchestrates the lifecycle of entity T. It holds no per-call state
// and is safe for concurrent use.
type Manager[T any, S any] struct {
	db       *gorm.DB
	entity   string
	store    Store[T]
	hooks    Hooks[T, S]
	recorder Recorder
}

// NewManager creates a Manager for the named entity.
func NewManager[T any, S any](db *gorm.DB, entity string, store Store[T], hooks Hooks[T, S], opts ...Option) *Manager[T, S] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if hooks == nil {
		hooks = NopHooks[T, S]{}
	}
	return &Manager[T, S]{
		db:       db,
		entity:   entity,
		store:    store,
		hooks:    hooks,
		recorder: o.recorder,
	}
}

// Create runs BeforeCreate, persists the entity and runs AfterCreate in one
// transaction.
func (m *Manager[T, S]) Create(ctx context.Context, actor Actor, fields Fields) (*Result[T], error) {
	start := time.Now()

	var entity *T
	var applied Fields
	err := m.atomically(ctx, func(tx *gorm.DB) error {
		f, stash, err := m.hooks.BeforeCreate(tx, actor, fields.Clone())
		if err != nil {
			return err
		}
		if entity, err = m.store.Create(tx, f); err != nil {
			return err
		}
		applied = f
		return m.hooks.AfterCreate(tx, actor, entity, f, stash)
	})
	if err != nil {
		m.record(OpCreate, StatusFailed, start)
		m.logFailure(OpCreate, actor, "", err)
		return nil, apperrors.Failed(apperrors.ErrSaveFailed, err)
	}
	m.record(OpCreate, StatusOK, start)

	outcome, ok := m.hooks.RedirectAfterCreate(entity, applied)
	if !ok {
		outcome = Outcome{Message: MessageCreated}
	}
	return &Result[T]{Entity: entity, Outcome: outcome}, nil
}

// Update resolves the entity outside any transaction, then runs
// BeforeUpdate, the write and AfterUpdate in one transaction. A missing
// entity is returned as the store's not-found error.
func (m *Manager[T, S]) Update(ctx context.Context, actor Actor, id string, fields Fields) (*Result[T], error) {
	start := time.Now()

	entity, err := m.find(ctx, OpUpdate, actor, id, start)
	if err != nil {
		return nil, err
	}

	var applied Fields
	err = m.atomically(ctx, func(tx *gorm.DB) error {
		f, stash, err := m.hooks.BeforeUpdate(tx, actor, entity, fields.Clone())
		if err != nil {
			return err
		}
		if err := m.store.Update(tx, entity, f); err != nil {
			return err
		}
		applied = f
		return m.hooks.AfterUpdate(tx, actor, entity, f, stash)
	})
	if err != nil {
		m.record(OpUpdate, StatusFailed, start)
		m.logFailure(OpUpdate, actor, id, err)
		return nil, apperrors.Failed(apperrors.ErrUpdateFailed, err)
	}
	m.record(OpUpdate, StatusOK, start)

	outcome, ok := m.hooks.RedirectAfterUpdate(entity, applied)
	if !ok {
		outcome = Outcome{Message: MessageUpdated}
	}
	return &Result[T]{Entity: entity, Outcome: outcome}, nil
}

// Delete resolves the entity outside any transaction, then runs
// BeforeDelete, the removal and AfterDelete in one transaction.
func (m *Manager[T, S]) Delete(ctx context.Context, actor Actor, id string) (*Result[T], error) {
	start := time.Now()

	entity, err := m.find(ctx, OpDelete, actor, id, start)
	if err != nil {
		return nil, err
	}

	err = m.atomically(ctx, func(tx *gorm.DB) error {
		if err := m.hooks.BeforeDelete(tx, actor, entity); err != nil {
			return err
		}
		if err := m.store.Delete(tx, entity); err != nil {
			return err
		}
		return m.hooks.AfterDelete(tx, actor, entity)
	})
	if err != nil {
		m.record(OpDelete, StatusFailed, start)
		m.logFailure(OpDelete, actor, id, err)
		return nil, apperrors.Failed(apperrors.ErrDeleteFailed, err)
	}
	m.record(OpDelete, StatusOK, start)

	outcome, ok := m.hooks.RedirectAfterDelete(entity)
	if !ok {
		outcome = Outcome{Message: MessageDeleted}
	}
	return &Result[T]{Entity: entity, Outcome: outcome}, nil
}

// atomically runs fn in a transaction. A panic inside fn becomes an error so
// the transaction rolls back like any other failure.
func (m *Manager[T, S]) atomically(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok {
					err = fmt.Errorf("panic: %w", e)
					return
				}
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn(tx)
	})
}

// find resolves the target of an update or delete. Only a 404 from the store
// counts as not found; anything else is a failed lookup.
func (m *Manager[T, S]) find(ctx context.Context, op string, actor Actor, id string, start time.Time) (*T, error) {
	entity, err := m.store.Find(m.db.WithContext(ctx), actor, id)
	if err == nil {
		return entity, nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode == http.StatusNotFound {
		m.record(op, StatusNotFound, start)
		return nil, err
	}
	m.record(op, StatusFailed, start)
	m.logFailure(op, actor, id, err)
	return nil, err
}

func (m *Manager[T, S]) record(op, status string, start time.Time) {
	if m.recorder != nil {
		m.recorder.ObserveOperation(m.entity, op, status, time.Since(start))
	}
}

func (m *Manager[T, S]) logFailure(op string, actor Actor, id string, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.StatusCode < 500 {
		logger.Get().Infow("Lifecycle operation rejected", "entity", m.entity, "op", op, "id", id, "user_id", actor.UserID, "reason", err.Error())
		return
	}
	logger.Get().Errorw("Lifecycle operation failed", "entity", m.entity, "op", op, "id", id, "user_id", actor.UserID, "error", err)
}
