package lifecycle

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "cashflow/internal/errors"
)

// Actor is the identity an operation runs on behalf of.
type Actor struct {
	UserID string
	IP     string
}

// Store persists one entity type. Find must return a not-found AppError when
// the id does not resolve; Update must leave fields absent from the map as
// they are.
type Store[T any] interface {
	Find(db *gorm.DB, actor Actor, id string) (*T, error)
	Create(db *gorm.DB, fields Fields) (*T, error)
	Update(db *gorm.DB, entity *T, fields Fields) error
	Delete(db *gorm.DB, entity *T) error
}

// GormStore is the gorm-backed Store shared by every entity.
type GormStore[T any] struct {
	// NotFound is returned by Find when no row matches.
	NotFound *apperrors.AppError
	// OwnerColumn scopes Find to rows owned by the actor. Empty means unscoped.
	OwnerColumn string
	// Build turns create fields into a new entity.
	Build func(fields Fields) (*T, error)
	// Preload lists associations loaded by Find and after Update.
	Preload []string
	// Retry is consulted when an insert fails. Returning true means the
	// entity was reset and the insert runs again from a savepoint.
	Retry func(entity *T, err error) bool
}

const (
	createSavepoint   = "lifecycle_create"
	maxCreateAttempts = 5
)

func (s *GormStore[T]) preloaded(db *gorm.DB) *gorm.DB {
	for _, p := range s.Preload {
		db = db.Preload(p)
	}
	return db
}

// Find loads the entity with the given id.
func (s *GormStore[T]) Find(db *gorm.DB, actor Actor, id string) (*T, error) {
	q := s.preloaded(db)
	if s.OwnerColumn != "" {
		q = q.Where(s.OwnerColumn+" = ?", actor.UserID)
	}

	entity := new(T)
	if err := q.Where("id = ?", id).First(entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, s.NotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return entity, nil
}

// Create builds and inserts a new entity.
func (s *GormStore[T]) Create(db *gorm.DB, fields Fields) (*T, error) {
	entity, err := s.Build(fields)
	if err != nil {
		return nil, err
	}
	if s.Retry == nil {
		if err := db.Omit(clause.Associations).Create(entity).Error; err != nil {
			return nil, err
		}
		return entity, nil
	}

	for attempt := 1; ; attempt++ {
		if err := db.SavePoint(createSavepoint).Error; err != nil {
			return nil, err
		}
		err := db.Omit(clause.Associations).Create(entity).Error
		if err == nil {
			return entity, nil
		}
		if attempt == maxCreateAttempts || !s.Retry(entity, err) {
			return nil, err
		}
		if err := db.RollbackTo(createSavepoint).Error; err != nil {
			return nil, err
		}
	}
}

// Update writes only the keys present in fields, then reloads the entity.
func (s *GormStore[T]) Update(db *gorm.DB, entity *T, fields Fields) error {
	if len(fields) == 0 {
		return nil
	}
	if err := db.Model(entity).Updates(map[string]interface{}(fields)).Error; err != nil {
		return err
	}
	return s.preloaded(db).First(entity).Error
}

// Delete soft-deletes the entity.
func (s *GormStore[T]) Delete(db *gorm.DB, entity *T) error {
	return db.Delete(entity).Error
}
