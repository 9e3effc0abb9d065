package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db      *gorm.DB
	manager *lifecycle.Manager[models.Category, struct{}]
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB, opts ...lifecycle.Option) CategoryServicer {
	store := &lifecycle.GormStore[models.Category]{
		NotFound:    apperrors.ErrCategoryNotFound,
		OwnerColumn: "user_id",
		Build: func(f lifecycle.Fields) (*models.Category, error) {
			c := &models.Category{}
			c.UserID, _ = f.String("user_id")
			c.Name, _ = f.String("name")
			c.Description, _ = f.String("description")
			if t, ok := f.String("type"); ok {
				c.Type = models.CategoryType(t)
			}
			return c, nil
		},
	}
	return &categoryService{
		db:      db,
		manager: lifecycle.NewManager[models.Category, struct{}](db, "category", store, ownedHooks[models.Category]{}, opts...),
	}
}

// ownedHooks stamps new rows with the acting user as owner.
type ownedHooks[T any] struct {
	lifecycle.NopHooks[T, struct{}]
}

func (ownedHooks[T]) BeforeCreate(_ *gorm.DB, actor lifecycle.Actor, f lifecycle.Fields) (lifecycle.Fields, struct{}, error) {
	f["user_id"] = actor.UserID
	return f, struct{}{}, nil
}

func (s *categoryService) checkName(ctx context.Context, actor lifecycle.Actor, name, exceptID string) error {
	q := s.db.WithContext(ctx).Where("user_id = ?", actor.UserID)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	taken, err := exists(q, &models.Category{}, "name = ?", name)
	if err != nil {
		return err
	}
	if taken {
		return fieldError(apperrors.ErrDuplicateCategory, "name", "has already been taken")
	}
	return nil
}

func categoryFields(in CategoryInput) lifecycle.Fields {
	fields := lifecycle.Fields{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Type != nil {
		fields["type"] = string(*in.Type)
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	return fields
}

// CreateCategory creates a category owned by the actor.
func (s *categoryService) CreateCategory(ctx context.Context, actor lifecycle.Actor, in CategoryInput) (*lifecycle.Result[models.Category], error) {
	if in.Name == nil || *in.Name == "" {
		return nil, fieldError(apperrors.ErrInvalidInput, "name", "is required")
	}
	if in.Type == nil {
		return nil, fieldError(apperrors.ErrInvalidInput, "type", "is required")
	}
	if err := s.checkName(ctx, actor, *in.Name, ""); err != nil {
		return nil, err
	}
	return s.manager.Create(ctx, actor, categoryFields(in))
}

// UpdateCategory changes the given fields of one of the actor's categories.
func (s *categoryService) UpdateCategory(ctx context.Context, actor lifecycle.Actor, id string, in CategoryInput) (*lifecycle.Result[models.Category], error) {
	if in.Name != nil {
		if err := s.checkName(ctx, actor, *in.Name, id); err != nil {
			return nil, err
		}
	}
	return s.manager.Update(ctx, actor, id, categoryFields(in))
}

// DeleteCategory soft-deletes a category. Existing transactions keep their
// category_id reference to the soft-deleted category for historical records.
func (s *categoryService) DeleteCategory(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Category], error) {
	return s.manager.Delete(ctx, actor, id)
}

// GetCategoryByID retrieves a category by ID for a specific user
func (s *categoryService) GetCategoryByID(ctx context.Context, actor lifecycle.Actor, id string) (*models.Category, error) {
	var category models.Category
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, actor.UserID).First(&category).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrCategoryNotFound)
	}
	return &category, nil
}

// ListCategories returns a page of the actor's categories, optionally of one type.
func (s *categoryService) ListCategories(ctx context.Context, actor lifecycle.Actor, categoryType *models.CategoryType, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error) {
	q := s.db.WithContext(ctx).Model(&models.Category{}).Where("user_id = ?", actor.UserID)
	if categoryType != nil {
		q = q.Where("type = ?", *categoryType)
	}

	result, err := pagination.Find[models.Category](q, page, func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
