package services

import (
	"context"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// permissionService handles permission management.
type permissionService struct {
	db      *gorm.DB
	manager *lifecycle.Manager[models.Permission, struct{}]
}

// NewPermissionService creates a new PermissionServicer.
func NewPermissionService(db *gorm.DB, opts ...lifecycle.Option) PermissionServicer {
	store := &lifecycle.GormStore[models.Permission]{
		NotFound: apperrors.ErrPermissionNotFound,
		Build: func(f lifecycle.Fields) (*models.Permission, error) {
			name, _ := f.String("name")
			return &models.Permission{Name: name}, nil
		},
	}
	return &permissionService{
		db:      db,
		manager: lifecycle.NewManager[models.Permission, struct{}](db, "permission", store, permissionHooks{}, opts...),
	}
}

// permissionHooks detaches a permission from every role before it goes.
type permissionHooks struct {
	lifecycle.NopHooks[models.Permission, struct{}]
}

func (permissionHooks) BeforeDelete(tx *gorm.DB, _ lifecycle.Actor, p *models.Permission) error {
	return tx.Exec("DELETE FROM role_permissions WHERE permission_id = ?", p.ID).Error
}

func (s *permissionService) checkName(ctx context.Context, name, exceptID string) error {
	q := s.db.WithContext(ctx).Unscoped()
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	taken, err := exists(q, &models.Permission{}, "name = ?", name)
	if err != nil {
		return err
	}
	if taken {
		return fieldError(apperrors.ErrDuplicatePermission, "name", "has already been taken")
	}
	return nil
}

// CreatePermission creates a permission with a unique name.
func (s *permissionService) CreatePermission(ctx context.Context, actor lifecycle.Actor, name string) (*lifecycle.Result[models.Permission], error) {
	if err := s.checkName(ctx, name, ""); err != nil {
		return nil, err
	}
	return s.manager.Create(ctx, actor, lifecycle.Fields{"name": name})
}

// UpdatePermission renames a permission.
func (s *permissionService) UpdatePermission(ctx context.Context, actor lifecycle.Actor, id, name string) (*lifecycle.Result[models.Permission], error) {
	if err := s.checkName(ctx, name, id); err != nil {
		return nil, err
	}
	return s.manager.Update(ctx, actor, id, lifecycle.Fields{"name": name})
}

// DeletePermission soft-deletes a permission and revokes it from all roles.
func (s *permissionService) DeletePermission(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Permission], error) {
	return s.manager.Delete(ctx, actor, id)
}

// GetPermissionByID retrieves a permission.
func (s *permissionService) GetPermissionByID(ctx context.Context, id string) (*models.Permission, error) {
	var p models.Permission
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrPermissionNotFound)
	}
	return &p, nil
}

// ListPermissions returns a page of permissions by name.
func (s *permissionService) ListPermissions(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Permission], error) {
	result, err := pagination.Find[models.Permission](s.db.WithContext(ctx).Model(&models.Permission{}), page, func(db *gorm.DB) *gorm.DB {
		return db.Order("name ASC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
