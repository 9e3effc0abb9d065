package services

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// permissionList is the permission set pulled out of a role payload.
// present is false when the payload had no permissions key at all.
type permissionList struct {
	names   []string
	present bool
}

// roleService handles role management.
type roleService struct {
	db      *gorm.DB
	manager *lifecycle.Manager[models.Role, permissionList]
}

// NewRoleService creates a new RoleServicer.
func NewRoleService(db *gorm.DB, opts ...lifecycle.Option) RoleServicer {
	store := &lifecycle.GormStore[models.Role]{
		NotFound: apperrors.ErrRoleNotFound,
		Build: func(f lifecycle.Fields) (*models.Role, error) {
			name, _ := f.String("name")
			return &models.Role{Name: name}, nil
		},
		Preload: []string{"Permissions"},
	}
	return &roleService{
		db:      db,
		manager: lifecycle.NewManager[models.Role, permissionList](db, "role", store, roleHooks{}, opts...),
	}
}

// roleHooks grants permissions additively on create and replaces the whole
// set on update.
type roleHooks struct {
	lifecycle.NopHooks[models.Role, permissionList]
}

func takePermissions(f lifecycle.Fields) permissionList {
	names, ok := f.TakeStrings("permissions")
	return permissionList{names: names, present: ok}
}

func (roleHooks) BeforeCreate(_ *gorm.DB, _ lifecycle.Actor, f lifecycle.Fields) (lifecycle.Fields, permissionList, error) {
	return f, takePermissions(f), nil
}

func (roleHooks) AfterCreate(tx *gorm.DB, _ lifecycle.Actor, role *models.Role, _ lifecycle.Fields, perms permissionList) error {
	if len(perms.names) == 0 {
		return nil
	}
	found, err := permissionsByName(tx, perms.names)
	if err != nil {
		return err
	}
	return tx.Model(role).Association("Permissions").Append(found)
}

func (roleHooks) BeforeUpdate(_ *gorm.DB, _ lifecycle.Actor, _ *models.Role, f lifecycle.Fields) (lifecycle.Fields, permissionList, error) {
	return f, takePermissions(f), nil
}

func (roleHooks) AfterUpdate(tx *gorm.DB, _ lifecycle.Actor, role *models.Role, _ lifecycle.Fields, perms permissionList) error {
	if !perms.present {
		return nil
	}
	assoc := tx.Model(role).Association("Permissions")
	if len(perms.names) == 0 {
		return assoc.Clear()
	}
	found, err := permissionsByName(tx, perms.names)
	if err != nil {
		return err
	}
	return assoc.Replace(found)
}

func (roleHooks) BeforeDelete(tx *gorm.DB, _ lifecycle.Actor, role *models.Role) error {
	if err := tx.Model(role).Association("Permissions").Clear(); err != nil {
		return err
	}
	return tx.Model(role).Association("Users").Clear()
}

// permissionsByName loads the named permissions, failing when any is missing.
func permissionsByName(db *gorm.DB, names []string) ([]models.Permission, error) {
	wanted := uniqueNames(names)
	var perms []models.Permission
	if err := db.Where("name IN ?", wanted).Find(&perms).Error; err != nil {
		return nil, err
	}
	if len(perms) != len(wanted) {
		return nil, apperrors.WithMessage(apperrors.ErrPermissionNotFound, "unknown permissions: "+strings.Join(missingNames(wanted, perms), ", "))
	}
	return perms, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func missingNames(wanted []string, found []models.Permission) []string {
	have := make(map[string]bool, len(found))
	for _, p := range found {
		have[p.Name] = true
	}
	var missing []string
	for _, n := range wanted {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	sort.Strings(missing)
	return missing
}

func (s *roleService) validate(db *gorm.DB, in RoleInput, exceptID string) error {
	if in.Name != nil {
		q := db.Unscoped()
		if exceptID != "" {
			q = q.Where("id <> ?", exceptID)
		}
		taken, err := exists(q, &models.Role{}, "name = ?", *in.Name)
		if err != nil {
			return err
		}
		if taken {
			return fieldError(apperrors.ErrDuplicateRole, "name", "has already been taken")
		}
	}
	if in.Permissions != nil && len(*in.Permissions) > 0 {
		if _, err := permissionsByName(db, *in.Permissions); err != nil {
			var appErr *apperrors.AppError
			if errors.As(err, &appErr) {
				return fieldError(apperrors.ErrInvalidInput, "permissions", appErr.Message)
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

func roleFields(in RoleInput) lifecycle.Fields {
	fields := lifecycle.Fields{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Permissions != nil {
		fields["permissions"] = *in.Permissions
	}
	return fields
}

// CreateRole creates a role and grants it the given permissions.
func (s *roleService) CreateRole(ctx context.Context, actor lifecycle.Actor, in RoleInput) (*lifecycle.Result[models.Role], error) {
	if in.Name == nil || *in.Name == "" {
		return nil, fieldError(apperrors.ErrInvalidInput, "name", "is required")
	}
	if err := s.validate(s.db.WithContext(ctx), in, ""); err != nil {
		return nil, err
	}
	return s.manager.Create(ctx, actor, roleFields(in))
}

// UpdateRole renames the role and, when permissions are given, makes them
// the role's exact permission set.
func (s *roleService) UpdateRole(ctx context.Context, actor lifecycle.Actor, id string, in RoleInput) (*lifecycle.Result[models.Role], error) {
	if err := s.validate(s.db.WithContext(ctx), in, id); err != nil {
		return nil, err
	}
	return s.manager.Update(ctx, actor, id, roleFields(in))
}

// DeleteRole soft-deletes a role and detaches it from permissions and users.
func (s *roleService) DeleteRole(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.Role], error) {
	return s.manager.Delete(ctx, actor, id)
}

// GetRoleByID retrieves a role with its permissions.
func (s *roleService) GetRoleByID(ctx context.Context, id string) (*models.Role, error) {
	var role models.Role
	if err := s.db.WithContext(ctx).Preload("Permissions").Where("id = ?", id).First(&role).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrRoleNotFound)
	}
	return &role, nil
}

// ListRoles returns a page of roles with their permissions, by name.
func (s *roleService) ListRoles(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Role], error) {
	result, err := pagination.Find[models.Role](s.db.WithContext(ctx).Model(&models.Role{}), page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Permissions").Order("name ASC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
