package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
)

// userService handles user-related business logic.
type userService struct {
	db      *gorm.DB
	manager *lifecycle.Manager[models.User, *string]
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, opts ...lifecycle.Option) UserServicer {
	store := &lifecycle.GormStore[models.User]{
		NotFound: apperrors.ErrUserNotFound,
		Build:    buildUser,
		Preload:  []string{"Roles"},
	}
	return &userService{
		db:      db,
		manager: lifecycle.NewManager[models.User, *string](db, "user", store, userHooks{}, opts...),
	}
}

func buildUser(f lifecycle.Fields) (*models.User, error) {
	u := &models.User{}
	u.Name, _ = f.String("name")
	u.Email, _ = f.String("email")
	u.Password, _ = f.String("password")
	return u, nil
}

// userHooks pulls the role name out of the payload, hashes the password and
// assigns the role once the user row exists. The stash is the role name, nil
// when the payload had none.
type userHooks struct {
	lifecycle.NopHooks[models.User, *string]
}

func (userHooks) BeforeCreate(_ *gorm.DB, _ lifecycle.Actor, f lifecycle.Fields) (lifecycle.Fields, *string, error) {
	role := takeRole(f)
	normalizeEmail(f)
	if err := hashPassword(f); err != nil {
		return nil, nil, err
	}
	return f, role, nil
}

func (userHooks) AfterCreate(tx *gorm.DB, _ lifecycle.Actor, user *models.User, _ lifecycle.Fields, role *string) error {
	if role == nil {
		return nil
	}
	r, err := roleByName(tx, *role)
	if err != nil {
		return err
	}
	return tx.Model(user).Association("Roles").Append(r)
}

func (userHooks) BeforeUpdate(_ *gorm.DB, _ lifecycle.Actor, _ *models.User, f lifecycle.Fields) (lifecycle.Fields, *string, error) {
	role := takeRole(f)
	normalizeEmail(f)
	if pw, ok := f.String("password"); !ok || pw == "" {
		delete(f, "password")
	} else if err := hashPassword(f); err != nil {
		return nil, nil, err
	}
	return f, role, nil
}

func (userHooks) AfterUpdate(tx *gorm.DB, _ lifecycle.Actor, user *models.User, _ lifecycle.Fields, role *string) error {
	if role == nil {
		return nil
	}
	r, err := roleByName(tx, *role)
	if err != nil {
		return err
	}
	return tx.Model(user).Association("Roles").Replace(r)
}

func (userHooks) BeforeDelete(tx *gorm.DB, _ lifecycle.Actor, user *models.User) error {
	return tx.Model(user).Association("Roles").Clear()
}

func takeRole(f lifecycle.Fields) *string {
	if name, ok := f.TakeString("role"); ok && name != "" {
		return &name
	}
	return nil
}

func normalizeEmail(f lifecycle.Fields) {
	if email, ok := f.String("email"); ok {
		f["email"] = strings.ToLower(strings.TrimSpace(email))
	}
}

func hashPassword(f lifecycle.Fields) error {
	pw, _ := f.String("password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	f["password"] = string(hashed)
	return nil
}

func roleByName(db *gorm.DB, name string) (*models.Role, error) {
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, lookupError(err, apperrors.WithMessage(apperrors.ErrRoleNotFound, "role "+name+" does not exist"))
	}
	return &role, nil
}

// CreateUser validates uniqueness and the role, then creates the user
// through the lifecycle manager.
func (s *userService) CreateUser(ctx context.Context, actor lifecycle.Actor, in CreateUserInput) (*lifecycle.Result[models.User], error) {
	db := s.db.WithContext(ctx)
	if err := s.checkEmail(db, in.Email, ""); err != nil {
		return nil, err
	}
	if err := checkRoleExists(db, in.Role); err != nil {
		return nil, err
	}

	return s.manager.Create(ctx, actor, lifecycle.Fields{
		"name":     in.Name,
		"email":    in.Email,
		"password": in.Password,
		"role":     in.Role,
	})
}

// UpdateUser changes the given fields. A nil or empty password keeps the
// stored hash; a role replaces every role the user had.
func (s *userService) UpdateUser(ctx context.Context, actor lifecycle.Actor, id string, in UpdateUserInput) (*lifecycle.Result[models.User], error) {
	db := s.db.WithContext(ctx)
	fields := lifecycle.Fields{}
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil {
		if err := s.checkEmail(db, *in.Email, id); err != nil {
			return nil, err
		}
		fields["email"] = *in.Email
	}
	if in.Password != nil {
		fields["password"] = *in.Password
	}
	if in.Role != nil {
		if err := checkRoleExists(db, *in.Role); err != nil {
			return nil, err
		}
		fields["role"] = *in.Role
	}

	return s.manager.Update(ctx, actor, id, fields)
}

// DeleteUser soft-deletes a user and detaches their roles.
func (s *userService) DeleteUser(ctx context.Context, actor lifecycle.Actor, id string) (*lifecycle.Result[models.User], error) {
	return s.manager.Delete(ctx, actor, id)
}

func (s *userService) checkEmail(db *gorm.DB, email, exceptID string) error {
	q := db.Unscoped()
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	taken, err := exists(q, &models.User{}, "email = ?", strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if taken {
		return fieldError(apperrors.ErrDuplicateEmail, "email", "has already been taken")
	}
	return nil
}

func checkRoleExists(db *gorm.DB, name string) error {
	found, err := exists(db, &models.Role{}, "name = ?", name)
	if err != nil {
		return err
	}
	if !found {
		return fieldError(apperrors.ErrInvalidInput, "role", "does not exist")
	}
	return nil
}

// GetUserByEmail retrieves a user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Roles").Where("email = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&user).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

// ListUsers returns a page of users with their roles, newest first.
func (s *userService) ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	result, err := pagination.Find[models.User](s.db.WithContext(ctx).Model(&models.User{}), page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Roles").Order("created_at DESC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// VerifyPassword checks if the provided password matches the stored hash
func (s *userService) VerifyPassword(user *models.User, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password))
	return err == nil
}

// AttemptLogin checks the credentials and returns the user on success.
// Unknown emails and wrong passwords fail the same way.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.VerifyPassword(user, password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}
