package services

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"gorm.io/gorm"

	"cashflow/internal/cache"
	apperrors "cashflow/internal/errors"
	"cashflow/internal/lifecycle"
	"cashflow/internal/logger"
	"cashflow/internal/models"
	"cashflow/internal/pagination"
	"cashflow/internal/uuid"
)

const (
	// MaxUploadBytes caps icon and logo uploads at 2 MiB.
	MaxUploadBytes = 2 << 20

	appearanceCacheKey = "appearance:current"
	appearanceCacheTTL = time.Hour
)

// uploadKind describes where an image goes and which formats it accepts.
type uploadKind struct {
	dir        string
	field      string
	extensions map[string]bool
	mimes      map[string]bool
}

var (
	iconUpload = uploadKind{
		dir:        "icons",
		field:      "icon_app",
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".ico": true},
		mimes:      map[string]bool{"image/jpeg": true, "image/png": true, "image/x-icon": true, "image/vnd.microsoft.icon": true},
	}
	logoUpload = uploadKind{
		dir:        "logos",
		field:      "logo_app",
		extensions: map[string]bool{".jpg": true, ".jpeg": true, ".png": true},
		mimes:      map[string]bool{"image/jpeg": true, "image/png": true},
	}
)

// appearanceService keeps the append-only branding history.
type appearanceService struct {
	db         *gorm.DB
	cache      cache.Cache
	storageDir string
}

// NewAppearanceService creates a new AppearanceServicer storing uploads under
// storageDir. A nil cache disables caching.
func NewAppearanceService(db *gorm.DB, c cache.Cache, storageDir string) AppearanceServicer {
	if c == nil {
		c = cache.Nop{}
	}
	return &appearanceService{db: db, cache: c, storageDir: storageDir}
}

// Current returns the newest appearance row.
func (s *appearanceService) Current(ctx context.Context) (*models.Appearance, error) {
	var cached models.Appearance
	if found, err := s.cache.Get(ctx, appearanceCacheKey, &cached); err != nil {
		logger.Get().Warnw("appearance cache read failed", "error", err)
	} else if found {
		return &cached, nil
	}

	current, err := s.latest(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	s.remember(ctx, current)
	return current, nil
}

func (s *appearanceService) latest(db *gorm.DB) (*models.Appearance, error) {
	var current models.Appearance
	if err := db.Preload("Editor").Order("created_at DESC").Order("id DESC").First(&current).Error; err != nil {
		return nil, lookupError(err, apperrors.ErrAppearanceNotFound)
	}
	return &current, nil
}

func (s *appearanceService) remember(ctx context.Context, a *models.Appearance) {
	if err := s.cache.Set(ctx, appearanceCacheKey, a, appearanceCacheTTL); err != nil {
		logger.Get().Warnw("appearance cache write failed", "error", err)
	}
}

// forget drops the cached row so a failed refresh cannot serve the old one.
func (s *appearanceService) forget(ctx context.Context) {
	if err := s.cache.Delete(ctx, appearanceCacheKey); err != nil {
		logger.Get().Warnw("appearance cache invalidation failed", "error", err)
	}
}

// Apply appends a new appearance row. The name comes from the input; icon and
// logo come from new uploads when given, otherwise from the current row.
func (s *appearanceService) Apply(ctx context.Context, actor lifecycle.Actor, in AppearanceInput) (*models.Appearance, error) {
	if err := validateUpload(in.Icon, iconUpload); err != nil {
		return nil, err
	}
	if err := validateUpload(in.Logo, logoUpload); err != nil {
		return nil, err
	}

	var stored []string
	cleanup := func() {
		for _, p := range stored {
			_ = os.Remove(filepath.Join(s.storageDir, filepath.FromSlash(p)))
		}
	}

	next := &models.Appearance{EditedBy: actor.UserID}
	if in.NameApp != nil {
		next.NameApp = *in.NameApp
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := s.latest(tx)
		if err != nil && !errors.Is(err, apperrors.ErrAppearanceNotFound) {
			return err
		}
		if prev != nil {
			next.IconApp = prev.IconApp
			next.LogoApp = prev.LogoApp
		}

		if in.Icon != nil {
			p, err := s.store(in.Icon, iconUpload)
			if err != nil {
				return err
			}
			stored = append(stored, p)
			next.IconApp = p
		}
		if in.Logo != nil {
			p, err := s.store(in.Logo, logoUpload)
			if err != nil {
				return err
			}
			stored = append(stored, p)
			next.LogoApp = p
		}

		return tx.Omit("Editor").Create(next).Error
	})
	if err != nil {
		cleanup()
		return nil, apperrors.Failed(apperrors.ErrSaveFailed, err)
	}

	s.forget(ctx)

	// created_at ties are broken by id, so re-read what Current would return
	current, err := s.latest(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	s.remember(ctx, current)
	return current, nil
}

// History returns a page of appearance rows, newest first.
func (s *appearanceService) History(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.Appearance], error) {
	result, err := pagination.Find[models.Appearance](s.db.WithContext(ctx).Model(&models.Appearance{}), page, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Editor").Order("created_at DESC").Order("id DESC")
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

func validateUpload(fh *multipart.FileHeader, kind uploadKind) error {
	if fh == nil {
		return nil
	}
	if fh.Size > MaxUploadBytes {
		return fieldError(apperrors.ErrInvalidUpload, kind.field, "must not be larger than 2 MiB")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !kind.extensions[ext] {
		return fieldError(apperrors.ErrInvalidUpload, kind.field, "must be one of: "+joinKeys(kind.extensions))
	}

	f, err := fh.Open()
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidUpload, err)
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidUpload, err)
	}
	if !kind.mimes[mt.String()] {
		return fieldError(apperrors.ErrInvalidUpload, kind.field, "must be an image")
	}
	return nil
}

// store copies an upload to <storageDir>/<kind dir>/<uuid><ext> and returns
// its slash-separated path relative to storageDir.
func (s *appearanceService) store(fh *multipart.FileHeader, kind uploadKind) (string, error) {
	dir := filepath.Join(s.storageDir, kind.dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	name := uuid.Compact() + strings.ToLower(filepath.Ext(fh.Filename))
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, io.LimitReader(src, MaxUploadBytes+1)); err != nil {
		dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return path.Join(kind.dir, name), nil
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for _, k := range []string{".jpg", ".jpeg", ".png", ".ico"} {
		if m[k] {
			keys = append(keys, strings.TrimPrefix(k, "."))
		}
	}
	return strings.Join(keys, ", ")
}
