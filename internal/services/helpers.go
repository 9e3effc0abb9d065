package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "cashflow/internal/errors"
)

// fieldError reports a single field failing a validation-phase check.
func fieldError(sentinel *apperrors.AppError, field, reason string) *apperrors.AppError {
	return apperrors.WithFields(sentinel, sentinel.Message, map[string]string{field: reason})
}

// lookupError maps a gorm lookup failure to notFound or an internal error.
func lookupError(err error, notFound *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// exists reports whether any row of model matches the query.
func exists(q *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var count int64
	if err := q.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
