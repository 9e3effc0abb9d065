package models

import "errors"

// ErrAppearanceImmutable is returned when something tries to edit or remove
// an appearance history row.
var ErrAppearanceImmutable = errors.New("appearance history is append-only")
