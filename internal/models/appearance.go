package models

import (
	"time"

	"cashflow/internal/uuid"

	"gorm.io/gorm"
)

// Appearance is one entry in the branding history. Rows are append-only:
// no Base embed, no soft deletes, never updated. The newest row is current.
type Appearance struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	EditedBy  string    `gorm:"type:uuid;not null" json:"edited_by"`
	NameApp   string    `json:"name_app"`
	IconApp   string    `json:"icon_app"`
	LogoApp   string    `json:"logo_app"`
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	Editor    *User     `gorm:"foreignKey:EditedBy" json:"editor,omitempty"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (a *Appearance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New()
	}
	return nil
}

// BeforeUpdate rejects in-place edits of the history.
func (a *Appearance) BeforeUpdate(tx *gorm.DB) error {
	return ErrAppearanceImmutable
}

// BeforeDelete rejects removal of history rows.
func (a *Appearance) BeforeDelete(tx *gorm.DB) error {
	return ErrAppearanceImmutable
}
