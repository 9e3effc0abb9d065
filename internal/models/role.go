package models

// Role groups permissions under a unique name
type Role struct {
	Base
	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"many2many:user_roles;" json:"-"`
}

// Permission is a named capability such as "wallet-create"
type Permission struct {
	Base
	Name string `gorm:"uniqueIndex;not null" json:"name"`
}

// PermissionNames returns the names of the loaded permissions.
func (r *Role) PermissionNames() []string {
	names := make([]string, 0, len(r.Permissions))
	for _, p := range r.Permissions {
		names = append(names, p.Name)
	}
	return names
}
