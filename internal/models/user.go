package models

// User is a person who can sign in and own wallets, categories and transactions
type User struct {
	Base
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Roles    []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// RoleNames returns the names of the loaded roles.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
