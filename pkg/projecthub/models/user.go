package models

import "time"

// AdminRole represents an administrator's system-wide role
type AdminRole string

const (
	AdminRoleRoot        AdminRole = "root"
	AdminRoleProfessor   AdminRole = "professor"
	AdminRoleCoordinator AdminRole = "coordinator"
)

// Valid reports whether r is one of the known admin roles
func (r AdminRole) Valid() bool {
	switch r {
	case AdminRoleRoot, AdminRoleProfessor, AdminRoleCoordinator:
		return true
	}
	return false
}

// Student represents a student account
type Student struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	Pending   bool      `gorm:"default:false" json:"pending"` // e-mail not confirmed yet
}

// FullName returns "First Last"
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Admin represents an administrator account (root, professor or coordinator)
type Admin struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	FirstName    string    `gorm:"not null" json:"first_name"`
	LastName     string    `gorm:"not null" json:"last_name"`
	PasswordHash string    `json:"-"`
	Role         AdminRole `gorm:"type:varchar(20);not null" json:"role"`
}

// FullName returns "First Last"
func (a Admin) FullName() string {
	return a.FirstName + " " + a.LastName
}
