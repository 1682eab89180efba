package models

import "time"

// SecurityCode is a short-lived, project-scoped invitation code that gates group creation.
// Codes are not consumed on use.
type SecurityCode struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ProjectID  uint      `gorm:"not null;index" json:"project_id"`
	Code       string    `gorm:"uniqueIndex;size:7;not null" json:"code"`
	Expiration time.Time `gorm:"not null" json:"expiration"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}

// Expired reports whether the code is no longer valid at now. A code whose
// expiration equals now is expired.
func (s SecurityCode) Expired(now time.Time) bool {
	return !s.Expiration.After(now)
}

// CoordinatorAssignment binds a coordinator admin to a project.
// The unique index on ProjectID keeps at most one coordinator per project.
type CoordinatorAssignment struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	AdminID    uint      `gorm:"not null;index" json:"admin_id"`
	ProjectID  uint      `gorm:"not null;uniqueIndex" json:"project_id"`
	AssignedAt time.Time `gorm:"not null" json:"assigned_at"`

	// Relationships
	Admin   Admin   `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
