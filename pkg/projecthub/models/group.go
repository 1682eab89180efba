package models

import "time"

// Group is a set of students working together on a project.
// Names are unique within a project.
type Group struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_group_project_name" json:"project_id"`
	Name      string    `gorm:"not null;uniqueIndex:idx_group_project_name" json:"name"`

	// Relationships
	Project Project       `gorm:"foreignKey:ProjectID" json:"-"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
}
