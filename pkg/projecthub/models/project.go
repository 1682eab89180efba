package models

import "time"

// Project is a course project. Catalog-owned; the workflow only reads it.
type Project struct {
	ID                           uint       `gorm:"primarykey" json:"id"`
	CreatedAt                    time.Time  `json:"created_at"`
	UpdatedAt                    time.Time  `json:"updated_at"`
	Name                         string     `gorm:"not null" json:"name"`
	Year                         int        `gorm:"not null" json:"year"`
	MaxGroupSize                 int        `gorm:"not null;default:1" json:"max_group_size"`
	DeliverableSelectionDeadline *time.Time `json:"deliverable_selection_deadline,omitempty"`
	Active                       bool       `gorm:"default:true" json:"active"`
}

// SelectionOpen reports whether deliverable selections are still accepted at now.
// A project without a deadline is always open.
func (p Project) SelectionOpen(now time.Time) bool {
	if p.DeliverableSelectionDeadline == nil {
		return true
	}
	return !now.After(*p.DeliverableSelectionDeadline)
}
