package models

import "time"

// GroupDeliverableSelection is a group's one-time deliverable choice.
// GroupDeliverableID never changes after creation; Link and MarkdownText are free text.
type GroupDeliverableSelection struct {
	ID                 uint      `gorm:"primarykey" json:"id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
	GroupID            uint      `gorm:"not null;uniqueIndex" json:"group_id"`
	GroupDeliverableID uint      `gorm:"not null;index" json:"group_deliverable_id"`
	Link               string    `gorm:"not null;default:'';uniqueIndex:idx_selection_link,where:link <> ''" json:"link"`
	MarkdownText       string    `gorm:"type:text;not null;default:''" json:"markdown_text"`

	// Relationships
	Group       Group            `gorm:"foreignKey:GroupID" json:"-"`
	Deliverable GroupDeliverable `gorm:"foreignKey:GroupDeliverableID" json:"-"`
}

// ComponentImplementationDetail describes how a group implements one component
// of its selected deliverable.
type ComponentImplementationDetail struct {
	ID                          uint      `gorm:"primarykey" json:"id"`
	CreatedAt                   time.Time `json:"created_at"`
	UpdatedAt                   time.Time `json:"updated_at"`
	GroupDeliverableSelectionID uint      `gorm:"not null;uniqueIndex:idx_detail_selection_component" json:"group_deliverable_selection_id"`
	GroupDeliverableComponentID uint      `gorm:"not null;uniqueIndex:idx_detail_selection_component" json:"group_deliverable_component_id"`
	MarkdownDescription         string    `gorm:"type:text;not null" json:"markdown_description"`
	RepositoryLink              string    `gorm:"not null" json:"repository_link"`
}

// StudentDeliverableSelection is a student's individual deliverable choice for a project.
// Unlike the group selection it stays mutable until the project deadline.
type StudentDeliverableSelection struct {
	ID                   uint      `gorm:"primarykey" json:"id"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	StudentID            uint      `gorm:"not null;uniqueIndex:idx_student_selection_project" json:"student_id"`
	ProjectID            uint      `gorm:"not null;uniqueIndex:idx_student_selection_project" json:"project_id"`
	StudentDeliverableID uint      `gorm:"not null;index" json:"student_deliverable_id"`

	// Relationships
	Deliverable StudentDeliverable `gorm:"foreignKey:StudentDeliverableID" json:"-"`
}
