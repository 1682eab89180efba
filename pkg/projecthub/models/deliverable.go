package models

// GroupDeliverable is a predefined scope of work a group can commit to
type GroupDeliverable struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Name      string `gorm:"not null" json:"name"`

	// Relationships
	Components []GroupDeliverableComponentLink `gorm:"foreignKey:GroupDeliverableID" json:"components,omitempty"`
}

// GroupDeliverableComponent is a named sub-part that deliverables are built from
type GroupDeliverableComponent struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Name      string `gorm:"not null" json:"name"`
	Sellable  bool   `gorm:"default:false" json:"sellable"`
}

// GroupDeliverableComponentLink records that a component is part of a deliverable
type GroupDeliverableComponentLink struct {
	ID                          uint `gorm:"primarykey" json:"id"`
	GroupDeliverableID          uint `gorm:"not null;uniqueIndex:idx_deliverable_component" json:"group_deliverable_id"`
	GroupDeliverableComponentID uint `gorm:"not null;uniqueIndex:idx_deliverable_component" json:"group_deliverable_component_id"`
	Quantity                    int  `gorm:"not null;default:1" json:"quantity"`

	// Relationships
	Component GroupDeliverableComponent `gorm:"foreignKey:GroupDeliverableComponentID" json:"component,omitempty"`
}

// StudentDeliverable is a predefined individual scope of work
type StudentDeliverable struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Name      string `gorm:"not null" json:"name"`
}
