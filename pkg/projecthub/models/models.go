package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: Project must be migrated first as other models depend on it
func AllModels() []interface{} {
	return []interface{}{
		&Project{},
		&Student{},
		&Admin{},
		&SecurityCode{},
		&CoordinatorAssignment{},
		&Group{},
		&GroupMember{},
		&GroupDeliverable{},
		&GroupDeliverableComponent{},
		&GroupDeliverableComponentLink{},
		&StudentDeliverable{},
		&GroupDeliverableSelection{},
		&ComponentImplementationDetail{},
		&StudentDeliverableSelection{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
