package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: ShortLink must be migrated before ClickEvent for the foreign key
func AllModels() []interface{} {
	return []interface{}{
		&ShortLink{},
		&ClickEvent{},
		&User{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
