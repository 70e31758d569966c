package repository

import "gorm.io/gorm"

// Migrate creates or updates the tables backing principals and profiles.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&principalModel{},
		&providerModel{},
		&requesterModel{},
	)
}
