package database

import "quayside/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Barrel{},
		&models.FezPost{},
	}
}
