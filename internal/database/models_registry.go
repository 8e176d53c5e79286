package database

import "github.com/AHMED-techNOP/01BLOG/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Subscription{},
		&models.Notification{},
		&models.Report{},
	}
}
