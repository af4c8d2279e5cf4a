package repositories

import (
	"github.com/anonto42/aray/backend/internal/models"
	"gorm.io/gorm"
)

// Models lists every table owned by the application
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	}
}

// Migrate creates or updates the schema
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
