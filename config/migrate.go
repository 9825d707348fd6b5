package config

import (
	"gorm.io/gorm"

	"github.com/JerryLinyx/NewsGOAT/models"
)

// MigrateDB runs database migrations.
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Article{},
		&models.ReadReceipt{},
	)
}
