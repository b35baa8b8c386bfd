package database

import (
	"log"

	"domainly/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func InitDB(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	log.Println("Migrating database...")
	if err := db.AutoMigrate(&models.Domain{}, &models.ValidationLog{}); err != nil {
		return nil, err
	}

	return db, nil
}
