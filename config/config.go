package config

import (
	"log"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/drivescan/drivescan-backend/models"
)

var DB *gorm.DB

// InitDB opens the embedded sqlite store and migrates the settings table.
// The store is the localStorage analogue of the app: a single file that
// survives restarts and holds endpoint config plus the history cache.
func InitDB() {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "drivescan.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("no se pudo abrir la base local:", err)
	}

	DB = db

	if err := DB.AutoMigrate(&models.Setting{}); err != nil {
		log.Fatal("autoMigrate falló: ", err)
	}
	log.Println("sqlite store ready at", path)
}

// GeminiAPIKey returns the configured Gemini key, empty when unset.
func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// LicenseServerURL is the master license authority endpoint.
func LicenseServerURL() string {
	return os.Getenv("LICENSE_SERVER_URL")
}
