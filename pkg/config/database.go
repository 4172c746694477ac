package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"atoiota/internal/models"
)

var DB *gorm.DB

// InitDB initializes the database connection. Postgres is used when DB_HOST
// is set; otherwise the service runs standalone against a local sqlite file
// (DB_PATH, default atoiota.db).
func InitDB() {
	var (
		db  *gorm.DB
		err error
	)

	if os.Getenv("DB_HOST") != "" {
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			os.Getenv("DB_HOST"),
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			os.Getenv("DB_NAME"),
			os.Getenv("DB_PORT"),
		)
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to connect to database:", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal("Failed to get database instance:", err)
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	} else {
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "atoiota.db"
		}
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
		if err != nil {
			log.Fatal("Failed to open sqlite database:", err)
		}
	}

	DB = db

	// Auto migrate all models
	err = DB.AutoMigrate(
		&models.PortfolioSnapshot{},
		&models.TransactionRecord{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}
