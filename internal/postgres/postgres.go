package postgres

import (
	"log"
	"time"

	"huntcore/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the global database connection
var DB *gorm.DB

// Init initializes the database connection and sets the global DB variable
func Init(url string) *gorm.DB {
	// Configure GORM logger with higher slow SQL threshold
	gormLogger := logger.New(
		log.New(log.Writer(), "\r\n", log.LstdFlags), // io writer
		logger.Config{
			SlowThreshold: time.Millisecond * 500,
		},
	)

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatalln(err)
	}

	// AutoMigrate models
	err = db.AutoMigrate(&model.ObservationPG{}, &PredictionLogPG{}, &RoadPointPG{})
	if err != nil {
		log.Fatalln("Failed to migrate models:", err)
	}

	// Set global DB variable
	DB = db

	return db
}

// GetDB returns the global database connection
func GetDB() *gorm.DB {
	return DB
}

// Close closes the underlying sql connection
func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		log.Printf("Failed to get sql.DB for close: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
