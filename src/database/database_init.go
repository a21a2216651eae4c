package database

import (
	"fmt"

	"passport-oracle/src/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbConn *gorm.DB

// Connect opens the sqlite database at path and migrates the pipeline
// schema. Pass ":memory:" for an ephemeral database.
func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(&model.QueuedTransaction{}, &model.SubmittedClaim{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return db, nil
}

func InitializeDatabaseConnection(path string) error {
	db, err := Connect(path)
	if err != nil {
		return err
	}
	dbConn = db
	return nil
}

func GetDatabaseConnection() *gorm.DB {
	if dbConn == nil {
		panic("database connection requested before initialization")
	}
	return dbConn
}
