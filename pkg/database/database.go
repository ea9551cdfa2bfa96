package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newLogger() logger.Interface {
	return logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)
}

// ConnectLocal opens the embedded on-device store. This is the replica the
// terminal works against; it must always succeed for the app to start.
func ConnectLocal() *gorm.DB {
	path := os.Getenv("LOCAL_DB_PATH")
	if path == "" {
		path = "pos.db"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: newLogger(),
	})
	if err != nil {
		log.Fatal("Failed to open local store. \n", err)
	}

	// SQLite serializes writers; a single connection avoids busy errors
	// from concurrent handlers.
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)

	log.Println("Local store opened:", path)
	return db
}

// ConnectRemote connects to the backend system of record. Returns nil when
// DATABASE_URL is unset or the backend is unreachable; the terminal then
// runs in offline demo mode and the sync client keeps retrying nothing.
func ConnectRemote() *gorm.DB {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("DATABASE_URL not set, running offline")
		return nil
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statements for pooled backends
	}), &gorm.Config{
		Logger:      newLogger(),
		PrepareStmt: false,
	})
	if err != nil {
		log.Println("Warning: remote backend unreachable, running offline:", err)
		return nil
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Println("Remote backend connection established")
	return db
}
