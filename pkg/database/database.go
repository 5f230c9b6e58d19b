package database

import (
	"fmt"
	"log"

	"school_lms_backend/internal/config"
	"school_lms_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate creates the schema and seeds the one config row the system
// depends on. Seeding here (rather than lazily on first read) keeps the
// quarter gate free of first-access write races.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.Topic{},
		&model.Subtopic{},
		&model.Resource{},
		&model.Assessment{},
		&model.Attempt{},
		&model.Config{},
	)
	if err != nil {
		return err
	}

	log.Println("Database migration completed")

	var count int64
	if err := db.Model(&model.Config{}).Where("`key` = ?", model.ActiveQuarterKey).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		if err := db.Create(&model.Config{Key: model.ActiveQuarterKey, Value: model.DefaultQuarter}).Error; err != nil {
			return err
		}
		log.Printf("Seeded %s = %s", model.ActiveQuarterKey, model.DefaultQuarter)
	}
	return nil
}
