package database

import (
	"fmt"
	"log"

	"assesspro_backend/internal/config"
	"assesspro_backend/internal/model"

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
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedCategories(db)

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Test{},
		&model.Question{},
		&model.AnswerOption{},
		&model.TestAttempt{},
		&model.UserAnswer{},
		&model.RetryCooldownException{},
	)
}

func seedCategories(db *gorm.DB) {
	var count int64
	db.Model(&model.Category{}).Count(&count)
	if count > 0 {
		return
	}
	defaults := []model.Category{
		{Name: "General", Description: "Uncategorized tests", IsActive: true},
		{Name: "Programming", Description: "Programming and algorithms", IsActive: true},
		{Name: "Mathematics", Description: "Math and logic", IsActive: true},
		{Name: "Languages", Description: "Language proficiency", IsActive: true},
	}
	for _, c := range defaults {
		db.Create(&c)
	}
}
