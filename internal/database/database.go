package database

import (
	"log"

	"linkmint/config"
	"linkmint/internal/domain"
	"linkmint/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,                                 // duplicate-key detection relies on gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Link{},
		&models.LinkView{},
		&models.ReferralLedger{},
		&models.ReferralEarningsLog{},
		&models.WithdrawalRequest{},
		&models.EmailOTP{},
		&models.SystemSetting{},
	)
}

// SeedAdmin makes sure one ADMIN user exists.
func SeedAdmin(db *gorm.DB, email string) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	admin := models.User{
		Email:    email,
		Role:     domain.RoleAdmin,
		Verified: true,
		Status:   domain.UserStatusActive,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[seed] admin user: %v", err)
	}
}
