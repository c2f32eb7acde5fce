package repository

import (
	"testing"

	"refera/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection so every query sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Level{},
		&models.LevelDirectMember{},
		&models.ReferralCode{},
		&models.SystemSetting{},
		&models.JobRun{},
	))
	return db
}

func createMember(t *testing.T, db *gorm.DB, username string, referredBy *uint) *models.Member {
	t.Helper()
	m := &models.Member{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		ReferredByID: referredBy,
		IsActive:     true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}
