package service

import (
	"testing"

	"refera/internal/domain"
	"refera/internal/graph"
	"refera/internal/models"
	"refera/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// env bundles everything a service test needs against one in-memory database.
type env struct {
	db       *gorm.DB
	members  *repository.MemberRepository
	wallets  *repository.WalletRepository
	levels   *repository.LevelRepository
	levelSvc *LevelService
	income   *IncomeService
}

func newEnv(t *testing.T) *env {
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

	plan := domain.DefaultPlan()
	members := repository.NewMemberRepository(db)
	wallets := repository.NewWalletRepository(db)
	levels := repository.NewLevelRepository(db)
	walker := graph.NewWalker(members)
	return &env{
		db:       db,
		members:  members,
		wallets:  wallets,
		levels:   levels,
		levelSvc: NewLevelService(plan, members, wallets, levels, walker),
		income:   NewIncomeService(plan, wallets),
	}
}

func (e *env) createMember(t *testing.T, username string, referredBy *uint) *models.Member {
	t.Helper()
	m := &models.Member{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		ReferredByID: referredBy,
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(m).Error)
	return m
}

func (e *env) fund(t *testing.T, memberID uint, amount string) {
	t.Helper()
	_, err := e.wallets.Credit(memberID, domain.WalletNormal, decimal.RequireFromString(amount), domain.TxDeposit, "test deposit")
	require.NoError(t, err)
}
