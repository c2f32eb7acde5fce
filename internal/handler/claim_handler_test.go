package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"refera/internal/domain"
	"refera/internal/graph"
	"refera/internal/lock"
	"refera/internal/models"
	"refera/internal/repository"
	"refera/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newClaimTestServer(t *testing.T) (*gin.Engine, *gorm.DB, uint) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Member{},
		&models.Wallet{},
		&models.WalletTransaction{},
		&models.Level{},
		&models.LevelDirectMember{},
	))

	plan := domain.DefaultPlan()
	members := repository.NewMemberRepository(db)
	wallets := repository.NewWalletRepository(db)
	levels := repository.NewLevelRepository(db)
	walker := graph.NewWalker(members)
	levelSvc := service.NewLevelService(plan, members, wallets, levels, walker)
	incomeSvc := service.NewIncomeService(plan, wallets)
	claimSvc := service.NewClaimService(db, members, wallets, levels, levelSvc, incomeSvc, lock.NewLocalLocker(), nil, time.UTC)

	// a sponsor with five funded referrals and a 1000 balance holds Lvl1
	sponsor := &models.Member{Username: "sponsor", Email: "sponsor@example.com", IsActive: true}
	require.NoError(t, db.Create(sponsor).Error)
	for i := 0; i < 5; i++ {
		r := &models.Member{
			Username:     fmt.Sprintf("ref%d", i),
			Email:        fmt.Sprintf("ref%d@example.com", i),
			ReferredByID: &sponsor.ID,
			IsActive:     true,
		}
		require.NoError(t, db.Create(r).Error)
		_, err := wallets.Credit(r.ID, domain.WalletNormal, decimal.NewFromInt(50), domain.TxDeposit, "seed")
		require.NoError(t, err)
	}
	_, err = wallets.Credit(sponsor.ID, domain.WalletNormal, decimal.NewFromInt(1000), domain.TxDeposit, "seed")
	require.NoError(t, err)
	_, _, err = levelSvc.Recalculate(sponsor.ID)
	require.NoError(t, err)

	h := NewClaimHandler(claimSvc)
	r := gin.New()
	// stand-in for the JWT middleware
	r.Use(func(c *gin.Context) {
		c.Set("member_id", sponsor.ID)
	})
	r.POST("/me/claims/daily", h.ClaimDaily)
	r.POST("/me/claims/team", h.ClaimTeam)
	return r, db, sponsor.ID
}

func TestClaimDailyEndpoint(t *testing.T) {
	r, _, _ := newClaimTestServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/me/claims/daily", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Claim struct {
			Total      decimal.Decimal `json:"total"`
			NewBalance decimal.Decimal `json:"new_balance"`
		} `json:"claim"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Claim.Total.Equal(decimal.RequireFromString("3.5")), "got %s", resp.Claim.Total)
	assert.True(t, resp.Claim.NewBalance.Equal(decimal.RequireFromString("1003.5")))
}

func TestClaimDailyEndpointConflictOnRepeat(t *testing.T) {
	r, _, _ := newClaimTestServer(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/me/claims/daily", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/me/claims/daily", nil))
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestClaimTeamEndpointCriteriaFailure(t *testing.T) {
	r, db, _ := newClaimTestServer(t)

	// drain one referral below the valid-member minimum
	wallets := repository.NewWalletRepository(db)
	members := repository.NewMemberRepository(db)
	ref0, err := members.GetByUsername("ref0")
	require.NoError(t, err)
	_, err = wallets.Debit(ref0.ID, domain.WalletNormal, decimal.NewFromInt(10), domain.TxWithdrawal, "spend")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/me/claims/team", nil))
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	var resp struct {
		Criteria struct {
			Tier            string `json:"tier"`
			RequiredMembers int    `json:"required_members"`
			ValidMembers    int    `json:"valid_members"`
		} `json:"criteria"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.DigitLvl1, resp.Criteria.Tier)
	assert.Equal(t, 5, resp.Criteria.RequiredMembers)
	assert.Equal(t, 4, resp.Criteria.ValidMembers)
}
