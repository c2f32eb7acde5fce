package router

import (
	"time"

	"refera/config"
	"refera/internal/event"
	"refera/internal/graph"
	"refera/internal/handler"
	"refera/internal/lock"
	"refera/internal/middleware"
	"refera/internal/repository"
	"refera/internal/scheduler"
	"refera/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Setup wires repositories, services, jobs and handlers, and returns the HTTP
// engine together with the job scheduler.
func Setup(
	cfg *config.Config,
	db *gorm.DB,
	log *logrus.Logger,
	locker lock.MemberLocker,
	events *event.Publisher,
) (*gin.Engine, *scheduler.Scheduler, error) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	plan := cfg.CompensationPlan()
	loc := cfg.Location()

	memberRepo := repository.NewMemberRepository(db)
	walletRepo := repository.NewWalletRepository(db)
	levelRepo := repository.NewLevelRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	jobRunRepo := repository.NewJobRunRepository(db)

	walker := graph.NewWalker(memberRepo)

	levelSvc := service.NewLevelService(plan, memberRepo, walletRepo, levelRepo, walker)
	incomeSvc := service.NewIncomeService(plan, walletRepo)
	claimSvc := service.NewClaimService(db, memberRepo, walletRepo, levelRepo, levelSvc, incomeSvc, locker, events, loc)
	transferSvc := service.NewTransferService(db, memberRepo, walletRepo, locker)
	referralSvc := service.NewReferralService(referralRepo, memberRepo, walletRepo, settingRepo, levelSvc, log)
	authSvc := service.NewAuthService(cfg, memberRepo, walletRepo, referralSvc)

	snapshotJob := scheduler.NewSnapshotJob(memberRepo, levelRepo, levelSvc, incomeSvc, locker, jobRunRepo, events, log)
	weeklyJob := scheduler.NewWeeklyRecalcJob(memberRepo, levelSvc, jobRunRepo, events, log)
	selfIncomeJob := scheduler.NewSelfIncomeJob(db, plan, memberRepo, walletRepo, incomeSvc, locker, jobRunRepo, events, log)

	sched, err := scheduler.New(cfg.Scheduler, loc, log, snapshotJob, weeklyJob, selfIncomeJob)
	if err != nil {
		return nil, nil, err
	}

	authHandler := handler.NewAuthHandler(authSvc)
	memberHandler := handler.NewMemberHandler(memberRepo, referralRepo, levelSvc)
	walletHandler := handler.NewWalletHandler(walletRepo)
	levelHandler := handler.NewLevelHandler(memberRepo, levelRepo, levelSvc, incomeSvc)
	claimHandler := handler.NewClaimHandler(claimSvc)
	transferHandler := handler.NewTransferHandler(transferSvc)
	adminHandler := handler.NewAdminHandler(memberRepo, settingRepo, jobRunRepo, snapshotJob, weeklyJob, selfIncomeJob)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")

	authLimiter := middleware.NewInMemoryRateLimiter(10, time.Minute)
	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(authLimiter))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	me := api.Group("/me")
	me.Use(middleware.AuthRequired(&cfg.JWT))
	{
		me.GET("/profile", memberHandler.GetProfile)
		me.GET("/referral-code", memberHandler.GetReferralCode)
		me.GET("/referrals", memberHandler.GetReferrals)
		me.GET("/wallets", walletHandler.GetBalances)
		me.GET("/wallets/transactions", walletHandler.GetTransactions)
		me.GET("/level", levelHandler.GetLevel)
		me.GET("/income/preview", levelHandler.GetIncomePreview)
		me.POST("/claims/daily", claimHandler.ClaimDaily)
		me.POST("/claims/team", claimHandler.ClaimTeam)
		me.POST("/transfers/wallet", transferHandler.TransferWallets)
		me.POST("/transfers/member", transferHandler.TransferMember)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
	{
		admin.POST("/jobs/:name/run", adminHandler.RunJob)
		admin.GET("/jobs/runs", adminHandler.ListJobRuns)
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.UpdateSetting)
		admin.PUT("/members/:id/block", adminHandler.BlockMember)
	}

	return r, sched, nil
}
