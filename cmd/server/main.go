package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"refera/config"
	"refera/internal/database"
	"refera/internal/domain"
	"refera/internal/event"
	"refera/internal/idgen"
	"refera/internal/lock"
	"refera/internal/logger"
	"refera/internal/repository"
	"refera/internal/router"

	"github.com/go-redis/redis/v8"
)

func main() {
	cfg := config.Load()
	log := logger.New("server")

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	if err := database.AutoMigrate(db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}

	if err := idgen.Init(cfg.Server.NodeID); err != nil {
		log.WithError(err).Fatal("failed to init id generator")
	}

	settings := repository.NewSettingRepository(db)
	if err := settings.SeedDefaults(map[string]string{
		domain.SettingFirstDepositBonusPercent: "10",
		domain.SettingReferralBonusReferrer:    "10",
		domain.SettingReferralBonusReferred:    "5",
	}); err != nil {
		log.WithError(err).Fatal("failed to seed settings")
	}

	var locker lock.MemberLocker = lock.NewLocalLocker()
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.WithError(err).Fatal("failed to connect to redis")
		}
		locker = lock.NewRedisLocker(client)
		log.Info("using redis member locks")
	}

	var events *event.Publisher
	if cfg.AMQP.URL != "" {
		events, err = event.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to amqp")
		}
		defer events.Close()
		log.Info("event publishing enabled")
	}

	engine, sched, err := router.Setup(cfg, db, log, locker, events)
	if err != nil {
		log.WithError(err).Fatal("failed to set up router")
	}

	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("forced shutdown")
	}
}
