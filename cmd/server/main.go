package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linkmint/config"
	"linkmint/internal/database"
	"linkmint/internal/domain"
	"linkmint/internal/jobs"
	"linkmint/internal/repository"
	"linkmint/internal/router"
	"linkmint/pkg/mailer"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, cfg.Admin.Email)

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(map[string]string{
		domain.SettingReferralShare: cfg.Earnings.ReferralShare.String(),
		domain.SettingMinWithdrawal: cfg.Earnings.MinWithdrawal.String(),
	}); err != nil {
		log.Printf("settings seed: %v", err)
	}

	referralRepo := repository.NewReferralRepository(db)
	c := cron.New()
	if _, err := c.AddFunc(cfg.Jobs.ReconcileSpec, func() {
		if _, err := jobs.Reconcile(referralRepo); err != nil {
			log.Printf("[reconcile] %v", err)
		}
	}); err != nil {
		log.Fatalf("cron: %v", err)
	}
	c.Start()
	defer c.Stop()

	engine := router.Setup(cfg, db, mailer.LogMailer{})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}
