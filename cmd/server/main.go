package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fitsocial/internal/config"
	"fitsocial/internal/httpserver"
	"fitsocial/internal/security"
	"fitsocial/internal/service"
	"fitsocial/internal/store/sqlite"
	"fitsocial/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := sqlite.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	tokenSvc := security.NewTokenService(cfg.JWTSecret, time.Duration(cfg.AccessTokenMinutes)*time.Minute)

	// Repositories
	userRepo := sqlite.NewUserRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)
	notifRepo := sqlite.NewNotificationRepo(db)
	achRepo := sqlite.NewAchievementRepo(db)

	// Live channels and services
	hub := ws.NewHub(cfg.WSWriteTimeout)
	unreadSvc := service.NewUnreadService(msgRepo)
	msgSvc := service.NewMessageService(msgRepo, unreadSvc, hub, cfg.HistoryLimit)
	notifSvc := service.NewNotificationService(notifRepo, userRepo, hub)
	achSvc := service.NewAchievementService(achRepo, userRepo, notifSvc, cfg.AchievementWorkers, cfg.AchievementQueueLen)
	defer achSvc.Close()

	router := httpserver.NewRouter(cfg, httpserver.Deps{
		Users:         userRepo,
		Notifications: notifRepo,
		Messages:      msgSvc,
		Notifier:      notifSvc,
		Achievements:  achSvc,
		Unread:        unreadSvc,
		Tokens:        tokenSvc,
		Hub:           hub,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting FitSocial realtime server on %s\n", cfg.HTTPAddr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
