package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"installment_job/internal/app"
	"installment_job/internal/domain/alert"
	"installment_job/internal/infra/config"
	idb "installment_job/internal/infra/database"
	"installment_job/internal/infra/emailer"
	"installment_job/internal/infra/httpapi"
	"installment_job/internal/infra/logger"
	"installment_job/internal/infra/scheduler"
	"installment_job/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. Environment: %s, LogLevel: %s", cfg.Environment, cfg.LogLevel)

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	if err := idb.Migrate(db); err != nil {
		log.Fatalf("FATAL: Could not apply database migrations: %v", err)
	}
	log.Info("Database migrations applied.")

	// Repositories
	agencyRepo := idb.NewPostgresAgencyRepository(db)
	instRepo := idb.NewPostgresInstallmentRepository(db)
	runRepo := idb.NewPostgresJobRunRepository(db)
	notifRepo := idb.NewPostgresNotificationRepository(db)

	// External email trigger (optional)
	var emailSender app.EmailSender
	if cfg.EmailNotifyURL != "" {
		emailSender = emailer.NewClient(cfg.EmailNotifyURL, cfg.EmailNotifyToken)
		log.Infof("Email notification trigger configured: %s", cfg.EmailNotifyURL)
	} else {
		log.Warn("EMAIL_NOTIFY_URL not set. Email notification stage is disabled.")
	}

	// Failure alerting (optional)
	var alerter alert.Client
	if cfg.TelegramToken != "" {
		tgAlerter, err := telegram.NewAlerter(cfg.TelegramToken, cfg.AdminTelegramID)
		if err != nil {
			log.Fatalf("FATAL: Could not create Telegram alerter: %v", err)
		}
		alerter = tgAlerter
		log.Info("Telegram failure alerting enabled.")
	}

	// Services
	notifier := app.NewNotifierService(instRepo, notifRepo, emailSender, log)
	transitionSvc := app.NewTransitionService(agencyRepo, instRepo, runRepo, notifier, log)
	if alerter != nil {
		transitionSvc.WithAlerter(alerter)
	}

	// Scheduler
	overdueScheduler := scheduler.NewOverdueScheduler(transitionSvc, log, cfg.CronSpecOverdueCheck)
	overdueScheduler.Start()

	// HTTP trigger endpoint
	jobHandler := httpapi.NewJobHandler(transitionSvc, cfg.JobTriggerSecret, log)
	server := httpapi.New(cfg.HTTPAddr, jobHandler, cfg.MetricsEnabled)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()
	log.Infof("HTTP server started on %s.", cfg.HTTPAddr)

	log.Info("Application setup complete. Scheduler and trigger endpoint are running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application...")
	overdueScheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown error: %v", err)
	}
	log.Info("Application shut down gracefully.")
}
