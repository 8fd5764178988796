package main

import (
	api "newsletterbox-backend/cmd/api"
	accountdomain "newsletterbox-backend/internal/account/domain"
	accountRepo "newsletterbox-backend/internal/account/repository"
	accountUsecase "newsletterbox-backend/internal/account/usecase"
	newsletterdomain "newsletterbox-backend/internal/newsletter/domain"
	newsletterRepo "newsletterbox-backend/internal/newsletter/repository"
	syncdomain "newsletterbox-backend/internal/sync/domain"
	syncRepo "newsletterbox-backend/internal/sync/repository"
	"newsletterbox-backend/internal/sync/scheduler"
	syncUsecase "newsletterbox-backend/internal/sync/usecase"
	"newsletterbox-backend/pkg/config"
	"newsletterbox-backend/pkg/database"
	"newsletterbox-backend/pkg/gmail"
	"newsletterbox-backend/pkg/imap"

	log "github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&accountdomain.Account{}, &syncdomain.SyncLog{}, &newsletterdomain.Newsletter{}); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// Initialize repositories (dependency injection)
	accountRepository := accountRepo.NewAccountRepository(db)
	syncLogRepository := syncRepo.NewSyncLogRepository(db)
	newsletterRepository := newsletterRepo.NewNewsletterRepository(db)

	// Message-ingestion collaborators, one per provider tag
	gmailFetcher := gmail.NewFetcher(cfg.GoogleClientID, cfg.GoogleClientSecret, accountRepository, newsletterRepository)
	imapFetcher := imap.NewFetcher(newsletterRepository)
	fetchers := map[string]syncUsecase.MessageFetcher{
		"gmail": gmailFetcher,
		"imap":  imapFetcher,
	}

	// Initialize use cases
	executor := syncUsecase.NewExecutor(accountRepository, syncLogRepository, fetchers, cfg.SyncStaleness)
	syncUsecaseInstance := syncUsecase.NewSyncUsecase(accountRepository, syncLogRepository, executor, cfg.SyncWorkers)
	accountUsecaseInstance := accountUsecase.NewAccountUsecase(accountRepository, syncLogRepository, cfg, imap.CheckLogin)

	// In-process cadence trigger; deployments with an external cron can
	// disable it and POST /api/sync/run instead.
	if cfg.TickerEnabled {
		ticker := scheduler.NewSyncTicker(syncUsecaseInstance)
		ticker.Start()
		defer ticker.Stop()
	}

	// Initialize HTTP handler
	handler := api.NewHandler(cfg, accountUsecaseInstance, syncUsecaseInstance, newsletterRepository)

	log.WithField("port", cfg.Port).Info("server starting")
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}
