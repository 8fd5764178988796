package scheduler

import (
	"context"
	"time"

	syncdto "newsletterbox-backend/internal/sync/dto"
	syncusecase "newsletterbox-backend/internal/sync/usecase"

	log "github.com/sirupsen/logrus"
)

// SyncTicker drives a scheduler pass once a minute for deployments
// without an external cron. Each tick is a stateless pass; time is
// re-derived from the wall clock inside RunPass.
type SyncTicker struct {
	syncUsecase syncusecase.SyncUsecase
	interval    time.Duration
	stopChan    chan struct{}
}

// NewSyncTicker creates a new ticker
func NewSyncTicker(syncUsecase syncusecase.SyncUsecase) *SyncTicker {
	return &SyncTicker{
		syncUsecase: syncUsecase,
		interval:    1 * time.Minute,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the ticker loop
func (s *SyncTicker) Start() {
	log.WithField("interval", s.interval).Info("starting sync ticker")

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.runPass()
			case <-s.stopChan:
				log.Info("sync ticker stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the ticker
func (s *SyncTicker) Stop() {
	close(s.stopChan)
}

func (s *SyncTicker) runPass() {
	report, err := s.syncUsecase.RunPass(context.Background(), &syncdto.RunRequest{})
	if err != nil {
		log.WithError(err).Error("scheduled pass failed")
		return
	}
	if report.Eligible == 0 {
		return
	}

	failed := 0
	for _, result := range report.Results {
		if !result.Success && !result.Skipped && !result.InProgress {
			failed++
		}
	}
	log.WithFields(log.Fields{
		"eligible": report.Eligible,
		"failed":   failed,
	}).Info("scheduled pass finished")
}
