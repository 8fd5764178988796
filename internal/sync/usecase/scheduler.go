package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	accountrepo "newsletterbox-backend/internal/account/repository"
	syncdomain "newsletterbox-backend/internal/sync/domain"
	syncdto "newsletterbox-backend/internal/sync/dto"
	syncrepo "newsletterbox-backend/internal/sync/repository"

	log "github.com/sirupsen/logrus"
)

// ErrAccountNotFound is returned for a single-account pass whose account
// disappeared between listing and execution.
var ErrAccountNotFound = errors.New("account not found")

// syncUsecase implements SyncUsecase interface
type syncUsecase struct {
	accountRepo accountrepo.AccountRepository
	syncLogRepo syncrepo.SyncLogRepository
	executor    *Executor
	workers     int
	now         func() time.Time
}

// NewSyncUsecase creates a new instance of syncUsecase. workers bounds
// fan-out concurrency so a pass over many accounts does not overwhelm the
// mailbox provider.
func NewSyncUsecase(accountRepo accountrepo.AccountRepository, syncLogRepo syncrepo.SyncLogRepository, executor *Executor, workers int) SyncUsecase {
	if workers <= 0 {
		workers = 8
	}
	return &syncUsecase{
		accountRepo: accountRepo,
		syncLogRepo: syncLogRepo,
		executor:    executor,
		workers:     workers,
		now:         time.Now,
	}
}

func (u *syncUsecase) RunPass(ctx context.Context, req *syncdto.RunRequest) (*syncdto.PassReport, error) {
	now := u.now()
	forced := req.ForceRun || req.Manual
	syncType := syncdomain.SyncTypeScheduled
	if req.Manual {
		syncType = syncdomain.SyncTypeManual
	}

	if req.AccountID != "" {
		return u.runSingle(ctx, req.AccountID, syncType, forced, now)
	}
	return u.runFanOut(ctx, syncType, forced, now), nil
}

func (u *syncUsecase) runSingle(ctx context.Context, accountID string, syncType syncdomain.SyncType, forced bool, now time.Time) (*syncdto.PassReport, error) {
	account, err := u.accountRepo.FindByID(accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	report := &syncdto.PassReport{RanAt: now, Eligible: 1}
	if !IsDue(account.Cadence, now, forced) {
		// Skipped passes create no log entry.
		report.Results = append(report.Results, syncdto.AccountResult{
			AccountID: account.ID,
			Email:     account.Email,
			Success:   true,
			Status:    "skipped",
			Skipped:   true,
		})
		return report, nil
	}

	report.Results = append(report.Results, u.runAccount(ctx, account, syncType, forced))
	return report, nil
}

// runFanOut syncs every due account concurrently. One account failing or
// panicking must not prevent or delay the others' reporting.
func (u *syncUsecase) runFanOut(ctx context.Context, syncType syncdomain.SyncType, forced bool, now time.Time) *syncdto.PassReport {
	report := &syncdto.PassReport{RanAt: now}

	accounts, err := u.accountRepo.ListConnected()
	if err != nil {
		log.WithError(err).Error("could not list connected accounts")
		return report
	}

	var due []*accountdomain.Account
	for _, account := range accounts {
		if IsDue(account.Cadence, now, forced) {
			due = append(due, account)
		}
	}
	report.Eligible = len(due)
	if len(due) == 0 {
		return report
	}

	results := make([]syncdto.AccountResult, len(due))
	sem := make(chan struct{}, u.workers)
	var wg sync.WaitGroup
	for i, account := range due {
		wg.Add(1)
		go func(i int, account *accountdomain.Account) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = u.runAccount(ctx, account, syncType, forced)
		}(i, account)
	}
	wg.Wait()

	report.Results = results
	return report
}

// runAccount converts one executor run, including a panic, into a report
// entry.
func (u *syncUsecase) runAccount(ctx context.Context, account *accountdomain.Account, syncType syncdomain.SyncType, forced bool) (result syncdto.AccountResult) {
	result = syncdto.AccountResult{
		AccountID: account.ID,
		Email:     account.Email,
	}
	defer func() {
		if r := recover(); r != nil {
			result.Success = false
			result.Status = string(syncdomain.StatusFailed)
			result.Error = fmt.Sprintf("sync executor panicked: %v", r)
			log.WithFields(log.Fields{
				"account_id": account.ID,
				"panic":      r,
			}).Error("recovered sync executor panic")
		}
	}()

	outcome := u.executor.Execute(ctx, account, syncType, forced)
	result.Status = string(outcome.Status)
	result.MessageCount = outcome.MessageCount
	result.InProgress = outcome.InProgress
	result.Error = outcome.Error
	result.Success = outcome.Status == syncdomain.StatusSuccess || outcome.Status == syncdomain.StatusPartial
	return result
}

func (u *syncUsecase) ListLogs(accountID string, limit int) ([]*syncdomain.SyncLog, error) {
	return u.syncLogRepo.ListRecent(accountID, limit)
}
