package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	accountrepo "newsletterbox-backend/internal/account/repository"
	syncdomain "newsletterbox-backend/internal/sync/domain"
	syncrepo "newsletterbox-backend/internal/sync/repository"

	log "github.com/sirupsen/logrus"
)

// Executor runs one account's sync attempt and records its outcome.
type Executor struct {
	accountRepo accountrepo.AccountRepository
	syncLogRepo syncrepo.SyncLogRepository
	fetchers    map[string]MessageFetcher
	staleness   time.Duration
	now         func() time.Time
}

// NewExecutor creates an Executor. fetchers maps the account provider tag
// to its ingestion collaborator. staleness bounds the advisory overlap
// guard: processing entries older than it no longer block a new attempt.
func NewExecutor(accountRepo accountrepo.AccountRepository, syncLogRepo syncrepo.SyncLogRepository, fetchers map[string]MessageFetcher, staleness time.Duration) *Executor {
	return &Executor{
		accountRepo: accountRepo,
		syncLogRepo: syncLogRepo,
		fetchers:    fetchers,
		staleness:   staleness,
		now:         time.Now,
	}
}

// Execute opens a processing log entry, delegates to the ingestion
// collaborator and closes the entry with a terminal status. The entry is
// closed even when the collaborator panics.
func (e *Executor) Execute(ctx context.Context, account *accountdomain.Account, syncType syncdomain.SyncType, forced bool) SyncOutcome {
	outcome := SyncOutcome{AccountID: account.ID}

	// Advisory overlap guard. Log-read-then-log-write, so two racing
	// invocations can still both pass; see SyncLogRepository.FindOpen.
	open, err := e.syncLogRepo.FindOpen(account.ID, e.now().Add(-e.staleness))
	if err == nil && open != nil {
		outcome.InProgress = true
		outcome.LogID = open.ID
		outcome.Status = syncdomain.StatusProcessing
		outcome.Error = "a sync for this account is already in progress"
		return outcome
	}
	if err != nil {
		log.WithError(err).WithField("account_id", account.ID).Warn("overlap check failed, proceeding")
	}

	details, _ := json.Marshal(map[string]interface{}{
		"schedule_type": account.Cadence.ScheduleType,
		"hour":          account.Cadence.Hour,
		"provider":      account.Provider,
		"forced":        forced,
	})
	startedAt := e.now()
	logID, err := e.syncLogRepo.Create(&syncdomain.SyncLog{
		AccountID: account.ID,
		Status:    syncdomain.StatusProcessing,
		SyncType:  syncType,
		Details:   string(details),
		StartedAt: startedAt,
	})
	if err != nil {
		outcome.Status = syncdomain.StatusFailed
		outcome.Error = "could not open a sync log entry: " + err.Error()
		return outcome
	}
	outcome.LogID = logID

	opts := FetchOptions{
		FullBackfill: forced || account.LastSyncAt == nil,
		Since:        account.LastSyncAt,
	}
	result, fetchErr := e.runFetch(ctx, account, opts)

	patch := e.classify(result, fetchErr)
	finishedAt := e.now()
	patch.FinishedAt = &finishedAt

	if err := e.syncLogRepo.Update(logID, patch); err != nil {
		// The entry stays open until the staleness window releases it;
		// the attempt is unaccounted-for but must not fail the caller.
		log.WithError(err).WithFields(log.Fields{
			"account_id": account.ID,
			"log_id":     logID,
		}).Error("could not close sync log entry")
	}

	if patch.Status == syncdomain.StatusSuccess ||
		(patch.Status == syncdomain.StatusPartial && patch.MessageCount > 0) {
		if err := e.accountRepo.UpdateLastSync(account.ID, startedAt); err != nil {
			log.WithError(err).WithField("account_id", account.ID).Error("could not advance last sync timestamp")
		}
	}

	outcome.Status = patch.Status
	outcome.MessageCount = patch.MessageCount
	outcome.Error = patch.ErrorMessage

	log.WithFields(log.Fields{
		"account_id": account.ID,
		"email":      account.Email,
		"status":     patch.Status,
		"count":      patch.MessageCount,
		"sync_type":  syncType,
	}).Info("sync attempt finished")
	return outcome
}

// runFetch invokes the collaborator with a recover barrier so a panicking
// fetcher still yields a classifiable error.
func (e *Executor) runFetch(ctx context.Context, account *accountdomain.Account, opts FetchOptions) (result *FetchResult, err error) {
	fetcher, ok := e.fetchers[account.Provider]
	if !ok {
		return nil, fmt.Errorf("no message fetcher registered for provider %q", account.Provider)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("message fetcher panicked: %v", r)
		}
	}()
	return fetcher.FetchNewMessages(ctx, account.ID, account.Credentials(), opts)
}

// classify maps the collaborator result onto a terminal log patch.
func (e *Executor) classify(result *FetchResult, fetchErr error) syncdomain.SyncLogPatch {
	if fetchErr != nil {
		return syncdomain.SyncLogPatch{
			Status:       syncdomain.StatusFailed,
			MessageCount: 0,
			ErrorMessage: classifyFetchError(fetchErr),
		}
	}
	if result == nil {
		return syncdomain.SyncLogPatch{
			Status:       syncdomain.StatusFailed,
			MessageCount: 0,
			ErrorMessage: "message fetcher returned no result",
		}
	}

	if len(result.Failures) == 0 {
		return syncdomain.SyncLogPatch{
			Status:       syncdomain.StatusSuccess,
			MessageCount: result.Ingested,
		}
	}

	warning, _ := json.Marshal(map[string]interface{}{
		"warning": fmt.Sprintf("%d of %d messages failed to ingest", len(result.Failures), result.Ingested+len(result.Failures)),
		"errors":  truncateFailures(result.Failures, 10),
	})
	return syncdomain.SyncLogPatch{
		Status:       syncdomain.StatusPartial,
		MessageCount: result.Ingested,
		Details:      string(warning),
	}
}

// classifyFetchError distinguishes expired authorization from transient
// provider errors so the UI can suggest reconnecting instead of retrying.
func classifyFetchError(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		switch {
		case fe.StatusCode == 401 || fe.StatusCode == 403:
			return fmt.Sprintf("mailbox authorization expired (status %d), reconnect this account: %v", fe.StatusCode, fe.Err)
		case fe.StatusCode >= 500:
			return fmt.Sprintf("mailbox provider unavailable (status %d), the next scheduled pass will retry: %v", fe.StatusCode, fe.Err)
		}
	}
	return err.Error()
}

func truncateFailures(failures []string, max int) []string {
	if len(failures) <= max {
		return failures
	}
	out := make([]string, max+1)
	copy(out, failures[:max])
	out[max] = fmt.Sprintf("... and %d more", len(failures)-max)
	return out
}
