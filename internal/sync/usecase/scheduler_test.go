package usecase

import (
	"context"
	"testing"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	syncdomain "newsletterbox-backend/internal/sync/domain"
	syncdto "newsletterbox-backend/internal/sync/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(accountRepo *fakeAccountRepo, logRepo *fakeSyncLogRepo, fetcher MessageFetcher, now time.Time) *syncUsecase {
	executor := NewExecutor(accountRepo, logRepo, map[string]MessageFetcher{"gmail": fetcher}, 5*time.Minute)
	return &syncUsecase{
		accountRepo: accountRepo,
		syncLogRepo: logRepo,
		executor:    executor,
		workers:     4,
		now:         func() time.Time { return now },
	}
}

func TestRunPassFanOutIsolation(t *testing.T) {
	accounts := []*accountdomain.Account{
		testAccount("acc-1", minuteCadence()),
		testAccount("acc-2", minuteCadence()),
		testAccount("acc-3", minuteCadence()),
	}
	accountRepo := newFakeAccountRepo(accounts...)
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		if accountID == "acc-2" {
			panic("acc-2 fetcher exploded")
		}
		return &FetchResult{Ingested: 3}, nil
	}}

	report, err := newTestScheduler(accountRepo, logRepo, fetcher, time.Now()).
		RunPass(context.Background(), &syncdto.RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Eligible)
	require.Len(t, report.Results, 3)

	byID := make(map[string]syncdto.AccountResult)
	for _, r := range report.Results {
		byID[r.AccountID] = r
	}

	assert.True(t, byID["acc-1"].Success)
	assert.Equal(t, 3, byID["acc-1"].MessageCount)
	assert.True(t, byID["acc-3"].Success)
	assert.Equal(t, 3, byID["acc-3"].MessageCount)

	assert.False(t, byID["acc-2"].Success)
	assert.Contains(t, byID["acc-2"].Error, "exploded")

	// The failing account still got a terminal log entry.
	entries := logRepo.byAccount("acc-2")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Status.Terminal())
}

func TestRunPassFanOutSkipsNotDue(t *testing.T) {
	hourly := accountdomain.CadenceConfig{
		Enabled:      true,
		ScheduleType: accountdomain.ScheduleHourly,
		Hour:         accountdomain.HourUnset,
	}
	accountRepo := newFakeAccountRepo(
		testAccount("acc-due", minuteCadence()),
		testAccount("acc-idle", hourly),
	)
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return &FetchResult{Ingested: 1}, nil
	}}

	// Minute 30: hourly accounts are outside the due window.
	now := time.Date(2025, 6, 10, 9, 30, 0, 0, time.UTC)
	report, err := newTestScheduler(accountRepo, logRepo, fetcher, now).
		RunPass(context.Background(), &syncdto.RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Eligible)
	require.Len(t, report.Results, 1)
	assert.Equal(t, "acc-due", report.Results[0].AccountID)
	assert.Empty(t, logRepo.byAccount("acc-idle"))
}

func TestRunPassSingleAccountNotFound(t *testing.T) {
	scheduler := newTestScheduler(newFakeAccountRepo(), newFakeSyncLogRepo(), &fakeFetcher{}, time.Now())

	_, err := scheduler.RunPass(context.Background(), &syncdto.RunRequest{AccountID: "ghost"})
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestRunPassSingleAccountGateSkip(t *testing.T) {
	daily := accountdomain.CadenceConfig{
		Enabled:      true,
		ScheduleType: accountdomain.ScheduleDaily,
		Hour:         9,
	}
	accountRepo := newFakeAccountRepo(testAccount("acc-1", daily))
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		t.Fatal("fetcher must not run for a skipped pass")
		return nil, nil
	}}

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	report, err := newTestScheduler(accountRepo, logRepo, fetcher, now).
		RunPass(context.Background(), &syncdto.RunRequest{AccountID: "acc-1"})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Skipped)
	assert.Empty(t, logRepo.byAccount("acc-1"), "skipped passes create no log entry")
}

func TestRunPassManualBypassesGate(t *testing.T) {
	daily := accountdomain.CadenceConfig{
		Enabled:      true,
		ScheduleType: accountdomain.ScheduleDaily,
		Hour:         9,
	}
	accountRepo := newFakeAccountRepo(testAccount("acc-1", daily))
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return &FetchResult{Ingested: 4}, nil
	}}

	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	report, err := newTestScheduler(accountRepo, logRepo, fetcher, now).
		RunPass(context.Background(), &syncdto.RunRequest{AccountID: "acc-1", Manual: true})
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Success)

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.Equal(t, syncdomain.SyncTypeManual, entries[0].SyncType)
}

// End-to-end: a daily-at-9 account invoked at hour 9 passes the gate, runs
// a scheduled attempt and advances last sync.
func TestRunPassDailyScheduledEndToEnd(t *testing.T) {
	daily := accountdomain.CadenceConfig{
		Enabled:      true,
		ScheduleType: accountdomain.ScheduleDaily,
		Hour:         9,
	}
	accountRepo := newFakeAccountRepo(testAccount("acc-1", daily))
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return &FetchResult{Ingested: 5}, nil
	}}

	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	report, err := newTestScheduler(accountRepo, logRepo, fetcher, now).
		RunPass(context.Background(), &syncdto.RunRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Eligible)
	require.Len(t, report.Results, 1)
	assert.True(t, report.Results[0].Success)
	assert.Equal(t, 5, report.Results[0].MessageCount)

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.Equal(t, syncdomain.SyncTypeScheduled, entries[0].SyncType)
	assert.Equal(t, syncdomain.StatusSuccess, entries[0].Status)

	_, synced := accountRepo.syncedAt("acc-1")
	assert.True(t, synced)
}
