package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	syncdomain "newsletterbox-backend/internal/sync/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestExecutor(accountRepo *fakeAccountRepo, logRepo *fakeSyncLogRepo, fetcher MessageFetcher) *Executor {
	return NewExecutor(accountRepo, logRepo, map[string]MessageFetcher{"gmail": fetcher}, 5*time.Minute)
}

func TestExecuteSuccess(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	accountRepo := newFakeAccountRepo(account)
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		assert.True(t, opts.FullBackfill) // no previous sync
		return &FetchResult{Ingested: 12}, nil
	}}

	outcome := newTestExecutor(accountRepo, logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.Equal(t, syncdomain.StatusSuccess, outcome.Status)
	assert.Equal(t, 12, outcome.MessageCount)
	assert.Empty(t, outcome.Error)

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.Equal(t, syncdomain.StatusSuccess, entries[0].Status)
	assert.Equal(t, 12, entries[0].MessageCount)
	assert.Equal(t, syncdomain.SyncTypeScheduled, entries[0].SyncType)
	assert.NotNil(t, entries[0].FinishedAt)

	_, synced := accountRepo.syncedAt("acc-1")
	assert.True(t, synced)
}

func TestExecutePartialAccounting(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	accountRepo := newFakeAccountRepo(account)
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return &FetchResult{
			Ingested: 7,
			Failures: []string{"msg-8: parse error", "msg-9: parse error", "msg-10: store error"},
		}, nil
	}}

	outcome := newTestExecutor(accountRepo, logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.Equal(t, syncdomain.StatusPartial, outcome.Status)
	assert.Equal(t, 7, outcome.MessageCount)

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.Equal(t, syncdomain.StatusPartial, entries[0].Status)
	assert.Equal(t, 7, entries[0].MessageCount)
	assert.Contains(t, entries[0].Details, "3 of 10 messages failed")

	_, synced := accountRepo.syncedAt("acc-1")
	assert.True(t, synced, "partial with ingested messages advances last sync")
}

func TestExecuteZeroSuccessFailure(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	accountRepo := newFakeAccountRepo(account)
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return nil, &FetchError{StatusCode: 503, Err: errors.New("upstream exploded")}
	}}

	outcome := newTestExecutor(accountRepo, logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.Equal(t, syncdomain.StatusFailed, outcome.Status)
	assert.Equal(t, 0, outcome.MessageCount)
	assert.Contains(t, outcome.Error, "provider unavailable")

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.Equal(t, syncdomain.StatusFailed, entries[0].Status)
	assert.Equal(t, 0, entries[0].MessageCount)

	_, synced := accountRepo.syncedAt("acc-1")
	assert.False(t, synced, "failed attempts never advance last sync")
}

func TestExecuteAuthExpiryClassification(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return nil, &FetchError{StatusCode: 401, Err: errors.New("invalid credentials")}
	}}

	outcome := newTestExecutor(newFakeAccountRepo(account), logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeManual, false)

	assert.Equal(t, syncdomain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "reconnect this account")
}

func TestExecuteTerminalLogOnPanic(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	accountRepo := newFakeAccountRepo(account)
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		panic("fetcher blew up")
	}}

	outcome := newTestExecutor(accountRepo, logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.Equal(t, syncdomain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "panicked")

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Status.Terminal(), "a processing entry must never be left open")
	assert.Equal(t, syncdomain.StatusFailed, entries[0].Status)

	_, synced := accountRepo.syncedAt("acc-1")
	assert.False(t, synced)
}

func TestExecuteOverlapGuard(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	accountRepo := newFakeAccountRepo(account)
	logRepo := newFakeSyncLogRepo()
	_, err := logRepo.Create(&syncdomain.SyncLog{
		AccountID: "acc-1",
		Status:    syncdomain.StatusProcessing,
		StartedAt: time.Now().Add(-1 * time.Minute),
	})
	require.NoError(t, err)

	called := false
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		called = true
		return &FetchResult{}, nil
	}}

	outcome := newTestExecutor(accountRepo, logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.True(t, outcome.InProgress)
	assert.False(t, called, "no second fetch while an attempt is open")
	assert.Len(t, logRepo.byAccount("acc-1"), 1, "no second log entry created")
}

func TestExecuteStaleProcessingEntryDoesNotBlock(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	accountRepo := newFakeAccountRepo(account)
	logRepo := newFakeSyncLogRepo()
	_, err := logRepo.Create(&syncdomain.SyncLog{
		AccountID: "acc-1",
		Status:    syncdomain.StatusProcessing,
		StartedAt: time.Now().Add(-30 * time.Minute),
	})
	require.NoError(t, err)

	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return &FetchResult{Ingested: 1}, nil
	}}

	outcome := newTestExecutor(accountRepo, logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.False(t, outcome.InProgress)
	assert.Equal(t, syncdomain.StatusSuccess, outcome.Status)
	assert.Len(t, logRepo.byAccount("acc-1"), 2)
}

func TestExecuteUnknownProvider(t *testing.T) {
	account := testAccount("acc-1", minuteCadence())
	account.Provider = "carrier-pigeon"
	logRepo := newFakeSyncLogRepo()
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		return &FetchResult{}, nil
	}}

	outcome := newTestExecutor(newFakeAccountRepo(account), logRepo, fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.Equal(t, syncdomain.StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Error, "carrier-pigeon")

	entries := logRepo.byAccount("acc-1")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Status.Terminal())
}

func TestExecuteIncrementalWindow(t *testing.T) {
	lastSync := time.Now().Add(-2 * time.Hour)
	account := testAccount("acc-1", minuteCadence())
	account.LastSyncAt = &lastSync

	var gotOpts FetchOptions
	fetcher := &fakeFetcher{fn: func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
		gotOpts = opts
		return &FetchResult{Ingested: 2}, nil
	}}

	newTestExecutor(newFakeAccountRepo(account), newFakeSyncLogRepo(), fetcher).Execute(context.Background(), account, syncdomain.SyncTypeScheduled, false)

	assert.False(t, gotOpts.FullBackfill)
	require.NotNil(t, gotOpts.Since)
	assert.True(t, gotOpts.Since.Equal(lastSync))
}
