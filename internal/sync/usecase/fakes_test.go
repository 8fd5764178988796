package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	syncdomain "newsletterbox-backend/internal/sync/domain"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*accountdomain.Account
	lastSync map[string]time.Time
}

func newFakeAccountRepo(accounts ...*accountdomain.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{
		accounts: make(map[string]*accountdomain.Account),
		lastSync: make(map[string]time.Time),
	}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *fakeAccountRepo) UpsertByIdentity(userID, email, provider string, accessToken, refreshToken string) (*accountdomain.Account, error) {
	panic("not used in sync tests")
}

func (r *fakeAccountRepo) FindByID(id string) (*accountdomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	copied := *account
	return &copied, nil
}

func (r *fakeAccountRepo) ListConnected() ([]*accountdomain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*accountdomain.Account
	for _, a := range r.accounts {
		if a.IsConnected {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) UpdateLastSync(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastSync[id] = at
	if a, ok := r.accounts[id]; ok {
		a.LastSyncAt = &at
	}
	return nil
}

func (r *fakeAccountRepo) UpdateCadence(id string, cadence accountdomain.CadenceConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		a.Cadence = cadence
	}
	return nil
}

func (r *fakeAccountRepo) UpdateTokens(id string, accessToken, refreshToken string) error {
	return nil
}

func (r *fakeAccountRepo) UpdateIMAPHost(id string, host string) error {
	return nil
}

func (r *fakeAccountRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.accounts, id)
	return nil
}

func (r *fakeAccountRepo) syncedAt(id string) (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	at, ok := r.lastSync[id]
	return at, ok
}

type fakeSyncLogRepo struct {
	mu      sync.Mutex
	nextID  int
	entries []*syncdomain.SyncLog
}

func newFakeSyncLogRepo() *fakeSyncLogRepo {
	return &fakeSyncLogRepo{}
}

func (r *fakeSyncLogRepo) Create(entry *syncdomain.SyncLog) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	entry.ID = fmt.Sprintf("log-%d", r.nextID)
	if entry.StartedAt.IsZero() {
		entry.StartedAt = time.Now()
	}
	copied := *entry
	r.entries = append(r.entries, &copied)
	return entry.ID, nil
}

func (r *fakeSyncLogRepo) Update(id string, patch syncdomain.SyncLogPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id {
			e.Status = patch.Status
			e.MessageCount = patch.MessageCount
			if patch.ErrorMessage != "" {
				e.ErrorMessage = patch.ErrorMessage
			}
			if patch.Details != "" {
				e.Details = patch.Details
			}
			e.FinishedAt = patch.FinishedAt
			return nil
		}
	}
	return fmt.Errorf("no log entry %s", id)
}

func (r *fakeSyncLogRepo) ListRecent(accountID string, limit int) ([]*syncdomain.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*syncdomain.SyncLog
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.entries[i].AccountID == accountID {
			copied := *r.entries[i]
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSyncLogRepo) FindOpen(accountID string, since time.Time) (*syncdomain.SyncLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if e.AccountID == accountID && e.Status == syncdomain.StatusProcessing && e.StartedAt.After(since) {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSyncLogRepo) byAccount(accountID string) []*syncdomain.SyncLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*syncdomain.SyncLog
	for _, e := range r.entries {
		if e.AccountID == accountID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out
}

type fakeFetcher struct {
	fn func(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error)
}

func (f *fakeFetcher) FetchNewMessages(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error) {
	return f.fn(ctx, accountID, creds, opts)
}

func testAccount(id string, cadence accountdomain.CadenceConfig) *accountdomain.Account {
	return &accountdomain.Account{
		ID:          id,
		UserID:      "user-1",
		Email:       id + "@example.com",
		Provider:    "gmail",
		AccessToken: "token",
		IsConnected: true,
		Cadence:     cadence,
	}
}

func minuteCadence() accountdomain.CadenceConfig {
	return accountdomain.CadenceConfig{
		Enabled:      true,
		ScheduleType: accountdomain.ScheduleMinute,
		Hour:         accountdomain.HourUnset,
	}
}
