package usecase

import (
	"context"
	"fmt"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	syncdomain "newsletterbox-backend/internal/sync/domain"
	syncdto "newsletterbox-backend/internal/sync/dto"
)

// FetchOptions selects between a full mailbox backfill and an incremental
// fetch. Since is the last successful sync; nil means no cursor.
type FetchOptions struct {
	FullBackfill bool
	Since        *time.Time
}

// FetchResult is what the message-ingestion collaborator reports back.
// Failures holds one description per message that could not be ingested.
type FetchResult struct {
	Ingested int
	Failures []string
}

// FetchError is a hard ingestion failure. StatusCode carries the
// provider's HTTP-style status when one is available (401/403 marks
// expired authorization, 5xx a transient provider error).
type FetchError struct {
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch failed with status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch failed: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// MessageFetcher is the ingestion collaborator: it pulls new messages for
// one mailbox and reports counts. Implementations live in pkg/gmail and
// pkg/imap; the executor treats them as opaque beyond this contract.
type MessageFetcher interface {
	FetchNewMessages(ctx context.Context, accountID string, creds accountdomain.Credentials, opts FetchOptions) (*FetchResult, error)
}

// SyncOutcome summarizes one executor run for the caller.
type SyncOutcome struct {
	AccountID    string
	LogID        string
	Status       syncdomain.SyncStatus
	MessageCount int
	InProgress   bool
	Error        string
}

// SyncUsecase defines the interface for sync scheduling operations
type SyncUsecase interface {
	// RunPass is the scheduler entry point: single-account when
	// req.AccountID is set, fan-out over all connected accounts otherwise.
	RunPass(ctx context.Context, req *syncdto.RunRequest) (*syncdto.PassReport, error)
	ListLogs(accountID string, limit int) ([]*syncdomain.SyncLog, error)
}
