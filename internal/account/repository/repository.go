package repository

import (
	"time"

	"newsletterbox-backend/internal/account/domain"
)

// AccountRepository defines the interface for connected-mailbox persistence
type AccountRepository interface {
	// Upsert credentials for the (userID, email) identity. Creates the row on
	// first connect, updates credentials in place on re-connect.
	UpsertByIdentity(userID, email, provider string, accessToken, refreshToken string) (*domain.Account, error)
	// FindByID returns nil, nil when the account does not exist
	FindByID(id string) (*domain.Account, error)
	// ListConnected returns all accounts with is_connected=true
	ListConnected() ([]*domain.Account, error)
	UpdateLastSync(id string, at time.Time) error
	UpdateCadence(id string, cadence domain.CadenceConfig) error
	UpdateTokens(id string, accessToken, refreshToken string) error
	UpdateIMAPHost(id string, host string) error
	Delete(id string) error
}
