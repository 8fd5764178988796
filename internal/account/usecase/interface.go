package usecase

import (
	"context"

	accountdomain "newsletterbox-backend/internal/account/domain"
	accountdto "newsletterbox-backend/internal/account/dto"
)

// AccountUsecase defines the interface for mailbox connection operations
type AccountUsecase interface {
	// BeginConnect issues an opaque state token bound to the pending
	// handshake and returns the provider consent URL
	BeginConnect(userID string, req *accountdto.BeginConnectRequest) (*accountdto.BeginConnectResponse, error)
	// Connect exchanges the authorization code for credentials and upserts
	// the account. Failures are always a *ConnectError.
	Connect(ctx context.Context, userID string, req *accountdto.ConnectRequest) (*accountdomain.Account, error)
	// ConnectIMAP stores an app-password mailbox for non-OAuth providers
	ConnectIMAP(userID string, req *accountdto.ConnectIMAPRequest) (*accountdomain.Account, error)
	GetAccount(id string) (*accountdomain.Account, error)
	ListAccounts() ([]*accountdomain.Account, error)
	UpdateCadence(id string, req *accountdto.CadenceRequest) (*accountdomain.Account, error)
	Disconnect(id string) error
}
