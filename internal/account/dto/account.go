package dto

import accountdomain "newsletterbox-backend/internal/account/domain"

type BeginConnectRequest struct {
	RedirectURI string `json:"redirect_uri"`
}

type BeginConnectResponse struct {
	AuthURL string `json:"auth_url"`
	State   string `json:"state"`
}

type ConnectRequest struct {
	Code        string `json:"code" binding:"required"`
	State       string `json:"state" binding:"required"`
	RedirectURI string `json:"redirect_uri"`
}

type ConnectResponse struct {
	Success bool                   `json:"success"`
	Account *accountdomain.Account `json:"account,omitempty"`
}

type ConnectIMAPRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Host     string `json:"host" binding:"required"`
}

type CadenceRequest struct {
	Enabled      bool   `json:"enabled"`
	ScheduleType string `json:"schedule_type" binding:"required"`
	Hour         *int   `json:"hour"`
}

type AccountsResponse struct {
	Accounts []*accountdomain.Account `json:"accounts"`
}
