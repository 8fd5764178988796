package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	accountdto "newsletterbox-backend/internal/account/dto"
	accountrepo "newsletterbox-backend/internal/account/repository"
	syncdomain "newsletterbox-backend/internal/sync/domain"
	syncrepo "newsletterbox-backend/internal/sync/repository"
	"newsletterbox-backend/pkg/config"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const defaultUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var gmailScopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
}

// IMAPVerifier checks that an app-password login works before the
// account is stored. Nil disables the check.
type IMAPVerifier func(host, email, password string) error

// accountUsecase implements AccountUsecase interface
type accountUsecase struct {
	accountRepo  accountrepo.AccountRepository
	syncLogRepo  syncrepo.SyncLogRepository
	config       *config.Config
	states       *stateStore
	endpoint     oauth2.Endpoint
	userinfoURL  string
	httpClient   *http.Client
	imapVerifier IMAPVerifier
}

// NewAccountUsecase creates a new instance of accountUsecase
func NewAccountUsecase(accountRepo accountrepo.AccountRepository, syncLogRepo syncrepo.SyncLogRepository, cfg *config.Config, imapVerifier IMAPVerifier) AccountUsecase {
	return &accountUsecase{
		accountRepo:  accountRepo,
		syncLogRepo:  syncLogRepo,
		config:       cfg,
		states:       newStateStore(),
		endpoint:     google.Endpoint,
		userinfoURL:  defaultUserinfoURL,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		imapVerifier: imapVerifier,
	}
}

func (u *accountUsecase) oauthConfig(redirectURI string) *oauth2.Config {
	if redirectURI == "" {
		redirectURI = u.config.GoogleRedirectURI
	}
	return &oauth2.Config{
		ClientID:     u.config.GoogleClientID,
		ClientSecret: u.config.GoogleClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       gmailScopes,
		Endpoint:     u.endpoint,
	}
}

func (u *accountUsecase) missingProviderKeys() []string {
	var missing []string
	if u.config.GoogleClientID == "" {
		missing = append(missing, "GOOGLE_CLIENT_ID")
	}
	if u.config.GoogleClientSecret == "" {
		missing = append(missing, "GOOGLE_CLIENT_SECRET")
	}
	if u.config.GoogleRedirectURI == "" {
		missing = append(missing, "GOOGLE_REDIRECT_URI")
	}
	return missing
}

func (u *accountUsecase) BeginConnect(userID string, req *accountdto.BeginConnectRequest) (*accountdto.BeginConnectResponse, error) {
	if userID == "" {
		return nil, missingParameters("user_id")
	}
	if missing := u.missingProviderKeys(); len(missing) > 0 {
		return nil, missingProviderConfig(missing)
	}

	redirectURI := req.RedirectURI
	state := u.states.Issue(userID, redirectURI)
	authURL := u.oauthConfig(redirectURI).AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))

	return &accountdto.BeginConnectResponse{
		AuthURL: authURL,
		State:   state,
	}, nil
}

// Connect runs the five handshake steps in order; each failure point maps
// to a distinct ConnectError kind. A failed handshake leaves the account
// store unchanged.
func (u *accountUsecase) Connect(ctx context.Context, userID string, req *accountdto.ConnectRequest) (*accountdomain.Account, error) {
	var missing []string
	if req.Code == "" {
		missing = append(missing, "code")
	}
	if userID == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return nil, missingParameters(missing...)
	}

	if keys := u.missingProviderKeys(); len(keys) > 0 {
		return nil, missingProviderConfig(keys)
	}

	pending, ok := u.states.Consume(req.State, userID)
	if !ok {
		return nil, invalidState()
	}
	redirectURI := req.RedirectURI
	if redirectURI == "" {
		redirectURI = pending.redirectURI
	}

	token, err := u.oauthConfig(redirectURI).Exchange(ctx, req.Code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, tokenExchangeFailed(retrieveErr.ErrorCode, retrieveErr.ErrorDescription, err)
		}
		return nil, tokenExchangeFailed("", err.Error(), err)
	}

	email, err := u.fetchIdentity(ctx, token.AccessToken)
	if err != nil {
		return nil, identityFetchFailed(err)
	}

	account, err := u.accountRepo.UpsertByIdentity(userID, email, "gmail", token.AccessToken, token.RefreshToken)
	if err != nil {
		return nil, persistenceFailed(err)
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"email":   email,
	}).Info("mailbox connected")
	return account, nil
}

// fetchIdentity resolves the authenticated mailbox address with the
// freshly issued access token.
func (u *accountUsecase) fetchIdentity(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.userinfoURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", errors.New("userinfo response carried no email")
	}
	return info.Email, nil
}

func (u *accountUsecase) ConnectIMAP(userID string, req *accountdto.ConnectIMAPRequest) (*accountdomain.Account, error) {
	var missing []string
	if userID == "" {
		missing = append(missing, "user_id")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Host == "" {
		missing = append(missing, "host")
	}
	if len(missing) > 0 {
		return nil, missingParameters(missing...)
	}

	if u.imapVerifier != nil {
		if err := u.imapVerifier(req.Host, req.Email, req.Password); err != nil {
			return nil, identityFetchFailed(err)
		}
	}

	account, err := u.accountRepo.UpsertByIdentity(userID, req.Email, "imap", req.Password, "")
	if err != nil {
		return nil, persistenceFailed(err)
	}
	if err := u.accountRepo.UpdateIMAPHost(account.ID, req.Host); err != nil {
		return nil, persistenceFailed(err)
	}
	account.IMAPHost = req.Host

	log.WithFields(log.Fields{
		"user_id": userID,
		"email":   req.Email,
		"host":    req.Host,
	}).Info("imap mailbox connected")
	return account, nil
}

func (u *accountUsecase) GetAccount(id string) (*accountdomain.Account, error) {
	return u.accountRepo.FindByID(id)
}

func (u *accountUsecase) ListAccounts() ([]*accountdomain.Account, error) {
	return u.accountRepo.ListConnected()
}

// UpdateCadence validates and stores a new cadence. Enabling a previously
// disabled cadence writes a "scheduled" audit entry so the log shows when
// syncing was switched on.
func (u *accountUsecase) UpdateCadence(id string, req *accountdto.CadenceRequest) (*accountdomain.Account, error) {
	account, err := u.accountRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}

	scheduleType := accountdomain.ScheduleType(req.ScheduleType)
	if !accountdomain.ValidScheduleType(scheduleType) {
		return nil, fmt.Errorf("unknown schedule type %q", req.ScheduleType)
	}

	hour := accountdomain.HourUnset
	if scheduleType == accountdomain.ScheduleDaily {
		if req.Hour == nil || *req.Hour < 0 || *req.Hour > 23 {
			return nil, errors.New("daily schedule requires an hour between 0 and 23")
		}
		hour = *req.Hour
	}

	cadence := accountdomain.CadenceConfig{
		Enabled:      req.Enabled,
		ScheduleType: scheduleType,
		Hour:         hour,
	}
	if err := u.accountRepo.UpdateCadence(id, cadence); err != nil {
		return nil, err
	}

	wasEnabled := account.Cadence.Enabled && account.Cadence.ScheduleType != accountdomain.ScheduleDisabled
	nowEnabled := cadence.Enabled && scheduleType != accountdomain.ScheduleDisabled
	if nowEnabled && !wasEnabled {
		details, _ := json.Marshal(map[string]interface{}{
			"schedule_type": scheduleType,
			"hour":          hour,
		})
		if _, err := u.syncLogRepo.Create(&syncdomain.SyncLog{
			AccountID: id,
			Status:    syncdomain.StatusScheduled,
			SyncType:  syncdomain.SyncTypeScheduled,
			Details:   string(details),
		}); err != nil {
			log.WithError(err).WithField("account_id", id).Warn("could not record cadence audit entry")
		}
	}

	return u.accountRepo.FindByID(id)
}

func (u *accountUsecase) Disconnect(id string) error {
	return u.accountRepo.Delete(id)
}
