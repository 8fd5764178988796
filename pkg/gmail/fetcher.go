package gmail

import (
	"context"
	"errors"
	"fmt"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	accountrepo "newsletterbox-backend/internal/account/repository"
	newsletterdomain "newsletterbox-backend/internal/newsletter/domain"
	newsletterrepo "newsletterbox-backend/internal/newsletter/repository"
	syncusecase "newsletterbox-backend/internal/sync/usecase"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	pageSize        = 100
	backfillCeiling = 500
)

// Fetcher pulls newsletter messages from Gmail. It implements the
// executor's MessageFetcher contract.
type Fetcher struct {
	clientID     string
	clientSecret string
	accountRepo  accountrepo.AccountRepository
	newsletters  newsletterrepo.NewsletterRepository
}

// notifyTokenSource persists rotated access tokens so later syncs do not
// burn a refresh round-trip.
type notifyTokenSource struct {
	src      oauth2.TokenSource
	current  *oauth2.Token
	callback func(*oauth2.Token) error
}

func (s *notifyTokenSource) Token() (*oauth2.Token, error) {
	t, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.callback != nil && s.current.AccessToken != t.AccessToken {
		s.current = t
		if err := s.callback(t); err != nil {
			log.WithError(err).Warn("could not persist refreshed token")
		}
	}
	return t, nil
}

// NewFetcher creates a new Fetcher
func NewFetcher(clientID, clientSecret string, accountRepo accountrepo.AccountRepository, newsletters newsletterrepo.NewsletterRepository) *Fetcher {
	return &Fetcher{
		clientID:     clientID,
		clientSecret: clientSecret,
		accountRepo:  accountRepo,
		newsletters:  newsletters,
	}
}

// gmailService creates a Gmail client on the account's token pair.
func (f *Fetcher) gmailService(ctx context.Context, accountID string, creds accountdomain.Credentials) (*gmail.Service, error) {
	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		TokenType:    "Bearer",
	}

	// Only force a refresh when we hold a refresh token
	if creds.RefreshToken != "" {
		token.Expiry = time.Now()
	}

	config := &oauth2.Config{
		ClientID:     f.clientID,
		ClientSecret: f.clientSecret,
		Endpoint:     google.Endpoint,
	}

	wrapped := &notifyTokenSource{
		src:     config.TokenSource(ctx, token),
		current: token,
		callback: func(t *oauth2.Token) error {
			return f.accountRepo.UpdateTokens(accountID, t.AccessToken, t.RefreshToken)
		},
	}

	client := oauth2.NewClient(ctx, wrapped)
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %v", err)
	}
	return srv, nil
}

// FetchNewMessages lists inbox messages since the last sync (or the whole
// window on backfill), ingests each into the newsletter store and reports
// per-message failures.
func (f *Fetcher) FetchNewMessages(ctx context.Context, accountID string, creds accountdomain.Credentials, opts syncusecase.FetchOptions) (*syncusecase.FetchResult, error) {
	srv, err := f.gmailService(ctx, accountID, creds)
	if err != nil {
		return nil, wrapGoogleErr(err)
	}

	query := "in:inbox"
	limit := backfillCeiling
	if !opts.FullBackfill && opts.Since != nil {
		query = fmt.Sprintf("in:inbox after:%d", opts.Since.Unix())
		limit = 0 // incremental windows are small, no cap needed
	}

	result := &syncusecase.FetchResult{}
	user := "me"
	pageToken := ""
	for {
		listCall := srv.Users.Messages.List(user).Q(query).MaxResults(pageSize)
		if pageToken != "" {
			listCall = listCall.PageToken(pageToken)
		}
		resp, err := listCall.Context(ctx).Do()
		if err != nil {
			if result.Ingested > 0 || len(result.Failures) > 0 {
				// A mid-pagination failure leaves a partial ingest behind.
				result.Failures = append(result.Failures, fmt.Sprintf("message listing aborted: %v", err))
				return result, nil
			}
			return nil, wrapGoogleErr(err)
		}

		for _, m := range resp.Messages {
			if err := f.ingestMessage(ctx, srv, accountID, m.Id); err != nil {
				result.Failures = append(result.Failures, fmt.Sprintf("message %s: %v", m.Id, err))
				continue
			}
			result.Ingested++
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
		if limit > 0 && result.Ingested+len(result.Failures) >= limit {
			break
		}
	}

	return result, nil
}

func (f *Fetcher) ingestMessage(ctx context.Context, srv *gmail.Service, accountID, messageID string) error {
	msg, err := srv.Users.Messages.Get("me", messageID).
		Format("metadata").
		MetadataHeaders("From", "Subject", "Date").
		Context(ctx).Do()
	if err != nil {
		return err
	}

	entry := &newsletterdomain.Newsletter{
		AccountID:  accountID,
		MessageID:  messageID,
		Snippet:    msg.Snippet,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			switch h.Name {
			case "From":
				entry.Sender = h.Value
			case "Subject":
				entry.Subject = h.Value
			}
		}
	}

	return f.newsletters.Save(entry)
}

// wrapGoogleErr surfaces the HTTP status so the executor can tell expired
// authorization from a provider outage.
func wrapGoogleErr(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &syncusecase.FetchError{StatusCode: gerr.Code, Err: err}
	}
	return &syncusecase.FetchError{Err: err}
}
