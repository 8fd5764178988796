package imap

import (
	"context"
	"fmt"
	"strings"
	"time"

	accountdomain "newsletterbox-backend/internal/account/domain"
	newsletterdomain "newsletterbox-backend/internal/newsletter/domain"
	newsletterrepo "newsletterbox-backend/internal/newsletter/repository"
	syncusecase "newsletterbox-backend/internal/sync/usecase"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message"
	log "github.com/sirupsen/logrus"
)

// backfillWindow bounds how far a full backfill reaches into the mailbox.
const backfillWindow = 90 * 24 * time.Hour

// Fetcher pulls newsletter messages over IMAP for app-password accounts.
// Credentials.AccessToken carries the app password.
type Fetcher struct {
	newsletters newsletterrepo.NewsletterRepository
}

// NewFetcher creates a new Fetcher
func NewFetcher(newsletters newsletterrepo.NewsletterRepository) *Fetcher {
	return &Fetcher{
		newsletters: newsletters,
	}
}

func serverAddr(host string) string {
	if strings.Contains(host, ":") {
		return host
	}
	return host + ":993"
}

// CheckLogin verifies an app-password login before the account is stored.
func CheckLogin(host, email, password string) error {
	c, err := client.DialTLS(serverAddr(host), nil)
	if err != nil {
		return fmt.Errorf("could not reach %s: %w", host, err)
	}
	defer c.Logout()

	if err := c.Login(email, password); err != nil {
		return fmt.Errorf("login rejected: %w", err)
	}
	return nil
}

func (f *Fetcher) FetchNewMessages(ctx context.Context, accountID string, creds accountdomain.Credentials, opts syncusecase.FetchOptions) (*syncusecase.FetchResult, error) {
	c, err := client.DialTLS(serverAddr(creds.IMAPHost), nil)
	if err != nil {
		return nil, &syncusecase.FetchError{StatusCode: 503, Err: err}
	}
	defer c.Logout()

	if err := c.Login(creds.Email, creds.AccessToken); err != nil {
		// A rejected login means the stored password no longer works.
		return nil, &syncusecase.FetchError{StatusCode: 401, Err: err}
	}

	if _, err := c.Select("INBOX", true); err != nil {
		return nil, &syncusecase.FetchError{Err: err}
	}

	since := time.Now().Add(-backfillWindow)
	if !opts.FullBackfill && opts.Since != nil {
		since = *opts.Since
	}
	criteria := imap.NewSearchCriteria()
	criteria.Since = since

	ids, err := c.Search(criteria)
	if err != nil {
		return nil, &syncusecase.FetchError{Err: err}
	}

	result := &syncusecase.FetchResult{}
	if len(ids) == 0 {
		return result, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	headerSection := &imap.BodySectionName{
		BodyPartName: imap.BodyPartName{Specifier: imap.HeaderSpecifier},
		Peek:         true,
	}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchInternalDate, imap.FetchUid, headerSection.FetchItem()}

	messages := make(chan *imap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, messages)
	}()

	for msg := range messages {
		if !isListMail(msg, headerSection) {
			continue
		}
		if err := f.ingestMessage(accountID, msg); err != nil {
			result.Failures = append(result.Failures, fmt.Sprintf("uid %d: %v", msg.Uid, err))
			continue
		}
		result.Ingested++
	}

	if err := <-done; err != nil {
		if result.Ingested > 0 || len(result.Failures) > 0 {
			result.Failures = append(result.Failures, fmt.Sprintf("fetch aborted: %v", err))
			return result, nil
		}
		return nil, &syncusecase.FetchError{Err: err}
	}

	log.WithFields(log.Fields{
		"account_id": accountID,
		"ingested":   result.Ingested,
	}).Debug("imap fetch finished")
	return result, nil
}

// isListMail keeps only mailing-list traffic: generic IMAP inboxes mix
// newsletters with personal mail, so anything without list headers is
// skipped (not a failure).
func isListMail(msg *imap.Message, section *imap.BodySectionName) bool {
	r := msg.GetBody(section)
	if r == nil {
		return false
	}
	entity, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) {
		return false
	}
	return entity.Header.Get("List-Id") != "" || entity.Header.Get("List-Unsubscribe") != ""
}

func (f *Fetcher) ingestMessage(accountID string, msg *imap.Message) error {
	if msg.Envelope == nil {
		return fmt.Errorf("message carried no envelope")
	}

	messageID := msg.Envelope.MessageId
	if messageID == "" {
		messageID = fmt.Sprintf("uid-%d", msg.Uid)
	}

	sender := ""
	if len(msg.Envelope.From) > 0 {
		sender = msg.Envelope.From[0].Address()
	}

	return f.newsletters.Save(&newsletterdomain.Newsletter{
		AccountID:  accountID,
		MessageID:  messageID,
		Sender:     sender,
		Subject:    msg.Envelope.Subject,
		ReceivedAt: msg.InternalDate,
	})
}
