package domain

import "time"

// ScheduleType is the configured sync cadence for an account.
type ScheduleType string

const (
	ScheduleDisabled ScheduleType = "disabled"
	ScheduleMinute   ScheduleType = "minute"
	ScheduleHourly   ScheduleType = "hourly"
	ScheduleDaily    ScheduleType = "daily"
)

// ValidScheduleType reports whether t is one of the four known cadence types.
func ValidScheduleType(t ScheduleType) bool {
	switch t {
	case ScheduleDisabled, ScheduleMinute, ScheduleHourly, ScheduleDaily:
		return true
	}
	return false
}

// HourUnset marks a daily cadence without a configured hour.
const HourUnset = -1

// CadenceConfig controls when the scheduler considers an account due.
// Hour is only meaningful when ScheduleType is "daily".
type CadenceConfig struct {
	Enabled      bool         `json:"enabled" gorm:"column:cadence_enabled"`
	ScheduleType ScheduleType `json:"schedule_type" gorm:"column:schedule_type;type:varchar(20)"`
	Hour         int          `json:"hour" gorm:"column:schedule_hour;default:-1"`
	LastUpdated  time.Time    `json:"last_updated" gorm:"column:cadence_updated_at"`
}

// Account is one connected mailbox. At most one row exists per
// (owning user, mailbox address) pair; re-connecting refreshes
// credentials on the existing row.
type Account struct {
	ID           string        `json:"id" gorm:"primaryKey"`
	UserID       string        `json:"user_id" gorm:"index:idx_user_mailbox,unique;not null"`
	Email        string        `json:"email" gorm:"index:idx_user_mailbox,unique;not null"`
	Provider     string        `json:"provider" gorm:"type:varchar(20);default:gmail"`
	AccessToken  string        `json:"-"`
	RefreshToken string        `json:"-"`
	IMAPHost     string        `json:"imap_host,omitempty"`
	IsConnected  bool          `json:"is_connected"`
	Cadence      CadenceConfig `json:"cadence" gorm:"embedded"`
	LastSyncAt   *time.Time    `json:"last_sync_at"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Credentials is the token material handed to the message fetchers.
// For IMAP accounts AccessToken holds the app password and IMAPHost the
// server address.
type Credentials struct {
	Email        string
	AccessToken  string
	RefreshToken string
	IMAPHost     string
}

// Credentials extracts the fetcher-facing view of the account's tokens.
func (a *Account) Credentials() Credentials {
	return Credentials{
		Email:        a.Email,
		AccessToken:  a.AccessToken,
		RefreshToken: a.RefreshToken,
		IMAPHost:     a.IMAPHost,
	}
}
