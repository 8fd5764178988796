package domain

import "time"

// SyncStatus is the lifecycle state of one sync attempt.
type SyncStatus string

const (
	// StatusScheduled is only written for audit when a cadence is newly
	// enabled; the executor never starts from it.
	StatusScheduled  SyncStatus = "scheduled"
	StatusProcessing SyncStatus = "processing"
	StatusSuccess    SyncStatus = "success"
	StatusFailed     SyncStatus = "failed"
	StatusPartial    SyncStatus = "partial"
)

// Terminal reports whether s is a final state. A processing entry
// transitions exactly once into a terminal state and is never re-opened.
func (s SyncStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusPartial:
		return true
	}
	return false
}

// SyncType tags what triggered the attempt.
type SyncType string

const (
	SyncTypeManual    SyncType = "manual"
	SyncTypeScheduled SyncType = "scheduled"
)

// SyncLog is one row per sync attempt. The most recent processing row is
// the de-facto "currently syncing" flag; there is no separate lock table.
type SyncLog struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	AccountID    string     `json:"account_id" gorm:"index;not null"`
	Status       SyncStatus `json:"status" gorm:"type:varchar(20);index"`
	SyncType     SyncType   `json:"sync_type" gorm:"type:varchar(20)"`
	MessageCount int        `json:"message_count"`
	ErrorMessage string     `json:"error_message,omitempty" gorm:"type:text"`
	Details      string     `json:"details,omitempty" gorm:"type:text"`
	StartedAt    time.Time  `json:"started_at" gorm:"index"`
	FinishedAt   *time.Time `json:"finished_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (SyncLog) TableName() string {
	return "sync_logs"
}

// SyncLogPatch is the mutable subset applied when an attempt closes.
type SyncLogPatch struct {
	Status       SyncStatus
	MessageCount int
	ErrorMessage string
	Details      string
	FinishedAt   *time.Time
}
