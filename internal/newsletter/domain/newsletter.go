package domain

import "time"

// Newsletter is one ingested message, the read model the browsing UI
// lists. Body rendering and sanitization happen elsewhere.
type Newsletter struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	AccountID  string    `json:"account_id" gorm:"index:idx_account_message,unique;not null"`
	MessageID  string    `json:"message_id" gorm:"index:idx_account_message,unique;not null"`
	Sender     string    `json:"sender"`
	Subject    string    `json:"subject"`
	Snippet    string    `json:"snippet" gorm:"type:text"`
	ReceivedAt time.Time `json:"received_at" gorm:"index"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Newsletter) TableName() string {
	return "newsletters"
}
