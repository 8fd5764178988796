package dto

import "time"

// RunRequest triggers one scheduler pass. AccountID narrows the pass to a
// single account; ForceRun bypasses the schedule gate; Manual tags the
// attempt as user-triggered.
type RunRequest struct {
	AccountID string `json:"account_id"`
	ForceRun  bool   `json:"force_run"`
	Manual    bool   `json:"manual"`
}

// AccountResult is one account's slice of a PassReport.
type AccountResult struct {
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
	Success      bool   `json:"success"`
	Status       string `json:"status"`
	MessageCount int    `json:"message_count"`
	Skipped      bool   `json:"skipped,omitempty"`
	InProgress   bool   `json:"in_progress,omitempty"`
	Error        string `json:"error,omitempty"`
}

type PassReport struct {
	RanAt    time.Time       `json:"ran_at"`
	Eligible int             `json:"eligible"`
	Results  []AccountResult `json:"results"`
}
