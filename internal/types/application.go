package types

import "github.com/google/uuid"

// ApplicationStatus tracks the lifecycle of an application draft.
type ApplicationStatus string

// Draft status values. Only the dispatcher moves a draft out of pending.
const (
	StatusPending ApplicationStatus = "pending"
	StatusSent    ApplicationStatus = "sent"
	StatusFailed  ApplicationStatus = "failed"
)

// ApplicationDraft is a composed, not-yet-sent (or sent) job application.
// CoverLetter, Subject and Recipient are write-once: the composer fills
// them and only Status changes afterwards.
type ApplicationDraft struct {
	ID           uuid.UUID         `json:"id"`
	Job          JobPosting        `json:"job"`
	CoverLetter  string            `json:"cover_letter"`
	Subject      string            `json:"subject"`
	Recipient    string            `json:"recipient,omitempty"` // empty means unresolved
	Language     string            `json:"language,omitempty"`  // en, pt or es
	UsedFallback bool              `json:"used_fallback"`
	Status       ApplicationStatus `json:"status"`
}

// NewApplicationDraft creates a pending draft for a job.
func NewApplicationDraft(job JobPosting) *ApplicationDraft {
	return &ApplicationDraft{
		ID:     uuid.New(),
		Job:    job,
		Status: StatusPending,
	}
}
