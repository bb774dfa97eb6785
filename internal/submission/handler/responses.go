package handler

import (
	"kycreview/internal/submission/models"
)

type submissionResponse struct {
	ID                  string          `json:"id"`
	IdentityKey         string          `json:"identity_key"`
	Status              string          `json:"status"`
	Form                models.FormData `json:"form"`
	IsLock              bool            `json:"is_lock"`
	LockedBy            string          `json:"locked_by,omitempty"`
	LockedAt            string          `json:"locked_at,omitempty"`
	CurrentlyReviewedBy string          `json:"currently_reviewed_by,omitempty"`
	ReviewStartedAt     string          `json:"review_started_at,omitempty"`
	Version             int64           `json:"version"`
	RejectionComment    string          `json:"rejection_comment,omitempty"`
	SubmittedBy         string          `json:"submitted_by"`
	CreatedAt           string          `json:"created_at"`
	UpdatedAt           string          `json:"updated_at"`
}

func toSubmissionResponse(sub *models.Submission) submissionResponse {
	return submissionResponse{
		ID:                  sub.ID.String(),
		IdentityKey:         string(sub.IdentityKey),
		Status:              string(sub.Status),
		Form:                sub.Form,
		IsLock:              sub.IsLock,
		LockedBy:            sub.LockedBy,
		LockedAt:            formatTime(sub.LockedAt),
		CurrentlyReviewedBy: sub.ReviewedBy,
		ReviewStartedAt:     formatTime(sub.ReviewStartedAt),
		Version:             sub.Version,
		RejectionComment:    sub.RejectionComment,
		SubmittedBy:         string(sub.SubmittedBy),
		CreatedAt:           formatTime(sub.CreatedAt),
		UpdatedAt:           formatTime(sub.UpdatedAt),
	}
}

type listResponse struct {
	Submissions []submissionResponse `json:"submissions"`
}

type statsResponse struct {
	Total      int                  `json:"total"`
	Pending    int                  `json:"pending"`
	Verified   int                  `json:"verified"`
	Rejected   int                  `json:"rejected"`
	Incomplete int                  `json:"incomplete"`
	Recent     []submissionResponse `json:"recent"`
}

type lockTokenResponse struct {
	SubmissionID string `json:"submission_id"`
	Holder       string `json:"holder"`
	Since        string `json:"since"`
	ExpiresAt    string `json:"expires_at"`
	Version      int64  `json:"version"`
	Outcome      string `json:"outcome"`
}

type prefillResponse struct {
	Form             models.FormData `json:"form"`
	Status           string          `json:"status"`
	Source           string          `json:"source"`
	CanEdit          bool            `json:"can_edit"`
	Version          int64           `json:"version,omitempty"`
	RejectionComment string          `json:"rejection_comment,omitempty"`
}

type historyEntry struct {
	Action    string `json:"action"`
	Field     string `json:"field,omitempty"`
	OldValue  string `json:"old_value,omitempty"`
	NewValue  string `json:"new_value,omitempty"`
	Comment   string `json:"comment,omitempty"`
	ActorType string `json:"actor_type"`
	ActorID   string `json:"actor_id"`
	Timestamp string `json:"timestamp"`
}

type historyResponse struct {
	Entries []historyEntry `json:"entries"`
}
