package entry

import (
	"time"

	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

type CreateEntryDTO struct {
	ProjectID   string  `json:"project_id"`
	Hours       float64 `json:"hours"`
	Week        string  `json:"week"`
	Description string  `json:"description"`
}

type EntryResponse struct {
	ID          string     `json:"id"`
	UserEmail   string     `json:"user_email"`
	UserName    string     `json:"user_name"`
	ProjectID   string     `json:"project_id"`
	ProjectName string     `json:"project_name"`
	Week        string     `json:"week"`
	Hours       float64    `json:"hours"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	RejectedBy  *string    `json:"rejected_by,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`
}

type CreateEntryResponse struct {
	Entry            EntryResponse `json:"entry"`
	RequiresApproval bool          `json:"requires_approval"`
	WeeklyApproved   float64       `json:"weekly_approved"`
	Message          string        `json:"message,omitempty"`
}

type EntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
	Total   int             `json:"total"`
}

func ToResponse(e timesheet.Entry) EntryResponse {
	return EntryResponse{
		ID:          e.ID,
		UserEmail:   e.UserEmail,
		UserName:    e.UserName,
		ProjectID:   e.ProjectID,
		ProjectName: e.ProjectName,
		Week:        e.Week,
		Hours:       e.Hours,
		Description: e.Description,
		Status:      e.Status,
		CreatedAt:   e.CreatedAt,
		ApprovedBy:  e.ApprovedBy,
		ApprovedAt:  e.ApprovedAt,
		RejectedBy:  e.RejectedBy,
		RejectedAt:  e.RejectedAt,
	}
}

func ToResponses(entries []timesheet.Entry) EntriesResponse {
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToResponse(e))
	}
	return EntriesResponse{Entries: out, Total: len(out)}
}
