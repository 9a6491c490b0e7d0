package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeStoreChanged       = "store.changed"
	EventTypeEntryPending       = "entry.pending"
	EventTypeEntryStatusChanged = "entry.status_changed"
	EventTypeProjectDeleted     = "project.deleted"
)

// StoreChangedEvent carries the serialized aggregate produced by a mutation.
type StoreChangedEvent struct {
	BaseEvent
	Version  uint64 `json:"version"`
	Snapshot []byte `json:"-"`
}

func NewStoreChangedEvent(version uint64, snapshot []byte, reason string) *StoreChangedEvent {
	return &StoreChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeStoreChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"version": version,
				"reason":  reason,
				"size":    len(snapshot),
			},
		},
		Version:  version,
		Snapshot: snapshot,
	}
}

// EntryPendingEvent is raised when a new entry exceeds the weekly cap.
type EntryPendingEvent struct {
	BaseEvent
	EntryID        string  `json:"entry_id"`
	UserEmail      string  `json:"user_email"`
	UserName       string  `json:"user_name"`
	ProjectName    string  `json:"project_name"`
	Week           string  `json:"week"`
	Hours          float64 `json:"hours"`
	WeeklyApproved float64 `json:"weekly_approved"`
}

func NewEntryPendingEvent(entryID, userEmail, userName, projectName, week string, hours, weeklyApproved float64) *EntryPendingEvent {
	return &EntryPendingEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEntryPending,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id":        entryID,
				"user_email":      userEmail,
				"week":            week,
				"hours":           hours,
				"weekly_approved": weeklyApproved,
			},
		},
		EntryID:        entryID,
		UserEmail:      userEmail,
		UserName:       userName,
		ProjectName:    projectName,
		Week:           week,
		Hours:          hours,
		WeeklyApproved: weeklyApproved,
	}
}

type EntryStatusChangedEvent struct {
	BaseEvent
	EntryID string `json:"entry_id"`
	Status  string `json:"status"`
	ActedBy string `json:"acted_by"`
}

func NewEntryStatusChangedEvent(entryID, status, actedBy string) *EntryStatusChangedEvent {
	return &EntryStatusChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeEntryStatusChanged,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"entry_id": entryID,
				"status":   status,
				"acted_by": actedBy,
			},
		},
		EntryID: entryID,
		Status:  status,
		ActedBy: actedBy,
	}
}

type ProjectDeletedEvent struct {
	BaseEvent
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	DeletedBy string `json:"deleted_by"`
}

func NewProjectDeletedEvent(projectID, name, deletedBy string) *ProjectDeletedEvent {
	return &ProjectDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeProjectDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"project_id": projectID,
				"name":       name,
				"deleted_by": deletedBy,
			},
		},
		ProjectID: projectID,
		Name:      name,
		DeletedBy: deletedBy,
	}
}
