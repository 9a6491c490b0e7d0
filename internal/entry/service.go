package entry

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/common/validation"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/core/week"
	"github.com/frahmantamala/timesheet/internal/project"
	"github.com/frahmantamala/timesheet/internal/report"
	"github.com/frahmantamala/timesheet/internal/store"
)

type Service struct {
	store     *store.Store
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(s *store.Store, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create logs hours for actor. The weekly cap is checked against the approved
// hours already in that week; the check and the insert happen in one mutation.
func (s *Service) Create(ctx context.Context, actor *internal.Principal, dto CreateEntryDTO) (*CreateEntryResponse, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}

	clock := s.now()
	now := clock.UTC()
	wk := strings.TrimSpace(dto.Week)
	if wk == "" {
		wk = week.Current(clock)
	}
	description := strings.TrimSpace(dto.Description)

	if err := validation.ValidateEntryInput(dto.ProjectID, dto.Hours, wk, description); err != nil {
		return nil, err
	}

	var (
		created        timesheet.Entry
		weeklyApproved float64
	)
	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		p, exists := snap.Projects[dto.ProjectID]
		if !exists {
			return project.ErrProjectNotFound
		}

		weeklyApproved = report.WeeklyHours(store.Entries(snap), actor.Email, wk)

		created = timesheet.Entry{
			ID:          uuid.NewString(),
			UserEmail:   actor.Email,
			UserName:    actor.Name,
			ProjectID:   p.ID,
			ProjectName: p.Name,
			Week:        wk,
			Hours:       dto.Hours,
			Description: description,
			Status:      ClassifyStatus(weeklyApproved, dto.Hours),
			CreatedAt:   now,
		}
		snap.Entries[created.ID] = created
		return nil
	})
	if err != nil {
		s.logger.Warn("entry not created", "user", actor.Email, "project_id", dto.ProjectID, "error", err)
		return nil, err
	}
	s.publishChange(ctx, change, "entry.created")

	resp := &CreateEntryResponse{
		Entry:          ToResponse(created),
		WeeklyApproved: weeklyApproved,
	}
	if created.Status == timesheet.StatusPending {
		resp.RequiresApproval = true
		resp.Message = PendingApprovalMessage
		s.publish(ctx, events.NewEntryPendingEvent(created.ID, created.UserEmail, created.UserName,
			created.ProjectName, created.Week, created.Hours, weeklyApproved))
	}

	s.logger.Info("entry created",
		"entry_id", created.ID,
		"user", created.UserEmail,
		"week", created.Week,
		"hours", created.Hours,
		"weekly_approved", weeklyApproved,
		"status", created.Status)
	return resp, nil
}

func (s *Service) Approve(ctx context.Context, actor *internal.Principal, id string) (*EntryResponse, error) {
	return s.setStatus(ctx, actor, id, timesheet.StatusApproved)
}

func (s *Service) Reject(ctx context.Context, actor *internal.Principal, id string) (*EntryResponse, error) {
	return s.setStatus(ctx, actor, id, timesheet.StatusRejected)
}

// setStatus may be applied repeatedly and in any order; the cap is not re-evaluated.
func (s *Service) setStatus(ctx context.Context, actor *internal.Principal, id, status string) (*EntryResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var updated timesheet.Entry
	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		e, exists := snap.Entries[id]
		if !exists {
			return ErrEntryNotFound
		}
		annotate(&e, status, actor.Email, s.now().UTC())
		snap.Entries[id] = e
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishChange(ctx, change, "entry."+status)
	s.publish(ctx, events.NewEntryStatusChangedEvent(id, status, actor.Email))

	s.logger.Info("entry status changed", "entry_id", id, "status", status, "by", actor.Email)
	resp := ToResponse(updated)
	return &resp, nil
}

// Delete checks permission before asking for confirmation. A declined
// confirmation leaves the store untouched.
func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id string, confirmer internal.Confirmer) error {
	var (
		e      timesheet.Entry
		exists bool
	)
	s.store.View(func(snap *timesheet.Snapshot) {
		e, exists = snap.Entries[id]
	})
	if !exists {
		return ErrEntryNotFound
	}
	if err := auth.CanDeleteEntry(actor, e); err != nil {
		return err
	}
	if confirmer == nil || !confirmer.Confirm(ctx, internal.DeletePrompt) {
		return internal.ErrDeletionNotConfirmed
	}

	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		if _, exists := snap.Entries[id]; !exists {
			return ErrEntryNotFound
		}
		delete(snap.Entries, id)
		return nil
	})
	if err != nil {
		return err
	}
	s.publishChange(ctx, change, "entry.deleted")

	s.logger.Info("entry deleted", "entry_id", id, "owner", e.UserEmail, "by", actor.Email)
	return nil
}

func (s *Service) ListMine(ctx context.Context, actor *internal.Principal) ([]timesheet.Entry, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}
	var out []timesheet.Entry
	s.store.View(func(snap *timesheet.Snapshot) {
		out = Own(store.Entries(snap), actor.Email)
	})
	return out, nil
}

func (s *Service) ListFiltered(ctx context.Context, actor *internal.Principal, f Filter) ([]timesheet.Entry, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateStatusFilter(f.Status); err != nil {
		return nil, err
	}
	var out []timesheet.Entry
	s.store.View(func(snap *timesheet.Snapshot) {
		out = Filtered(store.Entries(snap), f)
	})
	return out, nil
}

func (s *Service) ListPending(ctx context.Context, actor *internal.Principal) ([]timesheet.Entry, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	var out []timesheet.Entry
	s.store.View(func(snap *timesheet.Snapshot) {
		out = Pending(store.Entries(snap))
	})
	return out, nil
}

// ExportSet is what a caller may download: the filtered view for admins, their own entries otherwise.
func (s *Service) ExportSet(ctx context.Context, actor *internal.Principal, f Filter) ([]timesheet.Entry, error) {
	if actor != nil && actor.IsAdmin {
		return s.ListFiltered(ctx, actor, f)
	}
	return s.ListMine(ctx, actor)
}

func (s *Service) publishChange(ctx context.Context, change store.Change, reason string) {
	if err := store.Publish(ctx, s.publisher, change, reason); err != nil {
		s.logger.Error("failed to publish store change", "reason", reason, "error", err)
	}
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
