package project

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/common/validation"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/store"
)

var ErrProjectNotFound = internal.NewNotFoundError("Proyecto no encontrado", internal.ErrCodeProjectNotFound)

type Service struct {
	store     *store.Store
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(s *store.Store, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		store:     s,
		publisher: publisher,
		logger:    logger,
	}
}

// List returns all live projects ordered by name.
func (s *Service) List(ctx context.Context) ([]ProjectResponse, error) {
	var projects []ProjectResponse
	s.store.View(func(snap *timesheet.Snapshot) {
		projects = make([]ProjectResponse, 0, len(snap.Projects))
		for _, p := range snap.Projects {
			projects = append(projects, ToResponse(p))
		}
	})

	sort.Slice(projects, func(i, j int) bool {
		if projects[i].Name != projects[j].Name {
			return projects[i].Name < projects[j].Name
		}
		return projects[i].ID < projects[j].ID
	})
	return projects, nil
}

func (s *Service) Get(ctx context.Context, id string) (*ProjectResponse, error) {
	var (
		p      timesheet.Project
		exists bool
	)
	s.store.View(func(snap *timesheet.Snapshot) {
		p, exists = snap.Projects[id]
	})
	if !exists {
		return nil, ErrProjectNotFound
	}
	resp := ToResponse(p)
	return &resp, nil
}

func (s *Service) Create(ctx context.Context, actor *internal.Principal, dto CreateProjectDTO) (*ProjectResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(dto.Name)
	if err := validation.ValidateProjectName(name); err != nil {
		return nil, err
	}

	p := timesheet.Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: actor.Email,
		CreatedAt: time.Now().UTC(),
	}

	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		snap.Projects[p.ID] = p
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create project", "error", err)
		return nil, internal.NewInternalError("failed to create project", err)
	}
	if err := store.Publish(ctx, s.publisher, change, "project.created"); err != nil {
		s.logger.Error("failed to publish store change", "error", err)
	}

	s.logger.Info("project created", "project_id", p.ID, "name", p.Name, "created_by", p.CreatedBy)
	resp := ToResponse(p)
	return &resp, nil
}

// Delete removes the project only. Entries keep their copy of the project name.
func (s *Service) Delete(ctx context.Context, actor *internal.Principal, id string, confirmer internal.Confirmer) error {
	if err := auth.CanDeleteProject(actor); err != nil {
		return err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if confirmer == nil || !confirmer.Confirm(ctx, internal.DeletePrompt) {
		return internal.ErrDeletionNotConfirmed
	}

	var removed timesheet.Project
	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		p, exists := snap.Projects[id]
		if !exists {
			return ErrProjectNotFound
		}
		removed = p
		delete(snap.Projects, id)
		return nil
	})
	if err != nil {
		return err
	}
	if err := store.Publish(ctx, s.publisher, change, "project.deleted"); err != nil {
		s.logger.Error("failed to publish store change", "error", err)
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewProjectDeletedEvent(removed.ID, removed.Name, actor.Email)); err != nil {
			s.logger.Error("failed to publish project deleted event", "error", err)
		}
	}

	s.logger.Info("project deleted", "project_id", id, "name", removed.Name, "deleted_by", actor.Email)
	return nil
}
