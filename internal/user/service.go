package user

import (
	"context"
	"log/slog"
	"sort"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/store"
)

var ErrUserNotFound = internal.NewNotFoundError("Usuario no encontrado", internal.ErrCodeUserNotFound)

type Service struct {
	store  *store.Store
	logger *slog.Logger
}

func NewService(s *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  s,
		logger: logger,
	}
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*timesheet.PublicUser, error) {
	var (
		u      timesheet.User
		exists bool
	)
	s.store.View(func(snap *timesheet.Snapshot) {
		u, exists = snap.Users[email]
	})
	if !exists {
		return nil, ErrUserNotFound
	}
	public := u.Public()
	return &public, nil
}

// List returns every registered user ordered by email. Admin only.
func (s *Service) List(ctx context.Context, actor *internal.Principal) ([]timesheet.PublicUser, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var users []timesheet.PublicUser
	s.store.View(func(snap *timesheet.Snapshot) {
		users = make([]timesheet.PublicUser, 0, len(snap.Users))
		for _, u := range snap.Users {
			users = append(users, u.Public())
		}
	})

	sort.Slice(users, func(i, j int) bool {
		return users[i].Email < users[j].Email
	})
	return users, nil
}
