package report

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/common/validation"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/week"
	"github.com/frahmantamala/timesheet/internal/store"
)

type WeeklyHoursResponse struct {
	Email     string  `json:"email"`
	Week      string  `json:"week"`
	Hours     float64 `json:"hours"`
	Cap       float64 `json:"cap"`
	Remaining float64 `json:"remaining"`
}

type StatsResponse struct {
	StartWeek string         `json:"start_week,omitempty"`
	EndWeek   string         `json:"end_week,omitempty"`
	Projects  []ProjectStats `json:"projects"`
}

type Service struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewService(s *store.Store, logger *slog.Logger) *Service {
	return &Service{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// WeeklyHours reports the caller's approved hours for wk, or the current week when wk is empty.
func (s *Service) WeeklyHours(ctx context.Context, actor *internal.Principal, wk string) (*WeeklyHoursResponse, error) {
	if actor == nil {
		return nil, internal.ErrInvalidToken
	}
	if wk == "" {
		wk = week.Current(s.now())
	}
	if err := validation.ValidateWeekRange(wk, ""); err != nil {
		return nil, err
	}

	var hours float64
	s.store.View(func(snap *timesheet.Snapshot) {
		hours = WeeklyHours(store.Entries(snap), actor.Email, wk)
	})

	return &WeeklyHoursResponse{
		Email:     actor.Email,
		Week:      wk,
		Hours:     hours,
		Cap:       timesheet.WeeklyHoursCap,
		Remaining: math.Max(0, timesheet.WeeklyHoursCap-hours),
	}, nil
}

func (s *Service) Stats(ctx context.Context, actor *internal.Principal, startWeek, endWeek string) (*StatsResponse, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validation.ValidateWeekRange(startWeek, endWeek); err != nil {
		return nil, err
	}

	var projects []ProjectStats
	s.store.View(func(snap *timesheet.Snapshot) {
		projects = Stats(store.Entries(snap), snap.Projects, startWeek, endWeek)
	})

	return &StatsResponse{
		StartWeek: startWeek,
		EndWeek:   endWeek,
		Projects:  projects,
	}, nil
}

func (s *Service) Totals(ctx context.Context, actor *internal.Principal) (*Totals, error) {
	if err := auth.RequireAdmin(actor); err != nil {
		return nil, err
	}

	var t Totals
	s.store.View(func(snap *timesheet.Snapshot) {
		t = ComputeTotals(store.Entries(snap), snap.Projects)
	})
	return &t, nil
}
