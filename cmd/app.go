package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/notification"
	"github.com/frahmantamala/timesheet/internal/persistence"
	"github.com/frahmantamala/timesheet/internal/project"
	"github.com/frahmantamala/timesheet/internal/report"
	"github.com/frahmantamala/timesheet/internal/storage/postgres"
	"github.com/frahmantamala/timesheet/internal/store"
	"github.com/frahmantamala/timesheet/internal/user"
)

// application is the wired service graph shared by the server and the
// offline commands.
type application struct {
	Config    *internal.Config
	DB        *database
	Repo      *postgres.KVRepository
	Store     *store.Store
	Bus       *events.EventBus
	Persister *persistence.Persister
	Logger    *slog.Logger

	Auth    *auth.Service
	Users   *user.Service
	Project *project.Service
	Entry   *entry.Service
	Report  *report.Service
}

// newApplication loads the persisted aggregate and subscribes the persister
// (and the notifier, when enabled) before any service can mutate the store.
func newApplication(ctx context.Context, cfg *internal.Config, d *database, lg *slog.Logger) (*application, error) {
	repo := postgres.NewKVRepository(d.Gorm)
	s := store.New()
	persister := persistence.NewPersister(repo, cfg.Storage.Key, cfg.Storage.SaveTimeout, lg)

	if err := persister.Load(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to load timesheet data: %w", err)
	}

	bus := events.NewEventBus(lg)
	persister.RegisterEventHandlers(bus)

	if cfg.Notification.Enabled {
		sender := notification.NewSMTPSender(cfg.Notification)
		notification.NewNotifier(sender, cfg.Notification.From, lg).RegisterEventHandlers(bus)
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)

	return &application{
		Config:    cfg,
		DB:        d,
		Repo:      repo,
		Store:     s,
		Bus:       bus,
		Persister: persister,
		Logger:    lg,
		Auth:      auth.NewService(s, tokens, bus, cfg.Security.BCryptCost, lg),
		Users:     user.NewService(s, lg),
		Project:   project.NewService(s, bus, lg),
		Entry:     entry.NewService(s, bus, lg),
		Report:    report.NewService(s, lg),
	}, nil
}

// flush waits for in-flight event handlers so the last snapshot reaches storage.
func (a *application) flush(ctx context.Context) error {
	ctx, cancel := internal.WithTimeout(ctx, a.Config.Storage.SaveTimeout*2)
	defer cancel()

	if err := a.Bus.Drain(ctx); err != nil {
		return fmt.Errorf("pending saves did not finish: %w", err)
	}
	if saved, current := a.Persister.LastSavedVersion(), a.Store.Version(); saved < current {
		return fmt.Errorf("storage is behind memory: saved version %d of %d", saved, current)
	}
	return nil
}

// adminPrincipal acts as the administrator for offline commands.
func adminPrincipal() *internal.Principal {
	return &internal.Principal{Email: auth.AdminEmail, Name: "CLI", IsAdmin: true}
}
