package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/project"
	"github.com/frahmantamala/timesheet/internal/storage/postgres"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

type seedOptions struct {
	Clear         bool
	AdminName     string
	AdminPassword string
	Projects      []string
}

var seedOpts seedOptions

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the administrator account and sample projects",
	Long:  `Create the administrator account and a few projects so a fresh install is usable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		d, err := openDatabase(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to init db: %w", err)
		}
		defer d.Close()

		return seedDatabase(context.Background(), cfg, d, seedOpts, logger.LoggerWrapper())
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedOpts.Clear, "clear", false, "Clear existing data before seeding")
	seedCmd.Flags().StringVar(&seedOpts.AdminName, "admin-name", "Jose Correa", "administrator display name")
	seedCmd.Flags().StringVar(&seedOpts.AdminPassword, "admin-password", "", "administrator password (required when the account does not exist)")
	seedCmd.Flags().StringSliceVar(&seedOpts.Projects, "project", []string{"Interno", "Comercial"}, "project to create if missing (repeatable)")
}

func seedDatabase(ctx context.Context, cfg *internal.Config, d *database, opts seedOptions, lg *slog.Logger) error {
	if opts.Clear {
		if err := postgres.NewKVRepository(d.Gorm).Delete(ctx, cfg.Storage.Key); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
		lg.Info("cleared existing data", "key", cfg.Storage.Key)
	}

	app, err := newApplication(ctx, cfg, d, lg)
	if err != nil {
		return err
	}

	if _, err := app.Users.GetByEmail(ctx, auth.AdminEmail); err == nil {
		lg.Info("admin user already exists", "email", auth.AdminEmail)
	} else {
		if opts.AdminPassword == "" {
			return errors.New("--admin-password is required to create the admin account")
		}
		if _, err := app.Auth.Register(ctx, auth.RegisterDTO{
			Email:    auth.AdminEmail,
			Password: opts.AdminPassword,
			Name:     opts.AdminName,
		}); err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		lg.Info("seeded admin user", "email", auth.AdminEmail)
	}

	existing, err := app.Project.List(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[strings.ToLower(p.Name)] = true
	}

	admin := adminPrincipal()
	for _, name := range opts.Projects {
		name = strings.TrimSpace(name)
		if name == "" || have[strings.ToLower(name)] {
			continue
		}
		if _, err := app.Project.Create(ctx, admin, project.CreateProjectDTO{Name: name}); err != nil {
			return fmt.Errorf("failed to create project %q: %w", name, err)
		}
		have[strings.ToLower(name)] = true
		lg.Info("seeded project", "name", name)
	}

	return app.flush(ctx)
}
