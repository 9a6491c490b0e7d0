package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet/api"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/project"
	"github.com/frahmantamala/timesheet/internal/report"
	"github.com/frahmantamala/timesheet/internal/transport"
	"github.com/frahmantamala/timesheet/internal/transport/middleware"
	"github.com/frahmantamala/timesheet/internal/transport/rest"
	"github.com/frahmantamala/timesheet/internal/user"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

var migrateOnStart bool

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before starting")
}

func startHTTPServer() {
	ctx := context.Background()

	app, router, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := app.Logger

	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "driver", app.DB.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: app.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       app.Config.Server.ReadTimeout,
		WriteTimeout:      app.Config.Server.WriteTimeout,
		IdleTimeout:       app.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed", "error", err)
		}
	}

	if err := app.flush(context.Background()); err != nil {
		lg.Error("Final save incomplete", "error", err, "failures", app.Persister.Failures())
	}
	if err := app.DB.Close(); err != nil {
		lg.Error("Database close error", "error", err)
	}

	lg.Info("Server stopped")
}

func initializeDependencies(ctx context.Context) (*application, *chi.Mux, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	d, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if migrateOnStart {
		if err := migrateDatabase(ctx, d, "up", lg); err != nil {
			_ = d.Close()
			return nil, nil, err
		}
	}

	app, err := newApplication(ctx, cfg, d, lg)
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}

	router, err := setupRoutes(app)
	if err != nil {
		_ = d.Close()
		return nil, nil, err
	}
	return app, router, nil
}

func setupRoutes(app *application) (*chi.Mux, error) {
	base := transport.NewBaseHandler(app.Logger)

	opts := rest.Options{
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		OpenAPISpec:    api.OpenAPISpec,
	}
	if app.Config.Server.ValidateRequests {
		validator, err := middleware.NewOpenAPIValidator(api.OpenAPISpec, app.Logger)
		if err != nil {
			return nil, err
		}
		opts.Validator = validator
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Handlers{
		Health:  rest.NewHealthHandler(app.DB.SQL, app.DB.Driver, app.Persister, app.Store),
		Auth:    auth.NewHandler(app.Auth),
		User:    user.NewHandler(app.Users),
		Project: project.NewHandler(base, app.Project),
		Entry:   entry.NewHandler(base, app.Entry),
		Report:  report.NewHandler(base, app.Report),
	}, opts, app.Logger)

	return router, nil
}
