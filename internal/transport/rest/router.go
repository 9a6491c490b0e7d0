package rest

import (
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/project"
	"github.com/frahmantamala/timesheet/internal/report"
	"github.com/frahmantamala/timesheet/internal/transport/middleware"
	"github.com/frahmantamala/timesheet/internal/transport/swagger"
	"github.com/frahmantamala/timesheet/internal/user"
)

// Handlers bundles the HTTP handlers mounted under /api/v1.
type Handlers struct {
	Health  *HealthHandler
	Auth    *auth.Handler
	User    *user.Handler
	Project *project.Handler
	Entry   *entry.Handler
	Report  *report.Handler
}

type Options struct {
	AllowedOrigins string
	// OpenAPISpec is served at /openapi.yml; nil disables the docs routes.
	OpenAPISpec []byte
	// Validator, when set, checks /api/v1 requests against OpenAPISpec.
	Validator *middleware.OpenAPIValidator
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if opts.OpenAPISpec != nil {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPISpec))
		router.Handle("/swagger/*", swagger.Handler())
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Validator != nil {
			r.Use(opts.Validator.Middleware)
		}

		if h.Health != nil {
			r.Get("/health", h.Health.healthCheckHandler)
			r.Get("/ping", h.Health.pingHandler)
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", h.Auth.Register)
			ar.Post("/login", h.Auth.Login)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.User.GetCurrentUser)
				ur.With(rbac.RequireAdmin()).Get("/", h.User.ListUsers)
			})

			pr.Route("/projects", func(pjr chi.Router) {
				pjr.Get("/", h.Project.GetProjects)
				pjr.Get("/{id}", h.Project.GetProject)

				pjr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Post("/", h.Project.CreateProject)
					ar.Delete("/{id}", h.Project.DeleteProject)
				})
			})

			pr.Route("/entries", func(er chi.Router) {
				er.Post("/", h.Entry.CreateEntry)
				er.Get("/mine", h.Entry.GetMyEntries)
				er.Get("/export", h.Entry.ExportEntries)
				er.Delete("/{id}", h.Entry.DeleteEntry)

				er.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Get("/", h.Entry.GetEntries)
					ar.Get("/pending", h.Entry.GetPendingEntries)
					ar.Patch("/{id}/approve", h.Entry.ApproveEntry)
					ar.Patch("/{id}/reject", h.Entry.RejectEntry)
				})
			})

			pr.Route("/reports", func(rr chi.Router) {
				rr.Get("/weekly-hours", h.Report.GetWeeklyHours)

				rr.Group(func(ar chi.Router) {
					ar.Use(rbac.RequireAdmin())
					ar.Get("/stats", h.Report.GetStats)
					ar.Get("/totals", h.Report.GetTotals)
				})
			})
		})
	})
}
