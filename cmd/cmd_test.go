package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/export"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const testConfig = `
http_server:
  port: 9090
  read_header_timeout: 1s
  read_timeout: 2s
database:
  driver: sqlite
  source: %s
  max_open_conns: 1
  max_idle_conns: 1
security:
  jwt_secret: 0123456789abcdef0123456789abcdef
  bcrypt_cost: 4
observability:
  logging:
    level: error
    format: json
`

var _ = Describe("loadConfig", func() {
	It("reads config.yml and fills defaults", func() {
		dir := GinkgoT().TempDir()
		source := filepath.Join(dir, "ts.db")
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"),
			[]byte(strings.Replace(testConfig, "%s", source, 1)), 0o600)).To(Succeed())

		cfg, err := loadConfig(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Server.Port).To(Equal(9090))
		Expect(cfg.Database.Driver).To(Equal(internal.DatabaseDriverSQL))
		Expect(cfg.Storage.Key).To(Equal(internal.DefaultStorageKey))
		Expect(cfg.Security.AccessTokenDuration).To(BeNumerically(">", 0))
	})

	It("fails when the file is missing", func() {
		_, err := loadConfig(GinkgoT().TempDir())
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("offline commands against sqlite", func() {
	var (
		ctx context.Context
		cfg *internal.Config
		d   *database
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = internal.LoadConfigFromEnv()
		cfg.Database.Driver = internal.DatabaseDriverSQL
		cfg.Database.Source = filepath.Join(GinkgoT().TempDir(), "ts.db")
		cfg.Security.JWTSecret = "0123456789abcdef0123456789abcdef"
		cfg.Security.BCryptCost = 4

		var err error
		d, err = openDatabase(cfg.Database)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(d.Close)

		Expect(migrateDatabase(ctx, d, "up", logger.Discard())).To(Succeed())
	})

	It("refuses to create the admin without a password", func() {
		err := seedDatabase(ctx, cfg, d, seedOptions{AdminName: "Jose"}, logger.Discard())
		Expect(err).To(MatchError(ContainSubstring("--admin-password")))
	})

	It("seeds once, persists, and exports", func() {
		opts := seedOptions{AdminName: "Jose", AdminPassword: "secret1", Projects: []string{"Interno", "Comercial"}}
		Expect(seedDatabase(ctx, cfg, d, opts, logger.Discard())).To(Succeed())
		Expect(seedDatabase(ctx, cfg, d, opts, logger.Discard())).To(Succeed())

		app, err := newApplication(ctx, cfg, d, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		projects, err := app.Project.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(projects).To(HaveLen(2))

		login, err := app.Auth.Login(ctx, auth.LoginDTO{Email: auth.AdminEmail, Password: "secret1"})
		Expect(err).NotTo(HaveOccurred())
		Expect(login.User.IsAdmin).To(BeTrue())

		_, err = app.Entry.Create(ctx, adminPrincipal(), entry.CreateEntryDTO{
			ProjectID: projects[0].ID, Hours: 6, Week: "2024-W10",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(app.flush(ctx)).To(Succeed())

		var buf bytes.Buffer
		n, err := exportEntries(ctx, app, &buf, entry.Filter{})
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
		Expect(buf.String()).To(HavePrefix(export.BOM))
		Expect(buf.String()).To(ContainSubstring(`"2024-W10"`))
	})

	It("clears stored data before seeding when asked", func() {
		opts := seedOptions{AdminName: "Jose", AdminPassword: "secret1", Projects: []string{"Interno"}}
		Expect(seedDatabase(ctx, cfg, d, opts, logger.Discard())).To(Succeed())

		opts.Clear = true
		opts.Projects = []string{"Otro"}
		Expect(seedDatabase(ctx, cfg, d, opts, logger.Discard())).To(Succeed())

		app, err := newApplication(ctx, cfg, d, logger.Discard())
		Expect(err).NotTo(HaveOccurred())
		projects, err := app.Project.List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(projects).To(HaveLen(1))
		Expect(projects[0].Name).To(Equal("Otro"))
	})

	It("builds the router with request validation", func() {
		app, err := newApplication(ctx, cfg, d, logger.Discard())
		Expect(err).NotTo(HaveOccurred())

		router, err := setupRoutes(app)
		Expect(err).NotTo(HaveOccurred())
		Expect(router).NotTo(BeNil())
	})
})

var _ = Describe("event publish", func() {
	It("delivers sample events to the logging handler", func() {
		cfg := internal.LoadConfigFromEnv()
		Expect(publishSampleEvent(context.Background(), cfg, events.EventTypeEntryPending, logger.Discard())).To(Succeed())
	})

	It("rejects unknown event types", func() {
		_, err := sampleEvent("nope")
		Expect(err).To(HaveOccurred())
	})
})
