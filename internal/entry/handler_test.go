package entry_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/store"
	"github.com/frahmantamala/timesheet/internal/transport"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

var _ = Describe("Entry Handler", func() {
	var (
		svc    *entry.Service
		router chi.Router
	)

	as := func(p *internal.Principal) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithPrincipal(r.Context(), p)))
			})
		}
	}

	mount := func(p *internal.Principal) {
		h := entry.NewHandler(transport.NewBaseHandler(logger.Discard()), svc)
		router = chi.NewRouter()
		router.Use(as(p))
		router.Post("/entries", h.CreateEntry)
		router.Get("/entries/mine", h.GetMyEntries)
		router.Get("/entries/pending", h.GetPendingEntries)
		router.Get("/entries/export", h.ExportEntries)
		router.Patch("/entries/{id}/approve", h.ApproveEntry)
		router.Delete("/entries/{id}", h.DeleteEntry)
	}

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		snap := timesheet.NewSnapshot()
		snap.Projects["p1"] = timesheet.Project{Name: "Alpha"}
		s := store.New()
		s.Load(snap)
		svc = entry.NewService(s, nil, logger.Discard())
	})

	It("creates an entry and flags when approval is needed", func() {
		mount(ana)
		rec := do(http.MethodPost, "/entries", `{"project_id":"p1","hours":71,"week":"2024-W10"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var resp entry.CreateEntryResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.RequiresApproval).To(BeTrue())
		Expect(resp.Entry.Status).To(Equal(timesheet.StatusPending))
	})

	It("returns 400 for non-positive hours", func() {
		mount(ana)
		rec := do(http.MethodPost, "/entries", `{"project_id":"p1","hours":0,"week":"2024-W10"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 404 for an unknown project", func() {
		mount(ana)
		rec := do(http.MethodPost, "/entries", `{"project_id":"nope","hours":1,"week":"2024-W10"}`)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
	})

	It("hides the pending queue from regular users", func() {
		mount(ana)
		Expect(do(http.MethodGet, "/entries/pending", "").Code).To(Equal(http.StatusForbidden))
	})

	It("lets an admin approve", func() {
		created, err := svc.Create(context.Background(), ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 80, Week: "2024-W10"})
		Expect(err).NotTo(HaveOccurred())

		mount(admin)
		rec := do(http.MethodPatch, "/entries/"+created.Entry.ID+"/approve", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"approved"`))
	})

	It("requires confirmation to delete", func() {
		created, err := svc.Create(context.Background(), ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 1, Week: "2024-W10"})
		Expect(err).NotTo(HaveOccurred())

		mount(ana)
		Expect(do(http.MethodDelete, "/entries/"+created.Entry.ID, "").Code).To(Equal(http.StatusPreconditionRequired))
		Expect(do(http.MethodDelete, "/entries/"+created.Entry.ID+"?confirm=true", "").Code).To(Equal(http.StatusNoContent))
	})

	It("downloads the caller's entries as CSV", func() {
		_, err := svc.Create(context.Background(), ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 8, Week: "2024-W10", Description: "x"})
		Expect(err).NotTo(HaveOccurred())

		mount(ana)
		rec := do(http.MethodGet, "/entries/export", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Content-Type")).To(HavePrefix("text/csv"))
		Expect(rec.Header().Get("Content-Disposition")).To(MatchRegexp(`filename="timesheet-\d{4}-\d{2}-\d{2}\.csv"`))
		Expect(rec.Body.String()).To(HaveSuffix(`"2024-W10","Ana","a@lxgcapital.com","Alpha","8","x","Aprobado"`))
	})
})
