package entry_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/core/week"
	"github.com/frahmantamala/timesheet/internal/entry"
	"github.com/frahmantamala/timesheet/internal/export"
	"github.com/frahmantamala/timesheet/internal/project"
	"github.com/frahmantamala/timesheet/internal/report"
	"github.com/frahmantamala/timesheet/internal/store"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

func TestEntry(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Entry Suite")
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) ofType(t string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}

var (
	admin = &internal.Principal{Email: auth.AdminEmail, Name: "Jose", IsAdmin: true}
	ana   = &internal.Principal{Email: "a@lxgcapital.com", Name: "Ana"}
	bob   = &internal.Principal{Email: "bob@lxgcapital.com", Name: "Bob"}

	declined = internal.ConfirmFunc(func(context.Context, string) bool { return false })
)

var _ = Describe("Entry Service", func() {
	var (
		s         *store.Store
		publisher *recordingPublisher
		svc       *entry.Service
		ctx       context.Context
		clock     time.Time
	)

	weekly := func(email, wk string) float64 {
		return report.WeeklyHours(store.Entries(s.Snapshot()), email, wk)
	}

	create := func(actor *internal.Principal, projectID string, hours float64, wk string) *entry.CreateEntryResponse {
		resp, err := svc.Create(ctx, actor, entry.CreateEntryDTO{ProjectID: projectID, Hours: hours, Week: wk})
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	BeforeEach(func() {
		snap := timesheet.NewSnapshot()
		snap.Projects["p1"] = timesheet.Project{Name: "Alpha", CreatedBy: auth.AdminEmail}
		snap.Projects["p2"] = timesheet.Project{Name: "Beta", CreatedBy: auth.AdminEmail}
		s = store.New()
		s.Load(snap)

		publisher = &recordingPublisher{}
		clock = time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
		var clockMu sync.Mutex
		svc = entry.NewService(s, publisher, logger.Discard()).WithClock(func() time.Time {
			clockMu.Lock()
			defer clockMu.Unlock()
			clock = clock.Add(time.Second)
			return clock
		})
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("approves entries that stay within the weekly cap", func() {
			resp := create(ana, "p1", 8, "2024-W10")
			Expect(resp.Entry.Status).To(Equal(timesheet.StatusApproved))
			Expect(resp.RequiresApproval).To(BeFalse())
			Expect(resp.Entry.UserName).To(Equal("Ana"))
			Expect(resp.Entry.ProjectName).To(Equal("Alpha"))
			Expect(publisher.ofType(events.EventTypeStoreChanged)).To(HaveLen(1))
		})

		It("treats exactly 70 hours as within the cap", func() {
			create(ana, "p1", 60, "2024-W10")
			resp := create(ana, "p1", 10, "2024-W10")
			Expect(resp.Entry.Status).To(Equal(timesheet.StatusApproved))
		})

		It("marks an entry pending when it would push the week past 70 approved hours", func() {
			create(ana, "p1", 65, "2024-W10")

			resp := create(ana, "p2", 10, "2024-W10")
			Expect(resp.Entry.Status).To(Equal(timesheet.StatusPending))
			Expect(resp.RequiresApproval).To(BeTrue())
			Expect(resp.Message).To(Equal("Excede 70h, requiere aprobación"))
			Expect(resp.WeeklyApproved).To(Equal(65.0))
			Expect(weekly(ana.Email, "2024-W10")).To(Equal(65.0))

			pending := publisher.ofType(events.EventTypeEntryPending)
			Expect(pending).To(HaveLen(1))
			Expect(pending[0].(*events.EntryPendingEvent).EntryID).To(Equal(resp.Entry.ID))
		})

		It("ignores pending and rejected hours when checking the cap", func() {
			create(ana, "p1", 65, "2024-W10")
			create(ana, "p1", 10, "2024-W10")

			resp := create(ana, "p1", 5, "2024-W10")
			Expect(resp.Entry.Status).To(Equal(timesheet.StatusApproved))
		})

		It("counts only the same user and week", func() {
			create(bob, "p1", 70, "2024-W10")
			create(ana, "p1", 70, "2024-W11")

			resp := create(ana, "p1", 70, "2024-W10")
			Expect(resp.Entry.Status).To(Equal(timesheet.StatusApproved))
		})

		It("trims the description and defaults the week", func() {
			resp, err := svc.Create(ctx, ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 1, Description: "  standup  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entry.Description).To(Equal("standup"))
			Expect(resp.Entry.Week).To(Equal("2024-W10"))
		})

		It("takes the default week from the same instant as createdAt", func() {
			// the next reading is 2024-03-11T00:00:00Z, the last instant of W10
			clock = time.Date(2024, 3, 10, 23, 59, 59, 0, time.UTC)

			resp, err := svc.Create(ctx, ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Entry.CreatedAt).To(Equal(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)))
			Expect(resp.Entry.Week).To(Equal("2024-W10"))
			Expect(resp.Entry.Week).To(Equal(week.Current(resp.Entry.CreatedAt)))
		})

		It("requires a project", func() {
			_, err := svc.Create(ctx, ana, entry.CreateEntryDTO{Hours: 1, Week: "2024-W10"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects an unknown project without changing the store", func() {
			_, err := svc.Create(ctx, ana, entry.CreateEntryDTO{ProjectID: "nope", Hours: 1, Week: "2024-W10"})
			Expect(err).To(MatchError(project.ErrProjectNotFound))
			Expect(s.Version()).To(BeZero())
		})

		It("rejects non-positive hours", func() {
			_, err := svc.Create(ctx, ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 0, Week: "2024-W10"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
			Expect(s.Snapshot().Entries).To(BeEmpty())
		})

		It("applies the cap atomically under concurrent creates", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := svc.Create(ctx, ana, entry.CreateEntryDTO{ProjectID: "p1", Hours: 10, Week: "2024-W10"})
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			Expect(weekly(ana.Email, "2024-W10")).To(Equal(70.0))
			Expect(s.Version()).To(Equal(uint64(20)))
		})
	})

	Describe("Approve and Reject", func() {
		var pendingID string

		BeforeEach(func() {
			create(ana, "p1", 65, "2024-W10")
			pendingID = create(ana, "p1", 10, "2024-W10").Entry.ID
		})

		It("counts an approved entry toward the week", func() {
			e, err := svc.Approve(ctx, admin, pendingID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(timesheet.StatusApproved))
			Expect(*e.ApprovedBy).To(Equal(admin.Email))
			Expect(e.ApprovedAt).NotTo(BeNil())
			Expect(weekly(ana.Email, "2024-W10")).To(Equal(75.0))
		})

		It("keeps only the latest decision", func() {
			_, err := svc.Approve(ctx, admin, pendingID)
			Expect(err).NotTo(HaveOccurred())

			e, err := svc.Reject(ctx, admin, pendingID)
			Expect(err).NotTo(HaveOccurred())
			Expect(e.Status).To(Equal(timesheet.StatusRejected))
			Expect(*e.RejectedBy).To(Equal(admin.Email))
			Expect(e.ApprovedBy).To(BeNil())
			Expect(e.ApprovedAt).To(BeNil())

			stored := s.Snapshot().Entries[pendingID]
			Expect(stored.ApprovedBy).To(BeNil())
			Expect(stored.RejectedAt).NotTo(BeNil())
		})

		It("is reserved for admins", func() {
			_, err := svc.Approve(ctx, ana, pendingID)
			Expect(err).To(MatchError(internal.ErrAdminRequired))
			Expect(s.Snapshot().Entries[pendingID].Status).To(Equal(timesheet.StatusPending))
		})

		It("reports unknown entries", func() {
			_, err := svc.Reject(ctx, admin, "missing")
			Expect(err).To(MatchError(entry.ErrEntryNotFound))
		})

		It("announces the change", func() {
			_, err := svc.Reject(ctx, admin, pendingID)
			Expect(err).NotTo(HaveOccurred())
			changed := publisher.ofType(events.EventTypeEntryStatusChanged)
			Expect(changed).To(HaveLen(1))
			Expect(changed[0].(*events.EntryStatusChangedEvent).Status).To(Equal(timesheet.StatusRejected))
		})
	})

	Describe("Delete", func() {
		var id string

		BeforeEach(func() {
			id = create(ana, "p1", 4, "2024-W10").Entry.ID
		})

		It("refuses another non-admin user and leaves the store unchanged", func() {
			version := s.Version()
			err := svc.Delete(ctx, bob, id, internal.Confirmed)
			Expect(err).To(MatchError(auth.ErrNotOwner))
			Expect(s.Version()).To(Equal(version))
			Expect(s.Snapshot().Entries).To(HaveKey(id))
		})

		It("does nothing when the caller declines", func() {
			version := s.Version()
			Expect(svc.Delete(ctx, ana, id, declined)).To(MatchError(internal.ErrDeletionNotConfirmed))
			Expect(s.Version()).To(Equal(version))
		})

		It("lets the owner delete", func() {
			Expect(svc.Delete(ctx, ana, id, internal.Confirmed)).To(Succeed())
			Expect(s.Snapshot().Entries).NotTo(HaveKey(id))
		})

		It("lets an admin delete anyone's entry", func() {
			Expect(svc.Delete(ctx, admin, id, internal.Confirmed)).To(Succeed())
		})

		It("reports unknown entries", func() {
			Expect(svc.Delete(ctx, ana, "missing", internal.Confirmed)).To(MatchError(entry.ErrEntryNotFound))
		})
	})

	Describe("Views", func() {
		BeforeEach(func() {
			create(ana, "p1", 65, "2024-W10")
			create(ana, "p2", 10, "2024-W10")
			create(bob, "p2", 3, "2024-W10")
		})

		It("lists the caller's own entries newest first", func() {
			mine, err := svc.ListMine(ctx, ana)
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(2))
			Expect(mine[0].ProjectID).To(Equal("p2"))
			Expect(mine[1].ProjectID).To(Equal("p1"))
		})

		It("filters the admin view", func() {
			all, err := svc.ListFiltered(ctx, admin, entry.Filter{Status: "all"})
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))

			beta, err := svc.ListFiltered(ctx, admin, entry.Filter{ProjectID: "p2", UserEmail: ana.Email})
			Expect(err).NotTo(HaveOccurred())
			Expect(beta).To(HaveLen(1))
			Expect(beta[0].Status).To(Equal(timesheet.StatusPending))
		})

		It("rejects an unknown status filter", func() {
			_, err := svc.ListFiltered(ctx, admin, entry.Filter{Status: "done"})
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("builds the pending queue for admins only", func() {
			pending, err := svc.ListPending(ctx, admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(pending).To(HaveLen(1))

			_, err = svc.ListPending(ctx, ana)
			Expect(err).To(MatchError(internal.ErrAdminRequired))
		})

		It("exports own entries for users and the filtered view for admins", func() {
			mine, err := svc.ExportSet(ctx, bob, entry.Filter{UserEmail: ana.Email})
			Expect(err).NotTo(HaveOccurred())
			Expect(mine).To(HaveLen(1))
			Expect(mine[0].UserEmail).To(Equal(bob.Email))

			theirs, err := svc.ExportSet(ctx, admin, entry.Filter{UserEmail: ana.Email})
			Expect(err).NotTo(HaveOccurred())
			Expect(theirs).To(HaveLen(2))
		})
	})

	Describe("Deleted projects", func() {
		It("keep their name on existing entries in listings and exports", func() {
			for i := 0; i < 3; i++ {
				create(ana, "p1", 1, fmt.Sprintf("2024-W%02d", 10+i))
			}

			projects := project.NewService(s, publisher, logger.Discard())
			Expect(projects.Delete(ctx, admin, "p1", internal.Confirmed)).To(Succeed())

			listed, err := svc.ListMine(ctx, ana)
			Expect(err).NotTo(HaveOccurred())
			Expect(listed).To(HaveLen(3))
			for _, e := range listed {
				Expect(e.ProjectName).To(Equal("Alpha"))
			}

			csv := string(export.Format(listed))
			Expect(csv).To(ContainSubstring(`"Alpha"`))
			Expect(csv).NotTo(ContainSubstring(`"N/A"`))
		})
	})
})

var _ = Describe("Query layer", func() {
	at := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	It("breaks creation-time ties by id, descending", func() {
		entries := []timesheet.Entry{
			{ID: "a", CreatedAt: at},
			{ID: "c", CreatedAt: at},
			{ID: "b", CreatedAt: at.Add(-time.Hour)},
			{ID: "d", CreatedAt: at},
		}

		entry.SortNewestFirst(entries)

		ids := make([]string, len(entries))
		for i, e := range entries {
			ids[i] = e.ID
		}
		Expect(ids).To(Equal([]string{"d", "c", "a", "b"}))
	})

	It("treats empty and all filter values as wildcards", func() {
		e := timesheet.Entry{ProjectID: "p1", UserEmail: "a@lxgcapital.com", Status: timesheet.StatusApproved}
		Expect(entry.Filter{}.Matches(e)).To(BeTrue())
		Expect(entry.Filter{ProjectID: "all", UserEmail: "all", Status: "all"}.Matches(e)).To(BeTrue())
		Expect(entry.Filter{Status: timesheet.StatusPending}.Matches(e)).To(BeFalse())
	})

	It("classifies against the cap", func() {
		Expect(entry.ClassifyStatus(65, 5)).To(Equal(timesheet.StatusApproved))
		Expect(entry.ClassifyStatus(65, 5.5)).To(Equal(timesheet.StatusPending))
		Expect(entry.ClassifyStatus(0, 71)).To(Equal(timesheet.StatusPending))
	})
})
