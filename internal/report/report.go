// Package report derives summaries from entries. Only approved entries count
// toward hours.
package report

import (
	"sort"

	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/week"
)

const DeletedProjectLabel = "Eliminado"

type UserHours struct {
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

type ProjectStats struct {
	ProjectID   string      `json:"project_id"`
	ProjectName string      `json:"project_name"`
	Deleted     bool        `json:"deleted"`
	Hours       float64     `json:"hours"`
	Users       []UserHours `json:"users"`
}

type Totals struct {
	ApprovedHours float64 `json:"approved_hours"`
	Users         int     `json:"users"`
	Projects      int     `json:"projects"`
	Pending       int     `json:"pending"`
}

// WeeklyHours sums the approved hours of one user in one week.
func WeeklyHours(entries []timesheet.Entry, email, wk string) float64 {
	var total float64
	for _, e := range entries {
		if e.UserEmail == email && e.Week == wk && e.Status == timesheet.StatusApproved {
			total += e.Hours
		}
	}
	return total
}

// Stats groups approved entries inside [startWeek, endWeek] by project. Empty
// bounds are open. A project that no longer exists is labelled with the name
// its entries recorded.
func Stats(entries []timesheet.Entry, projects map[string]timesheet.Project, startWeek, endWeek string) []ProjectStats {
	ordered := make([]timesheet.Entry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	type acc struct {
		stats *ProjectStats
		users map[string]*UserHours
	}
	byProject := make(map[string]*acc)

	for _, e := range ordered {
		if e.Status != timesheet.StatusApproved || !week.InRange(e.Week, startWeek, endWeek) {
			continue
		}

		a, ok := byProject[e.ProjectID]
		if !ok {
			a = &acc{
				stats: &ProjectStats{ProjectID: e.ProjectID},
				users: make(map[string]*UserHours),
			}
			byProject[e.ProjectID] = a
		}
		a.stats.Hours += e.Hours
		if e.ProjectName != "" {
			a.stats.ProjectName = e.ProjectName
		}

		u, ok := a.users[e.UserEmail]
		if !ok {
			u = &UserHours{Email: e.UserEmail}
			a.users[e.UserEmail] = u
		}
		u.Hours += e.Hours
		u.Name = e.UserName
	}

	out := make([]ProjectStats, 0, len(byProject))
	for id, a := range byProject {
		if p, ok := projects[id]; ok {
			a.stats.ProjectName = p.Name
		} else {
			a.stats.Deleted = true
			if a.stats.ProjectName == "" {
				a.stats.ProjectName = DeletedProjectLabel
			}
		}

		a.stats.Users = make([]UserHours, 0, len(a.users))
		for _, u := range a.users {
			a.stats.Users = append(a.stats.Users, *u)
		}
		sort.Slice(a.stats.Users, func(i, j int) bool {
			return a.stats.Users[i].Email < a.stats.Users[j].Email
		})
		out = append(out, *a.stats)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectName != out[j].ProjectName {
			return out[i].ProjectName < out[j].ProjectName
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

func ComputeTotals(entries []timesheet.Entry, projects map[string]timesheet.Project) Totals {
	users := make(map[string]struct{})
	t := Totals{Projects: len(projects)}
	for _, e := range entries {
		switch e.Status {
		case timesheet.StatusApproved:
			t.ApprovedHours += e.Hours
			users[e.UserEmail] = struct{}{}
		case timesheet.StatusPending:
			t.Pending++
		}
	}
	t.Users = len(users)
	return t
}
