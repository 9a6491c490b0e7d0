package entry

import (
	"sort"

	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

const filterAll = "all"

// Filter narrows the admin view. Empty or "all" fields match everything.
type Filter struct {
	ProjectID string
	UserEmail string
	Status    string
}

func (f Filter) Matches(e timesheet.Entry) bool {
	return matches(e.ProjectID, f.ProjectID) &&
		matches(e.UserEmail, f.UserEmail) &&
		matches(e.Status, f.Status)
}

func matches(v, want string) bool {
	return want == "" || want == filterAll || v == want
}

func Own(entries []timesheet.Entry, email string) []timesheet.Entry {
	return selectSorted(entries, func(e timesheet.Entry) bool { return e.UserEmail == email })
}

func Filtered(entries []timesheet.Entry, f Filter) []timesheet.Entry {
	return selectSorted(entries, f.Matches)
}

func Pending(entries []timesheet.Entry) []timesheet.Entry {
	return selectSorted(entries, func(e timesheet.Entry) bool { return e.Status == timesheet.StatusPending })
}

// SortNewestFirst orders by creation time descending, then id descending.
func SortNewestFirst(entries []timesheet.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
}

func selectSorted(entries []timesheet.Entry, keep func(timesheet.Entry) bool) []timesheet.Entry {
	out := make([]timesheet.Entry, 0)
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	SortNewestFirst(out)
	return out
}
