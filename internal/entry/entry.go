package entry

import (
	"time"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
)

const PendingApprovalMessage = "Excede 70h, requiere aprobación"

var ErrEntryNotFound = internal.NewNotFoundError("Registro no encontrado", internal.ErrCodeEntryNotFound)

// ClassifyStatus decides the initial status of a new entry from the hours the
// user already has approved in that week.
func ClassifyStatus(weeklyApproved, hours float64) string {
	if weeklyApproved+hours > timesheet.WeeklyHoursCap {
		return timesheet.StatusPending
	}
	return timesheet.StatusApproved
}

// annotate records who moved the entry into status and clears the annotation of the other decision.
func annotate(e *timesheet.Entry, status, actor string, at time.Time) {
	e.Status = status
	switch status {
	case timesheet.StatusApproved:
		e.ApprovedBy, e.ApprovedAt = &actor, &at
		e.RejectedBy, e.RejectedAt = nil, nil
	case timesheet.StatusRejected:
		e.RejectedBy, e.RejectedAt = &actor, &at
		e.ApprovedBy, e.ApprovedAt = nil, nil
	}
}
