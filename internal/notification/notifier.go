// Package notification e-mails the administrator when an entry needs approval.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/timesheet/internal/auth"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/export"
)

type Notifier struct {
	sender Sender
	from   string
	to     string
	logger *slog.Logger
}

func NewNotifier(sender Sender, from string, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		from:   from,
		to:     auth.AdminEmail,
		logger: logger,
	}
}

func (n *Notifier) HandleEntryPending(ctx context.Context, event events.Event) error {
	pending, ok := event.(*events.EntryPendingEvent)
	if !ok {
		n.logger.Error("invalid event type for entry pending handler", "event_type", event.EventType())
		return fmt.Errorf("expected EntryPendingEvent, got %T", event)
	}

	msg := PendingMessage(n.from, n.to, pending)
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Error("failed to send pending entry notification",
			"error", err,
			"entry_id", pending.EntryID,
			"to", n.to)
		return fmt.Errorf("notify pending entry %s: %w", pending.EntryID, err)
	}

	n.logger.Info("pending entry notification sent", "entry_id", pending.EntryID, "to", n.to)
	return nil
}

func (n *Notifier) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeEntryPending, n.HandleEntryPending)

	n.logger.Info("notification event handlers registered",
		"handlers", []string{events.EventTypeEntryPending})
}

func PendingMessage(from, to string, e *events.EntryPendingEvent) Message {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) registró %s h en %s para la semana %s.\n",
		e.UserName, e.UserEmail, export.FormatHours(e.Hours), e.ProjectName, e.Week)
	fmt.Fprintf(&b, "Horas aprobadas en la semana: %s de %s.\n",
		export.FormatHours(e.WeeklyApproved), export.FormatHours(timesheet.WeeklyHoursCap))
	b.WriteString("El registro queda pendiente de aprobación.\n")

	return Message{
		From:    from,
		To:      to,
		Subject: fmt.Sprintf("Pendiente: %s, %s", e.UserName, e.Week),
		Body:    b.String(),
	}
}
