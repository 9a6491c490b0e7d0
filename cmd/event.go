package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/core/week"
	"github.com/frahmantamala/timesheet/internal/notification"
	"github.com/frahmantamala/timesheet/pkg/logger"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus tools",
	Long:  `Publish sample events to check the handlers, e.g. the SMTP notification setup.`,
}

var publishEventCmd = &cobra.Command{
	Use:   "publish [event-type]",
	Short: "Publish a sample event",
	Long: `Publish a sample event through a bus wired like the server's, without touching stored data.
entry.pending sends a real e-mail when notifications are enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		return publishSampleEvent(context.Background(), cfg, args[0], logger.LoggerWrapper())
	},
}

func sampleEvent(eventType string) (events.Event, error) {
	switch eventType {
	case events.EventTypeEntryPending:
		return events.NewEntryPendingEvent("sample", "sample@lxgcapital.com", "Sample", "Sample project",
			week.Current(time.Now()), 8, 66), nil
	case events.EventTypeEntryStatusChanged:
		return events.NewEntryStatusChangedEvent("sample", "approved", "cli"), nil
	case events.EventTypeProjectDeleted:
		return events.NewProjectDeletedEvent("sample", "Sample project", "cli"), nil
	default:
		return nil, fmt.Errorf("unsupported event type %q", eventType)
	}
}

func publishSampleEvent(ctx context.Context, cfg *internal.Config, eventType string, lg *slog.Logger) error {
	event, err := sampleEvent(eventType)
	if err != nil {
		return err
	}

	bus := events.NewEventBus(lg)
	bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
		lg.Info("handler received event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})
	if cfg.Notification.Enabled {
		sender := notification.NewSMTPSender(cfg.Notification)
		notification.NewNotifier(sender, cfg.Notification.From, lg).RegisterEventHandlers(bus)
	}

	lg.Info("publishing sample event", "event_type", eventType, "event_id", event.EventID())
	if err := bus.PublishSync(ctx, event); err != nil {
		return err
	}
	lg.Info("sample event handled")
	return nil
}

func init() {
	eventCmd.AddCommand(publishEventCmd)
}
