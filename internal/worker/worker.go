package worker

import (
	"context"

	"github.com/sinless777/helix-support/internal/escalation"
	"github.com/sinless777/helix-support/internal/events"
	"github.com/sinless777/helix-support/internal/service"
)

// StartBackgroundWorkers registers event subscribers and launches the
// escalation delivery loop.
func StartBackgroundWorkers(ctx context.Context, dispatcher events.Dispatcher, notifications *service.NotificationService, escalations *escalation.Worker) {
	if notifications != nil {
		notifications.RegisterHandlers()
	}
	if escalations != nil && dispatcher != nil {
		dispatcher.Subscribe(events.EventTicketEscalated, escalations.HandleEvent)
		escalations.Start(ctx)
	}
}
