package people

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/hr-directory/internal"
	"github.com/frahmantamala/hr-directory/internal/core/events"
	"github.com/google/uuid"
)

const (
	EventPersonCreated = "person.created"
	EventPersonUpdated = "person.updated"
	EventPersonDeleted = "person.deleted"
)

func NewPersonEvent(ctx context.Context, eventType string, p *Person) events.BaseEvent {
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"person_id":  p.ID,
			"full_name":  p.FullName,
			"department": p.Department,
			"status":     p.Status,
			"actor_id":   internal.UserIDFromContext(ctx),
		},
	}
}

// RegisterAuditLog writes one structured line per directory mutation.
func RegisterAuditLog(bus *events.EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event events.Event) error {
		data, _ := event.Payload().(map[string]interface{})
		logger.InfoContext(ctx, "directory audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"person_id", data["person_id"],
			"actor_id", data["actor_id"])
		return nil
	}

	for _, eventType := range []string{EventPersonCreated, EventPersonUpdated, EventPersonDeleted} {
		bus.Subscribe(eventType, handler)
	}
}
