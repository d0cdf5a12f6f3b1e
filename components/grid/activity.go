package grid

import (
	"context"
	"strings"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// ActivitySink receives go-users activity records.
type ActivitySink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// ActivityHook records persisted dashboard changes in the go-users activity
// log. The actor tenant id is used when it parses as a UUID.
type ActivityHook struct {
	Sink    ActivitySink
	Channel string
}

var _ ChangeHook = (*ActivityHook)(nil)

// DashboardChanged implements ChangeHook.
func (h *ActivityHook) DashboardChanged(ctx context.Context, event DashboardEvent) error {
	if h == nil || h.Sink == nil || strings.TrimSpace(event.Reason) == "" {
		return nil
	}
	channel := h.Channel
	if channel == "" {
		channel = "dashboard"
	}
	actor, _ := ActorFromContext(ctx)
	record := types.ActivityRecord{
		Verb:       "dashboard." + event.Reason,
		ObjectType: "dashboard",
		ObjectID:   event.DashboardID,
		Channel:    channel,
		OccurredAt: event.OccurredAt,
		Data: map[string]any{
			"actor_email": event.ActorEmail,
			"panels":      event.Panels,
			"version":     event.Version,
			"role":        string(actor.Role),
		},
	}
	if id, err := uuid.Parse(actor.TenantID); err == nil {
		record.TenantID = id
	}
	return h.Sink.Log(ctx, record)
}
