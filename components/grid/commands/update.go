package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-grid/components/grid"
)

// UpdateDashboardInput carries a full dashboard replacement.
type UpdateDashboardInput struct {
	ActorInput
	Dashboard grid.Dashboard `json:"dashboard"`
}

// UpdateDashboardCommand wraps Service.UpdateDashboard. The actor's
// effective role must be allowed to save the layout for the stored lock
// state. OnUpdated, when set, receives the stored payload.
type UpdateDashboardCommand struct {
	service   dashboardService
	gate      grid.Gate
	telemetry Telemetry
	OnUpdated func(grid.UpdateResponse)
}

// NewUpdateDashboardCommand creates the command. A nil resolver uses the
// default role matrix.
func NewUpdateDashboardCommand(service dashboardService, resolver grid.PermissionResolver, telemetry Telemetry) *UpdateDashboardCommand {
	return &UpdateDashboardCommand{
		service:   service,
		gate:      grid.NewGate(resolver),
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[UpdateDashboardInput] = (*UpdateDashboardCommand)(nil)

// Execute updates the dashboard.
func (c *UpdateDashboardCommand) Execute(ctx context.Context, msg UpdateDashboardInput) error {
	if c.service == nil {
		return errors.New("update command requires service")
	}
	if msg.Dashboard.ID == "" {
		return errors.New("update command requires dashboard id")
	}
	current, err := c.service.GetDashboard(ctx, msg.Dashboard.ID)
	if err != nil {
		return err
	}
	perms := c.gate.Resolve(msg.permissionInput(current))
	if !perms.SaveLayout {
		return fmt.Errorf("%w: %s cannot update dashboard", grid.ErrPermissionDenied, perms.Role)
	}
	resp, err := c.service.UpdateDashboard(msg.withContext(ctx), msg.Dashboard)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "grid.dashboard.update", map[string]any{
		"dashboard_id": msg.Dashboard.ID,
		"role":         string(perms.Role),
	})
	if c.OnUpdated != nil {
		c.OnUpdated(resp)
	}
	return nil
}
