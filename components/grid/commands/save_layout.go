package commands

import (
	"context"
	"errors"
	"fmt"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-grid/components/grid"
)

// SaveLayoutInput replaces the layout of one dashboard.
type SaveLayoutInput struct {
	ActorInput
	DashboardID string             `json:"dashboard_id"`
	Layout      []grid.LayoutEntry `json:"layout"`
}

// SaveLayoutCommand persists a layout after checking the save_layout
// capability for the actor's effective role.
type SaveLayoutCommand struct {
	service   dashboardService
	gate      grid.Gate
	telemetry Telemetry
}

// NewSaveLayoutCommand creates the command. A nil resolver uses the default
// role matrix.
func NewSaveLayoutCommand(service dashboardService, resolver grid.PermissionResolver, telemetry Telemetry) *SaveLayoutCommand {
	return &SaveLayoutCommand{
		service:   service,
		gate:      grid.NewGate(resolver),
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SaveLayoutInput] = (*SaveLayoutCommand)(nil)

// Execute loads the dashboard, checks permissions and saves the layout.
func (c *SaveLayoutCommand) Execute(ctx context.Context, msg SaveLayoutInput) error {
	if c.service == nil {
		return errors.New("save layout command requires service")
	}
	if msg.DashboardID == "" {
		return errors.New("save layout command requires dashboard id")
	}
	current, err := c.service.GetDashboard(ctx, msg.DashboardID)
	if err != nil {
		return err
	}
	perms := c.gate.Resolve(msg.permissionInput(current))
	if !perms.SaveLayout {
		return fmt.Errorf("%w: %s cannot save layout", grid.ErrPermissionDenied, perms.Role)
	}
	current.Data.Layout = grid.WithoutPlaceholders(msg.Layout)
	if _, err := c.service.UpdateDashboard(msg.withContext(ctx), current); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "grid.layout.save", map[string]any{
		"dashboard_id": msg.DashboardID,
		"panels":       len(current.Data.Layout),
		"role":         string(perms.Role),
	})
	return nil
}
