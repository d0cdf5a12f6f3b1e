package commands

import (
	"context"

	"github.com/goliatone/go-dashboard-grid/components/grid"
)

// ActorInput identifies who issues a command.
type ActorInput struct {
	ActorEmail string    `json:"actor_email"`
	Role       grid.Role `json:"role"`
	TenantID   string    `json:"tenant_id"`
}

func (a ActorInput) withContext(ctx context.Context) context.Context {
	return grid.ContextWithActor(ctx, grid.Actor{Email: a.ActorEmail, Role: a.Role, TenantID: a.TenantID})
}

func (a ActorInput) permissionInput(dashboard grid.Dashboard) grid.PermissionInput {
	return grid.PermissionInput{
		UserEmail:    a.ActorEmail,
		CreatorEmail: dashboard.CreatedBy,
		SessionRole:  a.Role,
		Locked:       dashboard.IsLocked,
	}
}

type dashboardService interface {
	GetDashboard(ctx context.Context, id string) (grid.Dashboard, error)
	UpdateDashboard(ctx context.Context, dashboard grid.Dashboard) (grid.UpdateResponse, error)
}
