package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-grid/components/grid"
)

// ViewInput identifies the dashboard and viewer of a rendered grid.
type ViewInput struct {
	DashboardID string    `json:"dashboard_id"`
	UserEmail   string    `json:"user_email"`
	Role        grid.Role `json:"role"`
}

// ViewResult is the grid description plus the viewer's resolved permissions.
type ViewResult struct {
	View        grid.View        `json:"view"`
	Permissions grid.Permissions `json:"permissions"`
}

// ViewQuery renders a read-only grid description for a viewer.
type ViewQuery struct {
	service  dashboardReader
	resolver grid.PermissionResolver
}

// NewViewQuery builds the query. A nil resolver uses the default role matrix.
func NewViewQuery(service dashboardReader, resolver grid.PermissionResolver) *ViewQuery {
	return &ViewQuery{service: service, resolver: resolver}
}

var _ gocommand.Querier[ViewInput, ViewResult] = (*ViewQuery)(nil)

// Query loads the dashboard and renders it. Unknown dashboards render the
// empty state.
func (q *ViewQuery) Query(ctx context.Context, in ViewInput) (ViewResult, error) {
	if q.service == nil {
		return ViewResult{}, errors.New("view query requires service")
	}
	state := grid.NewDashboardState(nil)
	dashboard, err := q.service.GetDashboard(ctx, in.DashboardID)
	switch {
	case err == nil:
		state.SelectDashboard(dashboard)
	case !errors.Is(err, grid.ErrDashboardNotFound):
		return ViewResult{}, err
	}
	layout, err := grid.NewGridLayout(grid.Options{
		Dashboard:   state,
		Permissions: q.resolver,
		Session:     grid.StaticSession{Email: in.UserEmail, UserRole: in.Role},
	})
	if err != nil {
		return ViewResult{}, err
	}
	defer layout.Close()
	return ViewResult{
		View:        layout.Render(),
		Permissions: layout.Synchronizer().Permissions(),
	}, nil
}
