package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-grid/components/grid"
)

type dashboardReader interface {
	GetDashboard(ctx context.Context, id string) (grid.Dashboard, error)
	ListDashboards(ctx context.Context) ([]grid.Dashboard, error)
}

// DashboardQuery loads one dashboard by id.
type DashboardQuery struct {
	service dashboardReader
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(service dashboardReader) *DashboardQuery {
	return &DashboardQuery{service: service}
}

var _ gocommand.Querier[string, grid.Dashboard] = (*DashboardQuery)(nil)

// Query returns the dashboard.
func (q *DashboardQuery) Query(ctx context.Context, id string) (grid.Dashboard, error) {
	if q.service == nil {
		return grid.Dashboard{}, errors.New("dashboard query requires service")
	}
	return q.service.GetDashboard(ctx, id)
}

// ListInput filters ListDashboardsQuery. An empty tag matches everything.
type ListInput struct {
	Tag string `json:"tag"`
}

// ListDashboardsQuery lists stored dashboards.
type ListDashboardsQuery struct {
	service dashboardReader
}

// NewListDashboardsQuery builds the query.
func NewListDashboardsQuery(service dashboardReader) *ListDashboardsQuery {
	return &ListDashboardsQuery{service: service}
}

var _ gocommand.Querier[ListInput, []grid.Dashboard] = (*ListDashboardsQuery)(nil)

// Query returns dashboards carrying in.Tag.
func (q *ListDashboardsQuery) Query(ctx context.Context, in ListInput) ([]grid.Dashboard, error) {
	if q.service == nil {
		return nil, errors.New("list query requires service")
	}
	all, err := q.service.ListDashboards(ctx)
	if err != nil || in.Tag == "" {
		return all, err
	}
	out := make([]grid.Dashboard, 0, len(all))
	for _, d := range all {
		for _, tag := range d.Data.Tags {
			if tag == in.Tag {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}
