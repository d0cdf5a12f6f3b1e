// Package grid re-exports the dashboard grid component for embedding
// applications.
package grid

import (
	core "github.com/goliatone/go-dashboard-grid/components/grid"
	"github.com/goliatone/go-dashboard-grid/components/grid/sqlitestore"
)

// Component types.
type (
	GridLayout   = core.GridLayout
	Options      = core.Options
	View         = core.View
	Synchronizer = core.Synchronizer
	Dashboard    = core.Dashboard
	LayoutEntry  = core.LayoutEntry
	Role         = core.Role
	Permissions  = core.Permissions
	RoleMatrix   = core.RoleMatrix
)

// Server side types.
type (
	Service        = core.Service
	ServiceOptions = core.ServiceOptions
	MutationClient = core.MutationClient
	SQLiteStore    = sqlitestore.Store
)

// NewGridLayout proxies to the component constructor.
func NewGridLayout(opts Options) (*GridLayout, error) {
	return core.NewGridLayout(opts)
}

// NewService proxies to the service constructor.
func NewService(opts ServiceOptions) *Service {
	return core.NewService(opts)
}

// NewMutationClient wraps service as an update client for GridLayout.
func NewMutationClient(service *Service) *MutationClient {
	return core.NewMutationClient(service)
}

// OpenSQLiteStore opens a SQLite-backed dashboard store.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	return sqlitestore.Open(path)
}

// DefaultRoleMatrix returns the built-in capability table.
func DefaultRoleMatrix() *RoleMatrix {
	return core.DefaultRoleMatrix()
}
