package grid

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	errMissingStore       = errors.New("grid: dashboard store not configured")
	errMissingDashboardID = errors.New("grid: dashboard id is required")

	// ErrDashboardLocked rejects layout edits on locked dashboards.
	ErrDashboardLocked = errors.New("grid: dashboard is locked")
	// ErrInvalidDashboard wraps schema validation failures.
	ErrInvalidDashboard = errors.New("grid: invalid dashboard")
)

// ServiceOptions configures the dashboard Service.
type ServiceOptions struct {
	Store     DashboardStore
	Validator DashboardValidator
	Hooks     []ChangeHook
	Telemetry Telemetry
	Now       func() time.Time
}

// Service is the backend of the dashboard update contract.
type Service struct {
	opts ServiceOptions
}

// NewService builds a Service with safe defaults.
func NewService(opts ServiceOptions) *Service {
	if opts.Store == nil {
		opts.Store = NewInMemoryDashboardStore()
	}
	if opts.Validator == nil {
		opts.Validator = NewSchemaValidator()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// CreateDashboard stores a new dashboard, assigning id/uuid when missing. The
// actor on ctx becomes the creator unless CreatedBy is already set.
func (s *Service) CreateDashboard(ctx context.Context, dashboard Dashboard) (Dashboard, error) {
	if s.opts.Store == nil {
		return Dashboard{}, errMissingStore
	}
	if dashboard.UUID == "" {
		dashboard.UUID = uuid.NewString()
	}
	if dashboard.ID == "" {
		dashboard.ID = dashboard.UUID
	}
	actor, _ := ActorFromContext(ctx)
	if dashboard.CreatedBy == "" {
		dashboard.CreatedBy = actor.Email
	}
	now := s.opts.Now().UTC()
	dashboard.CreatedAt = now
	dashboard.UpdatedAt = now
	dashboard.UpdatedBy = actor.Email
	if err := s.opts.Validator.Validate(dashboard); err != nil {
		return Dashboard{}, err
	}
	if err := s.opts.Store.Save(ctx, dashboard); err != nil {
		return Dashboard{}, fmt.Errorf("grid: save dashboard %s: %w", dashboard.ID, err)
	}
	if err := s.notify(ctx, dashboard, "create"); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

// GetDashboard loads a dashboard by id.
func (s *Service) GetDashboard(ctx context.Context, id string) (Dashboard, error) {
	if s.opts.Store == nil {
		return Dashboard{}, errMissingStore
	}
	if id == "" {
		return Dashboard{}, errMissingDashboardID
	}
	return s.opts.Store.Get(ctx, id)
}

// ListDashboards returns all stored dashboards.
func (s *Service) ListDashboards(ctx context.Context) ([]Dashboard, error) {
	if s.opts.Store == nil {
		return nil, errMissingStore
	}
	return s.opts.Store.List(ctx)
}

// UpdateDashboard replaces a stored dashboard. Layout changes on a locked
// dashboard are refused. The lock flag and creation metadata are kept from the
// stored copy; use SetLocked to change the lock.
func (s *Service) UpdateDashboard(ctx context.Context, dashboard Dashboard) (UpdateResponse, error) {
	if s.opts.Store == nil {
		return UpdateResponse{}, errMissingStore
	}
	if dashboard.ID == "" {
		return UpdateResponse{}, errMissingDashboardID
	}
	current, err := s.opts.Store.Get(ctx, dashboard.ID)
	if err != nil {
		return UpdateResponse{}, err
	}
	if current.IsLocked && !LayoutsEqual(current.Data.Layout, dashboard.Data.Layout) {
		return UpdateResponse{}, fmt.Errorf("%w: %s", ErrDashboardLocked, dashboard.ID)
	}
	if dashboard.Data.Layout != nil {
		dashboard.Data.Layout = WithoutPlaceholders(dashboard.Data.Layout)
	}
	if err := s.opts.Validator.Validate(dashboard); err != nil {
		return UpdateResponse{}, err
	}
	actor, _ := ActorFromContext(ctx)
	dashboard.IsLocked = current.IsLocked
	dashboard.UUID = current.UUID
	dashboard.CreatedBy = current.CreatedBy
	dashboard.CreatedAt = current.CreatedAt
	dashboard.UpdatedAt = s.opts.Now().UTC()
	dashboard.UpdatedBy = actor.Email
	if err := s.opts.Store.Save(ctx, dashboard); err != nil {
		return UpdateResponse{}, fmt.Errorf("grid: save dashboard %s: %w", dashboard.ID, err)
	}
	if err := s.notify(ctx, dashboard, "update"); err != nil {
		return UpdateResponse{}, err
	}
	saved := cloneDashboard(dashboard)
	return UpdateResponse{Payload: &saved}, nil
}

// SetLocked toggles the lock flag.
func (s *Service) SetLocked(ctx context.Context, id string, locked bool) (Dashboard, error) {
	dashboard, err := s.GetDashboard(ctx, id)
	if err != nil {
		return Dashboard{}, err
	}
	dashboard.IsLocked = locked
	dashboard.UpdatedAt = s.opts.Now().UTC()
	if actor, ok := ActorFromContext(ctx); ok {
		dashboard.UpdatedBy = actor.Email
	}
	if err := s.opts.Store.Save(ctx, dashboard); err != nil {
		return Dashboard{}, fmt.Errorf("grid: save dashboard %s: %w", id, err)
	}
	reason := "unlock"
	if locked {
		reason = "lock"
	}
	if err := s.notify(ctx, dashboard, reason); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

func (s *Service) notify(ctx context.Context, dashboard Dashboard, reason string) error {
	actor, _ := ActorFromContext(ctx)
	event := DashboardEvent{
		DashboardID: dashboard.ID,
		Reason:      reason,
		ActorEmail:  actor.Email,
		Version:     dashboard.Data.Version,
		Panels:      len(dashboard.Data.Layout),
		OccurredAt:  dashboard.UpdatedAt,
	}
	var hookErr error
	for _, hook := range s.opts.Hooks {
		if hook == nil {
			continue
		}
		if err := hook.DashboardChanged(ctx, event); err != nil {
			hookErr = errors.Join(hookErr, err)
		}
	}
	s.opts.Telemetry.Record(ctx, "grid.dashboard."+reason, map[string]any{
		"dashboard_id": dashboard.ID,
		"panels":       event.Panels,
	})
	return hookErr
}
