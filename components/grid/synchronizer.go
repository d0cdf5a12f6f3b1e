package grid

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
)

// MessageSomethingWentWrong is the generic notification shown when a save fails.
const MessageSomethingWentWrong = "Something went wrong"

var errMissingDashboardContext = errors.New("grid: dashboard context is required")

// SynchronizerOptions wires the synchronizer collaborators.
type SynchronizerOptions struct {
	Dashboard DashboardContext
	Updates   UpdateService
	Gate      Gate
	Session   Session
	Notifier  Notifier
	Telemetry Telemetry
	Logger    *slog.Logger
}

// Synchronizer keeps a local, editable copy of the dashboard layout and
// persists genuine changes to it.
type Synchronizer struct {
	opts SynchronizerOptions

	mu     sync.Mutex
	local  []LayoutEntry
	closed bool

	submitting atomic.Bool
	listeners  layoutListeners
	cancels    []func()
}

// NewSynchronizer seeds the local layout from the dashboard context and
// subscribes to external layout replacements and to its own local changes.
func NewSynchronizer(opts SynchronizerOptions) (*Synchronizer, error) {
	if opts.Dashboard == nil {
		return nil, errMissingDashboardContext
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	s := &Synchronizer{
		opts:  opts,
		local: CloneLayout(opts.Dashboard.Layouts()),
	}
	s.cancels = append(s.cancels,
		opts.Dashboard.SubscribeLayouts(s.replaceLocal),
		s.listeners.subscribe(s.persistIfChanged),
	)
	return s, nil
}

// Local returns a copy of the local layout.
func (s *Synchronizer) Local() []LayoutEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneLayout(s.local)
}

// SubscribeLocal registers fn for local layout changes.
func (s *Synchronizer) SubscribeLocal(fn func([]LayoutEntry)) func() {
	return s.listeners.subscribe(fn)
}

// OnLayoutChange receives the layout reported by the grid renderer after a
// drag or resize. It returns true when the local layout was replaced.
func (s *Synchronizer) OnLayoutChange(reported []LayoutEntry) bool {
	s.mu.Lock()
	if s.closed || LayoutsEqual(reported, s.local) {
		s.mu.Unlock()
		return false
	}
	s.local = CloneLayout(reported)
	s.mu.Unlock()
	s.opts.Telemetry.Record(context.Background(), "grid.layout.change", map[string]any{
		"panels": len(reported),
	})
	s.listeners.publish(reported)
	return true
}

// Permissions resolves the current viewer's layout permissions.
func (s *Synchronizer) Permissions() Permissions {
	in := PermissionInput{Locked: s.opts.Dashboard.IsLocked()}
	if selected := s.opts.Dashboard.SelectedDashboard(); selected != nil {
		in.CreatorEmail = selected.CreatedBy
	}
	if s.opts.Session != nil {
		in.UserEmail = s.opts.Session.UserEmail()
		in.SessionRole = s.opts.Session.Role()
	}
	return s.opts.Gate.Resolve(in)
}

// Close drops local state and subscriptions. Completion callbacks arriving
// afterwards are ignored.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.local = nil
	cancels := s.cancels
	s.cancels = nil
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

func (s *Synchronizer) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Synchronizer) replaceLocal(layout []LayoutEntry) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.local = CloneLayout(layout)
	s.mu.Unlock()
	s.listeners.publish(layout)
}

func (s *Synchronizer) persistIfChanged(local []LayoutEntry) {
	if !s.shouldPersist(local) {
		return
	}
	if !s.submitting.CompareAndSwap(false, true) {
		return
	}
	defer s.submitting.Store(false)
	// Re-check under the submit guard; another goroutine may have started a
	// save between the first check and the swap.
	if s.opts.Updates.InFlight() {
		return
	}
	s.save(local)
}

func (s *Synchronizer) shouldPersist(local []LayoutEntry) bool {
	if s.isClosed() || len(local) == 0 || s.opts.Updates == nil {
		return false
	}
	if LayoutsEqual(s.opts.Dashboard.Layouts(), local) {
		return false
	}
	if s.opts.Dashboard.IsLocked() {
		return false
	}
	if !s.Permissions().SaveLayout {
		return false
	}
	return !s.opts.Updates.InFlight()
}

func (s *Synchronizer) save(local []LayoutEntry) {
	selected := s.opts.Dashboard.SelectedDashboard()
	if selected == nil {
		return
	}
	updated := *selected
	updated.Data.Layout = WithoutPlaceholders(local)

	ctx := context.Background()
	if s.opts.Session != nil {
		ctx = ContextWithActor(ctx, Actor{Email: s.opts.Session.UserEmail(), Role: s.opts.Session.Role()})
	}
	s.opts.Telemetry.Record(ctx, "grid.layout.save", map[string]any{
		"dashboard_id": updated.ID,
		"panels":       len(updated.Data.Layout),
	})
	s.opts.Updates.Mutate(ctx, updated, MutationCallbacks{
		OnSuccess: s.onSaveSuccess,
		OnError:   s.onSaveError,
	})
}

func (s *Synchronizer) onSaveSuccess(resp UpdateResponse) {
	if s.isClosed() {
		return
	}
	if resp.Payload != nil {
		if resp.Payload.Data.Layout != nil {
			s.opts.Dashboard.SetLayouts(resp.Payload.Data.Layout)
		}
		s.opts.Dashboard.SetSelectedDashboard(*resp.Payload)
	}
	if s.opts.Session != nil {
		if entitlements := s.opts.Session.Entitlements(); entitlements != nil {
			entitlements.Refetch()
		}
	}
}

func (s *Synchronizer) onSaveError(err error) {
	if s.isClosed() {
		return
	}
	s.opts.Logger.Error("grid: save layout failed", "error", err)
	s.opts.Telemetry.Record(context.Background(), "grid.layout.save_error", map[string]any{
		"error": errorString(err),
	})
	if s.opts.Notifier != nil {
		s.opts.Notifier.Error(Notification{Message: MessageSomethingWentWrong})
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
