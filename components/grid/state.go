package grid

import (
	"sync"
)

// layoutListeners fans layout values out to subscribers. Subscribers run
// outside of any lock held by the owner.
type layoutListeners struct {
	mu   sync.RWMutex
	subs map[int]func([]LayoutEntry)
	next int
}

func (l *layoutListeners) subscribe(fn func([]LayoutEntry)) func() {
	if fn == nil {
		return func() {}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.subs == nil {
		l.subs = make(map[int]func([]LayoutEntry))
	}
	id := l.next
	l.next++
	l.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.subs, id)
		})
	}
}

func (l *layoutListeners) snapshot() []func([]LayoutEntry) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	fns := make([]func([]LayoutEntry), 0, len(l.subs))
	for i := 0; i < l.next; i++ {
		if fn, ok := l.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	return fns
}

func (l *layoutListeners) publish(layout []LayoutEntry) {
	for _, fn := range l.snapshot() {
		fn(CloneLayout(layout))
	}
}

// DashboardState is the default DashboardContext: it owns the selected
// dashboard and the layouts shown for it.
type DashboardState struct {
	mu        sync.RWMutex
	selected  *Dashboard
	layouts   []LayoutEntry
	listeners layoutListeners

	// publishing is set while one caller delivers layouts; dirty marks a
	// change it has not delivered yet.
	publishing bool
	dirty      bool
}

// NewDashboardState selects dashboard (nil for none) and seeds layouts from it.
func NewDashboardState(dashboard *Dashboard) *DashboardState {
	s := &DashboardState{}
	if dashboard != nil {
		d := cloneDashboard(*dashboard)
		s.selected = &d
		s.layouts = CloneLayout(d.Data.Layout)
	}
	return s
}

// SelectedDashboard returns a copy of the selected dashboard or nil.
func (s *DashboardState) SelectedDashboard() *Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	d := cloneDashboard(*s.selected)
	return &d
}

// Layouts returns a copy of the current layouts.
func (s *DashboardState) Layouts() []LayoutEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CloneLayout(s.layouts)
}

// IsLocked reports the selected dashboard's lock flag.
func (s *DashboardState) IsLocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected != nil && s.selected.IsLocked
}

// SetLayouts replaces the layouts and notifies subscribers. Concurrent or
// nested calls are delivered by whichever caller is already publishing, so
// the last layout a subscriber sees is always the stored one. Intermediate
// layouts may be skipped.
func (s *DashboardState) SetLayouts(layouts []LayoutEntry) {
	s.mu.Lock()
	s.layouts = CloneLayout(layouts)
	s.dirty = true
	if s.publishing {
		s.mu.Unlock()
		return
	}
	s.publishing = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if !s.dirty {
			s.publishing = false
			s.mu.Unlock()
			return
		}
		s.dirty = false
		snapshot := CloneLayout(s.layouts)
		s.mu.Unlock()
		s.listeners.publish(snapshot)
	}
}

// SetSelectedDashboard replaces the selected dashboard. Layouts are left
// untouched; call SelectDashboard to switch dashboards.
func (s *DashboardState) SetSelectedDashboard(dashboard Dashboard) {
	d := cloneDashboard(dashboard)
	s.mu.Lock()
	s.selected = &d
	s.mu.Unlock()
}

// SelectDashboard switches to dashboard and reloads layouts from it.
func (s *DashboardState) SelectDashboard(dashboard Dashboard) {
	s.SetSelectedDashboard(dashboard)
	s.SetLayouts(dashboard.Data.Layout)
}

// SetLocked flips the lock flag of the selected dashboard.
func (s *DashboardState) SetLocked(locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected != nil {
		s.selected.IsLocked = locked
	}
}

// SubscribeLayouts registers fn for layout replacements.
func (s *DashboardState) SubscribeLayouts(fn func([]LayoutEntry)) func() {
	return s.listeners.subscribe(fn)
}

func cloneDashboard(d Dashboard) Dashboard {
	d.Data.Layout = CloneLayout(d.Data.Layout)
	if d.Data.Tags != nil {
		d.Data.Tags = append([]string(nil), d.Data.Tags...)
	}
	if d.Data.Widgets != nil {
		widgets := make([]Widget, len(d.Data.Widgets))
		copy(widgets, d.Data.Widgets)
		d.Data.Widgets = widgets
	}
	if d.Data.Variables != nil {
		vars := make(map[string]Variable, len(d.Data.Variables))
		for key, value := range d.Data.Variables {
			vars[key] = value
		}
		d.Data.Variables = vars
	}
	return d
}
