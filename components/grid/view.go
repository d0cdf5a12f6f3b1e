package grid

import (
	"log/slog"
)

// Grid renderer settings.
const (
	GridColumns     = 12
	GridRowHeight   = 100
	DraggableHandle = ".drag-handle"
)

// Options configures a GridLayout. Every collaborator is an interface so the
// host application owns the implementations.
type Options struct {
	Dashboard   DashboardContext
	Updates     UpdateService
	Permissions PermissionResolver
	Session     Session
	Notifier    Notifier
	Query       URLQuery
	Navigator   Navigator
	Time        TimeDispatcher
	Telemetry   Telemetry
	Logger      *slog.Logger
	// Path is the page path used when rewriting the URL on drag-select.
	Path string
}

// GridLayout is the dashboard grid component: it owns the layout
// synchronizer and renders either the empty state or the grid description.
type GridLayout struct {
	sync   *Synchronizer
	bridge *DragSelectBridge
	ctx    DashboardContext
}

// NewGridLayout builds the component.
func NewGridLayout(opts Options) (*GridLayout, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	synchronizer, err := NewSynchronizer(SynchronizerOptions{
		Dashboard: opts.Dashboard,
		Updates:   opts.Updates,
		Gate:      NewGate(opts.Permissions),
		Session:   opts.Session,
		Notifier:  opts.Notifier,
		Telemetry: opts.Telemetry,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &GridLayout{
		sync: synchronizer,
		ctx:  opts.Dashboard,
		bridge: &DragSelectBridge{
			Path:      opts.Path,
			Query:     opts.Query,
			Navigator: opts.Navigator,
			Time:      opts.Time,
			Telemetry: opts.Telemetry,
		},
	}, nil
}

// Synchronizer exposes the layout synchronizer.
func (g *GridLayout) Synchronizer() *Synchronizer { return g.sync }

// OnLayoutChange forwards renderer layout events.
func (g *GridLayout) OnLayoutChange(layout []LayoutEntry) { g.sync.OnLayoutChange(layout) }

// OnDragSelect forwards a panel time-range drag.
func (g *GridLayout) OnDragSelect(start, end float64) { g.bridge.OnDragSelect(start, end) }

// Close releases the component.
func (g *GridLayout) Close() { g.sync.Close() }

// View is what the renderer draws: the empty placeholder or the grid.
type View struct {
	Empty bool
	Grid  *GridView
}

// GridView describes the grid renderer configuration and its panels.
type GridView struct {
	Cols             int
	RowHeight        int
	AutoSize         bool
	UseCSSTransforms bool
	IsDraggable      bool
	IsDroppable      bool
	IsResizable      bool
	AllowOverlap     bool
	DraggableHandle  string
	Layout           []LayoutEntry
	Panels           []PanelView
}

// PanelView is one rendered panel.
type PanelView struct {
	Entry     LayoutEntry
	Widget    Widget
	PanelType PanelType
	// EnableResize toggles the resize affordance class on the card container.
	EnableResize bool
	Actions      []MenuAction
	Variables    map[string]Variable
	Version      string
}

// IsDashboardEmpty reports whether dashboard has nothing to lay out.
func IsDashboardEmpty(dashboard *Dashboard) bool {
	return dashboard == nil || len(dashboard.Data.Layout) == 0
}

// Render derives the current view.
func (g *GridLayout) Render() View {
	selected := g.ctx.SelectedDashboard()
	if IsDashboardEmpty(selected) {
		return View{Empty: true}
	}
	locked := g.ctx.IsLocked()
	perms := g.sync.Permissions()
	interactive := !locked && perms.AddPanel
	actions := WidgetActions(locked)
	local := g.sync.Local()

	grid := &GridView{
		Cols:             GridColumns,
		RowHeight:        GridRowHeight,
		AutoSize:         true,
		UseCSSTransforms: true,
		IsDraggable:      interactive,
		IsDroppable:      interactive,
		IsResizable:      interactive,
		AllowOverlap:     false,
		DraggableHandle:  DraggableHandle,
		Layout:           local,
		Panels:           make([]PanelView, 0, len(local)),
	}
	for _, entry := range local {
		widget := FindWidget(selected.Data.Widgets, entry.I)
		panelType := widget.PanelType
		if panelType == "" {
			panelType = PanelTimeSeries
		}
		grid.Panels = append(grid.Panels, PanelView{
			Entry:        entry,
			Widget:       widget,
			PanelType:    panelType,
			EnableResize: !locked,
			Actions:      append([]MenuAction(nil), actions...),
			Variables:    selected.Data.Variables,
			Version:      selected.Data.Version,
		})
	}
	return View{Grid: grid}
}

// FindWidget returns the widget with id or a placeholder carrying that id and
// an empty query.
func FindWidget(widgets []Widget, id string) Widget {
	for _, w := range widgets {
		if w.ID == id {
			return w
		}
	}
	return Widget{ID: id, Query: map[string]any{}}
}
