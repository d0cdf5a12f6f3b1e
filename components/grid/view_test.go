package grid

import (
	"testing"
)

func TestRenderEmptyStateWhenLayoutMissing(t *testing.T) {
	cases := map[string]*Dashboard{
		"no dashboard": nil,
		"nil layout":   {ID: "d", Data: DashboardData{}},
		"empty layout": {ID: "d", Data: DashboardData{Layout: []LayoutEntry{}}},
	}
	for name, dashboard := range cases {
		g := newTestGrid(t, NewDashboardState(dashboard), editorSession())
		view := g.Render()
		if !view.Empty || view.Grid != nil {
			t.Fatalf("%s: expected empty state, got %#v", name, view)
		}
	}
}

func TestRenderGridDescription(t *testing.T) {
	dashboard := fixtureDashboard()
	dashboard.Data.Layout = append(dashboard.Data.Layout, LayoutEntry{I: "ghost", X: 0, Y: 2, W: 3, H: 2})
	dashboard.Data.Widgets[1].PanelType = ""
	g := newTestGrid(t, NewDashboardState(&dashboard), editorSession())

	view := g.Render()
	if view.Empty || view.Grid == nil {
		t.Fatalf("expected grid view")
	}
	grid := view.Grid
	if grid.Cols != 12 || grid.RowHeight != 100 || grid.AllowOverlap || grid.DraggableHandle != ".drag-handle" {
		t.Fatalf("unexpected grid settings: %#v", grid)
	}
	if !grid.IsDraggable || !grid.IsDroppable || !grid.IsResizable {
		t.Fatalf("expected editor to get interactive grid")
	}
	if len(grid.Panels) != 3 {
		t.Fatalf("expected panel per layout entry, got %d", len(grid.Panels))
	}
	if grid.Panels[0].PanelType != PanelTimeSeries || grid.Panels[1].PanelType != PanelTimeSeries {
		t.Fatalf("expected time series default panel type, got %s/%s", grid.Panels[0].PanelType, grid.Panels[1].PanelType)
	}
	ghost := grid.Panels[2]
	if ghost.Widget.ID != "ghost" || ghost.Widget.Query == nil || len(ghost.Widget.Query) != 0 {
		t.Fatalf("expected placeholder widget for missing id, got %#v", ghost.Widget)
	}
	if len(ghost.Actions) != 4 || !ghost.EnableResize {
		t.Fatalf("expected edit actions on unlocked dashboard, got %v", ghost.Actions)
	}
	if ghost.Version != "v3" {
		t.Fatalf("expected dashboard version passed through")
	}
}

func TestRenderLockedDashboardRestrictsInteraction(t *testing.T) {
	dashboard := fixtureDashboard()
	dashboard.IsLocked = true
	admin := StaticSession{Email: "admin@example.com", UserRole: RoleAdmin}
	g := newTestGrid(t, NewDashboardState(&dashboard), admin)

	grid := g.Render().Grid
	if grid == nil {
		t.Fatalf("expected grid view")
	}
	if grid.IsDraggable || grid.IsDroppable || grid.IsResizable {
		t.Fatalf("locked dashboard must not be interactive")
	}
	for _, panel := range grid.Panels {
		if panel.EnableResize {
			t.Fatalf("locked panels must not enable resize")
		}
		if len(panel.Actions) != 1 || panel.Actions[0] != ActionView {
			t.Fatalf("locked panels expose view actions only, got %v", panel.Actions)
		}
	}
}

func TestRenderViewerCannotDrag(t *testing.T) {
	dashboard := fixtureDashboard()
	viewer := StaticSession{Email: "viewer@example.com", UserRole: RoleViewer}
	g := newTestGrid(t, NewDashboardState(&dashboard), viewer)

	grid := g.Render().Grid
	if grid.IsDraggable || grid.IsResizable {
		t.Fatalf("viewer lacks add_panel and must not drag")
	}
	if len(grid.Panels[0].Actions) != 4 {
		t.Fatalf("action menu depends on lock state only")
	}
}

func TestRenderUsesLocalLayout(t *testing.T) {
	dashboard := fixtureDashboard()
	g := newTestGrid(t, NewDashboardState(&dashboard), StaticSession{UserRole: RoleViewer})
	g.OnLayoutChange(movedLayout(9))

	grid := g.Render().Grid
	if grid.Panels[0].Entry.X != 9 {
		t.Fatalf("expected panels to follow local layout, got %#v", grid.Panels[0].Entry)
	}
}

func TestWidgetActions(t *testing.T) {
	if got := WidgetActions(true); len(got) != 1 || got[0] != ActionView {
		t.Fatalf("unexpected locked actions: %v", got)
	}
	got := WidgetActions(false)
	want := []MenuAction{ActionView, ActionEdit, ActionClone, ActionDelete}
	if len(got) != len(want) {
		t.Fatalf("unexpected unlocked actions: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected unlocked actions: %v", got)
		}
	}
	got[0] = "mutated"
	if ViewMenuActions()[0] != ActionView {
		t.Fatalf("action lists must be copies")
	}
}

func newTestGrid(t *testing.T, state *DashboardState, session Session) *GridLayout {
	t.Helper()
	g, err := NewGridLayout(Options{
		Dashboard: state,
		Updates:   &stubUpdates{},
		Session:   session,
		Notifier:  &recordingNotifier{},
	})
	if err != nil {
		t.Fatalf("NewGridLayout returned error: %v", err)
	}
	t.Cleanup(g.Close)
	return g
}
