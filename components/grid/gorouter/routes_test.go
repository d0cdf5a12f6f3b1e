package gorouter

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"testing"
	"time"

	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashboard-grid/components/grid"
	"github.com/goliatone/go-dashboard-grid/components/grid/commands"
	"github.com/goliatone/go-dashboard-grid/components/grid/httpapi"
	"github.com/goliatone/go-dashboard-grid/components/grid/queries"
)

func TestRegisterValidatesConfig(t *testing.T) {
	if err := Register(Config[struct{}]{}); err == nil {
		t.Fatalf("expected error when router missing")
	}
	if err := Register(Config[struct{}]{Router: newMockRouter()}); err == nil {
		t.Fatalf("expected error when dashboard query missing")
	}
}

func TestRegisterMountsRoutes(t *testing.T) {
	mock := newMockRouter()
	cfg, _ := newTestConfig(t, mock)
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	for _, key := range []string{
		"GET:/api/dashboards/:id",
		"PUT:/api/dashboards/:id",
		"PUT:/api/dashboards/:id/layout",
		"POST:/api/dashboards/:id/lock",
		"GET:/api/dashboards/:id/view",
	} {
		if _, ok := mock.routes[key]; !ok {
			t.Fatalf("expected route %s, got %v", key, *mock.order)
		}
	}
	if _, ok := mock.ws["/api/dashboards/ws"]; !ok {
		t.Fatalf("expected websocket route")
	}
	if first := (*mock.order)[0]; first != "WS:/api/dashboards/ws" {
		t.Fatalf("websocket route must be registered first, got %s", first)
	}
}

func TestRegisterCustomBasePath(t *testing.T) {
	mock := newMockRouter()
	cfg, _ := newTestConfig(t, mock)
	cfg.BasePath = "/admin"
	cfg.Routes = RouteConfig{Dashboard: "/grid/:id"}
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if _, ok := mock.routes["GET:/admin/grid/:id"]; !ok {
		t.Fatalf("expected custom dashboard route, got %v", *mock.order)
	}
	if _, ok := mock.routes["PUT:/admin/dashboards/:id/layout"]; !ok {
		t.Fatalf("expected default layout route kept")
	}
}

func TestGetDashboardRoute(t *testing.T) {
	mock := newMockRouter()
	cfg, _ := newTestConfig(t, mock)
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	ctx := newMockContext()
	ctx.params["id"] = "dash-1"
	if err := mock.routes["GET:/api/dashboards/:id"](ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	var resp grid.UpdateResponse
	if err := json.Unmarshal(ctx.body, &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ctx.status != http.StatusOK || resp.Payload == nil || resp.Payload.ID != "dash-1" {
		t.Fatalf("unexpected response %d %s", ctx.status, ctx.body)
	}

	missing := newMockContext()
	missing.params["id"] = "nope"
	_ = mock.routes["GET:/api/dashboards/:id"](missing)
	if missing.status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", missing.status)
	}
}

func TestPutDashboardRouteStatuses(t *testing.T) {
	mock := newMockRouter()
	cfg, service := newTestConfig(t, mock)
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	put := mock.routes["PUT:/api/dashboards/:id"]
	body := []byte(`{"data":{"title":"Moved","layout":[{"i":"w1","x":4,"y":0,"w":6,"h":2}]}}`)

	viewer := newMockContext()
	viewer.params["id"] = "dash-1"
	viewer.request = body
	viewer.headers[httpapi.HeaderUserEmail] = "viewer@example.com"
	viewer.headers[httpapi.HeaderUserRole] = "VIEWER"
	_ = put(viewer)
	if viewer.status != http.StatusForbidden {
		t.Fatalf("expected 403 for viewer, got %d: %s", viewer.status, viewer.body)
	}

	malformed := newMockContext()
	malformed.params["id"] = "dash-1"
	malformed.request = []byte("{")
	_ = put(malformed)
	if malformed.status != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", malformed.status)
	}

	editor := newMockContext()
	editor.params["id"] = "dash-1"
	editor.request = body
	editor.locals["user_email"] = "editor@example.com"
	editor.locals["role"] = "editor"
	_ = put(editor)
	if editor.status != http.StatusOK {
		t.Fatalf("expected 200 for editor, got %d: %s", editor.status, editor.body)
	}

	if _, err := service.SetLocked(context.Background(), "dash-1", true); err != nil {
		t.Fatalf("SetLocked returned error: %v", err)
	}
	author := newMockContext()
	author.params["id"] = "dash-1"
	author.request = []byte(`{"data":{"title":"Moved","layout":[{"i":"w1","x":0,"y":0,"w":6,"h":2}]}}`)
	author.headers[httpapi.HeaderUserEmail] = "author@example.com"
	_ = put(author)
	if author.status != http.StatusConflict {
		t.Fatalf("expected 409 for locked layout edit, got %d: %s", author.status, author.body)
	}
}

func TestLockAndLayoutRoutes(t *testing.T) {
	mock := newMockRouter()
	cfg, service := newTestConfig(t, mock)
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	layout := newMockContext()
	layout.params["id"] = "dash-1"
	layout.request = []byte(`{"layout":[{"i":"w1","x":2,"y":0,"w":6,"h":2}]}`)
	layout.headers[httpapi.HeaderUserEmail] = "author@example.com"
	_ = mock.routes["PUT:/api/dashboards/:id/layout"](layout)
	if layout.status != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", layout.status, layout.body)
	}

	lock := newMockContext()
	lock.params["id"] = "dash-1"
	lock.request = []byte(`{"locked":true}`)
	lock.headers[httpapi.HeaderUserRole] = "EDITOR"
	_ = mock.routes["POST:/api/dashboards/:id/lock"](lock)
	if lock.status != http.StatusForbidden {
		t.Fatalf("expected 403 for editor lock, got %d", lock.status)
	}

	lock = newMockContext()
	lock.params["id"] = "dash-1"
	lock.request = []byte(`{"locked":true}`)
	lock.headers[httpapi.HeaderUserRole] = "ADMIN"
	_ = mock.routes["POST:/api/dashboards/:id/lock"](lock)
	if lock.status != http.StatusOK {
		t.Fatalf("expected 200 for admin lock, got %d: %s", lock.status, lock.body)
	}
	stored, _ := service.GetDashboard(context.Background(), "dash-1")
	if !stored.IsLocked || stored.Data.Layout[0].X != 2 {
		t.Fatalf("unexpected stored dashboard %#v", stored)
	}
}

func TestViewRoute(t *testing.T) {
	mock := newMockRouter()
	cfg, _ := newTestConfig(t, mock)
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	ctx := newMockContext()
	ctx.params["id"] = "dash-1"
	ctx.headers[httpapi.HeaderUserRole] = "EDITOR"
	_ = mock.routes["GET:/api/dashboards/:id/view"](ctx)
	var result queries.ViewResult
	if err := json.Unmarshal(ctx.body, &result); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if result.View.Grid == nil || !result.View.Grid.IsDraggable || result.Permissions.Role != grid.RoleEditor {
		t.Fatalf("expected editable grid for editor, got %#v", result)
	}
}

func TestDefaultActorResolver(t *testing.T) {
	ctx := newMockContext()
	ctx.headers[httpapi.HeaderUserEmail] = "header@example.com"
	ctx.headers[httpapi.HeaderUserRole] = "EDITOR"
	ctx.headers[httpapi.HeaderTenantID] = "tenant-h"
	ctx.locals["user_email"] = "local@example.com"
	ctx.locals["role"] = "admin"
	ctx.locals["tenant_id"] = "tenant-l"

	actor := defaultActorResolver(ctx)
	if actor.ActorEmail != "local@example.com" || actor.Role != grid.RoleAdmin || actor.TenantID != "tenant-l" {
		t.Fatalf("expected locals to win, got %#v", actor)
	}

	headers := newMockContext()
	headers.headers[httpapi.HeaderUserEmail] = "header@example.com"
	headers.headers[httpapi.HeaderUserRole] = "EDITOR"
	headers.headers[httpapi.HeaderTenantID] = "tenant-h"
	actor = defaultActorResolver(headers)
	if actor.ActorEmail != "header@example.com" || actor.Role != grid.RoleEditor || actor.TenantID != "tenant-h" {
		t.Fatalf("expected header actor, got %#v", actor)
	}

	unknown := newMockContext()
	unknown.headers[httpapi.HeaderUserRole] = "owner"
	if actor := defaultActorResolver(unknown); actor.Role != grid.RoleViewer {
		t.Fatalf("expected unknown role to fall back to VIEWER, got %s", actor.Role)
	}
}

func TestWebSocketRouteStreamsEvents(t *testing.T) {
	mock := newMockRouter()
	cfg, _ := newTestConfig(t, mock)
	if err := Register(cfg); err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	ws := newMockWebSocket()
	done := make(chan error, 1)
	go func() { done <- mock.ws["/api/dashboards/ws"](ws) }()

	deadline := time.After(2 * time.Second)
	for ws.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for websocket event")
		case <-time.After(10 * time.Millisecond):
			_ = cfg.Broadcast.DashboardChanged(context.Background(), grid.DashboardEvent{DashboardID: "dash-1", Reason: "update"})
		}
	}
	ws.cancel()
	if err := <-done; err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if !ws.closed {
		t.Fatalf("expected socket closed on context cancel")
	}
}

// --- Test helpers ---

func newTestConfig(t *testing.T, mock *mockRouter) (Config[struct{}], *grid.Service) {
	t.Helper()
	service := grid.NewService(grid.ServiceOptions{})
	_, err := service.CreateDashboard(context.Background(), grid.Dashboard{
		ID:        "dash-1",
		CreatedBy: "author@example.com",
		Data: grid.DashboardData{
			Title:   "Ops",
			Layout:  []grid.LayoutEntry{{I: "w1", X: 0, Y: 0, W: 6, H: 2}},
			Widgets: []grid.Widget{{ID: "w1", PanelType: grid.PanelTimeSeries}},
		},
	})
	if err != nil {
		t.Fatalf("seed dashboard: %v", err)
	}
	return Config[struct{}]{
		Router:     mock,
		Get:        queries.NewDashboardQuery(service),
		View:       queries.NewViewQuery(service, nil),
		Update:     commands.NewUpdateDashboardCommand(service, nil, nil),
		SaveLayout: commands.NewSaveLayoutCommand(service, nil, nil),
		Lock:       commands.NewSetLockCommand(service, nil, nil),
		Broadcast:  grid.NewBroadcastHook(),
	}, service
}

// mockRouter records handlers. Methods Register does not call are left to
// the embedded interface.
type mockRouter struct {
	router.Router[struct{}]
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
	order  *[]string
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
		order:  &[]string{},
	}
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
		order:  m.order,
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	key := method + ":" + m.prefix + path
	m.routes[key] = handler
	*m.order = append(*m.order, key)
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return nil
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return nil
}

func (m *mockRouter) Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.PUT), path, handler)
	return nil
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	full := m.prefix + path
	m.ws[full] = handler
	*m.order = append(*m.order, "WS:"+full)
	return nil
}

// routerContext aliases router.Context so the embedded field does not
// collide with the mock's Context() method.
type routerContext = router.Context

type mockContext struct {
	routerContext
	ctx     context.Context
	headers map[string]string
	request []byte
	body    []byte
	locals  map[any]any
	params  map[string]string
	status  int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:     context.Background(),
		headers: map[string]string{},
		locals:  map[any]any{},
		params:  map[string]string{},
	}
}

func (m *mockContext) Context() context.Context { return m.ctx }

func (m *mockContext) Header(key string) string { return m.headers[key] }

func (m *mockContext) Body() []byte { return m.request }

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

type mockWebSocket struct {
	router.WebSocketContext
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	events []grid.DashboardEvent
	closed bool
}

func newMockWebSocket() *mockWebSocket {
	ctx, cancel := context.WithCancel(context.Background())
	return &mockWebSocket{ctx: ctx, cancel: cancel}
}

func (m *mockWebSocket) Context() context.Context { return m.ctx }

func (m *mockWebSocket) WriteJSON(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if event, ok := v.(grid.DashboardEvent); ok {
		m.events = append(m.events, event)
	}
	return nil
}

func (m *mockWebSocket) Close() error {
	m.closed = true
	return nil
}

func (m *mockWebSocket) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}
