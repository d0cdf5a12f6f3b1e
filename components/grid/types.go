package grid

import (
	"context"
	"time"
)

// DashboardContext exposes the externally owned dashboard state. Setters are the
// only mutation surface; SubscribeLayouts lets components react to layout
// replacements (dashboard switch, reload, save responses).
type DashboardContext interface {
	SelectedDashboard() *Dashboard
	Layouts() []LayoutEntry
	IsLocked() bool
	SetLayouts(layouts []LayoutEntry)
	SetSelectedDashboard(dashboard Dashboard)
	SubscribeLayouts(fn func([]LayoutEntry)) (cancel func())
}

// UpdateService submits dashboard mutations. Mutate returns immediately and
// reports completion through exactly one of the callbacks.
type UpdateService interface {
	Mutate(ctx context.Context, dashboard Dashboard, callbacks MutationCallbacks)
	InFlight() bool
}

// MutationCallbacks receives the outcome of an UpdateService.Mutate call.
type MutationCallbacks struct {
	OnSuccess func(UpdateResponse)
	OnError   func(error)
}

// UpdateResponse mirrors the dashboard update API envelope.
type UpdateResponse struct {
	Payload *Dashboard `json:"payload,omitempty"`
}

// Session holds the signed-in user's identity and entitlements.
type Session interface {
	UserEmail() string
	Role() Role
	Entitlements() Refetcher
}

// Refetcher reloads a remote resource without blocking the caller.
type Refetcher interface {
	Refetch()
}

// Notifier surfaces user-visible messages.
type Notifier interface {
	Error(n Notification)
}

// Notification is a toast style message.
type Notification struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
}

// URLQuery is the mutable query string of the current page.
type URLQuery interface {
	Get(key string) string
	Set(key, value string)
	Encode() string
}

// Navigator rewrites the browser location.
type Navigator interface {
	// Replace swaps the current history entry for url without pushing a new one.
	Replace(url string)
}

// TimeDispatcher updates the global time interval shared by all widgets.
type TimeDispatcher interface {
	UpdateTimeInterval(interval Interval, r TimeRange)
}

// Dashboard is a persisted dashboard document.
type Dashboard struct {
	ID        string        `json:"id"`
	UUID      string        `json:"uuid"`
	CreatedBy string        `json:"created_by,omitempty"`
	UpdatedBy string        `json:"updated_by,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	IsLocked  bool          `json:"isLocked"`
	Data      DashboardData `json:"data"`
}

// DashboardData holds the editable dashboard body. A nil Layout means the
// dashboard has never been laid out.
type DashboardData struct {
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Layout      []LayoutEntry       `json:"layout,omitempty"`
	Widgets     []Widget            `json:"widgets,omitempty"`
	Variables   map[string]Variable `json:"variables,omitempty"`
	Version     string              `json:"version,omitempty"`
}

// Widget is a single dashboard panel definition.
type Widget struct {
	ID          string         `json:"id"`
	PanelType   PanelType      `json:"panelTypes,omitempty"`
	Title       string         `json:"title,omitempty"`
	Description string         `json:"description,omitempty"`
	Query       map[string]any `json:"query"`
}

// Variable is a dashboard template variable.
type Variable struct {
	ID            string `json:"id,omitempty"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	QueryValue    string `json:"queryValue,omitempty"`
	SelectedValue any    `json:"selectedValue,omitempty"`
	MultiSelect   bool   `json:"multiSelect,omitempty"`
}

// PanelType identifies a widget visualization.
type PanelType string

const (
	PanelTimeSeries PanelType = "graph"
	PanelValue      PanelType = "value"
	PanelTable      PanelType = "table"
	PanelList       PanelType = "list"
	PanelTrace      PanelType = "trace"
	// PanelEmpty marks the placeholder entry the grid uses while a panel is
	// being added. It is never persisted.
	PanelEmpty PanelType = "EMPTY_WIDGET"
)

// Interval names a global time interval selection.
type Interval string

const (
	IntervalCustom Interval = "custom"
	Interval15Min  Interval = "15min"
	Interval1Hour  Interval = "1hr"
)

// TimeRange is an inclusive [Start, End] pair of timestamps.
type TimeRange struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// DashboardStore persists dashboards.
type DashboardStore interface {
	Get(ctx context.Context, id string) (Dashboard, error)
	Save(ctx context.Context, dashboard Dashboard) error
	List(ctx context.Context) ([]Dashboard, error)
}

// ChangeHook notifies transports about persisted dashboard changes.
type ChangeHook interface {
	DashboardChanged(ctx context.Context, event DashboardEvent) error
}

// DashboardEvent describes a persisted change.
type DashboardEvent struct {
	DashboardID string    `json:"dashboard_id"`
	Reason      string    `json:"reason"`
	ActorEmail  string    `json:"actor_email,omitempty"`
	Version     string    `json:"version,omitempty"`
	Panels      int       `json:"panels"`
	OccurredAt  time.Time `json:"occurred_at"`
}
