package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-dashboard-grid/components/grid"
	"github.com/goliatone/go-dashboard-grid/components/grid/commands"
	"github.com/goliatone/go-dashboard-grid/components/grid/queries"
)

// Request headers read by DefaultActor.
const (
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
	HeaderTenantID  = "X-Tenant-ID"
)

// Handlers exposes HTTP endpoints backed by shared commands and queries.
type Handlers struct {
	Get        gocommand.Querier[string, grid.Dashboard]
	View       gocommand.Querier[queries.ViewInput, queries.ViewResult]
	Update     gocommand.Commander[commands.UpdateDashboardInput]
	SaveLayout gocommand.Commander[commands.SaveLayoutInput]
	Lock       gocommand.Commander[commands.SetLockInput]
	Events     *grid.BroadcastHook
	// Actor identifies the caller; DefaultActor when nil.
	Actor func(r *http.Request) commands.ActorInput
}

// DefaultActor reads the caller from request headers. Unknown roles fall
// back to VIEWER.
func DefaultActor(r *http.Request) commands.ActorInput {
	role, err := grid.ParseRole(r.Header.Get(HeaderUserRole))
	if err != nil {
		role = grid.RoleViewer
	}
	return commands.ActorInput{
		ActorEmail: r.Header.Get(HeaderUserEmail),
		Role:       role,
		TenantID:   r.Header.Get(HeaderTenantID),
	}
}

// HandleGetDashboard writes {"payload": dashboard}.
func (h *Handlers) HandleGetDashboard(w http.ResponseWriter, r *http.Request, id string) {
	dashboard, err := h.Get.Query(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, grid.UpdateResponse{Payload: &dashboard})
}

// HandleUpdateDashboard replaces the dashboard and writes the stored copy.
func (h *Handlers) HandleUpdateDashboard(w http.ResponseWriter, r *http.Request, id string) {
	var payload grid.Dashboard
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	payload.ID = id
	input := commands.UpdateDashboardInput{ActorInput: h.actor(r), Dashboard: payload}
	if err := h.Update.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.HandleGetDashboard(w, r, id)
}

type layoutPayload struct {
	Layout []grid.LayoutEntry `json:"layout"`
}

// HandleSaveLayout replaces only the layout.
func (h *Handlers) HandleSaveLayout(w http.ResponseWriter, r *http.Request, id string) {
	var payload layoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.SaveLayoutInput{ActorInput: h.actor(r), DashboardID: id, Layout: payload.Layout}
	if err := h.SaveLayout.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	h.HandleGetDashboard(w, r, id)
}

type lockPayload struct {
	Locked bool `json:"locked"`
}

// HandleSetLock toggles the lock flag.
func (h *Handlers) HandleSetLock(w http.ResponseWriter, r *http.Request, id string) {
	var payload lockPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	input := commands.SetLockInput{ActorInput: h.actor(r), DashboardID: id, Locked: payload.Locked}
	if err := h.Lock.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleView writes the grid description for the caller.
func (h *Handlers) HandleView(w http.ResponseWriter, r *http.Request, id string) {
	actor := h.actor(r)
	result, err := h.View.Query(r.Context(), queries.ViewInput{
		DashboardID: id,
		UserEmail:   actor.ActorEmail,
		Role:        actor.Role,
	})
	if err != nil {
		http.Error(w, err.Error(), StatusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleEvents streams dashboard changes as Server-Sent Events.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		http.NotFound(w, r)
		return
	}
	h.Events.ServeSSE(w, r)
}

// StatusFor maps grid errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, grid.ErrDashboardNotFound):
		return http.StatusNotFound
	case errors.Is(err, grid.ErrInvalidDashboard):
		return http.StatusBadRequest
	case errors.Is(err, grid.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, grid.ErrDashboardLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) actor(r *http.Request) commands.ActorInput {
	if h.Actor != nil {
		return h.Actor(r)
	}
	return DefaultActor(r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
