package gorouter

import (
	"encoding/json"
	"errors"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-dashboard-grid/components/grid"
	"github.com/goliatone/go-dashboard-grid/components/grid/commands"
	"github.com/goliatone/go-dashboard-grid/components/grid/httpapi"
	"github.com/goliatone/go-dashboard-grid/components/grid/queries"
)

// ActorResolver converts a router.Context into the acting user.
type ActorResolver func(router.Context) commands.ActorInput

// Config wires go-router with the grid commands, queries and broadcast hook.
type Config[T any] struct {
	Router     router.Router[T]
	Get        gocommand.Querier[string, grid.Dashboard]
	View       gocommand.Querier[queries.ViewInput, queries.ViewResult]
	Update     gocommand.Commander[commands.UpdateDashboardInput]
	SaveLayout gocommand.Commander[commands.SaveLayoutInput]
	Lock       gocommand.Commander[commands.SetLockInput]
	Broadcast  *grid.BroadcastHook
	Actor      ActorResolver
	BasePath   string
	Routes     RouteConfig
}

// RouteConfig customizes the relative paths used for dashboard endpoints.
type RouteConfig struct {
	Dashboard string
	Layout    string
	Lock      string
	View      string
	WebSocket string
}

// Register mounts the dashboard routes (REST and WebSocket) on a go-router
// router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.Get == nil {
		return errors.New("gorouter: dashboard query is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}
	actor := cfg.Actor
	if actor == nil {
		actor = defaultActorResolver
	}
	group := cfg.Router.Group(base)

	// The stream path must be registered before the :id routes it overlaps.
	if cfg.Broadcast != nil {
		registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
	}

	group.Get(routes.Dashboard, router.WrapHandler(func(ctx router.Context) error {
		return respondDashboard(ctx, cfg.Get, ctx.Param("id"))
	}))

	if cfg.Update != nil {
		group.Put(routes.Dashboard, router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("id")
			var payload grid.Dashboard
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			payload.ID = id
			input := commands.UpdateDashboardInput{ActorInput: actor(ctx), Dashboard: payload}
			if err := cfg.Update.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return respondDashboard(ctx, cfg.Get, id)
		}))
	}

	if cfg.SaveLayout != nil {
		group.Put(routes.Layout, router.WrapHandler(func(ctx router.Context) error {
			id := ctx.Param("id")
			var payload struct {
				Layout []grid.LayoutEntry `json:"layout"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.SaveLayoutInput{ActorInput: actor(ctx), DashboardID: id, Layout: payload.Layout}
			if err := cfg.SaveLayout.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return respondDashboard(ctx, cfg.Get, id)
		}))
	}

	if cfg.Lock != nil {
		group.Post(routes.Lock, router.WrapHandler(func(ctx router.Context) error {
			var payload struct {
				Locked bool `json:"locked"`
			}
			if err := json.Unmarshal(ctx.Body(), &payload); err != nil {
				return respondError(ctx, http.StatusBadRequest, err)
			}
			input := commands.SetLockInput{ActorInput: actor(ctx), DashboardID: ctx.Param("id"), Locked: payload.Locked}
			if err := cfg.Lock.Execute(ctx.Context(), input); err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, map[string]bool{"locked": payload.Locked})
		}))
	}

	if cfg.View != nil {
		group.Get(routes.View, router.WrapHandler(func(ctx router.Context) error {
			who := actor(ctx)
			result, err := cfg.View.Query(ctx.Context(), queries.ViewInput{
				DashboardID: ctx.Param("id"),
				UserEmail:   who.ActorEmail,
				Role:        who.Role,
			})
			if err != nil {
				return respondError(ctx, httpapi.StatusFor(err), err)
			}
			return ctx.JSON(http.StatusOK, result)
		}))
	}

	return nil
}

func registerWebSocket[T any](r router.Router[T], hook *grid.BroadcastHook, path string) {
	cfg := router.DefaultWebSocketConfig()
	r.WebSocket(path, cfg, func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe()
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	})
}

func respondDashboard(ctx router.Context, get gocommand.Querier[string, grid.Dashboard], id string) error {
	dashboard, err := get.Query(ctx.Context(), id)
	if err != nil {
		return respondError(ctx, httpapi.StatusFor(err), err)
	}
	return ctx.JSON(http.StatusOK, grid.UpdateResponse{Payload: &dashboard})
}

func defaultActorResolver(ctx router.Context) commands.ActorInput {
	var actor commands.ActorInput
	if v, ok := ctx.Locals("user_email").(string); ok {
		actor.ActorEmail = v
	} else {
		actor.ActorEmail = ctx.Header(httpapi.HeaderUserEmail)
	}
	role := ctx.Header(httpapi.HeaderUserRole)
	if v, ok := ctx.Locals("role").(string); ok {
		role = v
	}
	parsed, err := grid.ParseRole(role)
	if err != nil {
		parsed = grid.RoleViewer
	}
	actor.Role = parsed
	if v, ok := ctx.Locals("tenant_id").(string); ok {
		actor.TenantID = v
	} else {
		actor.TenantID = ctx.Header(httpapi.HeaderTenantID)
	}
	return actor
}

func respondError(ctx router.Context, status int, err error) error {
	return ctx.JSON(status, map[string]string{"error": err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.Dashboard == "" {
		routes.Dashboard = "/dashboards/:id"
	}
	if routes.Layout == "" {
		routes.Layout = "/dashboards/:id/layout"
	}
	if routes.Lock == "" {
		routes.Lock = "/dashboards/:id/lock"
	}
	if routes.View == "" {
		routes.View = "/dashboards/:id/view"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/dashboards/ws"
	}
	return routes
}
