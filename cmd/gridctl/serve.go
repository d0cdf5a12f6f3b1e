package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"github.com/goliatone/go-users/pkg/types"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-dashboard-grid/components/grid"
	"github.com/goliatone/go-dashboard-grid/components/grid/commands"
	"github.com/goliatone/go-dashboard-grid/components/grid/gorouter"
	"github.com/goliatone/go-dashboard-grid/components/grid/queries"
	"github.com/goliatone/go-dashboard-grid/components/grid/sqlitestore"
)

type serveCmd struct {
	Addr     string `default:":9876" help:"Listen address."`
	DB       string `default:"gridctl.db" help:"SQLite database path (use :memory: for an ephemeral store)."`
	Roles    string `type:"path" help:"Role matrix YAML file."`
	Seed     string `type:"path" help:"JSON file with dashboards to create on startup."`
	BasePath string `default:"/api" help:"Route prefix."`
}

// Run serves until the context is cancelled.
func (cmd *serveCmd) Run(ctx context.Context, logger *slog.Logger) error {
	matrix, err := loadMatrix(cmd.Roles)
	if err != nil {
		return err
	}
	store, err := sqlitestore.Open(cmd.DB)
	if err != nil {
		return fmt.Errorf("gridctl: %w", err)
	}
	defer store.Close()

	telemetry := grid.NewSlogTelemetry(logger)
	broadcast := grid.NewBroadcastHook()
	service := grid.NewService(grid.ServiceOptions{
		Store:     store,
		Telemetry: telemetry,
		Hooks: []grid.ChangeHook{
			broadcast,
			&grid.ActivityHook{Sink: logActivitySink{logger: logger}},
		},
	})
	if cmd.Seed != "" {
		if err := seedDashboards(ctx, service, cmd.Seed); err != nil {
			return err
		}
	}

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:     server.Router(),
		Get:        queries.NewDashboardQuery(service),
		View:       queries.NewViewQuery(service, matrix),
		Update:     commands.NewUpdateDashboardCommand(service, matrix, telemetry),
		SaveLayout: commands.NewSaveLayoutCommand(service, matrix, telemetry),
		Lock:       commands.NewSetLockCommand(service, matrix, telemetry),
		Broadcast:  broadcast,
		BasePath:   cmd.BasePath,
	}); err != nil {
		return fmt.Errorf("gridctl: register routes: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("gridctl: listening", "addr", cmd.Addr, "db", cmd.DB)
		return server.Serve(cmd.Addr)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("gridctl: shutting down")
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// seedDashboards creates every dashboard in path that does not exist yet.
func seedDashboards(ctx context.Context, service *grid.Service, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("gridctl: read seed file: %w", err)
	}
	var dashboards []grid.Dashboard
	if err := json.Unmarshal(raw, &dashboards); err != nil {
		return fmt.Errorf("gridctl: decode seed file: %w", err)
	}
	for _, dashboard := range dashboards {
		if dashboard.ID != "" {
			if _, err := service.GetDashboard(ctx, dashboard.ID); err == nil {
				continue
			} else if !errors.Is(err, grid.ErrDashboardNotFound) {
				return err
			}
		}
		if _, err := service.CreateDashboard(ctx, dashboard); err != nil {
			return fmt.Errorf("gridctl: seed dashboard %s: %w", dashboard.ID, err)
		}
	}
	return nil
}

type logActivitySink struct {
	logger *slog.Logger
}

func (s logActivitySink) Log(_ context.Context, record types.ActivityRecord) error {
	s.logger.Info("activity",
		"verb", record.Verb,
		"object_type", record.ObjectType,
		"object_id", record.ObjectID,
		"channel", record.Channel,
		"data", record.Data,
	)
	return nil
}
