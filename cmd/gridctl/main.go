package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/goliatone/go-dashboard-grid/components/grid"
)

type cli struct {
	LogLevel  string `default:"info" enum:"debug,info,warn,error" help:"Log level."`
	LogFormat string `default:"text" enum:"text,json" help:"Log output format."`

	Serve serveCmd `cmd:"" help:"Serve the dashboard API with a SQLite store."`
	Roles rolesCmd `cmd:"" help:"Print the capability to role matrix."`
	Check checkCmd `cmd:"" help:"Check whether a role holds a capability."`
}

func main() {
	var root cli
	ctx := kong.Parse(&root,
		kong.Name("gridctl"),
		kong.Description("Dashboard grid layout service and permission tooling."),
		kong.UsageOnError(),
	)
	logger := newLogger(os.Stderr, root.LogLevel, root.LogFormat)
	slog.SetDefault(logger)

	runCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	ctx.BindTo(runCtx, (*context.Context)(nil))
	ctx.Bind(logger)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func loadMatrix(path string) (*grid.RoleMatrix, error) {
	if path == "" {
		return grid.DefaultRoleMatrix(), nil
	}
	matrix, err := grid.LoadRoleMatrixFile(path)
	if err != nil {
		return nil, fmt.Errorf("gridctl: %w", err)
	}
	return matrix, nil
}

func output(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
