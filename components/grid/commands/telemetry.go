package commands

import "github.com/goliatone/go-dashboard-grid/components/grid"

// Telemetry is the grid telemetry recorder.
type Telemetry = grid.Telemetry

func normalizeTelemetry(t Telemetry) Telemetry {
	return grid.NormalizeTelemetry(t)
}
