package weather

import (
	"context"

	"energysim/internal/model"
)

// Provider supplies an ordered, gap-free weather series for a location and
// date range. Providers are injected into whatever builds the simulation;
// there is no process-wide registry, so concurrent runs stay independent.
type Provider interface {
	// Name identifies the provider in logs and CLI output.
	Name() string
	// Fetch materializes native-resolution records covering [tr.Start, tr.End].
	Fetch(ctx context.Context, loc model.Location, tr model.TimeRange) (*Series, error)
}
