package sim

import (
	"fmt"
	"math"
	"time"

	"energysim/internal/building"
	"energysim/internal/heatpump"
	"energysim/internal/model"
	"energysim/internal/pv"
	"energysim/internal/weather"
)

// InsulationLevel selects an envelope preset by construction era.
type InsulationLevel string

const (
	InsulationOld    InsulationLevel = "old_1977"
	InsulationWSVO95 InsulationLevel = "wsvo_95"
	InsulationGEG20  InsulationLevel = "geg_2020"
)

// envelopeUValues are typical transmittances (W/m²K) per construction era:
// wall, roof, floor, window.
var envelopeUValues = map[InsulationLevel][4]float64{
	InsulationOld:    {1.4, 0.8, 1.0, 2.8},
	InsulationWSVO95: {0.5, 0.3, 0.5, 1.8},
	InsulationGEG20:  {0.28, 0.20, 0.35, 1.3},
}

// HousePreset builds a single-story detached house envelope over the given
// heated floor area: square footprint, 2.7 m rooms, windows sized at 15% of
// the floor area and split south-heavy, floor slab on ground.
func HousePreset(floorAreaM2 float64, level InsulationLevel) (building.Spec, error) {
	u, ok := envelopeUValues[level]
	if !ok {
		return building.Spec{}, fmt.Errorf("unknown insulation level %q", level)
	}
	if floorAreaM2 <= 0 {
		return building.Spec{}, fmt.Errorf("floor area must be positive")
	}

	const roomHeight = 2.7
	side := math.Sqrt(floorAreaM2)
	grossWallArea := 4 * side * roomHeight

	windowArea := 0.15 * floorAreaM2
	windows := []struct {
		orientation model.Orientation
		share       float64
	}{
		{model.South, 0.4},
		{model.East, 0.2},
		{model.West, 0.2},
		{model.North, 0.2},
	}

	spec := building.Spec{
		VolumeM3:         floorAreaM2 * roomHeight,
		InfiltrationRate: 0.6,
		// Medium-weight construction, about 40 Wh/K per m² heated area.
		CapacitanceWhK: 40 * floorAreaM2,
	}

	spec.Elements = append(spec.Elements,
		building.EnvelopeElement{Kind: building.Wall, Area: grossWallArea - windowArea, UValue: u[0]},
		building.EnvelopeElement{Kind: building.Roof, Area: floorAreaM2, UValue: u[1]},
		building.EnvelopeElement{Kind: building.Floor, Area: floorAreaM2, UValue: u[2], GroundCoupled: true},
	)
	for _, w := range windows {
		spec.Elements = append(spec.Elements, building.EnvelopeElement{
			Kind:          building.Window,
			Area:          windowArea * w.share,
			Orientation:   w.orientation,
			UValue:        u[3],
			GValue:        0.6,
			FrameFactor:   0.7,
			ShadingFactor: 0.9,
		})
	}

	return spec, nil
}

// Scenario bundles everything a run needs except the weather series.
type Scenario struct {
	Location model.Location
	Building building.Spec
	HeatPump heatpump.Spec
	PV       pv.Spec
	Config   Config
}

// DefaultScenario is a 150 m² single-family house in Berlin with a 9 kW heat
// pump and 10 kWp PV, simulated over three January days at 30-minute steps.
func DefaultScenario() Scenario {
	spec, _ := HousePreset(150, InsulationGEG20)
	return Scenario{
		Location: model.Location{Latitude: 52.52, Longitude: 13.41},
		Building: spec,
		HeatPump: heatpump.DefaultSpec(9),
		PV:       pv.DefaultSpec(10),
		Config: Config{
			Start:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			End:             time.Date(2025, 1, 4, 0, 0, 0, 0, time.UTC),
			Step:            30 * time.Minute,
			IndoorSetpointC: 20,
			Tariffs:         DefaultTariffs(),
		},
	}
}

// NewEngine assembles the models and couples them to the weather series.
func (sc Scenario) NewEngine(series *weather.Series, cb Callback) (*Engine, error) {
	b, err := building.NewModel(sc.Building, sc.Config.IndoorSetpointC)
	if err != nil {
		return nil, fmt.Errorf("building: %w", err)
	}
	pump, err := heatpump.NewUnit(sc.HeatPump)
	if err != nil {
		return nil, fmt.Errorf("heat pump: %w", err)
	}
	array, err := pv.NewArray(sc.PV)
	if err != nil {
		return nil, fmt.Errorf("pv: %w", err)
	}
	return New(sc.Config, series, b, pump, array, cb)
}

// TimeRange returns the weather coverage a run of this scenario needs.
func (sc Scenario) TimeRange() model.TimeRange {
	return model.TimeRange{Start: sc.Config.Start, End: sc.Config.End}
}
