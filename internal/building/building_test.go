package building

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energysim/internal/model"
)

// testSpec is small enough to verify the load formulas by hand.
func testSpec() Spec {
	return Spec{
		Elements: []EnvelopeElement{
			{Kind: Wall, Area: 10, UValue: 0.5},
			{Kind: Window, Area: 2, Orientation: model.South, UValue: 1.0, GValue: 0.5, FrameFactor: 1.0, ShadingFactor: 1.0},
			{Kind: Floor, Area: 10, UValue: 0.4, GroundCoupled: true},
		},
		VolumeM3:         100,
		InfiltrationRate: 0.5,
		CapacitanceWhK:   1000,
	}
}

func TestSpec_Validate(t *testing.T) {
	spec := testSpec()
	assert.NoError(t, spec.Validate())

	empty := Spec{VolumeM3: 100, InfiltrationRate: 0.5, CapacitanceWhK: 1000}
	assert.ErrorIs(t, empty.Validate(), ErrEmptyEnvelope)

	bad := testSpec()
	bad.VolumeM3 = 0
	assert.ErrorIs(t, bad.Validate(), ErrBadVolume)

	bad = testSpec()
	bad.CapacitanceWhK = -1
	assert.ErrorIs(t, bad.Validate(), ErrBadCapacitance)

	bad = testSpec()
	bad.InfiltrationRate = -0.1
	assert.ErrorIs(t, bad.Validate(), ErrBadInfiltration)

	bad = testSpec()
	bad.Elements[0].Area = 0
	assert.Error(t, bad.Validate())

	bad = testSpec()
	bad.Elements[1].GValue = 1.5
	assert.Error(t, bad.Validate())
}

func TestModel_ComputeLoads(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	irradiance := func(o model.Orientation) float64 {
		if o == model.South {
			return 100
		}
		return 0
	}

	loads := m.ComputeLoads(0, irradiance, 20)

	// Wall 0.5*10*20 + window 1.0*2*20 + floor 0.4*10*(20*0.5) = 180,
	// plus bridges 0.10*22*20 = 44.
	assert.InDelta(t, 224.0, loads.TransmissionW, 1e-9)
	// 0.5 * 100 * 1.2 * 1005 / 3600 * 20
	assert.InDelta(t, 335.0, loads.VentilationW, 1e-9)
	// 2 * 0.5 * 1.0 * 1.0 * 100
	assert.InDelta(t, 100.0, loads.SolarGainW, 1e-9)

	assert.InDelta(t, 459.0, loads.NetDemandW(), 1e-9)
}

func TestModel_ComputeLoadsSignedWhenWarmerOutside(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	loads := m.ComputeLoads(30, nil, 20)
	assert.Negative(t, loads.TransmissionW)
	assert.Negative(t, loads.VentilationW)
	assert.Zero(t, loads.NetDemandW())
}

func TestModel_AdvanceEquilibrium(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	loads := m.ComputeLoads(0, nil, 20)
	heatW := loads.TransmissionW + loads.VentilationW

	indoor := m.Advance(loads, heatW, 0, 0.5)
	assert.InDelta(t, 20.0, indoor, 1e-9)
}

func TestModel_AdvanceCoolsWhenUnderheated(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	loads := m.ComputeLoads(0, nil, 20)

	// No heating at all: deltaT = -netLoss * dt / C.
	indoor := m.Advance(loads, 0, 0, 1)
	netLoss := loads.TransmissionW + loads.VentilationW
	assert.InDelta(t, 20-netLoss/1000, indoor, 1e-9)
	assert.Less(t, indoor, 20.0)
}

func TestModel_AdvanceWarmsWithSurplus(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	loads := m.ComputeLoads(0, nil, 20)
	heatW := loads.TransmissionW + loads.VentilationW + 500

	indoor := m.Advance(loads, heatW, 0, 2)
	assert.InDelta(t, 21.0, indoor, 1e-9)
}

func TestModel_InternalGains(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	// Floor area 10 m²: 5 W/m² by day, 1 W/m² at night.
	assert.InDelta(t, 50.0, m.InternalGains(12), 1e-9)
	assert.InDelta(t, 50.0, m.InternalGains(7), 1e-9)
	assert.InDelta(t, 50.0, m.InternalGains(22), 1e-9)
	assert.InDelta(t, 10.0, m.InternalGains(23), 1e-9)
	assert.InDelta(t, 10.0, m.InternalGains(3), 1e-9)
}

func TestModel_UnmetDemandAccumulates(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	m.AddUnmetDemand(1.5)
	m.AddUnmetDemand(0)
	m.AddUnmetDemand(-2) // ignored
	m.AddUnmetDemand(0.5)
	assert.InDelta(t, 2.0, m.UnmetDemandKWh(), 1e-9)
}

func TestModel_Reset(t *testing.T) {
	m, err := NewModel(testSpec(), 20)
	require.NoError(t, err)

	loads := m.ComputeLoads(0, nil, 20)
	m.Advance(loads, 0, 0, 1)
	m.AddUnmetDemand(1)
	require.NotEqual(t, 20.0, m.IndoorTemperature())

	m.Reset()
	assert.Equal(t, 20.0, m.IndoorTemperature())
	assert.Zero(t, m.UnmetDemandKWh())
}

func TestSpec_Areas(t *testing.T) {
	spec := testSpec()
	assert.InDelta(t, 22.0, spec.TotalArea(), 1e-9)
	assert.InDelta(t, 10.0, spec.FloorArea(), 1e-9)
}
