package building

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUValue_Wall(t *testing.T) {
	// R = 0.13 + 0.04 + 0.2/0.04 = 5.17
	u, err := UValue(Wall, []Layer{{ThicknessM: 0.2, Conductivity: 0.04}}, false)
	require.NoError(t, err)
	assert.InDelta(t, 1/5.17, u, 1e-9)
}

func TestUValue_MultiLayer(t *testing.T) {
	layers := []Layer{
		{ThicknessM: 0.365, Conductivity: 0.8},  // brick
		{ThicknessM: 0.14, Conductivity: 0.035}, // insulation
	}
	u, err := UValue(Wall, layers, false)
	require.NoError(t, err)

	r := 0.13 + 0.04 + 0.365/0.8 + 0.14/0.035
	assert.InDelta(t, 1/r, u, 1e-9)
}

func TestUValue_GroundCoupledFloor(t *testing.T) {
	// R = 0.17 + 0.04 + 0.1/0.05 + 0.5 = 2.71
	u, err := UValue(Floor, []Layer{{ThicknessM: 0.1, Conductivity: 0.05}}, true)
	require.NoError(t, err)
	assert.InDelta(t, 1/2.71, u, 1e-9)

	// Without ground coupling the soil resistance is absent.
	u2, err := UValue(Floor, []Layer{{ThicknessM: 0.1, Conductivity: 0.05}}, false)
	require.NoError(t, err)
	assert.Greater(t, u2, u)
}

func TestUValue_Errors(t *testing.T) {
	_, err := UValue(Window, []Layer{{ThicknessM: 0.02, Conductivity: 1}}, false)
	assert.Error(t, err)

	_, err = UValue(Wall, nil, false)
	assert.Error(t, err)

	_, err = UValue(Wall, []Layer{{ThicknessM: 0, Conductivity: 1}}, false)
	assert.Error(t, err)
}

func TestDesignHeatLoad(t *testing.T) {
	spec := testSpec()

	// Transmission at deltaT 35: wall 175 + window 70 + floor 70 (damped)
	// + bridges 77 = 392. Ventilation 0.34*0.5*100*35 = 595. With the
	// 24% supplement: (392+595)*1.24.
	load := spec.DesignHeatLoad(-15, 20)
	assert.InDelta(t, 987*1.24, load, 1e-6)
}

func TestHeatingThreshold(t *testing.T) {
	assert.Equal(t, 15.0, HeatingThresholdC)
}
