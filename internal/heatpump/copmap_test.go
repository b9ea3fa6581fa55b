package heatpump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTable(t *testing.T) *COPTable {
	t.Helper()
	table, err := NewCOPTable(DefaultRatingPoints())
	require.NoError(t, err)
	return table
}

func TestCOPTable_ExactPoints(t *testing.T) {
	table := defaultTable(t)
	for _, p := range DefaultRatingPoints() {
		assert.InDelta(t, p.COP, table.At(p.OutsideTempC, p.FlowTempC), 1e-9,
			"(%v, %v)", p.OutsideTempC, p.FlowTempC)
	}
}

func TestCOPTable_BilinearMidpoint(t *testing.T) {
	table := defaultTable(t)

	// Halfway between (-7,35)=2.7 and (2,35)=3.4.
	assert.InDelta(t, 3.05, table.At(-2.5, 35), 1e-9)

	// Halfway along the flow axis at 7 °C: (4.0+3.2)/2.
	assert.InDelta(t, 3.6, table.At(7, 40), 1e-9)

	// Center of the (2..7, 35..45) cell: mean of its four corners.
	assert.InDelta(t, (3.4+2.7+4.0+3.2)/4, table.At(4.5, 40), 1e-9)
}

func TestCOPTable_ClampsOutsideGrid(t *testing.T) {
	table := defaultTable(t)

	assert.InDelta(t, 2.7, table.At(-25, 35), 1e-9)
	assert.InDelta(t, 4.4, table.At(20, 35), 1e-9)
	assert.InDelta(t, 2.2, table.At(-7, 60), 1e-9)
	assert.InDelta(t, 4.0, table.At(7, 20), 1e-9)
}

func TestNewCOPTable_RejectsPartialGrid(t *testing.T) {
	_, err := NewCOPTable([]RatingPoint{
		{-7, 35, 2.7}, {-7, 45, 2.2},
		{2, 35, 3.4}, // (2, 45) missing
	})
	assert.Error(t, err)
}

func TestNewCOPTable_RejectsBadCOP(t *testing.T) {
	_, err := NewCOPTable([]RatingPoint{{-7, 35, 0}})
	assert.Error(t, err)

	_, err = NewCOPTable(nil)
	assert.Error(t, err)
}

func TestNewCOPTable_SinglePoint(t *testing.T) {
	table, err := NewCOPTable([]RatingPoint{{7, 35, 4.0}})
	require.NoError(t, err)
	assert.InDelta(t, 4.0, table.At(-10, 50), 1e-9)
}
