package heatpump

import (
	"fmt"
	"sort"
)

// RatingPoint is one manufacturer rating: the COP measured at an
// (outside temperature, flow temperature) pair.
type RatingPoint struct {
	OutsideTempC float64
	FlowTempC    float64
	COP          float64
}

// COPTable interpolates a full rating grid bilinearly. Lookups beyond the
// grid clamp to the nearest boundary pair instead of extrapolating.
type COPTable struct {
	outside []float64
	flow    []float64
	cop     [][]float64 // [outside index][flow index]
}

// NewCOPTable builds a table from rating points. The points must form a
// complete grid: every outside temperature rated at every flow temperature.
func NewCOPTable(points []RatingPoint) (*COPTable, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("COP table needs at least one rating point")
	}

	byPair := make(map[[2]float64]float64, len(points))
	outSet := make(map[float64]bool)
	flowSet := make(map[float64]bool)
	for _, p := range points {
		if p.COP <= 0 {
			return nil, fmt.Errorf("rating point (%.1f, %.1f): COP must be positive, got %v", p.OutsideTempC, p.FlowTempC, p.COP)
		}
		byPair[[2]float64{p.OutsideTempC, p.FlowTempC}] = p.COP
		outSet[p.OutsideTempC] = true
		flowSet[p.FlowTempC] = true
	}

	t := &COPTable{
		outside: sortedKeys(outSet),
		flow:    sortedKeys(flowSet),
	}
	t.cop = make([][]float64, len(t.outside))
	for i, ot := range t.outside {
		t.cop[i] = make([]float64, len(t.flow))
		for j, ft := range t.flow {
			cop, ok := byPair[[2]float64{ot, ft}]
			if !ok {
				return nil, fmt.Errorf("COP table is not a full grid: missing rating at (%.1f, %.1f)", ot, ft)
			}
			t.cop[i][j] = cop
		}
	}
	return t, nil
}

// At returns the bilinearly interpolated COP for the four rating points
// bracketing (outsideTemp, flowTemp).
func (t *COPTable) At(outsideTempC, flowTempC float64) float64 {
	i0, i1, fo := bracket(t.outside, outsideTempC)
	j0, j1, ff := bracket(t.flow, flowTempC)

	low := t.cop[i0][j0] + (t.cop[i0][j1]-t.cop[i0][j0])*ff
	high := t.cop[i1][j0] + (t.cop[i1][j1]-t.cop[i1][j0])*ff
	return low + (high-low)*fo
}

// bracket finds the neighboring axis indices around v and the interpolation
// fraction between them, clamped to the axis bounds.
func bracket(axis []float64, v float64) (lo, hi int, frac float64) {
	if v <= axis[0] {
		return 0, 0, 0
	}
	last := len(axis) - 1
	if v >= axis[last] {
		return last, last, 0
	}
	hi = sort.SearchFloat64s(axis, v)
	if axis[hi] == v {
		return hi, hi, 0
	}
	lo = hi - 1
	frac = (v - axis[lo]) / (axis[hi] - axis[lo])
	return lo, hi, frac
}

func sortedKeys(set map[float64]bool) []float64 {
	keys := make([]float64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Float64s(keys)
	return keys
}

// DefaultRatingPoints is a typical air/water rating grid for a residential
// unit with floor heating (35 °C) and radiator (45 °C) flow temperatures.
func DefaultRatingPoints() []RatingPoint {
	return []RatingPoint{
		{-7, 35, 2.7}, {-7, 45, 2.2},
		{2, 35, 3.4}, {2, 45, 2.7},
		{7, 35, 4.0}, {7, 45, 3.2},
		{10, 35, 4.4}, {10, 45, 3.5},
	}
}
