package heatpump

import (
	"errors"
	"fmt"
	"math"
)

// Mode is the operating mode of the unit.
type Mode string

const (
	Off             Mode = "off"
	Running         Mode = "running"
	PartLoadCycling Mode = "part_load_cycling"
	Defrosting      Mode = "defrosting"
)

// Spec holds the immutable unit parameters.
type Spec struct {
	NominalPowerKW   float64
	Table            *COPTable
	MinOutsideTempC  float64
	MaxFlowTempC     float64
	MinPartLoadRatio float64

	// Frost-risk band: inside it, in-band runtime accumulates until a
	// defrost cycle triggers.
	DefrostBandLowC  float64
	DefrostBandHighC float64
	DefrostIntervalH float64 // in-band runtime between defrosts
	DefrostDurationH float64
	DefrostPowerKW   float64 // parasitic draw while defrosting
	// Share of nominal heat still delivered during a defrost (usually 0).
	DefrostHeatFraction float64
}

var (
	ErrNoTable        = errors.New("heat pump needs a COP table")
	ErrBadNominal     = errors.New("nominal heating power must be positive")
	ErrBadPartLoad    = errors.New("min part load ratio must be in [0, 1)")
	ErrBadDefrostBand = errors.New("defrost band low must not exceed high")
)

func (s *Spec) Validate() error {
	if s.NominalPowerKW <= 0 {
		return ErrBadNominal
	}
	if s.Table == nil {
		return ErrNoTable
	}
	if s.MinPartLoadRatio < 0 || s.MinPartLoadRatio >= 1 {
		return ErrBadPartLoad
	}
	if s.DefrostBandLowC > s.DefrostBandHighC {
		return ErrBadDefrostBand
	}
	if s.DefrostIntervalH <= 0 || s.DefrostDurationH <= 0 {
		return fmt.Errorf("defrost interval and duration must be positive")
	}
	if s.DefrostHeatFraction < 0 || s.DefrostHeatFraction > 1 {
		return fmt.Errorf("defrost heat fraction must be in [0, 1]")
	}
	return nil
}

// FlowTemperature returns the heating-curve supply temperature, sized for
// 35 °C flow at the -15 °C design point and clamped at the unit limit.
func (s *Spec) FlowTemperature(outsideTempC, targetRoomC float64) float64 {
	gradient := (35 - targetRoomC) / 35
	flow := targetRoomC + gradient*(20-outsideTempC)
	return math.Min(flow, s.MaxFlowTempC)
}

// MaxHeatPowerKW is the capacity available at the given outside temperature.
// Air-source capacity falls about 3% per kelvin below the 7 °C rating point.
func (s *Spec) MaxHeatPowerKW(outsideTempC float64) float64 {
	p := s.NominalPowerKW * (1 + (outsideTempC-7)*0.03)
	return math.Max(p, 0)
}

// State is the mutable operating state, advanced once per step.
type State struct {
	Mode         Mode
	FrostTimerH  float64 // in-band runtime since the last defrost
	DefrostLeftH float64
	RuntimeH     float64
}

// Inputs are the per-step dispatch conditions.
type Inputs struct {
	OutsideTempC float64
	FlowTempC    float64
	DemandKWh    float64
	StepHours    float64
}

// Outputs is the per-step dispatch result.
type Outputs struct {
	HeatOutputKWh float64
	PowerInputKWh float64
	COP           float64 // effective: delivered heat over electrical input
	UnmetKWh      float64
	// EnvelopeViolation flags a step outside the valid operating range.
	EnvelopeViolation bool
}

// Next is the pure transition function of the state machine: it maps the
// current state and step inputs to the successor state and outputs, with no
// side effects.
func (s *Spec) Next(st State, in Inputs) (State, Outputs) {
	// Operating envelope: outside it the unit shuts down and the whole
	// demand goes unmet. Auxiliary heating is not modeled.
	if in.OutsideTempC < s.MinOutsideTempC || in.FlowTempC > s.MaxFlowTempC {
		st.Mode = Off
		return st, Outputs{UnmetKWh: in.DemandKWh, EnvelopeViolation: true}
	}

	// An active defrost occupies the whole step: heat output is suppressed
	// (or reduced to the configured fraction) while the parasitic draw
	// continues.
	if st.DefrostLeftH > 0 {
		st.Mode = Defrosting
		st.DefrostLeftH = math.Max(0, st.DefrostLeftH-in.StepHours)
		st.RuntimeH += in.StepHours

		out := Outputs{
			HeatOutputKWh: s.NominalPowerKW * s.DefrostHeatFraction * in.StepHours,
			PowerInputKWh: s.DefrostPowerKW * in.StepHours,
		}
		out.UnmetKWh = math.Max(0, in.DemandKWh-out.HeatOutputKWh)
		if out.PowerInputKWh > 0 {
			out.COP = out.HeatOutputKWh / out.PowerInputKWh
		}
		return st, out
	}

	if in.DemandKWh <= 0 {
		st.Mode = Off
		return st, Outputs{}
	}

	cop := s.Table.At(in.OutsideTempC, in.FlowTempC)
	maxEnergy := s.MaxHeatPowerKW(in.OutsideTempC) * in.StepHours
	minEnergy := maxEnergy * s.MinPartLoadRatio

	var out Outputs
	if in.DemandKWh < minEnergy {
		// Below the modulation floor the unit cycles on/off; the duty-cycle
		// losses show up as a 10% electrical penalty scaled by idle share.
		st.Mode = PartLoadCycling
		runtimeFraction := in.DemandKWh / minEnergy
		out.HeatOutputKWh = in.DemandKWh
		out.PowerInputKWh = (out.HeatOutputKWh / cop) * (1 + 0.1*(1-runtimeFraction))
	} else {
		st.Mode = Running
		out.HeatOutputKWh = math.Min(in.DemandKWh, maxEnergy)
		out.PowerInputKWh = out.HeatOutputKWh / cop
	}
	out.UnmetKWh = math.Max(0, in.DemandKWh-out.HeatOutputKWh)
	if out.PowerInputKWh > 0 {
		out.COP = out.HeatOutputKWh / out.PowerInputKWh
	}
	st.RuntimeH += in.StepHours

	// Frost accumulates on the outdoor coil only while running inside the
	// risk band; enough of it schedules a defrost for the next step.
	if in.OutsideTempC >= s.DefrostBandLowC && in.OutsideTempC <= s.DefrostBandHighC {
		st.FrostTimerH += in.StepHours
		if st.FrostTimerH >= s.DefrostIntervalH {
			st.DefrostLeftH = s.DefrostDurationH
			st.FrostTimerH = 0
		}
	} else {
		st.FrostTimerH = 0
	}

	return st, out
}

// DefaultSpec returns a typical air/water unit of the given nominal heating
// power, rated per DefaultRatingPoints.
func DefaultSpec(nominalKW float64) Spec {
	table, _ := NewCOPTable(DefaultRatingPoints())
	return Spec{
		NominalPowerKW:   nominalKW,
		Table:            table,
		MinOutsideTempC:  -20,
		MaxFlowTempC:     55,
		MinPartLoadRatio: 0.3,

		DefrostBandLowC:  -5,
		DefrostBandHighC: 5,
		DefrostIntervalH: 4,
		DefrostDurationH: 0.5,
		DefrostPowerKW:   1,
	}
}

// Unit wraps the state machine with its mutable state. Each simulation run
// owns a private Unit; nothing is shared between runs.
type Unit struct {
	spec  Spec
	state State
}

func NewUnit(spec Spec) (*Unit, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Unit{spec: spec, state: State{Mode: Off}}, nil
}

func (u *Unit) Spec() Spec   { return u.spec }
func (u *Unit) State() State { return u.state }
func (u *Unit) Mode() Mode   { return u.state.Mode }

// Dispatch advances the unit by one step.
func (u *Unit) Dispatch(outsideTempC, flowTempC, demandKWh, stepHours float64) Outputs {
	next, out := u.spec.Next(u.state, Inputs{
		OutsideTempC: outsideTempC,
		FlowTempC:    flowTempC,
		DemandKWh:    demandKWh,
		StepHours:    stepHours,
	})
	u.state = next
	return out
}

// Reset returns the unit to its initial state.
func (u *Unit) Reset() {
	u.state = State{Mode: Off}
}
