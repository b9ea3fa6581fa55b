package pv

import (
	"errors"
	"fmt"
	"math"
)

// Standard test condition irradiance.
const referenceIrradiance = 1000.0 // W/m²

// Spec holds the immutable array and inverter parameters.
type Spec struct {
	PeakPowerKWp float64
	AzimuthDeg   float64 // 0=N, 90=E, 180=S, 270=W
	TiltDeg      float64

	TempCoeffPctPerC float64 // module power coefficient, typically -0.35
	NOCTC            float64 // nominal operating cell temperature
	MismatchFactor   float64 // module mismatch and soiling losses

	InverterEfficiency float64 // constant (euro) efficiency
	InverterACLimitKW  float64 // AC clipping limit
}

var (
	ErrBadPeakPower = errors.New("peak power must be positive")
	ErrBadInverter  = errors.New("inverter efficiency must be in (0, 1]")
)

func (s *Spec) Validate() error {
	if s.PeakPowerKWp <= 0 {
		return ErrBadPeakPower
	}
	if s.TiltDeg < 0 || s.TiltDeg > 90 {
		return fmt.Errorf("tilt must be in [0, 90] degrees, got %v", s.TiltDeg)
	}
	if s.InverterEfficiency <= 0 || s.InverterEfficiency > 1 {
		return ErrBadInverter
	}
	if s.InverterACLimitKW <= 0 {
		return fmt.Errorf("inverter AC limit must be positive")
	}
	if s.MismatchFactor <= 0 || s.MismatchFactor > 1 {
		return fmt.Errorf("mismatch factor must be in (0, 1]")
	}
	return nil
}

// Array converts irradiance and ambient temperature into electrical energy.
type Array struct {
	spec Spec
}

func NewArray(spec Spec) (*Array, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Array{spec: spec}, nil
}

func (a *Array) Spec() Spec { return a.spec }

// PlaneIrradiance maps global horizontal radiation onto the module plane
// using a directional factor (south-facing = 1.0, north ≈ 0.3) and a tilt
// derate relative to the ~35° optimum.
func (a *Array) PlaneIrradiance(globalRadiation float64) float64 {
	if globalRadiation <= 0 {
		return 0
	}
	azimuthFactor := 0.65 + 0.35*math.Cos((a.spec.AzimuthDeg-180)*math.Pi/180)
	tiltFactor := math.Cos((a.spec.TiltDeg - 35) * math.Pi / 180)
	if tiltFactor < 0.5 {
		tiltFactor = 0.5
	}
	return globalRadiation * azimuthFactor * tiltFactor
}

// CellTemperature estimates the module cell temperature from the NOCT model.
func (a *Array) CellTemperature(ambientC, planeIrradiance float64) float64 {
	if planeIrradiance <= 0 {
		return ambientC
	}
	return ambientC + (a.spec.NOCTC-20)/800*planeIrradiance
}

// Produce returns the DC and AC energy in kWh for one step. Output is zero
// at zero irradiance regardless of temperature, never negative, and AC power
// clips at the inverter limit.
func (a *Array) Produce(planeIrradiance, ambientC, stepHours float64) (dcKWh, acKWh float64) {
	if planeIrradiance <= 0 || stepHours <= 0 {
		return 0, 0
	}

	cellTemp := a.CellTemperature(ambientC, planeIrradiance)
	tempFactor := 1 + a.spec.TempCoeffPctPerC/100*(cellTemp-25)

	dcPowerKW := a.spec.PeakPowerKWp * (planeIrradiance / referenceIrradiance) * tempFactor * a.spec.MismatchFactor
	if dcPowerKW < 0 {
		dcPowerKW = 0
	}

	acPowerKW := dcPowerKW * a.spec.InverterEfficiency
	if acPowerKW > a.spec.InverterACLimitKW {
		acPowerKW = a.spec.InverterACLimitKW
	}

	return dcPowerKW * stepHours, acPowerKW * stepHours
}

// EstimateYearlyYield returns the annual energy estimate in kWh via the
// performance-ratio method.
func (a *Array) EstimateYearlyYield(yearlyRadiationKWhM2, avgTempC, systemLosses float64) float64 {
	tempLoss := 1 + a.spec.TempCoeffPctPerC/100*(avgTempC-25)
	pr := (1 - systemLosses) * tempLoss
	return a.spec.PeakPowerKWp * yearlyRadiationKWhM2 * pr
}

// DefaultSpec returns a typical residential array: south-facing at 30° tilt
// with a 10 kW inverter class sized to the array.
func DefaultSpec(peakKWp float64) Spec {
	return Spec{
		PeakPowerKWp:       peakKWp,
		AzimuthDeg:         180,
		TiltDeg:            30,
		TempCoeffPctPerC:   -0.35,
		NOCTC:              45,
		MismatchFactor:     0.95,
		InverterEfficiency: 0.96,
		InverterACLimitKW:  peakKWp,
	}
}
