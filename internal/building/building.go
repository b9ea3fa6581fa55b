package building

import (
	"errors"
	"fmt"

	"energysim/internal/model"
)

// ElementKind categorizes an envelope element.
type ElementKind string

const (
	Wall   ElementKind = "wall"
	Window ElementKind = "window"
	Roof   ElementKind = "roof"
	Floor  ElementKind = "floor"
)

const (
	// Thermal-bridge supplement applied over the whole envelope area.
	thermalBridgeUValue = 0.10 // W/(m²·K)

	// Ground-coupled floors see a damped temperature difference instead of
	// the full indoor/outdoor delta.
	groundDeltaTFactor = 0.5

	airDensity      = 1.2    // kg/m³
	airHeatCapacity = 1005.0 // J/(kg·K)
)

// EnvelopeElement is one wall, window, roof or floor surface.
type EnvelopeElement struct {
	Kind        ElementKind
	Area        float64 // m²
	Orientation model.Orientation
	UValue      float64 // W/(m²·K)

	// Window-only properties.
	GValue        float64
	ShadingFactor float64
	FrameFactor   float64

	// Floor-only: damp the temperature difference against ground.
	GroundCoupled bool
}

// Spec describes a building envelope. Static per run.
type Spec struct {
	Elements         []EnvelopeElement
	VolumeM3         float64
	InfiltrationRate float64 // air changes per hour
	CapacitanceWhK   float64 // effective thermal mass
}

var (
	ErrEmptyEnvelope  = errors.New("building envelope has no elements")
	ErrBadVolume      = errors.New("conditioned volume must be positive")
	ErrBadCapacitance = errors.New("thermal capacitance must be positive")
	ErrBadInfiltration = errors.New("infiltration rate must not be negative")
)

// Validate fails fast on configuration errors, before any loop starts.
func (s *Spec) Validate() error {
	if len(s.Elements) == 0 {
		return ErrEmptyEnvelope
	}
	if s.VolumeM3 <= 0 {
		return ErrBadVolume
	}
	if s.CapacitanceWhK <= 0 {
		return ErrBadCapacitance
	}
	if s.InfiltrationRate < 0 {
		return ErrBadInfiltration
	}
	for i, el := range s.Elements {
		if el.Area <= 0 {
			return fmt.Errorf("element %d (%s): area must be positive, got %v", i, el.Kind, el.Area)
		}
		if el.UValue <= 0 {
			return fmt.Errorf("element %d (%s): U-value must be positive, got %v", i, el.Kind, el.UValue)
		}
		if el.Kind == Window {
			if el.GValue <= 0 || el.GValue > 1 {
				return fmt.Errorf("window %d: g-value must be in (0, 1], got %v", i, el.GValue)
			}
			if el.ShadingFactor <= 0 || el.ShadingFactor > 1 {
				return fmt.Errorf("window %d: shading factor must be in (0, 1], got %v", i, el.ShadingFactor)
			}
			if el.FrameFactor <= 0 || el.FrameFactor > 1 {
				return fmt.Errorf("window %d: frame factor must be in (0, 1], got %v", i, el.FrameFactor)
			}
		}
	}
	return nil
}

// TotalArea returns the envelope area in m².
func (s *Spec) TotalArea() float64 {
	var total float64
	for _, el := range s.Elements {
		total += el.Area
	}
	return total
}

// FloorArea returns the summed floor element area, used as the heated-area
// proxy for internal gains.
func (s *Spec) FloorArea() float64 {
	var total float64
	for _, el := range s.Elements {
		if el.Kind == Floor {
			total += el.Area
		}
	}
	return total
}

// Loads is the per-step heat flow decomposition in watts.
type Loads struct {
	TransmissionW float64
	VentilationW  float64
	SolarGainW    float64
}

// NetDemandW is the heating power needed to hold the setpoint, floored at zero.
func (l Loads) NetDemandW() float64 {
	d := l.TransmissionW + l.VentilationW - l.SolarGainW
	if d < 0 {
		return 0
	}
	return d
}

// Model evolves the indoor temperature of a single thermal zone using an
// explicit first-order lumped-capacitance update. The indoor temperature is
// owned exclusively by the model and changes once per step.
type Model struct {
	spec        Spec
	ventCoeffWK float64
	setpointC   float64

	indoorTempC float64
	unmetKWh    float64
}

// NewModel validates the spec and initializes the indoor temperature to the
// setpoint.
func NewModel(spec Spec, setpointC float64) (*Model, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		spec:        spec,
		ventCoeffWK: spec.InfiltrationRate * spec.VolumeM3 * airDensity * airHeatCapacity / 3600,
		setpointC:   setpointC,
		indoorTempC: setpointC,
	}, nil
}

func (m *Model) Spec() Spec                 { return m.spec }
func (m *Model) Setpoint() float64          { return m.setpointC }
func (m *Model) IndoorTemperature() float64 { return m.indoorTempC }

// ComputeLoads returns the heat flows for one step. Transmission and
// ventilation are signed: negative when the outside is warmer. Demand is
// always computed against a fixed indoor temperature (normally the setpoint),
// never re-solved against delivered heat within the same step.
func (m *Model) ComputeLoads(outsideTempC float64, irradiance func(model.Orientation) float64, indoorTempC float64) Loads {
	deltaT := indoorTempC - outsideTempC

	var loads Loads
	for _, el := range m.spec.Elements {
		dt := deltaT
		if el.Kind == Floor && el.GroundCoupled {
			dt *= groundDeltaTFactor
		}
		loads.TransmissionW += el.UValue * el.Area * dt

		if el.Kind == Window && irradiance != nil {
			loads.SolarGainW += el.Area * el.GValue * el.FrameFactor * el.ShadingFactor * irradiance(el.Orientation)
		}
	}
	loads.TransmissionW += m.spec.TotalArea() * thermalBridgeUValue * deltaT
	loads.VentilationW = m.ventCoeffWK * deltaT

	return loads
}

// InternalGains returns occupant and appliance gains in watts for the given
// hour of day: 5 W/m² during the day (07-22h), 1 W/m² at night.
func (m *Model) InternalGains(hour int) float64 {
	perM2 := 1.0
	if hour >= 7 && hour <= 22 {
		perM2 = 5.0
	}
	return perM2 * m.spec.FloorArea()
}

// Advance applies the energy balance for one step and returns the new indoor
// temperature. If delivered heat falls short, the temperature drops; the
// shortfall is recorded by the caller, never fed back within the step.
func (m *Model) Advance(loads Loads, heatDeliveredW, internalGainsW, stepHours float64) float64 {
	netW := heatDeliveredW + loads.SolarGainW + internalGainsW - loads.TransmissionW - loads.VentilationW
	m.indoorTempC += netW * stepHours / m.spec.CapacitanceWhK
	return m.indoorTempC
}

// Reset returns the indoor temperature to the setpoint and clears the
// shortfall accumulator.
func (m *Model) Reset() {
	m.indoorTempC = m.setpointC
	m.unmetKWh = 0
}

// AddUnmetDemand accumulates heat demand the supply side could not cover.
func (m *Model) AddUnmetDemand(kWh float64) {
	if kWh > 0 {
		m.unmetKWh += kWh
	}
}

// UnmetDemandKWh returns the accumulated shortfall for the run.
func (m *Model) UnmetDemandKWh() float64 { return m.unmetKWh }
