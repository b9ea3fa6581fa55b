package building

import "fmt"

// HeatingThresholdC is the outdoor temperature above which no heating is
// assumed (DIN 4710 convention).
const HeatingThresholdC = 15.0

// Layer is one material layer of a construction, inside out.
type Layer struct {
	ThicknessM   float64 // m
	Conductivity float64 // W/(m·K)
}

// Surface resistances by element kind (m²·K/W): heat flow horizontal for
// walls, upward for roofs, downward for floors.
var surfaceResistanceInside = map[ElementKind]float64{
	Wall:  0.13,
	Roof:  0.10,
	Floor: 0.17,
}

const surfaceResistanceOutside = 0.04

// Ground-coupled floors get an additional soil resistance.
const groundExtraResistance = 0.5

// UValue computes the thermal transmittance of a layered construction.
// Windows carry their rated U-value directly and are not layered.
func UValue(kind ElementKind, layers []Layer, groundCoupled bool) (float64, error) {
	rsi, ok := surfaceResistanceInside[kind]
	if !ok {
		return 0, fmt.Errorf("no layered U-value for element kind %q", kind)
	}
	if len(layers) == 0 {
		return 0, fmt.Errorf("construction needs at least one layer")
	}

	r := rsi + surfaceResistanceOutside
	for i, l := range layers {
		if l.ThicknessM <= 0 || l.Conductivity <= 0 {
			return 0, fmt.Errorf("layer %d: thickness and conductivity must be positive", i)
		}
		r += l.ThicknessM / l.Conductivity
	}
	if kind == Floor && groundCoupled {
		r += groundExtraResistance
	}
	return 1 / r, nil
}

// DesignHeatLoad returns the normative design heat load in watts at the
// given design outdoor temperature, including the 24% intermittent-heating
// supplement. The ventilation term uses the rounded norm coefficient 0.34.
func (s *Spec) DesignHeatLoad(designOutsideC, indoorC float64) float64 {
	deltaT := indoorC - designOutsideC

	var trans float64
	for _, el := range s.Elements {
		dt := deltaT
		if el.Kind == Floor && el.GroundCoupled {
			dt *= groundDeltaTFactor
		}
		trans += el.UValue * el.Area * dt
	}
	trans += s.TotalArea() * thermalBridgeUValue * deltaT

	vent := 0.34 * s.InfiltrationRate * s.VolumeM3 * deltaT

	const intermittentFactor = 1.24
	return (trans + vent) * intermittentFactor
}
