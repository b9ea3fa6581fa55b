package weather

import (
	"context"
	"math"
	"golang.org/x/exp/rand"
	"time"

	"energysim/internal/model"
)

// RateConstraint limits how much temperature may change over a window.
type RateConstraint struct {
	WindowHours int
	MaxDeltaC   float64
}

// DefaultRateConstraints are physical limits on outdoor temperature swings.
var DefaultRateConstraints = []RateConstraint{
	{1, 5.0},
	{4, 10.0},
	{10, 15.0},
	{14, 20.0},
}

// SyntheticProvider generates deterministic hourly weather from a climate
// model: a yearly and daily sine for temperature, a solar-elevation-based
// radiation curve, and AR(1)-correlated noise so consecutive hours stay
// plausible. The same seed always yields the same series.
type SyntheticProvider struct {
	Seed uint64
}

func NewSyntheticProvider(seed uint64) *SyntheticProvider {
	return &SyntheticProvider{Seed: seed}
}

func (p *SyntheticProvider) Name() string { return "synthetic" }

// Fetch generates hourly records covering [tr.Start, tr.End] inclusive.
func (p *SyntheticProvider) Fetch(_ context.Context, loc model.Location, tr model.TimeRange) (*Series, error) {
	rng := rand.New(rand.NewSource(p.Seed))

	start := tr.Start.Truncate(time.Hour)
	var records []model.WeatherRecord

	// AR(1) noise: alpha 0.9 gives strong hour-to-hour correlation; the
	// sqrt(1-alpha^2) factor preserves the marginal variance.
	const alpha = 0.9
	scale := math.Sqrt(1 - alpha*alpha)
	var tempNoise float64

	for t := start; !t.After(tr.End); t = t.Add(time.Hour) {
		day := float64(t.YearDay())
		hour := float64(t.Hour())

		yearly := 10 + 10*math.Sin(2*math.Pi*(day-80)/365)
		daily := 5 * math.Sin(2*math.Pi*(hour-9)/24)
		tempNoise = alpha*tempNoise + scale*rng.NormFloat64()*2
		temp := yearly + daily + tempNoise

		cloud := clampF(40+20*math.Sin(2*math.Pi*(hour-12)/24)+rng.NormFloat64()*20, 0, 100)
		radiation := p.radiation(loc, day, hour) * (1 - 0.5*cloud/100)

		wind := 3 + 2*rng.Float64()*(1+0.5*math.Sin(2*math.Pi*(hour-12)/24))
		humidity := clampF(80-temp+rng.NormFloat64()*5, 30, 100)

		var precip float64
		if cloud > 70 {
			precip = rng.ExpFloat64() * 0.1
		}

		records = append(records, model.WeatherRecord{
			Timestamp:       t,
			TemperatureC:    temp,
			GlobalRadiation: radiation,
			WindSpeedMS:     wind,
			HumidityPct:     humidity,
			CloudCoverPct:   cloud,
			Precipitation:   precip,
		})
	}

	enforceRateConstraints(records, DefaultRateConstraints)

	s := NewSeries()
	s.Add(records)
	return s, nil
}

// radiation returns clear-sky global radiation in W/m² from a simplified
// solar elevation model.
func (p *SyntheticProvider) radiation(loc model.Location, day, hour float64) float64 {
	if hour < 6 || hour > 18 {
		return 0
	}
	maxElevation := 90 - math.Abs(loc.Latitude-23.5*math.Sin(2*math.Pi*(day-172)/365))
	elevation := clampF(maxElevation*math.Sin(math.Pi*(hour-6)/12), 0, 90)
	return 1000 * math.Sin(elevation*math.Pi/180)
}

// enforceRateConstraints clamps the temperature sequence so every window
// constraint holds, using iterative forward (lookback) and backward
// (lookahead) passes to propagate limits in both directions.
func enforceRateConstraints(records []model.WeatherRecord, constraints []RateConstraint) {
	for pass := 0; pass < 50; pass++ {
		changed := false
		for i := 1; i < len(records); i++ {
			if clampToConstraints(records, i, constraints, true) {
				changed = true
			}
		}
		for i := len(records) - 2; i >= 0; i-- {
			if clampToConstraints(records, i, constraints, false) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

func clampToConstraints(records []model.WeatherRecord, i int, constraints []RateConstraint, forward bool) bool {
	lo := math.Inf(-1)
	hi := math.Inf(1)

	for _, c := range constraints {
		var j int
		if forward {
			j = i - c.WindowHours
		} else {
			j = i + c.WindowHours
		}
		if j < 0 || j >= len(records) {
			continue
		}
		ref := records[j].TemperatureC
		lo = max(lo, ref-c.MaxDeltaC)
		hi = min(hi, ref+c.MaxDeltaC)
	}

	if lo > hi {
		mid := (lo + hi) / 2
		lo, hi = mid, mid
	}

	if records[i].TemperatureC < lo {
		records[i].TemperatureC = lo
		return true
	}
	if records[i].TemperatureC > hi {
		records[i].TemperatureC = hi
		return true
	}
	return false
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
