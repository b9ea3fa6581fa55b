package sim

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"energysim/internal/building"
	"energysim/internal/heatpump"
	"energysim/internal/pv"
	"energysim/internal/weather"
)

// Tariffs prices grid exchange and attributes emissions to it.
type Tariffs struct {
	ElectricityPriceEUR float64 // EUR/kWh drawn
	FeedInTariffEUR     float64 // EUR/kWh fed in
	GridEmissionFactor  float64 // kg CO2/kWh, both directions
}

// DefaultTariffs reflects a typical German household contract.
func DefaultTariffs() Tariffs {
	return Tariffs{
		ElectricityPriceEUR: 0.32,
		FeedInTariffEUR:     0.08,
		GridEmissionFactor:  0.388,
	}
}

// Config holds the run parameters.
type Config struct {
	Start time.Time
	End   time.Time
	Step  time.Duration

	IndoorSetpointC float64
	Tariffs         Tariffs
}

func (c *Config) Validate() error {
	if !c.End.After(c.Start) {
		return fmt.Errorf("simulation end must be after start")
	}
	if c.Step <= 0 {
		return fmt.Errorf("simulation step must be positive")
	}
	return nil
}

// Steps returns the number of whole steps in the configured range.
func (c *Config) Steps() int {
	return int(c.End.Sub(c.Start) / c.Step)
}

// State is the externally visible engine state.
type State struct {
	Time    time.Time `json:"time"`
	Speed   float64   `json:"speed"`
	Running bool      `json:"running"`
	Step    int       `json:"step"`
	Steps   int       `json:"steps"`
	Error   string    `json:"error,omitempty"`
}

// Callback receives simulation events. All methods are invoked from the
// engine goroutine; implementations must not call back into the engine.
type Callback interface {
	OnState(state State)
	OnStep(record StepRecord)
	OnSummary(summary Summary)
}

// Engine couples the building, heat pump and PV models and drives them over
// the weather series step by step. It runs either in batch via Run or
// interactively via Start/Pause at a configurable speed.
type Engine struct {
	mu  sync.Mutex
	cfg Config

	weather  *weather.Series
	building *building.Model
	pump     *heatpump.Unit
	array    *pv.Array
	callback Callback

	runID   uuid.UUID
	running bool
	speed   float64
	simTime time.Time
	carry   time.Duration
	stepIdx int
	records []StepRecord
	failure error

	stopCh chan struct{}
}

// New validates the configuration and checks that the weather series covers
// the requested range without unresolvable gaps, so data problems surface
// before the first step. The callback may be nil.
func New(cfg Config, series *weather.Series, b *building.Model, pump *heatpump.Unit, array *pv.Array, cb Callback) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tr, ok := series.TimeRange()
	if !ok {
		return nil, fmt.Errorf("weather series is empty")
	}
	// The last step samples weather at End-Step, so End itself need not be
	// covered.
	lastSample := cfg.End.Add(-cfg.Step)
	if !tr.Contains(cfg.Start) || !tr.Contains(lastSample) {
		return nil, fmt.Errorf("weather data covers %s to %s, run needs %s to %s",
			tr.Start.Format(time.RFC3339), tr.End.Format(time.RFC3339),
			cfg.Start.Format(time.RFC3339), lastSample.Format(time.RFC3339))
	}
	if err := series.CheckGaps(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:      cfg,
		weather:  series,
		building: b,
		pump:     pump,
		array:    array,
		callback: cb,
		runID:    uuid.New(),
		speed:    3600,
		simTime:  cfg.Start,
	}, nil
}

// RunID identifies this engine's run in exports and messages.
func (e *Engine) RunID() string { return e.runID.String() }

// Config returns the run parameters.
func (e *Engine) Config() Config { return e.cfg }

// State returns the current engine state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	s := State{
		Time:    e.simTime,
		Speed:   e.speed,
		Running: e.running,
		Step:    e.stepIdx,
		Steps:   e.cfg.Steps(),
	}
	if e.failure != nil {
		s.Error = e.failure.Error()
	}
	return s
}

// Records returns a copy of the step records produced so far.
func (e *Engine) Records() []StepRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]StepRecord, len(e.records))
	copy(out, e.records)
	return out
}

// Err returns the error that stopped an interactive run, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.failure
}

// Run executes the whole simulation synchronously and returns the summary.
// Cancellation is honored at step boundaries only; a started step always
// completes.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()

	for t := e.cfg.Start; t.Before(e.cfg.End); t = t.Add(e.cfg.Step) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := e.stepLocked(t)
		if err != nil {
			return nil, err
		}
		e.simTime = t.Add(e.cfg.Step)
		if e.callback != nil {
			e.callback.OnStep(rec)
		}
	}

	s := Summarize(e.RunID(), e.records, e.cfg.Step.Hours(), e.cfg.Tariffs)
	if e.callback != nil {
		e.callback.OnSummary(s)
	}
	return &s, nil
}

// stepLocked advances all models by one step starting at t. Must be called
// with mu held.
func (e *Engine) stepLocked(t time.Time) (StepRecord, error) {
	w, err := e.weather.At(t)
	if err != nil {
		return StepRecord{}, err
	}
	stepHours := e.cfg.Step.Hours()

	// Demand is computed against the setpoint, never against the evolving
	// indoor temperature within the same step.
	loads := e.building.ComputeLoads(w.TemperatureC, w.IrradianceOn, e.building.Setpoint())
	demandKWh := loads.NetDemandW() / 1000 * stepHours

	pumpSpec := e.pump.Spec()
	flowTemp := pumpSpec.FlowTemperature(w.TemperatureC, e.building.Setpoint())
	out := e.pump.Dispatch(w.TemperatureC, flowTemp, demandKWh, stepHours)
	e.building.AddUnmetDemand(out.UnmetKWh)

	heatDeliveredW := out.HeatOutputKWh * 1000 / stepHours
	indoor := e.building.Advance(loads, heatDeliveredW, e.building.InternalGains(t.Hour()), stepHours)
	if math.IsNaN(indoor) || indoor < minSaneIndoorC || indoor > maxSaneIndoorC {
		err := &InstabilityError{Step: e.stepIdx, IndoorTempC: indoor}
		e.failure = err
		return StepRecord{}, err
	}

	poa := e.array.PlaneIrradiance(w.GlobalRadiation)
	dcKWh, acKWh := e.array.Produce(poa, w.TemperatureC, stepHours)

	// Grid exchange: PV covers the heat pump first, the remainder splits
	// into draw and feed. Every kWh appears exactly once.
	selfKWh := math.Min(acKWh, out.PowerInputKWh)
	gridDrawKWh := out.PowerInputKWh - selfKWh
	gridFeedKWh := acKWh - selfKWh

	// The recorded COP is the rated value at the step's operating point,
	// independent of cycling penalties. Zero outside the envelope.
	ratedCOP := 0.0
	if !out.EnvelopeViolation {
		ratedCOP = pumpSpec.Table.At(w.TemperatureC, flowTemp)
	}

	rec := StepRecord{
		Timestamp:          t,
		OutsideTemperature: w.TemperatureC,
		FlowTemperature:    flowTemp,
		SolarRadiation:     w.GlobalRadiation,
		HeatDemandKWh:      demandKWh,
		HeatOutputKWh:      out.HeatOutputKWh,
		COP:                ratedCOP,
		PowerInputKWh:      out.PowerInputKWh,
		PVDCOutputKWh:      dcKWh,
		PVACOutputKWh:      acKWh,

		SelfConsumptionKWh: selfKWh,
		GridDrawKWh:        gridDrawKWh,
		GridFeedKWh:        gridFeedKWh,
		IndoorTemperature:  indoor,
		HeatPumpMode:       string(e.pump.Mode()),
		UnmetDemandKWh:     out.UnmetKWh,
		EnvelopeViolation:  out.EnvelopeViolation,
		CostEUR:            gridDrawKWh*e.cfg.Tariffs.ElectricityPriceEUR - gridFeedKWh*e.cfg.Tariffs.FeedInTariffEUR,
		EmissionsKg:        (gridDrawKWh - gridFeedKWh) * e.cfg.Tariffs.GridEmissionFactor,
	}

	e.records = append(e.records, rec)
	e.stepIdx++
	return rec, nil
}

// Start begins the interactive loop. No-op when already running or failed.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running || e.failure != nil || !e.simTime.Before(e.cfg.End) {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	e.broadcastState()
	go e.loop()
}

// Pause stops the interactive loop.
func (e *Engine) Pause() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()

	e.broadcastState()
}

// SetSpeed sets the simulated seconds advanced per wall-clock second.
func (e *Engine) SetSpeed(speed float64) {
	if speed < 1 {
		speed = 1
	}
	if speed > 604800 {
		speed = 604800
	}

	e.mu.Lock()
	e.speed = speed
	e.mu.Unlock()

	e.broadcastState()
}

// Seek restarts the run and fast-forwards to the step containing t. The
// coupled models carry state between steps, so seeking replays from the
// start rather than jumping.
func (e *Engine) Seek(t time.Time) error {
	e.Pause()

	e.mu.Lock()
	if t.Before(e.cfg.Start) {
		t = e.cfg.Start
	}
	if t.After(e.cfg.End) {
		t = e.cfg.End
	}

	e.resetLocked()
	var err error
	for st := e.cfg.Start; st.Before(t); st = st.Add(e.cfg.Step) {
		if _, err = e.stepLocked(st); err != nil {
			break
		}
		e.simTime = st.Add(e.cfg.Step)
	}
	e.mu.Unlock()

	e.broadcastState()
	return err
}

// Reset returns the engine and all models to their initial state under a
// fresh run ID.
func (e *Engine) Reset() {
	e.Pause()

	e.mu.Lock()
	e.resetLocked()
	e.runID = uuid.New()
	e.mu.Unlock()

	e.broadcastState()
}

// resetLocked must be called with mu held.
func (e *Engine) resetLocked() {
	e.simTime = e.cfg.Start
	e.carry = 0
	e.stepIdx = 0
	e.records = nil
	e.failure = nil
	e.pump.Reset()
	e.building.Reset()
}

const tickInterval = 100 * time.Millisecond

func (e *Engine) loop() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			if e.tick() {
				return
			}
		}
	}
}

// tick advances as many whole steps as the elapsed simulated time allows.
// Returns true when the run ended or failed.
func (e *Engine) tick() bool {
	e.mu.Lock()

	simDelta := time.Duration(float64(tickInterval)*e.speed) + e.carry
	steps := int(simDelta / e.cfg.Step)
	e.carry = simDelta % e.cfg.Step

	var emitted []StepRecord
	ended := false
	for i := 0; i < steps; i++ {
		if !e.simTime.Before(e.cfg.End) {
			ended = true
			break
		}
		rec, err := e.stepLocked(e.simTime)
		if err != nil {
			e.failure = err
			ended = true
			break
		}
		e.simTime = e.simTime.Add(e.cfg.Step)
		emitted = append(emitted, rec)
	}
	if !e.simTime.Before(e.cfg.End) {
		ended = true
	}

	var summary Summary
	if ended {
		e.running = false
		close(e.stopCh)
		if e.failure == nil {
			summary = Summarize(e.RunID(), e.records, e.cfg.Step.Hours(), e.cfg.Tariffs)
		}
	}
	failed := e.failure != nil
	e.mu.Unlock()

	if e.callback != nil {
		for _, rec := range emitted {
			e.callback.OnStep(rec)
		}
	}
	e.broadcastState()
	if ended && !failed && e.callback != nil {
		e.callback.OnSummary(summary)
	}

	return ended
}

func (e *Engine) broadcastState() {
	e.mu.Lock()
	s := e.stateLocked()
	e.mu.Unlock()
	if e.callback != nil {
		e.callback.OnState(s)
	}
}
