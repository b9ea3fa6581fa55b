package ws

import (
	"encoding/json"
	"time"

	"energysim/internal/sim"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeSimStart    = "sim:start"
	TypeSimPause    = "sim:pause"
	TypeSimSetSpeed = "sim:set_speed"
	TypeSimSeek     = "sim:seek"
	TypeSimReset    = "sim:reset"

	// Server -> Client
	TypeSimState      = "sim:state"
	TypeStepRecord    = "step:record"
	TypeSummaryUpdate = "summary:update"
	TypeRunLoaded     = "run:loaded"
	TypeError         = "error"
)

// Client -> Server payloads

type SetSpeedPayload struct {
	Speed float64 `json:"speed"`
}

type SeekPayload struct {
	Timestamp string `json:"timestamp"`
}

// Server -> Client payloads

type SimStatePayload struct {
	Time    string  `json:"time"`
	Speed   float64 `json:"speed"`
	Running bool    `json:"running"`
	Step    int     `json:"step"`
	Steps   int     `json:"steps"`
	Error   string  `json:"error,omitempty"`
}

// RunLoadedPayload describes the configured run, sent once per connection.
type RunLoadedPayload struct {
	RunID     string `json:"run_id"`
	Start     string `json:"start"`
	End       string `json:"end"`
	StepMin   int    `json:"step_min"`
	StepCount int    `json:"step_count"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func SimStateFromEngine(s sim.State) SimStatePayload {
	return SimStatePayload{
		Time:    s.Time.Format(time.RFC3339),
		Speed:   s.Speed,
		Running: s.Running,
		Step:    s.Step,
		Steps:   s.Steps,
		Error:   s.Error,
	}
}

func RunLoadedFromEngine(e *sim.Engine) RunLoadedPayload {
	cfg := e.Config()
	return RunLoadedPayload{
		RunID:     e.RunID(),
		Start:     cfg.Start.Format(time.RFC3339),
		End:       cfg.End.Format(time.RFC3339),
		StepMin:   int(cfg.Step.Minutes()),
		StepCount: cfg.Steps(),
	}
}
