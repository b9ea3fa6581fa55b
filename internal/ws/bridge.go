package ws

import (
	"log"

	"energysim/internal/sim"
)

// Bridge implements sim.Callback and broadcasts engine events to the hub.
type Bridge struct {
	hub *Hub
}

func NewBridge(hub *Hub) *Bridge {
	return &Bridge{hub: hub}
}

func (b *Bridge) OnState(s sim.State) {
	msg, err := NewEnvelope(TypeSimState, SimStateFromEngine(s))
	if err != nil {
		log.Printf("Error marshaling sim state: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnStep(r sim.StepRecord) {
	msg, err := NewEnvelope(TypeStepRecord, r)
	if err != nil {
		log.Printf("Error marshaling step record: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}

func (b *Bridge) OnSummary(s sim.Summary) {
	msg, err := NewEnvelope(TypeSummaryUpdate, s)
	if err != nil {
		log.Printf("Error marshaling summary: %v", err)
		return
	}
	b.hub.Broadcast(msg)
}
