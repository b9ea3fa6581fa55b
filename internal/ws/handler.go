package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"energysim/internal/sim"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler manages WebSocket connections and routes commands to the engine.
type Handler struct {
	hub    *Hub
	engine *sim.Engine
}

func NewHandler(hub *Hub, engine *sim.Engine) *Handler {
	return &Handler{hub: hub, engine: engine}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		hub:  h.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	h.hub.Register(client)
	go client.writePump()

	// New clients immediately learn what run this is and where it stands.
	h.sendRunLoaded(client)
	h.sendSimState(client)

	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error: %v", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		log.Printf("Invalid message: %v", err)
		return
	}

	switch env.Type {
	case TypeSimStart:
		h.engine.Start()

	case TypeSimPause:
		h.engine.Pause()

	case TypeSimSetSpeed:
		var p SetSpeedPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("Invalid set_speed payload: %v", err)
			return
		}
		h.engine.SetSpeed(p.Speed)

	case TypeSimSeek:
		var p SeekPayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			log.Printf("Invalid seek payload: %v", err)
			return
		}
		t, err := time.Parse(time.RFC3339, p.Timestamp)
		if err != nil {
			log.Printf("Invalid seek timestamp: %v", err)
			return
		}
		if err := h.engine.Seek(t); err != nil {
			h.sendError(c, err.Error())
		}

	case TypeSimReset:
		h.engine.Reset()
		h.hub.Broadcast(mustEnvelope(TypeRunLoaded, RunLoadedFromEngine(h.engine)))

	default:
		log.Printf("Unknown message type: %s", env.Type)
	}
}

func (h *Handler) sendRunLoaded(c *Client) {
	h.send(c, mustEnvelope(TypeRunLoaded, RunLoadedFromEngine(h.engine)))
}

func (h *Handler) sendSimState(c *Client) {
	h.send(c, mustEnvelope(TypeSimState, SimStateFromEngine(h.engine.State())))
}

func (h *Handler) sendError(c *Client, message string) {
	h.send(c, mustEnvelope(TypeError, ErrorPayload{Message: message}))
}

func (h *Handler) send(c *Client, msg []byte) {
	if msg == nil {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

func mustEnvelope(msgType string, payload any) []byte {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		log.Printf("Error marshaling %s message: %v", msgType, err)
		return nil
	}
	return msg
}
