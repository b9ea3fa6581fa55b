package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energysim/internal/sim"
	"energysim/internal/weather"
)

// testEngine builds a short run wired to a bridge on a separate hub so its
// broadcasts never interfere with the handler under test.
func testEngine(t *testing.T) *sim.Engine {
	t.Helper()
	sc := sim.DefaultScenario()
	sc.Config.End = sc.Config.Start.Add(6 * time.Hour)

	series, err := weather.NewSyntheticProvider(42).Fetch(context.Background(), sc.Location, sc.TimeRange())
	require.NoError(t, err)

	engine, err := sc.NewEngine(series, NewBridge(NewHub()))
	require.NoError(t, err)
	return engine
}

func dialHandler(t *testing.T, handler *Handler) (*websocket.Conn, func()) {
	t.Helper()
	server := httptest.NewServer(handler)
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readJSON(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func sendJSON(t *testing.T, conn *websocket.Conn, msgType string, payload any) {
	t.Helper()
	data, err := NewEnvelope(msgType, payload)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, data))
}

func TestHandler_InitialMessages(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	env1 := readJSON(t, conn)
	assert.Equal(t, TypeRunLoaded, env1.Type)

	var rl RunLoadedPayload
	require.NoError(t, json.Unmarshal(env1.Payload, &rl))
	assert.Equal(t, engine.RunID(), rl.RunID)
	assert.Equal(t, 30, rl.StepMin)
	assert.Equal(t, 12, rl.StepCount)

	env2 := readJSON(t, conn)
	assert.Equal(t, TypeSimState, env2.Type)

	var ss SimStatePayload
	require.NoError(t, json.Unmarshal(env2.Payload, &ss))
	assert.False(t, ss.Running)
	assert.Equal(t, 3600.0, ss.Speed)
	assert.Zero(t, ss.Step)
}

func TestHandler_StartPause(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn) // run:loaded
	readJSON(t, conn) // sim:state

	sendJSON(t, conn, TypeSimStart, nil)
	require.Eventually(t, func() bool {
		return engine.State().Running
	}, 2*time.Second, 10*time.Millisecond)

	sendJSON(t, conn, TypeSimPause, nil)
	require.Eventually(t, func() bool {
		return !engine.State().Running
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_SetSpeed(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	sendJSON(t, conn, TypeSimSetSpeed, SetSpeedPayload{Speed: 7200})
	require.Eventually(t, func() bool {
		return engine.State().Speed == 7200
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_Seek(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	target := engine.Config().Start.Add(2 * time.Hour)
	sendJSON(t, conn, TypeSimSeek, SeekPayload{Timestamp: target.Format(time.RFC3339)})
	require.Eventually(t, func() bool {
		return engine.State().Time.Equal(target)
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 4, engine.State().Step)
}

func TestHandler_Reset(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	oldID := engine.RunID()
	sendJSON(t, conn, TypeSimReset, nil)

	// The reset broadcasts a fresh run:loaded with the new run ID.
	require.Eventually(t, func() bool {
		return engine.RunID() != oldID
	}, 2*time.Second, 10*time.Millisecond)

	env := readJSON(t, conn)
	assert.Equal(t, TypeRunLoaded, env.Type)

	var rl RunLoadedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &rl))
	assert.Equal(t, engine.RunID(), rl.RunID)
}

func TestHandler_InvalidMessage(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	time.Sleep(50 * time.Millisecond)

	// Connection survives and the engine is untouched.
	assert.False(t, engine.State().Running)
}

func TestHandler_InvalidSeekTimestamp(t *testing.T) {
	engine := testEngine(t)
	handler := NewHandler(NewHub(), engine)

	conn, cleanup := dialHandler(t, handler)
	defer cleanup()

	readJSON(t, conn)
	readJSON(t, conn)

	origTime := engine.State().Time

	sendJSON(t, conn, TypeSimSeek, SeekPayload{Timestamp: "not-a-timestamp"})
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, origTime, engine.State().Time)
}
