package remote

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/protocol"
	"github.com/teslashibe/go-bbanim/pkg/session"
)

type statePublisher struct {
	mu     sync.Mutex
	states []protocol.StateData
}

func (p *statePublisher) PublishState(s protocol.StateData) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s)
}

func (p *statePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.states)
}

func newTestController(t *testing.T) (*Controller, *session.Manager, *statePublisher) {
	t.Helper()
	set, err := anim.LoadEmbedded(bones.NewResolver(nil))
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	mgr := session.NewManager(set, nil)
	pub := &statePublisher{}
	return New(mgr, pub), mgr, pub
}

func serve(t *testing.T, h *Controller, addr string) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h.RegisterRoutes(app)
	h.RegisterAPIRoutes(app.Group("/api"))

	go app.Listen(addr)
	time.Sleep(100 * time.Millisecond)
	return app
}

func readMessage(t *testing.T, ws *websocket.Conn) *protocol.Message {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage failed: %v", err)
	}
	return msg
}

func write(t *testing.T, ws *websocket.Conn, msg *protocol.Message) {
	t.Helper()
	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("Write error: %v", err)
	}
}

func readState(t *testing.T, ws *websocket.Conn) *protocol.StateData {
	t.Helper()
	msg := readMessage(t, ws)
	if msg.Type != protocol.TypeState {
		t.Fatalf("Type = %s, want state", msg.Type)
	}
	state, err := msg.GetStateData()
	if err != nil {
		t.Fatalf("GetStateData failed: %v", err)
	}
	return state
}

func TestNew(t *testing.T) {
	h, _, _ := newTestController(t)
	if h.Count() != 0 {
		t.Error("Count should be 0 initially")
	}
	stats := h.Stats()
	if stats.MessagesReceived != 0 || stats.MessagesSent != 0 || stats.Errors != 0 {
		t.Errorf("Unexpected initial stats: %+v", stats)
	}
	if len(h.Infos()) != 0 {
		t.Error("Infos should be empty initially")
	}
}

func TestControlChannel(t *testing.T) {
	h, mgr, pub := newTestController(t)
	app := serve(t, h, ":18091")
	defer app.Shutdown()

	sess, err := mgr.Create("wave")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18091/ws/control/"+sess.ID(), nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	// Initial state on connect
	state := readState(t, ws)
	if state.Session != sess.ID() || state.Animation != "wave" {
		t.Errorf("Unexpected initial state: %+v", state)
	}
	if h.Count() != 1 {
		t.Errorf("Count = %d, want 1", h.Count())
	}

	pause, _ := protocol.NewMessage(protocol.TypePause, nil)
	write(t, ws, pause)
	if state := readState(t, ws); state.State != "paused" {
		t.Errorf("State = %s, want paused", state.State)
	}

	resume, _ := protocol.NewMessage(protocol.TypeResume, nil)
	write(t, ws, resume)
	if state := readState(t, ws); state.State != "playing" {
		t.Errorf("State = %s, want playing", state.State)
	}

	reversed := true
	sw, _ := protocol.NewSwitchMessage(protocol.SwitchCommand{Animation: "walk", Reversed: &reversed})
	write(t, ws, sw)
	state = readState(t, ws)
	if state.Animation != "walk" || !state.Reversed {
		t.Errorf("Unexpected state after switch: %+v", state)
	}

	if pub.count() != 3 {
		t.Errorf("Published %d states, want 3", pub.count())
	}

	ping, _ := protocol.NewPingMessage("p-1")
	write(t, ws, ping)
	msg := readMessage(t, ws)
	if msg.Type != protocol.TypePong {
		t.Fatalf("Type = %s, want pong", msg.Type)
	}
	pong, err := msg.GetPongData()
	if err != nil || pong.ID != "p-1" {
		t.Errorf("GetPongData() = %+v, %v", pong, err)
	}

	bad, _ := protocol.NewSwitchMessage(protocol.SwitchCommand{Animation: "missing"})
	write(t, ws, bad)
	if msg := readMessage(t, ws); msg.Type != protocol.TypeError {
		t.Errorf("Type = %s, want error", msg.Type)
	}

	frame, _ := protocol.NewMessage(protocol.TypeFrame, nil)
	write(t, ws, frame)
	if msg := readMessage(t, ws); msg.Type != protocol.TypeError {
		t.Errorf("Type = %s, want error", msg.Type)
	}

	if h.Stats().Errors != 2 {
		t.Errorf("Errors = %d, want 2", h.Stats().Errors)
	}

	ws.Close()
	time.Sleep(100 * time.Millisecond)
	if h.Count() != 0 {
		t.Errorf("Count = %d, want 0 after disconnect", h.Count())
	}
}

func TestControlUnknownSession(t *testing.T) {
	h, _, _ := newTestController(t)
	app := serve(t, h, ":18092")
	defer app.Shutdown()

	ws, _, err := websocket.DefaultDialer.Dial("ws://localhost:18092/ws/control/nope", nil)
	if err != nil {
		t.Fatalf("WebSocket dial error: %v", err)
	}
	defer ws.Close()

	msg := readMessage(t, ws)
	if msg.Type != protocol.TypeError {
		t.Fatalf("Type = %s, want error", msg.Type)
	}
	if h.Count() != 0 {
		t.Errorf("Count = %d, want 0", h.Count())
	}
}

func TestAPIRoutes(t *testing.T) {
	h, _, _ := newTestController(t)
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	h.RegisterRoutes(app)
	h.RegisterAPIRoutes(app.Group("/api"))

	for _, path := range []string{"/api/control", "/api/control/stats"} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("GET %s = %d, want 200", path, resp.StatusCode)
		}
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/ws/control/x", nil))
	if err != nil {
		t.Fatalf("GET /ws/control/x failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("Status = %d, want 426", resp.StatusCode)
	}
}
