// Package remote provides a per-session websocket control channel.
// Clients connect to /ws/control/:id and send switch, pause, resume, state
// and ping messages; every command is answered with a state, pong or error
// message on the same connection.
package remote

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/protocol"
	"github.com/teslashibe/go-bbanim/pkg/session"
)

// ErrUnsupported is returned for message types the channel does not accept.
var ErrUnsupported = errors.New("unsupported message type")

// StatePublisher is told about every state change made over the channel.
type StatePublisher interface {
	PublishState(state protocol.StateData)
}

// Connection is one connected controller.
type Connection struct {
	ID        string
	Session   string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send writes a message to the controller.
func (c *Connection) Send(msg *protocol.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return c.Conn.WriteMessage(websocket.TextMessage, data)
}

func (c *Connection) touch() {
	c.mu.Lock()
	c.LastSeen = time.Now()
	c.mu.Unlock()
}

// Controller manages control connections.
type Controller struct {
	sessions  *session.Manager
	publisher StatePublisher
	logger    *slog.Logger

	mu    sync.RWMutex
	conns map[string]*Connection

	messagesReceived atomic.Uint64
	messagesSent     atomic.Uint64
	errorCount       atomic.Uint64
}

// New creates a controller. publisher may be nil.
func New(sessions *session.Manager, publisher StatePublisher) *Controller {
	return &Controller{
		sessions:  sessions,
		publisher: publisher,
		logger:    log.Component("remote"),
		conns:     make(map[string]*Connection),
	}
}

// RegisterRoutes registers the control websocket on a Fiber app.
func (h *Controller) RegisterRoutes(app *fiber.App) {
	app.Use("/ws/control", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/control/:id", websocket.New(h.handleControl))
}

// RegisterAPIRoutes registers control channel introspection routes.
func (h *Controller) RegisterAPIRoutes(api fiber.Router) {
	control := api.Group("/control")

	control.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"connections": h.Infos(),
			"count":       h.Count(),
		})
	})

	control.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.Stats())
	})
}

func (h *Controller) handleControl(c *websocket.Conn) {
	conn := &Connection{
		ID:        uuid.NewString(),
		Session:   c.Params("id"),
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	sess, err := h.sessions.Get(conn.Session)
	if err != nil {
		h.replyError(conn, fmt.Errorf("%w: %s", err, conn.Session))
		return
	}

	h.mu.Lock()
	h.conns[conn.ID] = conn
	count := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("controller connected", "session", conn.Session, "connections", count)

	defer func() {
		h.mu.Lock()
		delete(h.conns, conn.ID)
		count := len(h.conns)
		h.mu.Unlock()
		h.logger.Info("controller disconnected", "session", conn.Session, "connections", count)
	}()

	h.reply(conn, sess)

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("read ended", "session", conn.Session, "error", err)
			return
		}
		conn.touch()
		h.messagesReceived.Add(1)
		h.handleMessage(conn, data)
	}
}

func (h *Controller) handleMessage(conn *Connection, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.replyError(conn, err)
		return
	}

	if msg.Type == protocol.TypePing {
		ping, err := msg.GetPingData()
		if err != nil {
			h.replyError(conn, err)
			return
		}
		pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp, time.Now().UnixMilli())
		if err == nil {
			err = h.send(conn, pong)
		}
		if err != nil {
			h.logger.Warn("pong failed", "session", conn.Session, "error", err)
		}
		return
	}

	sess, err := h.sessions.Get(conn.Session)
	if err != nil {
		h.replyError(conn, err)
		return
	}

	changed := false
	switch msg.Type {
	case protocol.TypeSwitch:
		cmd, err := msg.GetSwitchCommand()
		if err != nil {
			h.replyError(conn, err)
			return
		}
		if err := sess.Switch(cmd.Animation, cmd.PlayerOptions()...); err != nil {
			h.replyError(conn, err)
			return
		}
		changed = true

	case protocol.TypePause:
		changed = sess.Pause()

	case protocol.TypeResume:
		changed = sess.Resume()

	case protocol.TypeState:
		// State query

	default:
		h.replyError(conn, fmt.Errorf("%w: %s", ErrUnsupported, msg.Type))
		return
	}

	state := h.reply(conn, sess)
	if changed && h.publisher != nil {
		h.publisher.PublishState(state)
	}
}

func (h *Controller) reply(conn *Connection, sess *session.Session) protocol.StateData {
	state := sess.Snapshot()
	msg, err := protocol.NewStateMessage(state)
	if err == nil {
		err = h.send(conn, msg)
	}
	if err != nil {
		h.logger.Warn("state reply failed", "session", conn.Session, "error", err)
	}
	return state
}

func (h *Controller) replyError(conn *Connection, cause error) {
	h.errorCount.Add(1)
	msg, err := protocol.NewErrorMessage(cause)
	if err == nil {
		err = h.send(conn, msg)
	}
	if err != nil {
		h.logger.Warn("error reply failed", "session", conn.Session, "error", err)
	}
}

func (h *Controller) send(conn *Connection, msg *protocol.Message) error {
	h.messagesSent.Add(1)
	return conn.Send(msg)
}

// Count returns the number of connected controllers.
func (h *Controller) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Stats contains controller statistics
type Stats struct {
	Connections      int    `json:"connections"`
	MessagesReceived uint64 `json:"messages_received"`
	MessagesSent     uint64 `json:"messages_sent"`
	Errors           uint64 `json:"errors"`
}

// Stats returns controller statistics.
func (h *Controller) Stats() Stats {
	return Stats{
		Connections:      h.Count(),
		MessagesReceived: h.messagesReceived.Load(),
		MessagesSent:     h.messagesSent.Load(),
		Errors:           h.errorCount.Load(),
	}
}

// Info describes a connected controller.
type Info struct {
	ID        string    `json:"id"`
	Session   string    `json:"session"`
	Connected time.Time `json:"connected"`
	LastSeen  time.Time `json:"last_seen"`
}

// Infos returns info about all connected controllers.
func (h *Controller) Infos() []Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	infos := make([]Info, 0, len(h.conns))
	for _, c := range h.conns {
		c.mu.Lock()
		infos = append(infos, Info{
			ID:        c.ID,
			Session:   c.Session,
			Connected: c.Connected,
			LastSeen:  c.LastSeen,
		})
		c.mu.Unlock()
	}
	return infos
}
