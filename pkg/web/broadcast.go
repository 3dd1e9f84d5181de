package web

import (
	"context"
	"log/slog"

	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/hub"
	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/protocol"
	"github.com/teslashibe/go-bbanim/pkg/rig"
)

// Broadcaster fans session output out to websocket subscribers.
// It implements driver.Publisher and session.EventSink.
type Broadcaster struct {
	frames *hub.Hub
	events *hub.Hub
	logger *slog.Logger
}

// NewBroadcaster creates the frame and event hubs.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		frames: hub.New("frames"),
		events: hub.New("events"),
		logger: log.Component("broadcast"),
	}
}

// Run runs both hubs until ctx is done.
func (b *Broadcaster) Run(ctx context.Context) {
	go b.frames.Run(ctx)
	b.events.Run(ctx)
}

// Frames returns the frame hub.
func (b *Broadcaster) Frames() *hub.Hub {
	return b.frames
}

// Events returns the lifecycle event hub.
func (b *Broadcaster) Events() *hub.Hub {
	return b.events
}

// PublishFrame sends a pose to frame subscribers of the session.
// Frames are not encoded while nobody listens.
func (b *Broadcaster) PublishFrame(session string, frame player.Frame, pose rig.Pose) error {
	if b.frames.ClientCount() == 0 {
		return nil
	}
	msg, err := protocol.NewFrameMessage(session, frame, pose)
	if err != nil {
		return err
	}
	return b.send(b.frames, session, msg)
}

// LoopEnd publishes a loop_end event.
func (b *Broadcaster) LoopEnd(session, animation string, iteration int) {
	msg, err := protocol.NewLoopEndMessage(session, animation, iteration)
	if err == nil {
		err = b.send(b.events, session, msg)
	}
	if err != nil {
		b.logger.Warn("loop_end not published", "session", session, "error", err)
	}
}

// Finish publishes a finish event.
func (b *Broadcaster) Finish(session, animation string) {
	msg, err := protocol.NewFinishMessage(session, animation)
	if err == nil {
		err = b.send(b.events, session, msg)
	}
	if err != nil {
		b.logger.Warn("finish not published", "session", session, "error", err)
	}
}

// PublishState publishes a state event after a control change.
func (b *Broadcaster) PublishState(state protocol.StateData) {
	msg, err := protocol.NewStateMessage(state)
	if err == nil {
		err = b.send(b.events, state.Session, msg)
	}
	if err != nil {
		b.logger.Warn("state not published", "session", state.Session, "error", err)
	}
}

func (b *Broadcaster) send(h *hub.Hub, session string, msg *protocol.Message) error {
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	h.Broadcast(hub.NewJSONMessage(data).ForSession(session))
	return nil
}
