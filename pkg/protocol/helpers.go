package protocol

import (
	"time"

	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/rig"
)

// =============================================================================
// Helper functions for creating messages
// =============================================================================

// NewFrameMessage creates a frame message from a tick result and its pose
func NewFrameMessage(session string, frame player.Frame, pose rig.Pose) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Session:    session,
		Animation:  frame.Animation,
		Progress:   frame.Progress,
		LoopedTime: frame.LoopedTime,
		Iteration:  frame.Iteration,
		State:      frame.State.String(),
		Pose:       pose,
	})
}

// NewLoopEndMessage creates a loop end notification
func NewLoopEndMessage(session, animation string, iteration int) (*Message, error) {
	return NewMessage(TypeLoopEnd, LoopEndData{
		Session:   session,
		Animation: animation,
		Iteration: iteration,
	})
}

// NewFinishMessage creates a finish notification
func NewFinishMessage(session, animation string) (*Message, error) {
	return NewMessage(TypeFinish, FinishData{
		Session:   session,
		Animation: animation,
	})
}

// NewStateMessage creates a state message
func NewStateMessage(state StateData) (*Message, error) {
	return NewMessage(TypeState, state)
}

// NewErrorMessage creates an error message
func NewErrorMessage(err error) (*Message, error) {
	return NewMessage(TypeError, ErrorData{Message: err.Error()})
}

// NewSwitchMessage creates a switch command
func NewSwitchMessage(cmd SwitchCommand) (*Message, error) {
	return NewMessage(TypeSwitch, cmd)
}

// NewPingMessage creates a ping message
func NewPingMessage(id string) (*Message, error) {
	return NewMessage(TypePing, PingData{
		ID:        id,
		Timestamp: time.Now().UnixMilli(),
	})
}

// NewPongMessage creates a pong response message
func NewPongMessage(id string, pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{
		ID:        id,
		PingTS:    pingTS,
		PongTS:    pongTS,
		LatencyMs: pongTS - pingTS,
	})
}

// =============================================================================
// Helper functions for parsing messages
// =============================================================================

// GetFrameData extracts frame data from a message
func (m *Message) GetFrameData() (*FrameData, error) {
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetLoopEndData extracts loop end data from a message
func (m *Message) GetLoopEndData() (*LoopEndData, error) {
	var data LoopEndData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetFinishData extracts finish data from a message
func (m *Message) GetFinishData() (*FinishData, error) {
	var data FinishData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetStateData extracts state data from a message
func (m *Message) GetStateData() (*StateData, error) {
	var data StateData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetErrorData extracts error data from a message
func (m *Message) GetErrorData() (*ErrorData, error) {
	var data ErrorData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetSwitchCommand extracts a switch command from a message
func (m *Message) GetSwitchCommand() (*SwitchCommand, error) {
	var data SwitchCommand
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPingData extracts ping data from a message
func (m *Message) GetPingData() (*PingData, error) {
	var data PingData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetPongData extracts pong data from a message
func (m *Message) GetPongData() (*PongData, error) {
	var data PongData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// PlayerOptions converts the command into player options
func (c *SwitchCommand) PlayerOptions() []player.Option {
	var opts []player.Option
	if c.Loop != nil {
		opts = append(opts, player.WithLoop(*c.Loop))
	}
	if c.ConnectCape != nil {
		opts = append(opts, player.WithConnectCape(*c.ConnectCape))
	}
	if c.Reversed != nil {
		opts = append(opts, player.WithReversed(*c.Reversed))
	}
	if c.Speed != nil {
		opts = append(opts, player.WithSpeed(*c.Speed))
	}
	return opts
}
