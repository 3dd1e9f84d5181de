// Package protocol defines the WebSocket message types exchanged between the
// animation server and its clients.
package protocol

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/teslashibe/go-bbanim/pkg/rig"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Server → Client messages
	TypeFrame   MessageType = "frame"    // Sampled pose
	TypeLoopEnd MessageType = "loop_end" // Looping animation completed an iteration
	TypeFinish  MessageType = "finish"   // Non-looping animation ended
	TypeState   MessageType = "state"    // Session playback state
	TypeError   MessageType = "error"    // Command failed

	// Client → Server messages
	TypeSwitch MessageType = "switch" // Switch animation
	TypePause  MessageType = "pause"  // Pause playback
	TypeResume MessageType = "resume" // Resume playback

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data any) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v any) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("failed to parse message: missing type")
	}
	return &msg, nil
}

// =============================================================================
// Server → Client Message Types
// =============================================================================

// FrameData carries the pose of one session after a tick
type FrameData struct {
	Session    string   `json:"session"`
	Animation  string   `json:"animation"`
	Progress   float64  `json:"progress"`
	LoopedTime float64  `json:"looped_time"`
	Iteration  int      `json:"iteration"`
	State      string   `json:"state"`
	Pose       rig.Pose `json:"pose"`
}

// LoopEndData reports a completed loop iteration
type LoopEndData struct {
	Session   string `json:"session"`
	Animation string `json:"animation"`
	Iteration int    `json:"iteration"`
}

// FinishData reports the end of a non-looping animation
type FinishData struct {
	Session   string `json:"session"`
	Animation string `json:"animation"`
}

// StateData describes a session's playback state
type StateData struct {
	Session     string   `json:"session"`
	Animation   string   `json:"animation"`
	State       string   `json:"state"`
	Progress    float64  `json:"progress"`
	LoopedTime  float64  `json:"looped_time"`
	Iteration   int      `json:"iteration"`
	Looping     bool     `json:"looping"`
	Reversed    bool     `json:"reversed"`
	ConnectCape bool     `json:"connect_cape"`
	Speed       float64  `json:"speed"`
	Animations  []string `json:"animations,omitempty"`
}

// ErrorData describes a failed command
type ErrorData struct {
	Message string `json:"message"`
}

// =============================================================================
// Client → Server Message Types
// =============================================================================

// SwitchCommand switches a session to another animation.
// Nil fields keep the session defaults.
type SwitchCommand struct {
	Animation   string   `json:"animation"`
	Loop        *bool    `json:"loop,omitempty"`
	ConnectCape *bool    `json:"connect_cape,omitempty"`
	Reversed    *bool    `json:"reversed,omitempty"`
	Speed       *float64 `json:"speed,omitempty"`
}

// =============================================================================
// Bidirectional Message Types
// =============================================================================

// PingData contains ping information
type PingData struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"ts"`
}

// PongData contains pong response
type PongData struct {
	ID        string `json:"id"`
	PingTS    int64  `json:"ping_ts"`
	PongTS    int64  `json:"pong_ts"`
	LatencyMs int64  `json:"latency_ms"`
}
