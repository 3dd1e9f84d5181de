package protocol

import (
	"errors"
	"testing"

	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/curve"
	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/rig"
)

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name    string
		msgType MessageType
		data    any
		wantErr bool
	}{
		{
			name:    "loop end message",
			msgType: TypeLoopEnd,
			data:    LoopEndData{Session: "s1", Animation: "walk", Iteration: 2},
		},
		{
			name:    "nil data",
			msgType: TypePause,
			data:    nil,
		},
		{
			name:    "unencodable data",
			msgType: TypeState,
			data:    make(chan int),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := NewMessage(tt.msgType, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewMessage() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if msg.Type != tt.msgType {
				t.Errorf("NewMessage() type = %v, want %v", msg.Type, tt.msgType)
			}
			if msg.Timestamp == 0 {
				t.Error("NewMessage() timestamp should be set")
			}
		})
	}
}

func TestFrameMessage(t *testing.T) {
	frame := player.Frame{
		Animation:  "wave",
		Progress:   1.75,
		LoopedTime: 0.25,
		Iteration:  1,
		State:      player.StatePlaying,
		Samples: []player.Sample{
			{Bone: bones.Head, Channel: bones.Position, Value: curve.Vec3{0, 1, 0}},
		},
	}

	msg, err := NewFrameMessage("s1", frame, rig.Apply(frame))
	if err != nil {
		t.Fatalf("NewFrameMessage() error = %v", err)
	}

	data, err := msg.Bytes()
	if err != nil {
		t.Fatalf("Bytes() error = %v", err)
	}
	parsed, err := ParseMessage(data)
	if err != nil {
		t.Fatalf("ParseMessage() error = %v", err)
	}
	if parsed.Type != TypeFrame {
		t.Errorf("Type = %v, want %v", parsed.Type, TypeFrame)
	}

	fd, err := parsed.GetFrameData()
	if err != nil {
		t.Fatalf("GetFrameData() error = %v", err)
	}
	if fd.Session != "s1" || fd.Animation != "wave" || fd.State != "playing" {
		t.Errorf("Unexpected frame header: %+v", fd)
	}
	if fd.LoopedTime != 0.25 || fd.Iteration != 1 {
		t.Errorf("LoopedTime/Iteration = %v/%d, want 0.25/1", fd.LoopedTime, fd.Iteration)
	}

	head := fd.Pose.Bone(bones.Head)
	if head.Position != (curve.Vec3{0, 1, 0}) || !head.Animated {
		t.Errorf("Head transform = %+v, want animated position [0 1 0]", head)
	}
}

func TestLifecycleMessages(t *testing.T) {
	msg, err := NewLoopEndMessage("s1", "walk", 3)
	if err != nil {
		t.Fatalf("NewLoopEndMessage() error = %v", err)
	}
	le, err := msg.GetLoopEndData()
	if err != nil || le.Iteration != 3 || le.Animation != "walk" {
		t.Errorf("GetLoopEndData() = %+v, %v", le, err)
	}

	msg, err = NewFinishMessage("s2", "bow")
	if err != nil {
		t.Fatalf("NewFinishMessage() error = %v", err)
	}
	fin, err := msg.GetFinishData()
	if err != nil || fin.Session != "s2" || fin.Animation != "bow" {
		t.Errorf("GetFinishData() = %+v, %v", fin, err)
	}

	msg, err = NewErrorMessage(errors.New("boom"))
	if err != nil {
		t.Fatalf("NewErrorMessage() error = %v", err)
	}
	ed, err := msg.GetErrorData()
	if err != nil || ed.Message != "boom" {
		t.Errorf("GetErrorData() = %+v, %v", ed, err)
	}
}

func TestSwitchCommand(t *testing.T) {
	loop, speed := true, 2.0
	msg, err := NewSwitchMessage(SwitchCommand{Animation: "walk", Loop: &loop, Speed: &speed})
	if err != nil {
		t.Fatalf("NewSwitchMessage() error = %v", err)
	}

	cmd, err := msg.GetSwitchCommand()
	if err != nil {
		t.Fatalf("GetSwitchCommand() error = %v", err)
	}
	if cmd.Animation != "walk" || cmd.Loop == nil || !*cmd.Loop {
		t.Errorf("Unexpected command: %+v", cmd)
	}
	if cmd.Reversed != nil || cmd.ConnectCape != nil {
		t.Error("Unset fields should stay nil")
	}
	if got := len(cmd.PlayerOptions()); got != 2 {
		t.Errorf("PlayerOptions() len = %d, want 2", got)
	}
}

func TestStateMessage(t *testing.T) {
	msg, err := NewStateMessage(StateData{Session: "s1", Animation: "idle", State: "paused", Speed: 1})
	if err != nil {
		t.Fatalf("NewStateMessage() error = %v", err)
	}
	sd, err := msg.GetStateData()
	if err != nil || sd.State != "paused" || sd.Animation != "idle" {
		t.Errorf("GetStateData() = %+v, %v", sd, err)
	}
}

func TestPingPong(t *testing.T) {
	ping, err := NewPingMessage("p1")
	if err != nil {
		t.Fatalf("NewPingMessage() error = %v", err)
	}
	pd, err := ping.GetPingData()
	if err != nil || pd.ID != "p1" || pd.Timestamp == 0 {
		t.Errorf("GetPingData() = %+v, %v", pd, err)
	}

	pong, err := NewPongMessage("p1", 1000, 1025)
	if err != nil {
		t.Fatalf("NewPongMessage() error = %v", err)
	}
	po, err := pong.GetPongData()
	if err != nil {
		t.Fatalf("GetPongData() error = %v", err)
	}
	if po.LatencyMs != 25 {
		t.Errorf("LatencyMs = %v, want 25", po.LatencyMs)
	}
}

func TestParseMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "hello"},
		{"missing type", `{"data": {}}`},
		{"wrong type shape", `{"type": 5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseMessage([]byte(tt.data)); err == nil {
				t.Error("ParseMessage() should fail")
			}
		})
	}
}

func TestParseData_Nil(t *testing.T) {
	msg := &Message{Type: TypePause}
	var cmd SwitchCommand
	if err := msg.ParseData(&cmd); err != nil {
		t.Errorf("ParseData() with no data should succeed, got %v", err)
	}
}
