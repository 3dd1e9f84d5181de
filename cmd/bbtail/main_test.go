package main

import (
	"strings"
	"testing"

	"github.com/teslashibe/go-bbanim/pkg/protocol"
)

func TestStreamURL(t *testing.T) {
	tests := []struct {
		base, stream, session string
		want                  string
		wantErr               bool
	}{
		{"http://localhost:8080", "events", "", "ws://localhost:8080/ws/events", false},
		{"https://anim.example.com/", "frames", "abc", "wss://anim.example.com/ws/frames?session=abc", false},
		{"http://host/prefix", "frames", "", "ws://host/prefix/ws/frames", false},
		{"http://localhost:8080", "video", "", "", true},
	}

	for _, tt := range tests {
		got, err := streamURL(tt.base, tt.stream, tt.session)
		if (err != nil) != tt.wantErr {
			t.Errorf("streamURL(%q, %q) error = %v, wantErr %v", tt.base, tt.stream, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("streamURL(%q, %q) = %q, want %q", tt.base, tt.stream, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	msg, _ := protocol.NewLoopEndMessage("0123456789abcdef", "walk", 3)
	if got := describe(msg); got != "loop_end 01234567 walk iteration=3" {
		t.Errorf("describe() = %q", got)
	}

	msg, _ = protocol.NewFinishMessage("s1", "bow")
	if got := describe(msg); !strings.HasPrefix(got, "finish") || !strings.HasSuffix(got, "s1 bow") {
		t.Errorf("describe() = %q", got)
	}

	msg, _ = protocol.NewMessage(protocol.TypePong, map[string]int{"latency_ms": 3})
	if got := describe(msg); !strings.HasPrefix(got, "pong") {
		t.Errorf("describe() = %q", got)
	}
}
