package driver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/rig"
	"github.com/teslashibe/go-bbanim/pkg/session"
)

type capture struct {
	mu     sync.Mutex
	frames map[string][]player.Frame
	poses  map[string]rig.Pose
	fail   bool
}

func newCapture() *capture {
	return &capture{
		frames: make(map[string][]player.Frame),
		poses:  make(map[string]rig.Pose),
	}
}

func (c *capture) PublishFrame(id string, frame player.Frame, pose rig.Pose) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("publish failed")
	}
	c.frames[id] = append(c.frames[id], frame)
	c.poses[id] = pose
	return nil
}

func (c *capture) count(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.frames[id])
}

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	set, err := anim.LoadEmbedded(bones.NewResolver(nil))
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	return session.NewManager(set, nil)
}

func TestDriver_Step(t *testing.T) {
	m := newManager(t)
	pub := newCapture()
	d := New(m, pub, 10*time.Millisecond, 2)

	var ids []string
	for _, name := range []string{"wave", "walk", "bow"} {
		s, err := m.Create(name)
		if err != nil {
			t.Fatalf("Create(%s) failed: %v", name, err)
		}
		ids = append(ids, s.ID())
	}

	paused, err := m.Create("idle")
	if err != nil {
		t.Fatalf("Create(idle) failed: %v", err)
	}
	paused.Pause()

	for i := 0; i < 4; i++ {
		if got := d.Step(0.05); got != 3 {
			t.Errorf("Step %d produced %d frames, want 3", i, got)
		}
	}

	for _, id := range ids {
		if got := pub.count(id); got != 4 {
			t.Errorf("Session %s got %d frames, want 4", id, got)
		}
	}
	if got := pub.count(paused.ID()); got != 0 {
		t.Errorf("Paused session got %d frames, want 0", got)
	}

	pub.mu.Lock()
	last := pub.frames[ids[1]][3]
	pose := pub.poses[ids[1]]
	pub.mu.Unlock()
	if last.Progress < 0.199 || last.Progress > 0.201 {
		t.Errorf("Expected progress 0.2, got %v", last.Progress)
	}
	if !pose.Bone(bones.LeftLeg).Animated {
		t.Error("Expected walk pose to animate the left leg")
	}

	stats := d.Stats()
	if stats.Ticks != 4 || stats.Frames != 12 || stats.Sessions != 4 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestDriver_PublishErrors(t *testing.T) {
	m := newManager(t)
	pub := newCapture()
	pub.fail = true
	d := New(m, pub, 10*time.Millisecond, 1)

	if _, err := m.Create(""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	d.Step(0.1)
	d.Step(0.1)

	if got := d.Stats().Errors; got != 2 {
		t.Errorf("Expected 2 errors, got %d", got)
	}
}

func TestDriver_Run(t *testing.T) {
	m := newManager(t)
	var frames sync.WaitGroup
	frames.Add(1)
	var once sync.Once
	pub := PublisherFunc(func(string, player.Frame, rig.Pose) error {
		once.Do(frames.Done)
		return nil
	})
	d := New(m, pub, 5*time.Millisecond, 1)

	if _, err := m.Create("walk"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	frames.Wait()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if d.IsRunning() {
		t.Error("Expected driver to be stopped")
	}
	if d.Stats().Ticks == 0 {
		t.Error("Expected at least one tick")
	}
}

func TestDriver_Stop(t *testing.T) {
	d := New(newManager(t), nil, 5*time.Millisecond, 1)
	done := make(chan struct{})
	go func() {
		d.Run(context.Background())
		close(done)
	}()

	d.Stop()
	d.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
