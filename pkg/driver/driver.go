// Package driver advances every live session on a fixed-rate control loop
// and publishes the resulting poses.
//
// Sessions are ticked in parallel on a bounded worker pool; each loop
// iteration waits for all of them before the next one starts, so a session
// never sees two overlapping ticks.
package driver

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/rig"
	"github.com/teslashibe/go-bbanim/pkg/session"
)

// Publisher receives every frame produced by the loop.
// It is called concurrently from pool workers.
type Publisher interface {
	PublishFrame(session string, frame player.Frame, pose rig.Pose) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(session string, frame player.Frame, pose rig.Pose) error

// PublishFrame implements Publisher.
func (f PublisherFunc) PublishFrame(session string, frame player.Frame, pose rig.Pose) error {
	return f(session, frame, pose)
}

// Stats are loop counters.
type Stats struct {
	Ticks    uint64 `json:"ticks"`
	Frames   uint64 `json:"frames"`
	Errors   uint64 `json:"errors"`
	Sessions int    `json:"sessions"`
	Workers  int    `json:"workers"`
	Running  bool   `json:"running"`
}

// Driver runs the playback loop.
type Driver struct {
	sessions *session.Manager
	pub      Publisher
	rate     time.Duration
	workers  int
	pool     worker.DynamicWorkerPool
	logger   *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	tickCount  atomic.Uint64
	frameCount atomic.Uint64
	errorCount atomic.Uint64
}

// New creates a driver ticking at rate with the given number of pool
// workers. rate should be ~33ms for a 30Hz loop.
func New(sessions *session.Manager, pub Publisher, rate time.Duration, workers int) *Driver {
	if workers < 1 {
		workers = 1
	}
	return &Driver{
		sessions: sessions,
		pub:      pub,
		rate:     rate,
		workers:  workers,
		pool:     worker.NewDynamicWorkerPool(workers, 256, 1*time.Second),
		logger:   log.Component("driver"),
		stop:     make(chan struct{}),
	}
}

// Run starts the control loop. Blocks until ctx is done or Stop is called.
func (d *Driver) Run(ctx context.Context) {
	ticker := time.NewTicker(d.rate)
	defer ticker.Stop()

	d.running.Store(true)
	defer d.running.Store(false)

	d.logger.Info("driver started", "hz", 1.0/d.rate.Seconds(), "workers", d.workers)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("driver stopped", "ticks", d.tickCount.Load())
			return
		case <-d.stop:
			d.logger.Info("driver stopped", "ticks", d.tickCount.Load())
			return
		case now := <-ticker.C:
			delta := now.Sub(last).Seconds()
			last = now
			d.Step(delta)
		}
	}
}

// Stop halts the control loop.
func (d *Driver) Stop() {
	d.stopOnce.Do(func() { close(d.stop) })
}

// Step advances every session by delta seconds and publishes the frames.
// It returns the number of frames produced.
func (d *Driver) Step(delta float64) int {
	sessions := d.sessions.List()
	tick := d.tickCount.Add(1)

	var (
		wg       sync.WaitGroup
		produced atomic.Int64
	)
	for i, s := range sessions {
		wg.Add(1)
		sess := s
		d.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()

				frame, ok := sess.Tick(delta)
				if !ok {
					return nil, nil
				}
				produced.Add(1)
				d.frameCount.Add(1)

				pose := rig.Apply(frame)
				if d.pub == nil {
					return nil, nil
				}
				if err := d.pub.PublishFrame(sess.ID(), frame, pose); err != nil {
					if d.errorCount.Add(1)%100 == 1 {
						d.logger.Warn("publish failed", "session", sess.ID(), "error", err)
					}
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if tick%300 == 0 {
		d.logger.Debug("heartbeat", "ticks", tick, "frames", d.frameCount.Load(), "sessions", len(sessions))
	}
	return int(produced.Load())
}

// Stats returns the loop counters.
func (d *Driver) Stats() Stats {
	return Stats{
		Ticks:    d.tickCount.Load(),
		Frames:   d.frameCount.Load(),
		Errors:   d.errorCount.Load(),
		Sessions: d.sessions.Len(),
		Workers:  d.workers,
		Running:  d.running.Load(),
	}
}

// IsRunning reports whether Run is active.
func (d *Driver) IsRunning() bool {
	return d.running.Load()
}
