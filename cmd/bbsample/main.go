// bbsample plays an animation offline at a fixed rate and prints every
// sampled channel, one row per bone channel per tick.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/rig"
)

type config struct {
	Animations string
	Bones      string
	Animation  string
	FPS        int
	Seconds    float64
	Loop       string
	Speed      float64
	Reversed   bool
	Cape       bool
	Format     string
	List       bool
}

func main() {
	cfg := parseFlags()
	log.Init("warn")

	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "bbsample: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() config {
	var cfg config
	flag.StringVar(&cfg.Animations, "animations", "", "Animation file or directory (default: bundled samples)")
	flag.StringVar(&cfg.Bones, "bones", "", "YAML bone name override file")
	flag.StringVar(&cfg.Animation, "anim", "", "Animation name (default: first)")
	flag.IntVar(&cfg.FPS, "fps", 10, "Ticks per second")
	flag.Float64Var(&cfg.Seconds, "seconds", 0, "Seconds to play (default: one duration plus one tick)")
	flag.StringVar(&cfg.Loop, "loop", "", "Override looping: true or false")
	flag.Float64Var(&cfg.Speed, "speed", 1, "Playback speed")
	flag.BoolVar(&cfg.Reversed, "reversed", false, "Play backwards")
	flag.BoolVar(&cfg.Cape, "cape", false, "Connect the cape to the body")
	flag.StringVar(&cfg.Format, "format", "table", "Output format: table, json, pose")
	flag.BoolVar(&cfg.List, "list", false, "List animations and exit")
	flag.Parse()
	return cfg
}

func loadSet(cfg config) (*anim.Set, error) {
	var overrides bones.Overrides
	if cfg.Bones != "" {
		o, err := bones.LoadOverrides(cfg.Bones)
		if err != nil {
			return nil, err
		}
		overrides = o
	}
	r := bones.NewResolver(overrides)
	if cfg.Animations == "" {
		return anim.LoadEmbedded(r)
	}
	return anim.Load(cfg.Animations, r)
}

func run(cfg config, w io.Writer) error {
	if cfg.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", cfg.FPS)
	}

	set, err := loadSet(cfg)
	if err != nil {
		return err
	}

	if cfg.List {
		for _, name := range set.Names() {
			a, _ := set.Get(name)
			fmt.Fprintf(w, "%s\t%.3fs\tloop=%v\ttracks=%d\n", a.Name, a.Duration, a.Loop, a.TrackCount())
		}
		return nil
	}

	opts := []player.Option{
		player.WithSpeed(cfg.Speed),
		player.WithReversed(cfg.Reversed),
		player.WithConnectCape(cfg.Cape),
	}
	if cfg.Loop != "" {
		loop, err := strconv.ParseBool(cfg.Loop)
		if err != nil {
			return fmt.Errorf("invalid -loop %q: %w", cfg.Loop, err)
		}
		opts = append(opts, player.WithLoop(loop))
	}

	var events []string
	opts = append(opts, player.WithListener(player.ListenerFuncs{
		LoopEnd: func(animation string, iteration int) {
			events = append(events, fmt.Sprintf("loop_end %s iteration=%d", animation, iteration))
		},
		Finish: func(animation string) {
			events = append(events, "finish "+animation)
		},
	}))

	p, err := player.New(set, cfg.Animation, opts...)
	if err != nil {
		return err
	}

	dt := 1 / float64(cfg.FPS)
	seconds := cfg.Seconds
	if seconds <= 0 {
		seconds = p.Animation().Duration + dt
	}
	ticks := int(seconds*float64(cfg.FPS) + 0.5)

	var frames []player.Frame
	for i := 0; i < ticks; i++ {
		frame, ok := p.Tick(dt)
		if !ok {
			break
		}
		frames = append(frames, frame)
	}

	switch cfg.Format {
	case "json":
		enc := json.NewEncoder(w)
		for _, f := range frames {
			if err := enc.Encode(f); err != nil {
				return err
			}
		}
	case "pose":
		enc := json.NewEncoder(w)
		for _, f := range frames {
			if err := enc.Encode(rig.Apply(f)); err != nil {
				return err
			}
		}
	case "table":
		if err := writeTable(w, frames); err != nil {
			return err
		}
		for _, e := range events {
			fmt.Fprintln(w, e)
		}
	default:
		return fmt.Errorf("unknown format %q", cfg.Format)
	}
	return nil
}

func writeTable(w io.Writer, frames []player.Frame) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROGRESS\tTIME\tSTATE\tBONE\tCHANNEL\tX\tY\tZ")
	for _, f := range frames {
		for _, s := range f.Samples {
			fmt.Fprintf(tw, "%.3f\t%.3f\t%s\t%s\t%s\t%.3f\t%.3f\t%.3f\n",
				f.Progress, f.LoopedTime, f.State, s.Bone, s.Channel, s.Value[0], s.Value[1], s.Value[2])
		}
	}
	return tw.Flush()
}
