// bbanim serves Bedrock animations: it plays sessions on a fixed-rate loop
// and streams sampled poses over websockets.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/teslashibe/go-bbanim/internal/config"
	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/driver"
	"github.com/teslashibe/go-bbanim/pkg/remote"
	"github.com/teslashibe/go-bbanim/pkg/session"
	"github.com/teslashibe/go-bbanim/pkg/web"
)

type options struct {
	config.Config
	AccessLog bool
	Session   string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	log.Init(opts.LogLevel)

	if err := run(opts); err != nil {
		log.Error("fatal", "error", err)
		os.Exit(1)
	}
}

// parseFlags loads the environment configuration and applies flags on top.
func parseFlags() (options, error) {
	cfg, err := config.Load()
	if err != nil {
		return options{}, err
	}

	port := flag.Int("port", cfg.Port, "HTTP server port")
	fps := flag.Int("fps", cfg.FPS, "Session tick rate")
	animations := flag.String("animations", cfg.Animations, "Animation file or directory (default: bundled samples)")
	bonesFile := flag.String("bones", cfg.Bones, "YAML bone name override file")
	level := flag.String("log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	workers := flag.Int("workers", cfg.Workers, "Tick worker pool size")
	accessLog := flag.Bool("access-log", false, "Log every HTTP request")
	initial := flag.String("session", "", "Start one session on this animation at boot")
	flag.Parse()

	cfg.Port, cfg.FPS, cfg.Workers = *port, *fps, *workers
	cfg.Animations, cfg.Bones, cfg.LogLevel = *animations, *bonesFile, *level

	if err := cfg.Validate(); err != nil {
		return options{}, err
	}
	return options{Config: cfg, AccessLog: *accessLog, Session: *initial}, nil
}

func loadSet(cfg config.Config) (*anim.Set, error) {
	var overrides bones.Overrides
	if cfg.Bones != "" {
		o, err := bones.LoadOverrides(cfg.Bones)
		if err != nil {
			return nil, err
		}
		overrides = o
	}
	resolver := bones.NewResolver(overrides)

	if cfg.Animations == "" {
		return anim.LoadEmbedded(resolver)
	}
	return anim.Load(cfg.Animations, resolver)
}

func run(opts options) error {
	logger := log.Component("main")

	set, err := loadSet(opts.Config)
	if err != nil {
		return err
	}
	logger.Info("animations loaded", "count", set.Len(), "names", set.Names())

	bc := web.NewBroadcaster()
	sessions := session.NewManager(set, bc)
	drv := driver.New(sessions, bc, opts.FrameInterval(), opts.Workers)

	srv := web.NewServer(sessions, bc, web.Options{
		AccessLog: opts.AccessLog,
		Stats:     drv.Stats,
	})
	ctrl := remote.New(sessions, bc)
	ctrl.RegisterRoutes(srv.App())
	ctrl.RegisterAPIRoutes(srv.App().Group("/api"))

	if opts.Session != "" {
		s, err := sessions.Create(opts.Session)
		if err != nil {
			return err
		}
		logger.Info("boot session", "session", s.ID(), "animation", opts.Session)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go bc.Run(ctx)
	go drv.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		logger.Info("serving",
			"http", fmt.Sprintf("http://localhost:%d/api/animations", opts.Port),
			"frames", fmt.Sprintf("ws://localhost:%d/ws/frames", opts.Port),
			"control", fmt.Sprintf("ws://localhost:%d/ws/control/:id", opts.Port),
		)
		errc <- srv.Listen(opts.Addr())
	}()

	select {
	case err := <-errc:
		if err != nil {
			return err
		}
		return errors.New("server stopped")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	drv.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
