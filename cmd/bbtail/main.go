// bbtail follows a bbanim server: it lists animations, optionally creates a
// session, and prints the frame or event stream.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-bbanim/internal/config"
	"github.com/teslashibe/go-bbanim/internal/httpc"
	"github.com/teslashibe/go-bbanim/internal/log"
	"github.com/teslashibe/go-bbanim/pkg/protocol"
)

type animationInfo struct {
	Name     string  `json:"name"`
	Duration float64 `json:"duration"`
	Loop     bool    `json:"loop"`
	Tracks   int     `json:"tracks"`
}

func main() {
	server := flag.String("server", config.ServerURL(config.DefaultServerURL), "Server base URL (overrides BBANIM_SERVER)")
	stream := flag.String("stream", "events", "Stream to follow: frames or events")
	sessionID := flag.String("session", "", "Only follow this session")
	create := flag.String("create", "", "Create a session on this animation and follow it")
	list := flag.Bool("list", false, "List animations and exit")
	limit := flag.Int("n", 0, "Stop after n messages (0 = unlimited)")
	flag.Parse()

	log.Init("info")
	logger := log.Component("bbtail")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	base := strings.TrimRight(*server, "/")

	if *list {
		var anims []animationInfo
		if err := httpc.GetJSON(ctx, base+"/api/animations", &anims); err != nil {
			logger.Error("list failed", "error", err)
			os.Exit(1)
		}
		for _, a := range anims {
			fmt.Printf("%-16s %6.2fs loop=%-5v tracks=%d\n", a.Name, a.Duration, a.Loop, a.Tracks)
		}
		return
	}

	id := *sessionID
	if *create != "" {
		var state protocol.StateData
		if err := httpc.PostJSON(ctx, base+"/api/sessions", protocol.SwitchCommand{Animation: *create}, &state); err != nil {
			logger.Error("create failed", "error", err)
			os.Exit(1)
		}
		id = state.Session
		logger.Info("session created", "session", id, "animation", state.Animation)
	}

	wsURL, err := streamURL(base, *stream, id)
	if err != nil {
		logger.Error("bad server url", "error", err)
		os.Exit(2)
	}

	if err := tail(ctx, wsURL, *limit); err != nil {
		logger.Error("stream ended", "error", err)
		os.Exit(1)
	}
}

// streamURL converts the HTTP base URL into the websocket stream URL.
func streamURL(base, stream, session string) (string, error) {
	if stream != "frames" && stream != "events" {
		return "", fmt.Errorf("unknown stream %q", stream)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/ws/" + stream
	if session != "" {
		q := u.Query()
		q.Set("session", session)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func tail(ctx context.Context, wsURL string, limit int) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	ws, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer ws.Close()

	go func() {
		<-ctx.Done()
		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		ws.Close()
	}()

	for n := 0; limit <= 0 || n < limit; n++ {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		msg, err := protocol.ParseMessage(data)
		if err != nil {
			fmt.Println(string(data))
			continue
		}
		fmt.Println(describe(msg))
	}
	return nil
}

// describe renders a message as one line.
func describe(msg *protocol.Message) string {
	switch msg.Type {
	case protocol.TypeFrame:
		if f, err := msg.GetFrameData(); err == nil {
			animated := 0
			for _, b := range f.Pose.Bones {
				if b.Animated {
					animated++
				}
			}
			return fmt.Sprintf("frame    %s %s t=%.3f iter=%d %s bones=%d",
				short(f.Session), f.Animation, f.LoopedTime, f.Iteration, f.State, animated)
		}
	case protocol.TypeLoopEnd:
		if e, err := msg.GetLoopEndData(); err == nil {
			return fmt.Sprintf("loop_end %s %s iteration=%d", short(e.Session), e.Animation, e.Iteration)
		}
	case protocol.TypeFinish:
		if e, err := msg.GetFinishData(); err == nil {
			return fmt.Sprintf("finish   %s %s", short(e.Session), e.Animation)
		}
	case protocol.TypeState:
		if s, err := msg.GetStateData(); err == nil {
			return fmt.Sprintf("state    %s %s %s speed=%.2f", short(s.Session), s.Animation, s.State, s.Speed)
		}
	}
	return fmt.Sprintf("%-8s %s", msg.Type, msg.Data)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
