package web

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/teslashibe/go-bbanim/pkg/anim"
	"github.com/teslashibe/go-bbanim/pkg/bones"
	"github.com/teslashibe/go-bbanim/pkg/curve"
	"github.com/teslashibe/go-bbanim/pkg/player"
	"github.com/teslashibe/go-bbanim/pkg/protocol"
	"github.com/teslashibe/go-bbanim/pkg/rig"
	"github.com/teslashibe/go-bbanim/pkg/session"
)

// AnimationInfo summarizes one animation.
type AnimationInfo struct {
	Name     string       `json:"name"`
	Duration float64      `json:"duration"`
	Loop     bool         `json:"loop"`
	Bones    []bones.Bone `json:"bones"`
	Tracks   int          `json:"tracks"`
}

// TrackInfo lists the keyframes of one bone channel.
type TrackInfo struct {
	Bone      bones.Bone       `json:"bone"`
	Channel   bones.Channel    `json:"channel"`
	Keyframes []curve.Keyframe `json:"keyframes"`
}

// AnimationDetail is an animation with its tracks.
type AnimationDetail struct {
	AnimationInfo
	Channels []TrackInfo `json:"channels"`
}

// SampleResult is a one-off sample of an animation.
type SampleResult struct {
	Animation  string          `json:"animation"`
	Time       float64         `json:"time"`
	LoopedTime float64         `json:"looped_time"`
	Looping    bool            `json:"looping"`
	Samples    []player.Sample `json:"samples"`
	Pose       rig.Pose        `json:"pose"`
}

func infoFor(a *anim.Animation) AnimationInfo {
	return AnimationInfo{
		Name:     a.Name,
		Duration: a.Duration,
		Loop:     a.Loop,
		Bones:    a.Bones(),
		Tracks:   a.TrackCount(),
	}
}

// errorHandler maps domain errors to HTTP status codes.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, anim.ErrUnknownAnimation), errors.Is(err, session.ErrNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, anim.ErrConfiguration), errors.Is(err, errBadRequest):
		code = fiber.StatusBadRequest
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

var (
	errBadRequest = errors.New("bad request")
	errNotFinite  = errors.New("value must be finite")
)

func badRequest(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", errBadRequest, msg, err)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	resp := fiber.Map{
		"status":     "ok",
		"version":    Version,
		"animations": s.sessions.Set().Len(),
		"sessions":   s.sessions.Len(),
		"clients": fiber.Map{
			"frames": s.bc.Frames().ClientCount(),
			"events": s.bc.Events().ClientCount(),
		},
	}
	if s.stats != nil {
		resp["driver"] = s.stats()
	}
	return c.JSON(resp)
}

func (s *Server) handleListAnimations(c *fiber.Ctx) error {
	set := s.sessions.Set()
	out := make([]AnimationInfo, 0, set.Len())
	for _, name := range set.Names() {
		a, err := set.Get(name)
		if err != nil {
			return err
		}
		out = append(out, infoFor(a))
	}
	return c.JSON(out)
}

func (s *Server) handleGetAnimation(c *fiber.Ctx) error {
	a, err := s.sessions.Set().Get(c.Params("name"))
	if err != nil {
		return err
	}

	detail := AnimationDetail{AnimationInfo: infoFor(a)}
	a.Each(func(b bones.Bone, ch bones.Channel, t *curve.Track) {
		detail.Channels = append(detail.Channels, TrackInfo{
			Bone:      b,
			Channel:   ch,
			Keyframes: t.Keyframes(),
		})
	})
	return c.JSON(detail)
}

func (s *Server) handleSampleAnimation(c *fiber.Ctx) error {
	a, err := s.sessions.Set().Get(c.Params("name"))
	if err != nil {
		return err
	}

	t := 0.0
	if raw := c.Query("t"); raw != "" {
		t, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return badRequest("invalid t", err)
		}
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return badRequest("invalid t", errNotFinite)
		}
	}
	looping := a.Loop
	if raw := c.Query("loop"); raw != "" {
		looping, err = strconv.ParseBool(raw)
		if err != nil {
			return badRequest("invalid loop", err)
		}
	}

	looped := player.LoopedTime(t, a.Duration, looping)
	samples := player.Evaluate(a, looped, looping)
	pose := rig.Apply(player.Frame{
		Animation:  a.Name,
		Progress:   t,
		LoopedTime: looped,
		Looping:    looping,
		Samples:    samples,
	})

	return c.JSON(SampleResult{
		Animation:  a.Name,
		Time:       t,
		LoopedTime: looped,
		Looping:    looping,
		Samples:    samples,
		Pose:       pose,
	})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	list := s.sessions.List()
	out := make([]protocol.StateData, 0, len(list))
	for _, sess := range list {
		out = append(out, sess.Snapshot())
	}
	return c.JSON(out)
}

// parseCommand reads an optional switch command body.
func parseCommand(c *fiber.Ctx) (protocol.SwitchCommand, error) {
	var cmd protocol.SwitchCommand
	if len(c.Body()) == 0 {
		return cmd, nil
	}
	if err := c.BodyParser(&cmd); err != nil {
		return cmd, badRequest("invalid request body", err)
	}
	return cmd, nil
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	cmd, err := parseCommand(c)
	if err != nil {
		return err
	}

	sess, err := s.sessions.Create(cmd.Animation, cmd.PlayerOptions()...)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(sess.Snapshot())
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(sess.Snapshot())
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	if err := s.sessions.Remove(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleSwitch(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	cmd, err := parseCommand(c)
	if err != nil {
		return err
	}
	if err := sess.Switch(cmd.Animation, cmd.PlayerOptions()...); err != nil {
		return err
	}
	return s.replyState(c, sess)
}

func (s *Server) handlePause(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	sess.Pause()
	return s.replyState(c, sess)
}

func (s *Server) handleResume(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c.Params("id"))
	if err != nil {
		return err
	}
	sess.Resume()
	return s.replyState(c, sess)
}

func (s *Server) replyState(c *fiber.Ctx, sess *session.Session) error {
	state := sess.Snapshot()
	s.bc.PublishState(state)
	return c.JSON(state)
}
