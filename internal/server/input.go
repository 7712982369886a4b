package server

import (
	"errors"
	"fmt"

	"github.com/ngenohkevin/reeldeck/internal/player"
)

var (
	errUnknownAction = errors.New("unknown action")
	errMissingValue  = errors.New("value is required")
)

// actionRequest is a discrete control on the player surface
type actionRequest struct {
	Action string   `json:"action" binding:"required"`
	Value  *float64 `json:"value"`
	Mode   string   `json:"mode"`
}

// gestureRequest is one touch sample
type gestureRequest struct {
	Phase  string  `json:"phase" binding:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// mediaRequest is a callback from the video element
type mediaRequest struct {
	Event string  `json:"event" binding:"required"`
	Value float64 `json:"value"`
}

// fullscreenRequest reports the outcome of a fullscreen change
type fullscreenRequest struct {
	Active bool   `json:"active"`
	Error  string `json:"error"`
}

// simpleActions carry no argument
var simpleActions = map[string]player.Event{
	"toggle_play":       player.TogglePlay{},
	"double_tap":        player.DoubleTap{},
	"tap":               player.Tap{},
	"skip_forward":      player.Skip{Direction: 1},
	"skip_backward":     player.Skip{Direction: -1},
	"toggle_lock":       player.ToggleLock{},
	"toggle_fullscreen": player.ToggleFullscreen{},
	"toggle_subtitles":  player.ToggleSubtitles{},
	"toggle_settings":   player.ToggleSettings{},
}

// valueActions take the numeric value
var valueActions = map[string]func(float64) player.Event{
	"seek_by":            func(v float64) player.Event { return player.SeekBy{Seconds: v} },
	"seek_to_fraction":   func(v float64) player.Event { return player.SeekToFraction{Fraction: v} },
	"select_rate":        func(v float64) player.Event { return player.SelectRate{Rate: v} },
	"set_volume":         func(v float64) player.Event { return player.SetVolume{Value: v} },
	"set_brightness":     func(v float64) player.Event { return player.SetBrightness{Value: v} },
	"set_subtitle_delay": func(v float64) player.Event { return player.SetSubtitleDelay{Seconds: v} },
}

func (r actionRequest) event() (player.Event, error) {
	if ev, ok := simpleActions[r.Action]; ok {
		return ev, nil
	}

	if r.Action == "select_aspect" {
		mode, ok := player.ParseAspectMode(r.Mode)
		if !ok {
			return nil, fmt.Errorf("unknown aspect mode %q", r.Mode)
		}
		return player.SelectAspect{Mode: mode}, nil
	}

	build, ok := valueActions[r.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownAction, r.Action)
	}
	if r.Value == nil {
		return nil, fmt.Errorf("%w for %s", errMissingValue, r.Action)
	}
	return build(*r.Value), nil
}

func (r gestureRequest) event() (player.Event, error) {
	switch r.Phase {
	case "start":
		return player.GestureStart{X: r.X, Y: r.Y}, nil
	case "move":
		return player.GestureMove{X: r.X, Y: r.Y, View: player.Viewport{Width: r.Width, Height: r.Height}}, nil
	case "end":
		return player.GestureEnd{}, nil
	}
	return nil, fmt.Errorf("unknown gesture phase %q", r.Phase)
}

func (r mediaRequest) event() (player.Event, error) {
	switch r.Event {
	case "duration":
		return player.DurationKnown{Seconds: r.Value}, nil
	case "position":
		return player.PositionChanged{Seconds: r.Value}, nil
	case "ended":
		return player.Ended{}, nil
	}
	return nil, fmt.Errorf("unknown media event %q", r.Event)
}

func (r fullscreenRequest) event() player.Event {
	if r.Error != "" {
		return player.FullscreenRejected{Reason: r.Error}
	}
	return player.FullscreenChanged{Active: r.Active}
}
