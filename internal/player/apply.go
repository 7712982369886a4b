package player

import (
	"fmt"
	"math"
	"strings"
)

// Apply is the transition function of the transport. It never touches the
// outside world: effects are returned as commands, in execution order.
//
// Once Closed, every event is ignored. While Locked, user input is ignored
// except ToggleLock and Tap (which only toggles the unlock affordance).
func Apply(s State, e Event, t Tuning) (State, []Command) {
	if s.Closed {
		return s, nil
	}

	switch ev := e.(type) {
	case DurationKnown:
		s.Duration = finite(ev.Seconds)
		if s.Duration > 0 && s.Position > s.Duration {
			s.Position = s.Duration
		}
		return s, nil

	case PositionChanged:
		pos := finite(ev.Seconds)
		if s.Duration > 0 {
			pos = math.Min(pos, s.Duration)
		}
		s.Position = pos
		return s, nil

	case Ended:
		s.Playing = false
		s.Ended = true
		if s.Duration > 0 {
			s.Position = s.Duration
		}
		return s, nil

	case FullscreenChanged:
		s.Fullscreen = ev.Active
		return s, nil

	case FullscreenRejected:
		reason := ev.Reason
		if reason == "" {
			reason = "request rejected"
		}
		return s, []Command{CmdNotice{Title: "Fullscreen error", Detail: "Error: " + reason, Error: true}}

	case TimerExpired:
		if ev.Token == 0 || ev.Token != s.TimerToken {
			return s, nil
		}
		s.TimerToken = 0
		if !s.SettingsOpen {
			s.ControlsVisible = false
		}
		return s, nil

	case Close:
		s.Closed = true
		s.Playing = false
		s.TimerToken = 0
		s.Gesture = GestureTrack{}
		cmds := []Command{CmdCancelTimer{}}
		if s.Fullscreen {
			cmds = append(cmds, CmdExitFullscreen{})
		}
		return s, append(cmds, CmdDetach{})

	case ToggleLock:
		if !s.Locked {
			s.Locked = true
			s.ControlsVisible = false
			s.SettingsOpen = false
			s.Gesture = GestureTrack{}
			s.TimerToken = 0
			return s, []Command{CmdCancelTimer{}}
		}
		s.Locked = false
		return touch(s, t, nil)
	}

	if s.Locked {
		if _, ok := e.(Tap); ok {
			s.ControlsVisible = !s.ControlsVisible
		}
		return s, nil
	}

	switch ev := e.(type) {
	case Attached:
		var cmds []Command
		if ev.AutoFullscreen && !s.Fullscreen {
			cmds = append(cmds, CmdRequestFullscreen{})
		}
		cmds = append(cmds, CmdNotice{Title: "Loading video", Detail: "Path: " + ev.Path})
		return touch(s, t, cmds)

	case TogglePlay:
		return togglePlay(s, t)

	case DoubleTap:
		return togglePlay(s, t)

	case Tap:
		return touch(s, t, nil)

	case Skip:
		if ev.Direction == 0 {
			return s, nil
		}
		step := t.SeekStep
		if ev.Direction < 0 {
			step = -step
		}
		next, cmds := seekTo(s, s.Position+step)
		return touch(next, t, cmds)

	case SeekBy:
		next, cmds := seekTo(s, s.Position+ev.Seconds)
		return touch(next, t, cmds)

	case SeekToFraction:
		next, cmds := seekTo(s, clamp(ev.Fraction, 0, 1)*s.Duration)
		return touch(next, t, cmds)

	case ToggleFullscreen:
		if s.Fullscreen {
			return touch(s, t, []Command{CmdExitFullscreen{}})
		}
		return touch(s, t, []Command{CmdRequestFullscreen{}})

	case SelectRate:
		if !ValidRate(ev.Rate) {
			return s, nil
		}
		s.Rate = ev.Rate
		return touch(s, t, []Command{CmdSetRate{Rate: ev.Rate}})

	case SelectAspect:
		mode, ok := ParseAspectMode(string(ev.Mode))
		if !ok {
			return s, nil
		}
		s.Aspect = mode
		return touch(s, t, []Command{CmdNotice{Title: "Aspect Ratio", Detail: titleCase(string(mode))}})

	case SetVolume:
		s.Volume = clamp(ev.Value, 0, 1)
		return touch(s, t, []Command{CmdSetVolume{Volume: s.Volume}})

	case SetBrightness:
		s.Brightness = clamp(ev.Value, 0, 1)
		return touch(s, t, []Command{CmdNotice{Title: "Brightness adjusted", Detail: percent(s.Brightness)}})

	case SetSubtitleDelay:
		s.SubtitleDelay = clamp(ev.Seconds, MinSubtitleDelay, MaxSubtitleDelay)
		return touch(s, t, []Command{CmdNotice{Title: "Subtitle delay adjusted", Detail: delayLabel(s.SubtitleDelay)}})

	case ToggleSubtitles:
		s.SubtitlesEnabled = !s.SubtitlesEnabled
		return touch(s, t, nil)

	case ToggleSettings:
		s.SettingsOpen = !s.SettingsOpen
		return touch(s, t, nil)

	case GestureStart:
		s.Gesture = GestureTrack{Active: true, OriginX: ev.X, OriginY: ev.Y}
		return touch(s, t, nil)

	case GestureMove:
		return moveGesture(s, ev, t)

	case GestureEnd:
		s.Gesture = GestureTrack{}
		return s, nil
	}

	return s, nil
}

// touch records a user interaction: controls show and the inactivity timer
// restarts under a fresh token
func touch(s State, t Tuning, cmds []Command) (State, []Command) {
	s.ControlsVisible = true
	s.lastToken++
	s.TimerToken = s.lastToken
	return s, append(cmds, CmdStartTimer{Token: s.TimerToken, After: t.ControlsTimeout})
}

func togglePlay(s State, t Tuning) (State, []Command) {
	s.Playing = !s.Playing
	if s.Playing {
		s.Ended = false
		return touch(s, t, []Command{CmdPlay{}})
	}
	return touch(s, t, []Command{CmdPause{}})
}

// seekTo clamps target into [0, duration]. No command is issued when the
// position would not move.
func seekTo(s State, target float64) (State, []Command) {
	target = clamp(target, 0, s.Duration)
	if target == s.Position {
		return s, nil
	}
	s.Position = target
	if target < s.Duration {
		s.Ended = false
	}
	return s, []Command{CmdSeek{Seconds: target}}
}

func moveGesture(s State, ev GestureMove, t Tuning) (State, []Command) {
	if !s.Gesture.Active {
		return s, nil
	}

	dx := ev.X - s.Gesture.OriginX
	dy := ev.Y - s.Gesture.OriginY
	g := Continue(s.Gesture.Kind, dx, dy, ev.X, ev.View)

	var cmds []Command
	switch g.Kind {
	case GestureNone:
		return s, nil

	case GestureSeek:
		s.Gesture.Kind = GestureSeek
		s.Gesture.OriginX = ev.X
		s, cmds = seekTo(s, s.Position+float64(g.Direction)*t.SeekStep)
		title := "Forward"
		if g.Direction < 0 {
			title = "Backward"
		}
		cmds = append(cmds, CmdNotice{Title: title, Detail: fmt.Sprintf("%g seconds", t.SeekStep)})

	case GestureBrightness:
		s.Gesture.Kind = GestureBrightness
		s.Gesture.OriginY = ev.Y
		s.Brightness = clamp(s.Brightness+g.Delta, 0, 1)
		cmds = []Command{CmdNotice{Title: "Brightness", Detail: percent(s.Brightness)}}

	case GestureVolume:
		s.Gesture.Kind = GestureVolume
		s.Gesture.OriginY = ev.Y
		s.Volume = clamp(s.Volume+g.Delta, 0, 1)
		cmds = []Command{CmdSetVolume{Volume: s.Volume}, CmdNotice{Title: "Volume", Detail: percent(s.Volume)}}
	}
	return touch(s, t, cmds)
}

func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

func delayLabel(d float64) string {
	if d > 0 {
		return fmt.Sprintf("+%.1fs", d)
	}
	return fmt.Sprintf("%.1fs", d)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
