package player

import (
	"errors"
	"log"
	"sync"

	"github.com/ngenohkevin/reeldeck/internal/subtitles"
)

// ErrPlatformRejected is returned by a Fullscreen that refuses a request
var ErrPlatformRejected = errors.New("fullscreen request rejected by platform")

// MediaHandle is the video element being driven
type MediaHandle interface {
	Play() error
	Pause() error
	Seek(seconds float64) error
	SetVolume(volume float64) error
	SetRate(rate float64) error
	Detach() error
}

// Fullscreen is the platform's fullscreen facility
type Fullscreen interface {
	RequestFullscreen() error
	ExitFullscreen() error
}

// Options configures a Controller
type Options struct {
	Path           string
	Tuning         Tuning
	Clock          Clock
	AutoFullscreen bool
	Subtitles      *subtitles.Track
	Debug          bool
}

// Snapshot is the rendered view of a player
type Snapshot struct {
	State
	Path          string `json:"path"`
	PositionLabel string `json:"position_label"`
	DurationLabel string `json:"duration_label"`
	HasSubtitles  bool   `json:"has_subtitles"`
	Cue           string `json:"cue,omitempty"`
}

// Controller runs Apply against a media handle. Dispatch calls are
// serialised; the callbacks run under the controller lock and must not call
// back into it.
type Controller struct {
	mu       sync.Mutex
	state    State
	tuning   Tuning
	media    MediaHandle
	screen   Fullscreen
	timer    timerSlot
	track    *subtitles.Track
	path     string
	auto     bool
	debug    bool
	attached bool

	OnChange func(Snapshot)
	OnNotice func(CmdNotice)
}

// NewController creates a controller. It does nothing until Attach.
func NewController(media MediaHandle, screen Fullscreen, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Tuning.SeekStep <= 0 || opts.Tuning.ControlsTimeout <= 0 {
		opts.Tuning = DefaultTuning()
	}
	return &Controller{
		state:  NewState(),
		tuning: opts.Tuning,
		media:  media,
		screen: screen,
		timer:  timerSlot{clock: opts.Clock},
		track:  opts.Subtitles,
		path:   opts.Path,
		auto:   opts.AutoFullscreen,
		debug:  opts.Debug,
	}
}

// Attach binds the controller to its media handle. Only the first call has
// any effect.
func (c *Controller) Attach() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.attached && !c.state.Closed {
		c.attached = true
		c.step(Attached{Path: c.path, AutoFullscreen: c.auto})
	}
	return c.snapshot()
}

// Dispatch applies one event and carries out the resulting commands
func (c *Controller) Dispatch(e Event) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Closed {
		c.step(e)
	}
	return c.snapshot()
}

// Snapshot returns the current view
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Close tears the player down: the timer is cancelled, fullscreen is left
// and the media handle detached. Later events are ignored.
func (c *Controller) Close() Snapshot {
	return c.Dispatch(Close{})
}

// Closed reports whether Close has run
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Closed
}

func (c *Controller) step(e Event) {
	prev := c.state
	next, cmds := Apply(c.state, e, c.tuning)
	c.state = next

	if c.debug {
		log.Printf("[player] %s: %T -> %d commands", c.path, e, len(cmds))
	}

	var followUp []Event
	for _, cmd := range cmds {
		if ev := c.execute(cmd); ev != nil {
			followUp = append(followUp, ev)
		}
	}

	if c.OnChange != nil && c.state != prev {
		c.OnChange(c.snapshot())
	}

	for _, ev := range followUp {
		c.step(ev)
	}
}

// execute carries out one command. A rejected fullscreen request comes back
// as an event to reconcile.
func (c *Controller) execute(cmd Command) Event {
	var err error
	switch cm := cmd.(type) {
	case CmdPlay:
		err = c.media.Play()
	case CmdPause:
		err = c.media.Pause()
	case CmdSeek:
		err = c.media.Seek(cm.Seconds)
	case CmdSetVolume:
		err = c.media.SetVolume(cm.Volume)
	case CmdSetRate:
		err = c.media.SetRate(cm.Rate)
	case CmdDetach:
		err = c.media.Detach()
	case CmdRequestFullscreen:
		if err = c.screen.RequestFullscreen(); err != nil {
			log.Printf("[player] %s: fullscreen request failed: %v", c.path, err)
			return FullscreenRejected{Reason: err.Error()}
		}
	case CmdExitFullscreen:
		err = c.screen.ExitFullscreen()
	case CmdStartTimer:
		c.timer.start(cm.Token, cm.After, c.expire)
	case CmdCancelTimer:
		c.timer.cancel()
	case CmdNotice:
		if c.OnNotice != nil {
			c.OnNotice(cm)
		}
	}
	if err != nil {
		log.Printf("[player] %s: %T failed: %v", c.path, cmd, err)
	}
	return nil
}

func (c *Controller) expire(token uint64) {
	c.Dispatch(TimerExpired{Token: token})
}

func (c *Controller) snapshot() Snapshot {
	snap := Snapshot{
		State:         c.state,
		Path:          c.path,
		PositionLabel: FormatClock(c.state.Position),
		DurationLabel: FormatClock(c.state.Duration),
		HasSubtitles:  c.track != nil,
	}
	if c.state.SubtitlesEnabled {
		if cue, ok := c.track.At(c.state.Position, c.state.SubtitleDelay); ok {
			snap.Cue = cue.Text
		}
	}
	return snap
}
