package player

// Event is anything that can move the transport state: user input, media
// handle callbacks, platform callbacks and timer expiry
type Event interface {
	event()
}

// Attached is delivered once, when the controller binds to its media handle
type Attached struct {
	Path           string
	AutoFullscreen bool
}

// Discrete user input
type (
	TogglePlay       struct{}
	DoubleTap        struct{}
	Tap              struct{}
	Skip             struct{ Direction int }
	SeekBy           struct{ Seconds float64 }
	SeekToFraction   struct{ Fraction float64 }
	ToggleLock       struct{}
	ToggleFullscreen struct{}
	SelectRate       struct{ Rate float64 }
	SelectAspect     struct{ Mode AspectMode }
	ToggleSubtitles  struct{}
	ToggleSettings   struct{}
	Close            struct{}
)

// Slider input, absolute values
type (
	SetVolume        struct{ Value float64 }
	SetBrightness    struct{ Value float64 }
	SetSubtitleDelay struct{ Seconds float64 }
)

// Viewport is the size of the surface receiving touches
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Touch drags
type (
	GestureStart struct{ X, Y float64 }
	GestureMove  struct {
		X, Y float64
		View Viewport
	}
	GestureEnd struct{}
)

// Media handle callbacks
type (
	DurationKnown   struct{ Seconds float64 }
	PositionChanged struct{ Seconds float64 }
	Ended           struct{}
)

// Platform callbacks
type (
	FullscreenChanged  struct{ Active bool }
	FullscreenRejected struct{ Reason string }
)

// TimerExpired fires when the inactivity timer named by Token runs out
type TimerExpired struct{ Token uint64 }

func (Attached) event()           {}
func (TogglePlay) event()         {}
func (DoubleTap) event()          {}
func (Tap) event()                {}
func (Skip) event()               {}
func (SeekBy) event()             {}
func (SeekToFraction) event()     {}
func (ToggleLock) event()         {}
func (ToggleFullscreen) event()   {}
func (SelectRate) event()         {}
func (SelectAspect) event()       {}
func (ToggleSubtitles) event()    {}
func (ToggleSettings) event()     {}
func (Close) event()              {}
func (SetVolume) event()          {}
func (SetBrightness) event()      {}
func (SetSubtitleDelay) event()   {}
func (GestureStart) event()       {}
func (GestureMove) event()        {}
func (GestureEnd) event()         {}
func (DurationKnown) event()      {}
func (PositionChanged) event()    {}
func (Ended) event()              {}
func (FullscreenChanged) event()  {}
func (FullscreenRejected) event() {}
func (TimerExpired) event()       {}
