package player

import (
	"math"
	"time"
)

// AspectMode is how the video fits the view
type AspectMode string

const (
	AspectContain AspectMode = "contain"
	AspectCover   AspectMode = "cover"
	AspectFill    AspectMode = "fill"
)

// ParseAspectMode validates an aspect mode name
func ParseAspectMode(s string) (AspectMode, bool) {
	switch m := AspectMode(s); m {
	case AspectContain, AspectCover, AspectFill:
		return m, true
	}
	return "", false
}

// Rates are the selectable playback rates
var Rates = []float64{0.5, 0.75, 1, 1.25, 1.5, 2}

// ValidRate reports whether r is one of Rates
func ValidRate(r float64) bool {
	for _, allowed := range Rates {
		if r == allowed {
			return true
		}
	}
	return false
}

// Subtitle delay bounds, seconds
const (
	MinSubtitleDelay = -5.0
	MaxSubtitleDelay = 5.0
)

// GestureTrack follows one continuous drag
type GestureTrack struct {
	Active  bool
	OriginX float64
	OriginY float64
	Kind    GestureKind
}

// State is the transport state of one player
type State struct {
	Position         float64    `json:"position"`
	Duration         float64    `json:"duration"`
	Volume           float64    `json:"volume"`
	Rate             float64    `json:"rate"`
	Playing          bool       `json:"playing"`
	Locked           bool       `json:"locked"`
	Fullscreen       bool       `json:"fullscreen"`
	Brightness       float64    `json:"brightness"`
	SubtitlesEnabled bool       `json:"subtitles_enabled"`
	SubtitleDelay    float64    `json:"subtitle_delay"`
	Aspect           AspectMode `json:"aspect"`
	ControlsVisible  bool       `json:"controls_visible"`
	SettingsOpen     bool       `json:"settings_open"`
	Ended            bool       `json:"ended"`
	Closed           bool       `json:"closed"`

	Gesture GestureTrack `json:"-"`

	// TimerToken names the pending inactivity timer, 0 when none is pending.
	// Expiries carrying any other token are stale.
	TimerToken uint64 `json:"-"`
	lastToken  uint64
}

// NewState returns the state of a freshly attached player
func NewState() State {
	return State{
		Volume:           1,
		Rate:             1,
		Brightness:       0.8,
		SubtitlesEnabled: true,
		Aspect:           AspectContain,
		ControlsVisible:  true,
	}
}

// Tuning holds the knobs of the transition function
type Tuning struct {
	SeekStep        float64
	ControlsTimeout time.Duration
}

// DefaultTuning is a 10 second step and a 3 second inactivity timeout
func DefaultTuning() Tuning {
	return Tuning{SeekStep: 10, ControlsTimeout: 3 * time.Second}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
