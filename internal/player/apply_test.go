package player

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCmd[T Command](cmds []Command) (T, bool) {
	for _, c := range cmds {
		if v, ok := c.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func loaded(duration float64) State {
	s := NewState()
	s.Duration = duration
	return s
}

func TestNewState(t *testing.T) {
	s := NewState()

	assert.Equal(t, 1.0, s.Volume)
	assert.Equal(t, 1.0, s.Rate)
	assert.Equal(t, 0.8, s.Brightness)
	assert.True(t, s.SubtitlesEnabled)
	assert.True(t, s.ControlsVisible)
	assert.Equal(t, AspectContain, s.Aspect)
	assert.False(t, s.Playing)
	assert.False(t, s.Locked)
}

func TestApply_SkipClampsToDuration(t *testing.T) {
	s := loaded(100)
	s.Position = 95

	s, cmds := Apply(s, Skip{Direction: 1}, DefaultTuning())

	assert.Equal(t, 100.0, s.Position)
	seek, ok := findCmd[CmdSeek](cmds)
	require.True(t, ok)
	assert.Equal(t, 100.0, seek.Seconds)
}

func TestApply_SkipBackClampsToZero(t *testing.T) {
	s := loaded(100)
	s.Position = 3

	s, cmds := Apply(s, Skip{Direction: -1}, DefaultTuning())

	assert.Equal(t, 0.0, s.Position)
	seek, ok := findCmd[CmdSeek](cmds)
	require.True(t, ok)
	assert.Equal(t, 0.0, seek.Seconds)
}

func TestApply_SeekAtBoundaryIssuesNoSeek(t *testing.T) {
	s := loaded(100)

	s, cmds := Apply(s, Skip{Direction: -1}, DefaultTuning())

	assert.Equal(t, 0.0, s.Position)
	_, ok := findCmd[CmdSeek](cmds)
	assert.False(t, ok)
	_, ok = findCmd[CmdStartTimer](cmds)
	assert.True(t, ok, "interaction still restarts the timer")
}

func TestApply_SeekWithUnknownDuration(t *testing.T) {
	s := NewState()

	s, _ = Apply(s, SeekBy{Seconds: 30}, DefaultTuning())
	assert.Equal(t, 0.0, s.Position)
}

func TestApply_SeekToFraction(t *testing.T) {
	s := loaded(200)

	s, cmds := Apply(s, SeekToFraction{Fraction: 0.5}, DefaultTuning())
	assert.Equal(t, 100.0, s.Position)
	seek, ok := findCmd[CmdSeek](cmds)
	require.True(t, ok)
	assert.Equal(t, 100.0, seek.Seconds)

	s, _ = Apply(s, SeekToFraction{Fraction: 1.7}, DefaultTuning())
	assert.Equal(t, 200.0, s.Position)
}

func TestApply_SeekClearsEnded(t *testing.T) {
	s := loaded(100)
	s, _ = Apply(s, Ended{}, DefaultTuning())
	require.True(t, s.Ended)
	assert.Equal(t, 100.0, s.Position)

	s, _ = Apply(s, SeekBy{Seconds: -20}, DefaultTuning())
	assert.False(t, s.Ended)
	assert.Equal(t, 80.0, s.Position)
}

func TestApply_TogglePlay(t *testing.T) {
	s := loaded(100)

	s, cmds := Apply(s, TogglePlay{}, DefaultTuning())
	assert.True(t, s.Playing)
	_, ok := findCmd[CmdPlay](cmds)
	assert.True(t, ok)

	s, cmds = Apply(s, DoubleTap{}, DefaultTuning())
	assert.False(t, s.Playing)
	_, ok = findCmd[CmdPause](cmds)
	assert.True(t, ok)
}

func TestApply_VolumeAndBrightnessClamp(t *testing.T) {
	s := loaded(100)

	s, cmds := Apply(s, SetVolume{Value: 1.5}, DefaultTuning())
	assert.Equal(t, 1.0, s.Volume)
	vol, ok := findCmd[CmdSetVolume](cmds)
	require.True(t, ok)
	assert.Equal(t, 1.0, vol.Volume)

	s, _ = Apply(s, SetVolume{Value: -0.2}, DefaultTuning())
	assert.Equal(t, 0.0, s.Volume)

	s, _ = Apply(s, SetBrightness{Value: 2}, DefaultTuning())
	assert.Equal(t, 1.0, s.Brightness)

	s, _ = Apply(s, SetSubtitleDelay{Seconds: -9}, DefaultTuning())
	assert.Equal(t, MinSubtitleDelay, s.SubtitleDelay)
}

func TestApply_SelectRate(t *testing.T) {
	s := loaded(100)

	s, cmds := Apply(s, SelectRate{Rate: 1.5}, DefaultTuning())
	assert.Equal(t, 1.5, s.Rate)
	rate, ok := findCmd[CmdSetRate](cmds)
	require.True(t, ok)
	assert.Equal(t, 1.5, rate.Rate)

	before := s
	s, cmds = Apply(s, SelectRate{Rate: 3}, DefaultTuning())
	assert.Equal(t, before, s)
	assert.Empty(t, cmds)
}

func TestApply_SelectAspect(t *testing.T) {
	s := loaded(100)

	s, cmds := Apply(s, SelectAspect{Mode: AspectCover}, DefaultTuning())
	assert.Equal(t, AspectCover, s.Aspect)
	notice, ok := findCmd[CmdNotice](cmds)
	require.True(t, ok)
	assert.Equal(t, "Cover", notice.Detail)

	s, _ = Apply(s, SelectAspect{Mode: "stretch"}, DefaultTuning())
	assert.Equal(t, AspectCover, s.Aspect)
}

func TestApply_LockSuppressesInput(t *testing.T) {
	s := loaded(100)
	s.Position = 40

	s, cmds := Apply(s, ToggleLock{}, DefaultTuning())
	assert.True(t, s.Locked)
	assert.False(t, s.ControlsVisible)
	assert.Zero(t, s.TimerToken)
	assert.Equal(t, []Command{CmdCancelTimer{}}, cmds)

	locked := s
	for _, e := range []Event{TogglePlay{}, DoubleTap{}, Skip{Direction: 1}, SeekBy{Seconds: 5}, SetVolume{Value: 0.2}, SelectRate{Rate: 2}, ToggleSettings{}, GestureStart{X: 1, Y: 1}} {
		next, cmds := Apply(locked, e, DefaultTuning())
		assert.Equal(t, locked, next, "%T", e)
		assert.Empty(t, cmds, "%T", e)
	}

	// tap only toggles the unlock affordance
	s, cmds = Apply(s, Tap{}, DefaultTuning())
	assert.True(t, s.ControlsVisible)
	assert.Empty(t, cmds)

	s, cmds = Apply(s, ToggleLock{}, DefaultTuning())
	assert.False(t, s.Locked)
	assert.True(t, s.ControlsVisible)
	timer, ok := findCmd[CmdStartTimer](cmds)
	require.True(t, ok)
	assert.Equal(t, s.TimerToken, timer.Token)
	assert.Equal(t, 40.0, s.Position)
}

func TestApply_MediaCallbacksWhileLocked(t *testing.T) {
	s := loaded(0)
	s, _ = Apply(s, ToggleLock{}, DefaultTuning())

	s, _ = Apply(s, DurationKnown{Seconds: 120}, DefaultTuning())
	s, _ = Apply(s, PositionChanged{Seconds: 12}, DefaultTuning())

	assert.Equal(t, 120.0, s.Duration)
	assert.Equal(t, 12.0, s.Position)
}

func TestApply_InactivityTimer(t *testing.T) {
	tuning := Tuning{SeekStep: 10, ControlsTimeout: 3 * time.Second}
	s := loaded(100)

	s, cmds := Apply(s, Tap{}, tuning)
	first, ok := findCmd[CmdStartTimer](cmds)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, first.After)
	assert.True(t, s.ControlsVisible)

	s, cmds = Apply(s, Tap{}, tuning)
	second, ok := findCmd[CmdStartTimer](cmds)
	require.True(t, ok)
	assert.NotEqual(t, first.Token, second.Token)

	// the superseded timer is stale
	s, _ = Apply(s, TimerExpired{Token: first.Token}, tuning)
	assert.True(t, s.ControlsVisible)

	s, _ = Apply(s, TimerExpired{Token: second.Token}, tuning)
	assert.False(t, s.ControlsVisible)
	assert.Zero(t, s.TimerToken)
}

func TestApply_TimerKeepsControlsWhileSettingsOpen(t *testing.T) {
	s := loaded(100)

	s, cmds := Apply(s, ToggleSettings{}, DefaultTuning())
	require.True(t, s.SettingsOpen)
	timer, ok := findCmd[CmdStartTimer](cmds)
	require.True(t, ok)

	s, _ = Apply(s, TimerExpired{Token: timer.Token}, DefaultTuning())
	assert.True(t, s.ControlsVisible)
}

func TestApply_FullscreenToggle(t *testing.T) {
	s := loaded(100)

	_, cmds := Apply(s, ToggleFullscreen{}, DefaultTuning())
	_, ok := findCmd[CmdRequestFullscreen](cmds)
	assert.True(t, ok)

	s, _ = Apply(s, FullscreenChanged{Active: true}, DefaultTuning())
	_, cmds = Apply(s, ToggleFullscreen{}, DefaultTuning())
	_, ok = findCmd[CmdExitFullscreen](cmds)
	assert.True(t, ok)
}

func TestApply_FullscreenRejected(t *testing.T) {
	s := loaded(100)

	next, cmds := Apply(s, FullscreenRejected{Reason: "not allowed"}, DefaultTuning())

	assert.Equal(t, s, next)
	require.Len(t, cmds, 1)
	notice := cmds[0].(CmdNotice)
	assert.True(t, notice.Error)
	assert.Equal(t, "Error: not allowed", notice.Detail)
}

func TestApply_Attached(t *testing.T) {
	s := NewState()

	_, cmds := Apply(s, Attached{Path: "/Movies/a.mp4", AutoFullscreen: true}, DefaultTuning())

	require.Len(t, cmds, 3)
	assert.Equal(t, CmdRequestFullscreen{}, cmds[0])
	assert.Equal(t, CmdNotice{Title: "Loading video", Detail: "Path: /Movies/a.mp4"}, cmds[1])
	assert.IsType(t, CmdStartTimer{}, cmds[2])

	_, cmds = Apply(s, Attached{Path: "/a.mp4"}, DefaultTuning())
	_, ok := findCmd[CmdRequestFullscreen](cmds)
	assert.False(t, ok)
}

func TestApply_Close(t *testing.T) {
	s := loaded(100)
	s.Playing = true
	s, _ = Apply(s, FullscreenChanged{Active: true}, DefaultTuning())

	s, cmds := Apply(s, Close{}, DefaultTuning())
	assert.True(t, s.Closed)
	assert.False(t, s.Playing)
	assert.Equal(t, []Command{CmdCancelTimer{}, CmdExitFullscreen{}, CmdDetach{}}, cmds)

	// nothing moves a closed player
	closed := s
	for _, e := range []Event{TogglePlay{}, PositionChanged{Seconds: 50}, TimerExpired{Token: 1}, ToggleLock{}, Close{}} {
		next, cmds := Apply(closed, e, DefaultTuning())
		assert.Equal(t, closed, next, "%T", e)
		assert.Empty(t, cmds, "%T", e)
	}
}

func TestApply_PositionClampedToDuration(t *testing.T) {
	s := loaded(60)

	s, _ = Apply(s, PositionChanged{Seconds: 75}, DefaultTuning())
	assert.Equal(t, 60.0, s.Position)

	s, _ = Apply(s, DurationKnown{Seconds: 30}, DefaultTuning())
	assert.Equal(t, 30.0, s.Position)
}

func TestApply_GestureDeadZone(t *testing.T) {
	view := Viewport{Width: 1000, Height: 600}
	s := loaded(100)
	s.Position = 50

	s, _ = Apply(s, GestureStart{X: 100, Y: 300}, DefaultTuning())
	before := s

	for _, move := range []GestureMove{
		{X: 105, Y: 305, View: view},
		{X: 110, Y: 290, View: view},
		{X: 90, Y: 310, View: view},
	} {
		next, cmds := Apply(before, move, DefaultTuning())
		assert.Equal(t, before, next)
		assert.Empty(t, cmds)
	}
}

func TestApply_GestureSeek(t *testing.T) {
	view := Viewport{Width: 1000, Height: 600}
	s := loaded(100)
	s.Position = 20

	s, _ = Apply(s, GestureStart{X: 100, Y: 300}, DefaultTuning())
	s, cmds := Apply(s, GestureMove{X: 200, Y: 305, View: view}, DefaultTuning())

	assert.Equal(t, 30.0, s.Position)
	assert.Equal(t, GestureSeek, s.Gesture.Kind)
	notice, ok := findCmd[CmdNotice](cmds)
	require.True(t, ok)
	assert.Equal(t, "Forward", notice.Title)

	// origin moved, so a short follow-up drag is below the threshold
	s, cmds = Apply(s, GestureMove{X: 230, Y: 305, View: view}, DefaultTuning())
	assert.Equal(t, 30.0, s.Position)
	assert.Empty(t, cmds)

	s, _ = Apply(s, GestureMove{X: 100, Y: 305, View: view}, DefaultTuning())
	assert.Equal(t, 20.0, s.Position)

	s, _ = Apply(s, GestureEnd{}, DefaultTuning())
	assert.False(t, s.Gesture.Active)
}

func TestApply_GestureBrightnessLeftHalf(t *testing.T) {
	view := Viewport{Width: 1000, Height: 600}
	s := loaded(100)

	s, _ = Apply(s, GestureStart{X: 100, Y: 300}, DefaultTuning())
	s, cmds := Apply(s, GestureMove{X: 100, Y: 240, View: view}, DefaultTuning())

	assert.InDelta(t, 0.9, s.Brightness, 1e-9)
	assert.Equal(t, 1.0, s.Volume)
	_, ok := findCmd[CmdSetVolume](cmds)
	assert.False(t, ok)
}

func TestApply_GestureVolumeRightHalf(t *testing.T) {
	view := Viewport{Width: 1000, Height: 600}
	s := loaded(100)
	s.Volume = 0.5

	s, _ = Apply(s, GestureStart{X: 800, Y: 300}, DefaultTuning())
	s, cmds := Apply(s, GestureMove{X: 800, Y: 240, View: view}, DefaultTuning())

	assert.InDelta(t, 0.6, s.Volume, 1e-9)
	assert.Equal(t, 0.8, s.Brightness)
	vol, ok := findCmd[CmdSetVolume](cmds)
	require.True(t, ok)
	assert.InDelta(t, 0.6, vol.Volume, 1e-9)

	// dragging far down bottoms out at zero
	s, _ = Apply(s, GestureMove{X: 800, Y: 900, View: view}, DefaultTuning())
	assert.Equal(t, 0.0, s.Volume)
}

func TestApply_GestureMoveWithoutStart(t *testing.T) {
	s := loaded(100)

	next, cmds := Apply(s, GestureMove{X: 500, Y: 10, View: Viewport{Width: 1000, Height: 600}}, DefaultTuning())

	assert.Equal(t, s, next)
	assert.Empty(t, cmds)
}
