package player

import "math"

// GestureKind is the class a drag falls into
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureSeek
	GestureBrightness
	GestureVolume
)

func (k GestureKind) String() string {
	switch k {
	case GestureSeek:
		return "seek"
	case GestureBrightness:
		return "brightness"
	case GestureVolume:
		return "volume"
	default:
		return "none"
	}
}

// Drag thresholds, in view units
const (
	DeadZone      = 10.0
	SeekThreshold = 50.0
)

// Gesture is the classifier's verdict for one drag offset. Direction is set
// for seeks (+1 forward, -1 backward), Delta for brightness and volume.
type Gesture struct {
	Kind      GestureKind
	Direction int
	Delta     float64
}

// Classify interprets the offset (dx, dy) of a drag whose finger is now at
// x. Offsets inside the dead zone on both axes are taps, not drags.
func Classify(dx, dy, x float64, view Viewport) Gesture {
	adx, ady := math.Abs(dx), math.Abs(dy)
	if adx <= DeadZone && ady <= DeadZone {
		return Gesture{}
	}

	if adx > ady {
		if adx > SeekThreshold {
			return seekGesture(dx)
		}
		return Gesture{}
	}

	if ady > adx && view.Height > 0 {
		delta := -dy / view.Height
		switch {
		case x < view.Width/2:
			return Gesture{Kind: GestureBrightness, Delta: delta}
		case x > view.Width/2:
			return Gesture{Kind: GestureVolume, Delta: delta}
		}
	}
	return Gesture{}
}

// Continue classifies a drag that already has a class. The class never
// changes mid-drag; an unclassified drag goes through Classify.
func Continue(kind GestureKind, dx, dy, x float64, view Viewport) Gesture {
	if kind == GestureNone {
		return Classify(dx, dy, x, view)
	}

	adx, ady := math.Abs(dx), math.Abs(dy)
	if adx <= DeadZone && ady <= DeadZone {
		return Gesture{}
	}

	switch kind {
	case GestureSeek:
		if adx > SeekThreshold {
			return seekGesture(dx)
		}
	case GestureBrightness, GestureVolume:
		if view.Height > 0 && dy != 0 {
			return Gesture{Kind: kind, Delta: -dy / view.Height}
		}
	}
	return Gesture{}
}

func seekGesture(dx float64) Gesture {
	if dx < 0 {
		return Gesture{Kind: GestureSeek, Direction: -1}
	}
	return Gesture{Kind: GestureSeek, Direction: 1}
}
