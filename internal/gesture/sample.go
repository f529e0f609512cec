package gesture

import (
	"math"
	"time"

	"github.com/ayusman/pinchpoint/internal/detector"
)

// Point is an integer pixel position in the camera frame.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Vec is a floating-point position in screen space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// PinchSample is what the state machine consumes for one frame with a hand.
type PinchSample struct {
	Distance  float64   // thumb tip to index tip, in frame pixels
	Timestamp time.Time // captured once at the top of the frame
	Fingertip Point     // index fingertip, drives the cursor
}

// Preprocess extracts the index fingertip and thumb tip from a snapshot
// and measures their separation. It reports false when the snapshot is
// empty or either landmark is missing.
func Preprocess(snap detector.Snapshot, now time.Time) (PinchSample, bool) {
	if len(snap) == 0 {
		return PinchSample{}, false
	}

	index, ok := snap.Find(detector.IndexTip)
	if !ok {
		return PinchSample{}, false
	}
	thumb, ok := snap.Find(detector.ThumbTip)
	if !ok {
		return PinchSample{}, false
	}

	return PinchSample{
		Distance:  distance(index, thumb),
		Timestamp: now,
		Fingertip: Point{X: index.X, Y: index.Y},
	}, true
}

func distance(a, b detector.Landmark) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
