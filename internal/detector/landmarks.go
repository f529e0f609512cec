// Package detector provides hand detection interfaces and landmark types for pinch tracking.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D represents a normalized landmark position as reported by MediaPipe.
// X and Y are in [0,1] relative to the frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Landmark is a single landmark projected into frame pixels.
type Landmark struct {
	Index int `json:"index"`
	X     int `json:"x"`
	Y     int `json:"y"`
}

// Snapshot is the ordered set of pixel landmarks for one hand in one frame.
// An empty Snapshot means no hand was detected.
type Snapshot []Landmark

// Snapshot projects the normalized landmarks onto a frame of the given size.
func (h *HandLandmarks) Snapshot(width, height int) Snapshot {
	if h == nil {
		return nil
	}

	snap := make(Snapshot, NumLandmarks)
	for i, p := range h.Points {
		snap[i] = Landmark{
			Index: i,
			X:     int(p.X * float64(width)),
			Y:     int(p.Y * float64(height)),
		}
	}
	return snap
}

// Find returns the landmark with the given index.
// Snapshots are usually dense and ordered, so the positional slot is tried first.
func (s Snapshot) Find(index int) (Landmark, bool) {
	if index >= 0 && index < len(s) && s[index].Index == index {
		return s[index], true
	}
	for _, l := range s {
		if l.Index == index {
			return l, true
		}
	}
	return Landmark{}, false
}
