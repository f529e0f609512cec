package gesture

import "image"

// Mapper converts fingertip positions inside the camera frame to absolute
// screen coordinates. Only the active zone, the frame inset by Margin on
// every side, spans the screen; positions in the margin clamp to the edges.
type Mapper struct {
	Frame  Size
	Screen Size
	Margin int
}

// Map returns the screen position for a frame position.
// The result is always finite and inside [0, Screen].
func (m Mapper) Map(p Point) Vec {
	return Vec{
		X: interpAxis(float64(p.X), m.Margin, m.Frame.Width, m.Screen.Width),
		Y: interpAxis(float64(p.Y), m.Margin, m.Frame.Height, m.Screen.Height),
	}
}

// Zone returns the active zone in frame coordinates.
func (m Mapper) Zone() image.Rectangle {
	return image.Rect(m.Margin, m.Margin, m.Frame.Width-m.Margin, m.Frame.Height-m.Margin)
}

// interpAxis linearly maps v from [margin, frameDim-margin] onto [0, screenDim].
// When the margin swallows the whole axis the mapping degrades to a step at
// the frame centre.
func interpAxis(v float64, margin, frameDim, screenDim int) float64 {
	out := float64(screenDim)
	if out < 0 {
		out = 0
	}

	lo := float64(margin)
	hi := float64(frameDim - margin)
	if hi <= lo {
		if v < float64(frameDim)/2 {
			return 0
		}
		return out
	}

	switch {
	case v <= lo:
		return 0
	case v >= hi:
		return out
	}
	return (v - lo) / (hi - lo) * out
}
