package gesture

// Smooth moves prev a 1/k step toward target. A factor of 1 disables smoothing.
func Smooth(prev, target Vec, k float64) Vec {
	if k <= 1 {
		return target
	}
	return Vec{
		X: prev.X + (target.X-prev.X)/k,
		Y: prev.Y + (target.Y-prev.Y)/k,
	}
}
