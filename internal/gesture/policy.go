package gesture

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidPolicy is returned when thresholds are non-positive or inconsistent.
var ErrInvalidPolicy = errors.New("invalid gesture policy")

// Default thresholds.
const (
	DefaultPinchThreshold    = 40.0 // pixels
	DefaultDragHold          = 3 * time.Second
	DefaultClickCooldown     = 300 * time.Millisecond
	DefaultDoubleClickWindow = 500 * time.Millisecond
	DefaultSmoothing         = 5.0
	DefaultMargin            = 150 // pixels
)

// Policy holds the tunable thresholds and behaviour switches of the state machine.
type Policy struct {
	// PinchThreshold is the thumb-index distance in pixels below which the hand is pinching.
	PinchThreshold float64 `json:"pinch_threshold"`

	// DragHold is how long a pinch must be held before it becomes a drag.
	DragHold time.Duration `json:"drag_hold"`

	// ClickCooldown suppresses releases that follow the previous one too closely.
	ClickCooldown time.Duration `json:"click_cooldown"`

	// DoubleClickWindow turns a release into a double click when it follows
	// the previous one by at least ClickCooldown and less than this.
	DoubleClickWindow time.Duration `json:"double_click_window"`

	// Smoothing is the exponential smoothing divisor, >= 1. Typical values are 5-7.
	Smoothing float64 `json:"smoothing"`

	// Margin is the inset, in frame pixels, excluded from the active zone.
	Margin int `json:"margin"`

	// FreezeDuringPinch holds the cursor still while the hand is pinching.
	FreezeDuringPinch bool `json:"freeze_during_pinch"`

	// DragEnabled allows a held pinch to press and hold the button.
	DragEnabled bool `json:"drag_enabled"`

	// MaxMissedFrames releases an active pinch or drag after this many
	// consecutive frames without a hand. Zero keeps state through any gap.
	MaxMissedFrames int `json:"max_missed_frames"`

	// SeedSmoother starts smoothing from the first target instead of the origin.
	SeedSmoother bool `json:"seed_smoother"`

	// DebounceUpdatesRelease makes a suppressed release restart the cooldown window.
	DebounceUpdatesRelease bool `json:"debounce_updates_release"`
}

// DefaultPolicy returns the drag-capable policy with the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		PinchThreshold:         DefaultPinchThreshold,
		DragHold:               DefaultDragHold,
		ClickCooldown:          DefaultClickCooldown,
		DoubleClickWindow:      DefaultDoubleClickWindow,
		Smoothing:              DefaultSmoothing,
		Margin:                 DefaultMargin,
		FreezeDuringPinch:      false,
		DragEnabled:            true,
		MaxMissedFrames:        0,
		SeedSmoother:           true,
		DebounceUpdatesRelease: true,
	}
}

// Validate checks that every threshold is usable.
func (p Policy) Validate() error {
	if !finite(p.PinchThreshold) || p.PinchThreshold <= 0 {
		return fmt.Errorf("%w: pinch_threshold must be a finite positive value, got %g", ErrInvalidPolicy, p.PinchThreshold)
	}
	if p.DragHold <= 0 {
		return fmt.Errorf("%w: drag_hold must be positive, got %s", ErrInvalidPolicy, p.DragHold)
	}
	if p.ClickCooldown <= 0 {
		return fmt.Errorf("%w: click_cooldown must be positive, got %s", ErrInvalidPolicy, p.ClickCooldown)
	}
	if p.DoubleClickWindow <= 0 {
		return fmt.Errorf("%w: double_click_window must be positive, got %s", ErrInvalidPolicy, p.DoubleClickWindow)
	}
	if p.ClickCooldown >= p.DoubleClickWindow {
		return fmt.Errorf("%w: click_cooldown (%s) must be shorter than double_click_window (%s)",
			ErrInvalidPolicy, p.ClickCooldown, p.DoubleClickWindow)
	}
	if !finite(p.Smoothing) || p.Smoothing < 1 {
		return fmt.Errorf("%w: smoothing must be a finite value of at least 1, got %g", ErrInvalidPolicy, p.Smoothing)
	}
	if p.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative, got %d", ErrInvalidPolicy, p.Margin)
	}
	if p.MaxMissedFrames < 0 {
		return fmt.Errorf("%w: max_missed_frames must not be negative, got %d", ErrInvalidPolicy, p.MaxMissedFrames)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// IsPinching reports whether a thumb-index distance counts as a pinch.
func (p Policy) IsPinching(distance float64) bool {
	return distance < p.PinchThreshold
}
