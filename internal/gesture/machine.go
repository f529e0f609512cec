// Package gesture interprets a stream of pinch samples as cursor control:
// pointer motion, click, double click and hold-to-drag.
//
// The package is pure. A Machine holds only immutable policy; all mutable
// tracking state lives in a State value that callers pass in and receive
// back on every call.
package gesture

import (
	"fmt"
	"math"
	"time"
)

// Phase is the coarse state of the pinch tracker.
type Phase int

const (
	Idle Phase = iota
	Pinching
	Dragging
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pinching:
		return "pinching"
	case Dragging:
		return "dragging"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText renders the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// IntentKind identifies a pointer command.
type IntentKind int

const (
	Move IntentKind = iota
	Click
	DoubleClick
	DragStart
	DragEnd
)

func (k IntentKind) String() string {
	switch k {
	case Move:
		return "move"
	case Click:
		return "click"
	case DoubleClick:
		return "double_click"
	case DragStart:
		return "drag_start"
	case DragEnd:
		return "drag_end"
	default:
		return fmt.Sprintf("intent(%d)", int(k))
	}
}

// MarshalText renders the kind by name.
func (k IntentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Intent is a pointer command emitted by the state machine.
// X and Y are the target for Move and the current cursor position otherwise.
type Intent struct {
	Kind IntentKind `json:"kind"`
	X    int        `json:"x"`
	Y    int        `json:"y"`
	At   time.Time  `json:"at"`
}

func (i Intent) String() string {
	return fmt.Sprintf("%s(%d,%d)", i.Kind, i.X, i.Y)
}

// State is the persistent tracking state for the single followed hand.
type State struct {
	Pinching    bool      `json:"pinching"`
	PinchStart  time.Time `json:"pinch_start"`
	Dragging    bool      `json:"dragging"`
	LastRelease time.Time `json:"last_release"` // zero until the first resolved release
	Smoothed    Vec       `json:"smoothed"`
	Tracked     bool      `json:"tracked"` // Smoothed is meaningful
	Missed      int       `json:"missed"`  // consecutive frames without a hand
	Halted      bool      `json:"halted"`
}

// Phase derives the coarse phase from the state flags.
func (s State) Phase() Phase {
	switch {
	case s.Dragging:
		return Dragging
	case s.Pinching:
		return Pinching
	default:
		return Idle
	}
}

// HoldProgress reports how far an ongoing pinch is toward drag promotion, in [0,1].
func (s State) HoldProgress(now time.Time, hold time.Duration) float64 {
	if s.Dragging {
		return 1
	}
	if !s.Pinching || hold <= 0 {
		return 0
	}
	p := float64(now.Sub(s.PinchStart)) / float64(hold)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// cursor rounds the smoothed position so an approach from below reaches the target.
func (s State) cursor() (int, int) {
	return int(math.Round(s.Smoothed.X)), int(math.Round(s.Smoothed.Y))
}

// Machine turns pinch samples into intents under a fixed policy.
type Machine struct {
	policy Policy
	screen Size
}

// NewMachine validates the policy and returns a machine targeting a screen of the given size.
func NewMachine(policy Policy, screen Size) (*Machine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if screen.Width <= 0 || screen.Height <= 0 {
		return nil, fmt.Errorf("%w: screen size must be positive, got %dx%d", ErrInvalidPolicy, screen.Width, screen.Height)
	}
	return &Machine{policy: policy, screen: screen}, nil
}

// Policy returns the machine's policy.
func (m *Machine) Policy() Policy {
	return m.policy
}

// Screen returns the target screen size.
func (m *Machine) Screen() Size {
	return m.screen
}

// Mapper returns the coordinate mapper for a frame of the given size.
func (m *Machine) Mapper(frame Size) Mapper {
	return Mapper{Frame: frame, Screen: m.screen, Margin: m.policy.Margin}
}

// Step evaluates one frame with a detected hand. It returns the next state and
// at most one button intent followed by at most one Move.
func (m *Machine) Step(s State, sample PinchSample, frame Size) (State, []Intent) {
	if s.Halted {
		return s, nil
	}

	now := sample.Timestamp
	pinching := m.policy.IsPinching(sample.Distance)
	s.Missed = 0

	var out []Intent
	switch {
	case pinching && !s.Pinching:
		s.Pinching = true
		s.PinchStart = now

	case pinching && s.Pinching:
		if m.policy.DragEnabled && !s.Dragging && now.Sub(s.PinchStart) >= m.policy.DragHold {
			s.Dragging = true
			out = append(out, m.intent(s, DragStart, now))
		}

	case !pinching && s.Pinching:
		if s.Dragging {
			s.Dragging = false
			out = append(out, m.intent(s, DragEnd, now))
		} else if kind, ok := m.resolveRelease(&s, now); ok {
			out = append(out, m.intent(s, kind, now))
		}
		s.Pinching = false
	}

	if pinching && m.policy.FreezeDuringPinch {
		return s, out
	}

	target := m.Mapper(frame).Map(sample.Fingertip)
	switch {
	case s.Tracked:
		s.Smoothed = Smooth(s.Smoothed, target, m.policy.Smoothing)
	case m.policy.SeedSmoother:
		s.Smoothed = target
	default:
		s.Smoothed = Smooth(Vec{}, target, m.policy.Smoothing)
	}
	s.Tracked = true

	return s, append(out, m.intent(s, Move, now))
}

// Miss records a frame in which no hand was detected. State survives short
// gaps; after MaxMissedFrames consecutive misses an active pinch is dropped
// and an active drag is released.
func (m *Machine) Miss(s State, now time.Time) (State, []Intent) {
	if s.Halted {
		return s, nil
	}

	s.Missed++
	if m.policy.MaxMissedFrames == 0 || s.Missed < m.policy.MaxMissedFrames || !s.Pinching {
		return s, nil
	}

	var out []Intent
	if s.Dragging {
		out = append(out, m.intent(s, DragEnd, now))
	}
	s.Pinching = false
	s.Dragging = false
	return s, out
}

// Abort handles a safety stop from the pointer backend. A held drag is
// released and the state is halted so later frames produce nothing.
func (m *Machine) Abort(s State, now time.Time) (State, []Intent) {
	s, out := m.Release(s, now)
	s.Halted = true
	return s, out
}

// Release drops any pinch and releases a held drag without emitting a click.
func (m *Machine) Release(s State, now time.Time) (State, []Intent) {
	var out []Intent
	if s.Dragging {
		out = append(out, m.intent(s, DragEnd, now))
	}
	s.Pinching = false
	s.Dragging = false
	return s, out
}

// resolveRelease classifies a pinch release that did not end a drag.
// The interval is measured from the previous resolved release.
func (m *Machine) resolveRelease(s *State, now time.Time) (IntentKind, bool) {
	if s.LastRelease.IsZero() {
		s.LastRelease = now
		return Click, true
	}

	dt := now.Sub(s.LastRelease)
	if dt < m.policy.ClickCooldown {
		if m.policy.DebounceUpdatesRelease {
			s.LastRelease = now
		}
		return 0, false
	}

	s.LastRelease = now
	if dt < m.policy.DoubleClickWindow {
		return DoubleClick, true
	}
	return Click, true
}

func (m *Machine) intent(s State, kind IntentKind, now time.Time) Intent {
	x, y := s.cursor()
	return Intent{Kind: kind, X: x, Y: y, At: now}
}
