package pointer

import (
	"sync"

	"github.com/go-vgo/robotgo"
)

// Config controls the robotgo backend.
type Config struct {
	// Failsafe aborts when the real cursor is found in the top-left corner.
	Failsafe bool

	// FailsafeMargin widens the corner to a square of this many pixels.
	FailsafeMargin int
}

// DefaultConfig enables the corner failsafe.
func DefaultConfig() Config {
	return Config{Failsafe: true}
}

// RobotBackend implements Backend with robotgo.
type RobotBackend struct {
	config Config
	mu     sync.Mutex
	down   bool
	width  int
	height int
}

// NewRobotBackend queries the screen size once and returns a ready backend.
func NewRobotBackend(config Config) *RobotBackend {
	w, h := robotgo.GetScreenSize()
	return &RobotBackend{
		config: config,
		width:  w,
		height: h,
	}
}

// ScreenSize returns the screen size captured at construction.
func (b *RobotBackend) ScreenSize() (int, int) {
	return b.width, b.height
}

// Move checks the failsafe corner, then moves the cursor. Targets are kept
// on screen and outside the failsafe corner so the backend never trips itself.
func (b *RobotBackend) Move(x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.config.Failsafe {
		cx, cy := robotgo.Location()
		if inCorner(cx, cy, b.config.FailsafeMargin) {
			return ErrAbort
		}
	}

	x, y = b.clamp(x, y)
	robotgo.Move(x, y)
	return nil
}

// Click presses and releases the left button.
func (b *RobotBackend) Click() error {
	robotgo.Click("left")
	return nil
}

// DoubleClick sends a left double click.
func (b *RobotBackend) DoubleClick() error {
	robotgo.Click("left", true)
	return nil
}

// Down presses the left button unless it is already held.
func (b *RobotBackend) Down() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.down {
		return nil
	}
	robotgo.MouseDown("left")
	b.down = true
	return nil
}

// Up releases the left button if it is held.
func (b *RobotBackend) Up() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.down {
		return nil
	}
	robotgo.MouseUp("left")
	b.down = false
	return nil
}

func (b *RobotBackend) clamp(x, y int) (int, int) {
	x = clampInt(x, 0, b.width-1)
	y = clampInt(y, 0, b.height-1)
	if b.config.Failsafe && inCorner(x, y, b.config.FailsafeMargin) {
		x = b.config.FailsafeMargin + 1
	}
	return x, y
}

// inCorner reports whether (x, y) lies in the top-left failsafe square.
func inCorner(x, y, margin int) bool {
	return x <= margin && y <= margin
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
