// Package pointer drives the system cursor from gesture intents.
package pointer

import (
	"errors"
	"fmt"

	"github.com/ayusman/pinchpoint/internal/gesture"
)

// ErrAbort is returned by a backend that refused a command because the
// user triggered the failsafe. Callers must release any held button and stop.
var ErrAbort = errors.New("pointer failsafe triggered")

// Backend is the pointer-control surface consumed by the frame loop.
type Backend interface {
	// ScreenSize returns the screen extent in pixels.
	ScreenSize() (width, height int)

	// Move places the cursor at an absolute position. It may return ErrAbort.
	Move(x, y int) error

	Click() error
	DoubleClick() error

	// Down presses the primary button. Pressing an already held button is a no-op.
	Down() error

	// Up releases the primary button. Releasing a button that is not held is a no-op.
	Up() error
}

// Apply sends intents to the backend in order and stops at the first error.
// It returns how many intents were applied.
func Apply(b Backend, intents []gesture.Intent) (int, error) {
	for i, in := range intents {
		var err error
		switch in.Kind {
		case gesture.Move:
			err = b.Move(in.X, in.Y)
		case gesture.Click:
			err = b.Click()
		case gesture.DoubleClick:
			err = b.DoubleClick()
		case gesture.DragStart:
			err = b.Down()
		case gesture.DragEnd:
			err = b.Up()
		default:
			err = fmt.Errorf("unknown intent %d", int(in.Kind))
		}
		if err != nil {
			return i, fmt.Errorf("%s: %w", in.Kind, err)
		}
	}
	return len(intents), nil
}
