package pointer

import (
	"fmt"
	"sync"
)

// Command is one call recorded by a Recorder.
type Command struct {
	Op string
	X  int
	Y  int
}

func (c Command) String() string {
	if c.Op == "move" {
		return fmt.Sprintf("move(%d,%d)", c.X, c.Y)
	}
	return c.Op
}

// Recorder is an in-memory Backend for tests and dry runs.
type Recorder struct {
	width, height int
	abortAfter    int
	moves         int
	down          bool
	commands      []Command
	mu            sync.Mutex
}

// NewRecorder returns a Recorder reporting the given screen size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height, abortAfter: -1}
}

// AbortAfter makes the (n+1)th Move return ErrAbort. A negative n disables it.
func (r *Recorder) AbortAfter(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.abortAfter = n
}

// ScreenSize returns the configured size.
func (r *Recorder) ScreenSize() (int, int) {
	return r.width, r.height
}

// Move records a move or reports ErrAbort once the abort budget is spent.
func (r *Recorder) Move(x, y int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.abortAfter >= 0 && r.moves >= r.abortAfter {
		return ErrAbort
	}
	r.moves++
	r.commands = append(r.commands, Command{Op: "move", X: x, Y: y})
	return nil
}

// Click records a click.
func (r *Recorder) Click() error {
	r.record("click")
	return nil
}

// DoubleClick records a double click.
func (r *Recorder) DoubleClick() error {
	r.record("double_click")
	return nil
}

// Down records a button press unless the button is already held.
func (r *Recorder) Down() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return nil
	}
	r.down = true
	r.commands = append(r.commands, Command{Op: "down"})
	return nil
}

// Up records a button release if the button is held.
func (r *Recorder) Up() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.down {
		return nil
	}
	r.down = false
	r.commands = append(r.commands, Command{Op: "up"})
	return nil
}

// IsDown reports whether the button is currently held.
func (r *Recorder) IsDown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.down
}

// Commands returns a copy of everything recorded.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}

// Buttons returns the recorded non-move operations in order.
func (r *Recorder) Buttons() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ops []string
	for _, c := range r.commands {
		if c.Op != "move" {
			ops = append(ops, c.Op)
		}
	}
	return ops
}

func (r *Recorder) record(op string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, Command{Op: op})
}
