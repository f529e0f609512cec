package cli

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/logging"
)

// loggingBackend is the dry-run pointer backend: it logs commands instead of performing them.
type loggingBackend struct {
	width, height int
	mu            sync.Mutex
	down          bool
}

func newLoggingBackend(width, height int) *loggingBackend {
	return &loggingBackend{width: width, height: height}
}

func (b *loggingBackend) ScreenSize() (int, int) {
	return b.width, b.height
}

// Move is logged only when verbose; it runs every frame.
func (b *loggingBackend) Move(x, y int) error {
	if logging.IsVerbose() {
		log.WithFields(log.Fields{"x": x, "y": y}).Debug("move")
	}
	return nil
}

func (b *loggingBackend) Click() error {
	log.Info("click")
	return nil
}

func (b *loggingBackend) DoubleClick() error {
	log.Info("double click")
	return nil
}

func (b *loggingBackend) Down() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.down {
		b.down = true
		log.Info("button down")
	}
	return nil
}

func (b *loggingBackend) Up() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.down {
		b.down = false
		log.Info("button up")
	}
	return nil
}
