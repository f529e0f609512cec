// Package app runs the pinchpoint frame loop: capture, detect, interpret, act.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ayusman/pinchpoint/internal/capture"
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/gesture"
	"github.com/ayusman/pinchpoint/internal/pointer"
	"github.com/ayusman/pinchpoint/internal/server"
	"github.com/ayusman/pinchpoint/internal/store"
)

// Loop timing constants.
const (
	// DisabledPoll is how often a disabled loop checks for re-enable or cancel.
	DisabledPoll = 50 * time.Millisecond

	// StatusInterval rate-limits status publication while nothing changes.
	StatusInterval = 100 * time.Millisecond
)

// ErrCaptureFailure is returned by Run when the camera stops delivering frames.
var ErrCaptureFailure = errors.New("camera capture failed")

// Publisher receives live updates. *server.Hub implements it.
type Publisher interface {
	Publish(typ string, data any)
}

// Config holds the collaborators of an App.
type Config struct {
	Camera   capture.Camera
	Detector detector.Detector
	Backend  pointer.Backend
	Policy   gesture.Policy

	// Journal records sessions and button intents. Optional.
	Journal *store.Store

	// Hub receives intent and status messages. Optional.
	Hub Publisher

	// OnStatus is called from the loop after status changes. Optional.
	OnStatus func(server.Status)

	// Now defaults to time.Now.
	Now func() time.Time
}

// App orchestrates the frame loop. The loop goroutine owns the gesture
// state; other goroutines only read snapshots through Status.
type App struct {
	config  Config
	machine *gesture.Machine
	now     func() time.Time

	mu         sync.RWMutex
	enabled    bool
	state      gesture.State
	frames     uint64
	last       *gesture.Intent
	sessionID  string
	lastStatus time.Time
	lastPhase  gesture.Phase
}

// New validates the configuration and sizes the state machine to the backend's screen.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	if config.Backend == nil {
		return nil, errors.New("app: pointer backend is required")
	}

	w, h := config.Backend.ScreenSize()
	machine, err := gesture.NewMachine(config.Policy, gesture.Size{Width: w, Height: h})
	if err != nil {
		return nil, err
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &App{
		config:  config,
		machine: machine,
		now:     now,
		enabled: true,
	}, nil
}

// SetEnabled pauses or resumes tracking. Pausing releases a held drag.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether tracking is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// Status returns a snapshot of the controller.
func (a *App) Status() server.Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.statusLocked(a.now())
}

func (a *App) statusLocked(now time.Time) server.Status {
	st := server.Status{
		Enabled:   a.enabled,
		Phase:     a.state.Phase(),
		X:         int(a.state.Smoothed.X),
		Y:         int(a.state.Smoothed.Y),
		Hold:      a.state.HoldProgress(now, a.machine.Policy().DragHold),
		Missed:    a.state.Missed,
		Frames:    a.frames,
		SessionID: a.sessionID,
	}
	if a.last != nil {
		last := *a.last
		st.LastIntent = &last
	}
	return st
}

// Run opens the camera and processes frames until ctx is cancelled, the
// camera fails (ErrCaptureFailure) or the pointer failsafe fires
// (pointer.ErrAbort). Every exit releases a held button, finishes the
// journal session and closes the camera and detector.
func (a *App) Run(ctx context.Context) error {
	if err := a.config.Camera.Open(); err != nil {
		a.closeDevices()
		return fmt.Errorf("%w: %w", ErrCaptureFailure, err)
	}

	a.startSession()
	log.WithField("screen", a.machine.Screen()).Info("Pointer loop started")

	err := a.loop(ctx)

	reason := store.EndStopped
	switch {
	case errors.Is(err, pointer.ErrAbort):
		reason = store.EndAbort
		log.Warn("Failsafe triggered, stopping")
	case errors.Is(err, ErrCaptureFailure):
		reason = store.EndCaptureFailed
		log.Errorf("Capture failed: %v", err)
	}

	a.shutdown(reason)
	log.WithField("reason", reason).Info("Pointer loop stopped")
	return err
}

func (a *App) loop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if !a.IsEnabled() {
			if err := a.pause(); err != nil {
				return err
			}
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(DisabledPoll):
			}
			continue
		}

		if err := a.tick(); err != nil {
			return err
		}
	}
}

// tick reads, detects and interprets one frame.
func (a *App) tick() error {
	frame, err := a.config.Camera.ReadFrame()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCaptureFailure, err)
	}

	now := a.now()
	size := gesture.Size{Width: frame.Cols(), Height: frame.Rows()}

	hands, err := a.config.Detector.Detect(frame)
	frame.Close()
	if err != nil {
		log.Printf("Error detecting hands: %v", err)
		hands = nil
	}

	return a.process(hands, size, now)
}

// process feeds one frame's detections through the state machine and
// applies the resulting intents.
func (a *App) process(hands []detector.HandLandmarks, size gesture.Size, now time.Time) error {
	state := a.currentState()

	var (
		intents []gesture.Intent
		sample  gesture.PinchSample
		ok      bool
	)
	if len(hands) > 0 {
		sample, ok = gesture.Preprocess(hands[0].Snapshot(size.Width, size.Height), now)
	}
	if ok {
		state, intents = a.machine.Step(state, sample, size)
	} else {
		state, intents = a.machine.Miss(state, now)
	}

	a.mu.Lock()
	a.state = state
	a.frames++
	a.mu.Unlock()

	return a.dispatch(intents, now)
}

// dispatch applies intents to the backend. On a failsafe abort the machine
// is halted and a held button released before the error is returned.
func (a *App) dispatch(intents []gesture.Intent, now time.Time) error {
	n, err := pointer.Apply(a.config.Backend, intents)
	a.observe(intents[:n], now)

	if errors.Is(err, pointer.ErrAbort) {
		state, release := a.machine.Abort(a.currentState(), now)
		a.mu.Lock()
		a.state = state
		a.mu.Unlock()

		if _, rerr := pointer.Apply(a.config.Backend, release); rerr != nil {
			log.Errorf("Error releasing button after abort: %v", rerr)
		}
		a.observe(release, now)
		return err
	}
	if err != nil {
		log.Errorf("Error applying pointer intents: %v", err)
		if intents[n].Kind == gesture.DragStart {
			a.dropDrag(now)
		}
	}

	a.publishStatus(now, false)
	return nil
}

// dropDrag rolls the machine back out of a drag whose button press failed,
// so the state never reports a drag without a held button.
func (a *App) dropDrag(now time.Time) {
	state, release := a.machine.Release(a.currentState(), now)
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	if _, err := pointer.Apply(a.config.Backend, release); err != nil {
		log.Errorf("Error releasing button after failed drag: %v", err)
	}
}

// pause releases any held button while tracking is disabled.
func (a *App) pause() error {
	state := a.currentState()
	if state.Phase() == gesture.Idle {
		return nil
	}

	now := a.now()
	state, release := a.machine.Release(state, now)
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	return a.dispatch(release, now)
}

// shutdown is the single cleanup path for every way Run can end.
func (a *App) shutdown(reason string) {
	now := a.now()
	state, release := a.machine.Release(a.currentState(), now)
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()

	if _, err := pointer.Apply(a.config.Backend, release); err != nil {
		log.Errorf("Error releasing button: %v", err)
	}
	a.observe(release, now)
	a.publishStatus(now, true)

	a.finishSession(reason, now)
	a.closeDevices()
}

func (a *App) closeDevices() {
	if err := a.config.Camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
	if err := a.config.Detector.Close(); err != nil {
		log.Printf("Error closing detector: %v", err)
	}
}

func (a *App) currentState() gesture.State {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// observe journals and publishes the button intents among those applied.
func (a *App) observe(applied []gesture.Intent, now time.Time) {
	var buttons []gesture.Intent
	for _, in := range applied {
		if in.Kind != gesture.Move {
			buttons = append(buttons, in)
		}
	}
	if len(buttons) == 0 {
		return
	}

	last := buttons[len(buttons)-1]
	a.mu.Lock()
	a.last = &last
	sessionID := a.sessionID
	a.mu.Unlock()

	for _, in := range buttons {
		log.WithFields(log.Fields{"kind": in.Kind, "x": in.X, "y": in.Y}).Info("Pointer action")
		if a.config.Hub != nil {
			a.config.Hub.Publish(server.TypeIntent, in)
		}
	}

	if a.config.Journal != nil && sessionID != "" {
		if err := a.config.Journal.Events().Record(sessionID, buttons...); err != nil {
			log.Errorf("Error journaling events: %v", err)
		}
	}

	a.publishStatus(now, true)
}

// publishStatus sends a status snapshot when forced, when the phase
// changed or when StatusInterval has passed since the last one.
func (a *App) publishStatus(now time.Time, force bool) {
	if a.config.Hub == nil && a.config.OnStatus == nil {
		return
	}

	a.mu.Lock()
	phase := a.state.Phase()
	if !force && phase == a.lastPhase && now.Sub(a.lastStatus) < StatusInterval {
		a.mu.Unlock()
		return
	}
	a.lastPhase = phase
	a.lastStatus = now
	st := a.statusLocked(now)
	a.mu.Unlock()

	if a.config.Hub != nil {
		a.config.Hub.Publish(server.TypeStatus, st)
	}
	if a.config.OnStatus != nil {
		a.config.OnStatus(st)
	}
}

func (a *App) startSession() {
	if a.config.Journal == nil {
		return
	}

	sess, err := a.config.Journal.Sessions().Start(a.machine.Policy(), a.now())
	if err != nil {
		log.Errorf("Error starting journal session: %v", err)
		return
	}

	a.mu.Lock()
	a.sessionID = sess.ID
	a.mu.Unlock()
	log.WithField("session", sess.ID).Debug("Journal session started")
}

func (a *App) finishSession(reason string, now time.Time) {
	a.mu.RLock()
	id := a.sessionID
	a.mu.RUnlock()

	if a.config.Journal == nil || id == "" {
		return
	}
	if err := a.config.Journal.Sessions().Finish(id, reason, now); err != nil {
		log.Errorf("Error finishing journal session: %v", err)
	}
}
