// Package config loads pinchpoint settings from an ini file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/ayusman/pinchpoint/internal/capture"
	"github.com/ayusman/pinchpoint/internal/gesture"
	"github.com/ayusman/pinchpoint/internal/pointer"
)

const (
	// DirName is the per-user data directory under $HOME.
	DirName = ".pinchpoint"

	// FileName is the default config file inside DirName.
	FileName = "pinchpoint.ini"

	// DefaultListen is the status server address.
	DefaultListen = "localhost:8080"
)

// ErrInvalid wraps configuration values outside their allowed range.
var ErrInvalid = errors.New("invalid config")

// ServerConfig controls the local status server. An empty Listen disables it.
type ServerConfig struct {
	Listen string
}

// JournalConfig controls the session journal. An empty Path disables it.
type JournalConfig struct {
	Path string
}

// TrayConfig controls the system tray icon.
type TrayConfig struct {
	Enabled bool
}

// Config is the complete runtime configuration.
type Config struct {
	Gesture gesture.Policy
	Camera  capture.Config
	Pointer pointer.Config
	Server  ServerConfig
	Journal JournalConfig
	Tray    TrayConfig
}

// DataDir returns ~/.pinchpoint.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// DefaultPath returns the default config file location, or FileName when
// the home directory cannot be resolved.
func DefaultPath() string {
	dir, err := DataDir()
	if err != nil {
		return FileName
	}
	return filepath.Join(dir, FileName)
}

// Default returns the built-in configuration.
func Default() Config {
	journal := ""
	if dir, err := DataDir(); err == nil {
		journal = filepath.Join(dir, "journal.db")
	}

	return Config{
		Gesture: gesture.DefaultPolicy(),
		Camera:  capture.DefaultConfig(),
		Pointer: pointer.DefaultConfig(),
		Server:  ServerConfig{Listen: DefaultListen},
		Journal: JournalConfig{Path: journal},
	}
}

// Load reads path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	r := reader{}
	g := f.Section("gesture")
	r.floatKey(g, "pinch_threshold", &cfg.Gesture.PinchThreshold)
	r.durationKey(g, "drag_hold", &cfg.Gesture.DragHold)
	r.durationKey(g, "click_cooldown", &cfg.Gesture.ClickCooldown)
	r.durationKey(g, "double_click_window", &cfg.Gesture.DoubleClickWindow)
	r.floatKey(g, "smoothing", &cfg.Gesture.Smoothing)
	r.intKey(g, "margin", &cfg.Gesture.Margin)
	r.boolKey(g, "freeze_during_pinch", &cfg.Gesture.FreezeDuringPinch)
	r.boolKey(g, "drag", &cfg.Gesture.DragEnabled)
	r.intKey(g, "max_missed_frames", &cfg.Gesture.MaxMissedFrames)
	r.boolKey(g, "seed_smoother", &cfg.Gesture.SeedSmoother)
	r.boolKey(g, "debounce_updates_release", &cfg.Gesture.DebounceUpdatesRelease)

	c := f.Section("camera")
	r.intKey(c, "device", &cfg.Camera.Device)
	r.intKey(c, "width", &cfg.Camera.Width)
	r.intKey(c, "height", &cfg.Camera.Height)
	r.intKey(c, "fps", &cfg.Camera.FPS)
	r.boolKey(c, "mirror", &cfg.Camera.Mirror)

	p := f.Section("pointer")
	r.boolKey(p, "failsafe", &cfg.Pointer.Failsafe)
	r.intKey(p, "failsafe_margin", &cfg.Pointer.FailsafeMargin)

	r.stringKey(f.Section("server"), "listen", &cfg.Server.Listen)
	r.stringKey(f.Section("journal"), "path", &cfg.Journal.Path)
	r.boolKey(f.Section("tray"), "enabled", &cfg.Tray.Enabled)

	if r.err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, r.err)
	}

	cfg.Journal.Path = ExpandHome(cfg.Journal.Path)
	return cfg, nil
}

// Write saves cfg to path in the same layout Load reads, creating parent directories.
func Write(path string, cfg Config) error {
	f := ini.Empty()

	g := f.Section("gesture")
	g.Key("pinch_threshold").SetValue(fmt.Sprint(cfg.Gesture.PinchThreshold))
	g.Key("drag_hold").SetValue(cfg.Gesture.DragHold.String())
	g.Key("click_cooldown").SetValue(cfg.Gesture.ClickCooldown.String())
	g.Key("double_click_window").SetValue(cfg.Gesture.DoubleClickWindow.String())
	g.Key("smoothing").SetValue(fmt.Sprint(cfg.Gesture.Smoothing))
	g.Key("margin").SetValue(fmt.Sprint(cfg.Gesture.Margin))
	g.Key("freeze_during_pinch").SetValue(fmt.Sprint(cfg.Gesture.FreezeDuringPinch))
	g.Key("drag").SetValue(fmt.Sprint(cfg.Gesture.DragEnabled))
	g.Key("max_missed_frames").SetValue(fmt.Sprint(cfg.Gesture.MaxMissedFrames))
	g.Key("seed_smoother").SetValue(fmt.Sprint(cfg.Gesture.SeedSmoother))
	g.Key("debounce_updates_release").SetValue(fmt.Sprint(cfg.Gesture.DebounceUpdatesRelease))

	c := f.Section("camera")
	c.Key("device").SetValue(fmt.Sprint(cfg.Camera.Device))
	c.Key("width").SetValue(fmt.Sprint(cfg.Camera.Width))
	c.Key("height").SetValue(fmt.Sprint(cfg.Camera.Height))
	c.Key("fps").SetValue(fmt.Sprint(cfg.Camera.FPS))
	c.Key("mirror").SetValue(fmt.Sprint(cfg.Camera.Mirror))

	p := f.Section("pointer")
	p.Key("failsafe").SetValue(fmt.Sprint(cfg.Pointer.Failsafe))
	p.Key("failsafe_margin").SetValue(fmt.Sprint(cfg.Pointer.FailsafeMargin))

	f.Section("server").Key("listen").SetValue(cfg.Server.Listen)
	f.Section("journal").Key("path").SetValue(cfg.Journal.Path)
	f.Section("tray").Key("enabled").SetValue(fmt.Sprint(cfg.Tray.Enabled))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return f.SaveTo(path)
}

// Validate checks the gesture policy and camera settings. Policy errors wrap
// gesture.ErrInvalidPolicy; the rest wrap ErrInvalid.
func (c Config) Validate() error {
	if err := c.Gesture.Validate(); err != nil {
		return err
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return fmt.Errorf("%w: camera size must be positive, got %dx%d", ErrInvalid, c.Camera.Width, c.Camera.Height)
	}
	if c.Camera.FPS <= 0 {
		return fmt.Errorf("%w: camera fps must be positive, got %d", ErrInvalid, c.Camera.FPS)
	}
	if c.Camera.Device < 0 {
		return fmt.Errorf("%w: camera device must be >= 0, got %d", ErrInvalid, c.Camera.Device)
	}
	if c.Pointer.FailsafeMargin < 0 {
		return fmt.Errorf("%w: failsafe_margin must be >= 0, got %d", ErrInvalid, c.Pointer.FailsafeMargin)
	}
	return nil
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// reader keeps the first parse error so Load can report it once.
type reader struct {
	err error
}

func (r *reader) fail(sec *ini.Section, name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("[%s] %s: %w", sec.Name(), name, err)
	}
}

func (r *reader) floatKey(sec *ini.Section, name string, dst *float64) {
	if !sec.HasKey(name) {
		return
	}
	v, err := sec.Key(name).Float64()
	if err != nil {
		r.fail(sec, name, err)
		return
	}
	*dst = v
}

func (r *reader) intKey(sec *ini.Section, name string, dst *int) {
	if !sec.HasKey(name) {
		return
	}
	v, err := sec.Key(name).Int()
	if err != nil {
		r.fail(sec, name, err)
		return
	}
	*dst = v
}

func (r *reader) boolKey(sec *ini.Section, name string, dst *bool) {
	if !sec.HasKey(name) {
		return
	}
	v, err := sec.Key(name).Bool()
	if err != nil {
		r.fail(sec, name, err)
		return
	}
	*dst = v
}

func (r *reader) durationKey(sec *ini.Section, name string, dst *time.Duration) {
	if !sec.HasKey(name) {
		return
	}
	v, err := sec.Key(name).Duration()
	if err != nil {
		r.fail(sec, name, err)
		return
	}
	*dst = v
}

func (r *reader) stringKey(sec *ini.Section, name string, dst *string) {
	if !sec.HasKey(name) {
		return
	}
	*dst = sec.Key(name).String()
}
