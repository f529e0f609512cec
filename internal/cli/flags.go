package cli

import "time"

var (
	verbose    bool
	configPath string

	// for run command
	pinchThreshold    float64
	dragHold          time.Duration
	smoothing         float64
	margin            int
	freezeDuringPinch bool
	noDrag            bool
	cameraDevice      int
	listenAddr        string
	journalPath       string
	trayEnabled       bool
	dryRun            bool

	// for sessions command
	sessionsLimit int
	pruneOlder    time.Duration

	// for config command
	forceWrite bool
)
