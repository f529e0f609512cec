package cli

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/pinchpoint/internal/app"
	"github.com/ayusman/pinchpoint/internal/capture"
	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/detector"
	"github.com/ayusman/pinchpoint/internal/pointer"
	"github.com/ayusman/pinchpoint/internal/server"
	"github.com/ayusman/pinchpoint/internal/store"
	"github.com/ayusman/pinchpoint/internal/tray"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start controlling the cursor",
	Long: `Open the camera and drive the cursor from hand gestures until interrupted,
the camera fails, or the failsafe corner is hit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	// Bare pinchpoint runs with the config file settings.
	rootCmd.RunE = runCmd.RunE

	runCmd.Flags().Float64Var(&pinchThreshold, "pinch-threshold", 0, "thumb-index distance in pixels that counts as a pinch")
	runCmd.Flags().DurationVar(&dragHold, "drag-hold", 0, "how long a pinch must be held to start a drag")
	runCmd.Flags().Float64Var(&smoothing, "smoothing", 0, "cursor smoothing factor (1 disables smoothing)")
	runCmd.Flags().IntVar(&margin, "margin", 0, "frame margin in pixels excluded from the active zone")
	runCmd.Flags().BoolVar(&freezeDuringPinch, "freeze-during-pinch", false, "hold the cursor still while pinching")
	runCmd.Flags().BoolVar(&noDrag, "no-drag", false, "disable drag; every pinch is a click")
	runCmd.Flags().IntVar(&cameraDevice, "camera", 0, "camera device index")
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "status server address (empty disables)")
	runCmd.Flags().StringVar(&journalPath, "journal", "", "session journal database path (empty disables)")
	runCmd.Flags().BoolVar(&trayEnabled, "tray", false, "show a system tray icon")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log pointer actions instead of performing them; the failsafe corner is not checked")
}

// loadConfig reads the config file and applies any flags set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("pinch-threshold") {
		cfg.Gesture.PinchThreshold = pinchThreshold
	}
	if flags.Changed("drag-hold") {
		cfg.Gesture.DragHold = dragHold
	}
	if flags.Changed("smoothing") {
		cfg.Gesture.Smoothing = smoothing
	}
	if flags.Changed("margin") {
		cfg.Gesture.Margin = margin
	}
	if flags.Changed("freeze-during-pinch") {
		cfg.Gesture.FreezeDuringPinch = freezeDuringPinch
	}
	if flags.Changed("no-drag") {
		cfg.Gesture.DragEnabled = !noDrag
	}
	if flags.Changed("camera") {
		cfg.Camera.Device = cameraDevice
	}
	if flags.Changed("listen") {
		cfg.Server.Listen = listenAddr
	}
	if flags.Changed("journal") {
		cfg.Journal.Path = config.ExpandHome(journalPath)
	}
	if flags.Changed("tray") {
		cfg.Tray.Enabled = trayEnabled
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	det, err := detector.NewMediaPipeDetector(detector.DefaultConfig())
	if err != nil {
		return fmt.Errorf("hand detector unavailable: %w", err)
	}

	var backend pointer.Backend = pointer.NewRobotBackend(cfg.Pointer)
	if dryRun {
		w, h := backend.ScreenSize()
		backend = newLoggingBackend(w, h)
		log.Info("Dry run: pointer actions are logged only")
	}

	var journal *store.Store
	if cfg.Journal.Path != "" {
		journal, err = store.New(cfg.Journal.Path)
		if err != nil {
			det.Close()
			return err
		}
		defer journal.Close()
	}

	hub := server.NewHub()

	var tr *tray.Tray
	if cfg.Tray.Enabled {
		tr = tray.New(true)
	}

	a, err := app.New(app.Config{
		Camera:   capture.NewCamera(cfg.Camera),
		Detector: det,
		Backend:  backend,
		Policy:   cfg.Gesture,
		Journal:  journal,
		Hub:      hub,
		OnStatus: func(st server.Status) {
			if tr == nil {
				return
			}
			tr.SetEnabled(st.Enabled)
			tr.SetPhase(st.Phase.String())
			if st.LastIntent != nil {
				tr.SetLastIntent(st.LastIntent.Kind.String())
			}
		},
	})
	if err != nil {
		det.Close()
		return err
	}

	if cfg.Server.Listen != "" {
		srv := server.New(server.Config{Store: journal, Controller: a, Hub: hub})
		go func() {
			log.WithField("addr", cfg.Server.Listen).Info("Status server listening")
			if err := srv.Run(ctx, cfg.Server.Listen); err != nil {
				log.Errorf("Status server failed: %v", err)
			}
		}()
	}

	if tr == nil {
		return finish(a.Run(ctx))
	}

	tr.OnToggle(a.SetEnabled)
	tr.OnQuit(cancel)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
		tr.Quit()
	}()
	tr.Run()
	cancel()
	return finish(<-done)
}

// finish treats the failsafe as a normal, user-requested exit.
func finish(err error) error {
	if errors.Is(err, pointer.ErrAbort) {
		fmt.Println("Failsafe corner reached, stopped.")
		return nil
	}
	return err
}
