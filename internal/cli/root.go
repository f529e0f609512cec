// Package cli implements the pinchpoint command line.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/logging"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "pinchpoint",
	Short: "Control the mouse cursor with hand pinch gestures",
	Long: `Pinchpoint follows your index fingertip through the webcam and moves the cursor.
Pinch thumb and index together to click, pinch twice quickly to double click,
and hold a pinch to drag. Move the real mouse to the top-left corner to stop.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	logging.Setup(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "path to the ini config file")
}

// Execute runs the root command. It must be called from the main goroutine
// because the tray needs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(jsonData))
	return nil
}
