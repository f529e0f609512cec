package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/pinchpoint/internal/config"
	"github.com/ayusman/pinchpoint/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List journaled sessions",
	Long:  `List past and running sessions from the journal, newest first.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openJournal()
		if err != nil {
			return err
		}
		defer st.Close()

		sessions, err := st.Sessions().List(sessionsLimit)
		if err != nil {
			return err
		}
		if sessions == nil {
			sessions = []*store.Session{}
		}
		return printJson(sessions)
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its pointer events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openJournal()
		if err != nil {
			return err
		}
		defer st.Close()

		sess, err := st.Sessions().GetByID(args[0])
		if err != nil {
			return fmt.Errorf("session %s: %w", args[0], err)
		}
		events, err := st.Events().ListBySession(sess.ID)
		if err != nil {
			return err
		}

		return printJson(map[string]any{
			"session": sess,
			"events":  events,
		})
	},
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete finished sessions older than a cutoff",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openJournal()
		if err != nil {
			return err
		}
		defer st.Close()

		n, err := st.Sessions().Prune(time.Now().Add(-pruneOlder))
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d sessions\n", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsPruneCmd)

	sessionsCmd.Flags().IntVar(&sessionsLimit, "limit", 20, "maximum sessions to list (0 for all)")
	sessionsPruneCmd.Flags().DurationVar(&pruneOlder, "older-than", 30*24*time.Hour, "age of sessions to delete")
}

func openJournal() (*store.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Journal.Path == "" {
		return nil, fmt.Errorf("journal is disabled in %s", configPath)
	}
	return store.New(cfg.Journal.Path)
}
