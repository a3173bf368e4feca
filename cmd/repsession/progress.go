package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/claude/repsession/internal/models"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect or discard locally saved session progress",
}

var progressListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions with saved progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		infos, err := rt.store.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list progress: %w", err)
		}
		if len(infos) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved progress")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tFORMAT\tSAVED")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\tv%d\t%s\n", info.SessionID, info.Version, info.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

var progressClearCmd = &cobra.Command{
	Use:   "clear <session-id>",
	Short: "Discard saved progress for a session",
	Long: `Discards locally saved progress without telling the backend. The session
stays open there; the next track run starts it with empty set logs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.store.Clear(cmd.Context(), models.ID(args[0])); err != nil {
			return fmt.Errorf("failed to clear progress: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared progress for %s\n", args[0])
		return nil
	},
}

func init() {
	progressCmd.AddCommand(progressListCmd)
	progressCmd.AddCommand(progressClearCmd)
}
