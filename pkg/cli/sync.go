package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchMode bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile with the remote document now",
	Long: `Pulls the remote document and resolves by last-writer-wins: whichever
side saved later replaces the other wholesale. With --watch, keeps running
and republishes local state on a fixed interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := current.SyncNow(ctx); err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Printf("Sync status: %s\n", current.SyncStatus())

		if !watchMode {
			return nil
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		fmt.Printf("Watching; pushing every %s. Ctrl-C to stop.\n", current.Settings.SyncInterval)
		current.Sync.Run(ctx, current.Settings.SyncInterval)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Keep pushing on the configured interval")
}
