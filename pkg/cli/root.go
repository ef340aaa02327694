package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaexhub/laohu-todo/pkg/app"
	"github.com/aaexhub/laohu-todo/pkg/config"
)

var (
	verbose bool
	current *app.App
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "laohu",
		Short: "laohu - personal task and birthday tracker with gist sync",
		Long: `laohu keeps a local task list and birthday reminders, and can mirror
the task data to a private GitHub gist so several devices stay in sync.

Local state is always the source of truth; remote sync is best-effort.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			if verbose {
				settings.Verbose = true
			}
			log := config.NewLogger(settings.LogFile, settings.Verbose)
			current = app.New(settings, log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if current != nil {
				current.Close()
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(birthdayCmd)

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
