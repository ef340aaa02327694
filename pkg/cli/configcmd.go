package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configGistID string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the sync configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		gistID, token := current.Tasks.SyncConfig()
		fmt.Printf("Data dir:       %s\n", current.Settings.DataDir)
		fmt.Printf("Sync interval:  %s\n", current.Settings.SyncInterval)
		fmt.Printf("Document id:    %s\n", orUnset(gistID))
		fmt.Printf("Credential:     %s\n", maskToken(token))
		fmt.Printf("Status:         %s\n", current.SyncStatus())
		return nil
	},
}

var setTokenCmd = &cobra.Command{
	Use:   "set-token <token>",
	Short: "Store the access credential and bootstrap sync",
	Long: `Stores the personal access token used against the gist API and runs an
immediate bootstrap: a remote document is created if none is configured,
otherwise the existing one is pulled. This is the one place a sync failure
is reported interactively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gistID := configGistID
		if gistID == "" {
			gistID, _ = current.Tasks.SyncConfig()
		}
		if err := current.ConfigureSync(cmd.Context(), args[0], gistID); err != nil {
			return fmt.Errorf("sync configuration failed: %w", err)
		}
		newID, _ := current.Tasks.SyncConfig()
		fmt.Printf("Sync configured. Document id: %s\n", newID)
		return nil
	},
}

var clearTokenCmd = &cobra.Command{
	Use:   "clear-token",
	Short: "Remove the credential and disable remote sync",
	RunE: func(cmd *cobra.Command, args []string) error {
		gistID, _ := current.Tasks.SyncConfig()
		if err := current.ConfigureSync(cmd.Context(), "", gistID); err != nil {
			return err
		}
		fmt.Println("Sync disabled; local data kept.")
		return nil
	},
}

func init() {
	setTokenCmd.Flags().StringVar(&configGistID, "gist", "", "Existing document id to attach to")
	configCmd.AddCommand(setTokenCmd)
	configCmd.AddCommand(clearTokenCmd)
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func maskToken(token string) string {
	if token == "" {
		return "(unset)"
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "…" + token[len(token)-4:]
}
