package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aaexhub/laohu-todo/pkg/export"
	"github.com/aaexhub/laohu-todo/pkg/model"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all tasks as a Markdown checklist (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("could not create export file: %w", err)
			}
			defer f.Close()
			out = f
		}
		return export.Write(out, current.ListActiveTasksSorted(), current.ListArchivedTasks())
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Add open checklist items from a Markdown file as tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("could not open import file: %w", err)
		}
		defer f.Close()

		parsed, err := export.Parse(f)
		if err != nil {
			return err
		}

		added := 0
		for _, t := range parsed {
			if t.Completed {
				// Archived history is not reconstructed from text; completed
				// items are skipped.
				continue
			}
			if _, err := current.AddTask(t); err != nil {
				var verr *model.ValidationError
				if errors.As(err, &verr) {
					fmt.Printf("Skipped %q: %s\n", t.Name, verr.Msg)
					continue
				}
				return err
			}
			added++
		}
		fmt.Printf("Imported %d task(s)\n", added)
		return nil
	},
}
