package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aaexhub/laohu-todo/pkg/model"
	"github.com/aaexhub/laohu-todo/pkg/tasks"
)

var (
	addType     string
	addPriority string
	addDeadline string
	addNote     string

	editName     string
	editType     string
	editPriority string
	editDeadline string
	editNote     string

	rmYes bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a new task",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		task, err := current.AddTask(model.Task{
			Name:     strings.Join(args, " "),
			Type:     addType,
			Priority: addPriority,
			Deadline: addDeadline,
			Note:     addNote,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s (%s)\n", task.Name, task.ID)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active tasks in priority order",
	RunE: func(cmd *cobra.Command, args []string) error {
		active := current.ListActiveTasksSorted()
		if len(active) == 0 {
			fmt.Println("No active tasks.")
			return nil
		}
		for _, t := range active {
			printTask(t)
		}
		return nil
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "List archived tasks, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		archived := current.ListArchivedTasks()
		if len(archived) == 0 {
			fmt.Println("No archived tasks.")
			return nil
		}
		for _, t := range archived {
			fmt.Printf("✅ %s  %s | %s | %s\n", t.ArchiveID, t.Name, t.Priority, t.Type)
		}
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit fields of an active task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := tasks.Fields{}
		if cmd.Flags().Changed("name") {
			f.Name = &editName
		}
		if cmd.Flags().Changed("type") {
			f.Type = &editType
		}
		if cmd.Flags().Changed("priority") {
			f.Priority = &editPriority
		}
		if cmd.Flags().Changed("deadline") {
			f.Deadline = &editDeadline
		}
		if cmd.Flags().Changed("note") {
			f.Note = &editNote
		}
		id, err := resolveID(args[0])
		if err != nil {
			return err
		}
		current.UpdateTask(id, f)
		return nil
	},
}

var doneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Complete a task and move it to the archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveID(args[0])
		if err != nil {
			return err
		}
		task, ok := current.CompleteTask(id)
		if !ok {
			fmt.Println("No active task with that id.")
			return nil
		}
		fmt.Printf("Archived %s as %s\n", task.Name, task.ArchiveID)
		return nil
	},
}

var undoCmd = &cobra.Command{
	Use:   "undo <id>",
	Short: "Force an active task back to pending",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveID(args[0])
		if err != nil {
			return err
		}
		if !current.UncompleteTask(id) {
			fmt.Println("No active task with that id. Archived tasks cannot be restored.")
		}
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an active task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveID(args[0])
		if err != nil {
			return err
		}
		task, ok := current.Tasks.Find(id)
		if !ok {
			fmt.Println("No active task with that id.")
			return nil
		}
		if !rmYes && !confirm(fmt.Sprintf("Delete %q?", task.Name)) {
			return nil
		}
		current.DeleteTask(id)
		fmt.Printf("Deleted %s\n", task.Name)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show active task counts per priority",
	RunE: func(cmd *cobra.Command, args []string) error {
		counts := current.Tasks.Stats()
		for _, p := range []string{model.PriorityA1, model.PriorityA2, model.PriorityB1, model.PriorityC} {
			fmt.Printf("%-3s %d\n", p, counts[p])
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Task category")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", model.PriorityC, "Priority (A1, A2, B1, C)")
	addCmd.Flags().StringVarP(&addDeadline, "deadline", "d", "", "Deadline (2006-01-02T15:04)")
	addCmd.Flags().StringVarP(&addNote, "note", "n", "", "Free-form note")

	editCmd.Flags().StringVar(&editName, "name", "", "New name")
	editCmd.Flags().StringVar(&editType, "type", "", "New category")
	editCmd.Flags().StringVar(&editPriority, "priority", "", "New priority")
	editCmd.Flags().StringVar(&editDeadline, "deadline", "", "New deadline")
	editCmd.Flags().StringVar(&editNote, "note", "", "New note")

	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Skip the confirmation prompt")
}

// shortID returns the first 8 characters of an id, or the whole id when it is
// shorter. A pull replaces local collections wholesale, so ids authored by
// another client can be any length.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printTask(t model.Task) {
	fmt.Printf("[%s] %s  %s", t.Priority, shortID(t.ID), t.Name)
	if t.Type != "" {
		fmt.Printf("  #%s", t.Type)
	}
	if t.Deadline != "" {
		fmt.Printf("  📅 %s", t.Deadline)
	}
	fmt.Println()
	if t.Note != "" {
		fmt.Printf("         %s\n", t.Note)
	}
}

// resolveID expands a unique id prefix to the full task id, so `laohu done
// 1a2b3c4d` works with the short ids that list prints.
func resolveID(prefix string) (string, error) {
	var match string
	for _, t := range current.ListActiveTasksSorted() {
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = t.ID
		}
	}
	if match == "" {
		return prefix, nil
	}
	return match, nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
