package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aaexhub/laohu-todo/pkg/birthday"
)

var (
	bdayRelation   string
	bdayEmail      string
	bdayNote       string
	bdayNoReminder bool
	bdayWithin     int

	bdayEditName     string
	bdayEditDate     string
	bdayEditRelation string
	bdayEditEmail    string
	bdayEditNote     string
	bdayEditReminder bool
)

var birthdayCmd = &cobra.Command{
	Use:     "birthday",
	Aliases: []string{"bday"},
	Short:   "Manage the birthday reminder list",
}

var bdayAddCmd = &cobra.Command{
	Use:   "add <name> <date>",
	Short: "Add a birthday (date as 2006-01-02)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := current.Birthdays.Add(birthday.Birthday{
			Name:     args[0],
			Date:     args[1],
			Relation: bdayRelation,
			Email:    bdayEmail,
			Note:     bdayNote,
			Reminder: !bdayNoReminder,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added birthday for %s (%s)\n", b.Name, shortID(b.ID))
		return nil
	},
}

var bdayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all birthdays by countdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := current.Birthdays.All(time.Now())
		if len(entries) == 0 {
			fmt.Println("No birthdays recorded.")
			return nil
		}
		for _, e := range entries {
			printBirthday(e)
		}
		return nil
	},
}

var bdayUpcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "Show birthdays within the next N days",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries := current.Birthdays.Upcoming(time.Now(), bdayWithin, 5)
		if len(entries) == 0 {
			fmt.Printf("No birthdays within %d days.\n", bdayWithin)
			return nil
		}
		for _, e := range entries {
			printBirthday(e)
		}
		return nil
	},
}

var bdayRemindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Print due birthday reminders (today / 3 days / 1 week)",
	Long: `Sweeps the birthday list against the reminder ledger and prints every
notification that is due but has not fired yet this year. Meant to be run
from a login script or cron job.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, err := birthday.NewLedger(current.Settings.RemindersPath())
		if err != nil {
			return fmt.Errorf("could not load reminder ledger: %w", err)
		}

		now := time.Now()
		due := ledger.Sweep(current.Birthdays.All(now), now)
		for _, r := range due {
			fmt.Printf("%s\n  %s\n", r.Title, r.Body)
			if mail, ok := birthday.MailtoURL(r.Entry.Birthday); ok {
				fmt.Printf("  %s\n", mail)
			}
		}
		if len(due) == 0 {
			fmt.Println("No reminders due.")
		}
		return ledger.Save()
	},
}

var bdayEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit fields of a birthday entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := birthday.Fields{}
		if cmd.Flags().Changed("name") {
			f.Name = &bdayEditName
		}
		if cmd.Flags().Changed("date") {
			f.Date = &bdayEditDate
		}
		if cmd.Flags().Changed("relation") {
			f.Relation = &bdayEditRelation
		}
		if cmd.Flags().Changed("email") {
			f.Email = &bdayEditEmail
		}
		if cmd.Flags().Changed("note") {
			f.Note = &bdayEditNote
		}
		if cmd.Flags().Changed("reminder") {
			f.Reminder = &bdayEditReminder
		}
		return current.Birthdays.Update(resolveBirthdayID(args[0]), f)
	},
}

var bdayRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a birthday entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current.Birthdays.Remove(resolveBirthdayID(args[0]))
		return nil
	},
}

// resolveBirthdayID expands a unique id prefix (at least 4 characters) to the
// full entry id.
func resolveBirthdayID(prefix string) string {
	for _, e := range current.Birthdays.All(time.Now()) {
		if e.ID == prefix || (len(prefix) >= 4 && strings.HasPrefix(e.ID, prefix)) {
			return e.ID
		}
	}
	return prefix
}

func init() {
	bdayAddCmd.Flags().StringVar(&bdayRelation, "relation", "", "Relationship label")
	bdayAddCmd.Flags().StringVar(&bdayEmail, "email", "", "Email for the greeting link")
	bdayAddCmd.Flags().StringVar(&bdayNote, "note", "", "Free-form note")
	bdayAddCmd.Flags().BoolVar(&bdayNoReminder, "no-reminder", false, "Disable the 3-day and 7-day reminders")

	bdayEditCmd.Flags().StringVar(&bdayEditName, "name", "", "New name")
	bdayEditCmd.Flags().StringVar(&bdayEditDate, "date", "", "New date (2006-01-02)")
	bdayEditCmd.Flags().StringVar(&bdayEditRelation, "relation", "", "New relationship label")
	bdayEditCmd.Flags().StringVar(&bdayEditEmail, "email", "", "New email")
	bdayEditCmd.Flags().StringVar(&bdayEditNote, "note", "", "New note")
	bdayEditCmd.Flags().BoolVar(&bdayEditReminder, "reminder", true, "Enable or disable the 3-day and 7-day reminders")

	bdayUpcomingCmd.Flags().IntVar(&bdayWithin, "within", 30, "Window in days")

	birthdayCmd.AddCommand(bdayAddCmd)
	birthdayCmd.AddCommand(bdayListCmd)
	birthdayCmd.AddCommand(bdayEditCmd)
	birthdayCmd.AddCommand(bdayUpcomingCmd)
	birthdayCmd.AddCommand(bdayRemindCmd)
	birthdayCmd.AddCommand(bdayRmCmd)
}

func printBirthday(e birthday.Entry) {
	when := "今天 🎂"
	if e.Days > 0 {
		when = fmt.Sprintf("%d天后", e.Days)
	}
	fmt.Printf("%-8s %s  %s", shortID(e.ID), e.Name, when)
	if e.Relation != "" {
		fmt.Printf("  · %s", e.Relation)
	}
	fmt.Println()
}
