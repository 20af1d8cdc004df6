package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	remindersCmd.Flags().IntVar(&remindersLimit, "limit", 10, "Maximum reminders to show")
	remindersCmd.AddCommand(remindersShownCmd)
	rootCmd.AddCommand(remindersCmd)
}

var remindersLimit int

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List streak reminders due for delivery",
	Args:  cobra.NoArgs,
	RunE:  runReminders,
}

var remindersShownCmd = &cobra.Command{
	Use:   "shown ID",
	Short: "Mark a reminder as delivered",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemindersShown,
}

func runReminders(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	pending, err := d.Reminders.Pending(remindersLimit)
	if err != nil {
		return err
	}
	return render(cmd, pending, func(w io.Writer) error {
		if len(pending) == 0 {
			fmt.Fprintln(w, "No reminders due.")
			return nil
		}
		t := newTable(w)
		fmt.Fprintln(t, "ID\tDATE\tDELIVER AT\tMESSAGE")
		for _, r := range pending {
			fmt.Fprintf(t, "%d\t%s\t%s\t%s\n", r.ID, r.Date, r.DeliverAt.Format("15:04"), r.Body)
		}
		return t.Flush()
	})
}

func runRemindersShown(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid reminder id %q", args[0])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Reminders.MarkShown(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reminder %d marked shown.\n", id)
	return nil
}
