package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	resetCmd.Flags().BoolVarP(&resetConfirm, "yes", "y", false, "Confirm the reset")
	rootCmd.AddCommand(resetCmd)
}

var resetConfirm bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear progress (premium and purchased credits are kept)",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetConfirm {
		return errors.New("reset clears streaks, points and achievements; pass --yes to confirm")
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if err := d.Progression.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Progress reset.")
	return nil
}
