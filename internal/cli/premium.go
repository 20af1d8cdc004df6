package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	rootCmd.AddCommand(premiumCmd)
}

var premiumCmd = &cobra.Command{
	Use:       "premium on|off",
	Short:     "Apply a premium entitlement change",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runPremium,
}

func runPremium(cmd *cobra.Command, args []string) error {
	var premium bool
	switch args[0] {
	case "on":
		premium = true
	case "off":
	default:
		return fmt.Errorf("want 'on' or 'off', got %q", args[0])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	st, err := d.Purchases.SetPremium(premium, "cli")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Premium: %s (solves left today: %s)\n", yesNo(st.Premium), remainingLabel(st.Remaining))
	return nil
}
