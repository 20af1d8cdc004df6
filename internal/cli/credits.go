package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	creditsAddCmd.Flags().StringVar(&creditsProduct, "product", "", "Store product id for the ledger")
	creditsHistoryCmd.Flags().IntVar(&creditsLimit, "limit", 20, "Maximum entries to show")
	creditsCmd.AddCommand(creditsAddCmd, creditsHistoryCmd)
	rootCmd.AddCommand(creditsCmd)
}

var (
	creditsProduct string
	creditsLimit   int
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Manage purchased extra-solve credits",
}

var creditsAddCmd = &cobra.Command{
	Use:   "add N",
	Short: "Grant N extra-solve credits",
	Args:  cobra.ExactArgs(1),
	RunE:  runCreditsAdd,
}

var creditsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the purchase ledger",
	Args:  cobra.NoArgs,
	RunE:  runCreditsHistory,
}

func runCreditsAdd(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid credit amount %q", args[0])
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	st, err := d.Purchases.GrantCredits(n, creditsProduct, "cli")
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Extra credits: %d (solves left today: %s)\n", st.ExtraSolveCredits, remainingLabel(st.Remaining))
	return nil
}

func runCreditsHistory(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	entries, err := d.Purchases.History(creditsLimit)
	if err != nil {
		return err
	}
	total, err := d.Purchases.TotalCreditsPurchased()
	if err != nil {
		return err
	}

	return render(cmd, entries, func(w io.Writer) error {
		if len(entries) == 0 {
			fmt.Fprintln(w, "No purchases recorded.")
			return nil
		}
		t := newTable(w)
		fmt.Fprintln(t, "TIME\tKIND\tAMOUNT\tPRODUCT\tSOURCE")
		for _, e := range entries {
			fmt.Fprintf(t, "%s\t%s\t%d\t%s\t%s\n",
				e.Timestamp.Format("2006-01-02 15:04"), e.Kind, e.Amount, e.ProductID, e.Source)
		}
		if err := t.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(w, "\nCredits purchased: %d\n", total)
		return nil
	})
}
