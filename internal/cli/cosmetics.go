package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	rootCmd.AddCommand(cosmeticsCmd)
}

var cosmeticsCmd = &cobra.Command{
	Use:   "cosmetics",
	Short: "List level-gated themes, pencils and frames",
	Args:  cobra.NoArgs,
	RunE:  runCosmetics,
}

func runCosmetics(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	items := d.Progression.Cosmetics()
	level := d.Progression.Level()
	return render(cmd, items, func(w io.Writer) error {
		fmt.Fprintf(w, "Level %d\n\n", level)
		t := newTable(w)
		fmt.Fprintln(t, "ID\tNAME\tKIND\tLEVEL\tSTATUS")
		for _, c := range items {
			status := "unlocked"
			if c.Locked {
				status = "locked"
			}
			fmt.Fprintf(t, "%s\t%s\t%s\t%d\t%s\n", c.ID, c.Name, c.Kind, c.RequiredLevel, status)
		}
		return t.Flush()
	})
}
