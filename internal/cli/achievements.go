package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	achievementsCmd.AddCommand(achievementShowCmd, achievementAckCmd, achievementEvaluateCmd)
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"ach"},
	Short:   "List achievements with progress",
	Args:    cobra.NoArgs,
	RunE:    runAchievements,
}

var achievementShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show progress toward one achievement",
	Args:  cobra.ExactArgs(1),
	RunE:  runAchievementShow,
}

var achievementAckCmd = &cobra.Command{
	Use:   "ack",
	Short: "Dismiss the latest unlock notification",
	Args:  cobra.NoArgs,
	RunE:  runAchievementAck,
}

var achievementEvaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Re-check the catalog against current progress",
	Args:  cobra.NoArgs,
	RunE:  runAchievementEvaluate,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	list := d.Progression.Achievements()
	return render(cmd, list, func(w io.Writer) error {
		t := newTable(w)
		fmt.Fprintln(t, "ID\tNAME\tCATEGORY\tREWARD\tPROGRESS\t")
		for _, a := range list {
			state := progressLabel(a.Current, a.Target)
			if a.Unlocked {
				state = "unlocked"
			}
			fmt.Fprintf(t, "%s\t%s %s\t%s\t%d\t%s %s\t\n",
				a.ID, a.Icon, a.Name, a.Category, a.RewardPoints,
				progressBar(a.Current, a.Target), state)
		}
		return t.Flush()
	})
}

func runAchievementShow(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	p, err := d.Progression.PreviewProgress(args[0])
	if err != nil {
		return err
	}
	return render(cmd, p, func(w io.Writer) error {
		fmt.Fprintf(w, "%s %s\n", p.Icon, p.Name)
		fmt.Fprintf(w, "  %s\n", p.Description)
		fmt.Fprintf(w, "  Category: %s   Reward: %d points\n", p.Category, p.RewardPoints)
		fmt.Fprintf(w, "  %s %s\n", progressBar(p.Current, p.Target), progressLabel(p.Current, p.Target))
		if p.Unlocked {
			fmt.Fprintln(w, "  Unlocked")
		}
		return nil
	})
}

func runAchievementAck(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	id, err := d.Progression.AcknowledgeUnlock()
	if err != nil {
		return err
	}
	if id == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No pending unlock.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %s\n", id)
	return nil
}

func runAchievementEvaluate(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	unlocked, err := d.Progression.Evaluate()
	if err != nil {
		return err
	}
	return render(cmd, unlocked, func(w io.Writer) error {
		if len(unlocked) == 0 {
			fmt.Fprintln(w, "Nothing new unlocked.")
			return nil
		}
		for _, a := range unlocked {
			fmt.Fprintf(w, "Achievement unlocked: %s %s (+%d)\n", a.Icon, a.Name, a.RewardPoints)
		}
		return nil
	})
}
