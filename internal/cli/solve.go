package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/app/progression"
	"github.com/snapsolve/snapsolve/internal/daemon"
	"github.com/snapsolve/snapsolve/internal/domain"
)

func init() {
	rootCmd.AddCommand(solveCmd)
}

var solveCmd = &cobra.Command{
	Use:   "solve [SUBJECT]",
	Short: "Record a solved problem",
	Long: `Record a solved problem, optionally tagged with a subject
(math, physics, chemistry, biology, ...). Consumes one unit of quota.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSolve,
}

func runSolve(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	subject := ""
	if len(args) == 1 {
		subject = args[0]
	}

	res, err := d.Progression.RecordSolve(subject)
	switch {
	case errors.Is(err, domain.ErrQuotaExhausted):
		return fmt.Errorf("no solves left today; buy credits or go premium")
	case errors.Is(err, domain.ErrPersistenceWriteFailed):
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: progress not saved yet, will retry:", err)
	case err != nil:
		return err
	}

	return render(cmd, res, func(w io.Writer) error {
		return printSolve(w, res)
	})
}

func printSolve(w io.Writer, res progression.SolveResult) error {
	fmt.Fprintf(w, "Solved! +%d points (%d total)\n", res.PointsDelta, res.Points)
	if res.StreakCounted {
		fmt.Fprintf(w, "Streak: %d days (best %d)\n", res.CurrentStreak, res.LongestStreak)
	}
	if res.MilestoneReached {
		fmt.Fprintf(w, "Milestone: %d-day streak! +%d bonus\n", res.Milestone, res.Breakdown.Milestone)
	}
	for _, a := range res.Unlocked {
		fmt.Fprintf(w, "Achievement unlocked: %s %s (+%d)\n", a.Icon, a.Name, a.RewardPoints)
	}
	if res.LeveledUp {
		fmt.Fprintf(w, "Level up! Now level %d\n", res.Level)
	}
	for _, c := range res.Cosmetics {
		fmt.Fprintf(w, "New %s unlocked: %s\n", c.Kind, c.Name)
	}
	fmt.Fprintf(w, "Solves left today: %s\n", remainingLabel(res.QuotaRemaining))
	return nil
}
