package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/snapsolve/snapsolve/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show quota, streak, points and level",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	st := d.Progression.Status()
	return render(cmd, st, func(w io.Writer) error {
		t := newTable(w)
		fmt.Fprintf(t, "Date:\t%s\n", st.Date)
		fmt.Fprintf(t, "Solves left:\t%s\n", remainingLabel(st.Remaining))
		fmt.Fprintf(t, "Used today:\t%d of %d\n", st.DailySolvesUsed, st.DailyBase)
		fmt.Fprintf(t, "Extra credits:\t%d\n", st.ExtraSolveCredits)
		fmt.Fprintf(t, "Premium:\t%s\n", yesNo(st.Premium))
		fmt.Fprintf(t, "Streak:\t%d days (%s, best %d)\n", st.CurrentStreak, st.StreakStatus, st.LongestStreak)
		if st.NextMilestone > 0 {
			fmt.Fprintf(t, "Next milestone:\t%d days\n", st.NextMilestone)
		}
		fmt.Fprintf(t, "This week:\t%s\n", weekStrip(st.WeeklyCompletion))
		fmt.Fprintf(t, "Level:\t%d (%d solves to next)\n", st.Level, st.SolvesToNextLevel)
		fmt.Fprintf(t, "Points:\t%d\n", st.Points)
		fmt.Fprintf(t, "Total solves:\t%d\n", st.TotalSolves)
		fmt.Fprintf(t, "Achievements:\t%d/%d\n", st.UnlockedCount, st.TotalAchievements)
		return t.Flush()
	})
}
