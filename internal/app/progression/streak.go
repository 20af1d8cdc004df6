package progression

import (
	"slices"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// StreakMilestones are the streak lengths that earn a one-off bonus.
var StreakMilestones = []int{3, 7, 14, 30, 50, 100}

// MilestonePointsPerDay scales the milestone bonus: a 7-day milestone pays 70.
const MilestonePointsPerDay = 10

// StreakAdvance describes what a single accepted solve did to the streak.
type StreakAdvance struct {
	Counted   bool  `json:"counted"`   // This solve counted a new streak day
	Milestone int   `json:"milestone"` // Milestone reached by this solve, 0 if none
	Bonus     int64 `json:"bonus"`     // Milestone bonus points
}

// StreakTracker maintains current/longest streak and the weekly calendar.
// A day counts once, no matter how many problems are solved on it.
// Pure: no I/O, no clock reads.
type StreakTracker struct{}

// Advance records an accepted solve on today. previous is the last solve
// date before this solve was accepted.
//
// Same day as previous: no change. Day after previous: +1. Anything else,
// including a previous date after today once a clock is corrected: 1.
func (StreakTracker) Advance(s domain.ProgressionState, previous, today domain.Date) (domain.ProgressionState, StreakAdvance) {
	var adv StreakAdvance

	s = rollWeek(s, previous, today)
	s.WeeklyCompletion[today.Weekday()] = true

	switch {
	case !previous.IsZero() && previous == today:
		// Already counted today. A zero streak here means the stored
		// streak was lost; today's solve still counts for one day.
		if s.CurrentStreak == 0 {
			s.CurrentStreak = 1
			adv.Counted = true
		}
	case !previous.IsZero() && today.DaysSince(previous) == 1:
		s.CurrentStreak++
		adv.Counted = true
	default:
		s.CurrentStreak = 1
		adv.Counted = true
	}

	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}

	if adv.Counted && slices.Contains(StreakMilestones, s.CurrentStreak) {
		adv.Milestone = s.CurrentStreak
		adv.Bonus = int64(s.CurrentStreak) * MilestonePointsPerDay
	}

	return s, adv
}

// RollWeek clears the weekly calendar once today lies in a later week than
// the last solve. Used on the query path so the displayed week is correct
// before the next solve.
func (StreakTracker) RollWeek(s domain.ProgressionState, today domain.Date) domain.ProgressionState {
	return rollWeek(s, s.LastSolveDate, today)
}

// Status derives the display status. Never persisted.
func (StreakTracker) Status(s domain.ProgressionState, today domain.Date) domain.StreakStatus {
	switch {
	case s.LastSolveDate.IsZero() && s.CurrentStreak == 0:
		return domain.StreakNotStarted
	case s.LastSolveDate.IsZero():
		return domain.StreakBroken
	case s.LastSolveDate == today:
		return domain.StreakCompleted
	case today.DaysSince(s.LastSolveDate) == 1 && s.CurrentStreak > 0:
		return domain.StreakInProgress
	default:
		return domain.StreakBroken
	}
}

// DisplayStreak returns the streak the UI should show: a broken streak
// reads as 0 even though the stored value is only reset by the next solve.
func (t StreakTracker) DisplayStreak(s domain.ProgressionState, today domain.Date) int {
	if t.Status(s, today) == domain.StreakBroken {
		return 0
	}
	return s.CurrentStreak
}

// NextMilestone returns the first milestone above the current streak,
// or 0 once every milestone has been passed.
func NextMilestone(current int) int {
	for _, m := range StreakMilestones {
		if m > current {
			return m
		}
	}
	return 0
}

// rollWeek resets the calendar when previous falls in another
// Sunday-started week than today, or when there is no previous solve.
func rollWeek(s domain.ProgressionState, previous, today domain.Date) domain.ProgressionState {
	if previous.IsZero() || previous.WeekStart() != today.WeekStart() {
		s.WeeklyCompletion = [7]bool{}
	}
	return s
}
