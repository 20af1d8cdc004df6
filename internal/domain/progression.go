// Package domain holds the progression engine's core types.
// The engine tracks daily solve quota, learning streaks, points,
// achievements and cosmetic levels for a single local user.
package domain

import (
	"slices"
	"strings"
)

// ─── Progression State ──────────────────────────────────────────────────────

// ProgressionState is the single aggregate the progression engine owns.
// The zero value is the state of a brand new install.
type ProgressionState struct {
	DailySolvesUsed   int  `json:"daily_solves_used"`
	ExtraSolveCredits int  `json:"extra_solve_credits"` // Purchased, never expire
	IsPremium         bool `json:"is_premium"`
	LastSolveDate     Date `json:"last_solve_date"`

	CurrentStreak    int     `json:"current_streak"`
	LongestStreak    int     `json:"longest_streak"` // Always >= CurrentStreak
	WeeklyCompletion [7]bool `json:"weekly_completion"` // Sunday = 0

	TotalSolves   int            `json:"total_solves"`
	SubjectSolves map[string]int `json:"subject_solves,omitempty"`
	Points        int64          `json:"points"`

	UnlockedAchievementIDs    []string `json:"unlocked_achievement_ids,omitempty"` // Unlock order
	LastUnlockedAchievementID string   `json:"last_unlocked_achievement_id,omitempty"`
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s ProgressionState) Clone() ProgressionState {
	out := s
	if s.SubjectSolves != nil {
		out.SubjectSolves = make(map[string]int, len(s.SubjectSolves))
		for k, v := range s.SubjectSolves {
			out.SubjectSolves[k] = v
		}
	}
	if s.UnlockedAchievementIDs != nil {
		out.UnlockedAchievementIDs = slices.Clone(s.UnlockedAchievementIDs)
	}
	return out
}

// HasUnlocked reports whether the achievement id is in the unlocked set.
func (s ProgressionState) HasUnlocked(id string) bool {
	return slices.Contains(s.UnlockedAchievementIDs, id)
}

// SolvesIn returns the number of solves recorded for a subject.
func (s ProgressionState) SolvesIn(subject string) int {
	return s.SubjectSolves[NormalizeSubject(subject)]
}

// DaysCompletedThisWeek counts the marked slots of the weekly calendar.
func (s ProgressionState) DaysCompletedThisWeek() int {
	n := 0
	for _, done := range s.WeeklyCompletion {
		if done {
			n++
		}
	}
	return n
}

// NormalizeSubject folds a subject name to its canonical key.
func NormalizeSubject(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

// ─── Solve Events ───────────────────────────────────────────────────────────

// SolveEvent is passed into the engine once per successfully solved problem.
type SolveEvent struct {
	OccurredOn Date   `json:"occurred_on"`
	Subject    string `json:"subject,omitempty"`
}

// ─── Streak Status ──────────────────────────────────────────────────────────

// StreakStatus is derived from the state on demand and never persisted.
type StreakStatus string

const (
	StreakNotStarted StreakStatus = "not_started"
	StreakBroken     StreakStatus = "broken"
	StreakInProgress StreakStatus = "in_progress" // Solved yesterday, not yet today
	StreakCompleted  StreakStatus = "completed"   // Solved today
)

// ─── Cosmetics ──────────────────────────────────────────────────────────────

// CosmeticItem is a purely visual reward gated by level.
type CosmeticItem struct {
	ID            string `json:"id" yaml:"id"`
	Name          string `json:"name" yaml:"name"`
	Kind          string `json:"kind" yaml:"kind"` // "theme", "pencil", "frame"
	RequiredLevel int    `json:"required_level" yaml:"required_level"`
}
