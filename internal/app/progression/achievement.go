package progression

import (
	"fmt"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// AchievementEngine evaluates the static catalog against progression
// counters. Requirements are threshold checks on counters the state already
// tracks, so no history replay is needed.
type AchievementEngine struct {
	catalog []domain.AchievementDef
	index   map[string]int
	ledger  PointsLedger
}

// NewAchievementEngine validates the catalog: ids must be unique and
// rewards non-negative.
func NewAchievementEngine(catalog []domain.AchievementDef) (*AchievementEngine, error) {
	index := make(map[string]int, len(catalog))
	for i, def := range catalog {
		if _, dup := index[def.ID]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateAchievement, def.ID)
		}
		if def.RewardPoints < 0 {
			return nil, fmt.Errorf("achievement %q: %w: reward %d", def.ID, domain.ErrInvalidAward, def.RewardPoints)
		}
		if def.Requirement == nil {
			return nil, fmt.Errorf("achievement %q has no requirement", def.ID)
		}
		index[def.ID] = i
	}
	return &AchievementEngine{catalog: catalog, index: index}, nil
}

// Catalog returns all definitions in declared order.
func (e *AchievementEngine) Catalog() []domain.AchievementDef {
	return e.catalog
}

// Lookup finds a definition by id.
func (e *AchievementEngine) Lookup(id string) (domain.AchievementDef, bool) {
	i, ok := e.index[id]
	if !ok {
		return domain.AchievementDef{}, false
	}
	return e.catalog[i], true
}

// Evaluate unlocks every satisfied, not-yet-unlocked achievement in catalog
// order and awards its reward. The last unlock processed becomes
// LastUnlockedAchievementID.
//
// Rewards can satisfy a PointsTotal declared earlier in the catalog, so
// passes repeat until one unlocks nothing. Calling Evaluate again on the
// result is a no-op.
func (e *AchievementEngine) Evaluate(s domain.ProgressionState) (domain.ProgressionState, []domain.AchievementDef) {
	var unlocked []domain.AchievementDef
	s = s.Clone()

	for {
		progressed := false
		for _, def := range e.catalog {
			if s.HasUnlocked(def.ID) || !Satisfied(s, def.Requirement) {
				continue
			}
			next, err := e.ledger.Award(s, def.RewardPoints, SourceAchievement)
			if err != nil {
				// Unreachable: rewards are validated at construction.
				continue
			}
			s = next
			s.UnlockedAchievementIDs = append(s.UnlockedAchievementIDs, def.ID)
			s.LastUnlockedAchievementID = def.ID
			unlocked = append(unlocked, def)
			progressed = true
		}
		if !progressed {
			return s, unlocked
		}
	}
}

// Satisfied evaluates a requirement as a pure predicate.
func Satisfied(s domain.ProgressionState, req domain.Requirement) bool {
	switch r := req.(type) {
	case domain.SolveCount:
		return s.TotalSolves >= r.N
	case domain.StreakLength:
		return s.CurrentStreak >= r.N
	case domain.PointsTotal:
		return s.Points >= r.N
	case domain.PerfectWeek:
		return s.DaysCompletedThisWeek() == 7
	case domain.SubjectCount:
		return s.SolvesIn(r.Subject) >= r.N
	case domain.Composite:
		for _, child := range r.All {
			if !Satisfied(s, child) {
				return false
			}
		}
		return len(r.All) > 0
	default:
		return false
	}
}

// Progress projects a requirement onto (current, target) for progress bars.
// current is clamped to target. Side-effect free.
func Progress(s domain.ProgressionState, req domain.Requirement) (current, target int64) {
	switch r := req.(type) {
	case domain.SolveCount:
		current, target = int64(s.TotalSolves), int64(r.N)
	case domain.StreakLength:
		current, target = int64(s.CurrentStreak), int64(r.N)
	case domain.PointsTotal:
		current, target = s.Points, r.N
	case domain.PerfectWeek:
		current, target = int64(s.DaysCompletedThisWeek()), 7
	case domain.SubjectCount:
		current, target = int64(s.SolvesIn(r.Subject)), int64(r.N)
	case domain.Composite:
		target = int64(len(r.All))
		for _, child := range r.All {
			if Satisfied(s, child) {
				current++
			}
		}
	}
	if current > target {
		current = target
	}
	return current, target
}

// ─── Achievement Catalog ────────────────────────────────────────────────────
// 20 achievements across 4 categories. Order matters: it is the evaluation
// order and the tie-break for LastUnlockedAchievementID.

// DefaultCatalog returns the shipped achievement catalog.
func DefaultCatalog() []domain.AchievementDef {
	return []domain.AchievementDef{
		// ── Progress (5) ───────────────────────────────────────────────
		{
			ID: "first_solve", Name: "First Steps", Category: domain.CatProgress,
			Icon: "✏️", Description: "Solve your first problem", RewardPoints: 10,
			Requirement: domain.SolveCount{N: 1},
		},
		{
			ID: "solves_10", Name: "Warming Up", Category: domain.CatProgress,
			Icon: "📘", Description: "Solve 10 problems", RewardPoints: 25,
			Requirement: domain.SolveCount{N: 10},
		},
		{
			ID: "solves_50", Name: "Problem Crusher", Category: domain.CatProgress,
			Icon: "🧮", Description: "Solve 50 problems", RewardPoints: 75,
			Requirement: domain.SolveCount{N: 50},
		},
		{
			ID: "solves_100", Name: "Century", Category: domain.CatProgress,
			Icon: "💯", Description: "Solve 100 problems", RewardPoints: 150,
			Requirement: domain.SolveCount{N: 100},
		},
		{
			ID: "solves_500", Name: "Homework Hero", Category: domain.CatProgress,
			Icon: "🦸", Description: "Solve 500 problems", RewardPoints: 500,
			Requirement: domain.SolveCount{N: 500},
		},

		// ── Consistency (6) ────────────────────────────────────────────
		{
			ID: "streak_3", Name: "On a Roll", Category: domain.CatConsistency,
			Icon: "🔥", Description: "Keep a 3-day streak", RewardPoints: 15,
			Requirement: domain.StreakLength{N: 3},
		},
		{
			ID: "streak_7", Name: "Week Warrior", Category: domain.CatConsistency,
			Icon: "📅", Description: "Keep a 7-day streak", RewardPoints: 50,
			Requirement: domain.StreakLength{N: 7},
		},
		{
			ID: "streak_14", Name: "Fortnight Focus", Category: domain.CatConsistency,
			Icon: "🎯", Description: "Keep a 14-day streak", RewardPoints: 100,
			Requirement: domain.StreakLength{N: 14},
		},
		{
			ID: "streak_30", Name: "Monthly Machine", Category: domain.CatConsistency,
			Icon: "💪", Description: "Keep a 30-day streak", RewardPoints: 300,
			Requirement: domain.StreakLength{N: 30},
		},
		{
			ID: "streak_100", Name: "Centurion", Category: domain.CatConsistency,
			Icon: "🏛️", Description: "Keep a 100-day streak", RewardPoints: 1000,
			Requirement: domain.StreakLength{N: 100},
		},
		{
			ID: "perfect_week", Name: "Perfect Week", Category: domain.CatConsistency,
			Icon: "🗓️", Description: "Solve something every day from Sunday to Saturday", RewardPoints: 100,
			Requirement: domain.PerfectWeek{},
		},

		// ── Mastery (5) ────────────────────────────────────────────────
		{
			ID: "math_25", Name: "Number Cruncher", Category: domain.CatMastery,
			Icon: "➗", Description: "Solve 25 math problems", RewardPoints: 60,
			Requirement: domain.SubjectCount{Subject: "math", N: 25},
		},
		{
			ID: "physics_25", Name: "Force of Nature", Category: domain.CatMastery,
			Icon: "🧲", Description: "Solve 25 physics problems", RewardPoints: 60,
			Requirement: domain.SubjectCount{Subject: "physics", N: 25},
		},
		{
			ID: "chemistry_25", Name: "Lab Partner", Category: domain.CatMastery,
			Icon: "⚗️", Description: "Solve 25 chemistry problems", RewardPoints: 60,
			Requirement: domain.SubjectCount{Subject: "chemistry", N: 25},
		},
		{
			ID: "biology_25", Name: "Life Scientist", Category: domain.CatMastery,
			Icon: "🧬", Description: "Solve 25 biology problems", RewardPoints: 60,
			Requirement: domain.SubjectCount{Subject: "biology", N: 25},
		},
		{
			ID: "polymath", Name: "Polymath", Category: domain.CatMastery,
			Icon: "🎓", Description: "Solve 10 problems each in math, physics and chemistry", RewardPoints: 200,
			Requirement: domain.AllOf(
				domain.SubjectCount{Subject: "math", N: 10},
				domain.SubjectCount{Subject: "physics", N: 10},
				domain.SubjectCount{Subject: "chemistry", N: 10},
			),
		},

		// ── Special (4) ────────────────────────────────────────────────
		{
			ID: "points_1000", Name: "Point Collector", Category: domain.CatSpecial,
			Icon: "⭐", Description: "Earn 1,000 points", RewardPoints: 50,
			Requirement: domain.PointsTotal{N: 1000},
		},
		{
			ID: "points_10000", Name: "Point Tycoon", Category: domain.CatSpecial,
			Icon: "👑", Description: "Earn 10,000 points", RewardPoints: 250,
			Requirement: domain.PointsTotal{N: 10000},
		},
		{
			ID: "dedicated_learner", Name: "Dedicated Learner", Category: domain.CatSpecial,
			Icon: "🏅", Description: "Reach a 30-day streak with 200 problems solved", RewardPoints: 400,
			Requirement: domain.AllOf(
				domain.StreakLength{N: 30},
				domain.SolveCount{N: 200},
			),
		},
		{
			ID: "perfect_week_50", Name: "Study Marathon", Category: domain.CatSpecial,
			Icon: "🏃", Description: "Complete a perfect week with 50 problems solved", RewardPoints: 150,
			Requirement: domain.AllOf(
				domain.PerfectWeek{},
				domain.SolveCount{N: 50},
			),
		},
	}
}
