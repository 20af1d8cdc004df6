package domain

// ─── Achievement Types ──────────────────────────────────────────────────────

// AchievementCategory groups achievements by theme.
type AchievementCategory string

const (
	CatProgress    AchievementCategory = "progress"
	CatConsistency AchievementCategory = "consistency"
	CatMastery     AchievementCategory = "mastery"
	CatSpecial     AchievementCategory = "special"
)

// AchievementDef defines a single achievement. The catalog is static.
type AchievementDef struct {
	ID           string              `json:"id" yaml:"id"`
	Name         string              `json:"name" yaml:"name"`
	Description  string              `json:"description" yaml:"description"`
	Icon         string              `json:"icon" yaml:"icon"`
	Category     AchievementCategory `json:"category" yaml:"category"`
	Requirement  Requirement         `json:"-" yaml:"-"`
	RewardPoints int64               `json:"reward_points" yaml:"reward_points"`
}

// ─── Requirements ───────────────────────────────────────────────────────────
// Requirement is a closed set of variants; evaluation switches on the
// concrete type. Each variant carries only the fields it needs.

// RequirementKind names a requirement variant on the wire.
type RequirementKind string

const (
	KindSolveCount   RequirementKind = "solve_count"
	KindStreakLength RequirementKind = "streak_length"
	KindPointsTotal  RequirementKind = "points_total"
	KindPerfectWeek  RequirementKind = "perfect_week"
	KindSubjectCount RequirementKind = "subject_count"
	KindComposite    RequirementKind = "composite"
)

// Requirement is implemented only by the variants in this file.
type Requirement interface {
	Kind() RequirementKind
	isRequirement()
}

// SolveCount holds once TotalSolves >= N.
type SolveCount struct{ N int }

// StreakLength holds once CurrentStreak >= N.
type StreakLength struct{ N int }

// PointsTotal holds once Points >= N.
type PointsTotal struct{ N int64 }

// PerfectWeek holds when every day of the current week has a solve.
type PerfectWeek struct{}

// SubjectCount holds once the subject has at least N solves.
type SubjectCount struct {
	Subject string
	N       int
}

// Composite holds when all of its children hold.
type Composite struct{ All []Requirement }

func (SolveCount) Kind() RequirementKind   { return KindSolveCount }
func (StreakLength) Kind() RequirementKind { return KindStreakLength }
func (PointsTotal) Kind() RequirementKind  { return KindPointsTotal }
func (PerfectWeek) Kind() RequirementKind  { return KindPerfectWeek }
func (SubjectCount) Kind() RequirementKind { return KindSubjectCount }
func (Composite) Kind() RequirementKind    { return KindComposite }

func (SolveCount) isRequirement()   {}
func (StreakLength) isRequirement() {}
func (PointsTotal) isRequirement()  {}
func (PerfectWeek) isRequirement()  {}
func (SubjectCount) isRequirement() {}
func (Composite) isRequirement()    {}

// AllOf builds a Composite requirement.
func AllOf(reqs ...Requirement) Composite {
	return Composite{All: reqs}
}
