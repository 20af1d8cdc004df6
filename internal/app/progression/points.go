package progression

import (
	"fmt"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// DefaultPointsPerSolve is awarded for every accepted solve.
const DefaultPointsPerSolve int64 = 10

// PointSource tags where an award came from.
type PointSource string

const (
	SourceSolve       PointSource = "solve"
	SourceMilestone   PointSource = "milestone"
	SourceAchievement PointSource = "achievement"
)

// PointsLedger accumulates points. No decay, no expiry, no refunds.
type PointsLedger struct{}

// Award adds amount to the balance. Negative amounts are rejected with
// ErrInvalidAward and leave the state unchanged.
func (PointsLedger) Award(s domain.ProgressionState, amount int64, source PointSource) (domain.ProgressionState, error) {
	if amount < 0 {
		return s, fmt.Errorf("%w: %d points from %s", domain.ErrInvalidAward, amount, source)
	}
	s.Points += amount
	return s, nil
}

// PointsBreakdown splits a points delta by source.
type PointsBreakdown struct {
	Solve        int64 `json:"solve" yaml:"solve"`
	Milestone    int64 `json:"milestone" yaml:"milestone"`
	Achievements int64 `json:"achievements" yaml:"achievements"`
}

// Total returns the sum of all sources.
func (b PointsBreakdown) Total() int64 {
	return b.Solve + b.Milestone + b.Achievements
}
