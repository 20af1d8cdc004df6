package progression

import (
	"errors"
	"testing"

	"github.com/snapsolve/snapsolve/internal/domain"
)

func TestPoints_Award(t *testing.T) {
	var l PointsLedger
	s, err := l.Award(domain.ProgressionState{Points: 15}, 10, SourceSolve)
	if err != nil {
		t.Fatalf("Award() error: %v", err)
	}
	if s.Points != 25 {
		t.Errorf("points = %d, want 25", s.Points)
	}

	s, err = l.Award(s, 0, SourceSolve)
	if err != nil || s.Points != 25 {
		t.Errorf("zero award: points=%d err=%v", s.Points, err)
	}
}

func TestPoints_RejectsNegative(t *testing.T) {
	var l PointsLedger
	in := domain.ProgressionState{Points: 15}
	out, err := l.Award(in, -5, SourceMilestone)
	if !errors.Is(err, domain.ErrInvalidAward) {
		t.Fatalf("err = %v, want ErrInvalidAward", err)
	}
	if out.Points != 15 {
		t.Errorf("points = %d, want unchanged 15", out.Points)
	}
}

func TestPointsBreakdown_Total(t *testing.T) {
	b := PointsBreakdown{Solve: 10, Milestone: 70, Achievements: 50}
	if b.Total() != 130 {
		t.Errorf("Total() = %d, want 130", b.Total())
	}
}
