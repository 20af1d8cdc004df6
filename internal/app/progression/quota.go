package progression

import (
	"fmt"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// Unlimited is reported as the remaining quota of premium users.
const Unlimited = -1

// DefaultDailyBase is the free solve allowance per calendar day.
const DefaultDailyBase = 5

// QuotaManager computes the daily solve allowance.
// Base allowance is spent before purchased credits. Premium is unlimited.
type QuotaManager struct {
	dailyBase int
}

// NewQuotaManager creates a quota manager. A non-positive base falls back
// to DefaultDailyBase.
func NewQuotaManager(dailyBase int) *QuotaManager {
	if dailyBase <= 0 {
		dailyBase = DefaultDailyBase
	}
	return &QuotaManager{dailyBase: dailyBase}
}

// DailyBase returns the configured free allowance.
func (q *QuotaManager) DailyBase() int {
	return q.dailyBase
}

// Roll resets the daily counter when the last solve was not today.
// Applying it twice on the same day is a no-op.
func (q *QuotaManager) Roll(s domain.ProgressionState, today domain.Date) domain.ProgressionState {
	if s.LastSolveDate != today {
		s.DailySolvesUsed = 0
	}
	return s
}

// Remaining returns the solves left today, or Unlimited for premium.
func (q *QuotaManager) Remaining(s domain.ProgressionState, today domain.Date) int {
	if s.IsPremium {
		return Unlimited
	}
	s = q.Roll(s, today)
	return q.baseLeft(s) + s.ExtraSolveCredits
}

// Consume spends one solve. On ErrQuotaExhausted the returned state is the
// input unchanged.
func (q *QuotaManager) Consume(s domain.ProgressionState, today domain.Date) (domain.ProgressionState, error) {
	rolled := q.Roll(s, today)

	switch {
	case rolled.IsPremium:
		rolled.DailySolvesUsed++
	case q.baseLeft(rolled) > 0:
		rolled.DailySolvesUsed++
	case rolled.ExtraSolveCredits > 0:
		rolled.ExtraSolveCredits--
	default:
		return s, fmt.Errorf("%w: %d of %d used on %s", domain.ErrQuotaExhausted,
			rolled.DailySolvesUsed, q.dailyBase, today)
	}

	rolled.LastSolveDate = today
	return rolled, nil
}

func (q *QuotaManager) baseLeft(s domain.ProgressionState) int {
	left := q.dailyBase - s.DailySolvesUsed
	if left < 0 {
		return 0
	}
	return left
}
