package progression

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// 2026-10-18 is a Sunday.
var sunday = domain.Date{Year: 2026, Month: time.October, Day: 18}

func day(offset int) domain.Date { return sunday.AddDays(offset) }

// at returns noon UTC on the given day offset from sunday.
func at(offset int) time.Time { return day(offset).At(12, 0, time.UTC) }

// manualClock is a settable domain.Clock.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(t time.Time) *manualClock { return &manualClock{now: t} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func (c *manualClock) AddDays(n int) {
	c.mu.Lock()
	c.now = c.now.AddDate(0, 0, n)
	c.mu.Unlock()
}

// memKV is an in-memory domain.KVStore with switchable failures.
type memKV struct {
	mu       sync.Mutex
	values   map[string]string
	failSet  bool
	failGet  bool
	setCalls int
}

var errDiskFull = errors.New("disk full")

func newMemKV() *memKV { return &memKV{values: make(map[string]string)} }

func (m *memKV) GetValues(keys []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet {
		return nil, errDiskFull
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *memKV) SetValues(values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failSet {
		return errDiskFull
	}
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *memKV) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setCalls
}

// checkInvariants fails the test if any state invariant is broken.
func checkInvariants(t *testing.T, s domain.ProgressionState) {
	t.Helper()
	if s.LongestStreak < s.CurrentStreak {
		t.Errorf("longest %d < current %d", s.LongestStreak, s.CurrentStreak)
	}
	if s.DailySolvesUsed < 0 || s.ExtraSolveCredits < 0 || s.TotalSolves < 0 || s.Points < 0 {
		t.Errorf("negative counter in %+v", s)
	}
}
