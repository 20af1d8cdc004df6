package progression

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/snapsolve/snapsolve/internal/domain"
)

func TestStore_EmptyLoadsDefaults(t *testing.T) {
	st := NewStore(newMemKV())
	s, err := st.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(s, domain.ProgressionState{}) {
		t.Errorf("Load() = %+v, want zero state", s)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	full := domain.ProgressionState{
		DailySolvesUsed:           3,
		ExtraSolveCredits:         7,
		IsPremium:                 true,
		LastSolveDate:             day(4),
		CurrentStreak:             5,
		LongestStreak:             12,
		WeeklyCompletion:          [7]bool{true, false, true, true, true, false, false},
		TotalSolves:               88,
		SubjectSolves:             map[string]int{"math": 40, "physics": 2},
		Points:                    1234,
		UnlockedAchievementIDs:    []string{"first_solve", "solves_10", "streak_3"},
		LastUnlockedAchievementID: "streak_3",
	}

	for name, want := range map[string]domain.ProgressionState{
		"full":    full,
		"default": {},
	} {
		t.Run(name, func(t *testing.T) {
			st := NewStore(newMemKV())
			if err := st.Save(want); err != nil {
				t.Fatalf("Save() error: %v", err)
			}
			got, err := st.Load()
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("round trip:\n got  %+v\n want %+v", got, want)
			}
		})
	}
}

func TestStore_SingleWrite(t *testing.T) {
	kv := newMemKV()
	if err := NewStore(kv).Save(domain.ProgressionState{Points: 5}); err != nil {
		t.Fatal(err)
	}
	if kv.writes() != 1 {
		t.Errorf("SetValues called %d times, want 1", kv.writes())
	}
	if len(kv.values) != len(snapshotKeys) {
		t.Errorf("wrote %d keys, want %d", len(kv.values), len(snapshotKeys))
	}
}

func TestStore_CorruptFieldsDefault(t *testing.T) {
	kv := newMemKV()
	kv.values = map[string]string{
		keyIsPremium:              "1",
		keyDailySolvesUsed:        "two",
		keyExtraSolveCredits:      "-4",
		keyLastSolveDate:          "2026-13-45",
		keyCurrentStreak:          "6",
		keyLongestStreak:          "9",
		keyTotalSolves:            "61",
		keyPoints:                 "lots",
		keyUnlockedAchievementIDs: "[not json",
		keyWeeklyCompletion:       "10x",
		keySubjectSolves:          `{"math": 4}`,
	}

	s, err := NewStore(kv).Load()
	if !errors.Is(err, domain.ErrPersistenceLoadCorrupt) {
		t.Fatalf("err = %v, want ErrPersistenceLoadCorrupt", err)
	}
	if !s.IsPremium || s.CurrentStreak != 6 || s.LongestStreak != 9 || s.TotalSolves != 61 {
		t.Errorf("good fields lost: %+v", s)
	}
	if s.DailySolvesUsed != 0 || s.ExtraSolveCredits != 0 || s.Points != 0 {
		t.Errorf("bad counters not defaulted: %+v", s)
	}
	if !s.LastSolveDate.IsZero() || s.UnlockedAchievementIDs != nil || s.WeeklyCompletion != ([7]bool{}) {
		t.Errorf("bad structured fields not defaulted: %+v", s)
	}
	if s.SolvesIn("math") != 4 {
		t.Errorf("subjects = %v", s.SubjectSolves)
	}
}

func TestStore_RepairsLongestBelowCurrent(t *testing.T) {
	kv := newMemKV()
	kv.values = map[string]string{keyCurrentStreak: "8", keyLongestStreak: "3"}

	s, err := NewStore(kv).Load()
	if !errors.Is(err, domain.ErrPersistenceLoadCorrupt) {
		t.Errorf("err = %v, want ErrPersistenceLoadCorrupt", err)
	}
	if s.LongestStreak != 8 {
		t.Errorf("longest = %d, want repaired to 8", s.LongestStreak)
	}
}

func TestStore_DedupesUnlocked(t *testing.T) {
	kv := newMemKV()
	kv.values = map[string]string{keyUnlockedAchievementIDs: `["a","b","a",""]`}

	s, err := NewStore(kv).Load()
	if !errors.Is(err, domain.ErrPersistenceLoadCorrupt) {
		t.Fatalf("err = %v, want ErrPersistenceLoadCorrupt", err)
	}
	if !strings.Contains(err.Error(), keyUnlockedAchievementIDs) {
		t.Errorf("err should name the repaired key: %v", err)
	}
	if !reflect.DeepEqual(s.UnlockedAchievementIDs, []string{"a", "b"}) {
		t.Errorf("unlocked = %v", s.UnlockedAchievementIDs)
	}
}

func TestStore_DropsBadSubjectCounts(t *testing.T) {
	kv := newMemKV()
	kv.values = map[string]string{keySubjectSolves: `{"math": 3, "": 2, "physics": 0}`}

	s, err := NewStore(kv).Load()
	if !errors.Is(err, domain.ErrPersistenceLoadCorrupt) {
		t.Fatalf("err = %v, want ErrPersistenceLoadCorrupt", err)
	}
	if !reflect.DeepEqual(s.SubjectSolves, map[string]int{"math": 3}) {
		t.Errorf("subjects = %v", s.SubjectSolves)
	}
}

func TestStore_CleanListsLoadWithoutError(t *testing.T) {
	kv := newMemKV()
	kv.values = map[string]string{
		keyUnlockedAchievementIDs: `["a","b"]`,
		keySubjectSolves:          `{"math": 3}`,
	}
	if _, err := NewStore(kv).Load(); err != nil {
		t.Errorf("Load() error: %v", err)
	}
	kv.values = map[string]string{keyUnlockedAchievementIDs: `[]`, keySubjectSolves: `{}`}
	if _, err := NewStore(kv).Load(); err != nil {
		t.Errorf("Load() of empty lists error: %v", err)
	}
}

func TestStore_Errors(t *testing.T) {
	kv := newMemKV()
	kv.failSet = true
	if err := NewStore(kv).Save(domain.ProgressionState{}); !errors.Is(err, domain.ErrPersistenceWriteFailed) {
		t.Errorf("Save() err = %v, want ErrPersistenceWriteFailed", err)
	}

	kv.failGet = true
	_, err := NewStore(kv).Load()
	if err == nil || errors.Is(err, domain.ErrPersistenceLoadCorrupt) {
		t.Errorf("Load() err = %v, want read failure", err)
	}
	if !errors.Is(err, errDiskFull) {
		t.Errorf("Load() should wrap the store error, got %v", err)
	}
}
