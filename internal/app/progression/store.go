package progression

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// Snapshot keys. One value per field of ProgressionState.
const (
	keyIsPremium                 = "isPremium"
	keyDailySolvesUsed           = "dailySolvesUsed"
	keyExtraSolveCredits         = "extraSolveCredits"
	keyLastSolveDate             = "lastSolveDate"
	keyCurrentStreak             = "currentStreak"
	keyLongestStreak             = "longestStreak"
	keyTotalSolves               = "totalSolves"
	keyPoints                    = "points"
	keyUnlockedAchievementIDs    = "unlockedAchievementIds"
	keyWeeklyCompletion          = "weeklyCompletion"
	keyLastUnlockedAchievementID = "lastUnlockedAchievementId"
	keySubjectSolves             = "subjectSolves"
)

var snapshotKeys = []string{
	keyIsPremium, keyDailySolvesUsed, keyExtraSolveCredits, keyLastSolveDate,
	keyCurrentStreak, keyLongestStreak, keyTotalSolves, keyPoints,
	keyUnlockedAchievementIDs, keyWeeklyCompletion, keyLastUnlockedAchievementID,
	keySubjectSolves,
}

// Store maps ProgressionState onto the key-value persistence mechanism.
type Store struct {
	kv domain.KVStore
}

// NewStore creates a snapshot store over kv.
func NewStore(kv domain.KVStore) *Store {
	return &Store{kv: kv}
}

// Load reads the snapshot. A missing snapshot yields the zero state.
// Fields that fail to decode default to their zero value; the returned
// error then wraps ErrPersistenceLoadCorrupt and names them, but the state
// is still usable.
func (st *Store) Load() (domain.ProgressionState, error) {
	var s domain.ProgressionState

	values, err := st.kv.GetValues(snapshotKeys)
	if err != nil {
		return s, fmt.Errorf("load progression: %w", err)
	}

	var corrupt []error
	bad := func(key string, err error) {
		corrupt = append(corrupt, fmt.Errorf("%s: %w", key, err))
	}

	if v, ok := values[keyIsPremium]; ok && v != "" {
		if s.IsPremium, err = strconv.ParseBool(v); err != nil {
			bad(keyIsPremium, err)
		}
	}
	s.DailySolvesUsed = decodeCount(values, keyDailySolvesUsed, bad)
	s.ExtraSolveCredits = decodeCount(values, keyExtraSolveCredits, bad)
	s.CurrentStreak = decodeCount(values, keyCurrentStreak, bad)
	s.LongestStreak = decodeCount(values, keyLongestStreak, bad)
	s.TotalSolves = decodeCount(values, keyTotalSolves, bad)

	if v, ok := values[keyPoints]; ok && v != "" {
		p, err := strconv.ParseInt(v, 10, 64)
		switch {
		case err != nil:
			bad(keyPoints, err)
		case p < 0:
			bad(keyPoints, fmt.Errorf("negative value %d", p))
		default:
			s.Points = p
		}
	}

	if v, ok := values[keyLastSolveDate]; ok {
		if s.LastSolveDate, err = domain.ParseDate(v); err != nil {
			bad(keyLastSolveDate, err)
		}
	}

	if v, ok := values[keyWeeklyCompletion]; ok && v != "" {
		if s.WeeklyCompletion, err = decodeWeek(v); err != nil {
			bad(keyWeeklyCompletion, err)
		}
	}

	if v, ok := values[keyUnlockedAchievementIDs]; ok && v != "" {
		var ids []string
		if err := json.Unmarshal([]byte(v), &ids); err != nil {
			bad(keyUnlockedAchievementIDs, err)
		} else {
			var dropped int
			s.UnlockedAchievementIDs, dropped = dedupe(ids)
			if dropped > 0 {
				bad(keyUnlockedAchievementIDs, fmt.Errorf("dropped %d empty or duplicate ids", dropped))
			}
		}
	}

	s.LastUnlockedAchievementID = values[keyLastUnlockedAchievementID]

	if v, ok := values[keySubjectSolves]; ok && v != "" {
		var counts map[string]int
		if err := json.Unmarshal([]byte(v), &counts); err != nil {
			bad(keySubjectSolves, err)
		} else {
			var dropped int
			s.SubjectSolves, dropped = cleanCounts(counts)
			if dropped > 0 {
				bad(keySubjectSolves, fmt.Errorf("dropped %d empty or non-positive counts", dropped))
			}
		}
	}

	if s.LongestStreak < s.CurrentStreak {
		bad(keyLongestStreak, fmt.Errorf("longest %d below current %d", s.LongestStreak, s.CurrentStreak))
		s.LongestStreak = s.CurrentStreak
	}

	if len(corrupt) > 0 {
		return s, fmt.Errorf("%w: %w", domain.ErrPersistenceLoadCorrupt, errors.Join(corrupt...))
	}
	return s, nil
}

// Save writes the whole aggregate in one atomic write.
func (st *Store) Save(s domain.ProgressionState) error {
	ids, err := json.Marshal(nonNil(s.UnlockedAchievementIDs))
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistenceWriteFailed, keyUnlockedAchievementIDs, err)
	}
	subjects := "{}"
	if len(s.SubjectSolves) > 0 {
		b, err := json.Marshal(s.SubjectSolves)
		if err != nil {
			return fmt.Errorf("%w: encode %s: %v", domain.ErrPersistenceWriteFailed, keySubjectSolves, err)
		}
		subjects = string(b)
	}

	values := map[string]string{
		keyIsPremium:                 boolStr(s.IsPremium),
		keyDailySolvesUsed:           strconv.Itoa(s.DailySolvesUsed),
		keyExtraSolveCredits:         strconv.Itoa(s.ExtraSolveCredits),
		keyLastSolveDate:             s.LastSolveDate.String(),
		keyCurrentStreak:             strconv.Itoa(s.CurrentStreak),
		keyLongestStreak:             strconv.Itoa(s.LongestStreak),
		keyTotalSolves:               strconv.Itoa(s.TotalSolves),
		keyPoints:                    strconv.FormatInt(s.Points, 10),
		keyUnlockedAchievementIDs:    string(ids),
		keyWeeklyCompletion:          encodeWeek(s.WeeklyCompletion),
		keyLastUnlockedAchievementID: s.LastUnlockedAchievementID,
		keySubjectSolves:             subjects,
	}
	if err := st.kv.SetValues(values); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceWriteFailed, err)
	}
	return nil
}

// ─── Field Codecs ───────────────────────────────────────────────────────────

func decodeCount(values map[string]string, key string, bad func(string, error)) int {
	v, ok := values[key]
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		bad(key, err)
		return 0
	}
	if n < 0 {
		bad(key, fmt.Errorf("negative value %d", n))
		return 0
	}
	return n
}

// encodeWeek renders the calendar as seven '0'/'1' characters, Sunday first.
func encodeWeek(week [7]bool) string {
	var b strings.Builder
	for _, done := range week {
		b.WriteString(boolStr(done))
	}
	return b.String()
}

func decodeWeek(v string) ([7]bool, error) {
	var week [7]bool
	if len(v) != 7 {
		return week, fmt.Errorf("want 7 slots, got %d", len(v))
	}
	for i := range 7 {
		switch v[i] {
		case '1':
			week[i] = true
		case '0':
		default:
			return [7]bool{}, fmt.Errorf("slot %d: invalid flag %q", i, v[i])
		}
	}
	return week, nil
}

// dedupe drops empty and repeated ids, keeping first-seen order, and
// reports how many it dropped.
func dedupe(ids []string) ([]string, int) {
	if len(ids) == 0 {
		return nil, 0
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	dropped := len(ids) - len(out)
	if len(out) == 0 {
		return nil, dropped
	}
	return out, dropped
}

func cleanCounts(counts map[string]int) (map[string]int, int) {
	var out map[string]int
	dropped := 0
	for k, v := range counts {
		if k == "" || v <= 0 {
			dropped++
			continue
		}
		if out == nil {
			out = make(map[string]int, len(counts))
		}
		out[k] = v
	}
	return out, dropped
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func boolStr(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
