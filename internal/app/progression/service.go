// Package progression implements the SnapSolve progression engine:
// daily solve quota, learning streaks, points, achievements and cosmetic
// levels, composed behind a single Service.
//
// Components other than Service are pure functions over
// domain.ProgressionState. Service owns the state, serializes mutations and
// is the only caller of the snapshot Store.
package progression

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/infra/metrics"
)

// Config holds tunable economy constants.
type Config struct {
	DailyBase      int   // Free solves per day
	PointsPerSolve int64 // Awarded for every accepted solve
}

// DefaultConfig returns the shipped economy.
func DefaultConfig() Config {
	return Config{
		DailyBase:      DefaultDailyBase,
		PointsPerSolve: DefaultPointsPerSolve,
	}
}

// Options wires a Service. Clock and KV are required; a zero Config means
// DefaultConfig().
type Options struct {
	Config    Config
	Clock     domain.Clock
	KV        domain.KVStore
	Catalog   []domain.AchievementDef  // nil = DefaultCatalog()
	Cosmetics []domain.CosmeticItem    // nil = DefaultCosmetics()
	Reminders domain.ReminderScheduler // optional
	Logger    *slog.Logger             // nil = slog.Default()
}

// Service is the single entry point the UI layer calls.
// Mutations are serialized; queries read a consistent deep copy.
type Service struct {
	mu    sync.RWMutex
	state domain.ProgressionState
	dirty bool // Last save failed; next mutation or Flush rewrites

	clock          domain.Clock
	store          *Store
	quota          *QuotaManager
	streak         StreakTracker
	points         PointsLedger
	achievements   *AchievementEngine
	levels         *LevelGate
	reminders      domain.ReminderScheduler
	pointsPerSolve int64
	log            *slog.Logger
}

// NewService loads the persisted state and returns a ready Service.
// Load problems are never fatal: corrupt fields default to zero and an
// unreadable store starts from the default state. Both are logged.
func NewService(opts Options) (*Service, error) {
	if opts.Clock == nil {
		return nil, errors.New("progression: clock is required")
	}
	if opts.KV == nil {
		return nil, errors.New("progression: key-value store is required")
	}
	if opts.Config == (Config{}) {
		opts.Config = DefaultConfig()
	}
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Cosmetics == nil {
		opts.Cosmetics = DefaultCosmetics()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	pointsPerSolve := opts.Config.PointsPerSolve
	if pointsPerSolve < 0 {
		return nil, fmt.Errorf("progression: points per solve: %w: %d", domain.ErrInvalidAward, pointsPerSolve)
	}

	engine, err := NewAchievementEngine(opts.Catalog)
	if err != nil {
		return nil, fmt.Errorf("progression: %w", err)
	}

	s := &Service{
		clock:          opts.Clock,
		store:          NewStore(opts.KV),
		quota:          NewQuotaManager(opts.Config.DailyBase),
		achievements:   engine,
		levels:         NewLevelGate(opts.Cosmetics),
		reminders:      opts.Reminders,
		pointsPerSolve: pointsPerSolve,
		log:            opts.Logger.With("component", "progression"),
	}

	state, err := s.store.Load()
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrPersistenceLoadCorrupt):
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		s.log.Warn("progression snapshot partially corrupt, defaulted bad fields", "error", err)
	default:
		metrics.PersistenceFailures.WithLabelValues("load").Inc()
		s.log.Error("progression snapshot unreadable, starting from defaults", "error", err)
		state = domain.ProgressionState{}
	}
	s.state = state
	s.observe()

	return s, nil
}

// ─── Results ────────────────────────────────────────────────────────────────

// SolveResult is the delta handed back to the UI after a solve.
type SolveResult struct {
	Date             domain.Date             `json:"date" yaml:"date"`
	QuotaRemaining   int                     `json:"quota_remaining" yaml:"quota_remaining"` // Unlimited (-1) for premium
	CurrentStreak    int                     `json:"current_streak" yaml:"current_streak"`
	LongestStreak    int                     `json:"longest_streak" yaml:"longest_streak"`
	StreakCounted    bool                    `json:"streak_counted" yaml:"streak_counted"` // First solve of the day
	MilestoneReached bool                    `json:"milestone_reached" yaml:"milestone_reached"`
	Milestone        int                     `json:"milestone,omitempty" yaml:"milestone,omitempty"`
	PointsDelta      int64                   `json:"points_delta" yaml:"points_delta"`
	Breakdown        PointsBreakdown         `json:"breakdown" yaml:"breakdown"`
	Points           int64                   `json:"points" yaml:"points"`
	TotalSolves      int                     `json:"total_solves" yaml:"total_solves"`
	Level            int                     `json:"level" yaml:"level"`
	LeveledUp        bool                    `json:"leveled_up" yaml:"leveled_up"`
	Unlocked         []domain.AchievementDef `json:"unlocked" yaml:"unlocked"`
	Cosmetics        []domain.CosmeticItem   `json:"cosmetics_unlocked,omitempty" yaml:"cosmetics_unlocked,omitempty"`
}

// Status is the read-only projection shown on the home screen.
type Status struct {
	Date                      domain.Date         `json:"date" yaml:"date"`
	Remaining                 int                 `json:"remaining" yaml:"remaining"`
	DailyBase                 int                 `json:"daily_base" yaml:"daily_base"`
	DailySolvesUsed           int                 `json:"daily_solves_used" yaml:"daily_solves_used"`
	ExtraSolveCredits         int                 `json:"extra_solve_credits" yaml:"extra_solve_credits"`
	Premium                   bool                `json:"premium" yaml:"premium"`
	StreakStatus              domain.StreakStatus `json:"streak_status" yaml:"streak_status"`
	CurrentStreak             int                 `json:"current_streak" yaml:"current_streak"`
	LongestStreak             int                 `json:"longest_streak" yaml:"longest_streak"`
	NextMilestone             int                 `json:"next_milestone,omitempty" yaml:"next_milestone,omitempty"`
	WeeklyCompletion          [7]bool             `json:"weekly_completion" yaml:"weekly_completion"`
	Level                     int                 `json:"level" yaml:"level"`
	SolvesToNextLevel         int                 `json:"solves_to_next_level" yaml:"solves_to_next_level"`
	Points                    int64               `json:"points" yaml:"points"`
	TotalSolves               int                 `json:"total_solves" yaml:"total_solves"`
	UnlockedCount             int                 `json:"unlocked_count" yaml:"unlocked_count"`
	TotalAchievements         int                 `json:"total_achievements" yaml:"total_achievements"`
	LastUnlockedAchievementID string              `json:"last_unlocked_achievement_id,omitempty" yaml:"last_unlocked_achievement_id,omitempty"`
}

// AchievementProgress is a locked or unlocked achievement with its progress.
type AchievementProgress struct {
	domain.AchievementDef `yaml:",inline"`
	Kind                  domain.RequirementKind `json:"kind" yaml:"kind"`
	Unlocked              bool                   `json:"unlocked" yaml:"unlocked"`
	Current               int64                  `json:"current" yaml:"current"`
	Target                int64                  `json:"target" yaml:"target"`
}

// ─── Mutations ──────────────────────────────────────────────────────────────

// RecordSolve runs the solve pipeline: quota, streak, milestone bonus,
// per-solve points, counters, achievements, persist.
//
// On ErrQuotaExhausted nothing changes and nothing is written. If the
// write fails the returned error wraps ErrPersistenceWriteFailed, but the
// result is valid and the in-memory state keeps the solve.
func (s *Service) RecordSolve(subject string) (SolveResult, error) {
	return s.RecordSolveAt(subject, s.clock.Now())
}

// RecordSolveAt is RecordSolve for an explicit instant. The calendar day is
// taken in now's location.
func (s *Service) RecordSolveAt(subject string, now time.Time) (SolveResult, error) {
	start := time.Now()
	res, err := s.recordSolve(subject, now)
	if err == nil || errors.Is(err, domain.ErrPersistenceWriteFailed) {
		// Outside the lock: reminder I/O never stalls readers.
		s.remindTomorrow(res.Date, res.CurrentStreak)
	}
	metrics.SolveLatency.Observe(time.Since(start).Seconds())
	return res, err
}

func (s *Service) recordSolve(subject string, now time.Time) (SolveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.DateOf(now)
	event := domain.SolveEvent{OccurredOn: today, Subject: domain.NormalizeSubject(subject)}

	before := s.state
	next, err := s.quota.Consume(before.Clone(), event.OccurredOn)
	if err != nil {
		metrics.QuotaExhausted.Inc()
		s.log.Info("solve rejected", "date", today.String(), "error", err)
		return SolveResult{}, err
	}

	next, adv := s.streak.Advance(next, before.LastSolveDate, event.OccurredOn)

	var breakdown PointsBreakdown
	if adv.Milestone > 0 {
		next, err = s.points.Award(next, adv.Bonus, SourceMilestone)
		if err != nil {
			s.log.Error("milestone award ignored", "milestone", adv.Milestone, "error", err)
		} else {
			breakdown.Milestone = adv.Bonus
		}
	}
	next, err = s.points.Award(next, s.pointsPerSolve, SourceSolve)
	if err != nil {
		s.log.Error("solve award ignored", "error", err)
	} else {
		breakdown.Solve = s.pointsPerSolve
	}

	next.TotalSolves++
	if event.Subject != "" {
		if next.SubjectSolves == nil {
			next.SubjectSolves = make(map[string]int)
		}
		next.SubjectSolves[event.Subject]++
	}

	pointsBeforeUnlocks := next.Points
	next, unlocked := s.achievements.Evaluate(next)
	breakdown.Achievements = next.Points - pointsBeforeUnlocks

	oldLevel, newLevel := Level(before), Level(next)
	result := SolveResult{
		Date:             event.OccurredOn,
		QuotaRemaining:   s.quota.Remaining(next, event.OccurredOn),
		CurrentStreak:    next.CurrentStreak,
		LongestStreak:    next.LongestStreak,
		StreakCounted:    adv.Counted,
		MilestoneReached: adv.Milestone > 0,
		Milestone:        adv.Milestone,
		PointsDelta:      next.Points - before.Points,
		Breakdown:        breakdown,
		Points:           next.Points,
		TotalSolves:      next.TotalSolves,
		Level:            newLevel,
		LeveledUp:        newLevel > oldLevel,
		Unlocked:         unlocked,
		Cosmetics:        s.levels.UnlockedBetween(oldLevel, newLevel),
	}

	s.recordSolveMetrics(adv, breakdown, unlocked)
	s.log.Debug("solve recorded",
		"date", event.OccurredOn.String(),
		"subject", event.Subject,
		"streak", next.CurrentStreak,
		"points_delta", result.PointsDelta,
		"unlocked", len(unlocked),
	)

	return result, s.commit(next)
}

// Evaluate re-runs the achievement catalog against the current state, for
// example after an app update added definitions. Persists only when
// something unlocked.
func (s *Service) Evaluate() ([]domain.AchievementDef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, unlocked := s.achievements.Evaluate(s.state)
	if len(unlocked) == 0 {
		return nil, s.flushLocked()
	}
	var awarded int64
	for _, def := range unlocked {
		awarded += def.RewardPoints
		metrics.AchievementsUnlocked.WithLabelValues(string(def.Category)).Inc()
	}
	metrics.PointsAwarded.WithLabelValues(string(SourceAchievement)).Add(float64(awarded))
	return unlocked, s.commit(next)
}

// ApplyEntitlementChange records the premium flag reported by the
// purchase flow.
func (s *Service) ApplyEntitlementChange(isPremium bool) (Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.IsPremium = isPremium
	s.log.Info("entitlement changed", "premium", isPremium)
	err := s.commit(next)
	return s.statusLocked(), err
}

// GrantExtraCredits adds n purchased solve credits. n must be positive.
func (s *Service) GrantExtraCredits(n int) (Status, error) {
	if n <= 0 {
		return Status{}, fmt.Errorf("%w: got %d", domain.ErrInvalidCreditGrant, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	next.ExtraSolveCredits += n
	s.log.Info("extra credits granted", "amount", n, "balance", next.ExtraSolveCredits)
	err := s.commit(next)
	return s.statusLocked(), err
}

// AcknowledgeUnlock clears the one-shot unlock notification and returns the
// id that was pending ("" if none).
func (s *Service) AcknowledgeUnlock() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.state.LastUnlockedAchievementID
	if id == "" {
		return "", nil
	}
	next := s.state.Clone()
	next.LastUnlockedAchievementID = ""
	return id, s.commit(next)
}

// Reset reinitializes progression to defaults. Purchased entitlement
// (premium flag and unspent credits) survives: it was paid for.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := domain.ProgressionState{
		IsPremium:         s.state.IsPremium,
		ExtraSolveCredits: s.state.ExtraSolveCredits,
	}
	s.log.Warn("progression reset",
		"points", s.state.Points,
		"total_solves", s.state.TotalSolves,
		"unlocked", len(s.state.UnlockedAchievementIDs),
	)
	return s.commit(next)
}

// Flush retries a failed write. No-op when the last write succeeded.
func (s *Service) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

// Dirty reports whether the in-memory state has changes the last write
// failed to persist.
func (s *Service) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// ─── Queries ────────────────────────────────────────────────────────────────

// Status returns the home-screen projection for the clock's current day.
// Day and week rollovers are applied to the projection only; the stored
// state changes on the next mutation.
func (s *Service) Status() Status {
	return s.StatusAt(s.clock.Now())
}

// StatusAt returns the projection for the day now falls on.
func (s *Service) StatusAt(now time.Time) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusAt(now)
}

// Snapshot returns a deep copy of the stored state.
func (s *Service) Snapshot() domain.ProgressionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Remaining returns solves left today, Unlimited for premium.
func (s *Service) Remaining() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quota.Remaining(s.state, domain.DateOf(s.clock.Now()))
}

// Level returns the current cosmetic level.
func (s *Service) Level() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Level(s.state)
}

// PreviewProgress returns progress toward one achievement.
func (s *Service) PreviewProgress(id string) (AchievementProgress, error) {
	def, ok := s.achievements.Lookup(id)
	if !ok {
		return AchievementProgress{}, fmt.Errorf("%w: %q", domain.ErrAchievementNotFound, id)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	view, _ := s.viewLocked()
	return progressOf(def, view), nil
}

// Achievements lists the whole catalog with unlock state and progress.
func (s *Service) Achievements() []AchievementProgress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view, _ := s.viewLocked()
	out := make([]AchievementProgress, 0, len(s.achievements.Catalog()))
	for _, def := range s.achievements.Catalog() {
		out = append(out, progressOf(def, view))
	}
	return out
}

// Cosmetics lists cosmetic items with lock state.
func (s *Service) Cosmetics() []CosmeticStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levels.Items(s.state)
}

// ─── Internals ──────────────────────────────────────────────────────────────

// viewLocked applies the lazy day and week rollovers to a copy of the state.
func (s *Service) viewLocked() (domain.ProgressionState, domain.Date) {
	return s.viewAt(s.clock.Now())
}

func (s *Service) viewAt(now time.Time) (domain.ProgressionState, domain.Date) {
	today := domain.DateOf(now)
	view := s.quota.Roll(s.state.Clone(), today)
	view = s.streak.RollWeek(view, today)
	return view, today
}

func (s *Service) statusLocked() Status {
	return s.statusAt(s.clock.Now())
}

func (s *Service) statusAt(now time.Time) Status {
	view, today := s.viewAt(now)
	return Status{
		Date:                      today,
		Remaining:                 s.quota.Remaining(view, today),
		DailyBase:                 s.quota.DailyBase(),
		DailySolvesUsed:           view.DailySolvesUsed,
		ExtraSolveCredits:         view.ExtraSolveCredits,
		Premium:                   view.IsPremium,
		StreakStatus:              s.streak.Status(view, today),
		CurrentStreak:             s.streak.DisplayStreak(view, today),
		LongestStreak:             view.LongestStreak,
		NextMilestone:             NextMilestone(s.streak.DisplayStreak(view, today)),
		WeeklyCompletion:          view.WeeklyCompletion,
		Level:                     Level(view),
		SolvesToNextLevel:         SolvesToNextLevel(view),
		Points:                    view.Points,
		TotalSolves:               view.TotalSolves,
		UnlockedCount:             len(view.UnlockedAchievementIDs),
		TotalAchievements:         len(s.achievements.Catalog()),
		LastUnlockedAchievementID: view.LastUnlockedAchievementID,
	}
}

func progressOf(def domain.AchievementDef, view domain.ProgressionState) AchievementProgress {
	unlocked := view.HasUnlocked(def.ID)
	current, target := Progress(view, def.Requirement)
	if unlocked {
		current = target
	}
	return AchievementProgress{
		AchievementDef: def,
		Kind:           def.Requirement.Kind(),
		Unlocked:       unlocked,
		Current:        current,
		Target:         target,
	}
}

// commit installs next as the current state and writes it through.
// A failed write keeps next in memory and marks the service dirty.
func (s *Service) commit(next domain.ProgressionState) error {
	s.state = next
	s.observe()
	if err := s.store.Save(next); err != nil {
		s.dirty = true
		metrics.PersistenceFailures.WithLabelValues("save").Inc()
		s.log.Error("progression snapshot write failed, keeping in-memory state", "error", err)
		return err
	}
	if s.dirty {
		s.log.Info("progression snapshot write recovered")
	}
	s.dirty = false
	return nil
}

func (s *Service) flushLocked() error {
	if !s.dirty {
		return nil
	}
	return s.commit(s.state)
}

// remindTomorrow cancels today's streak-risk reminder (the user solved)
// and asks for one tomorrow. Failures are logged only.
func (s *Service) remindTomorrow(today domain.Date, streak int) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.CancelStreakReminder(today); err != nil {
		s.log.Warn("cancel streak reminder", "date", today.String(), "error", err)
	}
	r := domain.StreakReminder{Date: today.AddDays(1), Streak: streak}
	if err := s.reminders.ScheduleStreakReminder(r); err != nil {
		s.log.Warn("schedule streak reminder", "date", r.Date.String(), "error", err)
	}
}

func (s *Service) recordSolveMetrics(adv StreakAdvance, b PointsBreakdown, unlocked []domain.AchievementDef) {
	metrics.SolvesRecorded.Inc()
	metrics.PointsAwarded.WithLabelValues(string(SourceSolve)).Add(float64(b.Solve))
	if adv.Milestone > 0 {
		metrics.StreakMilestones.WithLabelValues(strconv.Itoa(adv.Milestone)).Inc()
		metrics.PointsAwarded.WithLabelValues(string(SourceMilestone)).Add(float64(b.Milestone))
	}
	if b.Achievements > 0 {
		metrics.PointsAwarded.WithLabelValues(string(SourceAchievement)).Add(float64(b.Achievements))
	}
	for _, def := range unlocked {
		metrics.AchievementsUnlocked.WithLabelValues(string(def.Category)).Inc()
	}
}

func (s *Service) observe() {
	metrics.PointsBalance.Set(float64(s.state.Points))
	metrics.CurrentStreak.Set(float64(s.state.CurrentStreak))
}
