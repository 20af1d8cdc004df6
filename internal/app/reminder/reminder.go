// Package reminder queues streak-risk reminders for the platform push
// scheduler. Policy:
//   - At most MaxPerDay reminders per calendar day
//   - Nothing inside quiet hours; a reminder that would land there is
//     moved to the end of the quiet window on the same day
//   - Only a live streak is worth a reminder
package reminder

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/infra/metrics"
	"github.com/snapsolve/snapsolve/internal/infra/sqlite"
)

// Service implements domain.ReminderScheduler over the reminders table.
type Service struct {
	db     *sqlite.DB
	clock  domain.Clock
	policy domain.ReminderPolicy
	log    *slog.Logger

	// Policy times in minutes after midnight.
	hour, quietStart, quietEnd int
}

// NewService creates a reminder service with the default policy.
func NewService(db *sqlite.DB, clock domain.Clock, logger *slog.Logger) *Service {
	// The default policy always validates.
	s, _ := NewServiceWithPolicy(db, clock, domain.DefaultReminderPolicy(), logger)
	return s
}

// NewServiceWithPolicy creates a reminder service with a custom policy.
// Malformed policy times are rejected with domain.ErrInvalidReminderPolicy.
func NewServiceWithPolicy(db *sqlite.DB, clock domain.Clock, policy domain.ReminderPolicy, logger *slog.Logger) (*Service, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if policy.MaxPerDay <= 0 {
		policy.MaxPerDay = 1
	}
	s := &Service{
		db:     db,
		clock:  clock,
		policy: policy,
		log:    logger.With("component", "reminder"),
	}
	// Validated above.
	s.hour, _ = domain.ParseClockTime(policy.Hour)
	s.quietStart, _ = domain.ParseClockTime(policy.QuietStart)
	s.quietEnd, _ = domain.ParseClockTime(policy.QuietEnd)
	return s, nil
}

// ScheduleStreakReminder queues a reminder for r.Date if policy allows it.
// A suppressed or duplicate request is not an error.
func (s *Service) ScheduleStreakReminder(r domain.StreakReminder) error {
	if !s.policy.Enabled || r.Streak <= 0 {
		metrics.Reminders.WithLabelValues("suppressed").Inc()
		return nil
	}

	count, err := s.db.ReminderCountOn(r.Date)
	if err != nil {
		return fmt.Errorf("count reminders: %w", err)
	}
	if count >= s.policy.MaxPerDay {
		metrics.Reminders.WithLabelValues("suppressed").Inc()
		return nil
	}

	now := s.clock.Now()
	reminder := domain.Reminder{
		Kind:      domain.ReminderStreakRisk,
		Date:      r.Date,
		Title:     "Your streak is at risk",
		Body:      streakBody(r.Streak),
		DeliverAt: s.DeliveryTime(r.Date, now.Location()),
		CreatedAt: now,
	}

	id, inserted, err := s.db.InsertReminder(reminder)
	if err != nil {
		return fmt.Errorf("insert reminder: %w", err)
	}
	if !inserted {
		metrics.Reminders.WithLabelValues("duplicate").Inc()
		return nil
	}

	metrics.Reminders.WithLabelValues("queued").Inc()
	s.log.Debug("streak reminder queued", "id", id, "date", r.Date.String(), "deliver_at", reminder.DeliverAt)
	return nil
}

// CancelStreakReminder drops the undelivered reminder for on.
func (s *Service) CancelStreakReminder(on domain.Date) error {
	n, err := s.db.DeleteReminder(domain.ReminderStreakRisk, on)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	if n > 0 {
		metrics.Reminders.WithLabelValues("cancelled").Inc()
		s.log.Debug("streak reminder cancelled", "date", on.String())
	}
	return nil
}

// Pending returns undelivered reminders that are due now.
func (s *Service) Pending(limit int) ([]domain.Reminder, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.db.ListPendingReminders(s.clock.Now(), limit)
}

// MarkShown marks a reminder as delivered. Marking it again is a no-op.
func (s *Service) MarkShown(id int64) error {
	r, err := s.db.GetReminder(id)
	if err != nil {
		return fmt.Errorf("get reminder %d: %w", id, err)
	}
	if r == nil {
		return fmt.Errorf("%w: id %d", domain.ErrReminderNotFound, id)
	}
	if r.Shown {
		return nil
	}
	if err := s.db.MarkReminderShown(id); err != nil {
		return fmt.Errorf("mark reminder %d shown: %w", id, err)
	}
	metrics.Reminders.WithLabelValues("shown").Inc()
	s.log.Debug("reminder shown", "id", id, "date", r.Date.String())
	return nil
}

// Policy returns the current reminder policy.
func (s *Service) Policy() domain.ReminderPolicy {
	return s.policy
}

// DeliveryTime returns when a reminder for on should fire, in loc.
func (s *Service) DeliveryTime(on domain.Date, loc *time.Location) time.Time {
	minutes := s.hour
	if s.isQuiet(minutes) {
		minutes = s.quietEnd
	}
	return on.At(minutes/60, minutes%60, loc)
}

// isQuiet reports whether minute-of-day falls within quiet hours.
func (s *Service) isQuiet(minutes int) bool {
	if s.quietStart > s.quietEnd {
		// Wraps midnight: e.g., 22:00 to 08:00
		return minutes >= s.quietStart || minutes < s.quietEnd
	}
	return minutes >= s.quietStart && minutes < s.quietEnd
}

func streakBody(streak int) string {
	if streak == 1 {
		return "You started a streak yesterday. Solve one problem today to keep it going."
	}
	return fmt.Sprintf("Your %d-day streak ends at midnight. Solve one problem to keep it going.", streak)
}
