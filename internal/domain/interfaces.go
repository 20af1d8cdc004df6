package domain

import "time"

// ─── Collaborator Interfaces ────────────────────────────────────────────────

// Clock supplies the current instant. Calendar dates are taken in the
// location of the returned time.
type Clock interface {
	Now() time.Time
}

// KVStore is the opaque local key-value persistence mechanism.
type KVStore interface {
	// GetValues returns the stored values for keys. Missing keys are absent
	// from the result.
	GetValues(keys []string) (map[string]string, error)
	// SetValues writes every pair atomically: readers see all or none.
	SetValues(values map[string]string) error
}

// ReminderScheduler receives streak-risk reminder requests.
// Calls are fire-and-forget from the engine's point of view.
type ReminderScheduler interface {
	ScheduleStreakReminder(r StreakReminder) error
	CancelStreakReminder(on Date) error
}
