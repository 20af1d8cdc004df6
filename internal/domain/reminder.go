package domain

import (
	"fmt"
	"time"
)

// ─── Reminder Types ─────────────────────────────────────────────────────────

// ReminderKind categorizes reminders.
type ReminderKind string

const (
	ReminderStreakRisk ReminderKind = "streak_risk"
)

// StreakReminder asks for a nudge on Date if no solve happens that day.
type StreakReminder struct {
	Date   Date `json:"date"`
	Streak int  `json:"streak"`
}

// Reminder is a queued user-facing message awaiting delivery by the
// platform push scheduler.
type Reminder struct {
	ID        int64        `json:"id" yaml:"id"`
	Kind      ReminderKind `json:"kind" yaml:"kind"`
	Date      Date         `json:"date" yaml:"date"`
	Title     string       `json:"title" yaml:"title"`
	Body      string       `json:"body" yaml:"body"`
	DeliverAt time.Time    `json:"deliver_at" yaml:"deliver_at"`
	CreatedAt time.Time    `json:"created_at" yaml:"created_at"`
	Shown     bool         `json:"shown" yaml:"shown"`
}

// ReminderPolicy governs when reminders may be delivered.
type ReminderPolicy struct {
	Enabled    bool   `json:"enabled"`
	Hour       string `json:"hour"`        // "19:00" local delivery time
	MaxPerDay  int    `json:"max_per_day"` // Default: 1
	QuietStart string `json:"quiet_start"` // "22:00"
	QuietEnd   string `json:"quiet_end"`   // "08:00"
}

// DefaultReminderPolicy returns the shipped policy.
func DefaultReminderPolicy() ReminderPolicy {
	return ReminderPolicy{
		Enabled:    true,
		Hour:       "19:00",
		MaxPerDay:  1,
		QuietStart: "22:00",
		QuietEnd:   "08:00",
	}
}

// Validate checks that every policy time is a valid "HH:MM".
func (p ReminderPolicy) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"hour", p.Hour},
		{"quiet_start", p.QuietStart},
		{"quiet_end", p.QuietEnd},
	} {
		if _, err := ParseClockTime(f.value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidReminderPolicy, f.name, err)
		}
	}
	return nil
}

// ParseClockTime parses "HH:MM" into minutes after midnight.
func ParseClockTime(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
