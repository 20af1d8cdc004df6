package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors carry no infrastructure dependency.

var (
	// Quota errors
	ErrQuotaExhausted = errors.New("daily solve quota exhausted")

	// Points errors
	ErrInvalidAward = errors.New("invalid points award")

	// Persistence errors
	ErrPersistenceWriteFailed = errors.New("progression snapshot write failed")
	ErrPersistenceLoadCorrupt = errors.New("progression snapshot partially corrupt")

	// Catalog errors
	ErrAchievementNotFound  = errors.New("achievement not found")
	ErrDuplicateAchievement = errors.New("duplicate achievement id in catalog")

	// Entitlement errors
	ErrInvalidCreditGrant = errors.New("credit grant must be positive")

	// Reminder errors
	ErrReminderNotFound      = errors.New("reminder not found")
	ErrInvalidReminderPolicy = errors.New("invalid reminder policy")
)
