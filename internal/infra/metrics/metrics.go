// Package metrics provides Prometheus metrics for SnapSolve.
// Counters and gauges for solves, quota, points, achievements, reminders,
// purchases and persistence health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Solves ─────────────────────────────────────────────────────────────────

// SolvesRecorded tracks accepted solves.
var SolvesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "solves_recorded_total",
	Help:      "Total solves accepted by the progression engine.",
})

// QuotaExhausted tracks solves rejected for lack of quota.
var QuotaExhausted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "quota_exhausted_total",
	Help:      "Total solves rejected because the daily quota was used up.",
})

// SolveLatency tracks the full recordSolve pipeline including persistence.
var SolveLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "snapsolve",
	Name:      "solve_latency_seconds",
	Help:      "Duration of the recordSolve pipeline in seconds.",
	Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
})

// ─── Points & Streaks ───────────────────────────────────────────────────────

// PointsAwarded tracks points awarded by source.
var PointsAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "points_awarded_total",
	Help:      "Total points awarded, by source.",
}, []string{"source"})

// PointsBalance tracks the current points balance.
var PointsBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "snapsolve",
	Name:      "points_balance",
	Help:      "Current points balance.",
})

// CurrentStreak tracks the stored streak length in days.
var CurrentStreak = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "snapsolve",
	Name:      "current_streak_days",
	Help:      "Current streak length in days.",
})

// StreakMilestones tracks milestone bonuses by milestone length.
var StreakMilestones = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "streak_milestones_total",
	Help:      "Streak milestones reached, by milestone length.",
}, []string{"days"})

// ─── Achievements ───────────────────────────────────────────────────────────

// AchievementsUnlocked tracks unlocks by category.
var AchievementsUnlocked = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "achievements_unlocked_total",
	Help:      "Achievements unlocked, by category.",
}, []string{"category"})

// ─── Persistence ────────────────────────────────────────────────────────────

// PersistenceFailures tracks snapshot load/save failures.
var PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "persistence_failures_total",
	Help:      "Progression snapshot failures, by operation (load, save).",
}, []string{"op"})

// ─── Reminders & Purchases ──────────────────────────────────────────────────

// Reminders tracks reminder requests by outcome (queued, duplicate, suppressed, cancelled, shown).
var Reminders = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "reminders_total",
	Help:      "Streak reminder requests, by outcome.",
}, []string{"outcome"})

// Purchases tracks entitlement ledger entries by kind.
var Purchases = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "snapsolve",
	Name:      "purchases_total",
	Help:      "Entitlement changes recorded, by kind.",
}, []string{"kind"})
