package reminder_test

import (
	"errors"
	"testing"
	"time"

	"github.com/snapsolve/snapsolve/internal/app/reminder"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/infra/sqlite"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

var (
	monday  = domain.Date{Year: 2026, Month: time.October, Day: 19}
	tuesday = monday.AddDays(1)
	noonMon = monday.At(12, 0, time.UTC)
)

func TestSchedule_QueuesAtPolicyHour(t *testing.T) {
	db := testDB(t)
	svc := reminder.NewService(db, fixedClock{noonMon}, nil)

	if err := svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 4}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	// Due on Tuesday evening, not before.
	clock := fixedClock{tuesday.At(19, 30, time.UTC)}
	pending, err := reminder.NewService(db, clock, nil).Pending(10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending reminder, got %d", len(pending))
	}
	got := pending[0]
	if want := tuesday.At(19, 0, time.UTC); !got.DeliverAt.Equal(want) {
		t.Errorf("deliver at %v, want %v", got.DeliverAt, want)
	}
	if got.Kind != domain.ReminderStreakRisk {
		t.Errorf("kind = %q", got.Kind)
	}
	if got.Body == "" || got.Title == "" {
		t.Error("reminder text should be filled in")
	}

	early, _ := svc.Pending(10)
	if len(early) != 0 {
		t.Errorf("expected nothing due on Monday, got %d", len(early))
	}
}

func TestSchedule_NoStreakSuppressed(t *testing.T) {
	db := testDB(t)
	svc := reminder.NewService(db, fixedClock{noonMon}, nil)

	if err := svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 0}); err != nil {
		t.Fatalf("schedule: %v", err)
	}
	count, _ := db.ReminderCountOn(tuesday)
	if count != 0 {
		t.Errorf("expected no reminder without a streak, got %d", count)
	}
}

func TestSchedule_DisabledPolicy(t *testing.T) {
	db := testDB(t)
	policy := domain.DefaultReminderPolicy()
	policy.Enabled = false
	svc, err := reminder.NewServiceWithPolicy(db, fixedClock{noonMon}, policy, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 5})
	count, _ := db.ReminderCountOn(tuesday)
	if count != 0 {
		t.Errorf("disabled policy queued %d reminders", count)
	}
}

func TestSchedule_Idempotent(t *testing.T) {
	db := testDB(t)
	svc := reminder.NewService(db, fixedClock{noonMon}, nil)

	for i := 0; i < 3; i++ {
		if err := svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 2}); err != nil {
			t.Fatalf("schedule %d: %v", i, err)
		}
	}
	count, _ := db.ReminderCountOn(tuesday)
	if count != 1 {
		t.Errorf("expected 1 reminder, got %d", count)
	}
}

func TestCancel_RemovesPending(t *testing.T) {
	db := testDB(t)
	svc := reminder.NewService(db, fixedClock{noonMon}, nil)

	svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 2})
	if err := svc.CancelStreakReminder(tuesday); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	count, _ := db.ReminderCountOn(tuesday)
	if count != 0 {
		t.Errorf("expected reminder cancelled, got %d", count)
	}

	// Cancelling nothing is fine.
	if err := svc.CancelStreakReminder(monday); err != nil {
		t.Errorf("cancel empty day: %v", err)
	}
}

func TestMarkShown(t *testing.T) {
	db := testDB(t)
	svc := reminder.NewService(db, fixedClock{tuesday.At(21, 0, time.UTC)}, nil)

	svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 3})
	pending, _ := svc.Pending(10)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(pending))
	}
	if err := svc.MarkShown(pending[0].ID); err != nil {
		t.Fatalf("mark shown: %v", err)
	}
	pending, _ = svc.Pending(10)
	if len(pending) != 0 {
		t.Errorf("expected 0 pending after shown, got %d", len(pending))
	}
}

func TestDeliveryTime_QuietHours(t *testing.T) {
	tests := []struct {
		name  string
		hour  string
		start string
		end   string
		wantH int
		wantM int
	}{
		{"outside quiet", "19:00", "22:00", "08:00", 19, 0},
		{"late evening wraps", "23:15", "22:00", "08:00", 8, 0},
		{"early morning wraps", "06:00", "22:00", "08:30", 8, 30},
		{"same-day window", "13:00", "12:00", "14:00", 14, 0},
		{"window end exclusive", "14:00", "12:00", "14:00", 14, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := domain.DefaultReminderPolicy()
			policy.Hour, policy.QuietStart, policy.QuietEnd = tt.hour, tt.start, tt.end
			svc, err := reminder.NewServiceWithPolicy(nil, fixedClock{noonMon}, policy, nil)
			if err != nil {
				t.Fatalf("new service: %v", err)
			}

			got := svc.DeliveryTime(tuesday, time.UTC)
			want := tuesday.At(tt.wantH, tt.wantM, time.UTC)
			if !got.Equal(want) {
				t.Errorf("DeliveryTime() = %v, want %v", got, want)
			}
		})
	}
}

func TestImplementsScheduler(t *testing.T) {
	var _ domain.ReminderScheduler = (*reminder.Service)(nil)
}

func TestMarkShown_UnknownAndRepeated(t *testing.T) {
	db := testDB(t)
	svc := reminder.NewService(db, fixedClock{tuesday.At(21, 0, time.UTC)}, nil)

	err := svc.MarkShown(42)
	if !errors.Is(err, domain.ErrReminderNotFound) {
		t.Fatalf("MarkShown(42) = %v, want ErrReminderNotFound", err)
	}

	svc.ScheduleStreakReminder(domain.StreakReminder{Date: tuesday, Streak: 2})
	pending, _ := svc.Pending(10)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(pending))
	}
	for i := 0; i < 2; i++ {
		if err := svc.MarkShown(pending[0].ID); err != nil {
			t.Fatalf("mark shown #%d: %v", i+1, err)
		}
	}
	r, err := db.GetReminder(pending[0].ID)
	if err != nil || r == nil || !r.Shown {
		t.Errorf("GetReminder() = %+v, %v; want shown", r, err)
	}
}

func TestNewServiceWithPolicy_RejectsMalformedTimes(t *testing.T) {
	tests := map[string]func(*domain.ReminderPolicy){
		"hour":        func(p *domain.ReminderPolicy) { p.Hour = "7pm" },
		"quiet start": func(p *domain.ReminderPolicy) { p.QuietStart = "25:00" },
		"quiet end":   func(p *domain.ReminderPolicy) { p.QuietEnd = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			policy := domain.DefaultReminderPolicy()
			mutate(&policy)
			_, err := reminder.NewServiceWithPolicy(nil, fixedClock{noonMon}, policy, nil)
			if !errors.Is(err, domain.ErrInvalidReminderPolicy) {
				t.Errorf("err = %v, want ErrInvalidReminderPolicy", err)
			}
		})
	}
}
