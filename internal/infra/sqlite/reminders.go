package sqlite

import (
	"database/sql"
	"time"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// ─── Reminders ──────────────────────────────────────────────────────────────

// InsertReminder queues a reminder. Returns inserted=false when one of the
// same kind already exists for that date.
func (d *DB) InsertReminder(r domain.Reminder) (id int64, inserted bool, err error) {
	result, err := d.db.Exec(
		`INSERT OR IGNORE INTO reminders (kind, date, title, body, deliver_at, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(r.Kind), r.Date.String(), r.Title, r.Body,
		r.DeliverAt.Unix(), r.CreatedAt.Unix(), r.Shown,
	)
	if err != nil {
		return 0, false, err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return 0, false, nil
	}
	id, err = result.LastInsertId()
	return id, err == nil, err
}

// DeleteReminder removes the unshown reminder of kind for date.
// Returns the number of rows removed.
func (d *DB) DeleteReminder(kind domain.ReminderKind, on domain.Date) (int64, error) {
	result, err := d.db.Exec(
		`DELETE FROM reminders WHERE kind = ? AND date = ? AND shown = 0`,
		string(kind), on.String(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ReminderCountOn returns how many reminders are queued for delivery on date.
func (d *DB) ReminderCountOn(on domain.Date) (int, error) {
	var count int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM reminders WHERE date = ?`, on.String()).Scan(&count)
	return count, err
}

// ListPendingReminders returns unshown reminders due at or before until,
// earliest first.
func (d *DB) ListPendingReminders(until time.Time, limit int) ([]domain.Reminder, error) {
	rows, err := d.db.Query(
		`SELECT id, kind, date, title, body, deliver_at, created_at, shown
		 FROM reminders WHERE shown = 0 AND deliver_at <= ?
		 ORDER BY deliver_at ASC LIMIT ?`, until.Unix(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reminders []domain.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

// GetReminder retrieves a reminder by id. Returns nil if not found.
func (d *DB) GetReminder(id int64) (*domain.Reminder, error) {
	row := d.db.QueryRow(
		`SELECT id, kind, date, title, body, deliver_at, created_at, shown
		 FROM reminders WHERE id = ?`, id,
	)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return r, err
}

// MarkReminderShown marks a reminder as delivered.
func (d *DB) MarkReminderShown(id int64) error {
	result, err := d.db.Exec(`UPDATE reminders SET shown = 1 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrReminderNotFound
	}
	return nil
}

func scanReminder(s scanner) (*domain.Reminder, error) {
	var r domain.Reminder
	var date string
	var deliverAt, createdAt int64
	err := s.Scan(&r.ID, &r.Kind, &date, &r.Title, &r.Body, &deliverAt, &createdAt, &r.Shown)
	if err != nil {
		return nil, err
	}
	if r.Date, err = domain.ParseDate(date); err != nil {
		return nil, err
	}
	r.DeliverAt = time.Unix(deliverAt, 0)
	r.CreatedAt = time.Unix(createdAt, 0)
	return &r, nil
}
