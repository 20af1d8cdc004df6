package sqlite

import (
	"time"

	"github.com/snapsolve/snapsolve/internal/domain"
)

// ─── Purchase Ledger ────────────────────────────────────────────────────────

// InsertPurchase appends an entry to the purchase ledger.
func (d *DB) InsertPurchase(p domain.PurchaseEntry) error {
	_, err := d.db.Exec(
		`INSERT INTO purchases (id, timestamp, kind, product_id, amount, source)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Timestamp.UnixMilli(), string(p.Kind), p.ProductID, p.Amount, p.Source,
	)
	return err
}

// ListPurchases returns the most recent entries first.
func (d *DB) ListPurchases(limit int) ([]domain.PurchaseEntry, error) {
	rows, err := d.db.Query(
		`SELECT id, timestamp, kind, product_id, amount, source
		 FROM purchases ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PurchaseEntry
	for rows.Next() {
		var p domain.PurchaseEntry
		var ts int64
		if err := rows.Scan(&p.ID, &ts, &p.Kind, &p.ProductID, &p.Amount, &p.Source); err != nil {
			return nil, err
		}
		p.Timestamp = time.UnixMilli(ts)
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// PurchasedCredits returns the total credits ever granted through the ledger.
func (d *DB) PurchasedCredits() (int, error) {
	var total int
	err := d.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM purchases WHERE kind = ?`, string(domain.PurchaseCredits),
	).Scan(&total)
	return total, err
}
