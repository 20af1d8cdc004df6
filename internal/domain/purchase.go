package domain

import "time"

// ─── Purchase Ledger Types ──────────────────────────────────────────────────
// The in-app purchase flow reports entitlement changes; each one is recorded
// before it is applied to the progression state.

// PurchaseKind categorizes ledger entries.
type PurchaseKind string

const (
	PurchaseCredits    PurchaseKind = "CREDITS"
	PurchasePremiumOn  PurchaseKind = "PREMIUM_ON"
	PurchasePremiumOff PurchaseKind = "PREMIUM_OFF"
)

// PurchaseEntry is a single ledger row.
type PurchaseEntry struct {
	ID        string       `json:"id" yaml:"id"` // UUID
	Timestamp time.Time    `json:"timestamp" yaml:"timestamp"`
	Kind      PurchaseKind `json:"kind" yaml:"kind"`
	ProductID string       `json:"product_id,omitempty" yaml:"product_id,omitempty"`
	Amount    int          `json:"amount" yaml:"amount"` // Credits granted; 0 for premium changes
	Source    string       `json:"source,omitempty" yaml:"source,omitempty"`
}
