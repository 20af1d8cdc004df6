// Package entitlement records in-app purchase events and applies them to
// the progression state. Every change is appended to the purchase ledger
// before it reaches progression, so the ledger is the audit trail for
// premium status and credit balances.
package entitlement

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/snapsolve/snapsolve/internal/app/progression"
	"github.com/snapsolve/snapsolve/internal/domain"
	"github.com/snapsolve/snapsolve/internal/infra/metrics"
	"github.com/snapsolve/snapsolve/internal/infra/sqlite"
)

// Progression is the part of progression.Service the ledger drives.
type Progression interface {
	ApplyEntitlementChange(isPremium bool) (progression.Status, error)
	GrantExtraCredits(n int) (progression.Status, error)
}

// Service manages the purchase ledger.
type Service struct {
	db    *sqlite.DB
	prog  Progression
	clock domain.Clock
	log   *slog.Logger
}

// NewService creates an entitlement service.
func NewService(db *sqlite.DB, prog Progression, clock domain.Clock, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{db: db, prog: prog, clock: clock, log: logger.With("component", "entitlement")}
}

// SetPremium records a subscription change and applies it.
func (s *Service) SetPremium(premium bool, source string) (progression.Status, error) {
	kind := domain.PurchasePremiumOff
	if premium {
		kind = domain.PurchasePremiumOn
	}
	if err := s.record(domain.PurchaseEntry{Kind: kind, Source: source}); err != nil {
		return progression.Status{}, err
	}
	return s.prog.ApplyEntitlementChange(premium)
}

// GrantCredits records a credit pack purchase and adds the credits.
func (s *Service) GrantCredits(amount int, productID, source string) (progression.Status, error) {
	if amount <= 0 {
		return progression.Status{}, fmt.Errorf("%w: got %d", domain.ErrInvalidCreditGrant, amount)
	}
	err := s.record(domain.PurchaseEntry{
		Kind:      domain.PurchaseCredits,
		ProductID: productID,
		Amount:    amount,
		Source:    source,
	})
	if err != nil {
		return progression.Status{}, err
	}
	return s.prog.GrantExtraCredits(amount)
}

// History returns the most recent ledger entries, newest first.
func (s *Service) History(limit int) ([]domain.PurchaseEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.db.ListPurchases(limit)
}

// TotalCreditsPurchased sums every credit grant in the ledger.
func (s *Service) TotalCreditsPurchased() (int, error) {
	return s.db.PurchasedCredits()
}

func (s *Service) record(e domain.PurchaseEntry) error {
	e.ID = uuid.New().String()
	e.Timestamp = s.clock.Now()
	if err := s.db.InsertPurchase(e); err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	metrics.Purchases.WithLabelValues(string(e.Kind)).Inc()
	s.log.Info("purchase recorded", "id", e.ID, "kind", e.Kind, "amount", e.Amount, "product", e.ProductID)
	return nil
}
