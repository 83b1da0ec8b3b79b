// Package events emits the facts the gamification side-system consumes.
// The core only publishes triggering facts with their fixed point
// increments; badge and level logic lives with the consumer.
package events

import (
	"context"
	"log/slog"

	"github.com/mmehra/splitledger/internal/storage"
)

// Fixed point increments carried on each event.
const (
	PointsExpenseAdded   = 10
	PointsSettlementPaid = 20
)

// Publisher receives core write events. Publishing happens only after the
// underlying writes completed, so consumers never award credit for a
// write that did not happen.
type Publisher interface {
	// ExpenseAdded signals "expense E added by account A".
	ExpenseAdded(ctx context.Context, accountID, expenseID string)

	// SettlementPaid signals "settlement S marked paid by account A".
	SettlementPaid(ctx context.Context, accountID, settlementID string)
}

// CounterPublisher applies the fixed increments to the account's stored
// gamification counters and logs the fact. A failed counter update is
// logged and dropped; events must never fail the write they follow.
type CounterPublisher struct {
	store storage.Store
}

// NewCounterPublisher creates a publisher that updates account counters.
func NewCounterPublisher(store storage.Store) *CounterPublisher {
	return &CounterPublisher{store: store}
}

func (p *CounterPublisher) ExpenseAdded(ctx context.Context, accountID, expenseID string) {
	slog.Info("event: expense added", "account_id", accountID, "expense_id", expenseID, "points", PointsExpenseAdded)
	if err := p.store.AddAccountPoints(ctx, accountID, PointsExpenseAdded); err != nil {
		slog.Warn("failed to award expense points", "account_id", accountID, "error", err)
	}
}

func (p *CounterPublisher) SettlementPaid(ctx context.Context, accountID, settlementID string) {
	slog.Info("event: settlement paid", "account_id", accountID, "settlement_id", settlementID, "points", PointsSettlementPaid)
	if err := p.store.AddAccountPoints(ctx, accountID, PointsSettlementPaid); err != nil {
		slog.Warn("failed to award settlement points", "account_id", accountID, "error", err)
	}
}

// NopPublisher discards events, for wiring the core without the
// gamification side-system.
type NopPublisher struct{}

func (NopPublisher) ExpenseAdded(ctx context.Context, accountID, expenseID string) {}

func (NopPublisher) SettlementPaid(ctx context.Context, accountID, settlementID string) {}
