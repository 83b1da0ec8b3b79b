package service

import (
	"context"
	"log/slog"

	"github.com/mmehra/splitledger/internal/events"
	"github.com/mmehra/splitledger/internal/ledger"
	"github.com/mmehra/splitledger/internal/metrics"
	"github.com/mmehra/splitledger/internal/models"
)

// PaymentService clears settlements, either directly by the debtor or via
// the checkout collaborator's confirmation callback.
type PaymentService struct {
	ledger    *ledger.Ledger
	publisher events.Publisher
	metrics   *metrics.Metrics
}

// NewPaymentService creates a PaymentService with its collaborators.
func NewPaymentService(l *ledger.Ledger, publisher events.Publisher, m *metrics.Metrics) *PaymentService {
	return &PaymentService{ledger: l, publisher: publisher, metrics: m}
}

// MarkPaid marks a settlement paid on behalf of the caller. The ledger
// enforces that only the debtor may clear the debt and that repeat calls
// are no-ops. Events fire only for the one call whose store update
// performed the pending -> paid transition, so concurrent retries cannot
// double-award.
func (s *PaymentService) MarkPaid(ctx context.Context, callerID, settlementID string) (*models.Settlement, error) {
	settlement, transitioned, err := s.ledger.MarkPaid(ctx, settlementID, callerID)
	if err != nil {
		return nil, err
	}

	if transitioned {
		s.metrics.IncSettlementsPaid()
		s.publisher.SettlementPaid(ctx, settlement.DebtorID, settlement.ID)
	}
	return settlement, nil
}

// MarkExpensePaid clears the caller's own settlement under the expense.
func (s *PaymentService) MarkExpensePaid(ctx context.Context, callerID, expenseID string) (*models.Settlement, error) {
	settlement, err := s.ledger.FindForExpense(ctx, expenseID, callerID)
	if err != nil {
		return nil, err
	}
	return s.MarkPaid(ctx, callerID, settlement.ID)
}

// OnPaymentConfirmed is the checkout collaborator's callback contract:
// the gateway confirmed the debtor completed payment for the settlement,
// so it is marked paid on the debtor's behalf.
func (s *PaymentService) OnPaymentConfirmed(ctx context.Context, settlementID string) error {
	settlement, err := s.ledger.Settlement(ctx, settlementID)
	if err != nil {
		return err
	}

	slog.Info("payment confirmed by gateway", "settlement_id", settlementID, "debtor_id", settlement.DebtorID)
	_, err = s.MarkPaid(ctx, settlement.DebtorID, settlementID)
	return err
}
