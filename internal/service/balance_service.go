package service

import (
	"context"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/balance"
	"github.com/mmehra/splitledger/internal/storage"
)

// BalanceService serves balance and spending read models. Group-scoped
// aggregations are restricted to confirmed members; the per-user summary
// only ever covers the caller's own settlements.
type BalanceService struct {
	store      storage.Store
	aggregator *balance.Aggregator
}

// NewBalanceService creates a BalanceService over the store and aggregator.
func NewBalanceService(store storage.Store, aggregator *balance.Aggregator) *BalanceService {
	return &BalanceService{store: store, aggregator: aggregator}
}

// UserSummary totals the caller's pending settlements on both sides.
func (s *BalanceService) UserSummary(ctx context.Context, callerID string) (*balance.UserSummary, error) {
	return s.aggregator.ForUser(ctx, callerID)
}

// GroupDebts returns the group's pending directed debts for a confirmed
// member.
func (s *BalanceService) GroupDebts(ctx context.Context, callerID, groupID string) ([]balance.DirectedDebt, error) {
	if err := s.requireMember(ctx, callerID, groupID); err != nil {
		return nil, err
	}
	return s.aggregator.ForGroup(ctx, groupID)
}

// SpendingByCategory returns the group's per-category spending totals for
// a confirmed member.
func (s *BalanceService) SpendingByCategory(ctx context.Context, callerID, groupID string, from, to int64) ([]balance.CategoryTotal, error) {
	if err := s.requireMember(ctx, callerID, groupID); err != nil {
		return nil, err
	}
	return s.aggregator.SpendingByCategory(ctx, groupID, from, to)
}

// SpendingByMonth returns the group's per-month spending totals for a
// confirmed member.
func (s *BalanceService) SpendingByMonth(ctx context.Context, callerID, groupID string, from, to int64) ([]balance.MonthTotal, error) {
	if err := s.requireMember(ctx, callerID, groupID); err != nil {
		return nil, err
	}
	return s.aggregator.SpendingByMonth(ctx, groupID, from, to)
}

func (s *BalanceService) requireMember(ctx context.Context, callerID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(callerID) {
		return apperrors.Forbidden("caller is not a member of the group")
	}
	return nil
}
