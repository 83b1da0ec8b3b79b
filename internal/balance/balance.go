// Package balance reduces settlement and expense records into the read
// models presentation consumes: user summaries, group debt lists, and
// monthly/categorical spending reports.
package balance

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
)

// UserSummary totals a user's pending settlements on both sides.
type UserSummary struct {
	TotalOwed      float64 // sum over pending settlements where the user is debtor
	TotalOwedToYou float64 // sum over pending settlements where the user is creditor
}

// DirectedDebt is one pending debt annotated with display names for
// presentation. No ordering is guaranteed; callers sort as needed.
type DirectedDebt struct {
	SettlementID string
	DebtorID     string
	DebtorName   string
	CreditorID   string
	CreditorName string
	Amount       float64
	Description  string
}

// Aggregator computes balances from stored settlements and expenses.
type Aggregator struct {
	store storage.Store
}

// New creates an aggregator over the given store.
func New(store storage.Store) *Aggregator {
	return &Aggregator{store: store}
}

// ForUser sums the user's pending settlements: what they owe as debtor
// and what they are owed as creditor. Paid settlements never count.
func (a *Aggregator) ForUser(ctx context.Context, userID string) (*UserSummary, error) {
	owed, err := a.store.ListSettlements(ctx, storage.SettlementFilter{
		DebtorID: userID,
		Status:   models.SettlementPending,
	})
	if err != nil {
		return nil, err
	}

	owedToYou, err := a.store.ListSettlements(ctx, storage.SettlementFilter{
		CreditorID: userID,
		Status:     models.SettlementPending,
	})
	if err != nil {
		return nil, err
	}

	summary := &UserSummary{}
	for _, s := range owed {
		summary.TotalOwed += s.Amount
	}
	for _, s := range owedToYou {
		summary.TotalOwedToYou += s.Amount
	}
	return summary, nil
}

// ForGroup returns every pending directed debt scoped to the group, with
// debtor and creditor display names resolved in one batch lookup.
// Parties without an account (e.g. deleted) fall back to their ID.
func (a *Aggregator) ForGroup(ctx context.Context, groupID string) ([]DirectedDebt, error) {
	settlements, err := a.store.ListSettlements(ctx, storage.SettlementFilter{
		GroupID: groupID,
		Status:  models.SettlementPending,
	})
	if err != nil {
		return nil, err
	}

	idSet := make(map[string]bool)
	var ids []string
	for _, s := range settlements {
		for _, id := range []string{s.DebtorID, s.CreditorID} {
			if !idSet[id] {
				idSet[id] = true
				ids = append(ids, id)
			}
		}
	}

	accounts, err := a.store.GetAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	debts := make([]DirectedDebt, 0, len(settlements))
	for _, s := range settlements {
		debts = append(debts, DirectedDebt{
			SettlementID: s.ID,
			DebtorID:     s.DebtorID,
			DebtorName:   displayName(accounts, s.DebtorID),
			CreditorID:   s.CreditorID,
			CreditorName: displayName(accounts, s.CreditorID),
			Amount:       RoundDisplay(s.Amount),
			Description:  s.Description,
		})
	}
	return debts, nil
}

func displayName(accounts map[string]*models.Account, id string) string {
	if account, ok := accounts[id]; ok {
		return account.DisplayName
	}
	return id
}

// RoundDisplay rounds an amount to two decimal places for read models.
// Core arithmetic stays on the raw floats; only the presented value is
// rounded.
func RoundDisplay(amount float64) float64 {
	v, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return v
}
