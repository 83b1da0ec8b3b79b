// Package ledger derives settlement records from expense splits and
// manages their pending -> paid lifecycle.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/calculator"
	"github.com/mmehra/splitledger/internal/membership"
	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
)

// Ledger persists directed settlements. Storage is the only state; every
// operation loads what it needs, computes, and writes back.
type Ledger struct {
	store    storage.Store
	resolver *membership.Resolver
}

// New creates a ledger over the given store. The resolver backs the
// read-time share derivation for expenses recorded without a mapping.
func New(store storage.Store, resolver *membership.Resolver) *Ledger {
	return &Ledger{store: store, resolver: resolver}
}

// RecordForExpense creates one pending directed settlement per non-payer
// share in the expense. Safe to retry: a settlement that already exists
// for a (debtor, creditor, expense) triple is returned as-is rather than
// duplicated.
//
// When only some writes fail the returned error is a PartialFailure
// carrying the members that succeeded and the per-member failures, so the
// caller can retry just the missing piece. When every write fails the
// error is a PersistenceError.
func (l *Ledger) RecordForExpense(ctx context.Context, expense *models.Expense) ([]*models.Settlement, error) {
	shares, err := l.DeriveShares(ctx, expense)
	if err != nil {
		return nil, err
	}

	// Deterministic order keeps retries and logs stable; the relative
	// order of the writes themselves carries no meaning.
	debtors := make([]string, 0, len(shares))
	for member, share := range shares {
		if member == expense.PayerID || share <= 0 {
			continue
		}
		debtors = append(debtors, member)
	}
	sort.Strings(debtors)

	var created []*models.Settlement
	var completed []string
	failed := make(map[string]error)

	for _, debtor := range debtors {
		settlement := &models.Settlement{
			ExpenseID:   expense.ID,
			GroupID:     expense.GroupID,
			DebtorID:    debtor,
			CreditorID:  expense.PayerID,
			Amount:      shares[debtor],
			Description: expense.Description,
			Status:      models.SettlementPending,
		}

		err := l.store.CreateSettlement(ctx, settlement)
		if errors.Is(err, storage.ErrDuplicateSettlement) {
			existing, lookupErr := l.findExisting(ctx, expense.ID, debtor)
			if lookupErr != nil {
				failed[debtor] = lookupErr
				continue
			}
			created = append(created, existing)
			completed = append(completed, debtor)
			continue
		}
		if err != nil {
			failed[debtor] = err
			slog.Error("settlement write failed", "expense_id", expense.ID, "debtor_id", debtor, "error", err)
			continue
		}
		created = append(created, settlement)
		completed = append(completed, debtor)
	}

	if len(failed) > 0 {
		if len(completed) == 0 {
			return nil, &apperrors.PersistenceError{Op: "record settlements", Err: firstError(failed)}
		}
		return created, &apperrors.PartialFailure{Op: "record settlements", Completed: completed, Failed: failed}
	}

	return created, nil
}

// DeriveShares returns the expense's owed mapping, reconstructing it at
// read time when the stored mapping is missing: first from the expense's
// explicit participant list, otherwise from the owning group's resolved
// membership minus the payer, with the equal policy applied. The output
// shape matches a stored mapping so downstream aggregation never cares
// which path produced it.
func (l *Ledger) DeriveShares(ctx context.Context, expense *models.Expense) (map[string]float64, error) {
	if len(expense.Shares) > 0 {
		return expense.Shares, nil
	}

	members := expense.ParticipantIDs
	if len(members) == 0 {
		group, err := l.store.GetGroup(ctx, expense.GroupID)
		if err != nil {
			return nil, err
		}
		if l.resolver != nil {
			// Partial resolution is fine here: failed lookups just mean
			// those invitees are not members yet.
			if _, err := l.resolver.Resolve(ctx, group); err != nil {
				return nil, err
			}
		}
		members = group.MemberIDs
	}

	return calculator.ComputeSplit(expense.Amount, expense.PayerID, members, models.SplitEqual, nil)
}

// MarkPaid transitions a settlement to paid on behalf of its debtor.
// Only the debtor may clear their own debt; the payer settling someone
// else's share is rejected. Marking an already-paid settlement is a
// no-op that returns the settlement unchanged.
//
// The second return reports whether this call performed the transition.
// The store decides it from the atomic status-guarded update, so of any
// set of racing calls exactly one observes true; callers gate
// fire-exactly-once side effects on it.
func (l *Ledger) MarkPaid(ctx context.Context, settlementID, callerID string) (*models.Settlement, bool, error) {
	settlement, err := l.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, false, err
	}

	if callerID != settlement.DebtorID {
		return nil, false, apperrors.Forbidden("only the debtor may mark a settlement paid")
	}

	if settlement.Status == models.SettlementPaid {
		return settlement, false, nil
	}

	paidAt := time.Now().Unix()
	transitioned, err := l.store.MarkSettlementPaid(ctx, settlementID, paidAt)
	if err != nil {
		return nil, false, err
	}
	if !transitioned {
		// A concurrent call flipped the row first; report its outcome.
		settlement, err = l.store.GetSettlement(ctx, settlementID)
		if err != nil {
			return nil, false, err
		}
		return settlement, false, nil
	}

	settlement.Status = models.SettlementPaid
	settlement.PaidAt = paidAt
	slog.Info("settlement paid", "settlement_id", settlement.ID, "debtor_id", settlement.DebtorID, "amount", settlement.Amount)
	return settlement, true, nil
}

// MarkExpensePaid resolves the caller's own settlement under the expense
// and marks it paid. Callers holding only an expense reference (payment
// callbacks, reminder links) use this form.
func (l *Ledger) MarkExpensePaid(ctx context.Context, expenseID, callerID string) (*models.Settlement, bool, error) {
	settlements, err := l.store.ListSettlements(ctx, storage.SettlementFilter{
		ExpenseID: expenseID,
		DebtorID:  callerID,
	})
	if err != nil {
		return nil, false, err
	}
	if len(settlements) == 0 {
		return nil, false, apperrors.NotFound("settlement for expense", expenseID)
	}
	return l.MarkPaid(ctx, settlements[0].ID, callerID)
}

// Settlement retrieves one settlement by ID.
func (l *Ledger) Settlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	return l.store.GetSettlement(ctx, settlementID)
}

// FindForExpense retrieves the debtor's settlement under an expense.
func (l *Ledger) FindForExpense(ctx context.Context, expenseID, debtorID string) (*models.Settlement, error) {
	return l.findExisting(ctx, expenseID, debtorID)
}

func (l *Ledger) findExisting(ctx context.Context, expenseID, debtorID string) (*models.Settlement, error) {
	settlements, err := l.store.ListSettlements(ctx, storage.SettlementFilter{
		ExpenseID: expenseID,
		DebtorID:  debtorID,
	})
	if err != nil {
		return nil, err
	}
	if len(settlements) == 0 {
		return nil, apperrors.NotFound("settlement for expense", expenseID)
	}
	return settlements[0], nil
}

func firstError(failed map[string]error) error {
	for _, err := range failed {
		return err
	}
	return nil
}
