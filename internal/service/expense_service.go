// Package service orchestrates the core flows: recording expenses and
// their settlements, group lifecycle, and payment confirmation.
package service

import (
	"context"
	"log/slog"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/calculator"
	"github.com/mmehra/splitledger/internal/events"
	"github.com/mmehra/splitledger/internal/ledger"
	"github.com/mmehra/splitledger/internal/membership"
	"github.com/mmehra/splitledger/internal/metrics"
	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
)

// ExpenseService records expenses and serves their read models.
type ExpenseService struct {
	store     storage.Store
	ledger    *ledger.Ledger
	resolver  *membership.Resolver
	publisher events.Publisher
	metrics   *metrics.Metrics
}

// NewExpenseService creates an ExpenseService with its collaborators.
func NewExpenseService(store storage.Store, l *ledger.Ledger, resolver *membership.Resolver, publisher events.Publisher, m *metrics.Metrics) *ExpenseService {
	return &ExpenseService{store: store, ledger: l, resolver: resolver, publisher: publisher, metrics: m}
}

// AddExpenseInput carries everything needed to record one spend event.
type AddExpenseInput struct {
	GroupID        string
	PayerID        string
	Description    string
	Amount         float64
	SpentAt        int64
	Policy         models.SplitPolicy
	ParticipantIDs []string
	CustomShares   map[string]float64
}

// AddExpenseResult is the outcome of a (possibly partially failed) add.
type AddExpenseResult struct {
	Expense     *models.Expense
	Settlements []*models.Settlement
}

// AddExpense validates the split, persists the expense, and derives its
// settlements. The split is computed before anything is written, so a
// ValidationError leaves no record behind.
//
// When the expense persisted but some settlement writes failed, the
// returned error is a PartialFailure alongside a non-nil result; the
// already-persisted expense is kept and re-running settlement creation is
// safe. Events fire only after all settlement writes completed.
func (s *ExpenseService) AddExpense(ctx context.Context, callerID string, input AddExpenseInput) (*AddExpenseResult, error) {
	group, err := s.store.GetGroup(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	// Resolve first so a freshly registered invitee is both allowed to
	// record the spend and included in a whole-group split.
	if result, err := s.resolver.Resolve(ctx, group); err != nil {
		slog.Warn("AddExpense: resolution incomplete", "group_id", input.GroupID, "error", err)
	} else {
		s.metrics.AddMembersPromoted(len(result.Promoted))
	}

	if !group.HasMember(callerID) {
		return nil, apperrors.Forbidden("caller is not a member of the group")
	}
	if !group.HasMember(input.PayerID) {
		return nil, &apperrors.ValidationError{Reason: "payer is not a member of the group"}
	}

	participants := dedupeIDs(input.ParticipantIDs)
	if len(participants) == 0 {
		participants = group.MemberIDs
	}

	// Pure computation first: a bad split must persist nothing.
	shares, err := calculator.ComputeSplit(input.Amount, input.PayerID, participants, input.Policy, input.CustomShares)
	if err != nil {
		slog.Error("AddExpense split validation failed", "group_id", input.GroupID, "error", err)
		return nil, err
	}

	expense := &models.Expense{
		GroupID:        input.GroupID,
		PayerID:        input.PayerID,
		Description:    input.Description,
		Amount:         input.Amount,
		SpentAt:        input.SpentAt,
		Policy:         input.Policy,
		ParticipantIDs: participants,
		Shares:         shares,
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("AddExpense failed", "group_id", input.GroupID, "error", err)
		return nil, &apperrors.PersistenceError{Op: "create expense", Err: err}
	}

	result := &AddExpenseResult{Expense: expense}

	settlements, err := s.ledger.RecordForExpense(ctx, expense)
	result.Settlements = settlements
	if err != nil {
		// Expense stays persisted; the caller retries only the settlement
		// batch, which is idempotent by the debtor/creditor/expense key.
		slog.Error("AddExpense settlements incomplete", "expense_id", expense.ID, "error", err)
		return result, err
	}

	s.metrics.IncExpensesCreated()
	s.metrics.AddSettlementsCreated(len(settlements))
	s.publisher.ExpenseAdded(ctx, callerID, expense.ID)

	slog.Info("expense recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount,
		"settlements", len(settlements),
	)

	return result, nil
}

// BreakdownEntry is one participant's line in an expense breakdown.
type BreakdownEntry struct {
	AccountID    string
	Name         string
	Share        float64
	SettlementID string
	Status       models.SettlementStatus
}

// ExpenseBreakdown is the single-expense read model: the derived split
// with resolved names and per-member settlement status.
type ExpenseBreakdown struct {
	Expense   *models.Expense
	PayerName string
	Entries   []BreakdownEntry
	TotalOwed float64
}

// GetExpense returns the expense breakdown for a participant. The share
// mapping is derived through the ledger fallback, so legacy expenses
// stored without one render identically.
func (s *ExpenseService) GetExpense(ctx context.Context, callerID, expenseID string) (*ExpenseBreakdown, error) {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if !expense.HasParticipant(callerID) && expense.PayerID != callerID {
		return nil, apperrors.Forbidden("caller is not a participant of the expense")
	}

	shares, err := s.ledger.DeriveShares(ctx, expense)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlements(ctx, storage.SettlementFilter{ExpenseID: expenseID})
	if err != nil {
		return nil, err
	}
	byDebtor := make(map[string]*models.Settlement, len(settlements))
	for _, settlement := range settlements {
		byDebtor[settlement.DebtorID] = settlement
	}

	ids := append([]string{expense.PayerID}, expense.ParticipantIDs...)
	accounts, err := s.store.GetAccountsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	breakdown := &ExpenseBreakdown{
		Expense:   expense,
		PayerName: accountName(accounts, expense.PayerID),
	}
	for member, share := range shares {
		entry := BreakdownEntry{
			AccountID: member,
			Name:      accountName(accounts, member),
			Share:     share,
			Status:    models.SettlementPending,
		}
		if settlement, ok := byDebtor[member]; ok {
			entry.SettlementID = settlement.ID
			entry.Status = settlement.Status
		}
		breakdown.Entries = append(breakdown.Entries, entry)
		breakdown.TotalOwed += share
	}

	return breakdown, nil
}

// ListGroupExpenses returns a group's expenses, newest first, for a
// confirmed member.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, callerID, groupID string) ([]*models.Expense, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, apperrors.Forbidden("caller is not a member of the group")
	}
	return s.store.ListExpenses(ctx, storage.ExpenseFilter{GroupID: groupID})
}

// DeleteExpense removes an expense and its settlements. Participants
// only.
func (s *ExpenseService) DeleteExpense(ctx context.Context, callerID, expenseID string) error {
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	if !expense.HasParticipant(callerID) && expense.PayerID != callerID {
		return apperrors.Forbidden("caller is not a participant of the expense")
	}
	return s.store.DeleteExpense(ctx, expenseID)
}

func accountName(accounts map[string]*models.Account, id string) string {
	if account, ok := accounts[id]; ok {
		return account.DisplayName
	}
	return id
}

// dedupeIDs keeps the first occurrence of each ID, preserving order.
func dedupeIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
