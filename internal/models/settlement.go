package models

// SettlementStatus tracks whether a debt has been cleared.
type SettlementStatus string

const (
	// SettlementPending means the debtor has not paid yet.
	SettlementPending SettlementStatus = "pending"

	// SettlementPaid means the debtor cleared the debt. Transitions are
	// monotone: paid never reverts to pending.
	SettlementPaid SettlementStatus = "paid"
)

// Settlement represents one directed debt derived from an expense split.
//
// At most one settlement exists per (debtor, creditor, expense) triple;
// the store enforces this so settlement creation is safe to retry.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// ExpenseID is the originating expense.
	ExpenseID string

	// GroupID is the group scope, denormalized for group-level reads.
	GroupID string

	// DebtorID is the account that owes.
	DebtorID string

	// CreditorID is the account that is owed (the expense payer).
	CreditorID string

	// Amount is the non-negative owed amount.
	Amount float64

	// Description is carried from the originating expense.
	Description string

	// Status is pending or paid.
	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was derived.
	CreatedAt int64

	// PaidAt is the Unix timestamp of payment, zero while pending.
	PaidAt int64
}

// SignedAmountFor renders the legacy single-subject view: positive when
// the subject owes, negative when the subject is owed, zero when the
// subject is neither party. Display artifact only; storage is directed.
func (s *Settlement) SignedAmountFor(subjectID string) float64 {
	switch subjectID {
	case s.DebtorID:
		return s.Amount
	case s.CreditorID:
		return -s.Amount
	default:
		return 0
	}
}
