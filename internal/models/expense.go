package models

// SplitPolicy selects how an expense amount is divided.
type SplitPolicy string

const (
	// SplitEqual divides the amount evenly across the participant list.
	SplitEqual SplitPolicy = "equal"

	// SplitCustom uses a caller-supplied per-member share mapping.
	SplitCustom SplitPolicy = "custom"
)

// Valid reports whether the policy is one of the known tags.
func (p SplitPolicy) Valid() bool {
	return p == SplitEqual || p == SplitCustom
}

// Expense is an immutable record of a single spend event.
//
// Shares maps participant account ID to that member's owed portion. The
// payer never appears with a positive owed share. The sum of Shares plus
// the payer's own retained portion equals Amount within a 0.01 tolerance.
// Settlement status is tracked on Settlement records, never here.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the account that paid the full amount.
	PayerID string

	// Description is the human-readable label (e.g., "Dinner at Luigi's").
	// Also drives best-effort keyword categorization in reports.
	Description string

	// Amount is the positive total in currency-agnostic units.
	Amount float64

	// SpentAt is the Unix timestamp of the spend event itself.
	SpentAt int64

	// Policy records how Shares was computed.
	Policy SplitPolicy

	// ParticipantIDs lists every account taking part, payer included when
	// the payer consumed a portion.
	ParticipantIDs []string

	// Shares maps non-payer participant IDs to owed amounts. May be empty
	// for legacy rows; readers then reconstruct it via the ledger's
	// derivation fallback.
	Shares map[string]float64

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// HasParticipant reports whether the account is on the participant list.
func (e *Expense) HasParticipant(accountID string) bool {
	for _, id := range e.ParticipantIDs {
		if id == accountID {
			return true
		}
	}
	return false
}
