// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmehra/splitledger/internal/models"
)

// SettlementFilter narrows settlement queries. Zero fields are ignored.
type SettlementFilter struct {
	GroupID    string
	ExpenseID  string
	DebtorID   string
	CreditorID string
	Status     models.SettlementStatus
}

// ExpenseFilter narrows expense queries. From/To bound SpentAt and are
// ignored when zero.
type ExpenseFilter struct {
	GroupID string
	PayerID string
	From    int64
	To      int64
}

// Store defines the document-store collaborator boundary: generic CRUD
// with equality filtering over four record kinds. Any backend with
// fetch-by-id, fetch-by-filter and at-least-once writes can implement it;
// the shipped implementation is SQLite.
type Store interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves an account by ID. Returns (nil, nil) when the
	// account does not exist.
	GetAccount(ctx context.Context, id string) (*models.Account, error)

	// GetAccountByEmail retrieves an account by exact email match.
	// Returns (nil, nil) when no account matches.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountsByIDs retrieves multiple accounts keyed by ID. Missing
	// accounts are omitted from the result.
	GetAccountsByIDs(ctx context.Context, ids []string) (map[string]*models.Account, error)

	// AddAccountPoints atomically increments an account's point total and
	// recomputes its level.
	AddAccountPoints(ctx context.Context, accountID string, points int64) error

	// CreateGroup persists a new group, generating ID and CreatedAt.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with all three membership sets.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember retrieves every group whose confirmed set
	// contains the account.
	ListGroupsForMember(ctx context.Context, accountID string) ([]*models.Group, error)

	// UpdateGroupMembership merges the given membership deltas into the
	// stored group: memberIDs and memberEmails are unioned in,
	// removePending emails are dropped from the pending set, addPending
	// emails are unioned into it. The read-merge-write happens inside the
	// store so concurrent updates never overwrite each other.
	UpdateGroupMembership(ctx context.Context, groupID string, memberIDs, memberEmails, addPending, removePending []string) error

	// DeleteGroup removes the group and all expenses and settlements that
	// reference it, children first.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense with its participants and shares,
	// generating ID and CreatedAt.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense including participants and shares.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpenses retrieves expenses matching the filter, newest first.
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]*models.Expense, error)

	// DeleteExpense removes an expense and its settlements.
	DeleteExpense(ctx context.Context, expenseID string) error

	// CreateSettlement persists a settlement, generating ID and
	// CreatedAt. Inserting a duplicate (expense, debtor, creditor) triple
	// returns ErrDuplicateSettlement.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// ListSettlements retrieves settlements matching the filter.
	ListSettlements(ctx context.Context, filter SettlementFilter) ([]*models.Settlement, error)

	// MarkSettlementPaid sets status to paid and stamps PaidAt. Returns
	// true when this call performed the pending -> paid transition and
	// false when the settlement was already paid, so exactly one of any
	// set of concurrent callers observes the transition.
	MarkSettlementPaid(ctx context.Context, settlementID string, paidAt int64) (bool, error)

	// Close releases any resources held by the store.
	Close() error
}
