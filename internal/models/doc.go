// Package models defines the core domain records for splitledger.
//
// # Record kinds
//
//   - Account: a registered user profile, including gamification counters
//   - Group: a named roster of confirmed members and pending email invites
//   - Expense: an immutable record of one spend event with its split
//   - Settlement: a directed debt derived from an expense's split
//
// # Design Principles
//
// 1. **Expenses are immutable**: payment state lives on settlements, never
// on the expense itself.
// 2. **Directed settlements are canonical**: a settlement always stores
// debtor, creditor and a non-negative amount. The legacy signed view
// (positive = subject owes, negative = subject is owed) is computed for
// display via SignedAmountFor and is never persisted.
// 3. **Avoid circular references**: records link by ID strings, not
// pointers.
// 4. **Membership sets are true sets**: group member IDs and emails are
// deduplicated; concurrent updates merge, they never overwrite.
package models
