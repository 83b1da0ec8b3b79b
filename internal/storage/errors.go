package storage

import "errors"

// ErrDuplicateSettlement signals that a settlement with the same
// (expense, debtor, creditor) triple already exists. Callers retrying a
// settlement batch treat it as "already done", not a failure.
var ErrDuplicateSettlement = errors.New("settlement already exists for triple")
