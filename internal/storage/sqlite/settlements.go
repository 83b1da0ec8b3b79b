package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
)

const settlementColumns = "id, expense_id, group_id, debtor_id, creditor_id, amount, description, status, created_at, paid_at"

// CreateSettlement persists a new settlement to the database. A duplicate
// (expense, debtor, creditor) triple maps to storage.ErrDuplicateSettlement
// so retried batches can treat it as already done.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}
	if settlement.Status == "" {
		settlement.Status = models.SettlementPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settlements (`+settlementColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		settlement.ID, settlement.ExpenseID, settlement.GroupID,
		settlement.DebtorID, settlement.CreditorID, settlement.Amount,
		settlement.Description, string(settlement.Status),
		settlement.CreatedAt, settlement.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateSettlement
		}
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// isUniqueViolation detects the sqlite UNIQUE constraint error without
// depending on driver-specific error types.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var status string

	err := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	).Scan(&settlement.ID, &settlement.ExpenseID, &settlement.GroupID,
		&settlement.DebtorID, &settlement.CreditorID, &settlement.Amount,
		&settlement.Description, &status, &settlement.CreatedAt, &settlement.PaidAt)

	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	settlement.Status = models.SettlementStatus(status)
	return settlement, nil
}

// ListSettlements retrieves settlements matching the filter, newest first.
func (s *SQLiteStore) ListSettlements(ctx context.Context, filter storage.SettlementFilter) ([]*models.Settlement, error) {
	query := "SELECT " + settlementColumns + " FROM settlements WHERE 1=1"
	var args []interface{}
	if filter.GroupID != "" {
		query += " AND group_id = ?"
		args = append(args, filter.GroupID)
	}
	if filter.ExpenseID != "" {
		query += " AND expense_id = ?"
		args = append(args, filter.ExpenseID)
	}
	if filter.DebtorID != "" {
		query += " AND debtor_id = ?"
		args = append(args, filter.DebtorID)
	}
	if filter.CreditorID != "" {
		query += " AND creditor_id = ?"
		args = append(args, filter.CreditorID)
	}
	if filter.Status != "" {
		query += " AND status = ?"
		args = append(args, string(filter.Status))
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement := &models.Settlement{}
		var status string
		if err := rows.Scan(&settlement.ID, &settlement.ExpenseID, &settlement.GroupID,
			&settlement.DebtorID, &settlement.CreditorID, &settlement.Amount,
			&settlement.Description, &status, &settlement.CreatedAt, &settlement.PaidAt); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlement.Status = models.SettlementStatus(status)
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// MarkSettlementPaid transitions a settlement to paid. The WHERE clause
// keeps the transition monotone: an already-paid settlement is untouched,
// so the operation stays idempotent and PaidAt keeps its first value.
// The rows-affected count decides who actually flipped the row, which
// lets concurrent callers agree on a single winner.
func (s *SQLiteStore) MarkSettlementPaid(ctx context.Context, settlementID string, paidAt int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE settlements SET status = ?, paid_at = ? WHERE id = ? AND status = ?",
		string(models.SettlementPaid), paidAt, settlementID, string(models.SettlementPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark settlement paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check settlement update: %w", err)
	}
	if affected == 0 {
		// Either already paid (fine) or missing.
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT 1 FROM settlements WHERE id = ?", settlementID).Scan(&exists)
		if err == sql.ErrNoRows {
			return false, apperrors.NotFound("settlement", settlementID)
		}
		if err != nil {
			return false, fmt.Errorf("failed to check settlement existence: %w", err)
		}
		return false, nil
	}

	return true, nil
}
