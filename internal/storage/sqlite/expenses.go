package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
)

// CreateExpense persists a new expense with participants and shares.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if expense.SpentAt == 0 {
		expense.SpentAt = expense.CreatedAt
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO expenses (id, group_id, payer_id, description, amount, spent_at, policy, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.PayerID, expense.Description,
		expense.Amount, expense.SpentAt, string(expense.Policy), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for _, id := range expense.ParticipantIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO expense_participants (expense_id, account_id) VALUES (?, ?)",
			expense.ID, id,
		); err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for accountID, amount := range expense.Shares {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, account_id, amount) VALUES (?, ?, ?)",
			expense.ID, accountID, amount,
		); err != nil {
			return fmt.Errorf("failed to insert share: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID, including participants and shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	expense := &models.Expense{}
	var policy string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, payer_id, description, amount, spent_at, policy, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&expense.ID, &expense.GroupID, &expense.PayerID, &expense.Description,
		&expense.Amount, &expense.SpentAt, &policy, &expense.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	expense.Policy = models.SplitPolicy(policy)

	expense.ParticipantIDs, err = s.listStrings(ctx,
		"SELECT account_id FROM expense_participants WHERE expense_id = ? ORDER BY account_id", expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT account_id, amount FROM expense_shares WHERE expense_id = ?", expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get shares: %w", err)
	}
	defer rows.Close()

	expense.Shares = make(map[string]float64)
	for rows.Next() {
		var accountID string
		var amount float64
		if err := rows.Scan(&accountID, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		expense.Shares[accountID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return expense, nil
}

// ListExpenses retrieves expenses matching the filter, newest first.
func (s *SQLiteStore) ListExpenses(ctx context.Context, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	query := "SELECT id FROM expenses WHERE 1=1"
	var args []interface{}
	if filter.GroupID != "" {
		query += " AND group_id = ?"
		args = append(args, filter.GroupID)
	}
	if filter.PayerID != "" {
		query += " AND payer_id = ?"
		args = append(args, filter.PayerID)
	}
	if filter.From != 0 {
		query += " AND spent_at >= ?"
		args = append(args, filter.From)
	}
	if filter.To != 0 {
		query += " AND spent_at < ?"
		args = append(args, filter.To)
	}
	query += " ORDER BY spent_at DESC"

	ids, err := s.listStrings(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	var expenses []*models.Expense
	for _, id := range ids {
		expense, err := s.GetExpense(ctx, id)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// DeleteExpense removes an expense and its settlements, children first.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM expenses WHERE id = ?", expenseID).Scan(&exists)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("expense", expenseID)
	}
	if err != nil {
		return fmt.Errorf("failed to check expense existence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense settlements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
