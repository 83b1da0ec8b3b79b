package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
)

// Points-to-level thresholds: level n requires levelStep*(n-1) points.
const levelStep = 100

// CreateAccount inserts a new account into the database.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, email, display_name, password_hash, points, level, badges, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.DisplayName,
		account.PasswordHash,
		account.Points,
		account.Level,
		strings.Join(account.Badges, ","),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var badges string
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.DisplayName,
		&account.PasswordHash,
		&account.Points,
		&account.Level,
		&badges,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if badges != "" {
		account.Badges = strings.Split(badges, ",")
	}
	return account, nil
}

const accountColumns = "id, email, display_name, password_hash, points, level, badges, created_at, updated_at"

// GetAccount retrieves an account by its ID.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = ?", id)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

// GetAccountByEmail retrieves an account by exact email match.
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email = ?", email)

	account, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return account, nil
}

// GetAccountsByIDs retrieves multiple accounts by their IDs.
// Accounts that don't exist are omitted from the result.
func (s *SQLiteStore) GetAccountsByIDs(ctx context.Context, ids []string) (map[string]*models.Account, error) {
	accounts := make(map[string]*models.Account)
	if len(ids) == 0 {
		return accounts, nil
	}

	query := "SELECT " + accountColumns + " FROM accounts WHERE id IN (?" + repeatPlaceholder(len(ids)-1) + ")"

	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by IDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		account := &models.Account{}
		var badges string
		if err := rows.Scan(
			&account.ID,
			&account.Email,
			&account.DisplayName,
			&account.PasswordHash,
			&account.Points,
			&account.Level,
			&badges,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		if badges != "" {
			account.Badges = strings.Split(badges, ",")
		}
		accounts[account.ID] = account
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// AddAccountPoints increments the point total and recomputes the level in
// a single statement so concurrent awards never lose increments.
func (s *SQLiteStore) AddAccountPoints(ctx context.Context, accountID string, points int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE accounts
		 SET points = points + ?,
		     level = 1 + (points + ?) / ?,
		     updated_at = ?
		 WHERE id = ?`,
		points, points, levelStep, time.Now().Unix(), accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to add account points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check points update: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound("account", accountID)
	}
	return nil
}
