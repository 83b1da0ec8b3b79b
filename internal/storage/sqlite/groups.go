package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/models"
)

// CreateGroup persists a new group with all three membership sets.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, creator_id, created_at) VALUES (?, ?, ?, ?)",
		group.ID, group.Name, group.CreatorID, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for _, id := range group.MemberIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, account_id) VALUES (?, ?)",
			group.ID, id,
		); err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}
	for _, email := range group.MemberEmails {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_member_emails (group_id, email) VALUES (?, ?)",
			group.ID, email,
		); err != nil {
			return fmt.Errorf("failed to insert member email: %w", err)
		}
	}
	for _, email := range group.PendingEmails {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_pending_emails (group_id, email) VALUES (?, ?)",
			group.ID, email,
		); err != nil {
			return fmt.Errorf("failed to insert pending email: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID, including membership sets.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, creator_id, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatorID, &group.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("group", groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.MemberIDs, err = s.listStrings(ctx,
		"SELECT account_id FROM group_members WHERE group_id = ? ORDER BY account_id", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	group.MemberEmails, err = s.listStrings(ctx,
		"SELECT email FROM group_member_emails WHERE group_id = ? ORDER BY email", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member emails: %w", err)
	}
	group.PendingEmails, err = s.listStrings(ctx,
		"SELECT email FROM group_pending_emails WHERE group_id = ? ORDER BY email", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending emails: %w", err)
	}

	return group, nil
}

// ListGroupsForMember retrieves all groups containing the account.
func (s *SQLiteStore) ListGroupsForMember(ctx context.Context, accountID string) ([]*models.Group, error) {
	ids, err := s.listStrings(ctx,
		"SELECT group_id FROM group_members WHERE account_id = ?", accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups for member: %w", err)
	}

	var groups []*models.Group
	for _, id := range ids {
		group, err := s.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// UpdateGroupMembership merges membership deltas inside one transaction.
// Inserts use OR IGNORE so the merge is commutative: concurrent resolvers
// and manual additions can interleave without losing entries.
func (s *SQLiteStore) UpdateGroupMembership(ctx context.Context, groupID string, memberIDs, memberEmails, addPending, removePending []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("group", groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	for _, id := range memberIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, account_id) VALUES (?, ?)",
			groupID, id,
		); err != nil {
			return fmt.Errorf("failed to merge group member: %w", err)
		}
	}
	for _, email := range memberEmails {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_member_emails (group_id, email) VALUES (?, ?)",
			groupID, email,
		); err != nil {
			return fmt.Errorf("failed to merge member email: %w", err)
		}
	}
	for _, email := range addPending {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_pending_emails (group_id, email) VALUES (?, ?)",
			groupID, email,
		); err != nil {
			return fmt.Errorf("failed to add pending email: %w", err)
		}
	}
	for _, email := range removePending {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM group_pending_emails WHERE group_id = ? AND email = ?",
			groupID, email,
		); err != nil {
			return fmt.Errorf("failed to remove pending email: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteGroup removes a group and everything that references it,
// children first so a failed run never leaves orphaned records behind a
// deleted parent.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, groupID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("group", groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to check group existence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM settlements WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete group settlements: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM expenses WHERE group_id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete group expenses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM groups WHERE id = ?", groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// listStrings scans a single-column query into a slice.
func (s *SQLiteStore) listStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
