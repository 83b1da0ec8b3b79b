package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account represents a registered user profile.
//
// The identity collaborator owns registration and login; the core reads
// accounts for email matching (membership promotion) and display-name
// resolution, and the gamification side-system maintains the counters.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// DisplayName is shown wherever the account appears in balances.
	DisplayName string

	// Email is the normalized (lower-cased) address, unique per account.
	Email string

	// PasswordHash is the bcrypt hash used for password login.
	PasswordHash string

	// Points, Level and Badges are gamification counters updated by the
	// side-system in response to expense/settlement events.
	Points int64
	Level  int64
	Badges []string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewAccount builds an account with a fresh ID and normalized email.
func NewAccount(email, displayName, passwordHash string) *Account {
	now := time.Now().Unix()
	return &Account{
		ID:           uuid.New().String(),
		DisplayName:  displayName,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Level:        1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail lower-cases and trims an email address so lookups and
// membership matching are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
