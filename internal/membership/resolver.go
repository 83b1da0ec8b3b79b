// Package membership turns a group's mixed roster of confirmed members
// and pending email invitations into a concrete member set, promoting
// invitations to confirmed members as matching accounts appear.
package membership

import (
	"context"
	"log/slog"

	"github.com/mmehra/splitledger/internal/models"
)

// AccountLookup is the slice of the store the resolver needs for email
// matching. GetAccountByEmail returns (nil, nil) when nothing matches.
type AccountLookup interface {
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// MembershipWriter persists membership deltas as a read-merge-write
// union, never an overwrite.
type MembershipWriter interface {
	UpdateGroupMembership(ctx context.Context, groupID string, memberIDs, memberEmails, addPending, removePending []string) error
}

// Result reports what a resolution pass did. Failed lookups are partial
// success, not an error: those emails simply stay pending.
type Result struct {
	// Promoted maps pending email -> account ID for newly confirmed members.
	Promoted map[string]string

	// StillPending lists invitation emails with no matching account yet.
	StillPending []string

	// Failed maps email -> lookup error for transient backend failures.
	Failed map[string]error
}

// Changed reports whether the pass produced anything to persist.
func (r *Result) Changed() bool {
	return len(r.Promoted) > 0
}

// Resolver resolves group membership against the account store.
type Resolver struct {
	accounts AccountLookup
	groups   MembershipWriter
}

// New creates a resolver over the given account lookup and group writer.
func New(accounts AccountLookup, groups MembershipWriter) *Resolver {
	return &Resolver{accounts: accounts, groups: groups}
}

// Resolve performs one batch resolution pass over the group:
//
//  1. Every known member email is matched by normalized lookup; a hit is
//     merged into the confirmed set in case an earlier write was lost.
//  2. Every pending invitation email is matched (normalized first, then
//     literal casing for legacy rows); a hit promotes the invitation.
//  3. All deltas are persisted in a single merge update, skipped entirely
//     when nothing changed.
//
// The pass is idempotent and order-independent. It mutates group in
// place so callers see the post-resolution roster without a re-read.
func (r *Resolver) Resolve(ctx context.Context, group *models.Group) (*Result, error) {
	result := &Result{
		Promoted: make(map[string]string),
		Failed:   make(map[string]error),
	}

	var newMemberIDs []string
	var newMemberEmails []string
	var removePending []string

	for _, email := range group.MemberEmails {
		account, err := r.lookup(ctx, email)
		if err != nil {
			result.Failed[email] = err
			slog.Warn("membership: member email lookup failed", "group_id", group.ID, "email", email, "error", err)
			continue
		}
		if account != nil && !group.HasMember(account.ID) {
			newMemberIDs = append(newMemberIDs, account.ID)
		}
	}

	for _, email := range group.PendingEmails {
		account, err := r.lookup(ctx, email)
		if err != nil {
			result.Failed[email] = err
			result.StillPending = append(result.StillPending, email)
			slog.Warn("membership: invitation lookup failed", "group_id", group.ID, "email", email, "error", err)
			continue
		}
		if account == nil {
			result.StillPending = append(result.StillPending, email)
			continue
		}
		result.Promoted[email] = account.ID
		newMemberIDs = append(newMemberIDs, account.ID)
		newMemberEmails = append(newMemberEmails, account.Email)
		removePending = append(removePending, email)
	}

	added := group.MergeMembers(newMemberIDs)
	mergeStrings(&group.MemberEmails, newMemberEmails)
	group.PendingEmails = subtractStrings(group.PendingEmails, removePending)

	if len(added) == 0 && len(removePending) == 0 {
		return result, nil
	}

	if err := r.groups.UpdateGroupMembership(ctx, group.ID, added, newMemberEmails, nil, removePending); err != nil {
		return result, err
	}

	slog.Info("membership resolved",
		"group_id", group.ID,
		"promoted", len(result.Promoted),
		"still_pending", len(result.StillPending),
		"failed_lookups", len(result.Failed),
	)

	return result, nil
}

// lookup matches an email against accounts: normalized form first, then
// the literal casing for rows created before normalization existed.
func (r *Resolver) lookup(ctx context.Context, email string) (*models.Account, error) {
	normalized := models.NormalizeEmail(email)
	account, err := r.accounts.GetAccountByEmail(ctx, normalized)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}
	if email == normalized {
		return nil, nil
	}
	return r.accounts.GetAccountByEmail(ctx, email)
}

func mergeStrings(dst *[]string, values []string) {
	seen := make(map[string]bool, len(*dst))
	for _, v := range *dst {
		seen[v] = true
	}
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		*dst = append(*dst, v)
	}
}

func subtractStrings(from, remove []string) []string {
	if len(remove) == 0 {
		return from
	}
	drop := make(map[string]bool, len(remove))
	for _, v := range remove {
		drop[v] = true
	}
	var kept []string
	for _, v := range from {
		if !drop[v] {
			kept = append(kept, v)
		}
	}
	return kept
}
