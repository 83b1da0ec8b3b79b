package models

// Group represents a named roster of people who share expenses.
//
// Membership is tracked in three sets: confirmed account IDs, the
// normalized emails of those confirmed members (used for matching), and
// pending invitation emails that have not yet resolved to an account.
// A pending email is "promoted" once a matching account exists: the
// account ID joins MemberIDs and the email leaves PendingEmails.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	Name string

	// CreatorID is the account that created the group. Only the creator
	// may delete it.
	CreatorID string

	// MemberIDs is the confirmed-member set (account IDs, deduplicated).
	MemberIDs []string

	// MemberEmails is the set of normalized emails for confirmed members.
	MemberEmails []string

	// PendingEmails is the set of invitation emails not yet resolved to
	// an account. Legacy rows may carry original casing.
	PendingEmails []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether the account ID is in the confirmed set.
func (g *Group) HasMember(accountID string) bool {
	for _, id := range g.MemberIDs {
		if id == accountID {
			return true
		}
	}
	return false
}

// MergeMembers unions the given account IDs into the confirmed set and
// returns the IDs that were actually new. Union semantics keep concurrent
// resolution and manual additions commutative.
func (g *Group) MergeMembers(accountIDs []string) []string {
	seen := make(map[string]bool, len(g.MemberIDs))
	for _, id := range g.MemberIDs {
		seen[id] = true
	}
	var added []string
	for _, id := range accountIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		g.MemberIDs = append(g.MemberIDs, id)
		added = append(added, id)
	}
	return added
}
