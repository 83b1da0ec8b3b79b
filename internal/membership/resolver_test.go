package membership

import (
	"context"
	"errors"
	"testing"

	"github.com/mmehra/splitledger/internal/models"
)

type fakeLookup struct {
	accounts map[string]*models.Account
	errs     map[string]error
	calls    int
}

func (f *fakeLookup) GetAccountByEmail(_ context.Context, email string) (*models.Account, error) {
	f.calls++
	if err, ok := f.errs[email]; ok {
		return nil, err
	}
	return f.accounts[email], nil
}

type fakeWriter struct {
	writes            int
	lastMemberIDs     []string
	lastRemovePending []string
}

func (f *fakeWriter) UpdateGroupMembership(_ context.Context, _ string, memberIDs, _, _, removePending []string) error {
	f.writes++
	f.lastMemberIDs = memberIDs
	f.lastRemovePending = removePending
	return nil
}

func TestResolve_PromotesMatchingInvitation(t *testing.T) {
	lookup := &fakeLookup{accounts: map[string]*models.Account{
		"bob@example.com": {ID: "bob-id", Email: "bob@example.com"},
	}}
	writer := &fakeWriter{}
	resolver := New(lookup, writer)

	group := &models.Group{
		ID:            "g1",
		MemberIDs:     []string{"alice-id"},
		PendingEmails: []string{"bob@example.com", "carol@example.com"},
	}

	result, err := resolver.Resolve(context.Background(), group)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if result.Promoted["bob@example.com"] != "bob-id" {
		t.Errorf("Promoted = %v, want bob@example.com -> bob-id", result.Promoted)
	}
	if len(result.StillPending) != 1 || result.StillPending[0] != "carol@example.com" {
		t.Errorf("StillPending = %v, want [carol@example.com]", result.StillPending)
	}
	if !group.HasMember("bob-id") {
		t.Error("group roster missing promoted member bob-id")
	}
	if len(group.PendingEmails) != 1 || group.PendingEmails[0] != "carol@example.com" {
		t.Errorf("PendingEmails = %v, want [carol@example.com]", group.PendingEmails)
	}
	if writer.writes != 1 {
		t.Errorf("writes = %d, want 1", writer.writes)
	}
	if len(writer.lastRemovePending) != 1 || writer.lastRemovePending[0] != "bob@example.com" {
		t.Errorf("removePending = %v, want [bob@example.com]", writer.lastRemovePending)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	lookup := &fakeLookup{accounts: map[string]*models.Account{
		"bob@example.com": {ID: "bob-id", Email: "bob@example.com"},
	}}
	writer := &fakeWriter{}
	resolver := New(lookup, writer)

	group := &models.Group{ID: "g1", PendingEmails: []string{"bob@example.com"}}

	if _, err := resolver.Resolve(context.Background(), group); err != nil {
		t.Fatalf("first pass failed: %v", err)
	}
	result, err := resolver.Resolve(context.Background(), group)
	if err != nil {
		t.Fatalf("second pass failed: %v", err)
	}

	if result.Changed() {
		t.Error("second pass reported changes on an already-resolved group")
	}
	if writer.writes != 1 {
		t.Errorf("writes = %d, want 1 (second pass must skip the write)", writer.writes)
	}
	if len(group.MemberIDs) != 1 {
		t.Errorf("MemberIDs = %v, want exactly one entry", group.MemberIDs)
	}
}

func TestResolve_LookupFailureStaysPending(t *testing.T) {
	lookupErr := errors.New("connection reset")
	lookup := &fakeLookup{
		accounts: map[string]*models.Account{
			"bob@example.com": {ID: "bob-id", Email: "bob@example.com"},
		},
		errs: map[string]error{"flaky@example.com": lookupErr},
	}
	writer := &fakeWriter{}
	resolver := New(lookup, writer)

	group := &models.Group{ID: "g1", PendingEmails: []string{"flaky@example.com", "bob@example.com"}}

	result, err := resolver.Resolve(context.Background(), group)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if !errors.Is(result.Failed["flaky@example.com"], lookupErr) {
		t.Errorf("Failed = %v, want flaky@example.com -> %v", result.Failed, lookupErr)
	}
	if result.Promoted["bob@example.com"] != "bob-id" {
		t.Error("failure on one email must not block promotion of the next")
	}
	if len(group.PendingEmails) != 1 || group.PendingEmails[0] != "flaky@example.com" {
		t.Errorf("PendingEmails = %v, want [flaky@example.com]", group.PendingEmails)
	}
}

func TestResolve_CasingFallback(t *testing.T) {
	// A legacy row stored with original casing only matches on the second,
	// literal lookup.
	lookup := &fakeLookup{accounts: map[string]*models.Account{
		"Bob@Example.com": {ID: "bob-id", Email: "Bob@Example.com"},
	}}
	writer := &fakeWriter{}
	resolver := New(lookup, writer)

	group := &models.Group{ID: "g1", PendingEmails: []string{"Bob@Example.com"}}

	result, err := resolver.Resolve(context.Background(), group)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Promoted["Bob@Example.com"] != "bob-id" {
		t.Errorf("Promoted = %v, want literal-casing fallback to match", result.Promoted)
	}
}

func TestResolve_NoInvitationsNoWrite(t *testing.T) {
	lookup := &fakeLookup{}
	writer := &fakeWriter{}
	resolver := New(lookup, writer)

	group := &models.Group{ID: "g1", MemberIDs: []string{"alice-id"}}

	result, err := resolver.Resolve(context.Background(), group)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result.Changed() {
		t.Error("empty pass reported changes")
	}
	if writer.writes != 0 {
		t.Errorf("writes = %d, want 0", writer.writes)
	}
}
