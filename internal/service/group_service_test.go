package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mmehra/splitledger/internal/apperrors"
)

func TestCreateGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.createAccount(t, "creator@example.com", "Creator")
	registered := env.createAccount(t, "registered@example.com", "Registered")

	group, err := env.groups.CreateGroup(ctx, creator.ID, "Flat",
		[]string{"Registered@Example.com", "unknown@example.com", "creator@example.com"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	if !group.HasMember(creator.ID) {
		t.Error("creator missing from confirmed members")
	}
	// An invitee with an existing account is promoted in the same call.
	if !group.HasMember(registered.ID) {
		t.Errorf("MemberIDs = %v, want registered invitee promoted", group.MemberIDs)
	}
	if len(group.PendingEmails) != 1 || group.PendingEmails[0] != "unknown@example.com" {
		t.Errorf("PendingEmails = %v, want [unknown@example.com]", group.PendingEmails)
	}

	_, err = env.groups.CreateGroup(ctx, "missing-id", "Flat", nil)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown creator, got %v", err)
	}
}

func TestGetGroup_ResolvesOnRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.createAccount(t, "creator@example.com", "Creator")
	group, err := env.groups.CreateGroup(ctx, creator.ID, "Flat", []string{"late@example.com"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if len(group.PendingEmails) != 1 {
		t.Fatalf("PendingEmails = %v, want the invitation pending", group.PendingEmails)
	}

	// The invitee registers after the invitation went out.
	late := env.createAccount(t, "late@example.com", "Late")

	got, err := env.groups.GetGroup(ctx, creator.ID, group.ID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if !got.HasMember(late.ID) {
		t.Errorf("MemberIDs = %v, want late registrant promoted on read", got.MemberIDs)
	}
	if len(got.PendingEmails) != 0 {
		t.Errorf("PendingEmails = %v, want empty after promotion", got.PendingEmails)
	}

	outsider := env.createAccount(t, "outsider@example.com", "Outsider")
	_, err = env.groups.GetGroup(ctx, outsider.ID, group.ID)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden for outsider, got %v", err)
	}
}

func TestAddMembers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.createAccount(t, "creator@example.com", "Creator")
	bob := env.createAccount(t, "bob@example.com", "Bob")
	group, err := env.groups.CreateGroup(ctx, creator.ID, "Flat", nil)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	got, err := env.groups.AddMembers(ctx, creator.ID, group.ID, []string{bob.ID})
	if err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}
	if !got.HasMember(bob.ID) {
		t.Errorf("MemberIDs = %v, want bob added", got.MemberIDs)
	}

	_, err = env.groups.AddMembers(ctx, creator.ID, group.ID, []string{"missing-id"})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown account, got %v", err)
	}

	_, err = env.groups.AddMembers(ctx, bob.ID, group.ID, []string{creator.ID})
	if err != nil {
		t.Errorf("existing member adding another member failed: %v", err)
	}
}

func TestInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.createAccount(t, "creator@example.com", "Creator")
	registered := env.createAccount(t, "registered@example.com", "Registered")
	group, err := env.groups.CreateGroup(ctx, creator.ID, "Flat", nil)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	got, err := env.groups.Invite(ctx, creator.ID, group.ID,
		[]string{"Registered@Example.com", "unknown@example.com"})
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if !got.HasMember(registered.ID) {
		t.Errorf("MemberIDs = %v, want registered invitee promoted", got.MemberIDs)
	}
	if len(got.PendingEmails) != 1 || got.PendingEmails[0] != "unknown@example.com" {
		t.Errorf("PendingEmails = %v, want [unknown@example.com]", got.PendingEmails)
	}

	outsider := env.createAccount(t, "outsider@example.com", "Outsider")
	_, err = env.groups.Invite(ctx, outsider.ID, group.ID, []string{"x@example.com"})
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden for outsider, got %v", err)
	}
}

func TestResolveMembership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.createAccount(t, "creator@example.com", "Creator")
	group, err := env.groups.CreateGroup(ctx, creator.ID, "Flat", []string{"late@example.com"})
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	result, err := env.groups.ResolveMembership(ctx, creator.ID, group.ID)
	if err != nil {
		t.Fatalf("ResolveMembership failed: %v", err)
	}
	if len(result.StillPending) != 1 {
		t.Errorf("StillPending = %v, want the unmatched invitation", result.StillPending)
	}

	late := env.createAccount(t, "late@example.com", "Late")
	result, err = env.groups.ResolveMembership(ctx, creator.ID, group.ID)
	if err != nil {
		t.Fatalf("ResolveMembership after registration failed: %v", err)
	}
	if result.Promoted["late@example.com"] != late.ID {
		t.Errorf("Promoted = %v, want late@example.com -> %s", result.Promoted, late.ID)
	}

	outsider := env.createAccount(t, "outsider@example.com", "Outsider")
	_, err = env.groups.ResolveMembership(ctx, outsider.ID, group.ID)
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden for outsider, got %v", err)
	}
}

func TestDeleteGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	creator := env.createAccount(t, "creator@example.com", "Creator")
	bob := env.createAccount(t, "bob@example.com", "Bob")
	group, err := env.groups.CreateGroup(ctx, creator.ID, "Flat", nil)
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if _, err := env.groups.AddMembers(ctx, creator.ID, group.ID, []string{bob.ID}); err != nil {
		t.Fatalf("AddMembers failed: %v", err)
	}

	if err := env.groups.DeleteGroup(ctx, bob.ID, group.ID); !errors.Is(err, apperrors.ErrForbidden) {
		t.Errorf("expected ErrForbidden for non-creator, got %v", err)
	}

	if err := env.groups.DeleteGroup(ctx, creator.ID, group.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	if _, err := env.store.GetGroup(ctx, group.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}
