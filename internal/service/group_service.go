package service

import (
	"context"
	"log/slog"

	"github.com/mmehra/splitledger/internal/apperrors"
	"github.com/mmehra/splitledger/internal/membership"
	"github.com/mmehra/splitledger/internal/metrics"
	"github.com/mmehra/splitledger/internal/models"
	"github.com/mmehra/splitledger/internal/storage"
)

// GroupService manages group lifecycle and membership.
type GroupService struct {
	store    storage.Store
	resolver *membership.Resolver
	metrics  *metrics.Metrics
}

// NewGroupService creates a GroupService with its collaborators.
func NewGroupService(store storage.Store, resolver *membership.Resolver, m *metrics.Metrics) *GroupService {
	return &GroupService{store: store, resolver: resolver, metrics: m}
}

// CreateGroup creates a group with the caller as creator and first
// confirmed member. Invite emails join the pending set unless they
// already match a registered account, which is confirmed immediately by
// the resolution pass below.
func (s *GroupService) CreateGroup(ctx context.Context, callerID, name string, inviteEmails []string) (*models.Group, error) {
	caller, err := s.store.GetAccount(ctx, callerID)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "load caller account", Err: err}
	}
	if caller == nil {
		return nil, apperrors.NotFound("account", callerID)
	}

	group := &models.Group{
		Name:         name,
		CreatorID:    callerID,
		MemberIDs:    []string{callerID},
		MemberEmails: []string{caller.Email},
	}
	for _, email := range inviteEmails {
		normalized := models.NormalizeEmail(email)
		if normalized == "" || normalized == caller.Email {
			continue
		}
		group.PendingEmails = append(group.PendingEmails, normalized)
	}

	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "name", name, "error", err)
		return nil, &apperrors.PersistenceError{Op: "create group", Err: err}
	}

	// Invitees who already registered become members right away.
	if result, err := s.resolver.Resolve(ctx, group); err != nil {
		slog.Warn("CreateGroup: initial resolution incomplete", "group_id", group.ID, "error", err)
	} else {
		s.metrics.AddMembersPromoted(len(result.Promoted))
	}

	slog.Info("group created", "group_id", group.ID, "name", group.Name, "pending", len(group.PendingEmails))
	return group, nil
}

// GetGroup retrieves a group for one of its confirmed members, applying
// a resolution pass first so newly registered invitees appear without an
// explicit resolve call.
func (s *GroupService) GetGroup(ctx context.Context, callerID, groupID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if result, err := s.resolver.Resolve(ctx, group); err != nil {
		slog.Warn("GetGroup: resolution incomplete", "group_id", groupID, "error", err)
	} else {
		s.metrics.AddMembersPromoted(len(result.Promoted))
	}

	if !group.HasMember(callerID) {
		return nil, apperrors.Forbidden("caller is not a member of the group")
	}
	return group, nil
}

// ListGroups retrieves every group the caller belongs to.
func (s *GroupService) ListGroups(ctx context.Context, callerID string) ([]*models.Group, error) {
	return s.store.ListGroupsForMember(ctx, callerID)
}

// AddMembers merges account IDs into the confirmed set. Merge semantics
// make concurrent manual additions and resolver promotions commutative.
func (s *GroupService) AddMembers(ctx context.Context, callerID, groupID string, accountIDs []string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, apperrors.Forbidden("caller is not a member of the group")
	}

	accounts, err := s.store.GetAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return nil, &apperrors.PersistenceError{Op: "load member accounts", Err: err}
	}
	var ids, emails []string
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return nil, apperrors.NotFound("account", id)
		}
		ids = append(ids, account.ID)
		emails = append(emails, account.Email)
	}

	if err := s.store.UpdateGroupMembership(ctx, groupID, ids, emails, nil, emails); err != nil {
		return nil, &apperrors.PersistenceError{Op: "merge group members", Err: err}
	}

	return s.store.GetGroup(ctx, groupID)
}

// Invite adds normalized emails to the pending set and immediately runs a
// resolution pass, so invitees with existing accounts are promoted in the
// same call.
func (s *GroupService) Invite(ctx context.Context, callerID, groupID string, emails []string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, apperrors.Forbidden("caller is not a member of the group")
	}

	var pending []string
	for _, email := range emails {
		normalized := models.NormalizeEmail(email)
		if normalized == "" {
			continue
		}
		pending = append(pending, normalized)
	}
	if len(pending) > 0 {
		if err := s.store.UpdateGroupMembership(ctx, groupID, nil, nil, pending, nil); err != nil {
			return nil, &apperrors.PersistenceError{Op: "add pending invitations", Err: err}
		}
	}

	group, err = s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if result, err := s.resolver.Resolve(ctx, group); err != nil {
		slog.Warn("Invite: resolution incomplete", "group_id", groupID, "error", err)
	} else {
		s.metrics.AddMembersPromoted(len(result.Promoted))
	}
	return group, nil
}

// ResolveMembership runs an explicit resolution pass for a confirmed
// member and reports what it did, including lookups that failed and left
// their email pending.
func (s *GroupService) ResolveMembership(ctx context.Context, callerID, groupID string) (*membership.Result, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !group.HasMember(callerID) {
		return nil, apperrors.Forbidden("caller is not a member of the group")
	}
	result, err := s.resolver.Resolve(ctx, group)
	if err != nil {
		return result, &apperrors.PersistenceError{Op: "persist membership resolution", Err: err}
	}
	s.metrics.AddMembersPromoted(len(result.Promoted))
	return result, nil
}

// DeleteGroup removes a group and all expenses and settlements that
// reference it. Creator only.
func (s *GroupService) DeleteGroup(ctx context.Context, callerID, groupID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatorID != callerID {
		return apperrors.Forbidden("only the group creator may delete it")
	}

	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", groupID, "error", err)
		return &apperrors.PersistenceError{Op: "delete group", Err: err}
	}

	slog.Info("group deleted", "group_id", groupID)
	return nil
}
