package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

// GroupService implements the group registry: creation, roster management and
// the admin flag. Membership mutations that would strand money are refused.
type GroupService struct {
	store     *storage.Store
	directory Directory
	balances  *BalanceService
	gate      *gate
}

func NewGroupService(store *storage.Store, directory Directory, balances *BalanceService) *GroupService {
	return &GroupService{
		store:     store,
		directory: directory,
		balances:  balances,
		gate:      &gate{store: store},
	}
}

// Create registers a new group with the creator as its first admin. Roster
// usernames are resolved up front so an unknown name fails the whole request.
func (s *GroupService) Create(ctx context.Context, creatorID string, req models.CreateGroupRequest) (*models.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, models.NewValidationError("group name is required")
	}
	if req.GroupBudget == nil {
		return nil, models.NewValidationError("group budget is required")
	}
	if *req.GroupBudget < 0 {
		return nil, models.NewValidationError("group budget cannot be negative")
	}

	memberIDs := []string{creatorID}
	seen := map[string]bool{creatorID: true}
	for _, username := range req.GroupMembers {
		u, err := s.directory.ByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		if seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		memberIDs = append(memberIDs, u.ID)
	}

	g := &models.Group{
		Name:        req.Name,
		CreatedBy:   creatorID,
		Budget:      *req.GroupBudget,
		Description: req.Description,
	}
	if err := s.store.CreateGroup(ctx, g, memberIDs); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	slog.Info("group created", "group_id", g.ID, "created_by", creatorID, "members", len(memberIDs))
	return g, nil
}

// ListForUser returns summaries of every group the user belongs to.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// Get returns the group after a membership check.
func (s *GroupService) Get(ctx context.Context, groupID, requesterID string) (*models.Group, error) {
	grp, _, err := s.gate.member(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	return grp, nil
}

// EditInfo updates name, budget and description. Admin only.
func (s *GroupService) EditInfo(ctx context.Context, groupID, requesterID string, req models.EditGroupInfoRequest) (*models.Group, error) {
	grp, _, err := s.gate.admin(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, models.NewValidationError("group name is required")
	}
	if req.GroupBudget < 0 {
		return nil, models.NewValidationError("group budget cannot be negative")
	}
	grp.Name = req.Name
	grp.Budget = req.GroupBudget
	grp.Description = req.Description
	ok, err := s.store.UpdateGroupInfo(ctx, grp)
	if err != nil {
		return nil, fmt.Errorf("update group: %w", err)
	}
	if !ok {
		return nil, models.NewNotFoundError("group not found")
	}
	return grp, nil
}

// Delete removes the group and all of its ledger history. Only the creator or
// an admin may do this.
func (s *GroupService) Delete(ctx context.Context, groupID, requesterID string) error {
	grp, gm, err := s.gate.member(ctx, groupID, requesterID)
	if err != nil {
		return err
	}
	if !gm.IsAdmin && grp.CreatedBy != requesterID {
		return models.NewAuthorizationError("admin access required")
	}
	ok, err := s.store.DeleteGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	if !ok {
		return models.NewNotFoundError("group not found")
	}
	slog.Info("group deleted", "group_id", groupID, "deleted_by", requesterID)
	return nil
}

// AddMember adds a user to the roster. Admin only; adding twice conflicts.
func (s *GroupService) AddMember(ctx context.Context, groupID, requesterID, username string) error {
	if _, _, err := s.gate.admin(ctx, groupID, requesterID); err != nil {
		return err
	}
	u, err := s.directory.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	existing, err := s.store.Membership(ctx, groupID, u.ID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if existing != nil {
		return models.NewConflictError("%s is already a member", username)
	}
	if err := s.store.AddMember(ctx, &models.GroupMember{GroupID: groupID, UserID: u.ID}); err != nil {
		return fmt.Errorf("add member: %w", err)
	}
	slog.Info("member added", "group_id", groupID, "user_id", u.ID, "added_by", requesterID)
	return nil
}

// RemoveMember takes a user off the roster. Refused while the member's net
// balance is nonzero, and for the last remaining admin.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, requesterID, username string) error {
	if _, _, err := s.gate.admin(ctx, groupID, requesterID); err != nil {
		return err
	}
	u, err := s.directory.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	return s.removeFromRoster(ctx, groupID, u.ID, requesterID)
}

// Leave removes the requester themselves, under the same balance and
// last-admin rules as an admin removal.
func (s *GroupService) Leave(ctx context.Context, groupID, requesterID string) error {
	if _, _, err := s.gate.member(ctx, groupID, requesterID); err != nil {
		return err
	}
	return s.removeFromRoster(ctx, groupID, requesterID, requesterID)
}

func (s *GroupService) removeFromRoster(ctx context.Context, groupID, targetID, requesterID string) error {
	gm, err := s.store.Membership(ctx, groupID, targetID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if gm == nil {
		return models.NewNotFoundError("membership not found")
	}

	positions, err := s.balances.positions(ctx, groupID)
	if err != nil {
		return err
	}
	if net := positions[targetID]; net != 0 {
		return models.NewConflictError("member has an unsettled balance of %s", net.String())
	}

	if gm.IsAdmin {
		admins, err := s.store.CountAdmins(ctx, groupID)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return models.NewConflictError("a group must retain at least one admin")
		}
	}

	ok, err := s.store.RemoveMember(ctx, groupID, targetID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if !ok {
		return models.NewNotFoundError("membership not found")
	}
	slog.Info("member removed", "group_id", groupID, "user_id", targetID, "removed_by", requesterID)
	return nil
}

// Promote grants the admin flag. Idempotent for existing admins.
func (s *GroupService) Promote(ctx context.Context, groupID, requesterID, username string) error {
	return s.setAdmin(ctx, groupID, requesterID, username, true)
}

// Demote clears the admin flag, refusing to leave the group without admins.
func (s *GroupService) Demote(ctx context.Context, groupID, requesterID, username string) error {
	return s.setAdmin(ctx, groupID, requesterID, username, false)
}

func (s *GroupService) setAdmin(ctx context.Context, groupID, requesterID, username string, isAdmin bool) error {
	if _, _, err := s.gate.admin(ctx, groupID, requesterID); err != nil {
		return err
	}
	u, err := s.directory.ByUsername(ctx, username)
	if err != nil {
		return err
	}
	gm, err := s.store.Membership(ctx, groupID, u.ID)
	if err != nil {
		return fmt.Errorf("load membership: %w", err)
	}
	if gm == nil {
		return models.NewNotFoundError("membership not found")
	}
	if !isAdmin && gm.IsAdmin {
		admins, err := s.store.CountAdmins(ctx, groupID)
		if err != nil {
			return fmt.Errorf("count admins: %w", err)
		}
		if admins <= 1 {
			return models.NewConflictError("a group must retain at least one admin")
		}
	}
	if _, err := s.store.SetAdmin(ctx, groupID, u.ID, isAdmin); err != nil {
		return fmt.Errorf("set admin: %w", err)
	}
	return nil
}

// Members lists the roster with each member's current net position.
func (s *GroupService) Members(ctx context.Context, groupID, requesterID string) ([]models.MemberBalance, error) {
	if _, _, err := s.gate.member(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	positions, err := s.balances.positions(ctx, groupID)
	if err != nil {
		return nil, err
	}
	out := make([]models.MemberBalance, 0, len(members))
	for _, m := range members {
		out = append(out, models.MemberBalance{
			UserID:   m.UserID,
			Username: m.Username,
			IsAdmin:  m.IsAdmin,
			Balance:  positions[m.UserID],
		})
	}
	return out, nil
}
