package services

import (
	"context"
	"fmt"

	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

// gate enforces the membership and admin checks that sit in front of every
// group-scoped operation. A missing group is a NotFoundError so callers do
// not learn whether a group exists from a 403.
type gate struct {
	store *storage.Store
}

// member verifies the group exists and the requester belongs to it, returning
// the group and the requester's membership row.
func (g *gate) member(ctx context.Context, groupID, requesterID string) (*models.Group, *models.GroupMember, error) {
	grp, err := g.store.GroupByID(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("load group: %w", err)
	}
	if grp == nil {
		return nil, nil, models.NewNotFoundError("group not found")
	}
	gm, err := g.store.Membership(ctx, groupID, requesterID)
	if err != nil {
		return nil, nil, fmt.Errorf("load membership: %w", err)
	}
	if gm == nil {
		return nil, nil, models.NewAuthorizationError("not a member of this group")
	}
	return grp, gm, nil
}

// admin is member plus the is_admin flag.
func (g *gate) admin(ctx context.Context, groupID, requesterID string) (*models.Group, *models.GroupMember, error) {
	grp, gm, err := g.member(ctx, groupID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	if !gm.IsAdmin {
		return nil, nil, models.NewAuthorizationError("admin access required")
	}
	return grp, gm, nil
}
