package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-api/models"
)

const groupCols = `id, name, created_by, group_budget, description, created_at, updated_at`

func scanGroup(scanner interface{ Scan(...any) error }) (*models.Group, error) {
	var g models.Group
	err := scanner.Scan(&g.ID, &g.Name, &g.CreatedBy, &g.Budget, &g.Description, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGroup inserts the group row and one membership row per member id in
// a single transaction. The creator's row carries the admin flag.
func (s *Store) CreateGroup(ctx context.Context, g *models.Group, memberIDs []string) error {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	now := time.Now().UnixMilli()
	if g.CreatedAt == 0 {
		g.CreatedAt = now
	}
	g.UpdatedAt = g.CreatedAt

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO groups (id, name, created_by, group_budget, description, created_at, updated_at)
			     VALUES (?, ?, ?, ?, ?, ?, ?)`),
			g.ID, g.Name, g.CreatedBy, g.Budget, g.Description, g.CreatedAt, g.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert group: %w", err)
		}

		for _, memberID := range memberIDs {
			_, err := tx.ExecContext(ctx,
				s.q(`INSERT INTO group_members (group_id, user_id, is_admin, joined_at) VALUES (?, ?, ?, ?)`),
				g.ID, memberID, memberID == g.CreatedBy, now,
			)
			if err != nil {
				return fmt.Errorf("insert group member: %w", err)
			}
		}
		return nil
	})
}

// GroupByID returns the group or nil when no such group exists.
func (s *Store) GroupByID(ctx context.Context, id string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+groupCols+` FROM groups WHERE id = ?`), id)
	g, err := scanGroup(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// UpdateGroupInfo replaces the group's metadata. Returns false when the
// group does not exist.
func (s *Store) UpdateGroupInfo(ctx context.Context, g *models.Group) (bool, error) {
	g.UpdatedAt = time.Now().UnixMilli()
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE groups SET name = ?, group_budget = ?, description = ?, updated_at = ? WHERE id = ?`),
		g.Name, g.Budget, g.Description, g.UpdatedAt, g.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update group: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update group rows: %w", err)
	}
	return n > 0, nil
}

// DeleteGroup removes the group and everything hanging off it in one
// transaction: shares, expenses, settlements, memberships, then the group.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		steps := []string{
			`DELETE FROM expense_shares WHERE expense_id IN (SELECT id FROM group_expenses WHERE group_id = ?)`,
			`DELETE FROM group_expenses WHERE group_id = ?`,
			`DELETE FROM settlements WHERE group_id = ?`,
			`DELETE FROM group_members WHERE group_id = ?`,
		}
		for _, stmt := range steps {
			if _, err := tx.ExecContext(ctx, s.q(stmt), groupID); err != nil {
				return fmt.Errorf("cascade delete group: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, s.q(`DELETE FROM groups WHERE id = ?`), groupID)
		if err != nil {
			return fmt.Errorf("delete group: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete group rows: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// ListGroupsForUser returns every group the user belongs to, with the
// member count and total spent the group-list screen shows.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]models.GroupSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT g.id, g.name, g.created_by, g.group_budget, g.description, g.created_at, g.updated_at,
		            (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id),
		            COALESCE((SELECT SUM(e.amount) FROM group_expenses e WHERE e.group_id = g.id), 0)
		     FROM groups g
		     INNER JOIN group_members gm ON g.id = gm.group_id
		     WHERE gm.user_id = ?
		     ORDER BY g.created_at DESC, g.id`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups for user: %w", err)
	}
	defer rows.Close()

	summaries := []models.GroupSummary{}
	for rows.Next() {
		var gs models.GroupSummary
		err := rows.Scan(&gs.ID, &gs.Name, &gs.CreatedBy, &gs.Budget, &gs.Description,
			&gs.CreatedAt, &gs.UpdatedAt, &gs.MemberCount, &gs.Spent)
		if err != nil {
			return nil, fmt.Errorf("scan group summary: %w", err)
		}
		summaries = append(summaries, gs)
	}
	return summaries, rows.Err()
}

// Membership returns the (group, user) row or nil when the user does not
// belong to the group. This backs the authorization gate.
func (s *Store) Membership(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	var gm models.GroupMember
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT group_id, user_id, is_admin, joined_at FROM group_members WHERE group_id = ? AND user_id = ?`),
		groupID, userID,
	).Scan(&gm.GroupID, &gm.UserID, &gm.IsAdmin, &gm.JoinedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get membership: %w", err)
	}
	return &gm, nil
}

// AddMember inserts a membership row.
func (s *Store) AddMember(ctx context.Context, gm *models.GroupMember) error {
	if gm.JoinedAt == 0 {
		gm.JoinedAt = time.Now().UnixMilli()
	}
	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO group_members (group_id, user_id, is_admin, joined_at) VALUES (?, ?, ?, ?)`),
		gm.GroupID, gm.UserID, gm.IsAdmin, gm.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// RemoveMember deletes a membership row. Returns false when no such row
// existed. Historical expense shares are deliberately left untouched.
func (s *Store) RemoveMember(ctx context.Context, groupID, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.q(`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`),
		groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete member rows: %w", err)
	}
	return n > 0, nil
}

// SetAdmin flips the admin flag on a membership row. Returns false when the
// membership does not exist.
func (s *Store) SetAdmin(ctx context.Context, groupID, userID string, isAdmin bool) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		s.q(`UPDATE group_members SET is_admin = ? WHERE group_id = ? AND user_id = ?`),
		isAdmin, groupID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("set admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set admin rows: %w", err)
	}
	return n > 0, nil
}

// ListMembers returns the group's members with usernames, ordered by
// username so responses and equal-split remainder assignment are stable.
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT gm.group_id, gm.user_id, gm.is_admin, gm.joined_at, u.username
		     FROM group_members gm
		     INNER JOIN users u ON gm.user_id = u.id
		     WHERE gm.group_id = ?
		     ORDER BY u.username`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.GroupMember{}
	for rows.Next() {
		var gm models.GroupMember
		if err := rows.Scan(&gm.GroupID, &gm.UserID, &gm.IsAdmin, &gm.JoinedAt, &gm.Username); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, gm)
	}
	return members, rows.Err()
}

// CountAdmins returns how many members of the group hold the admin flag.
func (s *Store) CountAdmins(ctx context.Context, groupID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND is_admin = ?`),
		groupID, true,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}
