package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tallyhq/tally-api/calculator"
	"github.com/tallyhq/tally-api/models"
)

// CreateSettlement appends a settlement row. Settlements are never updated
// or deleted; balance reads net them against outstanding shares.
func (s *Store) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.SettledAt == 0 {
		settlement.SettledAt = time.Now().UnixMilli()
	}

	var key any
	if settlement.IdempotencyKey != "" {
		key = settlement.IdempotencyKey
	}

	_, err := s.db.ExecContext(ctx,
		s.q(`INSERT INTO settlements (id, group_id, from_user_id, to_user_id, amount, idempotency_key, settled_at)
		     VALUES (?, ?, ?, ?, ?, ?, ?)`),
		settlement.ID, settlement.GroupID, settlement.FromUserID, settlement.ToUserID,
		settlement.Amount, key, settlement.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("insert settlement: %w", err)
	}
	return nil
}

// SettlementByKey returns the settlement previously recorded under the given
// idempotency key within the group, or nil when the key is unused.
func (s *Store) SettlementByKey(ctx context.Context, groupID, key string) (*models.Settlement, error) {
	var m models.Settlement
	var storedKey sql.NullString
	err := s.db.QueryRowContext(ctx,
		s.q(`SELECT id, group_id, from_user_id, to_user_id, amount, idempotency_key, settled_at
		     FROM settlements WHERE group_id = ? AND idempotency_key = ?`),
		groupID, key,
	).Scan(&m.ID, &m.GroupID, &m.FromUserID, &m.ToUserID, &m.Amount, &storedKey, &m.SettledAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settlement by key: %w", err)
	}
	m.IdempotencyKey = storedKey.String
	return &m, nil
}

// ListSettlements returns the group's settlement history newest-first with
// both usernames resolved.
func (s *Store) ListSettlements(ctx context.Context, groupID string) ([]models.Settlement, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT st.id, st.group_id, st.from_user_id, st.to_user_id, st.amount, st.settled_at,
		            fu.username, tu.username
		     FROM settlements st
		     INNER JOIN users fu ON st.from_user_id = fu.id
		     INNER JOIN users tu ON st.to_user_id = tu.id
		     WHERE st.group_id = ?
		     ORDER BY st.settled_at DESC, st.id DESC`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list settlements: %w", err)
	}
	defer rows.Close()

	settlements := []models.Settlement{}
	for rows.Next() {
		var m models.Settlement
		err := rows.Scan(&m.ID, &m.GroupID, &m.FromUserID, &m.ToUserID, &m.Amount,
			&m.SettledAt, &m.FromUsername, &m.ToUsername)
		if err != nil {
			return nil, fmt.Errorf("scan settlement: %w", err)
		}
		settlements = append(settlements, m)
	}
	return settlements, rows.Err()
}

// Transfers returns the group's settlements as bare (from, to, amount)
// triples for balance computation.
func (s *Store) Transfers(ctx context.Context, groupID string) ([]calculator.Transfer, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT from_user_id, to_user_id, amount FROM settlements WHERE group_id = ?`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []calculator.Transfer
	for rows.Next() {
		var t calculator.Transfer
		if err := rows.Scan(&t.FromID, &t.ToID, &t.Amount); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}
