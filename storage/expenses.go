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

// CreateExpense inserts the expense row and all of its shares in one
// transaction. A failure on any share rolls back the whole write, so no
// expense is ever visible with a partial split.
func (s *Store) CreateExpense(ctx context.Context, e *models.Expense, shares []models.ExpenseShare) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UnixMilli()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO group_expenses (id, group_id, paid_by, created_by, amount, category, description, created_at)
			     VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			e.ID, e.GroupID, e.PaidBy, e.CreatedBy, e.Amount, e.Category, e.Description, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert expense: %w", err)
		}
		return insertShares(ctx, s, tx, e.ID, shares)
	})
}

func insertShares(ctx context.Context, s *Store, tx *sql.Tx, expenseID string, shares []models.ExpenseShare) error {
	for i := range shares {
		share := &shares[i]
		if share.ID == "" {
			share.ID = uuid.New().String()
		}
		share.ExpenseID = expenseID
		_, err := tx.ExecContext(ctx,
			s.q(`INSERT INTO expense_shares (id, expense_id, user_id, amount) VALUES (?, ?, ?, ?)`),
			share.ID, share.ExpenseID, share.UserID, share.Amount,
		)
		if err != nil {
			return fmt.Errorf("insert share: %w", err)
		}
	}
	return nil
}

const expenseCols = `e.id, e.group_id, e.paid_by, e.created_by, e.amount, e.category, e.description, e.created_at, u.username`

func scanExpense(scanner interface{ Scan(...any) error }) (*models.Expense, error) {
	var e models.Expense
	err := scanner.Scan(&e.ID, &e.GroupID, &e.PaidBy, &e.CreatedBy, &e.Amount,
		&e.Category, &e.Description, &e.CreatedAt, &e.PaidByName)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ExpenseByID returns the expense with its payer's username resolved, or nil
// when no such expense exists.
func (s *Store) ExpenseByID(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		s.q(`SELECT `+expenseCols+`
		     FROM group_expenses e
		     INNER JOIN users u ON e.paid_by = u.id
		     WHERE e.id = ?`),
		expenseID,
	)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// SharesByExpense returns the expense's shares with usernames, ordered by
// username.
func (s *Store) SharesByExpense(ctx context.Context, expenseID string) ([]models.ExpenseShare, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT es.id, es.expense_id, es.user_id, es.amount, u.username
		     FROM expense_shares es
		     INNER JOIN users u ON es.user_id = u.id
		     WHERE es.expense_id = ?
		     ORDER BY u.username`),
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	shares := []models.ExpenseShare{}
	for rows.Next() {
		var share models.ExpenseShare
		if err := rows.Scan(&share.ID, &share.ExpenseID, &share.UserID, &share.Amount, &share.Username); err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}
		shares = append(shares, share)
	}
	return shares, rows.Err()
}

// UpdateExpense replaces the expense's scalar fields and swaps the whole
// share set, all in one transaction: a reader never observes a half-updated
// split.
func (s *Store) UpdateExpense(ctx context.Context, e *models.Expense, shares []models.ExpenseShare) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			s.q(`UPDATE group_expenses SET amount = ?, category = ?, description = ? WHERE id = ? AND group_id = ?`),
			e.Amount, e.Category, e.Description, e.ID, e.GroupID,
		)
		if err != nil {
			return fmt.Errorf("update expense: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update expense rows: %w", err)
		}
		if n == 0 {
			return models.NewNotFoundError("expense not found")
		}

		if _, err := tx.ExecContext(ctx, s.q(`DELETE FROM expense_shares WHERE expense_id = ?`), e.ID); err != nil {
			return fmt.Errorf("delete old shares: %w", err)
		}
		return insertShares(ctx, s, tx, e.ID, shares)
	})
}

// DeleteExpense removes the expense and its shares. Returns false when the
// expense does not exist within the given group.
func (s *Store) DeleteExpense(ctx context.Context, groupID, expenseID string) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.q(`DELETE FROM expense_shares WHERE expense_id IN (SELECT id FROM group_expenses WHERE id = ? AND group_id = ?)`),
			expenseID, groupID,
		)
		if err != nil {
			return fmt.Errorf("delete shares: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			s.q(`DELETE FROM group_expenses WHERE id = ? AND group_id = ?`),
			expenseID, groupID,
		)
		if err != nil {
			return fmt.Errorf("delete expense: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete expense rows: %w", err)
		}
		deleted = n > 0
		return nil
	})
	return deleted, err
}

// ListExpenses returns the group's expenses newest-first with payer
// usernames resolved, paginated by limit and offset.
func (s *Store) ListExpenses(ctx context.Context, groupID string, limit, offset int) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT `+expenseCols+`
		     FROM group_expenses e
		     INNER JOIN users u ON e.paid_by = u.id
		     WHERE e.group_id = ?
		     ORDER BY e.created_at DESC, e.id DESC
		     LIMIT ? OFFSET ?`),
		groupID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	return expenses, rows.Err()
}

// ShareRows returns every (payer, debtor, amount) triple in the group, the
// raw input of balance computation.
func (s *Store) ShareRows(ctx context.Context, groupID string) ([]calculator.ShareRow, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q(`SELECT e.paid_by, es.user_id, es.amount
		     FROM expense_shares es
		     INNER JOIN group_expenses e ON es.expense_id = e.id
		     WHERE e.group_id = ?`),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("list share rows: %w", err)
	}
	defer rows.Close()

	var shareRows []calculator.ShareRow
	for rows.Next() {
		var r calculator.ShareRow
		if err := rows.Scan(&r.PayerID, &r.DebtorID, &r.Amount); err != nil {
			return nil, fmt.Errorf("scan share row: %w", err)
		}
		shareRows = append(shareRows, r)
	}
	return shareRows, rows.Err()
}
