package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tallyhq/tally-api/calculator"
	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxPage         = 1_000_000
)

// ExpenseService owns the expense ledger. The one rule everything here bends
// around: the shares of an expense sum exactly to its amount, always.
type ExpenseService struct {
	store     *storage.Store
	directory Directory
	gate      *gate
}

func NewExpenseService(store *storage.Store, directory Directory) *ExpenseService {
	return &ExpenseService{store: store, directory: directory, gate: &gate{store: store}}
}

// Add records an expense with its split. Usernames in the payload are
// resolved before anything is written; an empty share list means an equal
// split across the current roster.
func (s *ExpenseService) Add(ctx context.Context, creatorID string, req models.AddExpenseRequest) (*models.ExpenseDetail, error) {
	if strings.TrimSpace(req.GroupID) == "" {
		return nil, models.NewValidationError("groupId is required")
	}
	if req.Amount <= 0 {
		return nil, models.NewValidationError("amount must be positive")
	}
	if strings.TrimSpace(req.PaidBy) == "" {
		return nil, models.NewValidationError("paidBy is required")
	}
	if _, _, err := s.gate.member(ctx, req.GroupID, creatorID); err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, req.GroupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	roster := make(map[string]models.GroupMember, len(members))
	for _, m := range members {
		roster[m.UserID] = m
	}

	payer, err := s.directory.ByUsername(ctx, req.PaidBy)
	if err != nil {
		return nil, err
	}
	if _, ok := roster[payer.ID]; !ok {
		return nil, models.NewValidationError("payer %s is not a group member", req.PaidBy)
	}

	shares, err := s.buildShares(ctx, req.Amount, req.Shares, members, roster)
	if err != nil {
		return nil, err
	}

	e := &models.Expense{
		GroupID:     req.GroupID,
		PaidBy:      payer.ID,
		CreatedBy:   creatorID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		PaidByName:  payer.Username,
	}
	if err := s.store.CreateExpense(ctx, e, shares); err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	slog.Info("expense added",
		"group_id", e.GroupID, "expense_id", e.ID,
		"amount", e.Amount.String(), "paid_by", payer.Username, "shares", len(shares))
	return &models.ExpenseDetail{Expense: *e, Shares: shares}, nil
}

// buildShares turns the client split into validated share rows, or derives an
// equal split when the client sent none. Equal-split remainder cents go to
// the earliest members in username order; a member whose derived share rounds
// to zero gets no share row at all, the remaining rows still sum to the total.
func (s *ExpenseService) buildShares(ctx context.Context, total models.Money, inputs []models.ShareInput, members []models.GroupMember, roster map[string]models.GroupMember) ([]models.ExpenseShare, error) {
	if len(inputs) == 0 {
		amounts := calculator.EqualShares(total, len(members))
		shares := make([]models.ExpenseShare, 0, len(members))
		for i, m := range members {
			if amounts[i] == 0 {
				continue
			}
			shares = append(shares, models.ExpenseShare{UserID: m.UserID, Amount: amounts[i], Username: m.Username})
		}
		return shares, nil
	}

	shares := make([]models.ExpenseShare, 0, len(inputs))
	seen := make(map[string]bool, len(inputs))
	var sum models.Money
	for _, in := range inputs {
		if in.AmountOwned <= 0 {
			return nil, models.NewValidationError("share for %s must be positive", in.Username)
		}
		u, err := s.directory.ByUsername(ctx, in.Username)
		if err != nil {
			return nil, err
		}
		if _, ok := roster[u.ID]; !ok {
			return nil, models.NewValidationError("%s is not a group member", in.Username)
		}
		if seen[u.ID] {
			return nil, models.NewValidationError("duplicate share for %s", in.Username)
		}
		seen[u.ID] = true
		sum += in.AmountOwned
		shares = append(shares, models.ExpenseShare{UserID: u.ID, Amount: in.AmountOwned, Username: u.Username})
	}
	if sum != total {
		return nil, models.NewValidationError("split does not reconcile: shares sum to %s, expense is %s", sum.String(), total.String())
	}
	return shares, nil
}

// loadForWrite fetches the expense and checks the requester may modify it.
// Only the member who logged the expense or a group admin qualifies.
func (s *ExpenseService) loadForWrite(ctx context.Context, groupID, expenseID, requesterID string) (*models.Expense, error) {
	_, gm, err := s.gate.member(ctx, groupID, requesterID)
	if err != nil {
		return nil, err
	}
	e, err := s.store.ExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load expense: %w", err)
	}
	if e == nil || e.GroupID != groupID {
		return nil, models.NewNotFoundError("expense not found")
	}
	if e.CreatedBy != requesterID && !gm.IsAdmin {
		return nil, models.NewAuthorizationError("only the expense creator or a group admin can modify it")
	}
	return e, nil
}

// Edit replaces an expense's scalar fields and its entire split. The payer
// cannot change; delete and re-add to move an expense to another payer.
func (s *ExpenseService) Edit(ctx context.Context, groupID, expenseID, requesterID string, req models.EditExpenseRequest) (*models.ExpenseDetail, error) {
	if req.Amount <= 0 {
		return nil, models.NewValidationError("amount must be positive")
	}
	e, err := s.loadForWrite(ctx, groupID, expenseID, requesterID)
	if err != nil {
		return nil, err
	}

	members, err := s.store.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	roster := make(map[string]models.GroupMember, len(members))
	for _, m := range members {
		roster[m.UserID] = m
	}
	shares, err := s.buildShares(ctx, req.Amount, req.Shares, members, roster)
	if err != nil {
		return nil, err
	}

	e.Amount = req.Amount
	e.Category = req.Category
	e.Description = req.Description
	if err := s.store.UpdateExpense(ctx, e, shares); err != nil {
		return nil, err
	}
	slog.Info("expense edited", "group_id", groupID, "expense_id", expenseID, "amount", e.Amount.String())
	return &models.ExpenseDetail{Expense: *e, Shares: shares}, nil
}

// Delete removes the expense and its shares.
func (s *ExpenseService) Delete(ctx context.Context, groupID, expenseID, requesterID string) error {
	if _, err := s.loadForWrite(ctx, groupID, expenseID, requesterID); err != nil {
		return err
	}
	ok, err := s.store.DeleteExpense(ctx, groupID, expenseID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !ok {
		return models.NewNotFoundError("expense not found")
	}
	slog.Info("expense deleted", "group_id", groupID, "expense_id", expenseID, "deleted_by", requesterID)
	return nil
}

// List returns a page of the group's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, groupID, requesterID string, page, limit int) ([]models.Expense, error) {
	if _, _, err := s.gate.member(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	// Keeps the offset arithmetic below from overflowing on absurd pages.
	if page > maxPage {
		page = maxPage
	}
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.store.ListExpenses(ctx, groupID, limit, (page-1)*limit)
}

// Detail returns one expense together with its share list.
func (s *ExpenseService) Detail(ctx context.Context, groupID, expenseID, requesterID string) (*models.ExpenseDetail, error) {
	if _, _, err := s.gate.member(ctx, groupID, requesterID); err != nil {
		return nil, err
	}
	e, err := s.store.ExpenseByID(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load expense: %w", err)
	}
	if e == nil || e.GroupID != groupID {
		return nil, models.NewNotFoundError("expense not found")
	}
	shares, err := s.store.SharesByExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("load shares: %w", err)
	}
	return &models.ExpenseDetail{Expense: *e, Shares: shares}, nil
}
