package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/tallyhq/tally-api/models"
	"github.com/tallyhq/tally-api/storage"
)

// fixture wires the full service graph against a throwaway sqlite store.
type fixture struct {
	store       *storage.Store
	directory   Directory
	groups      *GroupService
	expenses    *ExpenseService
	balances    *BalanceService
	settlements *SettlementService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := storage.Open(storage.Config{SQLitePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	directory := NewDirectory(store)
	balances := NewBalanceService(store)
	return &fixture{
		store:       store,
		directory:   directory,
		groups:      NewGroupService(store, directory, balances),
		expenses:    NewExpenseService(store, directory),
		balances:    balances,
		settlements: NewSettlementService(store, balances),
	}
}

func (f *fixture) seedUser(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Name: username}
	if err := f.store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

// money returns a pointer for request literals.
func money(m models.Money) *models.Money { return &m }

// seedGroup creates a group through the service so the roster rules apply.
func (f *fixture) seedGroup(t *testing.T, creator *models.User, memberNames ...string) *models.Group {
	t.Helper()
	g, err := f.groups.Create(context.Background(), creator.ID, models.CreateGroupRequest{
		Name:         "trip",
		GroupBudget:  money(50000),
		GroupMembers: memberNames,
	})
	if err != nil {
		t.Fatalf("seed group: %v", err)
	}
	return g
}

func mustAddExpense(t *testing.T, f *fixture, creatorID string, req models.AddExpenseRequest) *models.ExpenseDetail {
	t.Helper()
	detail, err := f.expenses.Add(context.Background(), creatorID, req)
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	return detail
}
