package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tallyhq/tally-api/models"
)

func TestSettleUpValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	outsider := f.seedUser(t, "outsider")
	g := f.seedGroup(t, alice, "bob")

	cases := []struct {
		name string
		req  models.SettleUpRequest
	}{
		{"zero amount", models.SettleUpRequest{FromUserID: bob.ID, ToUserID: alice.ID}},
		{"missing parties", models.SettleUpRequest{Amount: 100}},
		{"self settlement", models.SettleUpRequest{FromUserID: bob.ID, ToUserID: bob.ID, Amount: 100}},
		{"outsider party", models.SettleUpRequest{FromUserID: outsider.ID, ToUserID: alice.ID, Amount: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.settlements.SettleUp(ctx, g.ID, alice.ID, tc.req)
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestSettleUpIdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	mustAddExpense(t, f, alice.ID, models.AddExpenseRequest{
		GroupID: g.ID, PaidBy: "alice", Amount: 6000,
		Shares: []models.ShareInput{
			{Username: "alice", AmountOwned: 3000},
			{Username: "bob", AmountOwned: 3000},
		},
	})

	req := models.SettleUpRequest{
		FromUserID: bob.ID, ToUserID: alice.ID, Amount: 3000, IdempotencyKey: "txn-42",
	}
	first, err := f.settlements.SettleUp(ctx, g.ID, bob.ID, req)
	if err != nil {
		t.Fatalf("first settle: %v", err)
	}
	second, err := f.settlements.SettleUp(ctx, g.ID, bob.ID, req)
	if err != nil {
		t.Fatalf("replayed settle: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("replay created a new settlement: %s vs %s", second.ID, first.ID)
	}

	history, err := f.settlements.List(ctx, g.ID, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}

	// Only the balance effect of the single recorded settlement applies.
	balances, err := f.balances.BalancesFor(ctx, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(balances.IOwe) != 0 {
		t.Errorf("bob still owes %+v after settling", balances.IOwe)
	}
}

func TestSettleUpOverpaymentFlipsDirection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	mustAddExpense(t, f, alice.ID, models.AddExpenseRequest{
		GroupID: g.ID, PaidBy: "alice", Amount: 2000,
		Shares: []models.ShareInput{
			{Username: "alice", AmountOwned: 1000},
			{Username: "bob", AmountOwned: 1000},
		},
	})

	// Bob owes 10.00 but pays 15.00.
	if _, err := f.settlements.SettleUp(ctx, g.ID, bob.ID, models.SettleUpRequest{
		FromUserID: bob.ID, ToUserID: alice.ID, Amount: 1500,
	}); err != nil {
		t.Fatalf("overpay: %v", err)
	}

	balances, err := f.balances.BalancesFor(ctx, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(balances.OwesMe) != 1 || balances.OwesMe[0].UserID != alice.ID || balances.OwesMe[0].Amount != 500 {
		t.Fatalf("after overpay = %+v, want alice owes bob 500", balances.OwesMe)
	}
}

func TestSettlementHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	for _, amount := range []models.Money{100, 200, 300} {
		if _, err := f.settlements.SettleUp(ctx, g.ID, bob.ID, models.SettleUpRequest{
			FromUserID: bob.ID, ToUserID: alice.ID, Amount: amount,
		}); err != nil {
			t.Fatalf("settle %d: %v", amount, err)
		}
	}

	history, err := f.settlements.List(ctx, g.ID, alice.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}
	if history[0].FromUsername != "bob" || history[0].ToUsername != "alice" {
		t.Errorf("usernames = %s/%s, want bob/alice", history[0].FromUsername, history[0].ToUsername)
	}
}
