package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tallyhq/tally-api/models"
)

func TestCreateGroupResolvesRoster(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	f.seedUser(t, "bob")

	g, err := f.groups.Create(ctx, alice.ID, models.CreateGroupRequest{
		Name:         "ski weekend",
		GroupBudget:  money(120000),
		GroupMembers: []string{"bob", "bob", "alice"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	members, err := f.groups.Members(ctx, g.ID, alice.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2 (duplicates collapsed)", len(members))
	}
	for _, m := range members {
		wantAdmin := m.UserID == alice.ID
		if m.IsAdmin != wantAdmin {
			t.Errorf("member %s admin = %v, want %v", m.Username, m.IsAdmin, wantAdmin)
		}
	}
}

func TestCreateGroupRejectsUnknownUsername(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice")

	_, err := f.groups.Create(context.Background(), alice.ID, models.CreateGroupRequest{
		Name:         "trip",
		GroupBudget:  money(1000),
		GroupMembers: []string{"nobody"},
	})
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
}

func TestCreateGroupValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice")
	cases := []struct {
		name string
		req  models.CreateGroupRequest
	}{
		{"blank name", models.CreateGroupRequest{Name: "   ", GroupBudget: money(1000)}},
		{"missing budget", models.CreateGroupRequest{Name: "trip"}},
		{"negative budget", models.CreateGroupRequest{Name: "trip", GroupBudget: money(-1)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.groups.Create(context.Background(), alice.ID, tc.req)
			var ve *models.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
}

func TestEditInfoRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	bob, _ := f.directory.ByUsername(ctx, "bob")
	_, err := f.groups.EditInfo(ctx, g.ID, bob.ID, models.EditGroupInfoRequest{Name: "renamed"})
	var ae *models.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("non-admin edit: got %v, want AuthorizationError", err)
	}

	updated, err := f.groups.EditInfo(ctx, g.ID, alice.ID, models.EditGroupInfoRequest{Name: "renamed", GroupBudget: 9900})
	if err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	if updated.Name != "renamed" || updated.Budget != 9900 {
		t.Errorf("got %q/%d, want renamed/9900", updated.Name, updated.Budget)
	}
}

func TestGroupAccessForOutsider(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	mallory := f.seedUser(t, "mallory")
	g := f.seedGroup(t, alice)

	_, err := f.groups.Get(ctx, g.ID, mallory.ID)
	var ae *models.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("outsider get: got %v, want AuthorizationError", err)
	}

	_, err = f.groups.Get(ctx, "no-such-group", alice.ID)
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("missing group: got %v, want NotFoundError", err)
	}
}

func TestAddMemberTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	g := f.seedGroup(t, alice)

	if err := f.groups.AddMember(ctx, g.ID, alice.ID, "bob"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	err := f.groups.AddMember(ctx, g.ID, alice.ID, "bob")
	var ce *models.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("second add: got %v, want ConflictError", err)
	}
}

func TestRemoveMemberBlockedOnUnsettledBalance(t *testing.T) {
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

	err := f.groups.RemoveMember(ctx, g.ID, alice.ID, "bob")
	var ce *models.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("remove with debt: got %v, want ConflictError", err)
	}

	// Bob pays his share; removal now goes through.
	if _, err := f.settlements.SettleUp(ctx, g.ID, bob.ID, models.SettleUpRequest{
		FromUserID: bob.ID, ToUserID: alice.ID, Amount: 3000,
	}); err != nil {
		t.Fatalf("settle up: %v", err)
	}
	if err := f.groups.RemoveMember(ctx, g.ID, alice.ID, "bob"); err != nil {
		t.Fatalf("remove after settling: %v", err)
	}
}

func TestLastAdminProtection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	var ce *models.ConflictError
	if err := f.groups.Demote(ctx, g.ID, alice.ID, "alice"); !errors.As(err, &ce) {
		t.Fatalf("demote last admin: got %v, want ConflictError", err)
	}
	if err := f.groups.Leave(ctx, g.ID, alice.ID); !errors.As(err, &ce) {
		t.Fatalf("last admin leaving: got %v, want ConflictError", err)
	}

	// After promoting bob the original admin can step down.
	if err := f.groups.Promote(ctx, g.ID, alice.ID, "bob"); err != nil {
		t.Fatalf("promote: %v", err)
	}
	if err := f.groups.Demote(ctx, g.ID, alice.ID, "alice"); err != nil {
		t.Fatalf("demote after promote: %v", err)
	}
}

func TestLeaveGroup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	if err := f.groups.Leave(ctx, g.ID, bob.ID); err != nil {
		t.Fatalf("leave: %v", err)
	}
	members, err := f.groups.Members(ctx, g.ID, alice.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != alice.ID {
		t.Errorf("roster after leave = %+v, want only alice", members)
	}
}

func TestPromoteRequiresMembership(t *testing.T) {
	f := newFixture(t)
	alice := f.seedUser(t, "alice")
	f.seedUser(t, "carol")
	g := f.seedGroup(t, alice)

	err := f.groups.Promote(context.Background(), g.ID, alice.ID, "carol")
	var nf *models.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("promote outsider: got %v, want NotFoundError", err)
	}
}

func TestDeleteGroupRequiresAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	var ae *models.AuthorizationError
	if err := f.groups.Delete(ctx, g.ID, bob.ID); !errors.As(err, &ae) {
		t.Fatalf("non-admin delete: got %v, want AuthorizationError", err)
	}
	if err := f.groups.Delete(ctx, g.ID, alice.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	var nf *models.NotFoundError
	if _, err := f.groups.Get(ctx, g.ID, alice.ID); !errors.As(err, &nf) {
		t.Fatalf("get after delete: got %v, want NotFoundError", err)
	}
}

func TestMembersIncludesNetPositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.seedUser(t, "alice")
	bob := f.seedUser(t, "bob")
	g := f.seedGroup(t, alice, "bob")

	mustAddExpense(t, f, alice.ID, models.AddExpenseRequest{
		GroupID: g.ID, PaidBy: "alice", Amount: 5000,
		Shares: []models.ShareInput{
			{Username: "alice", AmountOwned: 2500},
			{Username: "bob", AmountOwned: 2500},
		},
	})

	members, err := f.groups.Members(ctx, g.ID, bob.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	want := map[string]models.Money{alice.ID: 2500, bob.ID: -2500}
	for _, m := range members {
		if m.Balance != want[m.UserID] {
			t.Errorf("%s balance = %d, want %d", m.Username, m.Balance, want[m.UserID])
		}
	}
}
