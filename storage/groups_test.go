package storage

import (
	"context"
	"testing"

	"github.com/tallyhq/tally-api/models"
)

func TestCreateGroupMembership(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)

	if group.ID == "" {
		t.Fatal("expected generated group id")
	}

	t.Run("creator is admin", func(t *testing.T) {
		gm, err := store.Membership(ctx, group.ID, alice.ID)
		if err != nil {
			t.Fatalf("membership: %v", err)
		}
		if gm == nil {
			t.Fatal("creator is not a member")
		}
		if !gm.IsAdmin {
			t.Error("creator must hold the admin flag")
		}
	})

	t.Run("roster member is not admin", func(t *testing.T) {
		gm, err := store.Membership(ctx, group.ID, bob.ID)
		if err != nil {
			t.Fatalf("membership: %v", err)
		}
		if gm == nil {
			t.Fatal("bob is not a member")
		}
		if gm.IsAdmin {
			t.Error("roster member must not be admin")
		}
	})

	t.Run("outsider has no membership", func(t *testing.T) {
		carol := seedUser(t, store, "carol")
		gm, err := store.Membership(ctx, group.ID, carol.ID)
		if err != nil {
			t.Fatalf("membership: %v", err)
		}
		if gm != nil {
			t.Error("expected nil membership for outsider")
		}
	})
}

func TestMemberLifecycle(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice)

	if err := store.AddMember(ctx, &models.GroupMember{GroupID: group.ID, UserID: bob.ID}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	members, err := store.ListMembers(ctx, group.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("got %d members, want 2", len(members))
	}
	// Ordered by username.
	if members[0].Username != "alice" || members[1].Username != "bob" {
		t.Errorf("unexpected order: %s, %s", members[0].Username, members[1].Username)
	}

	t.Run("promote and count admins", func(t *testing.T) {
		ok, err := store.SetAdmin(ctx, group.ID, bob.ID, true)
		if err != nil || !ok {
			t.Fatalf("set admin: ok=%v err=%v", ok, err)
		}
		n, err := store.CountAdmins(ctx, group.ID)
		if err != nil {
			t.Fatalf("count admins: %v", err)
		}
		if n != 2 {
			t.Errorf("admins = %d, want 2", n)
		}
	})

	t.Run("remove member", func(t *testing.T) {
		ok, err := store.RemoveMember(ctx, group.ID, bob.ID)
		if err != nil || !ok {
			t.Fatalf("remove member: ok=%v err=%v", ok, err)
		}
		ok, err = store.RemoveMember(ctx, group.ID, bob.ID)
		if err != nil {
			t.Fatalf("second remove: %v", err)
		}
		if ok {
			t.Error("second remove reported a deleted row")
		}
	})
}

func TestListGroupsForUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)

	err := store.CreateExpense(ctx,
		&models.Expense{GroupID: group.ID, PaidBy: alice.ID, CreatedBy: alice.ID, Amount: 9000},
		[]models.ExpenseShare{
			{UserID: alice.ID, Amount: 4500},
			{UserID: bob.ID, Amount: 4500},
		})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	summaries, err := store.ListGroupsForUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list groups: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("got %d groups, want 1", len(summaries))
	}
	if summaries[0].MemberCount != 2 {
		t.Errorf("member_count = %d, want 2", summaries[0].MemberCount)
	}
	if summaries[0].Spent != 9000 {
		t.Errorf("spent = %v, want 9000", summaries[0].Spent)
	}

	outsider := seedUser(t, store, "carol")
	summaries, err = store.ListGroupsForUser(ctx, outsider.ID)
	if err != nil {
		t.Fatalf("list groups for outsider: %v", err)
	}
	if len(summaries) != 0 {
		t.Errorf("outsider sees %d groups, want 0", len(summaries))
	}
}

func TestDeleteGroupCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)

	err := store.CreateExpense(ctx,
		&models.Expense{GroupID: group.ID, PaidBy: alice.ID, CreatedBy: alice.ID, Amount: 3000},
		[]models.ExpenseShare{{UserID: bob.ID, Amount: 3000}})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	err = store.CreateSettlement(ctx, &models.Settlement{
		GroupID: group.ID, FromUserID: bob.ID, ToUserID: alice.ID, Amount: 1000,
	})
	if err != nil {
		t.Fatalf("create settlement: %v", err)
	}

	ok, err := store.DeleteGroup(ctx, group.ID)
	if err != nil || !ok {
		t.Fatalf("delete group: ok=%v err=%v", ok, err)
	}

	if g, _ := store.GroupByID(ctx, group.ID); g != nil {
		t.Error("group row survived deletion")
	}
	expenses, err := store.ListExpenses(ctx, group.ID, 10, 0)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 0 {
		t.Error("expense rows survived group deletion")
	}
	settlements, err := store.ListSettlements(ctx, group.ID)
	if err != nil {
		t.Fatalf("list settlements: %v", err)
	}
	if len(settlements) != 0 {
		t.Error("settlement rows survived group deletion")
	}
}

func TestUpdateGroupInfo(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	group := seedGroup(t, store, alice)

	group.Name = "ski trip"
	group.Budget = 120000
	group.Description = "january"
	ok, err := store.UpdateGroupInfo(ctx, group)
	if err != nil || !ok {
		t.Fatalf("update group: ok=%v err=%v", ok, err)
	}

	got, err := store.GroupByID(ctx, group.ID)
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if got.Name != "ski trip" || got.Budget != 120000 || got.Description != "january" {
		t.Errorf("update not persisted: %+v", got)
	}

	ok, err = store.UpdateGroupInfo(ctx, &models.Group{ID: "missing"})
	if err != nil {
		t.Fatalf("update missing group: %v", err)
	}
	if ok {
		t.Error("update of missing group reported success")
	}
}
