package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hisaab-app/hisaab/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "hisaab-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Users: []models.User{
			{ID: "u1", Name: "Rajesh Sharma", Email: "rajesh@example.com", Avatar: "https://example.com/a1.png", PasswordHash: "hash1", CreatedAt: 1700000000},
			{ID: "u2", Name: "Priya Patel", Email: "priya@example.com", PasswordHash: "hash2", CreatedAt: 1700000001},
			{ID: "u3", Name: "Amit Kumar", Email: "amit@example.com", PasswordHash: "hash3", CreatedAt: 1700000002},
		},
		Groups: []models.Group{
			{ID: "g1", Name: "Parivar", Description: "Family expenses", LeaderID: "u1",
				MemberIDs: []string{"u1", "u2", "u3"}, Color: "blue", Icon: "home", CreatedAt: 1700000010},
			{ID: "g2", Name: "Dost Log", Description: "Weekend trips", LeaderID: "u2",
				MemberIDs: []string{"u2", "u3"}, Color: "green", Icon: "users", CreatedAt: 1700000011},
		},
		Expenses: []models.Expense{
			{ID: "e1", GroupID: "g1", Title: "Grocery from Big Bazaar", Amount: 3750.50,
				Category: models.CategoryFood, PaidBy: "u1", Date: 1700000020,
				SplitBetween: []string{"u1", "u2", "u3"}, Notes: "Weekly groceries"},
			{ID: "e2", GroupID: "g2", Title: "PVR Cinemas movie", Amount: 1800,
				Category: models.CategoryEntertainment, PaidBy: "u2", Date: 1700000021,
				SplitBetween: []string{"u2", "u3"}, Receipt: "receipts/e2.jpg"},
		},
		ActiveGroupID: "g1",
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := testSnapshot()
	if err := store.SaveSnapshot(ctx, want); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	got, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}

	if len(got.Users) != len(want.Users) {
		t.Fatalf("users count = %d, want %d", len(got.Users), len(want.Users))
	}
	for i, u := range want.Users {
		if got.Users[i] != u {
			t.Errorf("user %d = %+v, want %+v", i, got.Users[i], u)
		}
	}

	if len(got.Groups) != len(want.Groups) {
		t.Fatalf("groups count = %d, want %d", len(got.Groups), len(want.Groups))
	}
	for i, g := range want.Groups {
		gotG := got.Groups[i]
		if gotG.ID != g.ID || gotG.Name != g.Name || gotG.Description != g.Description ||
			gotG.LeaderID != g.LeaderID || gotG.Color != g.Color || gotG.Icon != g.Icon ||
			gotG.CreatedAt != g.CreatedAt {
			t.Errorf("group %d = %+v, want %+v", i, gotG, g)
		}
		if len(gotG.MemberIDs) != len(g.MemberIDs) {
			t.Fatalf("group %s members = %v, want %v", g.ID, gotG.MemberIDs, g.MemberIDs)
		}
		for j, id := range g.MemberIDs {
			if gotG.MemberIDs[j] != id {
				t.Errorf("group %s member order broken: %v, want %v", g.ID, gotG.MemberIDs, g.MemberIDs)
				break
			}
		}
	}

	if len(got.Expenses) != len(want.Expenses) {
		t.Fatalf("expenses count = %d, want %d", len(got.Expenses), len(want.Expenses))
	}
	for i, e := range want.Expenses {
		gotE := got.Expenses[i]
		if gotE.ID != e.ID || gotE.GroupID != e.GroupID || gotE.Title != e.Title ||
			gotE.Amount != e.Amount || gotE.Category != e.Category || gotE.PaidBy != e.PaidBy ||
			gotE.Date != e.Date || gotE.Notes != e.Notes || gotE.Receipt != e.Receipt {
			t.Errorf("expense %d = %+v, want %+v", i, gotE, e)
		}
		for j, id := range e.SplitBetween {
			if gotE.SplitBetween[j] != id {
				t.Errorf("expense %s split order broken: %v, want %v", e.ID, gotE.SplitBetween, e.SplitBetween)
				break
			}
		}
	}

	if got.ActiveGroupID != want.ActiveGroupID {
		t.Errorf("active group = %q, want %q", got.ActiveGroupID, want.ActiveGroupID)
	}
}

func TestSaveSnapshotReplacesPreviousState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// A smaller snapshot must fully supersede the earlier one.
	smaller := &models.Snapshot{
		Users: []models.User{
			{ID: "u1", Name: "Rajesh Sharma", Email: "rajesh@example.com", PasswordHash: "hash1", CreatedAt: 1700000000},
		},
		Groups: []models.Group{
			{ID: "g1", Name: "Parivar", LeaderID: "u1", MemberIDs: []string{"u1"},
				Color: "blue", Icon: "home", CreatedAt: 1700000010},
		},
		ActiveGroupID: "g1",
	}
	if err := store.SaveSnapshot(ctx, smaller); err != nil {
		t.Fatalf("second SaveSnapshot failed: %v", err)
	}

	got, err := store.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(got.Users) != 1 || len(got.Groups) != 1 || len(got.Expenses) != 0 {
		t.Errorf("stale rows survived: %d users, %d groups, %d expenses",
			len(got.Users), len(got.Groups), len(got.Expenses))
	}
}

func TestLoadSnapshotEmptyDatabase(t *testing.T) {
	store := newTestStore(t)

	got, err := store.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if len(got.Users) != 0 || len(got.Groups) != 0 || len(got.Expenses) != 0 {
		t.Errorf("expected empty snapshot, got %+v", got)
	}
	if got.ActiveGroupID != "" {
		t.Errorf("active group = %q, want empty", got.ActiveGroupID)
	}
}
