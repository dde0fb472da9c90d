package out

import (
	"context"
	"path/filepath"
	"testing"

	"pathlight/internal/modules/paths/domain"
)

func newPartitionStore(t *testing.T) *SQLitePartitionStore {
	t.Helper()
	store, err := NewSQLitePartitionStore(filepath.Join(t.TempDir(), "pathlight.db"))
	if err != nil {
		t.Fatalf("NewSQLitePartitionStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPartitionStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store := newPartitionStore(t)
	ctx := context.Background()

	paths := []domain.LearningPath{
		{
			ID:    "p1",
			Topic: "Go",
			Milestones: []domain.Milestone{
				{Title: "Basics"},
				{Title: "Concurrency"},
			},
			Completed: map[int]bool{0: true},
		},
	}
	if err := store.Save(ctx, "alice", paths); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p1" || !got[0].MilestoneDone(0) {
		t.Fatalf("loaded = %+v, want the saved path with completion", got)
	}
}

func TestPartitionStoreIsolatesUsers(t *testing.T) {
	t.Parallel()

	store := newPartitionStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "alice", []domain.LearningPath{{ID: "a1", Topic: "Go"}}); err != nil {
		t.Fatalf("Save alice: %v", err)
	}
	if err := store.Save(ctx, domain.GuestUserID, []domain.LearningPath{{ID: "g1", Topic: "Piano"}}); err != nil {
		t.Fatalf("Save guest: %v", err)
	}

	alice, err := store.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load alice: %v", err)
	}
	guest, err := store.Load(ctx, domain.GuestUserID)
	if err != nil {
		t.Fatalf("Load guest: %v", err)
	}
	if len(alice) != 1 || alice[0].ID != "a1" {
		t.Fatalf("alice = %+v, want only her path", alice)
	}
	if len(guest) != 1 || guest[0].ID != "g1" {
		t.Fatalf("guest = %+v, want only the guest path", guest)
	}
}

func TestPartitionStoreOverwritesWholePartition(t *testing.T) {
	t.Parallel()

	store := newPartitionStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "alice", []domain.LearningPath{{ID: "a1", Topic: "Go"}, {ID: "a2", Topic: "SQL"}}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, "alice", []domain.LearningPath{{ID: "a2", Topic: "SQL"}}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a2" {
		t.Fatalf("loaded = %+v, want the replacement list only", got)
	}
}

func TestPartitionStoreUnknownUserLoadsEmpty(t *testing.T) {
	t.Parallel()

	store := newPartitionStore(t)
	got, err := store.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("loaded = %+v, want empty for an unknown user", got)
	}
}

func TestPartitionStoreDropsOutOfRangeCompletionOnLoad(t *testing.T) {
	t.Parallel()

	store := newPartitionStore(t)
	ctx := context.Background()

	paths := []domain.LearningPath{{
		ID:         "p1",
		Topic:      "Go",
		Milestones: []domain.Milestone{{Title: "Only"}},
		Completed:  map[int]bool{0: true, 9: true},
	}}
	if err := store.Save(ctx, "alice", paths); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx, "alice")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got[0].Completed) != 1 || !got[0].Completed[0] {
		t.Fatalf("completed = %v, want the out-of-range entry dropped", got[0].Completed)
	}
}
