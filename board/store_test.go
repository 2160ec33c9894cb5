package board

import (
	"testing"

	"innoboard/domain"
)

func storeIDs(s *Store) []string {
	return s.IDs()
}

func assertOrder(t *testing.T, s *Store, want ...string) {
	t.Helper()
	got := storeIDs(s)
	if len(got) != len(want) {
		t.Fatalf("expected %d tasks, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}

func TestReplaceAllSortsByCaseNumber(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{
		{ID: "1", CaseNumber: "2/24"},
		{ID: "2", CaseNumber: "1/24"},
	})
	assertOrder(t, s, "2", "1")
}

func TestReplaceAllDropsDuplicateIDs(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{
		{ID: "1", Title: "first"},
		{ID: "1", Title: "second"},
	})
	if s.Len() != 1 {
		t.Fatalf("expected 1 task, got %d", s.Len())
	}
	task, _ := s.Get("1")
	if task.Title != "first" {
		t.Fatalf("expected first occurrence to win, got %q", task.Title)
	}
}

func TestUpsertNeverDuplicates(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.Task{ID: "a", Title: "one"})
	s.Upsert(domain.Task{ID: "a", Title: "two"})
	s.Upsert(domain.Task{ID: "b"})
	s.Remove("b")
	s.Upsert(domain.Task{ID: "b"})
	s.Reorder([]string{"b", "a"})
	if s.Len() != 2 {
		t.Fatalf("expected 2 tasks, got %d", s.Len())
	}
	seen := map[string]int{}
	for _, task := range s.Tasks() {
		seen[task.ID]++
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("id %q appears %d times", id, n)
		}
	}
}

func TestUpsertKeepsPositionUnlessRenumbered(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{
		{ID: "1", CaseNumber: "1/24"},
		{ID: "2", CaseNumber: "2/24"},
		{ID: "3", CaseNumber: "3/24"},
	})

	s.Upsert(domain.Task{ID: "2", CaseNumber: "2/24", Title: "edited"})
	assertOrder(t, s, "1", "2", "3")

	s.Upsert(domain.Task{ID: "2", CaseNumber: "9/24", Title: "edited"})
	assertOrder(t, s, "1", "3", "2")
}

func TestUpsertInsertsNewRecordInSortedPosition(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{
		{ID: "1", CaseNumber: "1/24"},
		{ID: "3", CaseNumber: "3/24"},
	})
	s.Upsert(domain.Task{ID: "2", CaseNumber: "2/24"})
	assertOrder(t, s, "1", "2", "3")
}

func TestRemoveUnknownIsNoOp(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{{ID: "1"}})
	s.Remove("missing")
	s.Remove("1")
	s.Remove("1") // duplicate delete confirmation
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d tasks", s.Len())
	}
}

func TestReorderPartialSequenceAppendsRest(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})
	s.Reorder([]string{"c", "a"})
	assertOrder(t, s, "c", "a", "b", "d")
}

func TestReorderIgnoresUnknownIDs(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{{ID: "a"}, {ID: "b"}})
	s.Reorder([]string{"ghost", "b", "a", "b"})
	assertOrder(t, s, "b", "a")
}

func TestRestoreReinsertsAtOriginalIndex(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{{ID: "3"}, {ID: "5"}, {ID: "7"}})

	snap := s.snapshot("5")
	s.Remove("5")
	assertOrder(t, s, "3", "7")

	s.restore(snap)
	assertOrder(t, s, "3", "5", "7")
}

func TestRestoreRevertsFieldsInPlace(t *testing.T) {
	s := NewStore()
	s.ReplaceAll([]domain.Task{
		{ID: "1", CaseNumber: "1/24", Title: "original"},
		{ID: "2", CaseNumber: "2/24"},
	})

	snap := s.snapshot("1")
	s.Upsert(domain.Task{ID: "1", CaseNumber: "9/24", Title: "guess"})
	assertOrder(t, s, "2", "1")

	s.restore(snap)
	assertOrder(t, s, "1", "2")
	task, _ := s.Get("1")
	if task.Title != "original" || task.CaseNumber != "1/24" {
		t.Fatalf("restore did not revert fields: %+v", task)
	}
}

func TestRestoreAbsentSnapshotIsNoOp(t *testing.T) {
	s := NewStore()
	snap := s.snapshot("nope")
	if snap.present {
		t.Fatal("snapshot of unknown id should not be present")
	}
	s.restore(snap)
	if s.Len() != 0 {
		t.Fatalf("restore of absent snapshot mutated the store")
	}
}

func TestSubscribeFiresOnMutation(t *testing.T) {
	s := NewStore()
	var fired int
	s.Subscribe(func() { fired++ })
	s.Upsert(domain.Task{ID: "1"})
	s.Remove("1")
	if fired != 2 {
		t.Fatalf("expected 2 notifications, got %d", fired)
	}
}

func TestTasksReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Upsert(domain.Task{ID: "1", Attachments: []domain.Attachment{{Filename: "a"}}})
	tasks := s.Tasks()
	tasks[0].Attachments[0].Filename = "mutated"
	task, _ := s.Get("1")
	if task.Attachments[0].Filename != "a" {
		t.Fatal("Tasks() leaked internal state")
	}
}
