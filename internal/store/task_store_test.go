package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/nhle/tasklite/internal/store"
	"github.com/nhle/tasklite/tests/testutil"
)

func TestListAll_EmptyTable(t *testing.T) {
	s := testutil.NewTestStore(t)

	tasks, err := s.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll() failed: %v", err)
	}
	if tasks == nil {
		t.Fatal("ListAll() returned nil slice for empty table")
	}
	if len(tasks) != 0 {
		t.Fatalf("ListAll() returned %d tasks, want 0", len(tasks))
	}
}

func TestInsert_ListAllNewestFirst(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := testutil.NewTestStore(t, store.WithClock(testutil.FixedClock(at)))
	ctx := context.Background()

	var lastID int64
	for _, title := range []string{"first", "second", "third"} {
		id, err := s.Insert(ctx, title, false)
		if err != nil {
			t.Fatalf("Insert(%q) failed: %v", title, err)
		}
		if id <= lastID {
			t.Fatalf("Insert(%q) id = %d, want > %d", title, id, lastID)
		}
		lastID = id
	}

	tasks, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() failed: %v", err)
	}

	wantOrder := []string{"third", "second", "first"}
	if len(tasks) != len(wantOrder) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(wantOrder))
	}
	for i, want := range wantOrder {
		if tasks[i].Title != want {
			t.Errorf("tasks[%d].Title = %q, want %q", i, tasks[i].Title, want)
		}
		if tasks[i].Done {
			t.Errorf("tasks[%d] should not be done", i)
		}
		if tasks[i].CreatedAt != at.UnixMilli() {
			t.Errorf("tasks[%d].CreatedAt = %d, want %d", i, tasks[i].CreatedAt, at.UnixMilli())
		}
	}
}

func TestInsert_TrimsTitle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "  padded  ", false)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if task.Title != "padded" {
		t.Fatalf("Title = %q, want %q", task.Title, "padded")
	}
}

func TestInsert_EmptyTitle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Insert(ctx, title, false)
		if !store.IsValidationError(err) {
			t.Errorf("Insert(%q) error = %v, want ValidationError", title, err)
		}
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count() failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("Count() = %d after rejected inserts, want 0", count)
	}
}

func TestInsert_AllowsDuplicateTitles(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := s.Insert(ctx, "same", false); err != nil {
			t.Fatalf("Insert() #%d failed: %v", i+1, err)
		}
	}
	count, _ := s.Count(ctx)
	if count != 2 {
		t.Fatalf("Count() = %d, want 2", count)
	}
}

func TestInsertAt_UsesGivenTimestampAndDone(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	at := time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC)

	id, err := s.InsertAt(ctx, "imported", true, at)
	if err != nil {
		t.Fatalf("InsertAt() failed: %v", err)
	}
	task, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if !task.Done {
		t.Error("Done = false, want true")
	}
	if !task.CreatedTime().Equal(at) {
		t.Errorf("CreatedTime() = %v, want %v", task.CreatedTime(), at)
	}
}

func TestUpdateTitle(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "draft", true)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	before, _ := s.Get(ctx, id)

	if err := s.UpdateTitle(ctx, id, " final "); err != nil {
		t.Fatalf("UpdateTitle() failed: %v", err)
	}

	after, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if after.Title != "final" {
		t.Errorf("Title = %q, want %q", after.Title, "final")
	}
	if after.Done != before.Done || after.CreatedAt != before.CreatedAt {
		t.Errorf("UpdateTitle changed other columns: before %+v, after %+v", before, after)
	}
}

func TestUpdateTitle_Errors(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "keep", false)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	if err := s.UpdateTitle(ctx, id, "  "); !store.IsValidationError(err) {
		t.Errorf("UpdateTitle(blank) error = %v, want ValidationError", err)
	}
	if err := s.UpdateTitle(ctx, id+100, "new"); !store.IsNotFoundError(err) {
		t.Errorf("UpdateTitle(missing) error = %v, want NotFoundError", err)
	}

	task, _ := s.Get(ctx, id)
	if task.Title != "keep" {
		t.Errorf("Title = %q after failed updates, want %q", task.Title, "keep")
	}
}

func TestToggleDone_Involution(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	id, err := s.Insert(ctx, "flip", false)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}

	done, err := s.ToggleDone(ctx, id)
	if err != nil {
		t.Fatalf("ToggleDone() failed: %v", err)
	}
	if !done {
		t.Fatal("first ToggleDone() = false, want true")
	}

	done, err = s.ToggleDone(ctx, id)
	if err != nil {
		t.Fatalf("second ToggleDone() failed: %v", err)
	}
	if done {
		t.Fatal("second ToggleDone() = true, want false")
	}

	task, _ := s.Get(ctx, id)
	if task.Done {
		t.Fatal("stored done = true after two toggles")
	}
}

func TestToggleDone_NotFound(t *testing.T) {
	s := testutil.NewTestStore(t)

	_, err := s.ToggleDone(context.Background(), 42)
	if !store.IsNotFoundError(err) {
		t.Fatalf("ToggleDone(missing) error = %v, want NotFoundError", err)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	keep, _ := s.Insert(ctx, "keep", false)
	gone, _ := s.Insert(ctx, "gone", false)

	if err := s.Delete(ctx, gone); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := s.Delete(ctx, gone); err != nil {
		t.Fatalf("second Delete() failed: %v", err)
	}
	if err := s.Delete(ctx, 9999); err != nil {
		t.Fatalf("Delete(missing) failed: %v", err)
	}

	tasks, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != keep {
		t.Fatalf("unexpected tasks after delete: %+v", tasks)
	}
	if _, err := s.Get(ctx, gone); !store.IsNotFoundError(err) {
		t.Fatalf("Get(deleted) error = %v, want NotFoundError", err)
	}
}

func TestDelete_IDsNotReused(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first, _ := s.Insert(ctx, "a", false)
	second, _ := s.Insert(ctx, "b", false)
	if err := s.Delete(ctx, second); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}

	third, err := s.Insert(ctx, "c", false)
	if err != nil {
		t.Fatalf("Insert() failed: %v", err)
	}
	if third <= second || third <= first {
		t.Fatalf("new id %d reuses or precedes deleted id %d", third, second)
	}
}

func TestListTitles(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	titles, err := s.ListTitles(ctx)
	if err != nil {
		t.Fatalf("ListTitles() failed: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("ListTitles() = %v on empty table", titles)
	}

	s.Insert(ctx, "Alpha", false)
	s.Insert(ctx, "beta", true)

	titles, err = s.ListTitles(ctx)
	if err != nil {
		t.Fatalf("ListTitles() failed: %v", err)
	}
	got := map[string]bool{}
	for _, title := range titles {
		got[title] = true
	}
	if len(got) != 2 || !got["Alpha"] || !got["beta"] {
		t.Fatalf("ListTitles() = %v", titles)
	}
}

func TestClosedStore_ReturnsStorageError(t *testing.T) {
	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	s.Close()

	if _, err := s.ListAll(context.Background()); !store.IsStorageError(err) {
		t.Fatalf("ListAll() on closed store error = %v, want StorageError", err)
	}
	if _, err := s.Insert(context.Background(), "x", false); !store.IsStorageError(err) {
		t.Fatalf("Insert() on closed store error = %v, want StorageError", err)
	}
}
