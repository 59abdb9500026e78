package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wgsentinel/wg-sentinel/common"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testEvent(kind, state string, at time.Time) common.Event {
	return common.Event{
		ID:     uuid.NewString(),
		At:     at,
		Kind:   kind,
		State:  state,
		Detail: "test",
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Truncate(time.Millisecond)
	events := []common.Event{
		testEvent(common.EventTransition, "Stale", base),
		testEvent(common.EventRecovery, "ok", base.Add(time.Minute)),
		testEvent(common.EventTransition, "Healthy", base.Add(2*time.Minute)),
	}
	for _, ev := range events {
		if err := store.Append(ev); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent() returned %d events, want 3", len(got))
	}

	// Newest first.
	if got[0].ID != events[2].ID || got[2].ID != events[0].ID {
		t.Errorf("Recent() order wrong: got IDs %v, %v, %v", got[0].ID, got[1].ID, got[2].ID)
	}
	if got[0].Kind != common.EventTransition || got[0].State != "Healthy" {
		t.Errorf("Recent()[0] = %+v, want the Healthy transition", got[0])
	}
	if !got[0].At.Equal(events[2].At) {
		t.Errorf("Recent()[0].At = %v, want %v", got[0].At, events[2].At)
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store := openTestStore(t)

	base := time.Now()
	for i := 0; i < 5; i++ {
		ev := testEvent(common.EventTransition, "Unreachable", base.Add(time.Duration(i)*time.Second))
		if err := store.Append(ev); err != nil {
			t.Fatalf("Append() error = %v", err)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Recent(2) returned %d events, want 2", len(got))
	}

	got, err = store.Recent(0)
	if err != nil {
		t.Fatalf("Recent(0) error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent(0) returned %d events, want none", len(got))
	}
}

func TestStore_Empty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Recent() on empty store returned %d events", len(got))
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	ev := testEvent(common.EventRecovery, "ok", time.Now())
	if err := store.Append(ev); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	got, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != ev.ID {
		t.Errorf("Recent() after reopen = %+v, want the appended event", got)
	}
}

func TestStore_ClosedReturnsSentinel(t *testing.T) {
	store := openTestStore(t)
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := store.Append(testEvent(common.EventTransition, "Stale", time.Now())); !errors.Is(err, common.ErrJournalClosed) {
		t.Errorf("Append() after close error = %v, want ErrJournalClosed", err)
	}
	if _, err := store.Recent(1); !errors.Is(err, common.ErrJournalClosed) {
		t.Errorf("Recent() after close error = %v, want ErrJournalClosed", err)
	}

	// Double close is harmless.
	if err := store.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
