package ledger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ticketwatch/pkg/logx"
)

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ledger.json")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	want := map[int64]time.Time{
		101: time.UnixMilli(1700000000000),
		202: time.UnixMilli(1700000060000),
	}
	if err := st.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Load returned %d entries, want %d", len(got), len(want))
	}
	for id, at := range want {
		if !got[id].Equal(at) {
			t.Fatalf("entry %d = %v, want %v", id, got[id], at)
		}
	}
}

func TestFileStoreMalformedResetsEmpty(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ledger.json")
	if err := os.WriteFile(path, []byte(`{"not":"a ledger"`), 0o600); err != nil {
		t.Fatal(err)
	}

	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %d entries", len(got))
	}
	// The corrupt snapshot must be cleared.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected corrupt snapshot to be removed, stat err = %v", err)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{Driver: "file", Path: filepath.Join(t.TempDir(), "none.json")}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty mapping, got %d", len(got))
	}
}

func TestMarkNeverRefreshesTimestamp(t *testing.T) {
	t.Parallel()
	l := New(context.Background(), nil, logx.Nop())

	first := time.UnixMilli(1000)
	l.Mark([]int64{7}, first)
	l.Mark([]int64{7, 8}, time.UnixMilli(9000))

	if !l.Contains(7) || !l.Contains(8) {
		t.Fatal("expected both ids recorded")
	}
	if got := l.NotifiedSince(time.UnixMilli(2000)); got != 1 {
		t.Fatalf("NotifiedSince = %d, want 1 (id 7 must keep its original timestamp)", got)
	}
}

func TestLedgerRecoversPriorState(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "ledger.json")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	l := New(context.Background(), st, logx.Nop())
	l.Mark([]int64{1, 2, 3}, time.Now())
	l.Save(context.Background())

	l2 := New(context.Background(), st, logx.Nop())
	if l2.Len() != 3 {
		t.Fatalf("recovered ledger has %d entries, want 3", l2.Len())
	}
	if !l2.Contains(2) {
		t.Fatal("expected id 2 in recovered ledger")
	}
}

func TestOpenDisabledDriver(t *testing.T) {
	t.Parallel()
	st, err := Open(Config{}, logx.Nop())
	if err != nil || st != nil {
		t.Fatalf("Open(none) = (%v, %v), want (nil, nil)", st, err)
	}
}
