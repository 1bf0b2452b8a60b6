package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "checklists.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return store, path
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmptyTableHasNoData(t *testing.T) {
	store, _ := openTestStore(t)
	blob, ok, err := store.LoadBlob(context.Background())
	if err != nil || ok || blob != nil {
		t.Fatalf("empty table: blob=%q ok=%v err=%v", blob, ok, err)
	}
}

func TestSaveBlobReplacesSingleRow(t *testing.T) {
	store, path := openTestStore(t)
	ctx := context.Background()

	if err := store.SaveBlob(ctx, []byte(`[{"slug":"one"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveBlob(ctx, []byte(`[{"slug":"two"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	blob, ok, err := store.LoadBlob(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(blob) != `[{"slug":"two"}]` {
		t.Fatalf("blob = %s", blob)
	}

	raw, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = raw.Close() }()
	var n int
	if err := raw.QueryRow("SELECT COUNT(*) FROM lists").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
}

func TestReopenKeepsDataAndMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checklists.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.SaveBlob(context.Background(), []byte("[]")); err != nil {
		t.Fatalf("save: %v", err)
	}
	_ = first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = second.Close() }()
	blob, ok, err := second.LoadBlob(context.Background())
	if err != nil || !ok || string(blob) != "[]" {
		t.Fatalf("blob=%q ok=%v err=%v", blob, ok, err)
	}
}

func TestClosedStoreIsUnavailable(t *testing.T) {
	store, _ := openTestStore(t)
	_ = store.Close()
	if store.Available() {
		t.Fatal("closed store should be unavailable")
	}
	if err := store.SaveBlob(context.Background(), []byte("[]")); err == nil {
		t.Fatal("expected error on closed store")
	}
	var nilStore *Store
	if nilStore.Available() {
		t.Fatal("nil store should be unavailable")
	}
}

func TestExtractUp(t *testing.T) {
	got := extractUp("-- +migrate Up\nCREATE X;\n-- +migrate Down\nDROP X;")
	if got != "\nCREATE X;\n" {
		t.Fatalf("got %q", got)
	}
	if extractUp("SELECT 1") != "SELECT 1" {
		t.Fatal("content without markers should be returned whole")
	}
}
