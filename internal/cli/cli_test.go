package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CHECKLIST_DATA_DIR", dir)
	t.Setenv("CHECKLIST_THEME", "mono")
	t.Setenv("CHECKLIST_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Execute(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	code, out, errOut := run(t, args...)
	if code != exitOK {
		t.Fatalf("%v: exit %d, stderr=%q", args, code, errOut)
	}
	return out
}

type exported struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Items []struct {
		Message string `json:"message"`
		Done    bool   `json:"done"`
	} `json:"items"`
}

func exportOf(t *testing.T, slug string) exported {
	t.Helper()
	var e exported
	if err := json.Unmarshal([]byte(mustRun(t, "export", slug)), &e); err != nil {
		t.Fatalf("export %s: %v", slug, err)
	}
	return e
}

func TestListLifecycle(t *testing.T) {
	setup(t)

	out := mustRun(t, "new", "Groceries")
	if !strings.Contains(out, "groceries") {
		t.Fatalf("new output = %q", out)
	}
	mustRun(t, "add", "groceries", "Buy", "milk")
	mustRun(t, "add", "groceries", "Eggs")

	out = mustRun(t, "ls")
	if !strings.Contains(out, "Groceries") || !strings.Contains(out, "(0/2)") {
		t.Fatalf("ls output = %q", out)
	}

	mustRun(t, "done", "groceries", "1")
	e := exportOf(t, "groceries")
	if len(e.Items) != 2 {
		t.Fatalf("items = %+v", e.Items)
	}
	// the toggled task sinks below the pending one
	if e.Items[0].Message != "Eggs" || e.Items[0].Done || e.Items[1].Message != "Buy milk" || !e.Items[1].Done {
		t.Fatalf("items after done = %+v", e.Items)
	}

	mustRun(t, "edit", "groceries", "1", "Eggs", "x12")
	mustRun(t, "del", "groceries", "2")
	e = exportOf(t, "groceries")
	if len(e.Items) != 1 || e.Items[0].Message != "Eggs x12" {
		t.Fatalf("items after edit/del = %+v", e.Items)
	}

	mustRun(t, "rename", "groceries", "Weekly", "shop")
	e = exportOf(t, "groceries")
	if e.Title != "Weekly shop" || e.Slug != "groceries" {
		t.Fatalf("renamed = %+v", e)
	}

	out = mustRun(t, "show", "groceries", "--group")
	if !strings.Contains(out, "Eggs x12") || !strings.Contains(out, "Pending:") {
		t.Fatalf("show output = %q", out)
	}

	mustRun(t, "rm", "groceries")
	if out := mustRun(t, "ls"); !strings.Contains(out, "No lists yet") {
		t.Fatalf("ls after rm = %q", out)
	}
}

func TestFlatOnlyStorage(t *testing.T) {
	dir := setup(t)
	mustRun(t, "--no-sql", "new", "Trip")
	if _, err := os.Stat(filepath.Join(dir, "checklists.db")); !os.IsNotExist(err) {
		t.Fatalf("database created with --no-sql: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "checklists.json")); err != nil {
		t.Fatalf("flat file missing: %v", err)
	}
	if out := mustRun(t, "--no-sql", "ls"); !strings.Contains(out, "Trip") {
		t.Fatalf("ls = %q", out)
	}
}

func TestExitCodes(t *testing.T) {
	setup(t)
	mustRun(t, "new", "Groceries")
	mustRun(t, "add", "groceries", "Milk")

	cases := []struct {
		name string
		args []string
		want int
	}{
		{"no title", []string{"new"}, exitUsage},
		{"blank title", []string{"new", "   "}, exitUsage},
		{"duplicate title", []string{"new", "groceries"}, exitUsage},
		{"duplicate task", []string{"add", "groceries", "Milk"}, exitUsage},
		{"not a number", []string{"done", "groceries", "x"}, exitUsage},
		{"out of range", []string{"del", "groceries", "5"}, exitUsage},
		{"bad sort", []string{"ls", "--sort", "sideways"}, exitUsage},
		{"unknown flag", []string{"ls", "--nope"}, exitUsage},
		{"unknown command", []string{"frobnicate"}, exitUsage},
		{"missing list", []string{"rm", "nope"}, exitError},
		{"missing list for task", []string{"add", "nope", "Milk"}, exitError},
		{"missing file", []string{"import", "/does/not/exist.json"}, exitError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := run(t, tc.args...)
			if code != tc.want {
				t.Fatalf("exit = %d, want %d (stderr=%q)", code, tc.want, errOut)
			}
			if errOut == "" {
				t.Fatal("expected an error message")
			}
		})
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	dir := setup(t)
	mustRun(t, "new", "Packing")
	mustRun(t, "add", "packing", "Socks")
	mustRun(t, "add", "packing", "Passport")
	mustRun(t, "done", "packing", "2")

	file := filepath.Join(dir, "packing.json")
	mustRun(t, "export", "packing", "-o", file)

	code, _, errOut := run(t, "import", file)
	if code != exitError || !strings.Contains(errOut, "list already exists") {
		t.Fatalf("re-import: exit %d stderr=%q", code, errOut)
	}

	mustRun(t, "rm", "packing")
	out := mustRun(t, "import", file)
	if !strings.Contains(out, "2 tasks") {
		t.Fatalf("import output = %q", out)
	}
	e := exportOf(t, "packing")
	if e.Title != "Packing" || len(e.Items) != 2 || !e.Items[1].Done {
		t.Fatalf("imported = %+v", e)
	}
}

func TestImportRejectsBadInput(t *testing.T) {
	dir := setup(t)
	file := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(file, []byte(`{"title": "x"`), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, errOut := run(t, "import", file)
	if code != exitError || !strings.Contains(errOut, "invalid JSON") {
		t.Fatalf("exit %d stderr=%q", code, errOut)
	}
	if out := mustRun(t, "ls"); !strings.Contains(out, "No lists yet") {
		t.Fatalf("failed import changed the collection: %q", out)
	}
}

func TestListPaging(t *testing.T) {
	setup(t)
	t.Setenv("CHECKLIST_PAGE_SIZE", "2")
	for _, title := range []string{"One", "Two", "Three"} {
		mustRun(t, "new", title)
	}
	out := mustRun(t, "ls", "--page", "2")
	if !strings.Contains(out, "page 2/2") || !strings.Contains(out, "One") || strings.Contains(out, "Three") {
		t.Fatalf("page 2 = %q", out)
	}
	out = mustRun(t, "ls", "--sort", "old")
	if !strings.Contains(out, "One") || strings.Contains(out, "Three") {
		t.Fatalf("oldest first page 1 = %q", out)
	}
}

func TestRootCommand(t *testing.T) {
	dir := setup(t)

	code, out, _ := run(t)
	if code != exitOK || !strings.Contains(out, "Usage:") {
		t.Fatalf("bare invocation: exit %d out=%q", code, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "checklists.db")); !os.IsNotExist(err) {
		t.Fatalf("help should not open storage: %v", err)
	}

	code, _, errOut := run(t, "--no-sql", "lst")
	if code != exitUsage || !strings.Contains(errOut, `unknown command "lst"`) {
		t.Fatalf("unknown command: exit %d stderr=%q", code, errOut)
	}
}
