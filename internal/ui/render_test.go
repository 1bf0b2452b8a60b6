package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/checklist/internal/model"
)

func TestProgressBar(t *testing.T) {
	got := ProgressBar(1, 4, 8)
	if !strings.HasPrefix(got, "██░░░░░░") || !strings.HasSuffix(got, " 25%") {
		t.Fatalf("got %q", got)
	}
	if got := ProgressBar(0, 0, 2); !strings.HasSuffix(got, "  0%") {
		t.Fatalf("empty total: %q", got)
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme("classic")
	SetTheme("MONO")
	if Current().Name != "mono" || Current().BoxChecked != "[x]" {
		t.Fatalf("theme = %+v", Current().Name)
	}
	SetTheme("unknown")
	if Current().Name != "classic" {
		t.Fatalf("fallback theme = %s", Current().Name)
	}
}

func TestRenderHelpers(t *testing.T) {
	defer SetTheme("classic")
	SetTheme("mono")

	line := TaskLine(3, model.Item{Message: "Buy milk", Done: true})
	if !strings.Contains(line, " 3.") || !strings.Contains(line, "[x]") || !strings.Contains(line, "Buy milk") {
		t.Fatalf("task line = %q", line)
	}
	l := model.CheckList{Slug: "groceries", Title: "Groceries", CreatedAt: time.Now(),
		Items: []model.Item{{Message: "a", Done: true}, {Message: "b"}}}
	if row := ListLine(l); !strings.Contains(row, "groceries") || !strings.Contains(row, "(1/2)") {
		t.Fatalf("list line = %q", row)
	}

	var buf bytes.Buffer
	Panel(&buf, []string{"hello"})
	if !strings.Contains(buf.String(), "hello") || strings.Count(buf.String(), "\n") < 3 {
		t.Fatalf("panel = %q", buf.String())
	}
	buf.Reset()
	OK(&buf, "saved")
	Fail(&buf, "nope")
	if !strings.Contains(buf.String(), "x saved") || !strings.Contains(buf.String(), "✖ nope") {
		t.Fatalf("status lines = %q", buf.String())
	}
}

func TestListLineTruncatesByDisplayWidth(t *testing.T) {
	cases := []struct {
		name  string
		title string
	}{
		{"ascii", strings.Repeat("a", model.MaxTitleLen)},
		{"wide runes", strings.Repeat("日", 25)},
		{"mixed", "買い物リスト for the whole family and friends"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := ListLine(model.CheckList{Slug: "s", Title: tc.title, CreatedAt: time.Now()})
			head, _, _ := strings.Cut(row, " s ")
			if !strings.Contains(head, "...") {
				t.Fatalf("title not shortened: %q", row)
			}
			if w := lipgloss.Width(strings.TrimRight(head, " ")); w > 40 {
				t.Fatalf("title width = %d, want <= 40 (%q)", w, head)
			}
		})
	}
}
