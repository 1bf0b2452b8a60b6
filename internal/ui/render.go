package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/checklist/internal/model"
)

// OK prints a success line.
func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Success.Render(current.SymDone+" "+msg))
}

// Fail prints an error line.
func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, current.Error.Render("✖ "+msg))
}

// ProgressBar renders a bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s %3d%%", bar, done*100/total)
}

// PanelString frames lines in the theme's border.
func PanelString(lines []string) string {
	return lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Panel prints a framed box.
func Panel(w io.Writer, lines []string) {
	fmt.Fprintln(w, PanelString(lines))
}

// Header renders "<title>  ✔ d  • p  Total n".
func Header(title string, done, pending int) string {
	return fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		current.Title.Render(title),
		current.Success.Render(current.SymDone), done,
		current.Pending.Render(current.SymPending), pending,
		current.Accent.Render("Total"), done+pending,
	)
}

// TaskLine renders one numbered task row. n is the 1-based display number.
func TaskLine(n int, it model.Item) string {
	box := current.Muted.Render(current.BoxUnchecked)
	text := it.Message
	if it.Done {
		box = current.Success.Render(current.BoxChecked)
		text = current.Done.Render(text)
	}
	return fmt.Sprintf("%s %s %s", current.Muted.Render(fmt.Sprintf("%2d.", n)), box, text)
}

// ListLine renders one row of the list overview.
func ListLine(l model.CheckList) string {
	done, pending := l.Stats()
	title := l.Title
	title = ansi.Truncate(title, 40, "...")
	if pad := 42 - lipgloss.Width(title); pad > 0 {
		title += strings.Repeat(" ", pad)
	}
	return fmt.Sprintf("%s %s %s",
		title,
		current.Muted.Render(l.Slug),
		current.Muted.Render(fmt.Sprintf("(%d/%d) %s", done, done+pending, l.CreatedAt.Local().Format("2006-01-02 15:04"))),
	)
}
