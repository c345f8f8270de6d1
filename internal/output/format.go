// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasklr/internal/service"
)

// Untitled replaces empty titles in terminal output.
const Untitled = "(untitled)"

// FormatListName writes a list title, followed by its ID in brackets when
// withID is set.
func FormatListName(w io.Writer, list service.TaskList, withID bool) {
	title := normalizeTitle(list.Title)
	if withID {
		fmt.Fprintf(w, "%s [%s]\n", title, list.ID)
		return
	}
	fmt.Fprintln(w, title)
}

// FormatCount writes a count line.
// Format: "{N:>4}  {TITLE}\n" (4-wide right-aligned number, two spaces, title)
func FormatCount(w io.Writer, n int, title string) {
	fmt.Fprintf(w, "%4d  %s\n", n, normalizeTitle(title))
}

// normalizeTitle keeps a title on one line. Empty or whitespace-only titles
// become Untitled.
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return Untitled
	}
	return title
}
