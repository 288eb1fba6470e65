package bubbletea

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// sanitize removes terminal escape sequences and control characters from
// message text before it reaches the renderer. Tabs and newlines survive;
// CRLF becomes LF and a lone CR becomes a newline.
func sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || (r > 0x1F && r != 0x7F) {
			return r
		}
		return -1
	}, s)
}
