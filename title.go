package edubot

import (
	"strings"

	"github.com/rivo/uniseg"
)

const (
	// MaxTitleLength is the number of user-perceived characters kept when a
	// title is derived from a message.
	MaxTitleLength = 50

	// TitleEllipsis marks a derived title that was truncated.
	TitleEllipsis = "..."
)

// DeriveTitle builds a session title from the first message of a
// conversation. Content longer than MaxTitleLength grapheme clusters is cut
// at that boundary and TitleEllipsis is appended. Counting graphemes rather
// than bytes keeps accented and emoji text intact.
func DeriveTitle(content string) string {
	if uniseg.GraphemeClusterCount(content) <= MaxTitleLength {
		return content
	}
	var b strings.Builder
	g := uniseg.NewGraphemes(content)
	for n := 0; n < MaxTitleLength && g.Next(); n++ {
		b.WriteString(g.Str())
	}
	b.WriteString(TitleEllipsis)
	return b.String()
}
