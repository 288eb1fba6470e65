package edubot

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values, so the app
// automatically matches any color scheme. A negative index means no color.
type Theme struct {
	UserMsg int // User message accent
	Bot     int // Assistant label
	Error   int // Error messages
	Muted   int // Status bar, placeholders, code gutters
	Accent  int // Headings, links
	Active  int // Current session in the sidebar
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg: 4,
		Bot:     2,
		Error:   1,
		Muted:   8,
		Accent:  5,
		Active:  6,
	}
}
