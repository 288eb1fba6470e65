package goldmark

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/edubot/edubot"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

const minWrapWidth = 10

var parser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

type renderer struct {
	heading lipgloss.Style
	strong  lipgloss.Style
	em      lipgloss.Style
	code    lipgloss.Style
	strike  lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

func newRenderer(theme edubot.Theme) *renderer {
	return &renderer{
		heading: lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		strong:  lipgloss.NewStyle().Bold(true),
		em:      lipgloss.NewStyle().Italic(true),
		code:    lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		link:    lipgloss.NewStyle().Underline(true),
		muted:   lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(source []byte, width int) string {
	doc := parser.Parse(text.NewReader(source))
	var out bytes.Buffer
	r.blocks(&out, doc, source, width)
	return strings.TrimRight(out.String(), "\n")
}

// blocks renders the block children of parent separated by blank lines.
func (r *renderer) blocks(out *bytes.Buffer, parent ast.Node, source []byte, width int) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(out, c, source, width)
		if c.NextSibling() != nil {
			out.WriteString("\n")
		}
	}
}

func (r *renderer) block(out *bytes.Buffer, node ast.Node, source []byte, width int) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		writeLine(out, wrap(r.inlines(n, source), width))

	case *ast.Heading:
		style := r.heading
		if n.Level > 2 {
			style = r.strong
		}
		writeLine(out, wrap(style.Render(r.inlines(n, source)), width))

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(source)); lang != "" {
			writeLine(out, r.muted.Render(lang))
		}
		r.codeLines(out, n, source)

	case *ast.CodeBlock:
		r.codeLines(out, n, source)

	case *ast.Blockquote:
		var inner bytes.Buffer
		r.blocks(&inner, n, source, max(width-2, minWrapWidth))
		bar := r.muted.Render("│") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			writeLine(out, bar+line)
		}

	case *ast.List:
		r.list(out, n, source, width, 0)

	case *east.Table:
		r.table(out, n, source)

	case *ast.ThematicBreak:
		writeLine(out, r.muted.Render(strings.Repeat("─", min(width, defaultWidth))))

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			out.Write(seg.Value(source))
		}

	default:
		r.blocks(out, node, source, width)
	}
}

func (r *renderer) codeLines(out *bytes.Buffer, node ast.Node, source []byte) {
	gutter := r.muted.Render("│") + " "
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(source)), "\n")
		writeLine(out, gutter+line)
	}
}

func (r *renderer) list(out *bytes.Buffer, list *ast.List, source []byte, width, depth int) {
	n := list.Start
	for c := list.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "- "
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d. ", n)
			n++
		}
		prefix := strings.Repeat("  ", depth) + marker

		var pending strings.Builder
		flush := func() {
			if pending.Len() == 0 {
				return
			}
			r.listItem(out, prefix, pending.String(), width)
			pending.Reset()
			prefix = strings.Repeat(" ", len(prefix))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if pending.Len() > 0 {
					pending.WriteString("\n")
				}
				pending.WriteString(r.inlines(in, source))
			case *ast.List:
				flush()
				r.list(out, in, source, width, depth+1)
			default:
				var nested bytes.Buffer
				r.block(&nested, ic, source, width)
				if pending.Len() > 0 {
					pending.WriteString("\n")
				}
				pending.WriteString(strings.TrimRight(nested.String(), "\n"))
			}
		}
		flush()
	}
}

// listItem writes content after prefix, indenting continuation lines to
// align with the first.
func (r *renderer) listItem(out *bytes.Buffer, prefix, content string, width int) {
	wrapped := wrap(content, max(width-len(prefix), minWrapWidth))
	indent := strings.Repeat(" ", len(prefix))
	for i, line := range strings.Split(wrapped, "\n") {
		if i == 0 {
			writeLine(out, prefix+line)
			continue
		}
		writeLine(out, indent+line)
	}
}

func (r *renderer) table(out *bytes.Buffer, table *east.Table, source []byte) {
	var rows [][]string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			content := r.inlines(cell, source)
			if _, header := row.(*east.TableHeader); header {
				content = r.strong.Render(content)
			}
			cells = append(cells, content)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}

	var widths []int
	for _, cells := range rows {
		for i, c := range cells {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	sep := r.muted.Render(" │ ")
	for i, cells := range rows {
		padded := make([]string, len(widths))
		for j := range widths {
			var c string
			if j < len(cells) {
				c = cells[j]
			}
			padded[j] = c + strings.Repeat(" ", widths[j]-lipgloss.Width(c))
		}
		writeLine(out, strings.TrimRight(strings.Join(padded, sep), " "))
		if i == 0 {
			rules := make([]string, len(widths))
			for j, w := range widths {
				rules[j] = strings.Repeat("─", w)
			}
			writeLine(out, r.muted.Render(strings.Join(rules, "─┼─")))
		}
	}
}

// inlines returns the styled inline content of node's children.
func (r *renderer) inlines(node ast.Node, source []byte) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inline(&b, c, source)
	}
	return b.String()
}

func (r *renderer) inline(b *strings.Builder, node ast.Node, source []byte) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(r.em.Render(r.inlines(n, source)))
			return
		}
		b.WriteString(r.strong.Render(r.inlines(n, source)))

	case *ast.CodeSpan:
		b.WriteString(r.code.Render(r.inlines(n, source)))

	case *east.Strikethrough:
		b.WriteString(r.strike.Render(r.inlines(n, source)))

	case *east.TaskCheckBox:
		if n.IsChecked {
			b.WriteString("[x] ")
			return
		}
		b.WriteString("[ ] ")

	case *ast.Link:
		label := r.inlines(n, source)
		dest := string(n.Destination)
		b.WriteString(r.link.Render(label))
		if label != dest {
			b.WriteString(" " + r.muted.Render("("+dest+")"))
		}

	case *ast.AutoLink:
		b.WriteString(r.link.Render(string(n.URL(source))))

	case *ast.Image:
		b.WriteString(r.muted.Render("[image: " + r.inlines(n, source) + "]"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inline(b, c, source)
		}
	}
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(s)
}

func writeLine(out *bytes.Buffer, s string) {
	out.WriteString(s)
	out.WriteString("\n")
}
