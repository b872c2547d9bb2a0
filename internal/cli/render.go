package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/outliner/internal/caret"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// RenderOptions controls how a forest is printed.
type RenderOptions struct {
	// All prints the children of collapsed nodes too.
	All     bool
	FocusID string
	ShowIDs bool
	// ShowCaret marks CaretOffset inside the focused node.
	ShowCaret   bool
	CaretOffset int
}

const caretMark = "|"


// TreeRenderer prints an outline as an indented list with terminal styling.
type TreeRenderer struct {
	faint  *color.Color
	cursor *color.Color
}

func NewTreeRenderer() *TreeRenderer {
	return &TreeRenderer{
		faint:  color.New(color.Faint),
		cursor: color.New(color.FgCyan, color.Bold),
	}
}

// Render writes one line per printed node.
func (r *TreeRenderer) Render(w io.Writer, f outline.Forest, opts RenderOptions) error {
	var b strings.Builder
	r.writeNodes(&b, f, 0, opts)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("io.WriteString() > %w", err)
	}
	return nil
}

func (r *TreeRenderer) writeNodes(b *strings.Builder, nodes []*outline.Node, depth int, opts RenderOptions) {
	for _, n := range nodes {
		indent := strings.Repeat("  ", depth)
		if n.ID == opts.FocusID {
			b.WriteString(r.cursor.Sprint(">"))
			b.WriteString(" ")
		} else {
			b.WriteString("  ")
		}
		b.WriteString(indent)

		hidden := n.Collapsed && n.HasChildren()
		if hidden {
			b.WriteString("▸ ")
		} else {
			b.WriteString("• ")
		}
		switch {
		case n.Check.Checked():
			b.WriteString("[x] ")
		case n.Check.IsChecklist():
			b.WriteString("[ ] ")
		}

		content := n.Content
		if opts.ShowCaret && n.ID == opts.FocusID {
			content = withCaret(content, opts.CaretOffset)
		}
		text := r.styledText(n, content)
		b.WriteString(strings.ReplaceAll(text, "\n", "\n"+indent+"    "))

		if hidden && !opts.All {
			b.WriteString(r.faint.Sprintf(" (+%d)", outline.DescendantCount(n)))
		}
		if opts.ShowIDs {
			b.WriteString(r.faint.Sprintf("  #%s", n.ID))
		}
		b.WriteString("\n")

		if !n.Collapsed || opts.All {
			r.writeNodes(b, n.Children, depth+1, opts)
		}
	}
}

// withCaret inserts the caret mark at a character offset. An offset the content does not
// have leaves it unmarked.
func withCaret(content string, offset int) string {
	pos, err := caret.PositionAt(content, offset)
	if err != nil {
		return content
	}
	return content[:pos.Byte] + caretMark + content[pos.Byte:]
}

func (r *TreeRenderer) styledText(n *outline.Node, content string) string {
	var b strings.Builder
	for _, run := range caret.Parse(content) {
		var attrs []color.Attribute
		if run.Format.Bold || n.Style.Bold {
			attrs = append(attrs, color.Bold)
		}
		if run.Format.Italic || n.Style.Italic {
			attrs = append(attrs, color.Italic)
		}
		if run.Format.Underline || n.Style.Underline {
			attrs = append(attrs, color.Underline)
		}
		if run.Format.Strike || n.Check.Checked() {
			attrs = append(attrs, color.CrossedOut)
		}
		if len(attrs) == 0 {
			b.WriteString(run.Text)
			continue
		}
		b.WriteString(color.New(attrs...).Sprint(run.Text))
	}
	return b.String()
}
