// Package export renders the visible part of an outline as a document.
package export

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/at-ishikawa/outliner/internal/caret"
	"github.com/at-ishikawa/outliner/internal/outline"
)

type BulletStyle string

const (
	BulletDisc   BulletStyle = "disc"
	BulletDash   BulletStyle = "dash"
	BulletNumber BulletStyle = "number"
	BulletNone   BulletStyle = "none"
)

var BulletStyles = []BulletStyle{BulletDisc, BulletDash, BulletNumber, BulletNone}

type FontFamily string

const (
	FontSans  FontFamily = "sans"
	FontSerif FontFamily = "serif"
	FontMono  FontFamily = "mono"
)

var FontFamilies = []FontFamily{FontSans, FontSerif, FontMono}

// Options configures a rendering.
type Options struct {
	Bullet BulletStyle
	Font   FontFamily
	Title  string
	// FocusID limits the output to the subtree of one node.
	FocusID string
}

// ParseBulletStyle validates a bullet style name; empty means disc.
func ParseBulletStyle(name string) (BulletStyle, error) {
	if name == "" {
		return BulletDisc, nil
	}
	for _, b := range BulletStyles {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown bullet style %q", name)
}

// ParseFontFamily validates a font family name; empty means sans.
func ParseFontFamily(name string) (FontFamily, error) {
	if name == "" {
		return FontSans, nil
	}
	for _, f := range FontFamilies {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font family %q", name)
}

// Markdown renders the visible forest, children of collapsed nodes left out, as nested lists.
func Markdown(f outline.Forest, opts Options) string {
	if opts.Bullet == "" {
		opts.Bullet = BulletDisc
	}
	var b strings.Builder
	if opts.Title != "" {
		b.WriteString("# ")
		b.WriteString(escape(opts.Title))
		b.WriteString("\n\n")
	}
	visible := outline.VisibleForest(outline.FocusSubtree(f, opts.FocusID))
	if opts.Bullet == BulletNone {
		writeParagraphs(&b, visible, 0)
	} else {
		writeList(&b, visible, opts.Bullet, "")
	}
	return b.String()
}

func marker(bullet BulletStyle, index int) string {
	switch bullet {
	case BulletNumber:
		return fmt.Sprintf("%d. ", index+1)
	case BulletDash:
		return "- – "
	default:
		return "- "
	}
}

func writeList(b *strings.Builder, nodes []*outline.Node, bullet BulletStyle, indent string) {
	for i, n := range nodes {
		m := marker(bullet, i)
		// Continuation lines and children line up with the item text.
		inner := indent + strings.Repeat(" ", len(strings.SplitN(m, " ", 2)[0])+1)
		b.WriteString(indent)
		b.WriteString(m)
		b.WriteString(strings.ReplaceAll(itemText(n), "\n", "  \n"+inner))
		b.WriteString("\n")
		writeList(b, n.Children, bullet, inner)
	}
}

func writeParagraphs(b *strings.Builder, nodes []*outline.Node, depth int) {
	quote := strings.Repeat("> ", depth)
	for _, n := range nodes {
		b.WriteString(quote)
		b.WriteString(strings.ReplaceAll(itemText(n), "\n", "  \n"+quote))
		b.WriteString("\n\n")
		writeParagraphs(b, n.Children, depth+1)
	}
}

func itemText(n *outline.Node) string {
	text := Inline(n.Content)
	if n.Style.Bold {
		text = wrap(text, "**")
	}
	if n.Style.Italic {
		text = wrap(text, "*")
	}
	switch {
	case n.Check.Checked():
		text = "[x] " + text
	case n.Check.IsChecklist():
		text = "[ ] " + text
	}
	return text
}

// Inline converts node markup to markdown emphasis. Underline and size have no markdown form
// and are dropped, keeping the text.
func Inline(content string) string {
	var b strings.Builder
	for _, run := range caret.Parse(content) {
		text := escape(run.Text)
		if run.Format.Strike {
			text = wrap(text, "~~")
		}
		if run.Format.Italic {
			text = wrap(text, "*")
		}
		if run.Format.Bold {
			text = wrap(text, "**")
		}
		b.WriteString(text)
	}
	return b.String()
}

// wrap puts markers around text, keeping surrounding whitespace outside of them so the
// emphasis still parses.
func wrap(text, marker string) string {
	trimmed := strings.TrimFunc(text, unicode.IsSpace)
	if trimmed == "" {
		return text
	}
	start := strings.Index(text, trimmed)
	return text[:start] + marker + trimmed + marker + text[start+len(trimmed):]
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"~", `\~`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
)

func escape(text string) string {
	return escaper.Replace(text)
}
