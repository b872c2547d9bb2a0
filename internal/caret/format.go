package caret

import (
	"fmt"

	"github.com/at-ishikawa/outliner/internal/outline"
)

// Split cuts content at a character offset. Markup is closed in the head and reopened in
// the tail; content without markup is cut byte for byte. ok is false for offsets outside
// the content.
func Split(content string, offset int) (head, tail string, ok bool) {
	if !hasMarkup(content) {
		return outline.SplitRunes(content, offset)
	}
	runs := Parse(content)
	if offset < 0 || offset > runs.Len() {
		return "", "", false
	}
	h, t := runs.SplitAt(offset)
	return h.Render(), t.Render(), true
}

// Join concatenates two contents the way merging nodes does. The join space is decided on
// the plain text, and adjacent runs sharing a format are rendered as one.
func Join(head, tail string) string {
	if !hasMarkup(head) && !hasMarkup(tail) {
		return outline.JoinContent(head, tail)
	}
	h, t := Parse(head), Parse(tail)
	if len(h) == 0 {
		return tail
	}
	if len(t) == 0 {
		return head
	}
	if outline.JoinContent(h.PlainText(), t.PlainText()) != h.PlainText()+t.PlainText() {
		h = h.append(Run{Text: " ", Format: h[len(h)-1].Format})
	}
	for _, run := range t {
		h = h.append(run)
	}
	return h.Render()
}

// Command is a selection formatting command.
type Command string

const (
	Bold          Command = "bold"
	Italic        Command = "italic"
	Underline     Command = "underline"
	Strikethrough Command = "strikethrough"
	SizeUp        Command = "size_up"
	SizeDown      Command = "size_down"
)

// Commands lists every supported command.
var Commands = []Command{Bold, Italic, Underline, Strikethrough, SizeUp, SizeDown}

// ParseCommand validates a command name.
func ParseCommand(name string) (Command, error) {
	for _, c := range Commands {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown format command %q", name)
}

type styledRune struct {
	r      rune
	format Format
}

// Apply runs cmd over the selection. A collapsed caret is widened to its word first, and the
// returned selection is collapsed at the end of the formatted range. Flag commands remove
// the flag when every selected character already has it and add it otherwise.
// ok is false, and content is returned unchanged, when the selection does not fit the
// content or covers no characters.
func Apply(content string, sel Selection, cmd Command) (string, Selection, bool) {
	sel.Total = Length(content)
	if !sel.Valid() {
		return content, sel, false
	}
	sel = ExpandToWord(content, sel)
	if sel.Collapsed() {
		return content, sel, false
	}

	var chars []styledRune
	for _, run := range Parse(content) {
		for _, r := range run.Text {
			chars = append(chars, styledRune{r: r, format: run.Format})
		}
	}
	if len(chars) != sel.Total {
		return content, sel, false
	}
	selected := chars[sel.Start:sel.End]

	switch cmd {
	case Bold, Italic, Underline, Strikethrough:
		all := true
		for _, c := range selected {
			all = all && flag(&c.format, cmd)
		}
		for i := range selected {
			*flagPtr(&selected[i].format, cmd) = !all
		}
	case SizeUp, SizeDown:
		delta := 1
		if cmd == SizeDown {
			delta = -1
		}
		for i := range selected {
			size := selected[i].format.Size
			if size == "" {
				size = outline.SizeBase
			}
			selected[i].format.Size = inlineSize(size.Step(delta))
		}
	default:
		return content, sel, false
	}

	var runs Runs
	for _, c := range chars {
		runs = runs.append(Run{Text: string(c.r), Format: c.format})
	}
	return runs.Render(), Selection{Start: sel.End, End: sel.End, Total: sel.Total}, true
}

func flag(f *Format, cmd Command) bool {
	return *flagPtr(f, cmd)
}

func flagPtr(f *Format, cmd Command) *bool {
	switch cmd {
	case Italic:
		return &f.Italic
	case Underline:
		return &f.Underline
	case Strikethrough:
		return &f.Strike
	default:
		return &f.Bold
	}
}
