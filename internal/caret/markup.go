// Package caret maps between the inline markup stored in a node's content and the logical
// plain-text offsets used for caret placement, splitting and selection formatting.
//
// Supported markup: <b>/<strong>, <i>/<em>, <u>, <s>/<strike>/<del>, <span data-size="...">
// and <br>. Unknown tags are dropped and their text is kept. Offsets count runes of the plain
// text, where <br> counts as one character.
package caret

import (
	"strings"
	"unicode/utf8"

	"github.com/at-ishikawa/outliner/internal/outline"
	"golang.org/x/net/html"
)

const lineBreak = "\n"

// Format is the inline formatting in effect for a run of text.
type Format struct {
	Bold      bool
	Italic    bool
	Underline bool
	Strike    bool
	// Size is empty for the base size.
	Size outline.Size
}

// Run is a piece of text sharing one format.
type Run struct {
	Text   string
	Format Format
}

// Runs is parsed content.
type Runs []Run

type frame struct {
	tag    string
	format Format
}

// Parse tokenizes content into runs. Entities are decoded and <br> becomes a newline.
func Parse(content string) Runs {
	var runs Runs
	for tok := range tokens(content) {
		if tok.text != "" {
			runs = runs.append(Run{Text: tok.text, Format: tok.format})
		}
	}
	return runs
}

type token struct {
	// text is the decoded text of a text or <br> token, empty for other tokens.
	text string
	// raw is the token as written in content.
	raw    string
	start  int
	format Format
}

// tokens walks content and yields every token with the format in effect.
func tokens(content string) func(yield func(token) bool) {
	return func(yield func(token) bool) {
		z := html.NewTokenizer(strings.NewReader(content))
		var stack []frame
		current := func() Format {
			if len(stack) == 0 {
				return Format{}
			}
			return stack[len(stack)-1].format
		}

		pos := 0
		for {
			tt := z.Next()
			if tt == html.ErrorToken {
				// io.EOF, or a read error which strings.Reader never returns
				return
			}
			raw := string(z.Raw())
			tok := token{raw: raw, start: pos, format: current()}
			pos += len(raw)

			switch tt {
			case html.TextToken:
				tok.text = string(z.Text())
			case html.StartTagToken, html.SelfClosingTagToken:
				name, hasAttr := z.TagName()
				tag := string(name)
				if tag == "br" {
					tok.text = lineBreak
					break
				}
				size := ""
				for hasAttr {
					var key, val []byte
					key, val, hasAttr = z.TagAttr()
					if string(key) == "data-size" {
						size = string(val)
					}
				}
				z.NextIsNotRawText()
				if tt == html.StartTagToken {
					stack = append(stack, frame{tag: tag, format: applyTag(current(), tag, size)})
				}
			case html.EndTagToken:
				name, _ := z.TagName()
				for i := len(stack) - 1; i >= 0; i-- {
					if stack[i].tag == string(name) {
						stack = stack[:i]
						break
					}
				}
			}
			if !yield(tok) {
				return
			}
		}
	}
}

func applyTag(f Format, tag, size string) Format {
	switch tag {
	case "b", "strong":
		f.Bold = true
	case "i", "em":
		f.Italic = true
	case "u":
		f.Underline = true
	case "s", "strike", "del":
		f.Strike = true
	case "span":
		if size != "" {
			f.Size = inlineSize(outline.Size(size))
		}
	}
	return f
}

// inlineSize maps base and unknown sizes to the empty size.
func inlineSize(s outline.Size) outline.Size {
	s = s.Normalize()
	if s == outline.SizeBase {
		return ""
	}
	return s
}

func (r Runs) append(run Run) Runs {
	if run.Text == "" {
		return r
	}
	if n := len(r); n > 0 && r[n-1].Format == run.Format {
		r[n-1].Text += run.Text
		return r
	}
	return append(r, run)
}

// PlainText returns the text without markup.
func (r Runs) PlainText() string {
	var b strings.Builder
	for _, run := range r {
		b.WriteString(run.Text)
	}
	return b.String()
}

// Len returns the number of characters.
func (r Runs) Len() int {
	n := 0
	for _, run := range r {
		n += utf8.RuneCountInString(run.Text)
	}
	return n
}

// SplitAt cuts the runs at a character offset.
func (r Runs) SplitAt(offset int) (Runs, Runs) {
	var head, tail Runs
	remaining := offset
	for _, run := range r {
		n := utf8.RuneCountInString(run.Text)
		switch {
		case remaining <= 0:
			tail = tail.append(run)
		case remaining >= n:
			head = head.append(run)
		default:
			runes := []rune(run.Text)
			head = head.append(Run{Text: string(runes[:remaining]), Format: run.Format})
			tail = tail.append(Run{Text: string(runes[remaining:]), Format: run.Format})
		}
		remaining -= n
	}
	return head, tail
}

type openTag struct {
	name  string
	open  string
	close string
}

func tagsFor(f Format) []openTag {
	var tags []openTag
	if f.Size != "" {
		tags = append(tags, openTag{
			name:  "span:" + string(f.Size),
			open:  `<span data-size="` + string(f.Size) + `">`,
			close: "</span>",
		})
	}
	if f.Bold {
		tags = append(tags, openTag{name: "b", open: "<b>", close: "</b>"})
	}
	if f.Italic {
		tags = append(tags, openTag{name: "i", open: "<i>", close: "</i>"})
	}
	if f.Underline {
		tags = append(tags, openTag{name: "u", open: "<u>", close: "</u>"})
	}
	if f.Strike {
		tags = append(tags, openTag{name: "s", open: "<s>", close: "</s>"})
	}
	return tags
}

// Render writes the runs back as canonical markup. Tags nest in a fixed order and are kept
// open across runs that share them.
func (r Runs) Render() string {
	var b strings.Builder
	var open []openTag
	for _, run := range r {
		want := tagsFor(run.Format)
		common := 0
		for common < len(open) && common < len(want) && open[common].name == want[common].name {
			common++
		}
		for i := len(open) - 1; i >= common; i-- {
			b.WriteString(open[i].close)
		}
		for _, t := range want[common:] {
			b.WriteString(t.open)
		}
		open = want
		writeText(&b, run.Text)
	}
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString(open[i].close)
	}
	return b.String()
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", lineBreak, "<br>")

func writeText(b *strings.Builder, text string) {
	_, _ = textEscaper.WriteString(b, text)
}

// PlainText returns content without markup.
func PlainText(content string) string {
	if !hasMarkup(content) {
		return content
	}
	return Parse(content).PlainText()
}

// Length returns the number of characters of content.
func Length(content string) int {
	if !hasMarkup(content) {
		return utf8.RuneCountInString(content)
	}
	return Parse(content).Len()
}

func hasMarkup(content string) bool {
	return strings.ContainsAny(content, "<&")
}
