package caret

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// ErrOffsetOutOfRange is returned when an offset does not fall inside the content.
var ErrOffsetOutOfRange = errors.New("offset out of range")

// Selection is a range of character offsets into the plain text of a node.
// Start == End is a collapsed caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Total int `json:"total,omitempty"`
}

// NewSelection returns a selection over content.
func NewSelection(content string, start, end int) Selection {
	return Selection{Start: start, End: end, Total: Length(content)}
}

// Caret returns a collapsed selection at offset.
func Caret(content string, offset int) Selection {
	return NewSelection(content, offset, offset)
}

func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// AtStart reports whether the caret is collapsed at offset 0.
func (s Selection) AtStart() bool {
	return s.Collapsed() && s.Start == 0
}

// AtEnd reports whether the caret is collapsed after the last character.
func (s Selection) AtEnd() bool {
	return s.Collapsed() && s.End == s.Total
}

func (s Selection) Valid() bool {
	return 0 <= s.Start && s.Start <= s.End && s.End <= s.Total
}

// Clamp orders the bounds and pulls them into [0, Total].
func (s Selection) Clamp() Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	s.Start = clamp(s.Start, 0, s.Total)
	s.End = clamp(s.End, 0, s.Total)
	return s
}

// ExpandToWord widens a collapsed caret to the whitespace-delimited word around it.
// Selections that are not collapsed are returned as they are. A caret surrounded by
// whitespace stays collapsed.
func ExpandToWord(content string, sel Selection) Selection {
	runes := []rune(PlainText(content))
	sel.Total = len(runes)
	if !sel.Collapsed() || !sel.Valid() {
		return sel
	}
	start, end := sel.Start, sel.End
	for start > 0 && !unicode.IsSpace(runes[start-1]) {
		start--
	}
	for end < len(runes) && !unicode.IsSpace(runes[end]) {
		end++
	}
	return Selection{Start: start, End: end, Total: sel.Total}
}

// Position is a place inside formatted content.
type Position struct {
	// Byte is the index into the content where the caret goes.
	Byte int
	// Format is the formatting of the character before the caret, or of the first
	// character for offset 0.
	Format Format
}

// PositionAt maps a character offset back into the formatted content.
func PositionAt(content string, offset int) (Position, error) {
	if offset < 0 {
		return Position{}, fmt.Errorf("PositionAt(%d) > %w", offset, ErrOffsetOutOfRange)
	}
	if !hasMarkup(content) {
		runes := []rune(content)
		if offset > len(runes) {
			return Position{}, fmt.Errorf("PositionAt(%d) > %w", offset, ErrOffsetOutOfRange)
		}
		return Position{Byte: len(string(runes[:offset]))}, nil
	}

	remaining := offset
	var result *Position
	for tok := range tokens(content) {
		if tok.text == "" {
			continue
		}
		if remaining == 0 {
			result = &Position{Byte: tok.start, Format: tok.format}
			break
		}
		ends := runeEnds(tok.raw, tok.text)
		if remaining <= len(ends) {
			result = &Position{Byte: tok.start + ends[remaining-1], Format: tok.format}
			break
		}
		remaining -= len(ends)
	}
	if result != nil {
		return *result, nil
	}
	if remaining == 0 {
		return Position{Byte: len(content)}, nil
	}
	return Position{}, fmt.Errorf("PositionAt(%d) > %w", offset, ErrOffsetOutOfRange)
}

// runeEnds returns, for every decoded character of a token, the byte offset in raw just
// after it. Entities map to the end of the entity.
func runeEnds(raw, text string) []int {
	if text == lineBreak && strings.HasPrefix(raw, "<") {
		return []int{len(raw)}
	}
	var ends []int
	for i := 0; i < len(raw); {
		if raw[i] == '&' {
			if j := strings.IndexByte(raw[i:], ';'); j > 0 && j <= 32 {
				entity := raw[i : i+j+1]
				if decoded := html.UnescapeString(entity); decoded != entity {
					for range decoded {
						ends = append(ends, i+j+1)
					}
					i += j + 1
					continue
				}
			}
		}
		_, size := utf8.DecodeRuneInString(raw[i:])
		i += size
		ends = append(ends, i)
	}
	// The tokenizer normalizes some input; never report more characters than it decoded.
	if n := utf8.RuneCountInString(text); len(ends) > n {
		ends = ends[:n]
	}
	for len(ends) < utf8.RuneCountInString(text) {
		ends = append(ends, len(raw))
	}
	return ends
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
