package caret

import (
	"testing"

	"github.com/at-ishikawa/outliner/internal/outline"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Runs
	}{
		{
			name:    "plain text",
			content: "hello",
			want:    Runs{{Text: "hello"}},
		},
		{
			name:    "bold prefix",
			content: "<b>he</b>llo",
			want:    Runs{{Text: "he", Format: Format{Bold: true}}, {Text: "llo"}},
		},
		{
			name:    "nested aliases",
			content: "<strong><em>x</em></strong>",
			want:    Runs{{Text: "x", Format: Format{Bold: true, Italic: true}}},
		},
		{
			name:    "line break is one character",
			content: "a<br>b",
			want:    Runs{{Text: "a\nb"}},
		},
		{
			name:    "size span",
			content: `<span data-size="lg">big</span>`,
			want:    Runs{{Text: "big", Format: Format{Size: outline.SizeLarge}}},
		},
		{
			name:    "base size span is no size",
			content: `<span data-size="base">x</span>`,
			want:    Runs{{Text: "x"}},
		},
		{
			name:    "entities are decoded",
			content: "a &amp; b",
			want:    Runs{{Text: "a & b"}},
		},
		{
			name:    "unknown tags keep their text",
			content: "<font>kept</font>",
			want:    Runs{{Text: "kept"}},
		},
		{
			name:    "unclosed tag runs to the end",
			content: "<u>open",
			want:    Runs{{Text: "open", Format: Format{Underline: true}}},
		},
		{
			name:    "strike aliases",
			content: "<del>a</del><strike>b</strike><s>c</s>",
			want:    Runs{{Text: "abc", Format: Format{Strike: true}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.content))
		})
	}
}

func TestRuns_Render(t *testing.T) {
	tests := []struct {
		name string
		runs Runs
		want string
	}{
		{
			name: "closes tags between runs",
			runs: Runs{{Text: "he", Format: Format{Bold: true}}, {Text: "llo"}},
			want: "<b>he</b>llo",
		},
		{
			name: "keeps shared tags open",
			runs: Runs{{Text: "a", Format: Format{Bold: true}}, {Text: "b", Format: Format{Bold: true, Italic: true}}},
			want: "<b>a<i>b</i></b>",
		},
		{
			name: "size span is outermost",
			runs: Runs{{Text: "x", Format: Format{Bold: true, Size: outline.SizeLarge}}},
			want: `<span data-size="lg"><b>x</b></span>`,
		},
		{
			name: "escapes text and writes line breaks",
			runs: Runs{{Text: "a<b & c\nd"}},
			want: "a&lt;b &amp; c<br>d",
		},
		{
			name: "empty",
			runs: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.runs.Render())
		})
	}
}

func TestLengthAndPlainText(t *testing.T) {
	tests := []struct {
		content   string
		wantLen   int
		wantPlain string
	}{
		{content: "hello", wantLen: 5, wantPlain: "hello"},
		{content: "<b>he</b>llo", wantLen: 5, wantPlain: "hello"},
		{content: "a<br>b", wantLen: 3, wantPlain: "a\nb"},
		{content: "日本", wantLen: 2, wantPlain: "日本"},
		{content: "a &amp; b", wantLen: 5, wantPlain: "a & b"},
		{content: "", wantLen: 0, wantPlain: ""},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.wantLen, Length(tt.content))
			assert.Equal(t, tt.wantPlain, PlainText(tt.content))
		})
	}
}
