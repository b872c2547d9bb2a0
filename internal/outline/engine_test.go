package outline

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestEngine() *Engine {
	seq := 0
	return NewEngine(
		WithClock(func() time.Time { return testNow }),
		WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("n%d", seq)
		}),
	)
}

func node(id, content string, children ...*Node) *Node {
	n := &Node{ID: id, Content: content, Style: DefaultStyle(), Children: children}
	for _, c := range children {
		c.ParentID = id
	}
	return n
}

// shape renders ids, contents and nesting, one node per line.
func shape(f Forest) string {
	var b strings.Builder
	f.Walk(func(n *Node, depth int) bool {
		fmt.Fprintf(&b, "%s%s:%s\n", strings.Repeat("  ", depth), n.ID, n.Content)
		return true
	})
	return b.String()
}

func assertParents(t *testing.T, f Forest) {
	t.Helper()
	var check func(nodes []*Node, parentID string)
	check = func(nodes []*Node, parentID string) {
		for _, n := range nodes {
			assert.Equal(t, parentID, n.ParentID, "parent of %s", n.ID)
			check(n.Children, n.ID)
		}
	}
	check(f, "")
}

func TestEngine_SplitAtOffset(t *testing.T) {
	tests := []struct {
		name      string
		forest    func() Forest
		id        string
		offset    int
		want      string
		wantNewID string
	}{
		{
			name:      "split hello at 2",
			forest:    func() Forest { return Forest{node("A", "hello")} },
			id:        "A",
			offset:    2,
			want:      "A:he\nn1:llo\n",
			wantNewID: "n1",
		},
		{
			name:      "split at end creates an empty node",
			forest:    func() Forest { return Forest{node("A", "hello")} },
			id:        "A",
			offset:    5,
			want:      "A:hello\nn1:\n",
			wantNewID: "n1",
		},
		{
			name:      "children stay with the head",
			forest:    func() Forest { return Forest{node("A", "ab", node("X", "x")), node("B", "b")} },
			id:        "A",
			offset:    1,
			want:      "A:a\n  X:x\nn1:b\nB:b\n",
			wantNewID: "n1",
		},
		{
			name:      "nested node splits at its own level",
			forest:    func() Forest { return Forest{node("A", "a", node("X", "xy"))} },
			id:        "X",
			offset:    1,
			want:      "A:a\n  X:x\n  n1:y\n",
			wantNewID: "n1",
		},
		{
			name:   "offset out of range is a no-op",
			forest: func() Forest { return Forest{node("A", "hello")} },
			id:     "A",
			offset: 6,
			want:   "A:hello\n",
		},
		{
			name:   "unknown id is a no-op",
			forest: func() Forest { return Forest{node("A", "hello")} },
			id:     "missing",
			offset: 1,
			want:   "A:hello\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			got, newID := e.SplitAtOffset(tt.forest(), tt.id, tt.offset)
			assert.Equal(t, tt.want, shape(got))
			assert.Equal(t, tt.wantNewID, newID)
			assertParents(t, got)
			if newID != "" {
				created, ok := got.Find(newID)
				require.True(t, ok)
				assert.Empty(t, created.Children)
				assert.Equal(t, testNow, created.CreatedAt)
			}
		})
	}
}

func TestEngine_SplitAtOffset_InheritsStyleAndChecklist(t *testing.T) {
	e := newTestEngine()
	a := node("A", "todo item")
	a.Style = Style{Bold: true, Size: SizeLarge}
	a.Check = CheckDone

	got, newID := e.SplitAtOffset(Forest{a}, "A", 4)
	created, ok := got.Find(newID)
	require.True(t, ok)
	assert.Equal(t, Style{Bold: true, Size: SizeLarge}, created.Style)
	assert.Equal(t, CheckOpen, created.Check)
	assert.Equal(t, " item", created.Content)
}

func TestEngine_Indent(t *testing.T) {
	tests := []struct {
		name   string
		forest func() Forest
		id     string
		want   string
	}{
		{
			name: "becomes last child of previous sibling",
			forest: func() Forest {
				return Forest{node("A", "foo", node("X", "x")), node("B", "bar")}
			},
			id:   "B",
			want: "A:foo\n  X:x\n  B:bar\n",
		},
		{
			name: "children travel with the node",
			forest: func() Forest {
				return Forest{node("A", "a"), node("B", "b", node("Y", "y"))}
			},
			id:   "B",
			want: "A:a\n  B:b\n    Y:y\n",
		},
		{
			name: "first child is a no-op",
			forest: func() Forest {
				return Forest{node("A", "a", node("X", "x")), node("B", "b")}
			},
			id:   "X",
			want: "A:a\n  X:x\nB:b\n",
		},
		{
			name:   "first root is a no-op",
			forest: func() Forest { return Forest{node("A", "a"), node("B", "b")} },
			id:     "A",
			want:   "A:a\nB:b\n",
		},
		{
			name:   "unknown id is a no-op",
			forest: func() Forest { return Forest{node("A", "a"), node("B", "b")} },
			id:     "missing",
			want:   "A:a\nB:b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestEngine().Indent(tt.forest(), tt.id)
			assert.Equal(t, tt.want, shape(got))
			assertParents(t, got)
		})
	}
}

func TestEngine_Indent_ExpandsCollapsedParent(t *testing.T) {
	a := node("A", "a", node("X", "x"))
	a.Collapsed = true
	got := newTestEngine().Indent(Forest{a, node("B", "b")}, "B")

	require.Len(t, got, 1)
	assert.False(t, got[0].Collapsed)
	assert.True(t, a.Collapsed, "input must not change")
	assert.Equal(t, []string{"A", "X", "B"}, ids(FlattenVisible(got)))
}

func TestEngine_Outdent(t *testing.T) {
	tests := []struct {
		name   string
		forest func() Forest
		id     string
		want   string
	}{
		{
			name:   "only child moves after its parent",
			forest: func() Forest { return Forest{node("A", "a", node("C", "x"))} },
			id:     "C",
			want:   "A:a\nC:x\n",
		},
		{
			name: "subsequent siblings stay with the parent",
			forest: func() Forest {
				return Forest{node("A", "a", node("X", "x"), node("Y", "y"), node("Z", "z")), node("B", "b")}
			},
			id:   "Y",
			want: "A:a\n  X:x\n  Z:z\nY:y\nB:b\n",
		},
		{
			name: "nested node moves one level up",
			forest: func() Forest {
				return Forest{node("A", "a", node("X", "x", node("Q", "q")))}
			},
			id:   "Q",
			want: "A:a\n  X:x\n  Q:q\n",
		},
		{
			name:   "root is a no-op",
			forest: func() Forest { return Forest{node("A", "a"), node("B", "b")} },
			id:     "B",
			want:   "A:a\nB:b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestEngine().Outdent(tt.forest(), tt.id)
			assert.Equal(t, tt.want, shape(got))
			assertParents(t, got)
		})
	}
}

func TestEngine_MergeIntoPrevious(t *testing.T) {
	tests := []struct {
		name   string
		forest func() Forest
		id     string
		want   string
	}{
		{
			name:   "space is inserted between non-whitespace ends",
			forest: func() Forest { return Forest{node("A", "foo"), node("B", "bar")} },
			id:     "B",
			want:   "A:foo bar\n",
		},
		{
			name:   "trailing whitespace joins directly",
			forest: func() Forest { return Forest{node("A", "foo "), node("B", "bar")} },
			id:     "B",
			want:   "A:foo bar\n",
		},
		{
			name:   "empty source joins directly",
			forest: func() Forest { return Forest{node("A", "foo"), node("B", "")} },
			id:     "B",
			want:   "A:foo\n",
		},
		{
			name: "children are reattached under the previous node",
			forest: func() Forest {
				return Forest{node("A", "a", node("X", "x")), node("B", "b", node("Y", "y"))}
			},
			id:   "B",
			want: "A:a\n  X:x b\n    Y:y\n",
		},
		{
			name: "previous in document order is the deepest last descendant",
			forest: func() Forest {
				return Forest{node("A", "a", node("X", "x")), node("B", "b")}
			},
			id:   "B",
			want: "A:a\n  X:x b\n",
		},
		{
			name:   "first node is a no-op",
			forest: func() Forest { return Forest{node("A", "a"), node("B", "b")} },
			id:     "A",
			want:   "A:a\nB:b\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newTestEngine().MergeIntoPrevious(tt.forest(), tt.id)
			assert.Equal(t, tt.want, shape(got))
			assertParents(t, got)
		})
	}
}

func TestEngine_Merge(t *testing.T) {
	tests := []struct {
		name   string
		target string
		source string
		want   string
	}{
		{
			name:   "source children follow the target's children",
			target: "A",
			source: "B",
			want:   "A:a b\n  X:x\n  Y:y\n",
		},
		{
			name:   "merge into itself is a no-op",
			target: "A",
			source: "A",
			want:   "A:a\n  X:x\nB:b\n  Y:y\n",
		},
		{
			name:   "merge into own descendant is a no-op",
			target: "Y",
			source: "B",
			want:   "A:a\n  X:x\nB:b\n  Y:y\n",
		},
		{
			name:   "unknown target is a no-op",
			target: "missing",
			source: "B",
			want:   "A:a\n  X:x\nB:b\n  Y:y\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Forest{node("A", "a", node("X", "x")), node("B", "b", node("Y", "y"))}
			got := newTestEngine().Merge(f, tt.target, tt.source)
			assert.Equal(t, tt.want, shape(got))
			assertParents(t, got)
		})
	}
}

func TestJoinContent(t *testing.T) {
	tests := []struct {
		name string
		head string
		tail string
		want string
	}{
		{name: "both non-whitespace", head: "foo", tail: "bar", want: "foo bar"},
		{name: "head ends with space", head: "foo ", tail: "bar", want: "foo bar"},
		{name: "tail starts with space", head: "foo", tail: " bar", want: "foo bar"},
		{name: "head ends with newline", head: "foo\n", tail: "bar", want: "foo\nbar"},
		{name: "empty head", head: "", tail: "bar", want: "bar"},
		{name: "empty tail", head: "foo", tail: "", want: "foo"},
		{name: "multibyte runes", head: "日本", tail: "語", want: "日本 語"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JoinContent(tt.head, tt.tail))
		})
	}
}

func TestEngine_InsertAfterAndDelete(t *testing.T) {
	e := newTestEngine()
	f := Forest{node("A", "a", node("X", "x")), node("B", "b")}

	inserted := e.InsertAfter(f, "X", e.NewNode("new"))
	assert.Equal(t, "A:a\n  X:x\n  n1:new\nB:b\n", shape(inserted))
	assertParents(t, inserted)

	assert.Equal(t, shape(f), shape(e.InsertAfter(f, "missing", e.NewNode("lost"))))
	assert.Equal(t, shape(f), shape(e.InsertAfter(f, "A", nil)))

	deleted := e.DeleteNode(inserted, "A")
	assert.Equal(t, "B:b\n", shape(deleted))
	assert.Equal(t, shape(inserted), shape(e.DeleteNode(inserted, "missing")))
}

func TestEngine_AttachChild(t *testing.T) {
	e := newTestEngine()
	f := Forest{node("A", "a", node("X", "x"))}

	got := e.AttachChild(f, "A", e.NewNode("child"))
	assert.Equal(t, "A:a\n  X:x\n  n1:child\n", shape(got))
	assertParents(t, got)
	assert.Len(t, f[0].Children, 1, "input must not change")
}

func TestEngine_Move(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		parentID string
		index    int
		want     string
	}{
		{
			name:     "to root at index 0",
			id:       "Y",
			parentID: "",
			index:    0,
			want:     "Y:y\nA:a\n  X:x\nB:b\n",
		},
		{
			name:     "under another parent with clamped index",
			id:       "X",
			parentID: "B",
			index:    99,
			want:     "A:a\nB:b\n  Y:y\n  X:x\n",
		},
		{
			name:     "under own descendant is a no-op",
			id:       "B",
			parentID: "Y",
			index:    0,
			want:     "A:a\n  X:x\nB:b\n  Y:y\n",
		},
		{
			name:     "under itself is a no-op",
			id:       "B",
			parentID: "B",
			index:    0,
			want:     "A:a\n  X:x\nB:b\n  Y:y\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Forest{node("A", "a", node("X", "x")), node("B", "b", node("Y", "y"))}
			got := newTestEngine().Move(f, tt.id, tt.parentID, tt.index)
			assert.Equal(t, tt.want, shape(got))
			assertParents(t, got)
		})
	}
}

func TestEngine_UpdateContent_SharesUntouchedSubtrees(t *testing.T) {
	var tick int
	e := NewEngine(WithClock(func() time.Time {
		tick++
		return testNow.Add(time.Duration(tick) * time.Minute)
	}))
	f := Forest{node("A", "a", node("X", "x")), node("B", "b", node("Y", "y"), node("Z", "z"))}

	got := e.UpdateContent(f, "Y", "changed")

	assert.Same(t, f[0], got[0], "untouched root is shared")
	assert.NotSame(t, f[1], got[1], "ancestor is copied")
	assert.NotSame(t, f[1].Children[0], got[1].Children[0])
	assert.Same(t, f[1].Children[1], got[1].Children[1], "untouched sibling is shared")
	assert.Equal(t, "y", f[1].Children[0].Content, "input must not change")
	assert.Equal(t, "changed", got[1].Children[0].Content)
	assert.True(t, got[1].Children[0].UpdatedAt.After(testNow))
	assert.Equal(t, f.IDs(), got.IDs())

	same := e.UpdateContent(got, "Y", "changed")
	assert.Same(t, got[1].Children[0], same[1].Children[0], "unchanged content keeps the node")
}

func TestEngine_IndentOutdentInverse(t *testing.T) {
	fixture := func() Forest {
		return Forest{
			node("A", "a", node("X", "x"), node("Y", "y", node("Q", "q")), node("Z", "z")),
			node("B", "b"),
			node("C", "c", node("W", "w")),
		}
	}
	e := newTestEngine()
	original := shape(fixture())

	for _, id := range fixture().IDs() {
		f := fixture()
		path := f.Path(id)
		siblings := []*Node(f)
		if len(path) > 1 {
			siblings = path[len(path)-2].Children
		}
		if IndexOf(siblings, id) <= 0 {
			continue
		}
		t.Run(id, func(t *testing.T) {
			indented := e.Indent(f, id)
			require.NotEqual(t, original, shape(indented))
			restored := e.Outdent(indented, id)
			assert.Equal(t, original, shape(restored))
			assertParents(t, restored)
		})
	}
}

func TestEngine_IndentOutdentIntoCollapsedSibling(t *testing.T) {
	e := newTestEngine()
	f := Forest{node("A", "a", node("X", "x")), node("B", "b")}
	f[0].Collapsed = true

	indented := e.Indent(f, "B")
	a, _ := indented.Find("A")
	assert.False(t, a.Collapsed, "the new parent is expanded so B stays visible")
	assert.Equal(t, []string{"A", "X", "B"}, ids(FlattenVisible(indented)))

	restored := e.Outdent(indented, "B")
	assert.Equal(t, shape(f), shape(restored))
	assertParents(t, restored)
	a, _ = restored.Find("A")
	assert.False(t, a.Collapsed, "outdent does not collapse the old parent again")
	assert.True(t, f[0].Collapsed, "input is untouched")
}

func TestEngine_MergeBumpsReattachedChildren(t *testing.T) {
	e := newTestEngine()
	f := Forest{node("A", "a"), node("B", "b", node("Y", "y", node("Q", "q")))}

	merged := e.Merge(f, "A", "B")

	a, _ := merged.Find("A")
	y, _ := merged.Find("Y")
	q, _ := merged.Find("Q")
	assert.Equal(t, testNow, a.UpdatedAt)
	assert.Equal(t, "A", y.ParentID)
	assert.Equal(t, testNow, y.UpdatedAt)
	assert.True(t, q.UpdatedAt.IsZero(), "grandchildren keep their place and timestamp")
}

func TestEngine_WithJoiner(t *testing.T) {
	e := NewEngine(WithJoiner(func(head, tail string) string { return head + "|" + tail }))
	f := Forest{node("A", "a"), node("B", "b")}

	merged := e.MergeIntoPrevious(f, "B")
	assert.Equal(t, "A:a|b\n", shape(merged))
}

func TestEngine_SplitMergeInverse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		offset  int
		want    string
	}{
		{name: "at start", content: "hello world", offset: 0, want: "hello world"},
		{name: "before the space", content: "hello world", offset: 5, want: "hello world"},
		{name: "after the space", content: "hello world", offset: 6, want: "hello world"},
		{name: "at end", content: "hello world", offset: 11, want: "hello world"},
		{name: "inside a word gets the join space", content: "hello", offset: 2, want: "he llo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			f := Forest{node("P", "p"), node("A", tt.content), node("B", "b")}

			split, newID := e.SplitAtOffset(f, "A", tt.offset)
			require.NotEmpty(t, newID)
			merged := e.MergeIntoPrevious(split, newID)

			got, ok := merged.Find("A")
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Content)
			assert.Equal(t, []string{"P", "A", "B"}, merged.IDs())
		})
	}
}

func TestEngine_RandomMutationsKeepForestStrict(t *testing.T) {
	e := newTestEngine()
	rng := rand.New(rand.NewSource(42))
	f := Forest{node("A", "alpha", node("X", "x ray")), node("B", "beta gamma")}

	for step := 0; step < 500; step++ {
		before := f.IDs()
		id := before[rng.Intn(len(before))]
		n, _ := f.Find(id)

		switch op := rng.Intn(7); op {
		case 0:
			f, _ = e.SplitAtOffset(f, id, rng.Intn(len([]rune(n.Content))+1))
			require.Len(t, f.IDs(), len(before)+1)
		case 1:
			f = e.Indent(f, id)
			assert.ElementsMatch(t, before, f.IDs())
		case 2:
			f = e.Outdent(f, id)
			assert.ElementsMatch(t, before, f.IDs())
		case 3:
			f = e.MergeIntoPrevious(f, id)
			assert.LessOrEqual(t, len(f.IDs()), len(before))
		case 4:
			if f.Count() > 1 {
				removed := 1 + DescendantCount(n)
				f = e.DeleteNode(f, id)
				require.Len(t, f.IDs(), len(before)-removed)
			}
		case 5:
			f = e.InsertAfter(f, id, e.NewNode("w"))
		case 6:
			target := before[rng.Intn(len(before))]
			f = e.Move(f, id, target, rng.Intn(3))
			assert.ElementsMatch(t, before, f.IDs())
		}

		require.NoError(t, f.Validate(), "step %d", step)
		require.NotEmpty(t, f, "step %d", step)
		assertParents(t, f)
	}
}

func ids(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}
