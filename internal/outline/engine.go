package outline

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Splitter cuts content at a logical offset. ok is false when the offset cannot be mapped,
// in which case the split is a no-op.
type Splitter func(content string, offset int) (head, tail string, ok bool)

// Joiner concatenates the contents of two merged nodes.
type Joiner func(head, tail string) string

// Engine applies structural mutations to a Forest. All operations are pure: they return a
// new Forest and leave the input untouched. Unknown ids turn an operation into a no-op that
// returns the input forest itself.
type Engine struct {
	now   func() time.Time
	newID func() string
	split Splitter
	join  Joiner
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the node id generator.
func WithIDGenerator(newID func() string) EngineOption {
	return func(e *Engine) {
		e.newID = newID
	}
}

// WithSplitter sets how content is cut by SplitAtOffset.
func WithSplitter(split Splitter) EngineOption {
	return func(e *Engine) {
		e.split = split
	}
}

// WithJoiner sets how content is concatenated by Merge.
func WithJoiner(join Joiner) EngineOption {
	return func(e *Engine) {
		e.join = join
	}
}

// NewEngine creates an Engine using time.Now, random UUIDs, a plain rune splitter and
// JoinContent by default.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		now:   time.Now,
		newID: uuid.NewString,
		split: SplitRunes,
		join:  JoinContent,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SplitRunes cuts plain text at a rune offset.
func SplitRunes(content string, offset int) (string, string, bool) {
	runes := []rune(content)
	if offset < 0 || offset > len(runes) {
		return "", "", false
	}
	return string(runes[:offset]), string(runes[offset:]), true
}

// NewNode returns a node with a fresh id, timestamps and the default style.
func (e *Engine) NewNode(content string) *Node {
	now := e.now()
	return &Node{
		ID:        e.newID(),
		Content:   content,
		Style:     DefaultStyle(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewForest returns a forest with one empty node, the shape of an empty note.
func (e *Engine) NewForest() Forest {
	return Forest{e.NewNode("")}
}

// UpdateContent replaces the content of the node with id.
func (e *Engine) UpdateContent(f Forest, id, content string) Forest {
	return e.updateNode(f, id, func(n *Node) bool {
		if n.Content == content {
			return false
		}
		n.Content = content
		return true
	})
}

// InsertAfter inserts node as the next sibling of afterID.
func (e *Engine) InsertAfter(f Forest, afterID string, node *Node) Forest {
	if node == nil {
		return f
	}
	parentID := ""
	if parent := f.Parent(afterID); parent != nil {
		parentID = parent.ID
	}
	inserted := node.clone()
	inserted.ParentID = parentID
	out, ok := editSiblings(f, afterID, func(list []*Node, idx int) ([]*Node, bool) {
		return insertAt(list, idx+1, inserted), true
	})
	if !ok {
		return f
	}
	return out
}

// DeleteNode removes the node with id and its whole subtree.
// Callers must not delete the last node of a forest.
func (e *Engine) DeleteNode(f Forest, id string) Forest {
	out, ok := editSiblings(f, id, func(list []*Node, idx int) ([]*Node, bool) {
		return removeAt(list, idx), true
	})
	if !ok {
		return f
	}
	return out
}

// Indent makes the node the last child of its previous sibling. A node without a previous
// sibling stays where it is. A collapsed new parent is expanded so the node stays visible.
func (e *Engine) Indent(f Forest, id string) Forest {
	now := e.now()
	out, ok := editSiblings(f, id, func(list []*Node, idx int) ([]*Node, bool) {
		if idx == 0 {
			return list, false
		}
		parent := list[idx-1].clone()
		moved := list[idx].clone()
		moved.ParentID = parent.ID
		moved.UpdatedAt = now
		parent.Children = append(parent.Children, moved)
		parent.Collapsed = false

		result := removeAt(list, idx)
		result[idx-1] = parent
		return result, true
	})
	if !ok {
		return f
	}
	return out
}

// Outdent moves the node out of its parent and places it right after the parent.
// Siblings that followed the node stay with the old parent. Roots are left alone.
func (e *Engine) Outdent(f Forest, id string) Forest {
	now := e.now()
	out, ok := editParentLevel(f, id, func(list []*Node, parentIdx, childIdx int) []*Node {
		parent := list[parentIdx].clone()
		moved := parent.Children[childIdx].clone()
		moved.ParentID = parent.ParentID
		moved.UpdatedAt = now
		parent.Children = removeAt(parent.Children, childIdx)

		result := insertAt(list, parentIdx+1, moved)
		result[parentIdx] = parent
		return result
	})
	if !ok {
		return f
	}
	return out
}

// MergeIntoPrevious merges the node into the node right before it in document order.
func (e *Engine) MergeIntoPrevious(f Forest, id string) Forest {
	doc := f.Document()
	for i, n := range doc {
		if n.ID != id {
			continue
		}
		if i == 0 {
			return f
		}
		return e.Merge(f, doc[i-1].ID, id)
	}
	return f
}

// Merge appends the content of sourceID to targetID, reattaches the source's children after
// the target's children and removes the source. Merging a node into itself or into one of
// its own descendants is a no-op.
func (e *Engine) Merge(f Forest, targetID, sourceID string) Forest {
	if targetID == sourceID {
		return f
	}
	source, ok := f.Find(sourceID)
	if !ok {
		return f
	}
	if _, ok := f.Find(targetID); !ok {
		return f
	}
	if _, ok := Forest(source.Children).Find(targetID); ok {
		return f
	}

	now := e.now()
	merged := e.updateNode(f, targetID, func(n *Node) bool {
		n.Content = e.join(n.Content, source.Content)
		for _, child := range source.Children {
			moved := child.clone()
			moved.ParentID = n.ID
			moved.UpdatedAt = now
			n.Children = append(n.Children, moved)
		}
		return true
	})
	return e.DeleteNode(merged, sourceID)
}

// JoinContent concatenates two contents, inserting one space when both sides abut with
// non-whitespace characters.
func JoinContent(head, tail string) string {
	last, _ := utf8.DecodeLastRuneInString(head)
	first, _ := utf8.DecodeRuneInString(tail)
	if head != "" && tail != "" && !unicode.IsSpace(last) && !unicode.IsSpace(first) {
		return head + " " + tail
	}
	return head + tail
}

// SplitAtOffset keeps the content before offset in the node and moves the rest into a new
// node inserted right after it at the same level. The new node has no children and inherits
// the style and, unchecked, the checklist state. It returns the id of the new node, or ""
// when nothing was split.
func (e *Engine) SplitAtOffset(f Forest, id string, offset int) (Forest, string) {
	n, ok := f.Find(id)
	if !ok {
		return f, ""
	}
	head, tail, ok := e.split(n.Content, offset)
	if !ok {
		return f, ""
	}

	created := e.NewNode(tail)
	created.Style = n.Style
	if n.Check.IsChecklist() {
		created.Check = CheckOpen
	}

	out := e.updateNode(f, id, func(n *Node) bool {
		n.Content = head
		return true
	})
	return e.InsertAfter(out, id, created), created.ID
}

// AttachChild appends child to the children of parentID.
func (e *Engine) AttachChild(f Forest, parentID string, child *Node) Forest {
	if child == nil {
		return f
	}
	attached := child.clone()
	attached.ParentID = parentID
	return e.updateNode(f, parentID, func(n *Node) bool {
		n.Children = append(n.Children, attached)
		return true
	})
}

// Move detaches the node with its subtree and inserts it under newParentID at index.
// An empty newParentID moves the node to the root level. The index is clamped.
// Moving a node under itself or one of its descendants is a no-op.
func (e *Engine) Move(f Forest, id, newParentID string, index int) Forest {
	n, ok := f.Find(id)
	if !ok || newParentID == id {
		return f
	}
	if newParentID != "" {
		if _, ok := f.Find(newParentID); !ok {
			return f
		}
		if _, ok := Forest(n.Children).Find(newParentID); ok {
			return f
		}
	}

	moved := n.clone()
	moved.ParentID = newParentID
	moved.UpdatedAt = e.now()

	detached := e.DeleteNode(f, id)
	if newParentID == "" {
		return insertAt(detached, clamp(index, 0, len(detached)), moved)
	}
	return e.updateNode(detached, newParentID, func(p *Node) bool {
		p.Children = insertAt(p.Children, clamp(index, 0, len(p.Children)), moved)
		return true
	})
}

// updateNode replaces the node with id by a modified copy. fn reports whether it changed
// anything; UpdatedAt is bumped only when it did.
func (e *Engine) updateNode(f Forest, id string, fn func(n *Node) bool) Forest {
	out, ok := editSiblings(f, id, func(list []*Node, idx int) ([]*Node, bool) {
		c := list[idx].clone()
		if !fn(c) {
			return list, false
		}
		c.UpdatedAt = e.now()
		result := copyList(list)
		result[idx] = c
		return result, true
	})
	if !ok {
		return f
	}
	return out
}

// editSiblings finds the sibling list holding id depth-first and replaces it with the list
// returned by edit. Ancestors on the path are copied; everything else is shared.
func editSiblings(nodes []*Node, id string, edit func(list []*Node, idx int) ([]*Node, bool)) ([]*Node, bool) {
	for i, n := range nodes {
		if n.ID == id {
			return edit(nodes, i)
		}
		children, ok := editSiblings(n.Children, id, edit)
		if ok {
			return replaceChildren(nodes, i, children), true
		}
	}
	return nodes, false
}

// editParentLevel finds the sibling list that holds the parent of id and replaces it with
// the list returned by edit.
func editParentLevel(nodes []*Node, id string, edit func(list []*Node, parentIdx, childIdx int) []*Node) ([]*Node, bool) {
	for i, n := range nodes {
		for j, c := range n.Children {
			if c.ID == id {
				return edit(nodes, i, j), true
			}
		}
		children, ok := editParentLevel(n.Children, id, edit)
		if ok {
			return replaceChildren(nodes, i, children), true
		}
	}
	return nodes, false
}

func replaceChildren(nodes []*Node, idx int, children []*Node) []*Node {
	parent := nodes[idx].clone()
	parent.Children = children
	result := copyList(nodes)
	result[idx] = parent
	return result
}

func copyList(list []*Node) []*Node {
	result := make([]*Node, len(list))
	copy(result, list)
	return result
}

func insertAt(list []*Node, idx int, n *Node) []*Node {
	result := make([]*Node, 0, len(list)+1)
	result = append(result, list[:idx]...)
	result = append(result, n)
	return append(result, list[idx:]...)
}

func removeAt(list []*Node, idx int) []*Node {
	result := make([]*Node, 0, len(list)-1)
	result = append(result, list[:idx]...)
	return append(result, list[idx+1:]...)
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
