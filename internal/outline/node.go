// Package outline provides the node tree of a note and the pure operations over it.
//
// A Forest is never mutated in place. Every operation returns a new Forest in which the
// nodes on the path to the change are copied and every untouched subtree is shared, so
// callers can compare node pointers to detect unchanged subtrees.
package outline

import (
	"fmt"
	"time"
)

// Size is the default rendering size of a node.
type Size string

const (
	SizeSmall  Size = "sm"
	SizeBase   Size = "base"
	SizeLarge  Size = "lg"
	SizeXLarge Size = "xl"
)

var sizeOrder = []Size{SizeSmall, SizeBase, SizeLarge, SizeXLarge}

// Normalize returns SizeBase for unknown or empty values.
func (s Size) Normalize() Size {
	for _, known := range sizeOrder {
		if s == known {
			return s
		}
	}
	return SizeBase
}

// Step moves the size by delta steps, clamped to the smallest and largest sizes.
func (s Size) Step(delta int) Size {
	idx := 1
	for i, known := range sizeOrder {
		if s.Normalize() == known {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sizeOrder) {
		idx = len(sizeOrder) - 1
	}
	return sizeOrder[idx]
}

// Style holds whole-node formatting, independent of inline spans in the content.
type Style struct {
	Bold      bool `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic    bool `json:"italic,omitempty" yaml:"italic,omitempty"`
	Underline bool `json:"underline,omitempty" yaml:"underline,omitempty"`
	Size      Size `json:"size,omitempty" yaml:"size,omitempty"`
}

// DefaultStyle is the style of a freshly created node.
func DefaultStyle() Style {
	return Style{Size: SizeBase}
}

// StyleFlag names one of the boolean flags of a Style.
type StyleFlag string

const (
	FlagBold      StyleFlag = "bold"
	FlagItalic    StyleFlag = "italic"
	FlagUnderline StyleFlag = "underline"
)

// Toggle returns a copy of the style with flag flipped.
func (s Style) Toggle(flag StyleFlag) Style {
	switch flag {
	case FlagBold:
		s.Bold = !s.Bold
	case FlagItalic:
		s.Italic = !s.Italic
	case FlagUnderline:
		s.Underline = !s.Underline
	}
	return s
}

// CheckState is the checklist state of a node.
// Checked only exists for checklist nodes, so the state is a single variant.
type CheckState string

const (
	CheckNone CheckState = ""
	CheckOpen CheckState = "open"
	CheckDone CheckState = "done"
)

// IsChecklist reports whether the node is rendered as a checklist item.
func (c CheckState) IsChecklist() bool {
	return c == CheckOpen || c == CheckDone
}

// Checked reports whether the checklist item is done.
func (c CheckState) Checked() bool {
	return c == CheckDone
}

// Node is a single outline entry.
type Node struct {
	ID        string     `json:"id" yaml:"id"`
	Content   string     `json:"content" yaml:"content"`
	Children  []*Node    `json:"children" yaml:"children,omitempty"`
	Check     CheckState `json:"check,omitempty" yaml:"check,omitempty"`
	Style     Style      `json:"style" yaml:"style"`
	Collapsed bool       `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
	// ParentID is bookkeeping only; the Children slices are authoritative.
	ParentID  string    `json:"parentId,omitempty" yaml:"parent_id,omitempty"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updated_at"`
}

// clone returns a shallow copy whose Children slice can be replaced without
// affecting the original.
func (n *Node) clone() *Node {
	c := *n
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		copy(c.Children, n.Children)
	}
	return &c
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// Forest is the ordered sequence of root nodes of a note.
type Forest []*Node

// Find returns the node with id, searching depth-first.
func (f Forest) Find(id string) (*Node, bool) {
	for _, n := range f {
		if n.ID == id {
			return n, true
		}
		if found, ok := Forest(n.Children).Find(id); ok {
			return found, true
		}
	}
	return nil, false
}

// Path returns the chain of nodes from a root down to the node with id, inclusive.
func (f Forest) Path(id string) []*Node {
	for _, n := range f {
		if n.ID == id {
			return []*Node{n}
		}
		if sub := Forest(n.Children).Path(id); sub != nil {
			return append([]*Node{n}, sub...)
		}
	}
	return nil
}

// Parent returns the parent of the node with id, or nil if it is a root or missing.
func (f Forest) Parent(id string) *Node {
	path := f.Path(id)
	if len(path) < 2 {
		return nil
	}
	return path[len(path)-2]
}

// Walk visits every node in document (depth-first, pre-order) order.
// Returning false from fn stops the walk.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	f.walk(fn, 0)
}

func (f Forest) walk(fn func(n *Node, depth int) bool, depth int) bool {
	for _, n := range f {
		if !fn(n, depth) {
			return false
		}
		if !Forest(n.Children).walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// Count returns the total number of nodes.
func (f Forest) Count() int {
	count := 0
	f.Walk(func(*Node, int) bool {
		count++
		return true
	})
	return count
}

// IDs returns all node ids in document order.
func (f Forest) IDs() []string {
	ids := make([]string, 0, len(f))
	f.Walk(func(n *Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Document returns all nodes in document order, ignoring collapse state.
func (f Forest) Document() []*Node {
	nodes := make([]*Node, 0, len(f))
	f.Walk(func(n *Node, _ int) bool {
		nodes = append(nodes, n)
		return true
	})
	return nodes
}

// Validate checks the strict-forest invariants: no nil nodes, unique ids, no node reachable twice.
func (f Forest) Validate() error {
	seenIDs := make(map[string]struct{})
	seenNodes := make(map[*Node]struct{})
	var err error
	f.Walk(func(n *Node, _ int) bool {
		if n == nil {
			err = fmt.Errorf("nil node in forest")
			return false
		}
		if _, ok := seenNodes[n]; ok {
			err = fmt.Errorf("node %s appears twice", n.ID)
			return false
		}
		seenNodes[n] = struct{}{}
		if n.ID == "" {
			err = fmt.Errorf("node without id")
			return false
		}
		if _, ok := seenIDs[n.ID]; ok {
			err = fmt.Errorf("duplicate node id %s", n.ID)
			return false
		}
		seenIDs[n.ID] = struct{}{}
		for _, c := range n.Children {
			if c == nil {
				err = fmt.Errorf("nil child under %s", n.ID)
				return false
			}
		}
		return true
	})
	return err
}

// Clone returns a deep copy of the forest.
func (f Forest) Clone() Forest {
	if f == nil {
		return nil
	}
	out := make(Forest, 0, len(f))
	for _, n := range f {
		c := n.clone()
		c.Children = Forest(n.Children).Clone()
		out = append(out, c)
	}
	return out
}

// Normalize fixes up data loaded from storage: sizes default to base and ParentID
// matches the tree. The returned forest shares no nodes with f.
func (f Forest) Normalize() Forest {
	return normalize(f, "")
}

func normalize(nodes []*Node, parentID string) Forest {
	if nodes == nil {
		return nil
	}
	out := make(Forest, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		c := n.clone()
		c.Style.Size = c.Style.Size.Normalize()
		c.ParentID = parentID
		if c.Check != CheckOpen && c.Check != CheckDone {
			c.Check = CheckNone
		}
		c.Children = normalize(n.Children, n.ID)
		out = append(out, c)
	}
	return out
}
