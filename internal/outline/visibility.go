package outline

// FlattenVisible returns the nodes in document order, skipping the children of collapsed nodes.
// This order drives keyboard navigation.
func FlattenVisible(f Forest) []*Node {
	var result []*Node
	var visit func(nodes []*Node)
	visit = func(nodes []*Node) {
		for _, n := range nodes {
			result = append(result, n)
			if !n.Collapsed {
				visit(n.Children)
			}
		}
	}
	visit(f)
	return result
}

// IndexOf returns the index of the node with id in list, or -1.
func IndexOf(list []*Node, id string) int {
	for i, n := range list {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// PreviousVisible returns the visible node before id.
func PreviousVisible(f Forest, id string) (*Node, bool) {
	list := FlattenVisible(f)
	i := IndexOf(list, id)
	if i <= 0 {
		return nil, false
	}
	return list[i-1], true
}

// NextVisible returns the visible node after id.
func NextVisible(f Forest, id string) (*Node, bool) {
	list := FlattenVisible(f)
	i := IndexOf(list, id)
	if i < 0 || i >= len(list)-1 {
		return nil, false
	}
	return list[i+1], true
}

// FirstVisibleChild returns the first child of n if n is expanded.
func FirstVisibleChild(n *Node) (*Node, bool) {
	if n == nil || n.Collapsed || len(n.Children) == 0 {
		return nil, false
	}
	return n.Children[0], true
}

// DescendantCount returns the number of nodes below n, regardless of collapse state.
func DescendantCount(n *Node) int {
	if n == nil {
		return 0
	}
	return Forest(n.Children).Count()
}

// IsDescendant reports whether id lies strictly below ancestorID.
func IsDescendant(f Forest, ancestorID, id string) bool {
	ancestor, ok := f.Find(ancestorID)
	if !ok {
		return false
	}
	_, ok = Forest(ancestor.Children).Find(id)
	return ok
}

// FocusAfterDelete picks the node to focus once the node at deletedIndex of the previous
// visible list is gone. It prefers the node before the deleted one and clamps into after.
func FocusAfterDelete(after []*Node, deletedIndex int) (*Node, bool) {
	if len(after) == 0 {
		return nil, false
	}
	return after[clamp(deletedIndex-1, 0, len(after)-1)], true
}

// FocusSubtree narrows the forest to the subtree rooted at id. Unknown ids return f.
func FocusSubtree(f Forest, id string) Forest {
	if id == "" {
		return f
	}
	n, ok := f.Find(id)
	if !ok {
		return f
	}
	return Forest{n}
}

// VisibleForest returns a copy of f without the children of collapsed nodes.
func VisibleForest(f Forest) Forest {
	out := make(Forest, 0, len(f))
	for _, n := range f {
		c := n.clone()
		if c.Collapsed {
			c.Children = nil
		} else {
			c.Children = VisibleForest(n.Children)
		}
		out = append(out, c)
	}
	return out
}
