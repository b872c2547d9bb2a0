package outline

// SetStyle replaces the whole-node style.
func (e *Engine) SetStyle(f Forest, id string, style Style) Forest {
	style.Size = style.Size.Normalize()
	return e.updateNode(f, id, func(n *Node) bool {
		if n.Style == style {
			return false
		}
		n.Style = style
		return true
	})
}

// ToggleStyle flips one style flag of the node.
func (e *Engine) ToggleStyle(f Forest, id string, flag StyleFlag) Forest {
	return e.updateNode(f, id, func(n *Node) bool {
		toggled := n.Style.Toggle(flag)
		if toggled == n.Style {
			return false
		}
		n.Style = toggled
		return true
	})
}

// StepSize grows (delta > 0) or shrinks (delta < 0) the node size, clamped at sm and xl.
func (e *Engine) StepSize(f Forest, id string, delta int) Forest {
	return e.updateNode(f, id, func(n *Node) bool {
		next := n.Style.Size.Step(delta)
		if next == n.Style.Size {
			return false
		}
		n.Style.Size = next
		return true
	})
}

// SetChecklist turns the checklist presentation on or off. Turning it off drops the
// checked state with it.
func (e *Engine) SetChecklist(f Forest, id string, enabled bool) Forest {
	return e.updateNode(f, id, func(n *Node) bool {
		if n.Check.IsChecklist() == enabled {
			return false
		}
		if enabled {
			n.Check = CheckOpen
		} else {
			n.Check = CheckNone
		}
		return true
	})
}

// SetChecked marks a checklist item done or open. Nodes that are not checklist items are left alone.
func (e *Engine) SetChecked(f Forest, id string, checked bool) Forest {
	return e.updateNode(f, id, func(n *Node) bool {
		if !n.Check.IsChecklist() || n.Check.Checked() == checked {
			return false
		}
		if checked {
			n.Check = CheckDone
		} else {
			n.Check = CheckOpen
		}
		return true
	})
}

// SetCollapsed hides or shows the children of the node.
func (e *Engine) SetCollapsed(f Forest, id string, collapsed bool) Forest {
	return e.updateNode(f, id, func(n *Node) bool {
		if n.Collapsed == collapsed {
			return false
		}
		n.Collapsed = collapsed
		return true
	})
}
