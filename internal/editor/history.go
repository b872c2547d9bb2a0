package editor

import "github.com/at-ishikawa/outliner/internal/outline"

const defaultHistoryLimit = 200

// revision is a forest the session can return to. Forests are immutable, so keeping the old
// value is enough.
type revision struct {
	forest outline.Forest
	focus  Focus
	// typing is the node id for content edits; consecutive edits of one node share a revision.
	typing string
}

type history struct {
	undo  []revision
	redo  []revision
	limit int
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

// record stores the state before a change.
func (h *history) record(before revision) {
	h.redo = nil
	if before.typing != "" && len(h.undo) > 0 && h.undo[len(h.undo)-1].typing == before.typing {
		return
	}
	h.undo = append(h.undo, before)
	if len(h.undo) > h.limit {
		h.undo = h.undo[len(h.undo)-h.limit:]
	}
}

// back returns the revision to restore and remembers current for redo.
func (h *history) back(current revision) (revision, bool) {
	if len(h.undo) == 0 {
		return revision{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.breakTyping()
	current.typing = ""
	h.redo = append(h.redo, current)
	return prev, true
}

func (h *history) forward(current revision) (revision, bool) {
	if len(h.redo) == 0 {
		return revision{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	current.typing = ""
	h.undo = append(h.undo, current)
	return next, true
}

// breakTyping stops the next content edit from joining the latest revision.
func (h *history) breakTyping() {
	if len(h.undo) > 0 {
		h.undo[len(h.undo)-1].typing = ""
	}
}
