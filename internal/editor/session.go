// Package editor runs an editing session over one note: it turns key presses and text input
// into tree mutations, keeps track of the focused node, and saves snapshots in the background.
package editor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/at-ishikawa/outliner/internal/autosave"
	"github.com/at-ishikawa/outliner/internal/caret"
	"github.com/at-ishikawa/outliner/internal/note"
	"github.com/at-ishikawa/outliner/internal/outline"
)

// NewEngine returns an engine whose splits and merges keep inline markup balanced.
func NewEngine(opts ...outline.EngineOption) *outline.Engine {
	defaults := []outline.EngineOption{outline.WithSplitter(caret.Split), outline.WithJoiner(caret.Join)}
	return outline.NewEngine(append(defaults, opts...)...)
}

// Session is safe for concurrent use.
type Session struct {
	engine *outline.Engine
	store  note.Repository
	userID string
	saver  *autosave.Scheduler[*note.Note]
	now    func() time.Time

	mu      sync.Mutex
	note    *note.Note
	focus   Focus
	history *history
}

// NewSession starts editing n. Content edits are saved after the autosave quiet period,
// every other change is saved right away.
func NewSession(n *note.Note, userID string, store note.Repository, engine *outline.Engine, opts ...autosave.Option) *Session {
	current := *n
	current.Normalize(engine)
	s := &Session{
		engine:  engine,
		store:   store,
		userID:  userID,
		now:     time.Now,
		note:    &current,
		history: newHistory(defaultHistoryLimit),
	}
	s.saver = autosave.New(s.save, opts...)
	s.focus = startOf(current.RootNodes[0])
	return s
}

func (s *Session) save(ctx context.Context, snapshot *note.Note) error {
	if err := s.store.SaveNote(ctx, s.userID, snapshot.ID, snapshot); err != nil {
		return fmt.Errorf("store.SaveNote(%s) > %w", snapshot.ID, err)
	}
	return nil
}

// Note returns a snapshot of the note being edited.
func (s *Session) Note() *note.Note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *note.Note {
	snapshot := *s.note
	snapshot.Tags = append([]string{}, s.note.Tags...)
	return &snapshot
}

func (s *Session) Focus() Focus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// SetFocus moves the caret. Unknown nodes are ignored.
func (s *Session) SetFocus(nodeID string, offset int) Focus {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.note.RootNodes.Find(nodeID); ok {
		s.focus = Focus{NodeID: nodeID, Offset: clampOffset(n, offset)}
		s.history.breakTyping()
	}
	return s.focus
}

// Visible returns the nodes in navigation order.
func (s *Session) Visible() []*outline.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return outline.FlattenVisible(s.note.RootNodes)
}

func clampOffset(n *outline.Node, offset int) int {
	return max(0, min(offset, caret.Length(n.Content)))
}

func endOf(n *outline.Node) Focus {
	return Focus{NodeID: n.ID, Offset: caret.Length(n.Content)}
}

func startOf(n *outline.Node) Focus {
	return Focus{NodeID: n.ID}
}

func sameForest(a, b outline.Forest) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// commitLocked installs next and schedules a save. typing is the edited node id for content
// edits, which are debounced and coalesced in the history.
func (s *Session) commitLocked(next outline.Forest, focus Focus, typing string) bool {
	if len(next) == 0 || sameForest(s.note.RootNodes, next) {
		return false
	}
	s.history.record(revision{forest: s.note.RootNodes, focus: s.focus, typing: typing})
	s.installLocked(next, focus, typing != "")
	return true
}

func (s *Session) installLocked(next outline.Forest, focus Focus, debounce bool) {
	s.note.RootNodes = next
	s.note.UpdatedAt = s.now()
	s.focus = focus
	snapshot := s.snapshotLocked()
	if debounce {
		s.saver.Schedule(snapshot)
		return
	}
	s.saver.SaveNow(snapshot)
}

// Input replaces the content of a node after the user typed into it.
func (s *Session) Input(nodeID, content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	before, ok := s.note.RootNodes.Find(nodeID)
	if !ok {
		return false
	}
	next := s.engine.UpdateContent(s.note.RootNodes, nodeID, content)
	after, _ := next.Find(nodeID)
	// The caret moves with the text typed at it.
	offset := caret.Length(content)
	if s.focus.NodeID == nodeID {
		offset = clampOffset(after, s.focus.Offset+offset-caret.Length(before.Content))
	}
	return s.commitLocked(next, Focus{NodeID: nodeID, Offset: offset}, nodeID)
}

// HandleKey applies the outliner key table to a key press.
func (s *Session) HandleKey(ev KeyEvent) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.note.RootNodes
	list := outline.FlattenVisible(f)
	i := outline.IndexOf(list, ev.NodeID)
	if i < 0 {
		return Result{Focus: s.focus}
	}
	n := list[i]
	sel := ev.Selection
	sel.Total = caret.Length(n.Content)
	if !sel.Valid() {
		// The surface and the tree disagree about the caret; swallow edits rather than guess.
		return Result{Handled: ev.Key == KeyEnter || ev.Key == KeyBackspace, Focus: s.focus}
	}
	handled := func(next outline.Forest, focus Focus) Result {
		changed := s.commitLocked(next, focus, "")
		if !changed {
			s.focus = focus
			s.history.breakTyping()
		}
		return Result{Handled: true, Changed: changed, Focus: s.focus}
	}

	switch ev.Key {
	case KeyEnter:
		next, newID := s.engine.SplitAtOffset(f, n.ID, sel.Start)
		if newID == "" {
			return Result{Handled: true, Focus: s.focus}
		}
		return handled(next, Focus{NodeID: newID})

	case KeyBackspace:
		if sel.AtStart() && i > 0 {
			prev := list[i-1]
			return handled(s.engine.Merge(f, prev.ID, n.ID), endOf(prev))
		}
		if n.Content == "" {
			next := s.engine.DeleteNode(f, n.ID)
			if len(next) == 0 {
				// The last node of a note cannot be deleted.
				return Result{Handled: true, Focus: s.focus}
			}
			target, ok := outline.FocusAfterDelete(outline.FlattenVisible(next), i)
			if !ok {
				return Result{Handled: true, Focus: s.focus}
			}
			return handled(next, endOf(target))
		}

	case KeyTab:
		focus := Focus{NodeID: n.ID, Offset: sel.Start}
		if ev.Shift {
			return handled(s.engine.Outdent(f, n.ID), focus)
		}
		return handled(s.engine.Indent(f, n.ID), focus)

	case KeyUp:
		if sel.AtStart() && i > 0 {
			return handled(f, endOf(list[i-1]))
		}

	case KeyDown:
		if sel.AtEnd() && i < len(list)-1 {
			return handled(f, startOf(list[i+1]))
		}

	case KeyLeft:
		if ev.Alt {
			return handled(s.engine.Outdent(f, n.ID), Focus{NodeID: n.ID, Offset: sel.Start})
		}
		if sel.AtStart() && i > 0 {
			return handled(f, endOf(list[i-1]))
		}

	case KeyRight:
		if ev.Alt {
			return handled(s.engine.Indent(f, n.ID), Focus{NodeID: n.ID, Offset: sel.Start})
		}
		if sel.AtEnd() {
			if child, ok := outline.FirstVisibleChild(n); ok {
				return handled(f, startOf(child))
			}
			if i < len(list)-1 {
				return handled(f, startOf(list[i+1]))
			}
		}
	}
	return Result{Focus: s.focus}
}

// Format applies a formatting command to a selection inside a node.
func (s *Session) Format(nodeID string, sel caret.Selection, cmd caret.Command) (caret.Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.note.RootNodes.Find(nodeID)
	if !ok {
		return sel, false
	}
	content, after, ok := caret.Apply(n.Content, sel, cmd)
	if !ok {
		return sel, false
	}
	next := s.engine.UpdateContent(s.note.RootNodes, nodeID, content)
	s.commitLocked(next, Focus{NodeID: nodeID, Offset: after.End}, "")
	return after, true
}

// ToggleCollapsed collapses or expands a node. A collapse that hides the focused node moves
// the focus to the end of the collapsed node.
func (s *Session) ToggleCollapsed(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.note.RootNodes
	n, ok := f.Find(nodeID)
	if !ok {
		return false
	}
	focus := s.focus
	if !n.Collapsed && outline.IsDescendant(f, nodeID, focus.NodeID) {
		focus = endOf(n)
	}
	return s.commitLocked(s.engine.SetCollapsed(f, nodeID, !n.Collapsed), focus, "")
}

func (s *Session) ToggleChecklist(nodeID string) bool {
	return s.mutate(nodeID, func(f outline.Forest, n *outline.Node) outline.Forest {
		return s.engine.SetChecklist(f, nodeID, !n.Check.IsChecklist())
	})
}

// ToggleChecked flips the checkbox of a checklist node.
func (s *Session) ToggleChecked(nodeID string) bool {
	return s.mutate(nodeID, func(f outline.Forest, n *outline.Node) outline.Forest {
		return s.engine.SetChecked(f, nodeID, !n.Check.Checked())
	})
}

func (s *Session) ToggleStyle(nodeID string, flag outline.StyleFlag) bool {
	return s.mutate(nodeID, func(f outline.Forest, _ *outline.Node) outline.Forest {
		return s.engine.ToggleStyle(f, nodeID, flag)
	})
}

func (s *Session) StepSize(nodeID string, delta int) bool {
	return s.mutate(nodeID, func(f outline.Forest, _ *outline.Node) outline.Forest {
		return s.engine.StepSize(f, nodeID, delta)
	})
}

func (s *Session) mutate(nodeID string, fn func(f outline.Forest, n *outline.Node) outline.Forest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.note.RootNodes.Find(nodeID)
	if !ok {
		return false
	}
	return s.commitLocked(fn(s.note.RootNodes, n), s.focus, "")
}

// AddChild appends an empty child to a node, expanding it, and focuses the child.
func (s *Session) AddChild(nodeID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	child := s.engine.NewNode("")
	next := s.engine.AttachChild(s.note.RootNodes, nodeID, child)
	if sameForest(next, s.note.RootNodes) {
		return "", false
	}
	next = s.engine.SetCollapsed(next, nodeID, false)
	s.commitLocked(next, Focus{NodeID: child.ID}, "")
	return child.ID, true
}

// Undo restores the forest before the latest change.
func (s *Session) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.history.back(revision{forest: s.note.RootNodes, focus: s.focus})
	if !ok {
		return false
	}
	s.installLocked(prev.forest, s.restoredFocus(prev), false)
	return true
}

func (s *Session) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.history.forward(revision{forest: s.note.RootNodes, focus: s.focus})
	if !ok {
		return false
	}
	s.installLocked(next.forest, s.restoredFocus(next), false)
	return true
}

func (s *Session) restoredFocus(r revision) Focus {
	if n, ok := r.forest.Find(r.focus.NodeID); ok {
		return Focus{NodeID: n.ID, Offset: clampOffset(n, r.focus.Offset)}
	}
	return startOf(r.forest[0])
}

// SetTitle renames the note.
func (s *Session) SetTitle(ctx context.Context, title string) error {
	return s.patch(ctx, note.MetaPatch{Title: &title})
}

func (s *Session) SetTags(ctx context.Context, tags []string) error {
	return s.patch(ctx, note.MetaPatch{Tags: tags, SetTags: true})
}

// SetNotebook moves the note into a notebook; an empty id takes it out.
func (s *Session) SetNotebook(ctx context.Context, notebookID string) error {
	return s.patch(ctx, note.MetaPatch{NotebookID: &notebookID})
}

func (s *Session) patch(ctx context.Context, patch note.MetaPatch) error {
	s.mu.Lock()
	patch.Apply(s.note)
	noteID := s.note.ID
	// a debounced content save still holds the old metadata
	s.saver.Replace(s.snapshotLocked())
	s.mu.Unlock()

	if err := s.store.UpdateNoteMeta(ctx, s.userID, noteID, patch); err != nil {
		return fmt.Errorf("store.UpdateNoteMeta(%s) > %w", noteID, err)
	}
	return nil
}

// Blur saves pending content edits right away.
func (s *Session) Blur(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close flushes pending edits and waits for every save that is still running.
func (s *Session) Close(ctx context.Context) error {
	err := s.saver.Flush(ctx)
	s.saver.Wait()
	return err
}

// Wait blocks until background saves have returned.
func (s *Session) Wait() {
	s.saver.Wait()
}

// Dirty reports whether a content edit is waiting for its quiet period.
func (s *Session) Dirty() bool {
	return s.saver.Pending()
}
