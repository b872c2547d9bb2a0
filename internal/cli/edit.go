// Package cli implements the interactive terminal surfaces of the outliner.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/at-ishikawa/outliner/internal/caret"
	"github.com/at-ishikawa/outliner/internal/editor"
	"github.com/at-ishikawa/outliner/internal/outline"
)

const editHelp = `Plain text replaces the focused node. Start a line with "::" to type a leading colon.
  :up :down :left :right     move the focus
  :goto <node id> [offset]   focus a node
  :enter [offset]            split the focused node (default: at the end)
  :tab :untab                indent or outdent
  :bs                        backspace at the start of the node
  :key <key>                 send a key such as shift+tab or alt+left at the caret
  :collapse :check :done     toggle collapse, checklist and checked
  :child                     add a child node
  :bold|:italic|:underline|:strike [start end]
                             format a range, or the whole node without a range
  :bigger|:smaller [start end]
  :undo :redo
  :title <title>  :tags <tag...>  :move [notebook id]
  :q                         save and quit`

var errUnknownCommand = errors.New("unknown command, type :help")

// EditCLI is a line oriented editing session over one note.
type EditCLI struct {
	session      *editor.Session
	renderer     *TreeRenderer
	stdinReader  *bufio.Reader
	stdoutWriter io.Writer
	title        *color.Color
	red          *color.Color
}

func NewEditCLI(session *editor.Session, stdin io.Reader, stdout io.Writer) *EditCLI {
	return &EditCLI{
		session:      session,
		renderer:     NewTreeRenderer(),
		stdinReader:  bufio.NewReader(stdin),
		stdoutWriter: stdout,
		title:        color.New(color.Bold, color.Underline),
		red:          color.New(color.FgRed),
	}
}

// Run reads commands until :q or the end of the input, then saves the note.
func (c *EditCLI) Run(ctx context.Context) error {
	if err := c.print(); err != nil {
		return err
	}
	for ctx.Err() == nil {
		if _, err := fmt.Fprint(c.stdoutWriter, "> "); err != nil {
			return fmt.Errorf("fmt.Fprint() > %w", err)
		}
		line, readErr := c.stdinReader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("stdinReader.ReadString() > %w", readErr)
		}
		line = strings.TrimRight(line, "\r\n")

		if line != "" {
			quit, err := c.Execute(ctx, line)
			if err != nil {
				if _, err := c.red.Fprintln(c.stdoutWriter, err.Error()); err != nil {
					return fmt.Errorf("red.Fprintln() > %w", err)
				}
			}
			if quit {
				break
			}
			if err := c.print(); err != nil {
				return err
			}
		}
		if readErr != nil {
			break
		}
	}

	if err := c.session.Close(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("session.Close() > %w", err)
	}
	return nil
}

func (c *EditCLI) print() error {
	n := c.session.Note()
	if n.Title != "" {
		if _, err := c.title.Fprintln(c.stdoutWriter, n.Title); err != nil {
			return fmt.Errorf("title.Fprintln() > %w", err)
		}
	}
	focus := c.session.Focus()
	return c.renderer.Render(c.stdoutWriter, n.RootNodes, RenderOptions{
		FocusID:     focus.NodeID,
		ShowIDs:     true,
		ShowCaret:   true,
		CaretOffset: focus.Offset,
	})
}

// Execute runs one input line. quit is true for :q.
func (c *EditCLI) Execute(ctx context.Context, line string) (quit bool, err error) {
	focus := c.session.Focus()
	if !strings.HasPrefix(line, ":") || strings.HasPrefix(line, "::") {
		text := strings.TrimPrefix(line, ":")
		if !c.session.Input(focus.NodeID, text) {
			return false, fmt.Errorf("node %s is gone", focus.NodeID)
		}
		return false, nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return false, errUnknownCommand
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "q", "quit":
		return true, nil
	case "help":
		_, err := fmt.Fprintln(c.stdoutWriter, editHelp)
		return false, err
	case "up":
		return false, c.key(editor.KeyEvent{Key: editor.KeyUp}, atStart)
	case "down":
		return false, c.key(editor.KeyEvent{Key: editor.KeyDown}, atEnd)
	case "left":
		return false, c.key(editor.KeyEvent{Key: editor.KeyLeft}, atStart)
	case "right":
		return false, c.key(editor.KeyEvent{Key: editor.KeyRight}, atEnd)
	case "tab":
		return false, c.key(editor.KeyEvent{Key: editor.KeyTab}, atCaret(focus))
	case "untab":
		return false, c.key(editor.KeyEvent{Key: editor.KeyTab, Shift: true}, atCaret(focus))
	case "bs":
		return false, c.key(editor.KeyEvent{Key: editor.KeyBackspace}, atStart)
	case "enter":
		offset := atEnd
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return false, fmt.Errorf("offset %q: %w", args[0], err)
			}
			offset = func(*outline.Node) int { return v }
		}
		return false, c.key(editor.KeyEvent{Key: editor.KeyEnter}, offset)
	case "key":
		if len(args) != 1 {
			return false, errors.New("usage: :key <key>")
		}
		ev, err := editor.ParseKey(args[0])
		if err != nil {
			return false, err
		}
		return false, c.key(ev, atCaret(focus))
	case "goto":
		if len(args) == 0 {
			return false, errors.New("usage: :goto <node id> [offset]")
		}
		offset := 0
		if len(args) > 1 {
			if offset, err = strconv.Atoi(args[1]); err != nil {
				return false, fmt.Errorf("offset %q: %w", args[1], err)
			}
		}
		if got := c.session.SetFocus(args[0], offset); got.NodeID != args[0] {
			return false, fmt.Errorf("node %s not found", args[0])
		}
		return false, nil
	case "collapse":
		c.session.ToggleCollapsed(focus.NodeID)
		return false, nil
	case "check":
		c.session.ToggleChecklist(focus.NodeID)
		return false, nil
	case "done":
		c.session.ToggleChecked(focus.NodeID)
		return false, nil
	case "child":
		if _, ok := c.session.AddChild(focus.NodeID); !ok {
			return false, fmt.Errorf("node %s not found", focus.NodeID)
		}
		return false, nil
	case "bold", "italic", "underline", "strike", "bigger", "smaller":
		return false, c.format(focus.NodeID, command, args)
	case "undo":
		if !c.session.Undo() {
			return false, errors.New("nothing to undo")
		}
		return false, nil
	case "redo":
		if !c.session.Redo() {
			return false, errors.New("nothing to redo")
		}
		return false, nil
	case "title":
		return false, c.session.SetTitle(ctx, strings.Join(args, " "))
	case "tags":
		return false, c.session.SetTags(ctx, args)
	case "move":
		notebookID := ""
		if len(args) > 0 {
			notebookID = args[0]
		}
		return false, c.session.SetNotebook(ctx, notebookID)
	}
	return false, errUnknownCommand
}

func atStart(*outline.Node) int {
	return 0
}

func atEnd(n *outline.Node) int {
	return caret.Length(n.Content)
}

func atCaret(focus editor.Focus) func(*outline.Node) int {
	return func(*outline.Node) int {
		return focus.Offset
	}
}

// key sends ev for the focused node with a collapsed caret at offset.
func (c *EditCLI) key(ev editor.KeyEvent, offset func(*outline.Node) int) error {
	focus := c.session.Focus()
	n, ok := c.session.Note().RootNodes.Find(focus.NodeID)
	if !ok {
		return fmt.Errorf("node %s not found", focus.NodeID)
	}
	ev.NodeID = n.ID
	ev.Selection = caret.Caret(n.Content, offset(n))
	c.session.HandleKey(ev)
	return nil
}

var formatCommands = map[string]caret.Command{
	"bold":      caret.Bold,
	"italic":    caret.Italic,
	"underline": caret.Underline,
	"strike":    caret.Strikethrough,
	"bigger":    caret.SizeUp,
	"smaller":   caret.SizeDown,
}

var styleFlags = map[string]outline.StyleFlag{
	"bold":      outline.FlagBold,
	"italic":    outline.FlagItalic,
	"underline": outline.FlagUnderline,
}

// format applies an inline command to [start, end), or a node level style without a range.
func (c *EditCLI) format(nodeID, command string, args []string) error {
	if len(args) == 0 {
		switch command {
		case "bigger":
			c.session.StepSize(nodeID, 1)
		case "smaller":
			c.session.StepSize(nodeID, -1)
		default:
			flag, ok := styleFlags[command]
			if !ok {
				return fmt.Errorf(":%s needs a range", command)
			}
			c.session.ToggleStyle(nodeID, flag)
		}
		return nil
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: :%s <start> <end>", command)
	}
	start, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("start %q: %w", args[0], err)
	}
	end, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("end %q: %w", args[1], err)
	}
	n, ok := c.session.Note().RootNodes.Find(nodeID)
	if !ok {
		return fmt.Errorf("node %s not found", nodeID)
	}
	if _, ok := c.session.Format(nodeID, caret.NewSelection(n.Content, start, end), formatCommands[command]); !ok {
		return fmt.Errorf("cannot %s %d..%d", command, start, end)
	}
	return nil
}
