package editor

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/outliner/internal/caret"
)

// Key is a key the editing surface forwards to the session.
type Key string

const (
	KeyEnter     Key = "enter"
	KeyBackspace Key = "backspace"
	KeyTab       Key = "tab"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
)

var keys = []Key{KeyEnter, KeyBackspace, KeyTab, KeyUp, KeyDown, KeyLeft, KeyRight}

// KeyEvent is a key press inside the node NodeID. Selection offsets are character offsets into
// the plain text of the node; Total is recomputed from the node content.
type KeyEvent struct {
	Key       Key             `json:"key"`
	Shift     bool            `json:"shift,omitempty"`
	Alt       bool            `json:"alt,omitempty"`
	NodeID    string          `json:"nodeId"`
	Selection caret.Selection `json:"selection"`
}

// ParseKey reads names like "enter", "shift+tab" or "alt+left".
func ParseKey(name string) (KeyEvent, error) {
	var ev KeyEvent
	parts := strings.Split(strings.ToLower(strings.TrimSpace(name)), "+")
	for _, modifier := range parts[:len(parts)-1] {
		switch modifier {
		case "shift":
			ev.Shift = true
		case "alt", "option":
			ev.Alt = true
		default:
			return KeyEvent{}, fmt.Errorf("unknown modifier %q in %q", modifier, name)
		}
	}
	last := Key(parts[len(parts)-1])
	for _, k := range keys {
		if k == last {
			ev.Key = k
			return ev, nil
		}
	}
	return KeyEvent{}, fmt.Errorf("unknown key %q", name)
}

func (ev KeyEvent) String() string {
	var b strings.Builder
	if ev.Alt {
		b.WriteString("alt+")
	}
	if ev.Shift {
		b.WriteString("shift+")
	}
	b.WriteString(string(ev.Key))
	return b.String()
}

// Focus is the node holding the caret and the caret offset inside it.
type Focus struct {
	NodeID string `json:"nodeId"`
	Offset int    `json:"offset"`
}

// Result tells the surface what happened. Handled false means the surface applies its native
// behaviour for the key.
type Result struct {
	Handled bool  `json:"handled"`
	Changed bool  `json:"changed"`
	Focus   Focus `json:"focus"`
}
