package render

import (
	"fmt"

	"github.com/epiq/epiq/internal/registry"
)

// PaneKind orders the three groups of panes on screen.
type PaneKind int

const (
	NotifyPane PaneKind = iota
	EditorPane
	OutputPane
)

// PaneIndex identifies a pane. Panes are drawn top to bottom in index
// order: the notification line, then every stage editor in key order, then
// the output region.
type PaneIndex struct {
	Kind PaneKind
	Key  registry.Key
}

// Notify is the index of the notification pane.
func Notify() PaneIndex { return PaneIndex{Kind: NotifyPane} }

// Editor is the index of the stage editor at key.
func Editor(key registry.Key) PaneIndex { return PaneIndex{Kind: EditorPane, Key: key} }

// Output is the index of the output pane.
func Output() PaneIndex { return PaneIndex{Kind: OutputPane} }

// Compare orders indices by kind, then by key within editors.
func (p PaneIndex) Compare(o PaneIndex) int {
	if p.Kind != o.Kind {
		if p.Kind < o.Kind {
			return -1
		}
		return 1
	}
	if p.Kind != EditorPane {
		return 0
	}
	return p.Key.Compare(o.Key)
}

func (p PaneIndex) String() string {
	switch p.Kind {
	case NotifyPane:
		return "notify"
	case EditorPane:
		return fmt.Sprintf("editor(%s)", p.Key)
	default:
		return "output"
	}
}

// Pane is pre-rendered content, one string per terminal row.
type Pane []string
