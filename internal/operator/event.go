// Package operator batches raw terminal input into semantic operations.
//
// Events are collected over a fixed interval and folded by Aggregate into
// runs of characters, cursor and scroll deltas, repeated keys and a single
// debounced resize.
package operator

import "fmt"

// EventKind tags the variant held by an Event.
type EventKind int

const (
	KeyEvent EventKind = iota
	MouseEvent
	ResizeEvent
)

// KeyCode identifies a key. KeyRune means the key produced Key.Rune.
type KeyCode int

const (
	KeyRune KeyCode = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyTab
	KeyEsc
	KeyInsert
	KeyHome
	KeyEnd
	KeyPgUp
	KeyPgDown
	KeyUnknown
)

var keyNames = map[KeyCode]string{
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyEnter:     "Enter",
	KeyBackspace: "Backspace",
	KeyDelete:    "Delete",
	KeyTab:       "Tab",
	KeyEsc:       "Esc",
	KeyInsert:    "Insert",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPgUp:      "PgUp",
	KeyPgDown:    "PgDown",
	KeyUnknown:   "Unknown",
}

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModAlt
	ModCtrl
)

// Key is a single key press.
type Key struct {
	Code KeyCode
	Rune rune
	Mod  Modifier
}

func (k Key) String() string {
	var prefix string
	if k.Mod&ModCtrl != 0 {
		prefix += "Ctrl+"
	}
	if k.Mod&ModAlt != 0 {
		prefix += "Alt+"
	}
	if k.Mod&ModShift != 0 {
		prefix += "Shift+"
	}
	if k.Code == KeyRune {
		return prefix + string(k.Rune)
	}
	return prefix + keyNames[k.Code]
}

// MouseAction identifies what a mouse event did.
type MouseAction int

const (
	MouseOther MouseAction = iota
	MouseWheelUp
	MouseWheelDown
	MouseWheelLeft
	MouseWheelRight
	MousePress
	MouseRelease
	MouseMotion
)

// Mouse is a single mouse event at a cell position.
type Mouse struct {
	Action MouseAction
	X, Y   int
}

// Event is a raw input event. Only the field matching Kind is meaningful.
// Events are comparable so identical events can be counted.
type Event struct {
	Kind   EventKind
	Key    Key
	Mouse  Mouse
	Width  int
	Height int
}

func (e Event) String() string {
	switch e.Kind {
	case KeyEvent:
		return "Key(" + e.Key.String() + ")"
	case MouseEvent:
		return fmt.Sprintf("Mouse(%d, %d, %d)", e.Mouse.Action, e.Mouse.X, e.Mouse.Y)
	default:
		return fmt.Sprintf("Resize(%d, %d)", e.Width, e.Height)
	}
}

// Press returns a key event for a non-rune key.
func Press(code KeyCode, mod Modifier) Event {
	return Event{Kind: KeyEvent, Key: Key{Code: code, Mod: mod}}
}

// Rune returns a key event for a rune key.
func Rune(r rune, mod Modifier) Event {
	return Event{Kind: KeyEvent, Key: Key{Code: KeyRune, Rune: r, Mod: mod}}
}

// Ctrl returns the key event for Ctrl+r.
func Ctrl(r rune) Event {
	return Rune(r, ModCtrl)
}

// Alt returns the key event for Alt+r.
func Alt(r rune) Event {
	return Rune(r, ModAlt)
}

// Wheel returns a mouse event for the given action at the origin.
func Wheel(action MouseAction) Event {
	return Event{Kind: MouseEvent, Mouse: Mouse{Action: action}}
}

// Resize returns a resize event.
func Resize(width, height int) Event {
	return Event{Kind: ResizeEvent, Width: width, Height: height}
}
