package term

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/epiq/epiq/internal/operator"
)

var keyCodes = map[tea.KeyType]operator.KeyCode{
	tea.KeyEnter:     operator.KeyEnter,
	tea.KeyBackspace: operator.KeyBackspace,
	tea.KeyCtrlH:     operator.KeyBackspace,
	tea.KeyDelete:    operator.KeyDelete,
	tea.KeyTab:       operator.KeyTab,
	tea.KeyEsc:       operator.KeyEsc,
	tea.KeyInsert:    operator.KeyInsert,
	tea.KeyUp:        operator.KeyUp,
	tea.KeyDown:      operator.KeyDown,
	tea.KeyLeft:      operator.KeyLeft,
	tea.KeyRight:     operator.KeyRight,
	tea.KeyHome:      operator.KeyHome,
	tea.KeyEnd:       operator.KeyEnd,
	tea.KeyPgUp:      operator.KeyPgUp,
	tea.KeyPgDown:    operator.KeyPgDown,
}

type modifiedKey struct {
	code operator.KeyCode
	mod  operator.Modifier
}

var modifiedKeys = map[tea.KeyType]modifiedKey{
	tea.KeyShiftTab:   {operator.KeyTab, operator.ModShift},
	tea.KeyShiftUp:    {operator.KeyUp, operator.ModShift},
	tea.KeyShiftDown:  {operator.KeyDown, operator.ModShift},
	tea.KeyShiftLeft:  {operator.KeyLeft, operator.ModShift},
	tea.KeyShiftRight: {operator.KeyRight, operator.ModShift},
	tea.KeyShiftHome:  {operator.KeyHome, operator.ModShift},
	tea.KeyShiftEnd:   {operator.KeyEnd, operator.ModShift},
	tea.KeyCtrlUp:     {operator.KeyUp, operator.ModCtrl},
	tea.KeyCtrlDown:   {operator.KeyDown, operator.ModCtrl},
	tea.KeyCtrlLeft:   {operator.KeyLeft, operator.ModCtrl},
	tea.KeyCtrlRight:  {operator.KeyRight, operator.ModCtrl},
	tea.KeyCtrlHome:   {operator.KeyHome, operator.ModCtrl},
	tea.KeyCtrlEnd:    {operator.KeyEnd, operator.ModCtrl},
	tea.KeyCtrlPgUp:   {operator.KeyPgUp, operator.ModCtrl},
	tea.KeyCtrlPgDown: {operator.KeyPgDown, operator.ModCtrl},
}

// Translate converts a bubbletea message into input events. Pasted or
// batched runes become one event per rune. Messages that carry no input
// yield nil.
func Translate(msg tea.Msg) []operator.Event {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return translateKey(tea.Key(msg))
	case tea.MouseMsg:
		return []operator.Event{translateMouse(tea.MouseEvent(msg))}
	case tea.WindowSizeMsg:
		return []operator.Event{operator.Resize(msg.Width, msg.Height)}
	default:
		return nil
	}
}

func translateKey(k tea.Key) []operator.Event {
	var mod operator.Modifier
	if k.Alt {
		mod |= operator.ModAlt
	}

	switch k.Type {
	case tea.KeyRunes:
		events := make([]operator.Event, 0, len(k.Runes))
		for _, r := range k.Runes {
			events = append(events, operator.Rune(r, mod))
		}
		return events
	case tea.KeySpace:
		return []operator.Event{operator.Rune(' ', mod)}
	}

	if code, ok := keyCodes[k.Type]; ok {
		return []operator.Event{operator.Press(code, mod)}
	}
	if mk, ok := modifiedKeys[k.Type]; ok {
		return []operator.Event{operator.Press(mk.code, mod|mk.mod)}
	}
	if k.Type >= tea.KeyCtrlA && k.Type <= tea.KeyCtrlZ {
		r := 'a' + rune(k.Type-tea.KeyCtrlA)
		return []operator.Event{operator.Rune(r, mod|operator.ModCtrl)}
	}
	return []operator.Event{operator.Press(operator.KeyUnknown, mod)}
}

func translateMouse(m tea.MouseEvent) operator.Event {
	action := operator.MouseOther
	switch {
	case m.Button == tea.MouseButtonWheelUp:
		action = operator.MouseWheelUp
	case m.Button == tea.MouseButtonWheelDown:
		action = operator.MouseWheelDown
	case m.Button == tea.MouseButtonWheelLeft:
		action = operator.MouseWheelLeft
	case m.Button == tea.MouseButtonWheelRight:
		action = operator.MouseWheelRight
	case m.Action == tea.MouseActionPress:
		action = operator.MousePress
	case m.Action == tea.MouseActionRelease:
		action = operator.MouseRelease
	case m.Action == tea.MouseActionMotion:
		action = operator.MouseMotion
	}
	return operator.Event{
		Kind:  operator.MouseEvent,
		Mouse: operator.Mouse{Action: action, X: m.X, Y: m.Y},
	}
}
