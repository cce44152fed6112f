package term_test

import (
	"reflect"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/internal/term"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.Msg
		want []operator.Event
	}{
		{
			name: "runes",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("ab")},
			want: []operator.Event{operator.Rune('a', 0), operator.Rune('b', 0)},
		},
		{
			name: "alt rune",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}, Alt: true},
			want: []operator.Event{operator.Alt('b')},
		},
		{
			name: "space",
			msg:  tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}},
			want: []operator.Event{operator.Rune(' ', 0)},
		},
		{
			name: "enter",
			msg:  tea.KeyMsg{Type: tea.KeyEnter},
			want: []operator.Event{operator.Press(operator.KeyEnter, 0)},
		},
		{
			name: "tab is not ctrl+i",
			msg:  tea.KeyMsg{Type: tea.KeyTab},
			want: []operator.Event{operator.Press(operator.KeyTab, 0)},
		},
		{
			name: "ctrl+h is backspace",
			msg:  tea.KeyMsg{Type: tea.KeyCtrlH},
			want: []operator.Event{operator.Press(operator.KeyBackspace, 0)},
		},
		{
			name: "ctrl+c",
			msg:  tea.KeyMsg{Type: tea.KeyCtrlC},
			want: []operator.Event{operator.Ctrl('c')},
		},
		{
			name: "ctrl+b",
			msg:  tea.KeyMsg{Type: tea.KeyCtrlB},
			want: []operator.Event{operator.Ctrl('b')},
		},
		{
			name: "esc",
			msg:  tea.KeyMsg{Type: tea.KeyEsc},
			want: []operator.Event{operator.Press(operator.KeyEsc, 0)},
		},
		{
			name: "shift+up",
			msg:  tea.KeyMsg{Type: tea.KeyShiftUp},
			want: []operator.Event{operator.Press(operator.KeyUp, operator.ModShift)},
		},
		{
			name: "wheel up",
			msg:  tea.MouseMsg{X: 3, Y: 4, Button: tea.MouseButtonWheelUp, Action: tea.MouseActionPress},
			want: []operator.Event{{
				Kind:  operator.MouseEvent,
				Mouse: operator.Mouse{Action: operator.MouseWheelUp, X: 3, Y: 4},
			}},
		},
		{
			name: "left press",
			msg:  tea.MouseMsg{Button: tea.MouseButtonLeft, Action: tea.MouseActionPress},
			want: []operator.Event{{
				Kind:  operator.MouseEvent,
				Mouse: operator.Mouse{Action: operator.MousePress},
			}},
		},
		{
			name: "resize",
			msg:  tea.WindowSizeMsg{Width: 120, Height: 40},
			want: []operator.Event{operator.Resize(120, 40)},
		},
		{
			name: "unrelated message",
			msg:  tea.FocusMsg{},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := term.Translate(tt.msg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Translate() = %v, want %v", got, tt.want)
			}
		})
	}
}
