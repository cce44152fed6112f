package prompt

import (
	"github.com/epiq/epiq/internal/operator"
	"github.com/epiq/epiq/internal/textedit"
)

// edit applies a text-editing op to buf and reports whether it was one.
func edit(buf *textedit.Buffer, op operator.Op, wordBreak map[rune]bool) bool {
	switch op.Kind {
	case operator.OpChars:
		buf.Type(op.Chars)
		return true
	case operator.OpHorizontalCursor:
		buf.Shift(op.Backward, op.Forward)
		return true
	case operator.OpOther:
	default:
		return false
	}

	switch op.Event {
	case operator.Ctrl('a'):
		buf.MoveToHead()
	case operator.Ctrl('e'):
		buf.MoveToTail()
	case operator.Alt('b'):
		repeat(op.Count, func() { buf.MoveToPreviousNearest(wordBreak) })
	case operator.Alt('f'):
		repeat(op.Count, func() { buf.MoveToNextNearest(wordBreak) })
	case operator.Press(operator.KeyBackspace, 0):
		repeat(op.Count, buf.Erase)
	case operator.Ctrl('u'):
		buf.EraseAll()
	case operator.Ctrl('w'):
		repeat(op.Count, func() { buf.EraseToPreviousNearest(wordBreak) })
	case operator.Alt('d'):
		repeat(op.Count, func() { buf.EraseToNextNearest(wordBreak) })
	case operator.Press(operator.KeyInsert, 0):
		if op.Count%2 != 0 {
			buf.ToggleMode()
		}
	default:
		return false
	}
	return true
}

func repeat(n int, fn func()) {
	for i := 0; i < n; i++ {
		fn()
	}
}
