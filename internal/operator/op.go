package operator

import "fmt"

// OpKind tags the variant held by an Op.
type OpKind int

const (
	OpChars OpKind = iota
	OpVerticalCursor
	OpHorizontalCursor
	OpVerticalScroll
	OpHorizontalScroll
	OpOther
	OpResize
)

// Op is one aggregated operation.
//
// Cursor and scroll ops count moves in both directions: Backward holds
// up (or left) steps and Forward holds down (or right) steps.
type Op struct {
	Kind     OpKind
	Chars    []rune
	Backward int
	Forward  int
	Event    Event
	Count    int
	Width    int
	Height   int
}

// Chars returns a character run op.
func Chars(rs ...rune) Op {
	return Op{Kind: OpChars, Chars: rs}
}

// VerticalCursor returns a vertical cursor op.
func VerticalCursor(up, down int) Op {
	return Op{Kind: OpVerticalCursor, Backward: up, Forward: down}
}

// HorizontalCursor returns a horizontal cursor op.
func HorizontalCursor(left, right int) Op {
	return Op{Kind: OpHorizontalCursor, Backward: left, Forward: right}
}

// VerticalScroll returns a vertical scroll op.
func VerticalScroll(up, down int) Op {
	return Op{Kind: OpVerticalScroll, Backward: up, Forward: down}
}

// HorizontalScroll returns a horizontal scroll op.
func HorizontalScroll(left, right int) Op {
	return Op{Kind: OpHorizontalScroll, Backward: left, Forward: right}
}

// Other returns a repeated-event op.
func Other(e Event, count int) Op {
	return Op{Kind: OpOther, Event: e, Count: count}
}

// Resized returns a debounced resize op.
func Resized(width, height int) Op {
	return Op{Kind: OpResize, Width: width, Height: height}
}

// Is reports whether op is an Other op for event e.
func (op Op) Is(e Event) bool {
	return op.Kind == OpOther && op.Event == e
}

func (op Op) String() string {
	switch op.Kind {
	case OpChars:
		return fmt.Sprintf("Chars(%q)", string(op.Chars))
	case OpVerticalCursor:
		return fmt.Sprintf("VerticalCursor(%d, %d)", op.Backward, op.Forward)
	case OpHorizontalCursor:
		return fmt.Sprintf("HorizontalCursor(%d, %d)", op.Backward, op.Forward)
	case OpVerticalScroll:
		return fmt.Sprintf("VerticalScroll(%d, %d)", op.Backward, op.Forward)
	case OpHorizontalScroll:
		return fmt.Sprintf("HorizontalScroll(%d, %d)", op.Backward, op.Forward)
	case OpOther:
		return fmt.Sprintf("Other(%s, %d)", op.Event, op.Count)
	default:
		return fmt.Sprintf("Resize(%d, %d)", op.Width, op.Height)
	}
}
