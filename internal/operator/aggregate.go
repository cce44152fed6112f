package operator

type category int

const (
	catChars category = iota
	catVertical
	catHorizontal
	catVerticalScroll
	catHorizontalScroll
	catOther
	numCategories
)

// delta is an open (backward, forward) accumulator.
type delta struct {
	backward, forward int
}

func (d delta) empty() bool { return d.backward == 0 && d.forward == 0 }

type aggregator struct {
	ops    []Op
	chars  []rune
	deltas [numCategories]delta

	other      Event
	otherCount int

	resized  bool
	resize   Event
	resizeAt int
}

// Aggregate folds a batch of raw events into operations.
//
// Each category keeps one open accumulator. An event of one category flushes
// every other open accumulator before it is accumulated, so ops keep the
// arrival order of their categories and are never merged across an
// interruption. Identical "other" events are counted. Resizes flush
// everything; only the last size of the batch is kept, and it is placed
// where the first resize of the batch occurred.
func Aggregate(events []Event) []Op {
	if len(events) == 0 {
		return nil
	}

	a := &aggregator{}
	for _, e := range events {
		a.add(e)
	}
	a.flushExcept(-1)

	if a.resized {
		op := Resized(a.resize.Width, a.resize.Height)
		a.ops = append(a.ops, Op{})
		copy(a.ops[a.resizeAt+1:], a.ops[a.resizeAt:])
		a.ops[a.resizeAt] = op
	}
	return a.ops
}

func (a *aggregator) add(e Event) {
	if e.Kind == ResizeEvent {
		a.flushExcept(-1)
		if !a.resized {
			a.resized = true
			a.resizeAt = len(a.ops)
		}
		a.resize = e
		return
	}

	cat, backward, forward := classify(e)
	a.flushExcept(cat)

	switch cat {
	case catChars:
		a.chars = append(a.chars, e.Key.Rune)
	case catOther:
		if a.otherCount > 0 && a.other == e {
			a.otherCount++
			return
		}
		a.flush(catOther)
		a.other = e
		a.otherCount = 1
	default:
		a.deltas[cat].backward += backward
		a.deltas[cat].forward += forward
	}
}

// flushExcept flushes every open accumulator but keep, in category order.
// A negative keep flushes all of them.
func (a *aggregator) flushExcept(keep category) {
	for c := catChars; c < numCategories; c++ {
		if c != keep {
			a.flush(c)
		}
	}
}

func (a *aggregator) flush(c category) {
	switch c {
	case catChars:
		if len(a.chars) > 0 {
			a.ops = append(a.ops, Chars(a.chars...))
			a.chars = nil
		}
	case catOther:
		if a.otherCount > 0 {
			a.ops = append(a.ops, Other(a.other, a.otherCount))
			a.other = Event{}
			a.otherCount = 0
		}
	default:
		d := a.deltas[c]
		if d.empty() {
			return
		}
		a.deltas[c] = delta{}
		a.ops = append(a.ops, Op{Kind: opKinds[c], Backward: d.backward, Forward: d.forward})
	}
}

var opKinds = [numCategories]OpKind{
	catChars:            OpChars,
	catVertical:         OpVerticalCursor,
	catHorizontal:       OpHorizontalCursor,
	catVerticalScroll:   OpVerticalScroll,
	catHorizontalScroll: OpHorizontalScroll,
	catOther:            OpOther,
}

// classify returns the category of a non-resize event and, for delta
// categories, its (backward, forward) contribution.
func classify(e Event) (category, int, int) {
	switch e.Kind {
	case KeyEvent:
		switch e.Key.Code {
		case KeyRune:
			if e.Key.Mod&^ModShift == 0 {
				return catChars, 0, 0
			}
		case KeyUp:
			return catVertical, 1, 0
		case KeyDown:
			return catVertical, 0, 1
		case KeyLeft:
			return catHorizontal, 1, 0
		case KeyRight:
			return catHorizontal, 0, 1
		}
	case MouseEvent:
		switch e.Mouse.Action {
		case MouseWheelUp:
			return catVerticalScroll, 1, 0
		case MouseWheelDown:
			return catVerticalScroll, 0, 1
		case MouseWheelLeft:
			return catHorizontalScroll, 1, 0
		case MouseWheelRight:
			return catHorizontalScroll, 0, 1
		}
	}
	return catOther, 0, 0
}
