// Package queue provides the bounded scrollback buffer behind the output pane.
package queue

// Placeholder is stored in place of an empty line so that a blank output
// line still occupies a row.
const Placeholder = " "

// Scrollback is a bounded FIFO of lines with a scroll cursor.
//
// The cursor is the index of the first visible line and always stays in
// [0, Len()-height]. While the cursor is at the bottom the view follows new
// lines; scrolling up detaches it until it is scrolled back down.
// Scrollback is not safe for concurrent use.
type Scrollback struct {
	lines    []string
	capacity int
	pos      int
	height   int
	follow   bool
}

// New creates a scrollback holding at most capacity lines.
func New(capacity int) *Scrollback {
	if capacity < 1 {
		capacity = 1
	}
	return &Scrollback{
		lines:    make([]string, 0, capacity),
		capacity: capacity,
		follow:   true,
	}
}

// Push appends a line, evicting the oldest one at capacity.
func (q *Scrollback) Push(line string) {
	if line == "" {
		line = Placeholder
	}

	if len(q.lines) == q.capacity {
		q.lines[0] = ""
		q.lines = q.lines[1:]
		// Keep the same lines on screen while detached.
		if !q.follow && q.pos > 0 {
			q.pos--
		}
	}
	q.lines = append(q.lines, line)

	if q.follow {
		q.pos = q.maxPos()
	}
}

// Shift moves the cursor up and down by the given counts and reports
// whether the visible window changed.
func (q *Scrollback) Shift(up, down int) bool {
	next := max(0, min(q.pos+down-up, q.maxPos()))
	changed := next != q.pos
	q.pos = next
	q.follow = q.pos == q.maxPos()
	return changed
}

// SetViewport sets the number of visible rows and reports whether the
// visible window changed.
func (q *Scrollback) SetViewport(height int) bool {
	height = max(height, 0)
	if height == q.height {
		return false
	}
	q.height = height

	if q.follow {
		q.pos = q.maxPos()
	} else {
		q.pos = min(q.pos, q.maxPos())
		q.follow = q.pos == q.maxPos()
	}
	return true
}

// Window returns the currently visible lines.
func (q *Scrollback) Window() []string {
	end := min(q.pos+q.height, len(q.lines))
	if q.pos >= end {
		return nil
	}
	out := make([]string, end-q.pos)
	copy(out, q.lines[q.pos:end])
	return out
}

// Reset drops all lines and returns to the bottom-of-stream view.
func (q *Scrollback) Reset() {
	q.lines = make([]string, 0, q.capacity)
	q.pos = 0
	q.follow = true
}

// Len returns the number of buffered lines.
func (q *Scrollback) Len() int { return len(q.lines) }

// Capacity returns the maximum number of buffered lines.
func (q *Scrollback) Capacity() int { return q.capacity }

// Position returns the index of the first visible line.
func (q *Scrollback) Position() int { return q.pos }

// Following reports whether the view tracks the newest line.
func (q *Scrollback) Following() bool { return q.follow }

// Lines returns a copy of all buffered lines, oldest first.
func (q *Scrollback) Lines() []string {
	return append([]string(nil), q.lines...)
}

func (q *Scrollback) maxPos() int {
	return max(0, len(q.lines)-q.height)
}
