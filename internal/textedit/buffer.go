// Package textedit implements the single-line text buffer behind each
// pipeline stage.
package textedit

// Mode selects how typed characters are applied.
type Mode int

const (
	Insert Mode = iota
	Overwrite
)

// Buffer is a rune buffer with a cursor in [0, Len()].
type Buffer struct {
	buf    []rune
	cursor int
	mode   Mode
}

// New returns an empty buffer in insert mode.
func New() *Buffer {
	return &Buffer{}
}

// Text returns the buffer contents.
func (b *Buffer) Text() string {
	return string(b.buf)
}

// Runes returns a copy of the buffer contents.
func (b *Buffer) Runes() []rune {
	return append([]rune(nil), b.buf...)
}

// Len returns the number of runes.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Cursor returns the cursor position.
func (b *Buffer) Cursor() int {
	return b.cursor
}

// Mode returns the current edit mode.
func (b *Buffer) Mode() Mode {
	return b.mode
}

// SetMode changes the edit mode.
func (b *Buffer) SetMode(m Mode) {
	b.mode = m
}

// ToggleMode switches between insert and overwrite.
func (b *Buffer) ToggleMode() {
	if b.mode == Insert {
		b.mode = Overwrite
	} else {
		b.mode = Insert
	}
}

// SetText replaces the contents and moves the cursor to the tail.
func (b *Buffer) SetText(s string) {
	b.buf = []rune(s)
	b.cursor = len(b.buf)
}

// Type applies rs according to the current mode.
func (b *Buffer) Type(rs []rune) {
	if b.mode == Overwrite {
		b.OverwriteChars(rs)
		return
	}
	b.InsertChars(rs)
}

// InsertChars inserts rs at the cursor.
func (b *Buffer) InsertChars(rs []rune) {
	if len(rs) == 0 {
		return
	}
	tail := append([]rune(nil), b.buf[b.cursor:]...)
	b.buf = append(append(b.buf[:b.cursor], rs...), tail...)
	b.cursor += len(rs)
}

// OverwriteChars replaces runes from the cursor on, growing the buffer
// past its end when needed.
func (b *Buffer) OverwriteChars(rs []rune) {
	for _, r := range rs {
		if b.cursor < len(b.buf) {
			b.buf[b.cursor] = r
		} else {
			b.buf = append(b.buf, r)
		}
		b.cursor++
	}
}

// Erase deletes the rune before the cursor.
func (b *Buffer) Erase() {
	if b.cursor == 0 {
		return
	}
	b.buf = append(b.buf[:b.cursor-1], b.buf[b.cursor:]...)
	b.cursor--
}

// EraseAll clears the buffer.
func (b *Buffer) EraseAll() {
	b.buf = nil
	b.cursor = 0
}

// MoveToHead moves the cursor to the start.
func (b *Buffer) MoveToHead() {
	b.cursor = 0
}

// MoveToTail moves the cursor past the last rune.
func (b *Buffer) MoveToTail() {
	b.cursor = len(b.buf)
}

// Shift moves the cursor right-left positions, clamped to the buffer.
func (b *Buffer) Shift(left, right int) {
	b.cursor = max(0, min(b.cursor+right-left, len(b.buf)))
}

// MoveToPreviousNearest moves the cursor just past the previous boundary
// rune in set, or to the head if there is none.
func (b *Buffer) MoveToPreviousNearest(set map[rune]bool) {
	b.cursor = b.previousNearest(set)
}

// MoveToNextNearest moves the cursor onto the next boundary rune in set,
// or to the tail if there is none.
func (b *Buffer) MoveToNextNearest(set map[rune]bool) {
	b.cursor = b.nextNearest(set)
}

// EraseToPreviousNearest deletes from the previous boundary up to the
// cursor.
func (b *Buffer) EraseToPreviousNearest(set map[rune]bool) {
	to := b.previousNearest(set)
	b.buf = append(b.buf[:to], b.buf[b.cursor:]...)
	b.cursor = to
}

// EraseToNextNearest deletes from the cursor up to the next boundary.
func (b *Buffer) EraseToNextNearest(set map[rune]bool) {
	to := b.nextNearest(set)
	b.buf = append(b.buf[:b.cursor], b.buf[to:]...)
}

// previousNearest skips the rune right before the cursor so repeated moves
// step over boundaries instead of sticking to them.
func (b *Buffer) previousNearest(set map[rune]bool) int {
	for i := b.cursor - 2; i >= 0; i-- {
		if set[b.buf[i]] {
			return i + 1
		}
	}
	return 0
}

func (b *Buffer) nextNearest(set map[rune]bool) int {
	for i := b.cursor + 1; i < len(b.buf); i++ {
		if set[b.buf[i]] {
			return i
		}
	}
	return len(b.buf)
}

// Set builds a boundary set from the runes of s.
func Set(s string) map[rune]bool {
	set := make(map[rune]bool, len(s))
	for _, r := range s {
		set[r] = true
	}
	return set
}
