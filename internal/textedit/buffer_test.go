package textedit_test

import (
	"testing"

	"github.com/epiq/epiq/internal/textedit"
)

func bufferAt(text string, cursor int) *textedit.Buffer {
	b := textedit.New()
	b.SetText(text)
	b.MoveToHead()
	b.Shift(0, cursor)
	return b
}

func TestBuffer_InsertAndErase(t *testing.T) {
	b := textedit.New()
	b.InsertChars([]rune("grp"))
	b.Shift(1, 0)
	b.Shift(1, 0)
	b.InsertChars([]rune("e"))

	if b.Text() != "gerp" {
		t.Fatalf("Text() = %q", b.Text())
	}
	b.MoveToTail()
	b.Erase()
	b.Erase()
	if b.Text() != "ge" || b.Cursor() != 2 {
		t.Errorf("after erase: %q cursor %d", b.Text(), b.Cursor())
	}

	b.MoveToHead()
	b.Erase()
	if b.Text() != "ge" {
		t.Errorf("erase at head changed text: %q", b.Text())
	}

	b.EraseAll()
	if b.Text() != "" || b.Cursor() != 0 {
		t.Errorf("EraseAll left %q cursor %d", b.Text(), b.Cursor())
	}
}

func TestBuffer_Overwrite(t *testing.T) {
	b := bufferAt("cat x", 4)
	b.SetMode(textedit.Overwrite)
	b.Type([]rune("yz"))

	if b.Text() != "cat yz" || b.Cursor() != 6 {
		t.Errorf("got %q cursor %d", b.Text(), b.Cursor())
	}

	b.ToggleMode()
	if b.Mode() != textedit.Insert {
		t.Error("expected insert mode")
	}
}

func TestBuffer_ShiftClamps(t *testing.T) {
	b := bufferAt("abc", 1)
	b.Shift(5, 0)
	if b.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", b.Cursor())
	}
	b.Shift(0, 9)
	if b.Cursor() != 3 {
		t.Errorf("cursor = %d, want 3", b.Cursor())
	}
	b.Shift(2, 1)
	if b.Cursor() != 2 {
		t.Errorf("cursor = %d, want 2", b.Cursor())
	}
}

func TestBuffer_NearestMoves(t *testing.T) {
	set := textedit.Set(" |")

	tests := []struct {
		name   string
		text   string
		cursor int
		prev   int
		next   int
	}{
		{"middle of word", "grep foo | wc", 7, 5, 8},
		{"just after boundary", "grep foo", 5, 0, 8},
		{"at head", "grep foo", 0, 0, 4},
		{"at tail", "ls | wc", 7, 5, 7},
		{"no boundary", "echo", 2, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := bufferAt(tt.text, tt.cursor)
			b.MoveToPreviousNearest(set)
			if b.Cursor() != tt.prev {
				t.Errorf("previous = %d, want %d", b.Cursor(), tt.prev)
			}

			b = bufferAt(tt.text, tt.cursor)
			b.MoveToNextNearest(set)
			if b.Cursor() != tt.next {
				t.Errorf("next = %d, want %d", b.Cursor(), tt.next)
			}
		})
	}
}

func TestBuffer_NearestErase(t *testing.T) {
	set := textedit.Set(" ")

	b := bufferAt("grep foo bar", 8)
	b.EraseToPreviousNearest(set)
	if b.Text() != "grep  bar" || b.Cursor() != 5 {
		t.Errorf("erase previous: %q cursor %d", b.Text(), b.Cursor())
	}

	b = bufferAt("grep foo bar", 4)
	b.EraseToNextNearest(set)
	if b.Text() != "grep bar" || b.Cursor() != 4 {
		t.Errorf("erase next: %q cursor %d", b.Text(), b.Cursor())
	}
}
