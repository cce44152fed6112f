package prompt

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/epiq/epiq/internal/textedit"
)

// StageTheme is the look of one kind of stage.
type StageTheme struct {
	Prefix      string
	PrefixColor lipgloss.Color
	CursorColor lipgloss.Color
}

// Theme styles the head stage, the pipe stages and the word boundaries used
// by nearest-boundary moves.
type Theme struct {
	Head      StageTheme
	Pipe      StageTheme
	WordBreak map[rune]bool
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		Head:      StageTheme{Prefix: "❯❯ ", PrefixColor: lipgloss.Color("2"), CursorColor: lipgloss.Color("6")},
		Pipe:      StageTheme{Prefix: "❚ ", PrefixColor: lipgloss.Color("3"), CursorColor: lipgloss.Color("6")},
		WordBreak: textedit.Set(".|()[] "),
	}
}

type paneState struct {
	head    bool
	focused bool
	ignored bool
}

// renderStage draws one stage buffer as terminal rows wrapped to width.
func (t Theme) renderStage(buf *textedit.Buffer, st paneState, width int) []string {
	look := t.Pipe
	if st.head {
		look = t.Head
	}

	base := lipgloss.NewStyle().Faint(!st.focused).Strikethrough(st.ignored)
	prefix := base.Foreground(look.PrefixColor).Render(look.Prefix)

	text := buf.Runes()
	cursor := buf.Cursor()

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(base.Render(string(text[:cursor])))

	under := " "
	rest := ""
	if cursor < len(text) {
		under = string(text[cursor])
		rest = string(text[cursor+1:])
	}
	if st.focused {
		b.WriteString(base.Background(look.CursorColor).Render(under))
	} else {
		b.WriteString(base.Render(under))
	}
	b.WriteString(base.Render(rest))

	line := b.String()
	if width > 0 {
		line = ansi.Hardwrap(line, width, true)
	}
	return strings.Split(line, "\n")
}
