package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/notify"
)

var helpText = map[screen]string{
	screenAccounts: "type to search | enter: threads | ctrl+n: add | ctrl+d: delete | ctrl+s: sync | ctrl+r: reload | esc: quit",
	screenThreads:  "type to search | tab: INBOX/SENT | pgup/pgdown: page | enter: open | ctrl+r: reload | esc: back",
	screenThread:   "up/down: scroll | p: preview images | +/-/0: zoom | arrows: pan | esc: back",
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" Mail Admin "))
	b.WriteString("\n\n")

	switch m.screen {
	case screenAccounts:
		b.WriteString(m.viewAccounts())
	case screenThreads:
		b.WriteString(m.viewThreads())
	case screenThread:
		b.WriteString(m.viewThread())
	}

	b.WriteString("\n\n")
	if m.toast != nil {
		b.WriteString(renderToast(*m.toast))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render(helpText[m.screen]))
	return b.String()
}

func renderToast(n notify.Notification) string {
	style, ok := toastStyles[string(n.Level)]
	if !ok {
		style = toastStyles[string(notify.LevelInfo)]
	}
	text := n.Message
	if n.Err != nil {
		text += ": " + n.Err.Error()
	}
	return style.Render(text)
}

// Run starts the console and blocks until the user quits
func Run(m Model, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(m, append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(m.ctx)}, opts...)...)
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.Close()
	} else {
		m.Close()
	}
	return err
}
