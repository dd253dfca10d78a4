package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/pkg/types"
)

func (m Model) updateThreads(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.mountAccounts()
	case "tab", "shift+tab":
		if m.label == types.LabelInbox {
			m.label = types.LabelSent
		} else {
			m.label = types.LabelInbox
		}
		m.page = 1
		m.threadCursor = 0
		return m.fetchThreads()
	case "pgdown":
		return m.gotoPage(m.page + 1)
	case "pgup":
		return m.gotoPage(m.page - 1)
	case "up":
		m.threadCursor = clampCursor(m.threadCursor-1, len(m.threads))
		return m, nil
	case "down":
		m.threadCursor = clampCursor(m.threadCursor+1, len(m.threads))
		return m, nil
	case "enter":
		if len(m.threads) == 0 {
			return m, nil
		}
		return m.mountThread(m.threads[m.threadCursor]), nil
	case "ctrl+r":
		return m.fetchThreads()
	}

	prev := m.threadInput.Value()
	var cmd tea.Cmd
	m.threadInput, cmd = m.threadInput.Update(msg)
	if v := m.threadInput.Value(); v != prev {
		m.threadQuery.Set(v)
	}
	return m, cmd
}

// gotoPage moves within [1, pages]; staying on the same page fetches nothing
func (m Model) gotoPage(page int) (tea.Model, tea.Cmd) {
	page = email.ClampPage(page, m.pagination.Pages)
	if page == m.page {
		return m, nil
	}
	m.page = page
	m.threadCursor = 0
	return m.fetchThreads()
}

func (m Model) viewThreads() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.account.Email))
	b.WriteString("\n")

	var tabs []string
	for _, label := range []string{types.LabelInbox, types.LabelSent} {
		if label == m.label {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	b.WriteString(strings.Join(tabs, " "))
	b.WriteString("\n")
	b.WriteString(m.threadInput.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("  Loading threads..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Error: %s", m.err)))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("  ctrl+r to retry"))
	case len(m.threads) == 0:
		b.WriteString(mutedStyle.Render("  No threads"))
	default:
		for i, th := range m.threads {
			date := ""
			if th.Date != nil {
				date = th.Date.Local().Format("Jan 02")
			}
			line := fmt.Sprintf("%-6s  %-28s  %s", date, truncate(th.From, 28), truncate(th.Subject, 60))
			if i == m.threadCursor {
				line = selectedStyle.Render("> " + line)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(pageSummary(m.page, m.pagination)))
	}
	return b.String()
}

func pageSummary(page int, p types.Pagination) string {
	pages := p.Pages
	if pages < 1 {
		pages = 1
	}
	return fmt.Sprintf("  page %d of %d, %d threads", page, pages, p.Total)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
