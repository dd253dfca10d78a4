package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/allowlist"
	"github.com/brandon/mail-admin/pkg/types"
)

func (m Model) updateAccounts(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.adding {
		return m.updateAddForm(msg)
	}

	key := msg.String()
	if key != "ctrl+d" {
		m.confirmDelete = ""
	}

	switch key {
	case "esc":
		m.unmount()
		return m, tea.Quit
	case "up":
		m.cursor = clampCursor(m.cursor-1, len(m.accounts))
		return m, nil
	case "down":
		m.cursor = clampCursor(m.cursor+1, len(m.accounts))
		return m, nil
	case "enter":
		if len(m.accounts) == 0 {
			return m, nil
		}
		m.account = m.accounts[m.cursor]
		m.label = types.LabelInbox
		m.page = 1
		m.threadFilter = ""
		m.threadCursor = 0
		m.threadInput.SetValue("")
		return m.mountThreads()
	case "ctrl+r":
		return m.fetchAccounts()
	case "ctrl+n":
		m.adding = true
		m.search.Blur()
		m.addInput.SetValue("")
		m.addInput.Focus()
		if !m.domainsLoaded && !m.domainsLoading {
			m.domainsLoading = true
			m.domainsErr = nil
			return m, tea.Batch(textinput.Blink, allowedDomainsCmd(m.ctx, m.svc))
		}
		return m, textinput.Blink
	case "ctrl+d":
		if len(m.accounts) == 0 {
			return m, nil
		}
		acc := m.accounts[m.cursor]
		if m.confirmDelete != acc.ID {
			m.confirmDelete = acc.ID
			return m, nil
		}
		m.confirmDelete = ""
		return m, m.deleteCmd(acc.ID)
	case "ctrl+s":
		if len(m.accounts) == 0 {
			return m, nil
		}
		return m, m.syncCmd(m.accounts[m.cursor].Email)
	}

	prev := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != prev {
		m.searchQuery.Set(v)
	}
	return m, cmd
}

func (m Model) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.adding = false
		m.addInput.Blur()
		m.search.Focus()
		return m, nil
	case "enter":
		if !m.canSubmit() {
			return m, nil
		}
		addr := strings.TrimSpace(m.addInput.Value())
		m.adding = false
		m.addInput.Blur()
		m.search.Focus()
		return m, m.addCmd(addr)
	}

	var cmd tea.Cmd
	m.addInput, cmd = m.addInput.Update(msg)
	return m, cmd
}

// canSubmit reports whether the add form holds an address on an allowed
// domain. Submit stays disabled until the allow-list has loaded.
func (m Model) canSubmit() bool {
	addr := strings.TrimSpace(m.addInput.Value())
	return m.domainsLoaded && addr != "" && allowlist.IsAllowedAny(addr, m.domains)
}

func (m Model) addFormNote() string {
	addr := strings.TrimSpace(m.addInput.Value())
	switch {
	case m.domainsErr != nil:
		return errorStyle.Render(fmt.Sprintf("  Could not load allowed domains: %s (esc, then ctrl+n to retry)", m.domainsErr))
	case !m.domainsLoaded:
		return mutedStyle.Render("  Loading allowed domains...")
	case addr == "":
		return mutedStyle.Render("  Allowed domains: " + strings.Join(m.domains, ", "))
	case !m.canSubmit():
		return errorStyle.Render("  Domain not allowed (allowed: " + strings.Join(m.domains, ", ") + ")")
	}
	return mutedStyle.Render("  enter to add")
}

// The manager reports outcomes through the toast notifier, so these
// commands only decide whether the list needs a refresh.

func (m Model) addCmd(addr string) tea.Cmd {
	ctx, svc, view := m.ctx, m.svc, m.view
	return func() tea.Msg {
		_, err := svc.AddAccount(ctx, addr)
		return actionDoneMsg{view: view, refresh: err == nil, err: err}
	}
}

func (m Model) deleteCmd(id string) tea.Cmd {
	ctx, svc, view := m.ctx, m.svc, m.view
	return func() tea.Msg {
		err := svc.DeleteAccount(ctx, id)
		return actionDoneMsg{view: view, refresh: err == nil, err: err}
	}
}

func (m Model) syncCmd(addr string) tea.Cmd {
	ctx, svc, view := m.ctx, m.svc, m.view
	return func() tea.Msg {
		_, err := svc.SyncAccount(ctx, addr)
		return actionDoneMsg{view: view, err: err}
	}
}

func (m Model) viewAccounts() string {
	var b strings.Builder

	b.WriteString(m.search.View())
	b.WriteString("\n")
	if m.adding {
		b.WriteString(m.addInput.View())
		b.WriteString("\n")
		b.WriteString(m.addFormNote())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(mutedStyle.Render("  Loading accounts..."))
	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("  Error: %s", m.err)))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("  ctrl+r to retry"))
	case len(m.accounts) == 0:
		b.WriteString(mutedStyle.Render("  No accounts"))
	default:
		for i, acc := range m.accounts {
			line := fmt.Sprintf("%-40s %-20s %s", acc.Email, acc.Name, accountState(acc.IsActive, acc.LastSync))
			if i == m.cursor {
				line = selectedStyle.Render("> " + line)
				if m.confirmDelete == acc.ID {
					line += errorStyle.Render("  ctrl+d again to delete")
				}
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func accountState(active *bool, lastSync *time.Time) string {
	state := "active"
	if active != nil && !*active {
		state = "inactive"
	}
	if lastSync != nil && !lastSync.IsZero() {
		state += ", synced " + lastSync.Local().Format("2006-01-02 15:04")
	}
	return state
}
