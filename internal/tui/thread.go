package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/render"
)

// panStep is how far one key press moves a zoomed preview
const panStep = 10

func (m Model) updateThread(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.preview >= 0 {
		return m.updatePreview(msg)
	}

	switch msg.String() {
	case "esc", "backspace":
		return m.mountThreads()
	case "up", "k":
		if m.scroll > 0 {
			m.scroll--
		}
	case "down", "j":
		m.scroll++
	case "p":
		if len(m.plans) > 0 {
			m.preview = 0
			m.zoom = render.NewZoom()
		}
	}
	return m, nil
}

func (m Model) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.preview = -1
		m.zoom = render.NewZoom()
	case "p", "n":
		m.preview = (m.preview + 1) % len(m.plans)
		m.zoom = render.NewZoom()
	case "+", "=":
		m.zoom = m.zoom.In()
	case "-":
		m.zoom = m.zoom.Out()
	case "0":
		m.zoom = m.zoom.Reset()
	case "left", "h":
		m.zoom = m.zoom.Pan(-panStep, 0)
	case "right", "l":
		m.zoom = m.zoom.Pan(panStep, 0)
	case "up", "k":
		m.zoom = m.zoom.Pan(0, -panStep)
	case "down", "j":
		m.zoom = m.zoom.Pan(0, panStep)
	}
	return m, nil
}

func (m Model) viewThread() string {
	if m.preview >= 0 && m.preview < len(m.plans) {
		return m.viewPreview()
	}

	width := m.width - 4
	var sections []string
	sections = append(sections, headerStyle.Render(m.thread.Subject))

	for _, msg := range m.thread.Messages {
		meta := msg.From
		if msg.Date != nil {
			meta += "  " + msg.Date.Local().Format("2006-01-02 15:04")
		}
		body := render.MessageBody(m.resolver, msg.Body, msg.Attachments)
		sections = append(sections, mutedStyle.Render(meta), body.Render(width), "")
	}
	if len(m.thread.Messages) == 0 {
		sections = append(sections, mutedStyle.Render(render.NoContentText))
	}

	lines := strings.Split(strings.Join(sections, "\n"), "\n")
	start := m.scroll
	if start > len(lines)-1 {
		start = len(lines) - 1
	}
	lines = lines[start:]
	if m.height > 6 && len(lines) > m.height-6 {
		lines = lines[:m.height-6]
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewPreview() string {
	p := m.plans[m.preview]
	status := fmt.Sprintf("zoom %.0f%%", m.zoom.Scale*100)
	if m.zoom.CanPan() {
		status += fmt.Sprintf("  offset %.0f,%.0f", m.zoom.X, m.zoom.Y)
	}
	content := strings.Join(append(p.Lines(), "", mutedStyle.Render(status)), "\n")
	return previewStyle.Render(content) + "\n" +
		mutedStyle.Render(fmt.Sprintf("  %d of %d", m.preview+1, len(m.plans)))
}
