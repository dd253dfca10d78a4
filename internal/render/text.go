package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	iconStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	nameStyle    = lipgloss.NewStyle().Bold(true)
	metaStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Underline(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	cardStyle    = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
	bodyStyle    = lipgloss.NewStyle()
	sectionStyle = lipgloss.NewStyle().MarginTop(1)
)

// Lines draws the plan as terminal lines
func (p Plan) Lines() []string {
	header := iconStyle.Render(p.Icon) + " " + nameStyle.Render(p.Name)
	if p.Size != "" {
		header += " " + metaStyle.Render(p.Size)
	}
	lines := []string{header}

	switch p.Branch {
	case BranchImage:
		lines = append(lines, metaStyle.Render("image  ")+linkStyle.Render(p.URL))
		if p.Poster != "" && p.Poster != p.URL {
			lines = append(lines, metaStyle.Render("thumb  ")+linkStyle.Render(p.Poster))
		}
	case BranchVideo:
		lines = append(lines, metaStyle.Render("video  ")+linkStyle.Render(p.URL))
		if p.Poster != "" {
			lines = append(lines, metaStyle.Render("poster ")+linkStyle.Render(p.Poster))
		}
	case BranchAudio:
		lines = append(lines, metaStyle.Render("audio  ")+linkStyle.Render(p.URL))
	case BranchPDF:
		lines = append(lines, metaStyle.Render("open   ")+linkStyle.Render(p.URL))
	case BranchUnavailable:
		lines = append(lines, failStyle.Render("File unavailable"))
	case BranchFile:
		if p.URL != "" {
			lines = append(lines, metaStyle.Render("file   ")+linkStyle.Render(p.URL))
		} else {
			lines = append(lines, mutedStyle.Render("No preview available"))
		}
	}

	if p.Download != "" && p.Branch != BranchUnavailable {
		lines = append(lines, metaStyle.Render("save   ")+linkStyle.Render(p.Download))
	}
	if p.Status != "" {
		style := warnStyle
		if p.Status == StatusNote("failed") {
			style = failStyle
		}
		lines = append(lines, style.Render(p.Status))
	}
	return lines
}

// Render draws the plan as a bordered card
func (p Plan) Render() string {
	return cardStyle.Render(strings.Join(p.Lines(), "\n"))
}

// Render draws the message body wrapped to width; width <= 0 disables wrapping
func (b Body) Render(width int) string {
	var sections []string

	switch {
	case b.NoContent:
		sections = append(sections, mutedStyle.Render(NoContentText))
	case b.Text != "":
		style := bodyStyle
		if width > 0 {
			style = style.Width(width)
		}
		sections = append(sections, style.Render(b.Text))
	}

	for _, p := range b.Attachments {
		sections = append(sections, sectionStyle.Render(p.Render()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
