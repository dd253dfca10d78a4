package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/notify"
)

// Toasts is a notifier that feeds transient messages into the console
type Toasts struct {
	ch chan notify.Notification
}

// NewToasts creates an empty toast queue
func NewToasts() *Toasts {
	return &Toasts{ch: make(chan notify.Notification, 16)}
}

// Notify queues n, dropping it when the console is not keeping up
func (t *Toasts) Notify(n notify.Notification) {
	select {
	case t.ch <- n:
	default:
	}
}

func (t *Toasts) wait() tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		return toastMsg(<-t.ch)
	}
}
