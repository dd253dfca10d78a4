package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/debounce"
	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/notify"
	"github.com/brandon/mail-admin/pkg/types"
)

// toastTTL is how long a notification stays on screen
const toastTTL = 4 * time.Second

// Every fetch carries the view it was issued from and its request number.
// A result is applied only when both still match the model.

type accountsLoadedMsg struct {
	view     int
	req      int
	accounts []types.Account
	err      error
}

type threadsLoadedMsg struct {
	view int
	req  int
	page *types.ThreadPage
	err  error
}

// querySettledMsg carries a search value once typing has paused
type querySettledMsg struct {
	view  int
	query string
}

// domainsLoadedMsg carries the allow-list for the add form. It is not tied
// to a view since the list outlives any one of them.
type domainsLoadedMsg struct {
	domains []string
	err     error
}

// actionDoneMsg reports a finished add, delete or sync
type actionDoneMsg struct {
	view    int
	refresh bool
	err     error
}

type toastMsg notify.Notification

type toastExpiredMsg struct {
	seq int
}

// waitForQuery delivers the next settled value of v. It yields nothing once
// v is stopped, so a torn-down view never hears from its debouncer again.
func waitForQuery(v *debounce.Value[string], view int) tea.Cmd {
	if v == nil {
		return nil
	}
	return func() tea.Msg {
		q, ok := <-v.C()
		if !ok {
			return nil
		}
		return querySettledMsg{view: view, query: q}
	}
}

func expireToast(seq int) tea.Cmd {
	return tea.Tick(toastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func searchAccountsCmd(ctx context.Context, svc Service, view, req int, query string) tea.Cmd {
	return func() tea.Msg {
		accounts, err := svc.SearchAccounts(ctx, strings.TrimSpace(query))
		return accountsLoadedMsg{view: view, req: req, accounts: accounts, err: err}
	}
}

func allowedDomainsCmd(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		domains, err := svc.AllowedDomains(ctx)
		return domainsLoadedMsg{domains: domains, err: err}
	}
}

func listThreadsCmd(ctx context.Context, svc Service, view, req int, addr string, tr email.ThreadRequest) tea.Cmd {
	return func() tea.Msg {
		page, err := svc.ListThreads(ctx, addr, tr)
		return threadsLoadedMsg{view: view, req: req, page: page, err: err}
	}
}
