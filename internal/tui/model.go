// Package tui is the interactive console: account search, thread browsing
// and message reading with attachment previews.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/brandon/mail-admin/internal/api"
	"github.com/brandon/mail-admin/internal/debounce"
	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/notify"
	"github.com/brandon/mail-admin/internal/render"
	"github.com/brandon/mail-admin/pkg/types"
)

// Service is the part of the account manager the console drives
type Service interface {
	SearchAccounts(ctx context.Context, search string) ([]types.Account, error)
	AllowedDomains(ctx context.Context) ([]string, error)
	AddAccount(ctx context.Context, address string) (*api.AddResult, error)
	DeleteAccount(ctx context.Context, id string) error
	SyncAccount(ctx context.Context, address string) (string, error)
	ListThreads(ctx context.Context, address string, req email.ThreadRequest) (*types.ThreadPage, error)
}

type screen int

const (
	screenAccounts screen = iota
	screenThreads
	screenThread
)

// Options configures the console
type Options struct {
	AccountSearchDelay time.Duration
	ThreadSearchDelay  time.Duration
	Debounce           []debounce.Option
}

// Model is the bubbletea model of the console
type Model struct {
	ctx      context.Context
	svc      Service
	resolver *media.Resolver
	toasts   *Toasts
	opts     Options
	initCmd  tea.Cmd

	screen screen
	view   int
	req    int
	width  int
	height int

	loading bool
	err     error

	// Accounts
	search        textinput.Model
	searchQuery   *debounce.Value[string]
	query         string
	accounts      []types.Account
	cursor        int
	adding        bool
	addInput      textinput.Model
	confirmDelete string

	// Allowed domains for the add form, fetched the first time it opens
	domains        []string
	domainsLoaded  bool
	domainsLoading bool
	domainsErr     error

	// Threads
	account      types.Account
	label        string
	page         int
	pagination   types.Pagination
	threadInput  textinput.Model
	threadQuery  *debounce.Value[string]
	threadFilter string
	threads      []types.Thread
	threadCursor int

	// Thread detail
	thread  types.Thread
	scroll  int
	plans   []render.Plan
	preview int
	zoom    render.Zoom

	toast    *notify.Notification
	toastSeq int
}

// New creates the console, mounted on the accounts view
func New(ctx context.Context, svc Service, resolver *media.Resolver, toasts *Toasts, opts Options) Model {
	search := textinput.New()
	search.Placeholder = "Search accounts"
	search.Prompt = "/ "
	search.CharLimit = 256

	addInput := textinput.New()
	addInput.Placeholder = "user@example.com"
	addInput.Prompt = "Add: "
	addInput.CharLimit = 320

	threadInput := textinput.New()
	threadInput.Placeholder = "Search threads"
	threadInput.Prompt = "/ "
	threadInput.CharLimit = 256

	m := Model{
		ctx:         ctx,
		svc:         svc,
		resolver:    resolver,
		toasts:      toasts,
		opts:        opts,
		search:      search,
		addInput:    addInput,
		threadInput: threadInput,
		label:       types.LabelInbox,
		page:        1,
		preview:     -1,
		zoom:        render.NewZoom(),
	}
	m, cmd := m.mountAccounts()
	m.initCmd = cmd
	return m
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.toasts.wait(), textinput.Blink)
}

// Close stops the debouncers of the current view
func (m Model) Close() {
	m.unmount()
}

// unmount tears down the current view. Results still in flight for it are
// discarded once the next view bumps the view counter.
func (m *Model) unmount() {
	if m.searchQuery != nil {
		m.searchQuery.Stop()
		m.searchQuery = nil
	}
	if m.threadQuery != nil {
		m.threadQuery.Stop()
		m.threadQuery = nil
	}
	m.search.Blur()
	m.addInput.Blur()
	m.threadInput.Blur()
	m.loading = false
	m.err = nil
	m.adding = false
	m.confirmDelete = ""
}

func (m Model) mountAccounts() (Model, tea.Cmd) {
	m.unmount()
	m.screen = screenAccounts
	m.view++
	m.searchQuery = debounce.NewValue[string](m.opts.AccountSearchDelay, m.opts.Debounce...)
	m.search.Focus()

	var fetch tea.Cmd
	m, fetch = m.fetchAccounts()
	return m, tea.Batch(fetch, waitForQuery(m.searchQuery, m.view))
}

func (m Model) mountThreads() (Model, tea.Cmd) {
	m.unmount()
	m.screen = screenThreads
	m.view++
	m.threadQuery = debounce.NewValue[string](m.opts.ThreadSearchDelay, m.opts.Debounce...)
	m.threadInput.Focus()

	var fetch tea.Cmd
	m, fetch = m.fetchThreads()
	return m, tea.Batch(fetch, waitForQuery(m.threadQuery, m.view))
}

func (m Model) mountThread(th types.Thread) Model {
	m.unmount()
	m.screen = screenThread
	m.view++
	m.thread = th
	m.scroll = 0
	m.preview = -1
	m.zoom = render.NewZoom()

	m.plans = nil
	for _, msg := range th.Messages {
		for _, att := range msg.Attachments {
			if p := render.PlanAttachment(m.resolver, att); p.Previewable() {
				m.plans = append(m.plans, p)
			}
		}
	}
	return m
}

func (m Model) fetchAccounts() (Model, tea.Cmd) {
	m.req++
	m.loading = true
	m.err = nil
	return m, searchAccountsCmd(m.ctx, m.svc, m.view, m.req, m.query)
}

func (m Model) fetchThreads() (Model, tea.Cmd) {
	m.req++
	m.loading = true
	m.err = nil
	return m, listThreadsCmd(m.ctx, m.svc, m.view, m.req, m.account.Email, email.ThreadRequest{
		Label: m.label,
		Page:  m.page,
		Query: m.threadFilter,
	})
}

// current reports whether a result belongs to the live view and request
func (m Model) current(view, req int) bool {
	return view == m.view && req == m.req
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case toastMsg:
		n := notify.Notification(msg)
		m.toast = &n
		m.toastSeq++
		return m, tea.Batch(m.toasts.wait(), expireToast(m.toastSeq))

	case toastExpiredMsg:
		if msg.seq == m.toastSeq {
			m.toast = nil
		}
		return m, nil

	case querySettledMsg:
		return m.applyQuery(msg)

	case accountsLoadedMsg:
		if !m.current(msg.view, msg.req) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.accounts = nil
			return m, nil
		}
		m.accounts = msg.accounts
		m.cursor = clampCursor(m.cursor, len(m.accounts))
		return m, nil

	case threadsLoadedMsg:
		if !m.current(msg.view, msg.req) {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.threads = nil
			return m, nil
		}
		m.threads = msg.page.Threads
		m.pagination = msg.page.Pagination
		if m.pagination.Page > 0 {
			m.page = m.pagination.Page
		}
		m.threadCursor = clampCursor(m.threadCursor, len(m.threads))
		return m, nil

	case domainsLoadedMsg:
		m.domainsLoading = false
		m.domainsErr = msg.err
		if msg.err == nil {
			m.domains = msg.domains
			m.domainsLoaded = true
		}
		return m, nil

	case actionDoneMsg:
		if msg.view != m.view || !msg.refresh {
			return m, nil
		}
		return m.fetchAccounts()

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.unmount()
			return m, tea.Quit
		}
		switch m.screen {
		case screenAccounts:
			return m.updateAccounts(msg)
		case screenThreads:
			return m.updateThreads(msg)
		case screenThread:
			return m.updateThread(msg)
		}
	}

	return m, nil
}

func (m Model) applyQuery(msg querySettledMsg) (tea.Model, tea.Cmd) {
	if msg.view != m.view {
		return m, nil
	}

	var fetch tea.Cmd
	switch m.screen {
	case screenAccounts:
		m.query = msg.query
		m.cursor = 0
		m, fetch = m.fetchAccounts()
		return m, tea.Batch(fetch, waitForQuery(m.searchQuery, m.view))
	case screenThreads:
		m.threadFilter = msg.query
		m.page = 1
		m.threadCursor = 0
		m, fetch = m.fetchThreads()
		return m, tea.Batch(fetch, waitForQuery(m.threadQuery, m.view))
	}
	return m, nil
}

func clampCursor(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
