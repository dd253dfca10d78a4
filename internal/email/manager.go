package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/allowlist"
	"github.com/brandon/mail-admin/internal/api"
	"github.com/brandon/mail-admin/internal/cache"
	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/notify"
	"github.com/brandon/mail-admin/pkg/types"
)

// ErrInvalidLabel is returned for a thread label other than INBOX or SENT
var ErrInvalidLabel = errors.New("label must be INBOX or SENT")

// ErrOfflineCacheDisabled is returned by cache searches when no store is configured
var ErrOfflineCacheDisabled = errors.New("offline cache is disabled")

// Backend is the part of the backend API the manager drives
type Backend interface {
	SearchAccounts(ctx context.Context, search string) ([]types.Account, error)
	AddAccount(ctx context.Context, email string) (*api.AddResult, error)
	ListThreads(ctx context.Context, email string, q api.ThreadQuery) (*types.ThreadPage, error)
	SyncAccount(ctx context.Context, email string) (string, error)
	DeleteAccount(ctx context.Context, id string) (string, error)
	UpdateAccount(ctx context.Context, id string, update types.AccountUpdate) (*types.Account, error)
	ListChats(ctx context.Context, email string) ([]types.Chat, error)
	ListChatMessages(ctx context.Context, email, chatID string) ([]types.ChatMessage, error)
}

// Validator gates emails before an account is created or renamed
type Validator interface {
	Check(ctx context.Context, email string) error
	Domains(ctx context.Context) ([]string, error)
}

// Manager manages email account operations
type Manager struct {
	backend   Backend
	validator Validator
	store     *cache.Store
	notifier  notify.Notifier
	config    *config.Config
	logger    *logrus.Logger
}

// NewManager creates a new email manager. store may be nil, which disables
// the offline thread cache.
func NewManager(cfg *config.Config, backend Backend, validator Validator, store *cache.Store, notifier notify.Notifier, logger *logrus.Logger) *Manager {
	return &Manager{
		backend:   backend,
		validator: validator,
		store:     store,
		notifier:  notifier,
		config:    cfg,
		logger:    logger,
	}
}

// SearchAccounts lists accounts whose email matches search
func (m *Manager) SearchAccounts(ctx context.Context, search string) ([]types.Account, error) {
	accounts, err := m.backend.SearchAccounts(ctx, strings.TrimSpace(search))
	if err != nil {
		m.fail("Failed to load accounts", err)
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	return accounts, nil
}

// AddAccount validates email against the allow-list and, only when it
// passes, asks the backend to create the account. Nothing is retried.
func (m *Manager) AddAccount(ctx context.Context, email string) (*api.AddResult, error) {
	email = strings.TrimSpace(email)

	if err := m.validator.Check(ctx, email); err != nil {
		m.failValidation(err)
		return nil, err
	}

	result, err := m.backend.AddAccount(ctx, email)
	if err != nil {
		m.fail("Failed to add account", err)
		return nil, fmt.Errorf("failed to add account: %w", err)
	}

	msg := result.Message
	if msg == "" {
		msg = "Account added"
	}
	notify.Success(m.notifier, msg)
	m.logger.WithField("email", email).Info("Account added")

	return result, nil
}

// UpdateAccount changes an account. A new email goes through the same
// allow-list check as account creation.
func (m *Manager) UpdateAccount(ctx context.Context, id string, update types.AccountUpdate) (*types.Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account id is required")
	}

	update.Email = strings.TrimSpace(update.Email)
	if update.Email != "" {
		if err := m.validator.Check(ctx, update.Email); err != nil {
			m.failValidation(err)
			return nil, err
		}
	}

	acc, err := m.backend.UpdateAccount(ctx, id, update)
	if err != nil {
		m.fail("Failed to update account", err)
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	notify.Success(m.notifier, "Account updated")
	return acc, nil
}

// DeleteAccount removes an account by id
func (m *Manager) DeleteAccount(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("account id is required")
	}

	msg, err := m.backend.DeleteAccount(ctx, id)
	if err != nil {
		m.fail("Failed to delete account", err)
		return fmt.Errorf("failed to delete account: %w", err)
	}

	if msg == "" {
		msg = "Account deleted"
	}
	notify.Success(m.notifier, msg)
	m.logger.WithField("id", id).Info("Account deleted")
	return nil
}

// SyncAccount asks the backend to resynchronize an account
func (m *Manager) SyncAccount(ctx context.Context, email string) (string, error) {
	msg, err := m.backend.SyncAccount(ctx, email)
	if err != nil {
		m.fail("Failed to sync account", err)
		return "", fmt.Errorf("failed to sync account: %w", err)
	}

	if msg == "" {
		msg = "Sync started"
	}
	notify.Success(m.notifier, msg)
	m.logger.WithField("email", email).Info("Account sync requested")
	return msg, nil
}

// ThreadRequest selects a page of threads in one label tab
type ThreadRequest struct {
	Label string
	Page  int
	Query string
}

// NormalizeLabel maps user input to a thread label; empty means INBOX
func NormalizeLabel(label string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "", types.LabelInbox:
		return types.LabelInbox, nil
	case types.LabelSent:
		return types.LabelSent, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, label)
	}
}

// ClampPage keeps page within [1, pages]; pages below 1 only enforce the lower bound
func ClampPage(page, pages int) int {
	if pages > 0 && page > pages {
		page = pages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// ListThreads fetches one page of threads and records it in the offline cache
func (m *Manager) ListThreads(ctx context.Context, email string, req ThreadRequest) (*types.ThreadPage, error) {
	label, err := NormalizeLabel(req.Label)
	if err != nil {
		return nil, err
	}

	page, err := m.backend.ListThreads(ctx, email, api.ThreadQuery{
		Label: label,
		Page:  ClampPage(req.Page, 0),
		Limit: m.config.PageSize,
		Query: strings.TrimSpace(req.Query),
	})
	if err != nil {
		m.fail("Failed to load threads", err)
		return nil, fmt.Errorf("failed to list threads: %w", err)
	}

	if m.store != nil {
		if err := m.store.UpsertThreads(email, label, page.Threads); err != nil {
			m.logger.WithError(err).WithField("account", email).Warn("Failed to cache threads")
		}
	}

	return page, nil
}

// ListChats lists the chat spaces of an account
func (m *Manager) ListChats(ctx context.Context, email string) ([]types.Chat, error) {
	chats, err := m.backend.ListChats(ctx, email)
	if err != nil {
		m.fail("Failed to load chats", err)
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return chats, nil
}

// ListChatMessages lists the messages of a chat space
func (m *Manager) ListChatMessages(ctx context.Context, email, chatID string) ([]types.ChatMessage, error) {
	if chatID == "" {
		return nil, fmt.Errorf("chat id is required")
	}

	messages, err := m.backend.ListChatMessages(ctx, email, chatID)
	if err != nil {
		m.fail("Failed to load chat messages", err)
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return messages, nil
}

// CachedSearch selects threads from the offline cache
type CachedSearch struct {
	Account string
	Label   string
	Query   string
	Sender  string
	Limit   int
}

// SearchCachedThreads searches threads seen in earlier listings without
// contacting the backend.
func (m *Manager) SearchCachedThreads(search CachedSearch) ([]types.ThreadSummary, error) {
	if m.store == nil {
		return nil, ErrOfflineCacheDisabled
	}

	opts := cache.SearchOptions{Limit: search.Limit}
	if opts.Limit <= 0 {
		opts.Limit = m.config.SearchResultLimit
	}
	if search.Account != "" {
		opts.AccountEmail = &search.Account
	}
	if search.Label != "" {
		label, err := NormalizeLabel(search.Label)
		if err != nil {
			return nil, err
		}
		opts.Label = &label
	}
	if q := strings.TrimSpace(search.Query); q != "" {
		opts.Query = &q
	}
	if search.Sender != "" {
		opts.Sender = &search.Sender
	}

	results, err := m.store.SearchThreads(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search cached threads: %w", err)
	}
	return results, nil
}

// HasCachedThreads reports whether the offline cache holds anything for
// account, or for any account when account is empty.
func (m *Manager) HasCachedThreads(account string) (bool, error) {
	if m.store == nil {
		return false, ErrOfflineCacheDisabled
	}
	if account == "" {
		return m.store.HasAnyThreads()
	}
	return m.store.HasThreads(account)
}

// AllowedDomains returns the domains new accounts may use
func (m *Manager) AllowedDomains(ctx context.Context) ([]string, error) {
	domains, err := m.validator.Domains(ctx)
	if err != nil {
		m.fail("Failed to load allowed domains", err)
		return nil, err
	}
	return domains, nil
}

// failValidation tells a rejected address apart from an allow-list that
// could not be loaded
func (m *Manager) failValidation(err error) {
	if errors.Is(err, allowlist.ErrDomainNotAllowed) {
		m.fail("Email domain is not allowed", err)
		return
	}
	m.fail("Failed to load allowed domains", err)
}

func (m *Manager) fail(msg string, err error) {
	m.logger.WithError(err).Warn(msg)
	notify.Error(m.notifier, msg, err)
}
