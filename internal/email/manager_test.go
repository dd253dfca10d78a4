package email

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mail-admin/internal/allowlist"
	"github.com/brandon/mail-admin/internal/api"
	"github.com/brandon/mail-admin/internal/cache"
	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/notify"
	"github.com/brandon/mail-admin/pkg/types"
)

type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	addErr   error
	accounts []types.Account
	page     *types.ThreadPage
	lastTQ   api.ThreadQuery
	updated  types.AccountUpdate
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) count(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (f *fakeBackend) SearchAccounts(_ context.Context, search string) ([]types.Account, error) {
	f.record("search " + search)
	return f.accounts, nil
}

func (f *fakeBackend) AddAccount(_ context.Context, email string) (*api.AddResult, error) {
	f.record("add " + email)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &api.AddResult{Message: "Account added", Account: &types.Account{ID: "new", Email: email}}, nil
}

func (f *fakeBackend) ListThreads(_ context.Context, email string, q api.ThreadQuery) (*types.ThreadPage, error) {
	f.record("threads " + email)
	f.lastTQ = q
	if f.page == nil {
		return &types.ThreadPage{Threads: []types.Thread{}}, nil
	}
	return f.page, nil
}

func (f *fakeBackend) SyncAccount(_ context.Context, email string) (string, error) {
	f.record("sync " + email)
	return "", nil
}

func (f *fakeBackend) DeleteAccount(_ context.Context, id string) (string, error) {
	f.record("delete " + id)
	return "deleted", nil
}

func (f *fakeBackend) UpdateAccount(_ context.Context, id string, update types.AccountUpdate) (*types.Account, error) {
	f.record("update " + id)
	f.updated = update
	return &types.Account{ID: id, Email: update.Email}, nil
}

func (f *fakeBackend) ListChats(_ context.Context, email string) ([]types.Chat, error) {
	f.record("chats " + email)
	return []types.Chat{{ID: "c1"}}, nil
}

func (f *fakeBackend) ListChatMessages(_ context.Context, email, chatID string) ([]types.ChatMessage, error) {
	f.record("messages " + chatID)
	return nil, errors.New("backend down")
}

type staticDomains []string

func (s staticDomains) AllowedDomains(context.Context, string) ([]string, error) {
	return s, nil
}

type failingDomains struct{ err error }

func (f failingDomains) AllowedDomains(context.Context, string) ([]string, error) {
	return nil, f.err
}

type recorder struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (r *recorder) Notify(n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) levels() []notify.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Level
	for _, n := range r.notes {
		out = append(out, n.Level)
	}
	return out
}

type harness struct {
	manager *Manager
	backend *fakeBackend
	notes   *recorder
	store   *cache.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := cache.NewCache(cache.MemoryPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	store := cache.NewStore(c, logger)

	cfg := &config.Config{PageSize: 20, SearchResultLimit: 50}
	backend := &fakeBackend{}
	notes := &recorder{}
	validator := allowlist.NewValidator(staticDomains{"example.com"}, "gmail", time.Minute, logger)

	return &harness{
		manager: NewManager(cfg, backend, validator, store, notes, logger),
		backend: backend,
		notes:   notes,
		store:   store,
	}
}

func TestAddAccount_ValidEmailCreatesOnceAndNotifies(t *testing.T) {
	h := newHarness(t)

	res, err := h.manager.AddAccount(context.Background(), "user+tag@example.com")
	require.NoError(t, err)
	require.NotNil(t, res.Account)

	assert.Equal(t, 1, h.backend.count("add "))
	assert.Equal(t, []string{"add user+tag@example.com"}, h.backend.calls)
	assert.Equal(t, []notify.Level{notify.LevelSuccess}, h.notes.levels())
	assert.Equal(t, "Account added", h.notes.notes[0].Message)
}

func TestAddAccount_RejectedDomainMakesNoCall(t *testing.T) {
	h := newHarness(t)

	for _, email := range []string{"user@mail.example.com", "user@example.com.evil.com", "", "user@other.org"} {
		_, err := h.manager.AddAccount(context.Background(), email)
		require.Error(t, err, email)
		assert.True(t, errors.Is(err, allowlist.ErrDomainNotAllowed), email)
	}

	assert.Zero(t, h.backend.count("add "))
	assert.Len(t, h.notes.levels(), 4)
	for _, lvl := range h.notes.levels() {
		assert.Equal(t, notify.LevelError, lvl)
	}
}

func TestAddAccount_AllowListUnavailable(t *testing.T) {
	h := newHarness(t)
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	down := errors.New("connection refused")
	validator := allowlist.NewValidator(failingDomains{err: down}, "gmail", time.Minute, logger)
	m := NewManager(&config.Config{}, h.backend, validator, nil, h.notes, logger)

	_, err := m.AddAccount(context.Background(), "user@example.com")
	require.Error(t, err)
	assert.True(t, errors.Is(err, down))
	assert.False(t, errors.Is(err, allowlist.ErrDomainNotAllowed))
	assert.Zero(t, h.backend.count("add "))

	require.Len(t, h.notes.notes, 1)
	assert.Equal(t, "Failed to load allowed domains", h.notes.notes[0].Message)

	_, err = m.AllowedDomains(context.Background())
	assert.True(t, errors.Is(err, down))
}

func TestAllowedDomains(t *testing.T) {
	h := newHarness(t)

	domains, err := h.manager.AllowedDomains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com"}, domains)
	assert.Empty(t, h.notes.levels())
}

func TestAddAccount_ServerRejectionSurfacedWithoutRetry(t *testing.T) {
	h := newHarness(t)
	h.backend.addErr = &api.Error{Status: 409, Message: "Account already exists", Path: "/account/add"}

	_, err := h.manager.AddAccount(context.Background(), "dup@example.com")
	require.Error(t, err)
	assert.True(t, api.IsStatus(err, 409))
	assert.Equal(t, 1, h.backend.count("add "))
	assert.Equal(t, []notify.Level{notify.LevelError}, h.notes.levels())
}

func TestUpdateAccount_RevalidatesEmail(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, err := h.manager.UpdateAccount(ctx, "7", types.AccountUpdate{Email: "x@evil.com"})
	assert.True(t, errors.Is(err, allowlist.ErrDomainNotAllowed))
	assert.Zero(t, h.backend.count("update "))

	active := false
	acc, err := h.manager.UpdateAccount(ctx, "7", types.AccountUpdate{IsActive: &active})
	require.NoError(t, err)
	assert.Equal(t, "7", acc.ID)
	assert.Equal(t, 1, h.backend.count("update "))

	_, err = h.manager.UpdateAccount(ctx, "", types.AccountUpdate{})
	assert.Error(t, err)
}

func TestListThreads_LabelPagingAndCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.page = &types.ThreadPage{
		Threads:    []types.Thread{{ThreadID: "t1", Subject: "Invoice overdue", From: "billing@vendor.com"}},
		Pagination: types.Pagination{Page: 1, Limit: 20, Total: 1, Pages: 1},
	}

	_, err := h.manager.ListThreads(ctx, "ops@example.com", ThreadRequest{Label: "sent", Page: -3, Query: " overdue "})
	require.NoError(t, err)
	assert.Equal(t, api.ThreadQuery{Label: types.LabelSent, Page: 1, Limit: 20, Query: "overdue"}, h.backend.lastTQ)

	results, err := h.manager.SearchCachedThreads(CachedSearch{Query: "invoice", Label: "SENT"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ops@example.com", results[0].AccountEmail)

	has, err := h.manager.HasCachedThreads("ops@example.com")
	require.NoError(t, err)
	assert.True(t, has)

	_, err = h.manager.ListThreads(ctx, "ops@example.com", ThreadRequest{Label: "TRASH"})
	assert.True(t, errors.Is(err, ErrInvalidLabel))
}

func TestNormalizeLabelAndClampPage(t *testing.T) {
	label, err := NormalizeLabel("")
	require.NoError(t, err)
	assert.Equal(t, types.LabelInbox, label)

	label, err = NormalizeLabel(" Inbox ")
	require.NoError(t, err)
	assert.Equal(t, types.LabelInbox, label)

	assert.Equal(t, 1, ClampPage(0, 5))
	assert.Equal(t, 5, ClampPage(9, 5))
	assert.Equal(t, 3, ClampPage(3, 5))
	assert.Equal(t, 1, ClampPage(-4, 0))
	assert.Equal(t, 4, ClampPage(4, 0))
}

func TestSearchCachedThreads_Disabled(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	m := NewManager(&config.Config{}, &fakeBackend{}, nil, nil, nil, logger)

	_, err := m.SearchCachedThreads(CachedSearch{Query: "x"})
	assert.True(t, errors.Is(err, ErrOfflineCacheDisabled))
}

func TestChatsAndErrors(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	chats, err := h.manager.ListChats(ctx, "ops@example.com")
	require.NoError(t, err)
	assert.Len(t, chats, 1)

	_, err = h.manager.ListChatMessages(ctx, "ops@example.com", "c1")
	require.Error(t, err)
	assert.Equal(t, []notify.Level{notify.LevelError}, h.notes.levels())

	_, err = h.manager.ListChatMessages(ctx, "ops@example.com", "")
	assert.Error(t, err)
	assert.Equal(t, 1, h.backend.count("messages "))
}

func TestSyncAccount(t *testing.T) {
	h := newHarness(t)

	msg, err := h.manager.SyncAccount(context.Background(), "ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Sync started", msg)
	assert.Equal(t, []notify.Level{notify.LevelSuccess}, h.notes.levels())
}

func TestDeleteAccountByRef(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.accounts = []types.Account{
		{ID: "1", Email: "ops@example.com.au"},
		{ID: "2", Email: "OPS@example.com"},
	}
	require.NoError(t, h.store.UpsertThreads("ops@example.com", types.LabelInbox, []types.Thread{{ThreadID: "t", Subject: "s"}}))

	require.NoError(t, h.manager.DeleteAccountByRef(ctx, "ops@example.com"))
	assert.Contains(t, h.backend.calls, "delete 2")

	has, err := h.store.HasThreads("ops@example.com")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, h.manager.DeleteAccountByRef(ctx, "abc123"))
	assert.Contains(t, h.backend.calls, "delete abc123")

	err = h.manager.DeleteAccountByRef(ctx, "ghost@example.com")
	assert.True(t, errors.Is(err, ErrAccountNotFound))
}
