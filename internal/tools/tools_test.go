package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandon/mail-admin/internal/allowlist"
	"github.com/brandon/mail-admin/internal/api"
	"github.com/brandon/mail-admin/internal/auth"
	"github.com/brandon/mail-admin/internal/cache"
	"github.com/brandon/mail-admin/internal/config"
	"github.com/brandon/mail-admin/internal/email"
	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/internal/notify"
	"github.com/brandon/mail-admin/internal/render"
)

type backendStub struct {
	addCalls atomic.Int32
}

func (b *backendStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.URL.Path == "/api/domains/allowed/gmail":
		io.WriteString(w, `{"domains":["example.com"]}`)
	case r.URL.Path == "/accounts":
		io.WriteString(w, `{"status":true,"accounts":[{"_id":"1","email":"ops@example.com"},{"_id":"2","email":"ops@example.com.au"}]}`)
	case r.URL.Path == "/account/add":
		b.addCalls.Add(1)
		io.WriteString(w, `{"status":true,"message":"Account added","account":{"_id":"3","email":"new@example.com"}}`)
	case r.URL.Path == "/account/ops@example.com/threads":
		io.WriteString(w, `{"status":true,"data":{"threads":[
			{"_id":"a","threadId":"t1","subject":"Invoice","from":"billing@vendor.com","messages":[
				{"_id":"m1","body":"","attachments":[{"localPath":"/srv/inv.pdf","filename":"inv.pdf"}]}]}],
			"pagination":{"page":1,"limit":20,"total":1,"pages":1}}}`)
	case r.URL.Path == "/account/ops@example.com/chats":
		io.WriteString(w, `{"status":true,"chats":[{"_id":"c1","displayName":"Team"}]}`)
	case r.URL.Path == "/account/ops@example.com/chats/c1/messages":
		io.WriteString(w, `{"status":true,"messages":[{"_id":"m","text":"","sender":{"displayName":"Ann"},"attachments":[]}]}`)
	case r.Method == http.MethodDelete:
		io.WriteString(w, `{"status":true,"message":"deleted"}`)
	case r.Method == http.MethodPut:
		io.WriteString(w, `{"status":true,"account":{"_id":"1","email":"ops@example.com","name":"Ops"}}`)
	case r.URL.Path == "/account/ops@example.com/sync":
		io.WriteString(w, `{"status":true,"message":"Sync queued"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"not found"}`)
	}
}

func newTestRegistry(t *testing.T) (*Registry, *backendStub) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	stub := &backendStub{}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	c, err := cache.NewCache(cache.MemoryPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	cfg := &config.Config{PageSize: 20, SearchResultLimit: 50, AllowedDomainType: "gmail"}
	client := api.NewClient(srv.URL, auth.StaticToken(""), srv.Client(), logger)
	validator := allowlist.NewValidator(client, cfg.AllowedDomainType, time.Minute, logger)
	manager := email.NewManager(cfg, client, validator, cache.NewStore(c, logger), notify.NewLogNotifier(logger), logger)

	return NewRegistry(cfg, manager, media.NewResolver("http://media.test"), logger), stub
}

func run(t *testing.T, reg *Registry, name string, params map[string]interface{}) (interface{}, error) {
	t.Helper()
	tool, ok := reg.GetTool(name)
	require.True(t, ok, name)
	return tool.Execute(context.Background(), params)
}

func TestRegistry_Definitions(t *testing.T) {
	reg, _ := newTestRegistry(t)

	defs := reg.GetToolDefinitions()
	var names []string
	for _, d := range defs {
		names = append(names, d["name"].(string))
		assert.NotEmpty(t, d["description"])
		assert.Equal(t, "object", d["inputSchema"].(map[string]interface{})["type"])
	}
	assert.Equal(t, []string{
		"add_account", "delete_account", "list_accounts", "list_chat_messages", "list_chats",
		"list_threads", "resolve_attachment", "search_cached_threads", "sync_account", "update_account",
	}, names)
}

func TestAddAccountTool(t *testing.T) {
	reg, stub := newTestRegistry(t)

	_, err := run(t, reg, "add_account", map[string]interface{}{"email": "intruder@evil.com"})
	require.Error(t, err)
	assert.Zero(t, stub.addCalls.Load())

	out, err := run(t, reg, "add_account", map[string]interface{}{"email": "new@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), stub.addCalls.Load())
	assert.Equal(t, "Account added", out.(map[string]interface{})["message"])

	_, err = run(t, reg, "add_account", map[string]interface{}{})
	assert.EqualError(t, err, "email is required")
}

func TestThreadsThenCachedSearch(t *testing.T) {
	reg, _ := newTestRegistry(t)

	_, err := run(t, reg, "search_cached_threads", map[string]interface{}{"query": "invoice"})
	require.Error(t, err, "empty cache")

	out, err := run(t, reg, "list_threads", map[string]interface{}{"email": "ops@example.com", "include_messages": true})
	require.NoError(t, err)

	threads := out.(map[string]interface{})["threads"].([]map[string]interface{})
	require.Len(t, threads, 1)
	msgs := threads[0]["messages"].([]map[string]interface{})
	body := msgs[0]["body"].(render.Body)
	assert.False(t, body.NoContent, "attachment counts as content")
	require.Len(t, body.Attachments, 1)
	assert.Equal(t, render.BranchPDF, body.Attachments[0].Branch)

	found, err := run(t, reg, "search_cached_threads", map[string]interface{}{"query": "invoice", "limit": "5"})
	require.NoError(t, err)
	list := found.([]map[string]interface{})
	require.Len(t, list, 1)
	assert.Equal(t, "t1", list[0]["thread_id"])

	_, err = run(t, reg, "list_threads", map[string]interface{}{"email": "ops@example.com", "label": "TRASH"})
	assert.ErrorIs(t, err, email.ErrInvalidLabel)
}

func TestAccountTools(t *testing.T) {
	reg, _ := newTestRegistry(t)

	out, err := run(t, reg, "list_accounts", map[string]interface{}{"search": "ops"})
	require.NoError(t, err)
	assert.Len(t, out, 2)

	out, err = run(t, reg, "update_account", map[string]interface{}{"account": "ops@example.com", "name": "Ops", "is_active": "false"})
	require.NoError(t, err)
	assert.Equal(t, "Ops", out.(map[string]interface{})["account"].(map[string]interface{})["name"])

	_, err = run(t, reg, "update_account", map[string]interface{}{"account": "1", "is_active": 3.0})
	assert.Error(t, err)

	_, err = run(t, reg, "delete_account", map[string]interface{}{"account": "ops@example.com"})
	require.NoError(t, err)

	out, err = run(t, reg, "sync_account", map[string]interface{}{"email": "ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Sync queued", out.(map[string]interface{})["message"])
}

func TestChatTools(t *testing.T) {
	reg, _ := newTestRegistry(t)

	out, err := run(t, reg, "list_chats", map[string]interface{}{"email": "ops@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Team", out.([]map[string]interface{})[0]["display_name"])

	out, err = run(t, reg, "list_chat_messages", map[string]interface{}{"email": "ops@example.com", "chat_id": "c1"})
	require.NoError(t, err)
	body := out.([]map[string]interface{})[0]["body"].(render.Body)
	assert.True(t, body.NoContent)

	_, err = run(t, reg, "list_chat_messages", map[string]interface{}{"email": "ops@example.com"})
	assert.EqualError(t, err, "chat_id is required")
}

func TestResolveAttachmentTool(t *testing.T) {
	reg, _ := newTestRegistry(t)

	var params map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(`{"attachment":{"_id":"x1","downloadUrl":"https://p/x","mimeType":"video/mp4","fileSize":"1048576"}}`), &params))

	out, err := run(t, reg, "resolve_attachment", params)
	require.NoError(t, err)
	res := out.(map[string]interface{})
	assert.Equal(t, "http://media.test/api/media/gmail/media/x1", res["url"])
	assert.Equal(t, "provider-proxy", res["rule"])
	assert.Equal(t, media.KindVideo, res["kind"])
	assert.Equal(t, "1.0 MB", res["plan"].(render.Plan).Size)

	out, err = run(t, reg, "resolve_attachment", map[string]interface{}{"attachment": "/srv/files/a.png"})
	require.NoError(t, err)
	assert.Equal(t, "http://media.test/api/media/files/a.png", out.(map[string]interface{})["url"])

	_, err = run(t, reg, "resolve_attachment", map[string]interface{}{})
	assert.Error(t, err)
}

func TestParams(t *testing.T) {
	n, err := intParam(map[string]interface{}{"n": "12"}, "n")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = intParam(map[string]interface{}{"n": "x"}, "n")
	assert.Error(t, err)

	_, set, err := boolParam(map[string]interface{}{}, "b")
	require.NoError(t, err)
	assert.False(t, set)
}
