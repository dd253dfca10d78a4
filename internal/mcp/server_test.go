package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
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
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/accounts":
			io.WriteString(w, `{"status":true,"accounts":[{"_id":"1","email":"ops@example.com"}]}`)
		case "/api/domains/allowed/gmail":
			io.WriteString(w, `{"domains":["example.com"]}`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"message":"boom"}`)
		}
	}))
	t.Cleanup(backend.Close)

	c, err := cache.NewCache(cache.MemoryPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	cfg := &config.Config{PageSize: 20, SearchResultLimit: 50, AllowedDomainType: "gmail"}
	client := api.NewClient(backend.URL, auth.StaticToken("tok"), backend.Client(), logger)
	validator := allowlist.NewValidator(client, cfg.AllowedDomainType, time.Minute, logger)
	manager := email.NewManager(cfg, client, validator, cache.NewStore(c, logger), notify.NewLogNotifier(logger), logger)

	srv := NewServer(cfg, manager, media.NewResolver("http://media.test"), logger)
	srv.SetVersion("1.2.3")
	return srv
}

// exchange runs the server over the given request lines and returns the decoded responses
func exchange(t *testing.T, srv *Server, lines ...string) []map[string]interface{} {
	t.Helper()

	var out bytes.Buffer
	srv.SetIO(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	_ = srv.Run(context.Background())

	var responses []map[string]interface{}
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func TestServer_Initialize(t *testing.T) {
	srv := newTestServer(t)

	resps := exchange(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"ping"}`,
	)
	require.Len(t, resps, 2, "notifications get no response")

	info := resps[0]["result"].(map[string]interface{})["serverInfo"].(map[string]interface{})
	assert.Equal(t, "mail-admin", info["name"])
	assert.Equal(t, "1.2.3", info["version"])
	assert.Equal(t, float64(2), resps[1]["id"])
}

func TestServer_ToolsList(t *testing.T) {
	srv := newTestServer(t)

	resps := exchange(t, srv, `{"jsonrpc":"2.0","id":"a","method":"tools/list"}`)
	require.Len(t, resps, 1)

	list := resps[0]["result"].(map[string]interface{})["tools"].([]interface{})
	assert.Len(t, list, 10)
}

func TestServer_ToolsCall(t *testing.T) {
	srv := newTestServer(t)

	resps := exchange(t, srv,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"list_accounts","arguments":{"search":"ops"}}}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"list_chats","arguments":{"email":"ops@example.com"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"send_email"}}`,
		`{"jsonrpc":"2.0","id":4,"method":"resources/list"}`,
	)
	require.Len(t, resps, 4)

	ok := resps[0]["result"].(map[string]interface{})
	assert.Nil(t, ok["isError"])
	text := ok["content"].([]interface{})[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "ops@example.com")

	failed := resps[1]["result"].(map[string]interface{})
	assert.Equal(t, true, failed["isError"])
	text = failed["content"].([]interface{})[0].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "boom")

	unknownTool := resps[2]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32602), unknownTool["code"])

	unknownMethod := resps[3]["error"].(map[string]interface{})
	assert.Equal(t, float64(-32601), unknownMethod["code"])
}

func TestServer_MalformedInputStops(t *testing.T) {
	srv := newTestServer(t)

	var out bytes.Buffer
	srv.SetIO(strings.NewReader("{not json\n"), &out)
	err := srv.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, out.String(), "-32700")
}

func TestServer_CancelledContext(t *testing.T) {
	srv := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	srv.SetIO(strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`+"\n"), &out)
	require.NoError(t, srv.Run(ctx))
	assert.Empty(t, out.String())
}
