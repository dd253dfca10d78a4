// Package api is a typed client for the mail admin backend REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/internal/auth"
	"github.com/brandon/mail-admin/pkg/types"
)

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// Client talks to the backend. Every request reads the current token from
// the token source; no request is retried.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  auth.TokenSource
	logger  *logrus.Logger
}

// NewClient creates a backend client
func NewClient(baseURL string, tokens auth.TokenSource, httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(nil)
	}
	if tokens == nil {
		tokens = auth.StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		logger:  logger,
	}
}

// envelope is the common response wrapper; endpoints fill different fields
type envelope struct {
	Status   *bool           `json:"status"`
	Message  string          `json:"message"`
	Error    string          `json:"error"`
	Data     json.RawMessage `json:"data"`
	Account  json.RawMessage `json:"account"`
	Accounts json.RawMessage `json:"accounts"`
	Domains  json.RawMessage `json:"domains"`
	Chats    json.RawMessage `json:"chats"`
	Messages json.RawMessage `json:"messages"`
}

func (e *envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// ThreadQuery selects a page of threads
type ThreadQuery struct {
	Label string
	Page  int
	Limit int
	Query string
}

// AddResult is the outcome of a successful account creation
type AddResult struct {
	Message string
	Account *types.Account
}

// SearchAccounts lists accounts whose email matches search
func (c *Client) SearchAccounts(ctx context.Context, search string) ([]types.Account, error) {
	q := url.Values{}
	q.Set("search", search)

	var env envelope
	if err := c.do(ctx, http.MethodGet, "/accounts", q, nil, &env); err != nil {
		return nil, err
	}

	var accounts []types.Account
	if err := decodeFirst(&accounts, env.Accounts, env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode accounts: %w", err)
	}
	return accounts, nil
}

// AddAccount provisions an account for email
func (c *Client) AddAccount(ctx context.Context, email string) (*AddResult, error) {
	body := map[string]string{"email": email}

	var env envelope
	if err := c.do(ctx, http.MethodPost, "/account/add", nil, body, &env); err != nil {
		return nil, err
	}

	result := &AddResult{Message: env.message()}
	var acc types.Account
	if ok, err := decodeOptional(&acc, env.Account, env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	} else if ok {
		result.Account = &acc
	}
	return result, nil
}

// ListThreads returns one page of threads for an account
func (c *Client) ListThreads(ctx context.Context, email string, tq ThreadQuery) (*types.ThreadPage, error) {
	q := url.Values{}
	if tq.Label != "" {
		q.Set("labelType", tq.Label)
	}
	if tq.Page > 0 {
		q.Set("page", strconv.Itoa(tq.Page))
	}
	if tq.Limit > 0 {
		q.Set("limit", strconv.Itoa(tq.Limit))
	}
	if tq.Query != "" {
		q.Set("q", tq.Query)
	}

	var env envelope
	if err := c.do(ctx, http.MethodGet, "/account/"+url.PathEscape(email)+"/threads", q, nil, &env); err != nil {
		return nil, err
	}

	var page types.ThreadPage
	if err := decodeFirst(&page, env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode threads: %w", err)
	}
	if page.Threads == nil {
		page.Threads = []types.Thread{}
	}
	return &page, nil
}

// SyncAccount asks the backend to resynchronize an account
func (c *Client) SyncAccount(ctx context.Context, email string) (string, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, "/account/"+url.PathEscape(email)+"/sync", nil, nil, &env); err != nil {
		return "", err
	}
	return env.message(), nil
}

// DeleteAccount removes an account by id
func (c *Client) DeleteAccount(ctx context.Context, id string) (string, error) {
	var env envelope
	if err := c.do(ctx, http.MethodDelete, "/account/"+url.PathEscape(id), nil, nil, &env); err != nil {
		return "", err
	}
	return env.message(), nil
}

// UpdateAccount changes an account's mutable fields
func (c *Client) UpdateAccount(ctx context.Context, id string, update types.AccountUpdate) (*types.Account, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPut, "/account/"+url.PathEscape(id), nil, update, &env); err != nil {
		return nil, err
	}

	var acc types.Account
	ok, err := decodeOptional(&acc, env.Account, env.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode account: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &acc, nil
}

// ListChats lists the chat spaces of an account
func (c *Client) ListChats(ctx context.Context, email string) ([]types.Chat, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/account/"+url.PathEscape(email)+"/chats", nil, nil, &env); err != nil {
		return nil, err
	}

	var chats []types.Chat
	if err := decodeFirst(&chats, env.Chats, env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode chats: %w", err)
	}
	return chats, nil
}

// ListChatMessages lists the messages of one chat space
func (c *Client) ListChatMessages(ctx context.Context, email, chatID string) ([]types.ChatMessage, error) {
	p := "/account/" + url.PathEscape(email) + "/chats/" + url.PathEscape(chatID) + "/messages"

	var env envelope
	if err := c.do(ctx, http.MethodGet, p, nil, nil, &env); err != nil {
		return nil, err
	}

	var messages []types.ChatMessage
	if err := decodeFirst(&messages, env.Messages, env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode chat messages: %w", err)
	}
	return messages, nil
}

// AllowedDomains returns the server-side allow-list for an account type
func (c *Client) AllowedDomains(ctx context.Context, accountType string) ([]string, error) {
	var env envelope
	if err := c.do(ctx, http.MethodGet, "/api/domains/allowed/"+url.PathEscape(accountType), nil, nil, &env); err != nil {
		return nil, err
	}

	var domains []string
	if err := decodeFirst(&domains, env.Domains, env.Data); err != nil {
		return nil, fmt.Errorf("failed to decode domains: %w", err)
	}
	return domains, nil
}

func (c *Client) do(ctx context.Context, method, p string, query url.Values, body interface{}, out *envelope) error {
	target := c.baseURL + p
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get auth token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"method": method,
			"path":   p,
		}).Warn("Backend request failed")
		return fmt.Errorf("failed to call %s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	c.logger.WithFields(logrus.Fields{
		"method":   method,
		"path":     p,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := strings.TrimSpace(string(raw))
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.message() != "" {
			msg = env.message()
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: msg, Path: p}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Status != nil && !*out.Status {
		msg := out.message()
		if msg == "" {
			msg = "request rejected"
		}
		return &Error{Status: resp.StatusCode, Message: msg, Path: p}
	}
	return nil
}

// decodeFirst decodes the first present candidate into v. Missing payloads
// leave v at its zero value.
func decodeFirst(v interface{}, candidates ...json.RawMessage) error {
	_, err := decodeOptional(v, candidates...)
	return err
}

func decodeOptional(v interface{}, candidates ...json.RawMessage) (bool, error) {
	for _, raw := range candidates {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
			continue
		}
		if err := json.Unmarshal(trimmed, v); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
