package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the date shapes the backend has been seen to send
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// ParseTime reads a timestamp leniently. It returns nil for anything it
// cannot make sense of, including empty strings and null.
func ParseTime(raw json.RawMessage) *time.Time {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] != '"' {
		ms, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return nil
		}
		return fromUnixMilli(ms)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromUnixMilli(ms)
	}
	return nil
}

func fromUnixMilli(ms int64) *time.Time {
	if ms <= 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// Each decoder below lets the embedded alias take every field, then
// replaces the timestamp with its lenient reading.

// UnmarshalJSON decodes an account, tolerating odd lastSync values
func (a *Account) UnmarshalJSON(data []byte) error {
	type plain Account
	aux := struct {
		*plain
		LastSync json.RawMessage `json:"lastSync"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	a.LastSync = ParseTime(aux.LastSync)
	return nil
}

// UnmarshalJSON decodes a thread, tolerating odd date values
func (t *Thread) UnmarshalJSON(data []byte) error {
	type plain Thread
	aux := struct {
		*plain
		Date json.RawMessage `json:"date"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.Date = ParseTime(aux.Date)
	return nil
}

// UnmarshalJSON decodes a thread message, tolerating odd date values
func (m *ThreadMessage) UnmarshalJSON(data []byte) error {
	type plain ThreadMessage
	aux := struct {
		*plain
		Date json.RawMessage `json:"date"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.Date = ParseTime(aux.Date)
	return nil
}

// UnmarshalJSON decodes a chat, tolerating odd lastMessageTime values
func (c *Chat) UnmarshalJSON(data []byte) error {
	type plain Chat
	aux := struct {
		*plain
		LastMessageTime json.RawMessage `json:"lastMessageTime"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.LastMessageTime = ParseTime(aux.LastMessageTime)
	return nil
}

// UnmarshalJSON decodes a chat message, tolerating odd createTime values
func (m *ChatMessage) UnmarshalJSON(data []byte) error {
	type plain ChatMessage
	aux := struct {
		*plain
		CreateTime json.RawMessage `json:"createTime"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.CreateTime = ParseTime(aux.CreateTime)
	return nil
}
