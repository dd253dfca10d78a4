package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	march := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"rfc3339", `"2024-03-01T10:00:00Z"`, &march},
		{"fractional seconds", `"2024-03-01T10:00:00.000Z"`, &march},
		{"no zone", `"2024-03-01T10:00:00"`, &march},
		{"space separated", `"2024-03-01 10:00:00"`, &march},
		{"unix millis", `1709287200000`, &march},
		{"unix millis as string", `"1709287200000"`, &march},
		{"empty string", `""`, nil},
		{"null", `null`, nil},
		{"garbage", `"last tuesday"`, nil},
		{"object", `{"$date":1}`, nil},
		{"missing", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTime(json.RawMessage(tt.raw))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestThreadPage_BadDatesDoNotFailThePage(t *testing.T) {
	payload := `{
		"threads": [
			{"_id":"a","threadId":"t1","subject":"ok","date":"2024-03-01T10:00:00Z",
			 "messages":[{"_id":"m1","date":"","body":"hi","attachments":["/srv/a.png"]}]},
			{"_id":"b","threadId":"t2","subject":"odd","date":"not a date"}
		],
		"pagination": {"page":1,"limit":20,"total":2,"pages":1}
	}`

	var page ThreadPage
	require.NoError(t, json.Unmarshal([]byte(payload), &page))
	require.Len(t, page.Threads, 2)

	first := page.Threads[0]
	require.NotNil(t, first.Date)
	assert.Equal(t, 2024, first.Date.Year())
	assert.Equal(t, "t1", first.ThreadID)
	require.Len(t, first.Messages, 1)
	assert.Nil(t, first.Messages[0].Date)
	assert.Equal(t, "hi", first.Messages[0].Body)
	require.Len(t, first.Messages[0].Attachments, 1)
	assert.Equal(t, "/srv/a.png", first.Messages[0].Attachments[0].Path)

	assert.Nil(t, page.Threads[1].Date)
	assert.Equal(t, "odd", page.Threads[1].Subject)
	assert.Equal(t, 2, page.Pagination.Total)
}

func TestChatsAndAccounts_LenientTimes(t *testing.T) {
	var chats []Chat
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":"c1","displayName":"Team","lastMessageTime":""}]`), &chats))
	require.Len(t, chats, 1)
	assert.Equal(t, "Team", chats[0].DisplayName)
	assert.Nil(t, chats[0].LastMessageTime)

	var msgs []ChatMessage
	require.NoError(t, json.Unmarshal([]byte(`[{"_id":"x","text":"hello","sender":{"displayName":"Ann"},"createTime":1709287200000}]`), &msgs))
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].CreateTime)
	assert.Equal(t, "Ann", msgs[0].Sender.DisplayName)

	var acc Account
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"1","email":"ops@example.com","isActive":false,"lastSync":"bogus"}`), &acc))
	assert.Equal(t, "ops@example.com", acc.Email)
	require.NotNil(t, acc.IsActive)
	assert.False(t, *acc.IsActive)
	assert.Nil(t, acc.LastSync)

	// Encoding is unchanged
	out, err := json.Marshal(Thread{ThreadID: "t1", Date: &time.Time{}})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date":"0001-01-01T00:00:00Z"`)
}
