package types

import "time"

// Label types accepted by the thread listing endpoint
const (
	LabelInbox = "INBOX"
	LabelSent  = "SENT"
)

// Account represents a managed email account as returned by the backend
type Account struct {
	ID       string     `json:"_id"`
	Email    string     `json:"email"`
	Name     string     `json:"name,omitempty"`
	IsActive *bool      `json:"isActive,omitempty"`
	LastSync *time.Time `json:"lastSync,omitempty"`
}

// AccountUpdate carries the mutable fields of an account
type AccountUpdate struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Thread represents a synchronized Gmail thread
type Thread struct {
	ID           string          `json:"_id"`
	ThreadID     string          `json:"threadId"`
	Subject      string          `json:"subject"`
	Snippet      string          `json:"snippet"`
	From         string          `json:"from"`
	To           string          `json:"to,omitempty"`
	Date         *time.Time      `json:"date,omitempty"`
	LabelIDs     []string        `json:"labelIds,omitempty"`
	MessageCount int             `json:"messageCount,omitempty"`
	Messages     []ThreadMessage `json:"messages,omitempty"`
}

// ThreadMessage is a single message inside a thread
type ThreadMessage struct {
	ID          string       `json:"_id"`
	MessageID   string       `json:"messageId"`
	From        string       `json:"from"`
	To          string       `json:"to,omitempty"`
	Subject     string       `json:"subject,omitempty"`
	Date        *time.Time   `json:"date,omitempty"`
	Body        string       `json:"body"`
	Snippet     string       `json:"snippet,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Pagination describes a page of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ThreadPage is one page of threads for an account and label
type ThreadPage struct {
	Account    *Account   `json:"account,omitempty"`
	Threads    []Thread   `json:"threads"`
	Pagination Pagination `json:"pagination"`
}

// Chat represents a Google Chat space pulled in for an account
type Chat struct {
	ID              string     `json:"_id"`
	SpaceID         string     `json:"spaceId"`
	DisplayName     string     `json:"displayName"`
	SpaceType       string     `json:"spaceType,omitempty"`
	MessageCount    int        `json:"messageCount,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
}

// ChatSender identifies the author of a chat message
type ChatSender struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
}

// ChatMessage is a single Google Chat message
type ChatMessage struct {
	ID          string       `json:"_id"`
	MessageID   string       `json:"messageId"`
	Text        string       `json:"text"`
	Sender      ChatSender   `json:"sender"`
	CreateTime  *time.Time   `json:"createTime,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// ThreadSummary is a thread row served from the local offline cache
type ThreadSummary struct {
	ID           int64     `json:"id"`
	AccountEmail string    `json:"account_email"`
	Label        string    `json:"label"`
	ThreadID     string    `json:"thread_id"`
	Subject      string    `json:"subject"`
	Sender       string    `json:"sender"`
	Date         time.Time `json:"date"`
	Snippet      string    `json:"snippet"`
}
