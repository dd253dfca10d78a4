package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brandon/mail-admin/pkg/types"
)

// snippetLimit caps snippets derived from message bodies
const snippetLimit = 200

// Store provides methods for storing and retrieving data from the cache
type Store struct {
	cache  *Cache
	logger *logrus.Logger
}

// NewStore creates a new store instance
func NewStore(cache *Cache, logger *logrus.Logger) *Store {
	return &Store{
		cache:  cache,
		logger: logger,
	}
}

// SetSetting stores a value under key, replacing any previous value
func (s *Store) SetSetting(key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.cache.DB().Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetSetting returns the value stored under key and whether it exists
func (s *Store) GetSetting(key string) (string, bool, error) {
	var value string
	err := s.cache.DB().QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// DeleteSetting removes key; removing a missing key is not an error
func (s *Store) DeleteSetting(key string) error {
	if _, err := s.cache.DB().Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete setting %s: %w", key, err)
	}
	return nil
}

// UpsertThreads caches one page of threads for an account and label
func (s *Store) UpsertThreads(accountEmail, label string, threads []types.Thread) error {
	if len(threads) == 0 {
		return nil
	}

	tx, err := s.cache.DB().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO threads (account_email, label, thread_id, subject, sender, snippet, date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_email, label, thread_id) DO UPDATE SET
			subject = excluded.subject,
			sender = excluded.sender,
			snippet = excluded.snippet,
			date = excluded.date,
			cached_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare thread upsert: %w", err)
	}
	defer stmt.Close()

	for _, th := range threads {
		id := th.ThreadID
		if id == "" {
			id = th.ID
		}
		if id == "" {
			s.logger.WithField("account", accountEmail).Debug("Skipping thread without id")
			continue
		}

		_, err := stmt.Exec(accountEmail, label, id, th.Subject, threadSender(th), threadSnippet(th), formatDate(threadDate(th)))
		if err != nil {
			return fmt.Errorf("failed to upsert thread %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit threads: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"account": accountEmail,
		"label":   label,
		"count":   len(threads),
	}).Debug("Cached threads")
	return nil
}

// HasThreads checks if an account has any cached threads
func (s *Store) HasThreads(accountEmail string) (bool, error) {
	var count int
	err := s.cache.DB().QueryRow("SELECT COUNT(*) FROM threads WHERE account_email = ?", accountEmail).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check threads count: %w", err)
	}
	return count > 0, nil
}

// HasAnyThreads checks if there are any cached threads
func (s *Store) HasAnyThreads() (bool, error) {
	var count int
	err := s.cache.DB().QueryRow("SELECT COUNT(*) FROM threads").Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check threads count: %w", err)
	}
	return count > 0, nil
}

// PurgeAccount drops every cached thread of an account
func (s *Store) PurgeAccount(accountEmail string) error {
	if _, err := s.cache.DB().Exec("DELETE FROM threads WHERE account_email = ?", accountEmail); err != nil {
		return fmt.Errorf("failed to purge threads for %s: %w", accountEmail, err)
	}
	return nil
}

func threadSender(th types.Thread) string {
	if th.From != "" {
		return th.From
	}
	if len(th.Messages) > 0 {
		return th.Messages[0].From
	}
	return ""
}

func threadSnippet(th types.Thread) string {
	snippet := th.Snippet
	if snippet == "" && len(th.Messages) > 0 {
		snippet = th.Messages[0].Snippet
		if snippet == "" {
			snippet = th.Messages[0].Body
		}
	}
	if len(snippet) > snippetLimit {
		snippet = snippet[:snippetLimit] + "..."
	}
	return snippet
}

func threadDate(th types.Thread) *time.Time {
	if th.Date != nil {
		return th.Date
	}
	if len(th.Messages) > 0 {
		return th.Messages[0].Date
	}
	return nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
