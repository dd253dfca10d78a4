package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/brandon/mail-admin/pkg/types"
)

// SearchOptions contains search parameters
type SearchOptions struct {
	AccountEmail *string
	Label        *string
	Sender       *string
	Subject      *string
	Query        *string
	DateFrom     *time.Time
	DateTo       *time.Time
	Limit        int
}

// SearchThreads performs a search on cached threads. Query goes through the
// FTS5 index; the other fields are plain filters.
func (s *Store) SearchThreads(opts SearchOptions) ([]types.ThreadSummary, error) {
	var conditions []string
	var args []interface{}

	if opts.AccountEmail != nil {
		conditions = append(conditions, "t.account_email = ?")
		args = append(args, *opts.AccountEmail)
	}

	if opts.Label != nil {
		conditions = append(conditions, "t.label = ?")
		args = append(args, *opts.Label)
	}

	if opts.Sender != nil {
		conditions = append(conditions, `t.sender LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(*opts.Sender))
	}

	if opts.Subject != nil {
		conditions = append(conditions, `t.subject LIKE ? ESCAPE '\'`)
		args = append(args, containsPattern(*opts.Subject))
	}

	if opts.DateFrom != nil {
		conditions = append(conditions, "t.date >= ?")
		args = append(args, opts.DateFrom.UTC().Format(time.RFC3339))
	}

	if opts.DateTo != nil {
		conditions = append(conditions, "t.date <> '' AND t.date <= ?")
		args = append(args, opts.DateTo.UTC().Format(time.RFC3339))
	}

	if opts.Query != nil {
		if match := ftsQuery(*opts.Query); match != "" {
			conditions = append(conditions, "t.id IN (SELECT rowid FROM threads_fts WHERE threads_fts MATCH ?)")
			args = append(args, match)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 1000 {
		limit = 1000
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.account_email, t.label, t.thread_id, t.subject, t.sender, t.date, t.snippet
		FROM threads t
		%s
		ORDER BY t.date DESC, t.id DESC
		LIMIT ?
	`, whereClause)

	args = append(args, limit)

	rows, err := s.cache.DB().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search threads: %w", err)
	}
	defer rows.Close()

	var results []types.ThreadSummary
	for rows.Next() {
		var summary types.ThreadSummary
		var dateStr string

		err := rows.Scan(
			&summary.ID,
			&summary.AccountEmail,
			&summary.Label,
			&summary.ThreadID,
			&summary.Subject,
			&summary.Sender,
			&dateStr,
			&summary.Snippet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan thread: %w", err)
		}
		summary.Date = parseDate(dateStr)

		results = append(results, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read threads: %w", err)
	}

	return results, nil
}

// ftsQuery quotes every term so user input cannot use FTS5 syntax
func ftsQuery(q string) string {
	terms := strings.Fields(q)
	for i, term := range terms {
		terms[i] = `"` + strings.ReplaceAll(term, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches s literally anywhere in a LIKE operand
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
