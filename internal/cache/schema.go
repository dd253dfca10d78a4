package cache

// Schema contains SQL schema definitions for the local store
const Schema = `
-- Durable key/value settings (auth token, last used account, ...)
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Threads seen through the backend, kept for offline search
CREATE TABLE IF NOT EXISTS threads (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    account_email TEXT NOT NULL,
    label TEXT NOT NULL,
    thread_id TEXT NOT NULL,
    subject TEXT NOT NULL DEFAULT '',
    sender TEXT NOT NULL DEFAULT '',
    snippet TEXT NOT NULL DEFAULT '',
    date TEXT NOT NULL DEFAULT '',
    cached_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(account_email, label, thread_id)
);

CREATE INDEX IF NOT EXISTS idx_threads_account_email ON threads(account_email);
CREATE INDEX IF NOT EXISTS idx_threads_date ON threads(date);
CREATE INDEX IF NOT EXISTS idx_threads_sender ON threads(sender);

-- Full-text search index
CREATE VIRTUAL TABLE IF NOT EXISTS threads_fts USING fts5(
    subject,
    sender,
    snippet,
    content='threads',
    content_rowid='id'
);

-- Triggers for FTS
CREATE TRIGGER IF NOT EXISTS threads_fts_insert AFTER INSERT ON threads BEGIN
    INSERT INTO threads_fts(rowid, subject, sender, snippet)
    VALUES (new.id, new.subject, new.sender, new.snippet);
END;

CREATE TRIGGER IF NOT EXISTS threads_fts_update AFTER UPDATE ON threads BEGIN
    INSERT INTO threads_fts(threads_fts, rowid, subject, sender, snippet)
    VALUES ('delete', old.id, old.subject, old.sender, old.snippet);
    INSERT INTO threads_fts(rowid, subject, sender, snippet)
    VALUES (new.id, new.subject, new.sender, new.snippet);
END;

CREATE TRIGGER IF NOT EXISTS threads_fts_delete AFTER DELETE ON threads BEGIN
    INSERT INTO threads_fts(threads_fts, rowid, subject, sender, snippet)
    VALUES ('delete', old.id, old.subject, old.sender, old.snippet);
END;
`
