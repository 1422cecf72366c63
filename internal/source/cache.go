package source

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// Cache is a sqlite-backed store of the last successful download per source
// URL, together with the validators the server gave us. A later fetch sends
// If-None-Match / If-Modified-Since and reuses the cached body on 304.
type Cache struct {
	db *sql.DB
}

// Entry is one cached download.
type Entry struct {
	URL          string
	ETag         string
	LastModified string
	ContentHash  string
	Body         []byte
	FetchedAt    time.Time
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS fetch_cache (
	url           TEXT PRIMARY KEY,
	etag          TEXT NOT NULL DEFAULT '',
	last_modified TEXT NOT NULL DEFAULT '',
	content_hash  TEXT NOT NULL DEFAULT '',
	body          BLOB NOT NULL,
	fetched_at    INTEGER NOT NULL
);`

// OpenCache opens (creating if needed) the cache database at path.
func OpenCache(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// The sqlite driver serialises access through a single connection.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(cacheSchema); err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Get returns the cached entry for url, or (nil, nil) when none exists.
func (c *Cache) Get(url string) (*Entry, error) {
	if c == nil || c.db == nil {
		return nil, nil
	}
	row := c.db.QueryRow(
		`SELECT etag, last_modified, content_hash, body, fetched_at FROM fetch_cache WHERE url = ?`, url)
	e := &Entry{URL: url}
	var fetchedAt int64
	err := row.Scan(&e.ETag, &e.LastModified, &e.ContentHash, &e.Body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.FetchedAt = time.Unix(fetchedAt, 0)
	return e, nil
}

// Put stores (or replaces) the entry for e.URL.
func (c *Cache) Put(e *Entry) error {
	if c == nil || c.db == nil {
		return nil
	}
	fetchedAt := e.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	_, err := c.db.Exec(
		`INSERT INTO fetch_cache (url, etag, last_modified, content_hash, body, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(url) DO UPDATE SET
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			content_hash = excluded.content_hash,
			body = excluded.body,
			fetched_at = excluded.fetched_at`,
		e.URL, e.ETag, e.LastModified, e.ContentHash, e.Body, fetchedAt.Unix())
	return err
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
