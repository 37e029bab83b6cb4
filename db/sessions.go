package db

import (
	"database/sql"
	"time"
)

// Session is a stored browser session and its serialized state
type Session struct {
	ID         string
	Data       []byte
	CreatedAt  int64
	ExpiresAt  int64
	LastUsedAt int64
}

// CreateSession stores a new session that expires after ttl
func (d *DB) CreateSession(id string, data []byte, ttl time.Duration) (*Session, error) {
	now := NowMs()
	expiresAt := time.Now().Add(ttl).UnixMilli()

	const query = `
		INSERT INTO sessions (id, data, created_at, expires_at, last_used_at)
		VALUES (?, ?, ?, ?, ?)
	`
	d.logQuery("run", query, id, now, expiresAt)
	if _, err := d.conn.Exec(query, id, string(data), now, expiresAt, now); err != nil {
		return nil, err
	}

	return &Session{
		ID:         id,
		Data:       data,
		CreatedAt:  now,
		ExpiresAt:  expiresAt,
		LastUsedAt: now,
	}, nil
}

// GetSession retrieves a session by ID, returns nil if not found or expired
func (d *DB) GetSession(id string) (*Session, error) {
	const query = `
		SELECT id, data, created_at, expires_at, last_used_at
		FROM sessions
		WHERE id = ? AND expires_at > ?
	`
	now := NowMs()
	d.logQuery("get", query, id, now)

	var s Session
	var data string
	err := d.conn.QueryRow(query, id, now).
		Scan(&s.ID, &data, &s.CreatedAt, &s.ExpiresAt, &s.LastUsedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.Data = []byte(data)
	return &s, nil
}

// SaveSessionData replaces a session's data and pushes its expiry out by ttl.
// A session swept between load and save is recreated.
func (d *DB) SaveSessionData(id string, data []byte, ttl time.Duration) error {
	now := NowMs()
	expiresAt := time.Now().Add(ttl).UnixMilli()

	const query = `
		INSERT INTO sessions (id, data, created_at, expires_at, last_used_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			data = excluded.data,
			expires_at = excluded.expires_at,
			last_used_at = excluded.last_used_at
	`
	d.logQuery("run", query, id, now, expiresAt)
	_, err := d.conn.Exec(query, id, string(data), now, expiresAt, now)
	return err
}

// TouchSession updates the last_used_at timestamp and pushes expiry out by ttl
func (d *DB) TouchSession(id string, ttl time.Duration) error {
	const query = `
		UPDATE sessions
		SET last_used_at = ?, expires_at = ?
		WHERE id = ?
	`
	now := NowMs()
	expiresAt := time.Now().Add(ttl).UnixMilli()
	d.logQuery("run", query, now, expiresAt, id)

	_, err := d.conn.Exec(query, now, expiresAt, id)
	return err
}

// DeleteSession removes a session from the database
func (d *DB) DeleteSession(id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`
	d.logQuery("run", query, id)

	_, err := d.conn.Exec(query, id)
	return err
}

// DeleteExpiredSessions removes all expired sessions
func (d *DB) DeleteExpiredSessions() (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= ?`
	now := NowMs()
	d.logQuery("run", query, now)

	result, err := d.conn.Exec(query, now)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CountSessions returns the number of stored sessions, expired or not
func (d *DB) CountSessions() (int64, error) {
	var count int64
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}
