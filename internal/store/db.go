// Package store persists the only state this layer owns: per-browser
// session identity, cart lines, and the bearer token vault. It is the
// server-side analog of the browser's local storage; nothing in it is
// authoritative for the shop.
package store

import (
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Browser sessions; user fields are a cache of the backend's /users/me.
CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,
  user_id TEXT,
  email TEXT,
  first_name TEXT,
  last_name TEXT,
  role TEXT,
  last_seen TEXT DEFAULT CURRENT_TIMESTAMP
);

-- Cart lines, keyed by (session, product); qty is kept >= 1 by the service
-- which deletes the row instead of storing zero.
CREATE TABLE IF NOT EXISTS cart_items(
  session_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  PRIMARY KEY (session_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_session ON cart_items(session_id);

-- Bearer tokens at rest, sealed with the session-secret-derived key.
CREATE TABLE IF NOT EXISTS tokens(
  session_id TEXT PRIMARY KEY,
  nonce BLOB NOT NULL,
  ciphertext BLOB NOT NULL,
  updated_at TEXT DEFAULT CURRENT_TIMESTAMP
);
`
	_, err := db.Exec(schema)
	return err
}
