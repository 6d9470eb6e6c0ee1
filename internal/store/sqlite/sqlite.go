// Package sqlite opens a local SQLite store (modernc, cgo-free) and hands
// the connection to sqlstore. Used for dev mode and in-process tests.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/store/sqlstore"
)

// Open opens (or creates) a SQLite database at the given path with WAL
// journal mode and foreign keys on. Cascade deletes depend on the
// foreign_keys pragma, so it is not optional.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// OpenMemory opens a private in-memory database, used by tests.
func OpenMemory() (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, err
	}
	// A second connection would see a different empty database.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs the store on an already opened connection.
func New(db *sql.DB) store.Store { return sqlstore.New(db) }

// EnsureSchema creates all tables if missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// schema is the SQLite DDL; same shape as the Postgres schema with
// INTEGER rowid keys and BLOB columns.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    username    TEXT NOT NULL UNIQUE,
    email       TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS vaults (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    owner_id      INTEGER NOT NULL REFERENCES users(id),
    name          TEXT NOT NULL,
    vault_type    TEXT NOT NULL DEFAULT 'PERSONAL',
    encrypted_key BLOB,
    key_iv        BLOB,
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_members (
    vault_id  INTEGER NOT NULL REFERENCES vaults(id) ON DELETE CASCADE,
    user_id   INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role      TEXT NOT NULL,
    added_at  TIMESTAMP NOT NULL,
    PRIMARY KEY (vault_id, user_id)
);

CREATE TABLE IF NOT EXISTS credentials (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    vault_id         INTEGER NOT NULL REFERENCES vaults(id) ON DELETE CASCADE,
    title            TEXT NOT NULL,
    account_username TEXT,
    url              TEXT,
    secret_enc       BLOB NOT NULL,
    secret_iv        BLOB NOT NULL,
    notes_enc        BLOB,
    notes_iv         BLOB,
    totp_enc         BLOB,
    totp_iv          BLOB,
    security_score   INTEGER,
    breach_state     TEXT NOT NULL DEFAULT 'NONE',
    expires_at       TIMESTAMP,
    created_at       TIMESTAMP NOT NULL,
    updated_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_credentials_vault ON credentials(vault_id);
CREATE INDEX IF NOT EXISTS idx_credentials_url ON credentials(vault_id, url);

CREATE TABLE IF NOT EXISTS credential_shares (
    credential_id INTEGER NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    user_id       INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role          TEXT NOT NULL DEFAULT 'READER',
    status        TEXT NOT NULL DEFAULT 'ACTIVE',
    shared_at     TIMESTAMP NOT NULL,
    PRIMARY KEY (credential_id, user_id)
);

CREATE TABLE IF NOT EXISTS tags (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS folders (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS credential_tags (
    credential_id INTEGER NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    tag_id        INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (credential_id, tag_id)
);

CREATE TABLE IF NOT EXISTS credential_folders (
    credential_id INTEGER NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    folder_id     INTEGER NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
    PRIMARY KEY (credential_id, folder_id)
);

CREATE TABLE IF NOT EXISTS attachments (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    credential_id INTEGER NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    filename      TEXT NOT NULL,
    mime_type     TEXT,
    content_enc   BLOB NOT NULL,
    content_iv    BLOB NOT NULL,
    size_bytes    INTEGER,
    created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attachments_credential ON attachments(credential_id);

CREATE TABLE IF NOT EXISTS credential_history (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    credential_id INTEGER NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    secret_enc    BLOB NOT NULL,
    secret_iv     BLOB NOT NULL,
    rotated_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_credential ON credential_history(credential_id);
`
