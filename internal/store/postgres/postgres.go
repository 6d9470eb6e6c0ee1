// Package postgres opens the production Postgres store via the pgx stdlib
// driver and hands the connection to sqlstore.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/store/sqlstore"
)

// Open opens a PostgreSQL connection and verifies connectivity.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// New constructs the store on an already opened connection.
func New(db *sql.DB) store.Store { return sqlstore.New(db) }

// EnsureSchema applies the schema. Deployments normally run migrations out
// of band; this keeps dev databases and integration tests self-contained.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

// Schema is the Postgres DDL for the vault subsystem.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id          BIGSERIAL PRIMARY KEY,
    username    TEXT NOT NULL UNIQUE,
    email       TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS vaults (
    id            BIGSERIAL PRIMARY KEY,
    owner_id      BIGINT NOT NULL REFERENCES users(id),
    name          TEXT NOT NULL,
    vault_type    TEXT NOT NULL DEFAULT 'PERSONAL',
    encrypted_key BYTEA,
    key_iv        BYTEA,
    created_at    TIMESTAMPTZ NOT NULL,
    updated_at    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS vault_members (
    vault_id  BIGINT NOT NULL REFERENCES vaults(id) ON DELETE CASCADE,
    user_id   BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role      TEXT NOT NULL,
    added_at  TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (vault_id, user_id)
);

CREATE TABLE IF NOT EXISTS credentials (
    id               BIGSERIAL PRIMARY KEY,
    vault_id         BIGINT NOT NULL REFERENCES vaults(id) ON DELETE CASCADE,
    title            TEXT NOT NULL,
    account_username TEXT,
    url              TEXT,
    secret_enc       BYTEA NOT NULL,
    secret_iv        BYTEA NOT NULL,
    notes_enc        BYTEA,
    notes_iv         BYTEA,
    totp_enc         BYTEA,
    totp_iv          BYTEA,
    security_score   INT,
    breach_state     TEXT NOT NULL DEFAULT 'NONE',
    expires_at       TIMESTAMPTZ,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_credentials_vault ON credentials(vault_id);
CREATE INDEX IF NOT EXISTS idx_credentials_url ON credentials(vault_id, url);

CREATE TABLE IF NOT EXISTS credential_shares (
    credential_id BIGINT NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role          TEXT NOT NULL DEFAULT 'READER',
    status        TEXT NOT NULL DEFAULT 'ACTIVE',
    shared_at     TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (credential_id, user_id)
);

CREATE TABLE IF NOT EXISTS tags (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS folders (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS credential_tags (
    credential_id BIGINT NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    tag_id        BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
    PRIMARY KEY (credential_id, tag_id)
);

CREATE TABLE IF NOT EXISTS credential_folders (
    credential_id BIGINT NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    folder_id     BIGINT NOT NULL REFERENCES folders(id) ON DELETE CASCADE,
    PRIMARY KEY (credential_id, folder_id)
);

CREATE TABLE IF NOT EXISTS attachments (
    id            BIGSERIAL PRIMARY KEY,
    credential_id BIGINT NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    filename      TEXT NOT NULL,
    mime_type     TEXT,
    content_enc   BYTEA NOT NULL,
    content_iv    BYTEA NOT NULL,
    size_bytes    BIGINT,
    created_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_attachments_credential ON attachments(credential_id);

CREATE TABLE IF NOT EXISTS credential_history (
    id            BIGSERIAL PRIMARY KEY,
    credential_id BIGINT NOT NULL REFERENCES credentials(id) ON DELETE CASCADE,
    secret_enc    BYTEA NOT NULL,
    secret_iv     BYTEA NOT NULL,
    rotated_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_credential ON credential_history(credential_id);
`
