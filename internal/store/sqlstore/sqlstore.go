// Package sqlstore implements store.Store on top of database/sql.
//
// The SQL here is deliberately dialect-neutral: placeholders are $1..$n in
// strictly ascending order, timestamps are bound explicitly from Go, and
// upserts use ON CONFLICT, all of which Postgres (pgx) and SQLite (modernc)
// interpret identically. Driver packages own connection setup and DDL.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

// New constructs a Store backed directly by database/sql.
func New(db *sql.DB) store.Store { return &sqlStore{db: db} }

type sqlStore struct{ db *sql.DB }

func (s *sqlStore) Users() store.Users             { return &users{db: s.db} }
func (s *sqlStore) Vaults() store.Vaults           { return &vaults{db: s.db} }
func (s *sqlStore) Members() store.Members         { return &members{db: s.db} }
func (s *sqlStore) Credentials() store.Credentials { return &credentials{db: s.db} }
func (s *sqlStore) Shares() store.Shares           { return &shares{db: s.db} }
func (s *sqlStore) Tags() store.Tags               { return &tags{db: s.db} }
func (s *sqlStore) Folders() store.Folders         { return &folders{db: s.db} }
func (s *sqlStore) Attachments() store.Attachments { return &attachments{db: s.db} }
func (s *sqlStore) History() store.History         { return &history{db: s.db} }

// HealthPing implements the health pinger used by the API health endpoint.
func (s *sqlStore) HealthPing(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

func now() time.Time { return time.Now().UTC() }

// --- Users ---

type users struct{ db *sql.DB }

func (u *users) Create(ctx context.Context, m *model.User) (*model.User, error) {
	created := now()
	var id int64
	err := u.db.QueryRowContext(ctx, `
        INSERT INTO users (username, email, created_at)
        VALUES ($1,$2,$3)
        RETURNING id
    `, m.Username, m.Email, created).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	out := *m
	out.UserID = id
	out.CreationTime = created
	return &out, nil
}

func (u *users) Get(ctx context.Context, userID int64) (*model.User, error) {
	var out model.User
	err := u.db.QueryRowContext(ctx, `
        SELECT id, username, email, created_at FROM users WHERE id=$1
    `, userID).Scan(&out.UserID, &out.Username, &out.Email, &out.CreationTime)
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (u *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var out model.User
	err := u.db.QueryRowContext(ctx, `
        SELECT id, username, email, created_at FROM users WHERE username=$1
    `, username).Scan(&out.UserID, &out.Username, &out.Email, &out.CreationTime)
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

// --- Vaults ---

type vaults struct{ db *sql.DB }

const vaultCols = `id, owner_id, name, vault_type, encrypted_key, key_iv, created_at, updated_at`

func scanVault(row interface{ Scan(...any) error }) (*model.Vault, error) {
	var v model.Vault
	if err := row.Scan(&v.VaultID, &v.OwnerID, &v.Name, &v.Type, &v.EncryptedKey, &v.KeyIV, &v.CreationTime, &v.UpdateTime); err != nil {
		return nil, err
	}
	return &v, nil
}

func (v *vaults) Create(ctx context.Context, mv *model.Vault) (*model.Vault, error) {
	typ := mv.Type
	if typ == "" {
		typ = model.VaultPersonal
	}
	created := now()
	var id int64
	err := v.db.QueryRowContext(ctx, `
        INSERT INTO vaults (owner_id, name, vault_type, encrypted_key, key_iv, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id
    `, mv.OwnerID, mv.Name, typ, mv.EncryptedKey, mv.KeyIV, created, created).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert vault: %w", err)
	}
	out := *mv
	out.VaultID = id
	out.Type = typ
	out.CreationTime = created
	out.UpdateTime = created
	return &out, nil
}

func (v *vaults) Get(ctx context.Context, vaultID int64) (*model.Vault, error) {
	out, err := scanVault(v.db.QueryRowContext(ctx,
		`SELECT `+vaultCols+` FROM vaults WHERE id=$1`, vaultID))
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

func (v *vaults) Update(ctx context.Context, vaultID int64, p store.UpdateVaultParams) (*model.Vault, error) {
	res, err := v.db.ExecContext(ctx, `
        UPDATE vaults SET
            name         = COALESCE($1, name),
            vault_type   = COALESCE($2, vault_type),
            encrypted_key = COALESCE($3, encrypted_key),
            key_iv       = COALESCE($4, key_iv),
            updated_at   = $5
        WHERE id=$6
    `, p.Name, nullableType(p.Type), p.EncryptedKey, p.KeyIV, now(), vaultID)
	if err != nil {
		return nil, fmt.Errorf("update vault: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, model.ErrNotFound
	}
	return v.Get(ctx, vaultID)
}

func (v *vaults) Delete(ctx context.Context, vaultID int64) error {
	// Memberships, credentials and their dependents go with the vault via
	// foreign-key cascade.
	res, err := v.db.ExecContext(ctx, `DELETE FROM vaults WHERE id=$1`, vaultID)
	if err != nil {
		return fmt.Errorf("delete vault: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (v *vaults) ListForUser(ctx context.Context, userID int64) ([]*model.Vault, error) {
	rows, err := v.db.QueryContext(ctx, `
        SELECT DISTINCT v.id, v.owner_id, v.name, v.vault_type, v.encrypted_key, v.key_iv, v.created_at, v.updated_at
        FROM vaults v
        LEFT JOIN vault_members m ON m.vault_id = v.id
        WHERE v.owner_id=$1 OR m.user_id=$2
        ORDER BY v.name
    `, userID, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Vault
	for rows.Next() {
		mv, err := scanVault(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mv)
	}
	return out, rows.Err()
}

func nullableType(t *model.VaultType) any {
	if t == nil {
		return nil
	}
	return string(*t)
}

// --- Members ---

type members struct{ db *sql.DB }

func (m *members) List(ctx context.Context, vaultID int64) ([]*model.VaultMember, error) {
	rows, err := m.db.QueryContext(ctx, `
        SELECT vm.vault_id, vm.user_id, vm.role, vm.added_at, u.username, u.email
        FROM vault_members vm
        INNER JOIN users u ON u.id = vm.user_id
        WHERE vm.vault_id=$1
        ORDER BY u.username
    `, vaultID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.VaultMember
	for rows.Next() {
		var vm model.VaultMember
		if err := rows.Scan(&vm.VaultID, &vm.UserID, &vm.Role, &vm.AddedAt, &vm.Username, &vm.Email); err != nil {
			return nil, err
		}
		out = append(out, &vm)
	}
	return out, rows.Err()
}

func (m *members) Upsert(ctx context.Context, vaultID, userID int64, role model.Role) error {
	_, err := m.db.ExecContext(ctx, `
        INSERT INTO vault_members (vault_id, user_id, role, added_at)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (vault_id, user_id) DO UPDATE SET role = excluded.role
    `, vaultID, userID, role, now())
	if err != nil {
		return fmt.Errorf("upsert member: %w", err)
	}
	return nil
}

func (m *members) Remove(ctx context.Context, vaultID, userID int64) error {
	res, err := m.db.ExecContext(ctx,
		`DELETE FROM vault_members WHERE vault_id=$1 AND user_id=$2`, vaultID, userID)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (m *members) GetRole(ctx context.Context, vaultID, userID int64) (model.Role, error) {
	var role model.Role
	err := m.db.QueryRowContext(ctx,
		`SELECT role FROM vault_members WHERE vault_id=$1 AND user_id=$2`, vaultID, userID).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoleNone, nil
	}
	if err != nil {
		return model.RoleNone, err
	}
	return role, nil
}

// --- Credentials ---

type credentials struct{ db *sql.DB }

const credCols = `id, vault_id, title, account_username, url, secret_enc, secret_iv,
        notes_enc, notes_iv, totp_enc, totp_iv, security_score, breach_state,
        expires_at, created_at, updated_at`

func scanCredential(row interface{ Scan(...any) error }) (*model.Credential, error) {
	var c model.Credential
	if err := row.Scan(&c.CredentialID, &c.VaultID, &c.Title, &c.AccountUsername, &c.URL,
		&c.SecretEnc, &c.SecretIV, &c.NotesEnc, &c.NotesIV, &c.TOTPEnc, &c.TOTPIV,
		&c.SecurityScore, &c.BreachState, &c.ExpirationTime, &c.CreationTime, &c.UpdateTime); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *credentials) Create(ctx context.Context, mc *model.Credential) (*model.Credential, error) {
	breach := mc.BreachState
	if breach == "" {
		breach = model.BreachNone
	}
	created := now()
	var id int64
	err := c.db.QueryRowContext(ctx, `
        INSERT INTO credentials (vault_id, title, account_username, url, secret_enc, secret_iv,
            notes_enc, notes_iv, totp_enc, totp_iv, security_score, breach_state,
            expires_at, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
        RETURNING id
    `, mc.VaultID, mc.Title, mc.AccountUsername, mc.URL, mc.SecretEnc, mc.SecretIV,
		mc.NotesEnc, mc.NotesIV, mc.TOTPEnc, mc.TOTPIV, mc.SecurityScore, breach,
		mc.ExpirationTime, created, created).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert credential: %w", err)
	}
	out := *mc
	out.CredentialID = id
	out.BreachState = breach
	out.CreationTime = created
	out.UpdateTime = created
	return &out, nil
}

func (c *credentials) Get(ctx context.Context, credentialID int64) (*model.Credential, error) {
	out, err := scanCredential(c.db.QueryRowContext(ctx,
		`SELECT `+credCols+` FROM credentials WHERE id=$1`, credentialID))
	if err != nil {
		return nil, notFound(err)
	}
	return out, nil
}

// Update applies COALESCE semantics field by field. When a new secret is
// supplied the prior secret is appended to credential_history inside the
// same transaction, so a rotation and its audit record are atomic.
func (c *credentials) Update(ctx context.Context, credentialID int64, p store.UpdateCredentialParams) (*model.Credential, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var prevSecret, prevIV []byte
	err = tx.QueryRowContext(ctx,
		`SELECT secret_enc, secret_iv FROM credentials WHERE id=$1`, credentialID).Scan(&prevSecret, &prevIV)
	if err != nil {
		return nil, notFound(err)
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE credentials SET
            vault_id        = COALESCE($1, vault_id),
            title           = COALESCE($2, title),
            account_username = COALESCE($3, account_username),
            url             = COALESCE($4, url),
            secret_enc      = COALESCE($5, secret_enc),
            secret_iv       = COALESCE($6, secret_iv),
            notes_enc       = COALESCE($7, notes_enc),
            notes_iv        = COALESCE($8, notes_iv),
            totp_enc        = COALESCE($9, totp_enc),
            totp_iv         = COALESCE($10, totp_iv),
            security_score  = COALESCE($11, security_score),
            breach_state    = COALESCE($12, breach_state),
            expires_at      = COALESCE($13, expires_at),
            updated_at      = $14
        WHERE id=$15
    `, p.VaultID, p.Title, p.AccountUsername, p.URL, p.SecretEnc, p.SecretIV,
		p.NotesEnc, p.NotesIV, p.TOTPEnc, p.TOTPIV, p.SecurityScore, nullableBreach(p.BreachState),
		p.ExpirationTime, now(), credentialID)
	if err != nil {
		return nil, fmt.Errorf("update credential: %w", err)
	}

	if p.SecretEnc != nil {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO credential_history (credential_id, secret_enc, secret_iv, rotated_at)
            VALUES ($1,$2,$3,$4)
        `, credentialID, prevSecret, prevIV, now())
		if err != nil {
			return nil, fmt.Errorf("append history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return c.Get(ctx, credentialID)
}

func (c *credentials) Delete(ctx context.Context, credentialID int64) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM credentials WHERE id=$1`, credentialID)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (c *credentials) ListByVault(ctx context.Context, vaultID int64, page, pageSize int) ([]*model.Credential, int, error) {
	items, err := c.queryPage(ctx,
		`SELECT `+credCols+` FROM credentials WHERE vault_id=$1 ORDER BY title LIMIT $2 OFFSET $3`,
		vaultID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE vault_id=$1`, vaultID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (c *credentials) SearchByURL(ctx context.Context, vaultID int64, substring string, page, pageSize int) ([]*model.Credential, int, error) {
	like := "%" + substring + "%"
	items, err := c.queryPage(ctx,
		`SELECT `+credCols+` FROM credentials WHERE vault_id=$1 AND url LIKE $2 ORDER BY title LIMIT $3 OFFSET $4`,
		vaultID, like, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE vault_id=$1 AND url LIKE $2`, vaultID, like).Scan(&total); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (c *credentials) queryPage(ctx context.Context, query string, args ...any) ([]*model.Credential, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Credential
	for rows.Next() {
		mc, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

func nullableBreach(b *model.BreachState) any {
	if b == nil {
		return nil
	}
	return string(*b)
}

func offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// --- Shares ---

type shares struct{ db *sql.DB }

func (s *shares) Upsert(ctx context.Context, credentialID, userID int64, role model.Role) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO credential_shares (credential_id, user_id, role, status, shared_at)
        VALUES ($1,$2,$3,'ACTIVE',$4)
        ON CONFLICT (credential_id, user_id) DO UPDATE SET role = excluded.role, status = 'ACTIVE'
    `, credentialID, userID, role, now())
	if err != nil {
		return fmt.Errorf("upsert share: %w", err)
	}
	return nil
}

func (s *shares) Revoke(ctx context.Context, credentialID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE credential_shares SET status='REVOKED' WHERE credential_id=$1 AND user_id=$2
    `, credentialID, userID)
	if err != nil {
		return fmt.Errorf("revoke share: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

func (s *shares) List(ctx context.Context, credentialID int64) ([]*model.CredentialShare, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT cs.credential_id, cs.user_id, cs.role, cs.status, cs.shared_at, u.username, u.email
        FROM credential_shares cs
        INNER JOIN users u ON u.id = cs.user_id
        WHERE cs.credential_id=$1
        ORDER BY u.username
    `, credentialID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.CredentialShare
	for rows.Next() {
		var cs model.CredentialShare
		if err := rows.Scan(&cs.CredentialID, &cs.UserID, &cs.Role, &cs.Status, &cs.SharedAt, &cs.Username, &cs.Email); err != nil {
			return nil, err
		}
		out = append(out, &cs)
	}
	return out, rows.Err()
}

func (s *shares) GetActive(ctx context.Context, credentialID, userID int64) (*model.CredentialShare, error) {
	var cs model.CredentialShare
	err := s.db.QueryRowContext(ctx, `
        SELECT credential_id, user_id, role, status, shared_at
        FROM credential_shares
        WHERE credential_id=$1 AND user_id=$2 AND status='ACTIVE'
    `, credentialID, userID).Scan(&cs.CredentialID, &cs.UserID, &cs.Role, &cs.Status, &cs.SharedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &cs, nil
}

// --- Tags ---

type tags struct{ db *sql.DB }

func (t *tags) Create(ctx context.Context, name string) (*model.Tag, error) {
	var id int64
	if err := t.db.QueryRowContext(ctx,
		`INSERT INTO tags (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert tag: %w", err)
	}
	return &model.Tag{TagID: id, Name: name}, nil
}

func (t *tags) Assign(ctx context.Context, credentialID, tagID int64) error {
	// Re-linking is a no-op.
	_, err := t.db.ExecContext(ctx, `
        INSERT INTO credential_tags (credential_id, tag_id) VALUES ($1,$2)
        ON CONFLICT (credential_id, tag_id) DO NOTHING
    `, credentialID, tagID)
	if err != nil {
		return fmt.Errorf("assign tag: %w", err)
	}
	return nil
}

func (t *tags) Unassign(ctx context.Context, credentialID, tagID int64) error {
	_, err := t.db.ExecContext(ctx,
		`DELETE FROM credential_tags WHERE credential_id=$1 AND tag_id=$2`, credentialID, tagID)
	if err != nil {
		return fmt.Errorf("unassign tag: %w", err)
	}
	return nil
}

func (t *tags) ListForCredential(ctx context.Context, credentialID int64) ([]*model.Tag, error) {
	rows, err := t.db.QueryContext(ctx, `
        SELECT tg.id, tg.name FROM tags tg
        INNER JOIN credential_tags ct ON ct.tag_id = tg.id
        WHERE ct.credential_id=$1
        ORDER BY tg.name
    `, credentialID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Tag
	for rows.Next() {
		var tg model.Tag
		if err := rows.Scan(&tg.TagID, &tg.Name); err != nil {
			return nil, err
		}
		out = append(out, &tg)
	}
	return out, rows.Err()
}

// --- Folders ---

type folders struct{ db *sql.DB }

func (f *folders) Create(ctx context.Context, name string) (*model.Folder, error) {
	var id int64
	if err := f.db.QueryRowContext(ctx,
		`INSERT INTO folders (name) VALUES ($1) RETURNING id`, name).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	return &model.Folder{FolderID: id, Name: name}, nil
}

func (f *folders) Assign(ctx context.Context, credentialID, folderID int64) error {
	_, err := f.db.ExecContext(ctx, `
        INSERT INTO credential_folders (credential_id, folder_id) VALUES ($1,$2)
        ON CONFLICT (credential_id, folder_id) DO NOTHING
    `, credentialID, folderID)
	if err != nil {
		return fmt.Errorf("assign folder: %w", err)
	}
	return nil
}

func (f *folders) Unassign(ctx context.Context, credentialID, folderID int64) error {
	_, err := f.db.ExecContext(ctx,
		`DELETE FROM credential_folders WHERE credential_id=$1 AND folder_id=$2`, credentialID, folderID)
	if err != nil {
		return fmt.Errorf("unassign folder: %w", err)
	}
	return nil
}

func (f *folders) ListForCredential(ctx context.Context, credentialID int64) ([]*model.Folder, error) {
	rows, err := f.db.QueryContext(ctx, `
        SELECT fd.id, fd.name FROM folders fd
        INNER JOIN credential_folders cf ON cf.folder_id = fd.id
        WHERE cf.credential_id=$1
        ORDER BY fd.name
    `, credentialID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Folder
	for rows.Next() {
		var fd model.Folder
		if err := rows.Scan(&fd.FolderID, &fd.Name); err != nil {
			return nil, err
		}
		out = append(out, &fd)
	}
	return out, rows.Err()
}

// --- Attachments ---

type attachments struct{ db *sql.DB }

func (a *attachments) Create(ctx context.Context, ma *model.Attachment) (*model.Attachment, error) {
	created := now()
	var id int64
	err := a.db.QueryRowContext(ctx, `
        INSERT INTO attachments (credential_id, filename, mime_type, content_enc, content_iv, size_bytes, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id
    `, ma.CredentialID, ma.Filename, ma.MimeType, ma.ContentEnc, ma.ContentIV, ma.SizeBytes, created).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert attachment: %w", err)
	}
	out := *ma
	out.AttachmentID = id
	out.CreationTime = created
	return &out, nil
}

func (a *attachments) Get(ctx context.Context, attachmentID int64) (*model.Attachment, error) {
	var out model.Attachment
	err := a.db.QueryRowContext(ctx, `
        SELECT id, credential_id, filename, mime_type, content_enc, content_iv, size_bytes, created_at
        FROM attachments WHERE id=$1
    `, attachmentID).Scan(&out.AttachmentID, &out.CredentialID, &out.Filename, &out.MimeType,
		&out.ContentEnc, &out.ContentIV, &out.SizeBytes, &out.CreationTime)
	if err != nil {
		return nil, notFound(err)
	}
	return &out, nil
}

func (a *attachments) ListMeta(ctx context.Context, credentialID int64) ([]*model.Attachment, error) {
	// Content blob excluded on purpose; fetch one by id to download.
	rows, err := a.db.QueryContext(ctx, `
        SELECT id, credential_id, filename, mime_type, size_bytes, created_at
        FROM attachments WHERE credential_id=$1
        ORDER BY created_at DESC
    `, credentialID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.Attachment
	for rows.Next() {
		var ma model.Attachment
		if err := rows.Scan(&ma.AttachmentID, &ma.CredentialID, &ma.Filename, &ma.MimeType, &ma.SizeBytes, &ma.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &ma)
	}
	return out, rows.Err()
}

func (a *attachments) Delete(ctx context.Context, attachmentID int64) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM attachments WHERE id=$1`, attachmentID)
	if err != nil {
		return fmt.Errorf("delete attachment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// --- History ---

type history struct{ db *sql.DB }

func (h *history) List(ctx context.Context, credentialID int64, page, pageSize int) ([]*model.HistoryEntry, int, error) {
	rows, err := h.db.QueryContext(ctx, `
        SELECT id, credential_id, secret_enc, secret_iv, rotated_at
        FROM credential_history WHERE credential_id=$1
        ORDER BY rotated_at DESC LIMIT $2 OFFSET $3
    `, credentialID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = rows.Close() }()
	var out []*model.HistoryEntry
	for rows.Next() {
		var he model.HistoryEntry
		if err := rows.Scan(&he.HistoryID, &he.CredentialID, &he.SecretEnc, &he.SecretIV, &he.RotatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &he)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	var total int
	if err := h.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credential_history WHERE credential_id=$1`, credentialID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
