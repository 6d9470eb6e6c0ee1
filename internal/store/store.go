package store

import (
	"context"
	"time"

	"github.com/passvault-io/passvault/internal/model"
)

// Store exposes persistence operations required by services and the access
// resolver. Implementations live under internal/store/<driver>/.
//
// No method here performs authorization; callers must already hold a
// positive decision from the access resolver. Upsert methods rely on the
// database's ON CONFLICT atomicity only: there is no transaction spanning a
// permission check and the following write.
type Store interface {
	Users() Users
	Vaults() Vaults
	Members() Members
	Credentials() Credentials
	Shares() Shares
	Tags() Tags
	Folders() Folders
	Attachments() Attachments
	History() History
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// UpdateVaultParams carries partial vault updates. Nil means "no change",
// never "clear".
type UpdateVaultParams struct {
	Name         *string
	Type         *model.VaultType
	EncryptedKey []byte
	KeyIV        []byte
}

type Vaults interface {
	Create(ctx context.Context, v *model.Vault) (*model.Vault, error)
	Get(ctx context.Context, vaultID int64) (*model.Vault, error)
	Update(ctx context.Context, vaultID int64, p UpdateVaultParams) (*model.Vault, error)
	Delete(ctx context.Context, vaultID int64) error
	// ListForUser returns the distinct union of vaults the user owns or is
	// a member of, ordered by name.
	ListForUser(ctx context.Context, userID int64) ([]*model.Vault, error)
}

type Members interface {
	List(ctx context.Context, vaultID int64) ([]*model.VaultMember, error)
	// Upsert inserts the (vault, user) pair or updates the role if the
	// pair already exists.
	Upsert(ctx context.Context, vaultID, userID int64, role model.Role) error
	Remove(ctx context.Context, vaultID, userID int64) error
	// GetRole returns the membership role for the pair, or RoleNone when
	// no row exists.
	GetRole(ctx context.Context, vaultID, userID int64) (model.Role, error)
}

// UpdateCredentialParams mirrors the COALESCE update: only non-nil fields
// are applied. Supplying SecretEnc rotates the secret and appends the prior
// one to history within the same transaction.
type UpdateCredentialParams struct {
	VaultID         *int64
	Title           *string
	AccountUsername *string
	URL             *string
	SecretEnc       []byte
	SecretIV        []byte
	NotesEnc        []byte
	NotesIV         []byte
	TOTPEnc         []byte
	TOTPIV          []byte
	SecurityScore   *int
	BreachState     *model.BreachState
	ExpirationTime  *time.Time
}

type Credentials interface {
	Create(ctx context.Context, c *model.Credential) (*model.Credential, error)
	Get(ctx context.Context, credentialID int64) (*model.Credential, error)
	Update(ctx context.Context, credentialID int64, p UpdateCredentialParams) (*model.Credential, error)
	Delete(ctx context.Context, credentialID int64) error
	// ListByVault and SearchByURL return one page of items plus a total
	// computed by an independent COUNT query.
	ListByVault(ctx context.Context, vaultID int64, page, pageSize int) ([]*model.Credential, int, error)
	SearchByURL(ctx context.Context, vaultID int64, substring string, page, pageSize int) ([]*model.Credential, int, error)
}

type Shares interface {
	// Upsert creates or reactivates a grant with the given role, setting
	// status ACTIVE regardless of any prior REVOKED state.
	Upsert(ctx context.Context, credentialID, userID int64, role model.Role) error
	// Revoke flips status to REVOKED; the row survives for audit.
	Revoke(ctx context.Context, credentialID, userID int64) error
	// List returns all grants including revoked ones; status filtering is
	// the access resolver's concern, not the listing's.
	List(ctx context.Context, credentialID int64) ([]*model.CredentialShare, error)
	// GetActive returns the ACTIVE grant for the pair, or ErrNotFound.
	GetActive(ctx context.Context, credentialID, userID int64) (*model.CredentialShare, error)
}

type Tags interface {
	Create(ctx context.Context, name string) (*model.Tag, error)
	Assign(ctx context.Context, credentialID, tagID int64) error
	Unassign(ctx context.Context, credentialID, tagID int64) error
	ListForCredential(ctx context.Context, credentialID int64) ([]*model.Tag, error)
}

type Folders interface {
	Create(ctx context.Context, name string) (*model.Folder, error)
	Assign(ctx context.Context, credentialID, folderID int64) error
	Unassign(ctx context.Context, credentialID, folderID int64) error
	ListForCredential(ctx context.Context, credentialID int64) ([]*model.Folder, error)
}

type Attachments interface {
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)
	Get(ctx context.Context, attachmentID int64) (*model.Attachment, error)
	// ListMeta excludes the content blob.
	ListMeta(ctx context.Context, credentialID int64) ([]*model.Attachment, error)
	Delete(ctx context.Context, attachmentID int64) error
}

type History interface {
	List(ctx context.Context, credentialID int64, page, pageSize int) ([]*model.HistoryEntry, int, error)
}
