// Package access resolves what a user may do with a vault or credential.
//
// Vault-level rights come from ownership or a membership row; credential
// level rights add direct shares on top. All decisions funnel through the
// Resolver so handlers and services never compare roles themselves.
package access

import (
	"context"

	"github.com/pkg/errors"

	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

// Resolver answers permission questions against the store. It holds no
// state and is safe for concurrent use.
type Resolver struct {
	store store.Store
}

func NewResolver(s store.Store) *Resolver {
	return &Resolver{store: s}
}

// VaultRole returns the user's effective role in a vault. Ownership wins
// over any membership row: an owner is OWNER even if a stale membership
// row says otherwise. A missing vault resolves to RoleNone without error,
// so callers can treat "no such vault" and "no access" uniformly.
func (r *Resolver) VaultRole(ctx context.Context, vaultID, userID int64) (model.Role, error) {
	v, err := r.store.Vaults().Get(ctx, vaultID)
	if errors.Is(err, model.ErrNotFound) {
		return model.RoleNone, nil
	}
	if err != nil {
		return model.RoleNone, errors.Wrap(err, "resolve vault role")
	}
	if v.OwnerID == userID {
		return model.RoleOwner, nil
	}
	return r.store.Members().GetRole(ctx, vaultID, userID)
}

// CanReadCredential reports whether the user may read the credential:
// any vault role grants read, and failing that an ACTIVE share of either
// role does. Revoked shares grant nothing.
func (r *Resolver) CanReadCredential(ctx context.Context, userID int64, c *model.Credential) (bool, error) {
	role, err := r.VaultRole(ctx, c.VaultID, userID)
	if err != nil {
		return false, err
	}
	if role != model.RoleNone {
		return true, nil
	}
	return r.hasActiveShare(ctx, c.CredentialID, userID, false)
}

// CanWriteCredential reports whether the user may modify or delete the
// credential: an OWNER, ADMIN or EDITOR vault role, or an ACTIVE EDITOR
// share. READER grants read only, through either path.
func (r *Resolver) CanWriteCredential(ctx context.Context, userID int64, c *model.Credential) (bool, error) {
	role, err := r.VaultRole(ctx, c.VaultID, userID)
	if err != nil {
		return false, err
	}
	if writesInVault(role) {
		return true, nil
	}
	return r.hasActiveShare(ctx, c.CredentialID, userID, true)
}

// CanCreateCredential reports whether the user may add credentials to the
// vault. Shares are per-credential and cannot grant creation.
func (r *Resolver) CanCreateCredential(ctx context.Context, vaultID, userID int64) (bool, error) {
	role, err := r.VaultRole(ctx, vaultID, userID)
	if err != nil {
		return false, err
	}
	return writesInVault(role), nil
}

// CanManageVault reports whether the user may rename or delete the vault
// and administer its membership. OWNER and ADMIN only.
func (r *Resolver) CanManageVault(ctx context.Context, vaultID, userID int64) (bool, error) {
	role, err := r.VaultRole(ctx, vaultID, userID)
	if err != nil {
		return false, err
	}
	return role == model.RoleOwner || role == model.RoleAdmin, nil
}

// CanShareCredential reports whether the user may grant or revoke shares
// on credentials in the vault. Sharing is an administrative act: EDITOR
// can change a credential but not hand it to others.
func (r *Resolver) CanShareCredential(ctx context.Context, vaultID, userID int64) (bool, error) {
	return r.CanManageVault(ctx, vaultID, userID)
}

func (r *Resolver) hasActiveShare(ctx context.Context, credentialID, userID int64, needEditor bool) (bool, error) {
	sh, err := r.store.Shares().GetActive(ctx, credentialID, userID)
	if errors.Is(err, model.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "resolve credential share")
	}
	if needEditor {
		return sh.Role == model.RoleEditor, nil
	}
	return true, nil
}

func writesInVault(role model.Role) bool {
	switch role {
	case model.RoleOwner, model.RoleAdmin, model.RoleEditor:
		return true
	default:
		return false
	}
}
