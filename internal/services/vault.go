// Package services sits between HTTP handlers and the store. Every
// operation follows the same shape: confirm the object exists, ask the
// access resolver, then touch the store. Existence is checked first so a
// missing object is a not-found even for callers with no rights at all.
package services

import (
	"context"
	"strings"

	"github.com/passvault-io/passvault/internal/access"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

type VaultService struct {
	store    store.Store
	resolver *access.Resolver
}

func NewVaultService(s store.Store, r *access.Resolver) *VaultService {
	return &VaultService{store: s, resolver: r}
}

func (s *VaultService) CreateVault(ctx context.Context, ownerID int64, name string, vtype model.VaultType, encryptedKey, keyIV []byte) (*model.Vault, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrValidation
	}
	if vtype == "" {
		vtype = model.VaultPersonal
	}
	if !model.ValidVaultType(vtype) {
		return nil, model.ErrValidation
	}
	return s.store.Vaults().Create(ctx, &model.Vault{
		OwnerID:      ownerID,
		Name:         name,
		Type:         vtype,
		EncryptedKey: encryptedKey,
		KeyIV:        keyIV,
	})
}

func (s *VaultService) GetVault(ctx context.Context, userID, vaultID int64) (*model.Vault, error) {
	v, err := s.store.Vaults().Get(ctx, vaultID)
	if err != nil {
		return nil, err
	}
	role, err := s.resolver.VaultRole(ctx, vaultID, userID)
	if err != nil {
		return nil, err
	}
	if role == model.RoleNone {
		return nil, model.ErrForbidden
	}
	return v, nil
}

func (s *VaultService) ListVaults(ctx context.Context, userID int64) ([]*model.Vault, error) {
	return s.store.Vaults().ListForUser(ctx, userID)
}

func (s *VaultService) UpdateVault(ctx context.Context, userID, vaultID int64, p store.UpdateVaultParams) (*model.Vault, error) {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return nil, err
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return nil, model.ErrValidation
	}
	if p.Type != nil && !model.ValidVaultType(*p.Type) {
		return nil, model.ErrValidation
	}
	if err := s.requireManage(ctx, vaultID, userID); err != nil {
		return nil, err
	}
	return s.store.Vaults().Update(ctx, vaultID, p)
}

func (s *VaultService) DeleteVault(ctx context.Context, userID, vaultID int64) error {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return err
	}
	if err := s.requireManage(ctx, vaultID, userID); err != nil {
		return err
	}
	return s.store.Vaults().Delete(ctx, vaultID)
}

// ListMembers is an administrative view like add/remove: OWNER/ADMIN only.
func (s *VaultService) ListMembers(ctx context.Context, userID, vaultID int64) ([]*model.VaultMember, error) {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return nil, err
	}
	if err := s.requireManage(ctx, vaultID, userID); err != nil {
		return nil, err
	}
	return s.store.Members().List(ctx, vaultID)
}

func (s *VaultService) AddMember(ctx context.Context, actorID, vaultID, userID int64, role model.Role) error {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return err
	}
	if !model.ValidMemberRole(role) {
		return model.ErrValidation
	}
	if err := s.requireManage(ctx, vaultID, actorID); err != nil {
		return err
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return err
	}
	return s.store.Members().Upsert(ctx, vaultID, userID, role)
}

func (s *VaultService) RemoveMember(ctx context.Context, actorID, vaultID, userID int64) error {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return err
	}
	if err := s.requireManage(ctx, vaultID, actorID); err != nil {
		return err
	}
	return s.store.Members().Remove(ctx, vaultID, userID)
}

func (s *VaultService) requireManage(ctx context.Context, vaultID, userID int64) error {
	ok, err := s.resolver.CanManageVault(ctx, vaultID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
