package services

import (
	"context"
	"strings"

	"github.com/passvault-io/passvault/internal/access"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

type CredentialService struct {
	store    store.Store
	resolver *access.Resolver
}

func NewCredentialService(s store.Store, r *access.Resolver) *CredentialService {
	return &CredentialService{store: s, resolver: r}
}

func (s *CredentialService) CreateCredential(ctx context.Context, userID int64, c *model.Credential) (*model.Credential, error) {
	if _, err := s.store.Vaults().Get(ctx, c.VaultID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(c.Title) == "" || len(c.SecretEnc) == 0 || len(c.SecretIV) == 0 {
		return nil, model.ErrValidation
	}
	if c.BreachState != "" && !model.ValidBreachState(c.BreachState) {
		return nil, model.ErrValidation
	}
	ok, err := s.resolver.CanCreateCredential(ctx, c.VaultID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrForbidden
	}
	return s.store.Credentials().Create(ctx, c)
}

func (s *CredentialService) GetCredential(ctx context.Context, userID, credentialID int64) (*model.Credential, error) {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRead(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CredentialService) UpdateCredential(ctx context.Context, userID, credentialID int64, p store.UpdateCredentialParams) (*model.Credential, error) {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return nil, model.ErrValidation
	}
	if p.BreachState != nil && !model.ValidBreachState(*p.BreachState) {
		return nil, model.ErrValidation
	}
	// Rotations carry ciphertext and IV together.
	if (p.SecretEnc != nil) != (p.SecretIV != nil) {
		return nil, model.ErrValidation
	}
	if err := s.requireWrite(ctx, userID, c); err != nil {
		return nil, err
	}
	// Moving a credential needs create rights in the target vault too.
	if p.VaultID != nil && *p.VaultID != c.VaultID {
		if _, err := s.store.Vaults().Get(ctx, *p.VaultID); err != nil {
			return nil, err
		}
		ok, err := s.resolver.CanCreateCredential(ctx, *p.VaultID, userID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, model.ErrForbidden
		}
	}
	return s.store.Credentials().Update(ctx, credentialID, p)
}

func (s *CredentialService) DeleteCredential(ctx context.Context, userID, credentialID int64) error {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return err
	}
	if err := s.requireWrite(ctx, userID, c); err != nil {
		return err
	}
	return s.store.Credentials().Delete(ctx, credentialID)
}

func (s *CredentialService) ListCredentials(ctx context.Context, userID, vaultID int64, page, pageSize int) ([]*model.Credential, int, error) {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return nil, 0, err
	}
	role, err := s.resolver.VaultRole(ctx, vaultID, userID)
	if err != nil {
		return nil, 0, err
	}
	if role == model.RoleNone {
		return nil, 0, model.ErrForbidden
	}
	return s.store.Credentials().ListByVault(ctx, vaultID, page, pageSize)
}

func (s *CredentialService) SearchByURL(ctx context.Context, userID, vaultID int64, substring string, page, pageSize int) ([]*model.Credential, int, error) {
	if _, err := s.store.Vaults().Get(ctx, vaultID); err != nil {
		return nil, 0, err
	}
	role, err := s.resolver.VaultRole(ctx, vaultID, userID)
	if err != nil {
		return nil, 0, err
	}
	if role == model.RoleNone {
		return nil, 0, model.ErrForbidden
	}
	return s.store.Credentials().SearchByURL(ctx, vaultID, substring, page, pageSize)
}

// ShareCredential grants or refreshes a direct share. Re-sharing a revoked
// grant reactivates it with the new role.
func (s *CredentialService) ShareCredential(ctx context.Context, actorID, credentialID, userID int64, role model.Role) error {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return err
	}
	if !model.ValidShareRole(role) {
		return model.ErrValidation
	}
	if err := s.requireShare(ctx, actorID, c); err != nil {
		return err
	}
	if _, err := s.store.Users().Get(ctx, userID); err != nil {
		return err
	}
	return s.store.Shares().Upsert(ctx, credentialID, userID, role)
}

func (s *CredentialService) RevokeShare(ctx context.Context, actorID, credentialID, userID int64) error {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return err
	}
	if err := s.requireShare(ctx, actorID, c); err != nil {
		return err
	}
	return s.store.Shares().Revoke(ctx, credentialID, userID)
}

// ListShares returns all grants including revoked ones. Anyone who can
// read the credential can see who else holds access.
func (s *CredentialService) ListShares(ctx context.Context, actorID, credentialID int64) ([]*model.CredentialShare, error) {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if err := s.requireRead(ctx, actorID, c); err != nil {
		return nil, err
	}
	return s.store.Shares().List(ctx, credentialID)
}

func (s *CredentialService) ListHistory(ctx context.Context, userID, credentialID int64, page, pageSize int) ([]*model.HistoryEntry, int, error) {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return nil, 0, err
	}
	if err := s.requireRead(ctx, userID, c); err != nil {
		return nil, 0, err
	}
	return s.store.History().List(ctx, credentialID, page, pageSize)
}

func (s *CredentialService) requireRead(ctx context.Context, userID int64, c *model.Credential) error {
	ok, err := s.resolver.CanReadCredential(ctx, userID, c)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

func (s *CredentialService) requireWrite(ctx context.Context, userID int64, c *model.Credential) error {
	ok, err := s.resolver.CanWriteCredential(ctx, userID, c)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

func (s *CredentialService) requireShare(ctx context.Context, userID int64, c *model.Credential) error {
	ok, err := s.resolver.CanShareCredential(ctx, c.VaultID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
