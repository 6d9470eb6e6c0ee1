package services

import (
	"context"
	"strings"

	"github.com/passvault-io/passvault/internal/access"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

// LinkService covers tags and folders. Both are flat global namespaces
// linked to credentials through join tables; linking needs write rights on
// the credential, reading the links needs read rights.
type LinkService struct {
	store    store.Store
	resolver *access.Resolver
}

func NewLinkService(s store.Store, r *access.Resolver) *LinkService {
	return &LinkService{store: s, resolver: r}
}

func (s *LinkService) CreateTag(ctx context.Context, name string) (*model.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrValidation
	}
	return s.store.Tags().Create(ctx, name)
}

func (s *LinkService) CreateFolder(ctx context.Context, name string) (*model.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.ErrValidation
	}
	return s.store.Folders().Create(ctx, name)
}

func (s *LinkService) AssignTag(ctx context.Context, userID, credentialID, tagID int64) error {
	if err := s.checkWrite(ctx, userID, credentialID); err != nil {
		return err
	}
	return s.store.Tags().Assign(ctx, credentialID, tagID)
}

func (s *LinkService) UnassignTag(ctx context.Context, userID, credentialID, tagID int64) error {
	if err := s.checkWrite(ctx, userID, credentialID); err != nil {
		return err
	}
	return s.store.Tags().Unassign(ctx, credentialID, tagID)
}

func (s *LinkService) ListTags(ctx context.Context, userID, credentialID int64) ([]*model.Tag, error) {
	if err := s.checkRead(ctx, userID, credentialID); err != nil {
		return nil, err
	}
	return s.store.Tags().ListForCredential(ctx, credentialID)
}

func (s *LinkService) AssignFolder(ctx context.Context, userID, credentialID, folderID int64) error {
	if err := s.checkWrite(ctx, userID, credentialID); err != nil {
		return err
	}
	return s.store.Folders().Assign(ctx, credentialID, folderID)
}

func (s *LinkService) UnassignFolder(ctx context.Context, userID, credentialID, folderID int64) error {
	if err := s.checkWrite(ctx, userID, credentialID); err != nil {
		return err
	}
	return s.store.Folders().Unassign(ctx, credentialID, folderID)
}

func (s *LinkService) ListFolders(ctx context.Context, userID, credentialID int64) ([]*model.Folder, error) {
	if err := s.checkRead(ctx, userID, credentialID); err != nil {
		return nil, err
	}
	return s.store.Folders().ListForCredential(ctx, credentialID)
}

func (s *LinkService) checkWrite(ctx context.Context, userID, credentialID int64) error {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return err
	}
	ok, err := s.resolver.CanWriteCredential(ctx, userID, c)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}

func (s *LinkService) checkRead(ctx context.Context, userID, credentialID int64) error {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return err
	}
	ok, err := s.resolver.CanReadCredential(ctx, userID, c)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
