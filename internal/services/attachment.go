package services

import (
	"context"
	"strings"

	"github.com/passvault-io/passvault/internal/access"
	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

type AttachmentService struct {
	store    store.Store
	resolver *access.Resolver
}

func NewAttachmentService(s store.Store, r *access.Resolver) *AttachmentService {
	return &AttachmentService{store: s, resolver: r}
}

func (s *AttachmentService) AddAttachment(ctx context.Context, userID int64, a *model.Attachment) (*model.Attachment, error) {
	c, err := s.store.Credentials().Get(ctx, a.CredentialID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(a.Filename) == "" || len(a.ContentEnc) == 0 || len(a.ContentIV) == 0 {
		return nil, model.ErrValidation
	}
	if err := s.requireWrite(ctx, userID, c); err != nil {
		return nil, err
	}
	return s.store.Attachments().Create(ctx, a)
}

// GetAttachment returns the attachment with its content blob; read rights
// on the owning credential are enough.
func (s *AttachmentService) GetAttachment(ctx context.Context, userID, attachmentID int64) (*model.Attachment, error) {
	a, err := s.store.Attachments().Get(ctx, attachmentID)
	if err != nil {
		return nil, err
	}
	c, err := s.store.Credentials().Get(ctx, a.CredentialID)
	if err != nil {
		return nil, err
	}
	ok, err := s.resolver.CanReadCredential(ctx, userID, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrForbidden
	}
	return a, nil
}

func (s *AttachmentService) ListAttachments(ctx context.Context, userID, credentialID int64) ([]*model.Attachment, error) {
	c, err := s.store.Credentials().Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	ok, err := s.resolver.CanReadCredential(ctx, userID, c)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrForbidden
	}
	return s.store.Attachments().ListMeta(ctx, credentialID)
}

func (s *AttachmentService) DeleteAttachment(ctx context.Context, userID, attachmentID int64) error {
	a, err := s.store.Attachments().Get(ctx, attachmentID)
	if err != nil {
		return err
	}
	c, err := s.store.Credentials().Get(ctx, a.CredentialID)
	if err != nil {
		return err
	}
	if err := s.requireWrite(ctx, userID, c); err != nil {
		return err
	}
	return s.store.Attachments().Delete(ctx, attachmentID)
}

func (s *AttachmentService) requireWrite(ctx context.Context, userID int64, c *model.Credential) error {
	ok, err := s.resolver.CanWriteCredential(ctx, userID, c)
	if err != nil {
		return err
	}
	if !ok {
		return model.ErrForbidden
	}
	return nil
}
