package services

import (
	"context"
	"strings"

	"github.com/passvault-io/passvault/internal/model"
	"github.com/passvault-io/passvault/internal/store"
)

// UserService handles the minimal account records needed for membership
// and share listings. Registration and authentication live elsewhere.
type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

func (s *UserService) CreateUser(ctx context.Context, username, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || !strings.Contains(email, "@") {
		return nil, model.ErrValidation
	}
	return s.store.Users().Create(ctx, &model.User{Username: username, Email: email})
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	return s.store.Users().Get(ctx, userID)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.store.Users().GetByUsername(ctx, username)
}
