package auth

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DevTokenPrefix marks the static tokens the MockAuthorizer accepts.
const DevTokenPrefix = "dev-user-"

// MockAuthorizer accepts tokens of the form "dev-user-<id>" so local
// development and handler tests can act as any user without minting JWTs.
type MockAuthorizer struct{}

func NewMockAuthorizer() *MockAuthorizer {
	return &MockAuthorizer{}
}

func (m *MockAuthorizer) Authorize(ctx context.Context, token string) (*Actor, error) {
	if !strings.HasPrefix(token, DevTokenPrefix) {
		return nil, errors.New("invalid dev token")
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(token, DevTokenPrefix), 10, 64)
	if err != nil || id <= 0 {
		return nil, errors.New("invalid dev token")
	}
	return &Actor{UserID: id}, nil
}

// DevToken builds the static token for a user id.
func DevToken(userID int64) string {
	return DevTokenPrefix + strconv.FormatInt(userID, 10)
}
