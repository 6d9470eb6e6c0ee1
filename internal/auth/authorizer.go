// Package auth authenticates HTTP requests. Token issuance lives in the
// identity service; this package only verifies bearer tokens and exposes
// the resulting actor to handlers through the request context.
package auth

import (
	"context"
)

// Actor is the authenticated caller of a request.
type Actor struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username,omitempty"`
}

// Authorizer turns a bearer token into an Actor, or fails.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (*Actor, error)
}
