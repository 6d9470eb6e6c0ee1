package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type contextKey struct{}

var actorKey contextKey

// ExtractBearer returns the token from an "Authorization: Bearer <token>"
// header.
func ExtractBearer(r *http.Request) (string, error) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", errors.New("missing Authorization header")
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("expected 'Bearer <token>'")
	}
	return parts[1], nil
}

// WithActor stores the actor in the context.
func WithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFrom returns the actor placed by the middleware, if any.
func ActorFrom(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorKey).(*Actor)
	return a, ok
}
