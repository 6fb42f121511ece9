package authsvc

import (
	"context"

	"github.com/ichigozero/taskguard/kind"
)

// Identity is the subject carried by a session token.
type Identity struct {
	Username string `json:"username"`
	ID       uint64 `json:"id"`
}

type contextKey string

const IdentityContextKey contextKey = "Identity"

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityContextKey, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityContextKey).(Identity)
	return id, ok
}

var (
	ErrUnauthorized       = kind.New("could not validate user", kind.ErrUnauthorized)
	ErrMalformedToken     = kind.New("invalid token format", kind.ErrBadRequest)
	ErrTokenExpired       = kind.New("token expired", kind.ErrUnauthorized)
	ErrInvalidCredentials = kind.New("incorrect username or password", kind.ErrUnauthorized)
	ErrInvalidArgument    = kind.New("invalid argument", kind.ErrBadRequest)
)
