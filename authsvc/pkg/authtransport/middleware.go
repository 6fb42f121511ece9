package authtransport

import (
	"context"
	"errors"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/kind"
)

// Protect returns a middleware that admits only requests carrying a valid
// session token and attaches the token's identity to the context. The
// handler must put the token in the context with ServerBefore.
func Protect(t *authservice.Tokenizer) endpoint.Middleware {
	parser := kitjwt.NewParser(t.Keyfunc, t.Method(), authservice.ClaimsFactory)

	return func(next endpoint.Endpoint) endpoint.Endpoint {
		authenticated := parser(NewAuthenticater(t)(passthrough(next)))

		return func(ctx context.Context, request interface{}) (interface{}, error) {
			response, err := authenticated(ctx, request)

			var ne nextError
			switch {
			case err == nil:
				return response, nil
			case errors.As(err, &ne):
				return response, ne.err
			case isKind(err):
				return nil, err
			}
			// Parser failures: missing header, bad signature, not a JWT.
			return nil, authsvc.ErrUnauthorized
		}
	}
}

// NewAuthenticater checks the claims left in the context by the go-kit JWT
// parser and replaces them with the caller's identity.
func NewAuthenticater(t *authservice.Tokenizer) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			claims, ok := ctx.Value(kitjwt.JWTClaimsContextKey).(*authservice.Claims)
			if !ok {
				return nil, authsvc.ErrUnauthorized
			}

			id, err := t.Identify(claims)
			if err != nil {
				return nil, err
			}

			return next(authsvc.WithIdentity(ctx, id), request)
		}
	}
}

// ServerBefore moves the bearer token of the request into the context.
func ServerBefore() httptransport.ServerOption {
	return httptransport.ServerBefore(kitjwt.HTTPToContext())
}

// nextError marks an error produced behind the authentication layer so it
// is passed on unchanged.
type nextError struct {
	err error
}

func (e nextError) Error() string { return e.err.Error() }

func passthrough(next endpoint.Endpoint) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		response, err := next(ctx, request)
		if err != nil {
			return response, nextError{err}
		}
		return response, nil
	}
}

func isKind(err error) bool {
	for _, k := range []error{
		kind.ErrUnauthorized,
		kind.ErrBadRequest,
	} {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
