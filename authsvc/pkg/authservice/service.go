package authservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/usersvc"
)

const TokenType = "bearer"

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Service interface {
	Register(ctx context.Context, p usersvc.Profile) (usersvc.User, error)
	Login(ctx context.Context, username, password string) (Token, error)
	CurrentUser(ctx context.Context) (authsvc.Identity, error)
}

// Registrar creates users after validating them.
type Registrar interface {
	CreateUser(ctx context.Context, p usersvc.Profile) (usersvc.User, error)
}

// Authenticator checks a username and password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (usersvc.User, error)
}

func New(r Registrar, a Authenticator, t *Tokenizer, logger log.Logger, counter metrics.Counter, latency metrics.Histogram) Service {
	var svc Service
	{
		svc = NewBasicService(r, a, t)
		svc = LoggingMiddleware(logger)(svc)
		svc = InstrumentingMiddleware(counter, latency)(svc)
	}
	return svc
}

type basicService struct {
	registrar     Registrar
	authenticator Authenticator
	tokenizer     *Tokenizer
}

func NewBasicService(r Registrar, a Authenticator, t *Tokenizer) Service {
	return &basicService{registrar: r, authenticator: a, tokenizer: t}
}

func (s *basicService) Register(ctx context.Context, p usersvc.Profile) (usersvc.User, error) {
	return s.registrar.CreateUser(ctx, p)
}

func (s *basicService) Login(ctx context.Context, username, password string) (Token, error) {
	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		return Token{}, err
	}

	access, err := s.tokenizer.Issue(user.Name, user.ID, 0)
	if err != nil {
		return Token{}, err
	}

	return Token{AccessToken: access, TokenType: TokenType}, nil
}

func (s *basicService) CurrentUser(ctx context.Context) (authsvc.Identity, error) {
	id, ok := authsvc.IdentityFrom(ctx)
	if !ok {
		return authsvc.Identity{}, authsvc.ErrUnauthorized
	}
	return id, nil
}
