package authendpoint

import (
	"context"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/usersvc"
)

type Set struct {
	RegisterEndpoint    endpoint.Endpoint
	LoginEndpoint       endpoint.Endpoint
	CurrentUserEndpoint endpoint.Endpoint
}

func New(svc authservice.Service, logger log.Logger) Set {
	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = MakeRegisterEndpoint(svc)
		registerEndpoint = LoggingMiddleware(log.With(logger, "method", "Register"))(registerEndpoint)
	}

	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = MakeLoginEndpoint(svc)
		loginEndpoint = LoggingMiddleware(log.With(logger, "method", "Login"))(loginEndpoint)
	}

	var currentUserEndpoint endpoint.Endpoint
	{
		currentUserEndpoint = MakeCurrentUserEndpoint(svc)
		currentUserEndpoint = LoggingMiddleware(log.With(logger, "method", "CurrentUser"))(currentUserEndpoint)
	}

	return Set{
		RegisterEndpoint:    registerEndpoint,
		LoginEndpoint:       loginEndpoint,
		CurrentUserEndpoint: currentUserEndpoint,
	}
}

func (s Set) Register(ctx context.Context, p usersvc.Profile) (usersvc.User, error) {
	response, err := s.RegisterEndpoint(ctx, RegisterRequest{Profile: p})
	if err != nil {
		return usersvc.User{}, err
	}

	resp := response.(RegisterResponse)
	return resp.User, resp.Err
}

func (s Set) Login(ctx context.Context, username, password string) (authservice.Token, error) {
	response, err := s.LoginEndpoint(ctx, LoginRequest{Username: username, Password: password})
	if err != nil {
		return authservice.Token{}, err
	}

	resp := response.(LoginResponse)
	return resp.Token, resp.Err
}

func (s Set) CurrentUser(ctx context.Context) (authsvc.Identity, error) {
	response, err := s.CurrentUserEndpoint(ctx, CurrentUserRequest{})
	if err != nil {
		return authsvc.Identity{}, err
	}

	resp := response.(CurrentUserResponse)
	return resp.Identity, resp.Err
}

func MakeRegisterEndpoint(s authservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(RegisterRequest)
		u, err := s.Register(ctx, req.Profile)

		return RegisterResponse{User: u, Err: err}, nil
	}
}

func MakeLoginEndpoint(s authservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		req := request.(LoginRequest)
		t, err := s.Login(ctx, req.Username, req.Password)

		return LoginResponse{Token: t, Err: err}, nil
	}
}

func MakeCurrentUserEndpoint(s authservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (response interface{}, err error) {
		_ = request.(CurrentUserRequest)
		id, err := s.CurrentUser(ctx)

		return CurrentUserResponse{Identity: id, Err: err}, nil
	}
}

var (
	_ endpoint.Failer = RegisterResponse{}
	_ endpoint.Failer = LoginResponse{}
	_ endpoint.Failer = CurrentUserResponse{}
)

type RegisterRequest struct {
	usersvc.Profile
}

type RegisterResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r RegisterResponse) Failed() error { return r.Err }

func (r RegisterResponse) StatusCode() int { return http.StatusCreated }

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	authservice.Token
	Err error `json:"-"`
}

func (r LoginResponse) Failed() error { return r.Err }

type CurrentUserRequest struct{}

type CurrentUserResponse struct {
	authsvc.Identity
	Err error `json:"-"`
}

func (r CurrentUserResponse) Failed() error { return r.Err }
