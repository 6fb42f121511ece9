package userendpoint

import (
	"context"
	"errors"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
	"github.com/ichigozero/taskguard/usersvc/pkg/userservice"
)

// ErrUnexpectedResponse is returned by a Set method when its endpoint
// answers with a response of the wrong type.
var ErrUnexpectedResponse = errors.New("unexpected response type")

type Set struct {
	UsersEndpoint             endpoint.Endpoint
	FreeUsersEndpoint         endpoint.Endpoint
	UserEndpoint              endpoint.Endpoint
	UserByNameEndpoint        endpoint.Endpoint
	UserByEmailEndpoint       endpoint.Endpoint
	UserTasksEndpoint         endpoint.Endpoint
	UpdateUserEndpoint        endpoint.Endpoint
	DeleteUserEndpoint        endpoint.Endpoint
	DeleteUserByNameEndpoint  endpoint.Endpoint
	DeleteUserByEmailEndpoint endpoint.Endpoint
}

func New(svc userservice.Service, logger log.Logger) Set {
	wrap := func(method string, e endpoint.Endpoint) endpoint.Endpoint {
		return LoggingMiddleware(log.With(logger, "method", method))(e)
	}

	return Set{
		UsersEndpoint:             wrap("Users", MakeUsersEndpoint(svc)),
		FreeUsersEndpoint:         wrap("FreeUsers", MakeFreeUsersEndpoint(svc)),
		UserEndpoint:              wrap("User", MakeUserEndpoint(svc)),
		UserByNameEndpoint:        wrap("UserByName", MakeUserByNameEndpoint(svc)),
		UserByEmailEndpoint:       wrap("UserByEmail", MakeUserByEmailEndpoint(svc)),
		UserTasksEndpoint:         wrap("UserTasks", MakeUserTasksEndpoint(svc)),
		UpdateUserEndpoint:        wrap("UpdateUser", MakeUpdateUserEndpoint(svc)),
		DeleteUserEndpoint:        wrap("DeleteUser", MakeDeleteUserEndpoint(svc)),
		DeleteUserByNameEndpoint:  wrap("DeleteUserByName", MakeDeleteUserByNameEndpoint(svc)),
		DeleteUserByEmailEndpoint: wrap("DeleteUserByEmail", MakeDeleteUserByEmailEndpoint(svc)),
	}
}

func (s Set) Users(ctx context.Context) ([]usersvc.User, error) {
	return s.users(ctx, s.UsersEndpoint, UsersRequest{})
}

func (s Set) FreeUsers(ctx context.Context) ([]usersvc.User, error) {
	return s.users(ctx, s.FreeUsersEndpoint, FreeUsersRequest{})
}

func (s Set) User(ctx context.Context, id uint64) (usersvc.User, error) {
	return s.user(ctx, s.UserEndpoint, UserRequest{ID: id})
}

func (s Set) UserByName(ctx context.Context, name string) (usersvc.User, error) {
	return s.user(ctx, s.UserByNameEndpoint, UserByNameRequest{Name: name})
}

func (s Set) UserByEmail(ctx context.Context, email string) (usersvc.User, error) {
	return s.user(ctx, s.UserByEmailEndpoint, UserByEmailRequest{Email: email})
}

// UserTasks, UpdateUser and the deletes ignore caller; the remote side
// identifies the caller by the session token in ctx.
func (s Set) UserTasks(ctx context.Context, _ authsvc.Identity) ([]tasksvc.Task, error) {
	resp, err := s.UserTasksEndpoint(ctx, UserTasksRequest{})
	if err != nil {
		return nil, err
	}
	response, ok := resp.(UserTasksResponse)
	if !ok {
		return nil, ErrUnexpectedResponse
	}
	return response.Tasks, response.Err
}

func (s Set) UpdateUser(ctx context.Context, _ authsvc.Identity, id uint64, p usersvc.Profile) (usersvc.User, error) {
	return s.user(ctx, s.UpdateUserEndpoint, UpdateUserRequest{ID: id, Profile: p})
}

func (s Set) DeleteUser(ctx context.Context, _ authsvc.Identity, id uint64) error {
	return s.delete(ctx, s.DeleteUserEndpoint, DeleteUserRequest{ID: id})
}

func (s Set) DeleteUserByName(ctx context.Context, _ authsvc.Identity, name string) error {
	return s.delete(ctx, s.DeleteUserByNameEndpoint, DeleteUserByNameRequest{Name: name})
}

func (s Set) DeleteUserByEmail(ctx context.Context, _ authsvc.Identity, email string) error {
	return s.delete(ctx, s.DeleteUserByEmailEndpoint, DeleteUserByEmailRequest{Email: email})
}

func (s Set) users(ctx context.Context, e endpoint.Endpoint, request interface{}) ([]usersvc.User, error) {
	resp, err := e(ctx, request)
	if err != nil {
		return nil, err
	}
	response, ok := resp.(UsersResponse)
	if !ok {
		return nil, ErrUnexpectedResponse
	}
	return response.Users, response.Err
}

func (s Set) user(ctx context.Context, e endpoint.Endpoint, request interface{}) (usersvc.User, error) {
	resp, err := e(ctx, request)
	if err != nil {
		return usersvc.User{}, err
	}
	response, ok := resp.(UserResponse)
	if !ok {
		return usersvc.User{}, ErrUnexpectedResponse
	}
	return response.User, response.Err
}

func (s Set) delete(ctx context.Context, e endpoint.Endpoint, request interface{}) error {
	resp, err := e(ctx, request)
	if err != nil {
		return err
	}
	response, ok := resp.(DeleteResponse)
	if !ok {
		return ErrUnexpectedResponse
	}
	return response.Err
}

func MakeUsersEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(UsersRequest)
		u, err := s.Users(ctx)
		return UsersResponse{Users: u, Err: err}, nil
	}
}

func MakeFreeUsersEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(FreeUsersRequest)
		u, err := s.FreeUsers(ctx)
		return UsersResponse{Users: u, Err: err}, nil
	}
}

func MakeUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserRequest)
		u, err := s.User(ctx, req.ID)
		return UserResponse{User: u, Err: err}, nil
	}
}

func MakeUserByNameEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserByNameRequest)
		u, err := s.UserByName(ctx, req.Name)
		return UserResponse{User: u, Err: err}, nil
	}
}

func MakeUserByEmailEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(UserByEmailRequest)
		u, err := s.UserByEmail(ctx, req.Email)
		return UserResponse{User: u, Err: err}, nil
	}
}

func MakeUserTasksEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return UserTasksResponse{Err: err}, nil
		}

		_ = request.(UserTasksRequest)
		t, err := s.UserTasks(ctx, caller)
		return UserTasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeUpdateUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return UserResponse{Err: err}, nil
		}

		req := request.(UpdateUserRequest)
		u, err := s.UpdateUser(ctx, caller, req.ID, req.Profile)
		return UserResponse{User: u, Err: err}, nil
	}
}

func MakeDeleteUserEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return DeleteResponse{Err: err}, nil
		}

		req := request.(DeleteUserRequest)
		err = s.DeleteUser(ctx, caller, req.ID)
		return DeleteResponse{Success: err == nil, Err: err}, nil
	}
}

func MakeDeleteUserByNameEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return DeleteResponse{Err: err}, nil
		}

		req := request.(DeleteUserByNameRequest)
		err = s.DeleteUserByName(ctx, caller, req.Name)
		return DeleteResponse{Success: err == nil, Err: err}, nil
	}
}

func MakeDeleteUserByEmailEndpoint(s userservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return DeleteResponse{Err: err}, nil
		}

		req := request.(DeleteUserByEmailRequest)
		err = s.DeleteUserByEmail(ctx, caller, req.Email)
		return DeleteResponse{Success: err == nil, Err: err}, nil
	}
}

func identity(ctx context.Context) (authsvc.Identity, error) {
	id, ok := authsvc.IdentityFrom(ctx)
	if !ok {
		return authsvc.Identity{}, authsvc.ErrUnauthorized
	}
	return id, nil
}

var (
	_ endpoint.Failer = UsersResponse{}
	_ endpoint.Failer = UserResponse{}
	_ endpoint.Failer = UserTasksResponse{}
	_ endpoint.Failer = DeleteResponse{}
)

type UsersRequest struct{}

type FreeUsersRequest struct{}

type UsersResponse struct {
	Users []usersvc.User `json:"users"`
	Err   error          `json:"-"`
}

func (r UsersResponse) Failed() error { return r.Err }

type UserRequest struct {
	ID uint64
}

type UserByNameRequest struct {
	Name string
}

type UserByEmailRequest struct {
	Email string
}

type UserResponse struct {
	User usersvc.User `json:"user"`
	Err  error        `json:"-"`
}

func (r UserResponse) Failed() error { return r.Err }

type UserTasksRequest struct{}

type UserTasksResponse struct {
	Tasks []tasksvc.Task `json:"tasks"`
	Err   error          `json:"-"`
}

func (r UserTasksResponse) Failed() error { return r.Err }

type UpdateUserRequest struct {
	ID uint64 `json:"-"`
	usersvc.Profile
}

type DeleteUserRequest struct {
	ID uint64
}

type DeleteUserByNameRequest struct {
	Name string
}

type DeleteUserByEmailRequest struct {
	Email string
}

type DeleteResponse struct {
	Success bool  `json:"success"`
	Err     error `json:"-"`
}

func (r DeleteResponse) Failed() error { return r.Err }
