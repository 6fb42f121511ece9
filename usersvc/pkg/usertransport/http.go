package usertransport

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"

	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/authsvc/pkg/authtransport"
	"github.com/ichigozero/taskguard/httpcodec"
	"github.com/ichigozero/taskguard/usersvc/pkg/userendpoint"
)

// NewHTTPHandler mounts the user endpoints on paths relative to the
// service prefix. Routes acting on behalf of the caller require a bearer
// token.
func NewHTTPHandler(endpoints userendpoint.Set, t *authservice.Tokenizer, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(httpcodec.ErrorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}
	protected := append(options, authtransport.ServerBefore())
	protect := authtransport.Protect(t)

	r := mux.NewRouter()

	r.Methods("GET").Path("/").Handler(httptransport.NewServer(
		endpoints.UsersEndpoint,
		decodeHTTPUsersRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("GET").Path("/free").Handler(httptransport.NewServer(
		endpoints.FreeUsersEndpoint,
		decodeHTTPFreeUsersRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("GET").Path("/me/tasks").Handler(httptransport.NewServer(
		protect(endpoints.UserTasksEndpoint),
		decodeHTTPUserTasksRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("GET").Path("/name/{name}").Handler(httptransport.NewServer(
		endpoints.UserByNameEndpoint,
		decodeHTTPUserByNameRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("DELETE").Path("/name/{name}").Handler(httptransport.NewServer(
		protect(endpoints.DeleteUserByNameEndpoint),
		decodeHTTPDeleteUserByNameRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("GET").Path("/email/{email}").Handler(httptransport.NewServer(
		endpoints.UserByEmailEndpoint,
		decodeHTTPUserByEmailRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("DELETE").Path("/email/{email}").Handler(httptransport.NewServer(
		protect(endpoints.DeleteUserByEmailEndpoint),
		decodeHTTPDeleteUserByEmailRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("GET").Path("/{id}").Handler(httptransport.NewServer(
		endpoints.UserEndpoint,
		decodeHTTPUserRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("PUT").Path("/{id}").Handler(httptransport.NewServer(
		protect(endpoints.UpdateUserEndpoint),
		decodeHTTPUpdateUserRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("DELETE").Path("/{id}").Handler(httptransport.NewServer(
		protect(endpoints.DeleteUserEndpoint),
		decodeHTTPDeleteUserRequest,
		httpcodec.EncodeResponse,
		protected...,
	))

	return r
}

// NewHTTPClient returns user endpoints backed by the HTTP server at
// instance. Calls on behalf of a user carry the token attached with
// authtransport.WithBearer.
func NewHTTPClient(instance string, logger log.Logger) (userendpoint.Set, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return userendpoint.Set{}, err
	}

	options := []httptransport.ClientOption{
		authtransport.ClientBefore(),
	}

	client := func(method, tail string, enc httptransport.EncodeRequestFunc, dec httptransport.DecodeResponseFunc) endpoint.Endpoint {
		next := *u
		next.Path = strings.TrimRight(u.Path, "/") + tail
		return httptransport.NewClient(method, &next, enc, dec, options...).Endpoint()
	}

	return userendpoint.Set{
		UsersEndpoint:             client("GET", "/users/", encodeHTTPEmptyRequest, decodeHTTPUsersResponse),
		FreeUsersEndpoint:         client("GET", "/users/free", encodeHTTPEmptyRequest, decodeHTTPUsersResponse),
		UserEndpoint:              client("GET", "/users/", encodeHTTPPathRequest, decodeHTTPUserResponse),
		UserByNameEndpoint:        client("GET", "/users/name/", encodeHTTPPathRequest, decodeHTTPUserResponse),
		UserByEmailEndpoint:       client("GET", "/users/email/", encodeHTTPPathRequest, decodeHTTPUserResponse),
		UserTasksEndpoint:         client("GET", "/users/me/tasks", encodeHTTPEmptyRequest, decodeHTTPUserTasksResponse),
		UpdateUserEndpoint:        client("PUT", "/users/", encodeHTTPUpdateUserRequest, decodeHTTPUserResponse),
		DeleteUserEndpoint:        client("DELETE", "/users/", encodeHTTPPathRequest, decodeHTTPDeleteResponse),
		DeleteUserByNameEndpoint:  client("DELETE", "/users/name/", encodeHTTPPathRequest, decodeHTTPDeleteResponse),
		DeleteUserByEmailEndpoint: client("DELETE", "/users/email/", encodeHTTPPathRequest, decodeHTTPDeleteResponse),
	}, nil
}

func decodeHTTPUsersRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return userendpoint.UsersRequest{}, nil
}

func decodeHTTPFreeUsersRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return userendpoint.FreeUsersRequest{}, nil
}

func decodeHTTPUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "id")
	if err != nil {
		return nil, err
	}
	return userendpoint.UserRequest{ID: id}, nil
}

func decodeHTTPUserByNameRequest(_ context.Context, r *http.Request) (interface{}, error) {
	name, err := httpcodec.Var(r, "name")
	if err != nil {
		return nil, err
	}
	return userendpoint.UserByNameRequest{Name: name}, nil
}

func decodeHTTPUserByEmailRequest(_ context.Context, r *http.Request) (interface{}, error) {
	email, err := httpcodec.Var(r, "email")
	if err != nil {
		return nil, err
	}
	return userendpoint.UserByEmailRequest{Email: email}, nil
}

func decodeHTTPUserTasksRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return userendpoint.UserTasksRequest{}, nil
}

func decodeHTTPUpdateUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "id")
	if err != nil {
		return nil, err
	}

	var req userendpoint.UpdateUserRequest
	if err := httpcodec.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.ID = id

	return req, nil
}

func decodeHTTPDeleteUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "id")
	if err != nil {
		return nil, err
	}
	return userendpoint.DeleteUserRequest{ID: id}, nil
}

func decodeHTTPDeleteUserByNameRequest(_ context.Context, r *http.Request) (interface{}, error) {
	name, err := httpcodec.Var(r, "name")
	if err != nil {
		return nil, err
	}
	return userendpoint.DeleteUserByNameRequest{Name: name}, nil
}

func decodeHTTPDeleteUserByEmailRequest(_ context.Context, r *http.Request) (interface{}, error) {
	email, err := httpcodec.Var(r, "email")
	if err != nil {
		return nil, err
	}
	return userendpoint.DeleteUserByEmailRequest{Email: email}, nil
}

func encodeHTTPEmptyRequest(_ context.Context, _ *http.Request, _ interface{}) error {
	return nil
}

// encodeHTTPPathRequest appends the single lookup key of request to the
// client's base path.
func encodeHTTPPathRequest(_ context.Context, r *http.Request, request interface{}) error {
	var key string
	switch req := request.(type) {
	case userendpoint.UserRequest:
		key = strconv.FormatUint(req.ID, 10)
	case userendpoint.DeleteUserRequest:
		key = strconv.FormatUint(req.ID, 10)
	case userendpoint.UserByNameRequest:
		key = req.Name
	case userendpoint.DeleteUserByNameRequest:
		key = req.Name
	case userendpoint.UserByEmailRequest:
		key = req.Email
	case userendpoint.DeleteUserByEmailRequest:
		key = req.Email
	default:
		return fmt.Errorf("unexpected request type %T", request)
	}
	r.URL.Path = path.Join(r.URL.Path, key)
	return nil
}

func encodeHTTPUpdateUserRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(userendpoint.UpdateUserRequest)
	r.URL.Path = path.Join(r.URL.Path, strconv.FormatUint(req.ID, 10))
	return httpcodec.EncodeRequest(ctx, r, req.Profile)
}

func decodeHTTPUsersResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.UsersResponse
	failed, err := httpcodec.CheckResponse(r, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		resp.Err = failed
		return resp, nil
	}
	err = json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}

func decodeHTTPUserResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.UserResponse
	failed, err := httpcodec.CheckResponse(r, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		resp.Err = failed
		return resp, nil
	}
	err = json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}

func decodeHTTPUserTasksResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.UserTasksResponse
	failed, err := httpcodec.CheckResponse(r, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		resp.Err = failed
		return resp, nil
	}
	err = json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}

func decodeHTTPDeleteResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp userendpoint.DeleteResponse
	failed, err := httpcodec.CheckResponse(r, http.StatusOK)
	if err != nil {
		return nil, err
	}
	if failed != nil {
		resp.Err = failed
		return resp, nil
	}
	err = json.NewDecoder(r.Body).Decode(&resp)
	return resp, err
}
