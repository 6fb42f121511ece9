package authtransport

import (
	"context"
	"encoding/json"
	"io/ioutil"
	"mime"
	"net/http"
	"net/url"
	"strings"

	kitjwt "github.com/go-kit/kit/auth/jwt"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/authsvc/pkg/authendpoint"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/httpcodec"
)

// NewHTTPHandler mounts the auth endpoints on paths relative to the
// service prefix.
func NewHTTPHandler(endpoints authendpoint.Set, t *authservice.Tokenizer, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(httpcodec.ErrorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	r := mux.NewRouter()

	r.Methods("POST").Path("/").Handler(httptransport.NewServer(
		endpoints.RegisterEndpoint,
		decodeHTTPRegisterRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("POST").Path("/token").Handler(httptransport.NewServer(
		endpoints.LoginEndpoint,
		decodeHTTPLoginRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("GET").Path("/read_current_user").Handler(httptransport.NewServer(
		Protect(t)(endpoints.CurrentUserEndpoint),
		decodeHTTPCurrentUserRequest,
		httpcodec.EncodeResponse,
		append(options, ServerBefore())...,
	))

	return r
}

// NewHTTPClient returns auth endpoints backed by the HTTP server
// at instance. Tokens attached with WithBearer are sent along.
func NewHTTPClient(instance string, logger log.Logger) (authendpoint.Set, error) {
	// Quickly sanitize the instance string.
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return authendpoint.Set{}, err
	}

	var options []httptransport.ClientOption

	var registerEndpoint endpoint.Endpoint
	{
		registerEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/auth/"),
			httpcodec.EncodeRequest,
			decodeHTTPRegisterResponse,
			options...,
		).Endpoint()
	}

	var loginEndpoint endpoint.Endpoint
	{
		loginEndpoint = httptransport.NewClient(
			"POST",
			copyURL(u, "/auth/token"),
			encodeHTTPLoginRequest,
			decodeHTTPLoginResponse,
			options...,
		).Endpoint()
	}

	var currentUserEndpoint endpoint.Endpoint
	{
		currentUserEndpoint = httptransport.NewClient(
			"GET",
			copyURL(u, "/auth/read_current_user"),
			encodeHTTPEmptyRequest,
			decodeHTTPCurrentUserResponse,
			append(options, ClientBefore())...,
		).Endpoint()
	}

	return authendpoint.Set{
		RegisterEndpoint:    registerEndpoint,
		LoginEndpoint:       loginEndpoint,
		CurrentUserEndpoint: currentUserEndpoint,
	}, nil
}

type bearerKey struct{}

// WithBearer attaches a session token to ctx for the HTTP clients.
func WithBearer(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, bearerKey{}, token)
}

// ClientBefore forwards the token kitjwt.HTTPToContext extracted from an
// inbound request, or the one attached with WithBearer.
func ClientBefore() httptransport.ClientOption {
	forward := kitjwt.ContextToHTTP()
	return httptransport.ClientBefore(
		forward,
		func(ctx context.Context, r *http.Request) context.Context {
			if token, ok := ctx.Value(bearerKey{}).(string); ok {
				r.Header.Set("Authorization", "Bearer "+token)
			}
			return ctx
		},
	)
}

func copyURL(base *url.URL, path string) *url.URL {
	next := *base
	next.Path = strings.TrimRight(base.Path, "/") + path
	return &next
}

func decodeHTTPRegisterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req authendpoint.RegisterRequest
	err := httpcodec.DecodeJSON(r, &req)
	return req, err
}

// decodeHTTPLoginRequest accepts the OAuth2 password form and, for
// convenience, the same fields as JSON.
func decodeHTTPLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req authendpoint.LoginRequest

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		err := httpcodec.DecodeJSON(r, &req)
		return req, err
	}

	if err := r.ParseForm(); err != nil {
		return nil, authsvc.ErrInvalidArgument
	}
	req.Username = r.PostForm.Get("username")
	req.Password = r.PostForm.Get("password")
	return req, nil
}

func decodeHTTPCurrentUserRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return authendpoint.CurrentUserRequest{}, nil
}

func encodeHTTPEmptyRequest(_ context.Context, _ *http.Request, _ interface{}) error {
	return nil
}

func encodeHTTPLoginRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(authendpoint.LoginRequest)
	form := url.Values{}
	form.Set("username", req.Username)
	form.Set("password", req.Password)

	body := form.Encode()
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Body = ioutil.NopCloser(strings.NewReader(body))
	r.ContentLength = int64(len(body))
	return nil
}

func decodeHTTPRegisterResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp authendpoint.RegisterResponse
	failed, err := httpcodec.CheckResponse(r, http.StatusCreated)
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

func decodeHTTPLoginResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp authendpoint.LoginResponse
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

func decodeHTTPCurrentUserResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp authendpoint.CurrentUserResponse
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
