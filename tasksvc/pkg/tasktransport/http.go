package tasktransport

import (
	"context"
	"encoding/json"
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
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskendpoint"
)

// NewHTTPHandler mounts the task endpoints on paths relative to the
// service prefix. Mutating routes require a bearer token.
func NewHTTPHandler(endpoints taskendpoint.Set, t *authservice.Tokenizer, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(httpcodec.ErrorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}
	protected := append(options, authtransport.ServerBefore())
	protect := authtransport.Protect(t)

	r := mux.NewRouter()

	r.Methods("GET").Path("/").Handler(httptransport.NewServer(
		endpoints.TasksEndpoint,
		decodeHTTPTasksRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("GET").Path("/free").Handler(httptransport.NewServer(
		endpoints.FreeTasksEndpoint,
		decodeHTTPFreeTasksRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("GET").Path("/owner/{owner_id}").Handler(httptransport.NewServer(
		endpoints.TaskByOwnerEndpoint,
		decodeHTTPTaskByOwnerRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("GET").Path("/title/{title}").Handler(httptransport.NewServer(
		endpoints.TaskByTitleEndpoint,
		decodeHTTPTaskByTitleRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("DELETE").Path("/title/{title}").Handler(httptransport.NewServer(
		protect(endpoints.DeleteTaskByTitleEndpoint),
		decodeHTTPDeleteTaskByTitleRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("GET").Path("/{id}").Handler(httptransport.NewServer(
		endpoints.TaskEndpoint,
		decodeHTTPTaskRequest,
		httpcodec.EncodeResponse,
		options...,
	))
	r.Methods("POST").Path("/").Handler(httptransport.NewServer(
		protect(endpoints.CreateTaskEndpoint),
		decodeHTTPCreateTaskRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("PUT").Path("/{id}").Handler(httptransport.NewServer(
		protect(endpoints.UpdateTaskEndpoint),
		decodeHTTPUpdateTaskRequest,
		httpcodec.EncodeResponse,
		protected...,
	))
	r.Methods("DELETE").Path("/{id}").Handler(httptransport.NewServer(
		protect(endpoints.DeleteTaskEndpoint),
		decodeHTTPDeleteTaskRequest,
		httpcodec.EncodeResponse,
		protected...,
	))

	return r
}

// NewHTTPClient returns task endpoints backed by the HTTP server at
// instance. The Set's caller arguments are ignored: the server identifies
// the caller by the token attached with authtransport.WithBearer.
func NewHTTPClient(instance string, logger log.Logger) (taskendpoint.Set, error) {
	if !strings.HasPrefix(instance, "http") {
		instance = "http://" + instance
	}
	u, err := url.Parse(instance)
	if err != nil {
		return taskendpoint.Set{}, err
	}

	options := []httptransport.ClientOption{
		authtransport.ClientBefore(),
	}

	client := func(method, tail string, enc httptransport.EncodeRequestFunc, dec httptransport.DecodeResponseFunc) endpoint.Endpoint {
		return httptransport.NewClient(method, copyURL(u, tail), enc, dec, options...).Endpoint()
	}

	return taskendpoint.Set{
		TasksEndpoint:             client("GET", "/tasks/", encodeHTTPEmptyRequest, decodeHTTPTasksResponse),
		FreeTasksEndpoint:         client("GET", "/tasks/free", encodeHTTPEmptyRequest, decodeHTTPTasksResponse),
		TaskEndpoint:              client("GET", "/tasks/", encodeHTTPTaskRequest, decodeHTTPTaskResponse),
		TaskByOwnerEndpoint:       client("GET", "/tasks/owner/", encodeHTTPTaskByOwnerRequest, decodeHTTPTaskResponse),
		TaskByTitleEndpoint:       client("GET", "/tasks/title/", encodeHTTPTaskByTitleRequest, decodeHTTPTaskResponse),
		CreateTaskEndpoint:        client("POST", "/tasks/", httpcodec.EncodeRequest, decodeHTTPCreateTaskResponse),
		UpdateTaskEndpoint:        client("PUT", "/tasks/", encodeHTTPUpdateTaskRequest, decodeHTTPTaskResponse),
		DeleteTaskEndpoint:        client("DELETE", "/tasks/", encodeHTTPDeleteTaskRequest, decodeHTTPDeleteResponse),
		DeleteTaskByTitleEndpoint: client("DELETE", "/tasks/title/", encodeHTTPDeleteTaskByTitleRequest, decodeHTTPDeleteResponse),
	}, nil
}

func copyURL(base *url.URL, tail string) *url.URL {
	next := *base
	next.Path = strings.TrimRight(base.Path, "/") + tail
	return &next
}

func decodeHTTPTasksRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return taskendpoint.TasksRequest{}, nil
}

func decodeHTTPFreeTasksRequest(_ context.Context, _ *http.Request) (interface{}, error) {
	return taskendpoint.FreeTasksRequest{}, nil
}

func decodeHTTPTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.TaskRequest{ID: id}, nil
}

func decodeHTTPTaskByOwnerRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "owner_id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.TaskByOwnerRequest{OwnerID: id}, nil
}

func decodeHTTPTaskByTitleRequest(_ context.Context, r *http.Request) (interface{}, error) {
	title, err := httpcodec.Var(r, "title")
	if err != nil {
		return nil, err
	}
	return taskendpoint.TaskByTitleRequest{Title: title}, nil
}

func decodeHTTPCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req taskendpoint.CreateTaskRequest
	err := httpcodec.DecodeJSON(r, &req)
	return req, err
}

func decodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "id")
	if err != nil {
		return nil, err
	}

	var req taskendpoint.UpdateTaskRequest
	if err := httpcodec.DecodeJSON(r, &req); err != nil {
		return nil, err
	}
	req.ID = id

	return req, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := httpcodec.ID(r, "id")
	if err != nil {
		return nil, err
	}
	return taskendpoint.DeleteTaskRequest{ID: id}, nil
}

func decodeHTTPDeleteTaskByTitleRequest(_ context.Context, r *http.Request) (interface{}, error) {
	title, err := httpcodec.Var(r, "title")
	if err != nil {
		return nil, err
	}
	return taskendpoint.DeleteTaskByTitleRequest{Title: title}, nil
}

func encodeHTTPEmptyRequest(_ context.Context, _ *http.Request, _ interface{}) error {
	return nil
}

func encodeHTTPTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TaskRequest)
	r.URL.Path = path.Join(r.URL.Path, strconv.FormatUint(req.ID, 10))
	return nil
}

func encodeHTTPTaskByOwnerRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TaskByOwnerRequest)
	r.URL.Path = path.Join(r.URL.Path, strconv.FormatUint(req.OwnerID, 10))
	return nil
}

func encodeHTTPTaskByTitleRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.TaskByTitleRequest)
	r.URL.Path = path.Join(r.URL.Path, req.Title)
	return nil
}

func encodeHTTPUpdateTaskRequest(ctx context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.UpdateTaskRequest)
	r.URL.Path = path.Join(r.URL.Path, strconv.FormatUint(req.ID, 10))
	return httpcodec.EncodeRequest(ctx, r, req.Draft)
}

func encodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.DeleteTaskRequest)
	r.URL.Path = path.Join(r.URL.Path, strconv.FormatUint(req.ID, 10))
	return nil
}

func encodeHTTPDeleteTaskByTitleRequest(_ context.Context, r *http.Request, request interface{}) error {
	req := request.(taskendpoint.DeleteTaskByTitleRequest)
	r.URL.Path = path.Join(r.URL.Path, req.Title)
	return nil
}

func decodeHTTPTasksResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.TasksResponse
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

func decodeHTTPTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.TaskResponse
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

func decodeHTTPCreateTaskResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.CreateTaskResponse
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

func decodeHTTPDeleteResponse(_ context.Context, r *http.Response) (interface{}, error) {
	var resp taskendpoint.DeleteResponse
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
