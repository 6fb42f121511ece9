package taskendpoint

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskservice"
)

// ErrUnexpectedResponse is returned by a Set method when its endpoint
// answers with a response of the wrong type.
var ErrUnexpectedResponse = errors.New("unexpected response type")

type Set struct {
	TasksEndpoint             endpoint.Endpoint
	FreeTasksEndpoint         endpoint.Endpoint
	TaskEndpoint              endpoint.Endpoint
	TaskByOwnerEndpoint       endpoint.Endpoint
	TaskByTitleEndpoint       endpoint.Endpoint
	CreateTaskEndpoint        endpoint.Endpoint
	UpdateTaskEndpoint        endpoint.Endpoint
	DeleteTaskEndpoint        endpoint.Endpoint
	DeleteTaskByTitleEndpoint endpoint.Endpoint
}

func New(svc taskservice.Service, logger log.Logger) Set {
	var tasksEndpoint endpoint.Endpoint
	{
		tasksEndpoint = MakeTasksEndpoint(svc)
		tasksEndpoint = LoggingMiddleware(log.With(logger, "method", "Tasks"))(tasksEndpoint)
	}
	var freeTasksEndpoint endpoint.Endpoint
	{
		freeTasksEndpoint = MakeFreeTasksEndpoint(svc)
		freeTasksEndpoint = LoggingMiddleware(log.With(logger, "method", "FreeTasks"))(freeTasksEndpoint)
	}
	var taskEndpoint endpoint.Endpoint
	{
		taskEndpoint = MakeTaskEndpoint(svc)
		taskEndpoint = LoggingMiddleware(log.With(logger, "method", "Task"))(taskEndpoint)
	}
	var taskByOwnerEndpoint endpoint.Endpoint
	{
		taskByOwnerEndpoint = MakeTaskByOwnerEndpoint(svc)
		taskByOwnerEndpoint = LoggingMiddleware(log.With(logger, "method", "TaskByOwner"))(taskByOwnerEndpoint)
	}
	var taskByTitleEndpoint endpoint.Endpoint
	{
		taskByTitleEndpoint = MakeTaskByTitleEndpoint(svc)
		taskByTitleEndpoint = LoggingMiddleware(log.With(logger, "method", "TaskByTitle"))(taskByTitleEndpoint)
	}

	var createTaskEndpoint endpoint.Endpoint
	{
		createTaskEndpoint = MakeCreateTaskEndpoint(svc)
		createTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "CreateTask"))(createTaskEndpoint)
	}

	var updateTaskEndpoint endpoint.Endpoint
	{
		updateTaskEndpoint = MakeUpdateTaskEndpoint(svc)
		updateTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "UpdateTask"))(updateTaskEndpoint)
	}

	var deleteTaskEndpoint endpoint.Endpoint
	{
		deleteTaskEndpoint = MakeDeleteTaskEndpoint(svc)
		deleteTaskEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteTask"))(deleteTaskEndpoint)
	}

	var deleteTaskByTitleEndpoint endpoint.Endpoint
	{
		deleteTaskByTitleEndpoint = MakeDeleteTaskByTitleEndpoint(svc)
		deleteTaskByTitleEndpoint = LoggingMiddleware(log.With(logger, "method", "DeleteTaskByTitle"))(deleteTaskByTitleEndpoint)
	}

	return Set{
		TasksEndpoint:             tasksEndpoint,
		FreeTasksEndpoint:         freeTasksEndpoint,
		TaskEndpoint:              taskEndpoint,
		TaskByOwnerEndpoint:       taskByOwnerEndpoint,
		TaskByTitleEndpoint:       taskByTitleEndpoint,
		CreateTaskEndpoint:        createTaskEndpoint,
		UpdateTaskEndpoint:        updateTaskEndpoint,
		DeleteTaskEndpoint:        deleteTaskEndpoint,
		DeleteTaskByTitleEndpoint: deleteTaskByTitleEndpoint,
	}
}

func (s Set) Tasks(ctx context.Context) ([]tasksvc.Task, error) {
	resp, err := s.TasksEndpoint(ctx, TasksRequest{})
	if err != nil {
		return nil, err
	}
	response := resp.(TasksResponse)
	return response.Tasks, response.Err
}

func (s Set) FreeTasks(ctx context.Context) ([]tasksvc.Task, error) {
	resp, err := s.FreeTasksEndpoint(ctx, FreeTasksRequest{})
	if err != nil {
		return nil, err
	}
	response := resp.(TasksResponse)
	return response.Tasks, response.Err
}

func (s Set) Task(ctx context.Context, id uint64) (tasksvc.Task, error) {
	return s.task(ctx, s.TaskEndpoint, TaskRequest{ID: id})
}

func (s Set) TaskByOwner(ctx context.Context, ownerID uint64) (tasksvc.Task, error) {
	return s.task(ctx, s.TaskByOwnerEndpoint, TaskByOwnerRequest{OwnerID: ownerID})
}

func (s Set) TaskByTitle(ctx context.Context, title string) (tasksvc.Task, error) {
	return s.task(ctx, s.TaskByTitleEndpoint, TaskByTitleRequest{Title: title})
}

func (s Set) CreateTask(ctx context.Context, d tasksvc.Draft) (tasksvc.Task, error) {
	return s.task(ctx, s.CreateTaskEndpoint, CreateTaskRequest{Draft: d})
}

// UpdateTask acts as the identity attached to ctx; caller is not sent.
func (s Set) UpdateTask(ctx context.Context, _ authsvc.Identity, id uint64, d tasksvc.Draft) (tasksvc.Task, error) {
	return s.task(ctx, s.UpdateTaskEndpoint, UpdateTaskRequest{ID: id, Draft: d})
}

func (s Set) DeleteTask(ctx context.Context, _ authsvc.Identity, id uint64) error {
	return s.delete(ctx, s.DeleteTaskEndpoint, DeleteTaskRequest{ID: id})
}

func (s Set) DeleteTaskByTitle(ctx context.Context, _ authsvc.Identity, title string) error {
	return s.delete(ctx, s.DeleteTaskByTitleEndpoint, DeleteTaskByTitleRequest{Title: title})
}

func (s Set) task(ctx context.Context, e endpoint.Endpoint, request interface{}) (tasksvc.Task, error) {
	resp, err := e(ctx, request)
	if err != nil {
		return tasksvc.Task{}, err
	}
	switch response := resp.(type) {
	case CreateTaskResponse:
		return response.Task, response.Err
	case TaskResponse:
		return response.Task, response.Err
	}
	return tasksvc.Task{}, ErrUnexpectedResponse
}

func (s Set) delete(ctx context.Context, e endpoint.Endpoint, request interface{}) error {
	resp, err := e(ctx, request)
	if err != nil {
		return err
	}
	return resp.(DeleteResponse).Err
}

func MakeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(TasksRequest)
		t, err := s.Tasks(ctx)
		return TasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeFreeTasksEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		_ = request.(FreeTasksRequest)
		t, err := s.FreeTasks(ctx)
		return TasksResponse{Tasks: t, Err: err}, nil
	}
}

func MakeTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TaskRequest)
		t, err := s.Task(ctx, req.ID)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeTaskByOwnerEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TaskByOwnerRequest)
		t, err := s.TaskByOwner(ctx, req.OwnerID)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeTaskByTitleEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		req := request.(TaskByTitleRequest)
		t, err := s.TaskByTitle(ctx, req.Title)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeCreateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		if _, err := identity(ctx); err != nil {
			return CreateTaskResponse{Err: err}, nil
		}

		req := request.(CreateTaskRequest)
		t, err := s.CreateTask(ctx, req.Draft)
		return CreateTaskResponse{Task: t, Err: err}, nil
	}
}

func MakeUpdateTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return TaskResponse{Err: err}, nil
		}

		req := request.(UpdateTaskRequest)
		t, err := s.UpdateTask(ctx, caller, req.ID, req.Draft)
		return TaskResponse{Task: t, Err: err}, nil
	}
}

func MakeDeleteTaskEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return DeleteResponse{Err: err}, nil
		}

		req := request.(DeleteTaskRequest)
		err = s.DeleteTask(ctx, caller, req.ID)
		return DeleteResponse{Success: err == nil, Err: err}, nil
	}
}

func MakeDeleteTaskByTitleEndpoint(s taskservice.Service) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		caller, err := identity(ctx)
		if err != nil {
			return DeleteResponse{Err: err}, nil
		}

		req := request.(DeleteTaskByTitleRequest)
		err = s.DeleteTaskByTitle(ctx, caller, req.Title)
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
	_ endpoint.Failer = TasksResponse{}
	_ endpoint.Failer = TaskResponse{}
	_ endpoint.Failer = CreateTaskResponse{}
	_ endpoint.Failer = DeleteResponse{}
)

type TasksRequest struct{}

type FreeTasksRequest struct{}

type TasksResponse struct {
	Tasks []tasksvc.Task `json:"tasks"`
	Err   error          `json:"-"`
}

func (r TasksResponse) Failed() error { return r.Err }

type TaskRequest struct {
	ID uint64 `json:"-"`
}

type TaskByOwnerRequest struct {
	OwnerID uint64 `json:"-"`
}

type TaskByTitleRequest struct {
	Title string `json:"-"`
}

type TaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r TaskResponse) Failed() error { return r.Err }

type CreateTaskRequest struct {
	tasksvc.Draft
}

type CreateTaskResponse struct {
	Task tasksvc.Task `json:"task"`
	Err  error        `json:"-"`
}

func (r CreateTaskResponse) Failed() error { return r.Err }

func (r CreateTaskResponse) StatusCode() int { return http.StatusCreated }

type UpdateTaskRequest struct {
	ID uint64 `json:"-"`
	tasksvc.Draft
}

type DeleteTaskRequest struct {
	ID uint64 `json:"-"`
}

type DeleteTaskByTitleRequest struct {
	Title string `json:"-"`
}

type DeleteResponse struct {
	Success bool  `json:"success"`
	Err     error `json:"-"`
}

func (r DeleteResponse) Failed() error { return r.Err }
