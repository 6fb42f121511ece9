package taskservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/tasksvc"
)

type Middleware func(Service) Service

func LoggingMiddleware(logger log.Logger) Middleware {
	return func(next Service) Service {
		return loggingMiddleware{logger, next}
	}
}

type loggingMiddleware struct {
	logger log.Logger
	next   Service
}

func (mw loggingMiddleware) Tasks(ctx context.Context) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "Tasks", "count", len(t), "err", err)
	}()
	return mw.next.Tasks(ctx)
}

func (mw loggingMiddleware) FreeTasks(ctx context.Context) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "FreeTasks", "count", len(t), "err", err)
	}()
	return mw.next.FreeTasks(ctx)
}

func (mw loggingMiddleware) Task(ctx context.Context, id uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "Task", "task_id", id, "err", err)
	}()
	return mw.next.Task(ctx, id)
}

func (mw loggingMiddleware) TaskByOwner(ctx context.Context, ownerID uint64) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "TaskByOwner", "owner_id", ownerID, "err", err)
	}()
	return mw.next.TaskByOwner(ctx, ownerID)
}

func (mw loggingMiddleware) TaskByTitle(ctx context.Context, title string) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "TaskByTitle", "title", title, "err", err)
	}()
	return mw.next.TaskByTitle(ctx, title)
}

func (mw loggingMiddleware) CreateTask(ctx context.Context, d tasksvc.Draft) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "CreateTask",
			"title", d.Title,
			"status", d.Status,
			"owner_id", ownerOf(d.OwnerID),
			"task_id", t.ID,
			"err", err,
		)
	}()
	return mw.next.CreateTask(ctx, d)
}

func (mw loggingMiddleware) UpdateTask(ctx context.Context, caller authsvc.Identity, id uint64, d tasksvc.Draft) (t tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateTask",
			"user_id", caller.ID,
			"task_id", id,
			"title", d.Title,
			"status", d.Status,
			"owner_id", ownerOf(d.OwnerID),
			"err", err,
		)
	}()
	return mw.next.UpdateTask(ctx, caller, id, d)
}

func (mw loggingMiddleware) DeleteTask(ctx context.Context, caller authsvc.Identity, id uint64) (err error) {
	defer func() {
		mw.logger.Log("method", "DeleteTask", "user_id", caller.ID, "task_id", id, "err", err)
	}()
	return mw.next.DeleteTask(ctx, caller, id)
}

func (mw loggingMiddleware) DeleteTaskByTitle(ctx context.Context, caller authsvc.Identity, title string) (err error) {
	defer func() {
		mw.logger.Log("method", "DeleteTaskByTitle", "user_id", caller.ID, "title", title, "err", err)
	}()
	return mw.next.DeleteTaskByTitle(ctx, caller, title)
}

func ownerOf(id *uint64) interface{} {
	if id == nil {
		return "none"
	}
	return *id
}

func InstrumentingMiddleware(counter metrics.Counter, latency metrics.Histogram) Middleware {
	return func(next Service) Service {
		return instrumentingMiddleware{counter, latency, next}
	}
}

type instrumentingMiddleware struct {
	requestCount   metrics.Counter
	requestLatency metrics.Histogram
	next           Service
}

func (mw instrumentingMiddleware) observe(method string, begin time.Time) {
	mw.requestCount.With("method", method).Add(1)
	mw.requestLatency.With("method", method).Observe(time.Since(begin).Seconds())
}

func (mw instrumentingMiddleware) Tasks(ctx context.Context) ([]tasksvc.Task, error) {
	defer mw.observe("tasks", time.Now())
	return mw.next.Tasks(ctx)
}

func (mw instrumentingMiddleware) FreeTasks(ctx context.Context) ([]tasksvc.Task, error) {
	defer mw.observe("free_tasks", time.Now())
	return mw.next.FreeTasks(ctx)
}

func (mw instrumentingMiddleware) Task(ctx context.Context, id uint64) (tasksvc.Task, error) {
	defer mw.observe("task", time.Now())
	return mw.next.Task(ctx, id)
}

func (mw instrumentingMiddleware) TaskByOwner(ctx context.Context, ownerID uint64) (tasksvc.Task, error) {
	defer mw.observe("task_by_owner", time.Now())
	return mw.next.TaskByOwner(ctx, ownerID)
}

func (mw instrumentingMiddleware) TaskByTitle(ctx context.Context, title string) (tasksvc.Task, error) {
	defer mw.observe("task_by_title", time.Now())
	return mw.next.TaskByTitle(ctx, title)
}

func (mw instrumentingMiddleware) CreateTask(ctx context.Context, d tasksvc.Draft) (tasksvc.Task, error) {
	defer mw.observe("create_task", time.Now())
	return mw.next.CreateTask(ctx, d)
}

func (mw instrumentingMiddleware) UpdateTask(ctx context.Context, caller authsvc.Identity, id uint64, d tasksvc.Draft) (tasksvc.Task, error) {
	defer mw.observe("update_task", time.Now())
	return mw.next.UpdateTask(ctx, caller, id, d)
}

func (mw instrumentingMiddleware) DeleteTask(ctx context.Context, caller authsvc.Identity, id uint64) error {
	defer mw.observe("delete_task", time.Now())
	return mw.next.DeleteTask(ctx, caller, id)
}

func (mw instrumentingMiddleware) DeleteTaskByTitle(ctx context.Context, caller authsvc.Identity, title string) error {
	defer mw.observe("delete_task_by_title", time.Now())
	return mw.next.DeleteTaskByTitle(ctx, caller, title)
}
