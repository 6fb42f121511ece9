package userservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
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

func (mw loggingMiddleware) Users(ctx context.Context) (u []usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "Users", "count", len(u), "err", err)
	}()
	return mw.next.Users(ctx)
}

func (mw loggingMiddleware) FreeUsers(ctx context.Context) (u []usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "FreeUsers", "count", len(u), "err", err)
	}()
	return mw.next.FreeUsers(ctx)
}

func (mw loggingMiddleware) User(ctx context.Context, id uint64) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "User", "user_id", id, "err", err)
	}()
	return mw.next.User(ctx, id)
}

func (mw loggingMiddleware) UserByName(ctx context.Context, name string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "UserByName", "name", name, "err", err)
	}()
	return mw.next.UserByName(ctx, name)
}

func (mw loggingMiddleware) UserByEmail(ctx context.Context, email string) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log("method", "UserByEmail", "email", email, "err", err)
	}()
	return mw.next.UserByEmail(ctx, email)
}

func (mw loggingMiddleware) UserTasks(ctx context.Context, caller authsvc.Identity) (t []tasksvc.Task, err error) {
	defer func() {
		mw.logger.Log("method", "UserTasks", "user_id", caller.ID, "count", len(t), "err", err)
	}()
	return mw.next.UserTasks(ctx, caller)
}

func (mw loggingMiddleware) UpdateUser(ctx context.Context, caller authsvc.Identity, id uint64, p usersvc.Profile) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log(
			"method", "UpdateUser",
			"caller_id", caller.ID,
			"user_id", id,
			"name", p.Name,
			"email", p.Email,
			"err", err,
		)
	}()
	return mw.next.UpdateUser(ctx, caller, id, p)
}

func (mw loggingMiddleware) DeleteUser(ctx context.Context, caller authsvc.Identity, id uint64) (err error) {
	defer func() {
		mw.logger.Log("method", "DeleteUser", "caller_id", caller.ID, "user_id", id, "err", err)
	}()
	return mw.next.DeleteUser(ctx, caller, id)
}

func (mw loggingMiddleware) DeleteUserByName(ctx context.Context, caller authsvc.Identity, name string) (err error) {
	defer func() {
		mw.logger.Log("method", "DeleteUserByName", "caller_id", caller.ID, "name", name, "err", err)
	}()
	return mw.next.DeleteUserByName(ctx, caller, name)
}

func (mw loggingMiddleware) DeleteUserByEmail(ctx context.Context, caller authsvc.Identity, email string) (err error) {
	defer func() {
		mw.logger.Log("method", "DeleteUserByEmail", "caller_id", caller.ID, "email", email, "err", err)
	}()
	return mw.next.DeleteUserByEmail(ctx, caller, email)
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

func (mw instrumentingMiddleware) Users(ctx context.Context) ([]usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "users").Add(1)
		mw.requestLatency.With("method", "users").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Users(ctx)
}

func (mw instrumentingMiddleware) FreeUsers(ctx context.Context) ([]usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "free_users").Add(1)
		mw.requestLatency.With("method", "free_users").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.FreeUsers(ctx)
}

func (mw instrumentingMiddleware) User(ctx context.Context, id uint64) (usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user").Add(1)
		mw.requestLatency.With("method", "user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.User(ctx, id)
}

func (mw instrumentingMiddleware) UserByName(ctx context.Context, name string) (usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user_by_name").Add(1)
		mw.requestLatency.With("method", "user_by_name").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UserByName(ctx, name)
}

func (mw instrumentingMiddleware) UserByEmail(ctx context.Context, email string) (usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user_by_email").Add(1)
		mw.requestLatency.With("method", "user_by_email").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UserByEmail(ctx, email)
}

func (mw instrumentingMiddleware) UserTasks(ctx context.Context, caller authsvc.Identity) ([]tasksvc.Task, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "user_tasks").Add(1)
		mw.requestLatency.With("method", "user_tasks").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UserTasks(ctx, caller)
}

func (mw instrumentingMiddleware) UpdateUser(ctx context.Context, caller authsvc.Identity, id uint64, p usersvc.Profile) (usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "update_user").Add(1)
		mw.requestLatency.With("method", "update_user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.UpdateUser(ctx, caller, id, p)
}

func (mw instrumentingMiddleware) DeleteUser(ctx context.Context, caller authsvc.Identity, id uint64) error {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_user").Add(1)
		mw.requestLatency.With("method", "delete_user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteUser(ctx, caller, id)
}

func (mw instrumentingMiddleware) DeleteUserByName(ctx context.Context, caller authsvc.Identity, name string) error {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_user_by_name").Add(1)
		mw.requestLatency.With("method", "delete_user_by_name").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteUserByName(ctx, caller, name)
}

func (mw instrumentingMiddleware) DeleteUserByEmail(ctx context.Context, caller authsvc.Identity, email string) error {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "delete_user_by_email").Add(1)
		mw.requestLatency.With("method", "delete_user_by_email").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.DeleteUserByEmail(ctx, caller, email)
}
