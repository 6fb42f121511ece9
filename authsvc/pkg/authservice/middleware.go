package authservice

import (
	"context"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/ichigozero/taskguard/authsvc"
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

func (mw loggingMiddleware) Register(ctx context.Context, p usersvc.Profile) (u usersvc.User, err error) {
	defer func() {
		mw.logger.Log(
			"method", "Register",
			"name", p.Name,
			"email", p.Email,
			"user_id", u.ID,
			"err", err,
		)
	}()
	return mw.next.Register(ctx, p)
}

func (mw loggingMiddleware) Login(ctx context.Context, username, password string) (t Token, err error) {
	defer func() {
		mw.logger.Log("method", "Login", "username", username, "err", err)
	}()
	return mw.next.Login(ctx, username, password)
}

func (mw loggingMiddleware) CurrentUser(ctx context.Context) (id authsvc.Identity, err error) {
	defer func() {
		mw.logger.Log("method", "CurrentUser", "user_id", id.ID, "err", err)
	}()
	return mw.next.CurrentUser(ctx)
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

func (mw instrumentingMiddleware) Register(ctx context.Context, p usersvc.Profile) (usersvc.User, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "register").Add(1)
		mw.requestLatency.With("method", "register").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Register(ctx, p)
}

func (mw instrumentingMiddleware) Login(ctx context.Context, username, password string) (Token, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "login").Add(1)
		mw.requestLatency.With("method", "login").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.Login(ctx, username, password)
}

func (mw instrumentingMiddleware) CurrentUser(ctx context.Context) (authsvc.Identity, error) {
	defer func(begin time.Time) {
		mw.requestCount.With("method", "current_user").Add(1)
		mw.requestLatency.With("method", "current_user").Observe(time.Since(begin).Seconds())
	}(time.Now())

	return mw.next.CurrentUser(ctx)
}
