package userservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/guard"
	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/usersvc"
	"github.com/ichigozero/taskguard/validate"
)

type Service interface {
	Users(ctx context.Context) ([]usersvc.User, error)
	FreeUsers(ctx context.Context) ([]usersvc.User, error)
	User(ctx context.Context, id uint64) (usersvc.User, error)
	UserByName(ctx context.Context, name string) (usersvc.User, error)
	UserByEmail(ctx context.Context, email string) (usersvc.User, error)
	UserTasks(ctx context.Context, caller authsvc.Identity) ([]tasksvc.Task, error)
	UpdateUser(ctx context.Context, caller authsvc.Identity, id uint64, p usersvc.Profile) (usersvc.User, error)
	DeleteUser(ctx context.Context, caller authsvc.Identity, id uint64) error
	DeleteUserByName(ctx context.Context, caller authsvc.Identity, name string) error
	DeleteUserByEmail(ctx context.Context, caller authsvc.Identity, email string) error
}

func New(s storage.Store, g *guard.Guard, logger log.Logger, counter metrics.Counter, latency metrics.Histogram) Service {
	var svc Service
	{
		svc = NewBasicService(s, g)
		svc = LoggingMiddleware(logger)(svc)
		svc = InstrumentingMiddleware(counter, latency)(svc)
	}
	return svc
}

type basicService struct {
	store storage.Store
	guard *guard.Guard
}

func NewBasicService(s storage.Store, g *guard.Guard) Service {
	return basicService{store: s, guard: g}
}

func (s basicService) Users(ctx context.Context) (users []usersvc.User, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		users, err = tx.Users().FindAll(ctx)
		return err
	})
	return users, err
}

// FreeUsers lists the users no task references.
func (s basicService) FreeUsers(ctx context.Context) ([]usersvc.User, error) {
	users := []usersvc.User{}
	err := s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		all, err := tx.Users().FindAll(ctx)
		if err != nil {
			return err
		}
		tasks, err := tx.Tasks().FindAll(ctx)
		if err != nil {
			return err
		}

		owners := make(map[uint64]bool, len(tasks))
		for _, t := range tasks {
			if t.OwnerID != nil {
				owners[*t.OwnerID] = true
			}
		}
		for _, u := range all {
			if !owners[u.ID] {
				users = append(users, u)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s basicService) User(ctx context.Context, id uint64) (user usersvc.User, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err = tx.Users().Find(ctx, id)
		return err
	})
	return user, err
}

func (s basicService) UserByName(ctx context.Context, name string) (usersvc.User, error) {
	return s.userBy(ctx, usersvc.ByName, name)
}

func (s basicService) UserByEmail(ctx context.Context, email string) (usersvc.User, error) {
	return s.userBy(ctx, usersvc.ByEmail, email)
}

func (s basicService) userBy(ctx context.Context, field usersvc.Field, value string) (user usersvc.User, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		user, err = tx.Users().FindBy(ctx, field, validate.Normalize(value))
		return err
	})
	return user, err
}

// UserTasks lists the tasks owned by the caller.
func (s basicService) UserTasks(ctx context.Context, caller authsvc.Identity) ([]tasksvc.Task, error) {
	tasks := []tasksvc.Task{}
	err := s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.Users().Find(ctx, caller.ID); err != nil {
			return err
		}
		all, err := tx.Tasks().FindAll(ctx)
		if err != nil {
			return err
		}
		for _, t := range all {
			if t.OwnedBy(caller.ID) {
				tasks = append(tasks, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s basicService) UpdateUser(ctx context.Context, caller authsvc.Identity, id uint64, p usersvc.Profile) (usersvc.User, error) {
	return s.guard.UpdateUser(ctx, caller, id, p)
}

func (s basicService) DeleteUser(ctx context.Context, caller authsvc.Identity, id uint64) error {
	return s.guard.DeleteUser(ctx, caller, id)
}

func (s basicService) DeleteUserByName(ctx context.Context, caller authsvc.Identity, name string) error {
	return s.guard.DeleteUserBy(ctx, caller, usersvc.ByName, name)
}

func (s basicService) DeleteUserByEmail(ctx context.Context, caller authsvc.Identity, email string) error {
	return s.guard.DeleteUserBy(ctx, caller, usersvc.ByEmail, email)
}
