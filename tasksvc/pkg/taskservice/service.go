package taskservice

import (
	"context"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/guard"
	"github.com/ichigozero/taskguard/storage"
	"github.com/ichigozero/taskguard/tasksvc"
	"github.com/ichigozero/taskguard/validate"
)

type Service interface {
	Tasks(ctx context.Context) ([]tasksvc.Task, error)
	FreeTasks(ctx context.Context) ([]tasksvc.Task, error)
	Task(ctx context.Context, id uint64) (tasksvc.Task, error)
	TaskByOwner(ctx context.Context, ownerID uint64) (tasksvc.Task, error)
	TaskByTitle(ctx context.Context, title string) (tasksvc.Task, error)
	CreateTask(ctx context.Context, d tasksvc.Draft) (tasksvc.Task, error)
	UpdateTask(ctx context.Context, caller authsvc.Identity, id uint64, d tasksvc.Draft) (tasksvc.Task, error)
	DeleteTask(ctx context.Context, caller authsvc.Identity, id uint64) error
	DeleteTaskByTitle(ctx context.Context, caller authsvc.Identity, title string) error
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

func (s basicService) Tasks(ctx context.Context) (tasks []tasksvc.Task, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		tasks, err = tx.Tasks().FindAll(ctx)
		return err
	})
	return tasks, err
}

func (s basicService) FreeTasks(ctx context.Context) ([]tasksvc.Task, error) {
	all, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}

	tasks := []tasksvc.Task{}
	for _, t := range all {
		if t.OwnerID == nil {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (s basicService) Task(ctx context.Context, id uint64) (task tasksvc.Task, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		task, err = tx.Tasks().Find(ctx, id)
		return err
	})
	return task, err
}

func (s basicService) TaskByOwner(ctx context.Context, ownerID uint64) (task tasksvc.Task, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		task, err = tx.Tasks().FindBy(ctx, tasksvc.ByOwner, ownerID)
		return err
	})
	return task, err
}

func (s basicService) TaskByTitle(ctx context.Context, title string) (task tasksvc.Task, err error) {
	err = s.store.Transaction(ctx, func(ctx context.Context, tx storage.Tx) error {
		task, err = tx.Tasks().FindBy(ctx, tasksvc.ByTitle, validate.Normalize(title))
		return err
	})
	return task, err
}

func (s basicService) CreateTask(ctx context.Context, d tasksvc.Draft) (tasksvc.Task, error) {
	return s.guard.CreateTask(ctx, d)
}

func (s basicService) UpdateTask(ctx context.Context, caller authsvc.Identity, id uint64, d tasksvc.Draft) (tasksvc.Task, error) {
	return s.guard.UpdateTask(ctx, caller, id, d)
}

func (s basicService) DeleteTask(ctx context.Context, caller authsvc.Identity, id uint64) error {
	return s.guard.DeleteTask(ctx, caller, id)
}

func (s basicService) DeleteTaskByTitle(ctx context.Context, caller authsvc.Identity, title string) error {
	return s.guard.DeleteTaskByTitle(ctx, caller, title)
}
