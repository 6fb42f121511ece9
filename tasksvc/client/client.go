// Package client provides load balanced task endpoints over the instances
// reported by a service discovery instancer, typically consulsd.NewInstancer.
package client

import (
	"io"
	"time"

	"github.com/go-kit/kit/circuitbreaker"
	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	"github.com/go-kit/kit/sd/lb"
	"github.com/sony/gobreaker"

	"github.com/ichigozero/taskguard/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/taskguard/tasksvc/pkg/tasktransport"
)

func New(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) (taskendpoint.Set, error) {
	balanced := func(pick func(taskendpoint.Set) endpoint.Endpoint) endpoint.Endpoint {
		factory := factoryFor(pick, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		return lb.Retry(retryMax, retryTimeout, balancer)
	}

	return taskendpoint.Set{
		TasksEndpoint:             balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.TasksEndpoint }),
		FreeTasksEndpoint:         balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.FreeTasksEndpoint }),
		TaskEndpoint:              balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.TaskEndpoint }),
		TaskByOwnerEndpoint:       balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.TaskByOwnerEndpoint }),
		TaskByTitleEndpoint:       balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.TaskByTitleEndpoint }),
		CreateTaskEndpoint:        balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.CreateTaskEndpoint }),
		UpdateTaskEndpoint:        balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.UpdateTaskEndpoint }),
		DeleteTaskEndpoint:        balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.DeleteTaskEndpoint }),
		DeleteTaskByTitleEndpoint: balanced(func(s taskendpoint.Set) endpoint.Endpoint { return s.DeleteTaskByTitleEndpoint }),
	}, nil
}

// factoryFor builds the remote endpoint chosen by pick for one instance.
// The remote endpoints are used directly: the server checks the caller's
// token, so no identity is needed on this side.
func factoryFor(pick func(taskendpoint.Set) endpoint.Endpoint, logger log.Logger) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		remote, err := tasktransport.NewHTTPClient(instance, logger)
		if err != nil {
			return nil, nil, err
		}
		breaker := circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "tasksvc " + instance,
			Timeout: 30 * time.Second,
		}))
		return breaker(pick(remote)), nil, nil
	}
}
