// Package client provides load balanced user endpoints over the instances
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

	"github.com/ichigozero/taskguard/usersvc/pkg/userendpoint"
	"github.com/ichigozero/taskguard/usersvc/pkg/usertransport"
)

func New(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) (userendpoint.Set, error) {
	balanced := func(pick func(userendpoint.Set) endpoint.Endpoint) endpoint.Endpoint {
		factory := factoryFor(pick, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		return lb.Retry(retryMax, retryTimeout, balancer)
	}

	return userendpoint.Set{
		UsersEndpoint:             balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.UsersEndpoint }),
		FreeUsersEndpoint:         balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.FreeUsersEndpoint }),
		UserEndpoint:              balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.UserEndpoint }),
		UserByNameEndpoint:        balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.UserByNameEndpoint }),
		UserByEmailEndpoint:       balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.UserByEmailEndpoint }),
		UserTasksEndpoint:         balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.UserTasksEndpoint }),
		UpdateUserEndpoint:        balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.UpdateUserEndpoint }),
		DeleteUserEndpoint:        balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.DeleteUserEndpoint }),
		DeleteUserByNameEndpoint:  balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.DeleteUserByNameEndpoint }),
		DeleteUserByEmailEndpoint: balanced(func(s userendpoint.Set) endpoint.Endpoint { return s.DeleteUserByEmailEndpoint }),
	}, nil
}

// factoryFor builds the remote endpoint chosen by pick for one instance.
// The remote endpoints are used directly: the server checks the caller's
// token, so no identity is needed on this side.
func factoryFor(pick func(userendpoint.Set) endpoint.Endpoint, logger log.Logger) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		remote, err := usertransport.NewHTTPClient(instance, logger)
		if err != nil {
			return nil, nil, err
		}
		breaker := circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "usersvc " + instance,
			Timeout: 30 * time.Second,
		}))
		return breaker(pick(remote)), nil, nil
	}
}
