// Package client provides load balanced auth endpoints over the instances
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

	"github.com/ichigozero/taskguard/authsvc/pkg/authendpoint"
	"github.com/ichigozero/taskguard/authsvc/pkg/authtransport"
)

func New(instancer sd.Instancer, logger log.Logger, retryMax int, retryTimeout time.Duration) (authendpoint.Set, error) {
	balanced := func(pick func(authendpoint.Set) endpoint.Endpoint) endpoint.Endpoint {
		factory := factoryFor(pick, logger)
		endpointer := sd.NewEndpointer(instancer, factory, logger)
		balancer := lb.NewRoundRobin(endpointer)
		return lb.Retry(retryMax, retryTimeout, balancer)
	}

	return authendpoint.Set{
		RegisterEndpoint:    balanced(func(s authendpoint.Set) endpoint.Endpoint { return s.RegisterEndpoint }),
		LoginEndpoint:       balanced(func(s authendpoint.Set) endpoint.Endpoint { return s.LoginEndpoint }),
		CurrentUserEndpoint: balanced(func(s authendpoint.Set) endpoint.Endpoint { return s.CurrentUserEndpoint }),
	}, nil
}

// factoryFor builds the remote endpoint chosen by pick for one instance.
func factoryFor(pick func(authendpoint.Set) endpoint.Endpoint, logger log.Logger) sd.Factory {
	return func(instance string) (endpoint.Endpoint, io.Closer, error) {
		remote, err := authtransport.NewHTTPClient(instance, logger)
		if err != nil {
			return nil, nil, err
		}
		breaker := circuitbreaker.Gobreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "authsvc " + instance,
			Timeout: 30 * time.Second,
		}))
		return breaker(pick(remote)), nil, nil
	}
}
