// Package apigateway mounts the auth, user and task HTTP APIs under one
// router. The endpoint sets may be local or remote.
package apigateway

import (
	"net/http"

	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ichigozero/taskguard/authsvc/pkg/authendpoint"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/authsvc/pkg/authtransport"
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/taskguard/tasksvc/pkg/tasktransport"
	"github.com/ichigozero/taskguard/usersvc/pkg/userendpoint"
	"github.com/ichigozero/taskguard/usersvc/pkg/usertransport"
)

func NewHandler(
	auth authendpoint.Set,
	users userendpoint.Set,
	tasks taskendpoint.Set,
	t *authservice.Tokenizer,
	logger log.Logger,
) http.Handler {
	r := mux.NewRouter()
	{
		h := authtransport.NewHTTPHandler(auth, t, log.With(logger, "component", "auth"))
		r.PathPrefix("/auth").Handler(http.StripPrefix("/auth", h))
	}
	{
		h := usertransport.NewHTTPHandler(users, t, log.With(logger, "component", "users"))
		r.PathPrefix("/users").Handler(http.StripPrefix("/users", h))
	}
	{
		h := tasktransport.NewHTTPHandler(tasks, t, log.With(logger, "component", "tasks"))
		r.PathPrefix("/tasks").Handler(http.StripPrefix("/tasks", h))
	}
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	return r
}
