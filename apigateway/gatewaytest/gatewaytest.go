// Package gatewaytest runs the complete HTTP API over an in-memory store
// for tests.
package gatewaytest

import (
	"net/http/httptest"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics/discard"
	"golang.org/x/crypto/bcrypt"

	"github.com/ichigozero/taskguard/apigateway"
	"github.com/ichigozero/taskguard/authsvc/pkg/authendpoint"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/credential"
	"github.com/ichigozero/taskguard/guard"
	"github.com/ichigozero/taskguard/storage/memory"
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskendpoint"
	"github.com/ichigozero/taskguard/tasksvc/pkg/taskservice"
	"github.com/ichigozero/taskguard/usersvc/pkg/userendpoint"
	"github.com/ichigozero/taskguard/usersvc/pkg/userservice"
)

// Secret signs the tokens of servers started by NewServer.
const Secret = "gatewaytest-secret"

// NewServer starts a server that is closed when t finishes.
func NewServer(t testing.TB) *httptest.Server {
	t.Helper()

	logger := log.NewNopLogger()
	store := memory.NewStore()
	hasher := credential.Bcrypt{Cost: bcrypt.MinCost}

	creds, err := credential.NewStore(store, hasher)
	if err != nil {
		t.Fatal(err)
	}
	tokenizer, err := authservice.NewTokenizer(authservice.Config{Secret: []byte(Secret)})
	if err != nil {
		t.Fatal(err)
	}
	g := guard.New(store, hasher)

	var (
		authSvc = authservice.New(g, creds, tokenizer, logger, discard.NewCounter(), discard.NewHistogram())
		userSvc = userservice.New(store, g, logger, discard.NewCounter(), discard.NewHistogram())
		taskSvc = taskservice.New(store, g, logger, discard.NewCounter(), discard.NewHistogram())
	)

	srv := httptest.NewServer(apigateway.NewHandler(
		authendpoint.New(authSvc, logger),
		userendpoint.New(userSvc, logger),
		taskendpoint.New(taskSvc, logger),
		tokenizer,
		logger,
	))
	t.Cleanup(srv.Close)
	return srv
}
