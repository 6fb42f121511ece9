package authservice_test

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/generic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/authsvc/pkg/authservice"
	"github.com/ichigozero/taskguard/credential"
	"github.com/ichigozero/taskguard/guard"
	"github.com/ichigozero/taskguard/storage/memory"
	"github.com/ichigozero/taskguard/usersvc"
)

// methodCounter records the method label of every Add.
type methodCounter struct {
	mtx     sync.Mutex
	methods []string
}

func (c *methodCounter) With(labelValues ...string) metrics.Counter {
	for i := 0; i+1 < len(labelValues); i += 2 {
		if labelValues[i] == "method" {
			return &boundCounter{c, labelValues[i+1]}
		}
	}
	return &boundCounter{c, ""}
}

func (c *methodCounter) Add(float64) {}

type boundCounter struct {
	parent *methodCounter
	method string
}

func (b *boundCounter) With(labelValues ...string) metrics.Counter { return b.parent.With(labelValues...) }

func (b *boundCounter) Add(float64) {
	b.parent.mtx.Lock()
	defer b.parent.mtx.Unlock()
	b.parent.methods = append(b.parent.methods, b.method)
}

func newService(t *testing.T, logger log.Logger, counter metrics.Counter) authservice.Service {
	t.Helper()

	store := memory.NewStore()
	hasher := credential.Bcrypt{Cost: bcrypt.MinCost}
	creds, err := credential.NewStore(store, hasher)
	require.NoError(t, err)
	tk, err := authservice.NewTokenizer(authservice.Config{Secret: []byte("test-secret")})
	require.NoError(t, err)

	return authservice.New(guard.New(store, hasher), creds, tk, logger, counter, generic.NewHistogram("latency", 10))
}

func TestService(t *testing.T) {
	var buf bytes.Buffer
	counter := &methodCounter{}
	svc := newService(t, log.NewLogfmtLogger(&buf), counter)
	ctx := context.Background()

	user, err := svc.Register(ctx, usersvc.Profile{Name: "alice1", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Alice1", user.Name)

	_, err = svc.Register(ctx, usersvc.Profile{Name: "alice1", Email: "a@b.com", Password: "secret1"})
	assert.ErrorIs(t, err, usersvc.ErrNameInUse)

	_, err = svc.Login(ctx, "alice1", "wrong-password")
	assert.ErrorIs(t, err, authsvc.ErrInvalidCredentials)

	token, err := svc.Login(ctx, "alice1", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)

	_, err = svc.CurrentUser(ctx)
	assert.ErrorIs(t, err, authsvc.ErrUnauthorized)

	want := authsvc.Identity{Username: "Alice1", ID: user.ID}
	got, err := svc.CurrentUser(authsvc.WithIdentity(ctx, want))
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.Equal(t, []string{"register", "register", "login", "login", "current_user", "current_user"}, counter.methods)

	logs := buf.String()
	assert.Contains(t, logs, "method=Register")
	assert.Contains(t, logs, "method=Login")
	assert.NotContains(t, logs, "secret1")
	assert.NotContains(t, logs, "wrong-password")
	assert.NotContains(t, logs, token.AccessToken)
}
