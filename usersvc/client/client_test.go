package client_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/sd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ichigozero/taskguard/apigateway/gatewaytest"
	"github.com/ichigozero/taskguard/authsvc"
	"github.com/ichigozero/taskguard/authsvc/pkg/authtransport"
	"github.com/ichigozero/taskguard/kind"
	"github.com/ichigozero/taskguard/usersvc"
	"github.com/ichigozero/taskguard/usersvc/client"
)

func TestClient(t *testing.T) {
	srv := gatewaytest.NewServer(t)
	auth, err := authtransport.NewHTTPClient(srv.URL, log.NewNopLogger())
	require.NoError(t, err)
	set, err := client.New(sd.FixedInstancer{srv.URL}, log.NewNopLogger(), 3, 5*time.Second)
	require.NoError(t, err)

	ctx := context.Background()
	alice, err := auth.Register(ctx, usersvc.Profile{Name: "alice1", Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	token, err := auth.Login(ctx, "alice1", "secret1")
	require.NoError(t, err)
	aliceCtx := authtransport.WithBearer(ctx, token.AccessToken)

	users, err := set.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []usersvc.User{alice}, users)

	free, err := set.FreeUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, free, 1)

	got, err := set.UserByEmail(ctx, "A@B.COM")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = set.User(ctx, alice.ID+1)
	assert.ErrorIs(t, err, kind.ErrNotFound)

	updated, err := set.UpdateUser(aliceCtx, authsvc.Identity{}, alice.ID,
		usersvc.Profile{Name: "alice2", Email: "a@b.com", Password: "secret2"})
	require.NoError(t, err)
	assert.Equal(t, "Alice2", updated.Name)

	tasks, err := set.UserTasks(aliceCtx, authsvc.Identity{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = set.DeleteUserByName(ctx, authsvc.Identity{}, "alice2")
	assert.ErrorIs(t, err, kind.ErrUnauthorized)

	require.NoError(t, set.DeleteUserByName(aliceCtx, authsvc.Identity{}, "alice2"))

	_, err = set.UserByName(ctx, "alice2")
	assert.ErrorIs(t, err, kind.ErrNotFound)
}
